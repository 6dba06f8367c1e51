package channel

import (
	"sort"
	"sync"
)

// MemoryIndex is an in-process Index. It is the default for new connections.
type MemoryIndex struct {
	mu   sync.RWMutex
	sets map[string]map[string]struct{}
}

// NewMemoryIndex returns an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{sets: make(map[string]map[string]struct{})}
}

func (m *MemoryIndex) Apply(added, removed map[string][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, ids := range added {
		set, ok := m.sets[key]
		if !ok {
			set = make(map[string]struct{}, len(ids))
			m.sets[key] = set
		}
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	for key, ids := range removed {
		set := m.sets[key]
		for _, id := range ids {
			delete(set, id)
		}
		if len(set) == 0 {
			delete(m.sets, key)
		}
	}
	return nil
}

// Members returns the sorted ids stored at setKey.
func (m *MemoryIndex) Members(setKey string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set := m.sets[setKey]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
