package channel

import (
	"fmt"
	"sort"
	"sync"
)

// Index receives the type-id registrations recorded in a Ledger.
type Index interface {
	// Apply adds and removes ids, keyed by set. Either every change lands
	// or none does. Either map may be nil.
	Apply(added, removed map[string][]string) error
}

// ApplyError is returned when the index refused a ledger snapshot. The
// snapshot is no longer pending; it is carried here so the caller can
// apply it again.
type ApplyError struct {
	Added   map[string][]string
	Removed map[string][]string
	Err     error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("ledger: apply %d set(s): %v", len(e.Added)+len(e.Removed), e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// idSets maps a set key to its ids.
type idSets map[string]map[string]struct{}

func (s idSets) add(key string, ids ...string) {
	set, ok := s[key]
	if !ok {
		set = make(map[string]struct{}, len(ids))
		s[key] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
}

func (s idSets) remove(key string, ids ...string) {
	set, ok := s[key]
	if !ok {
		return
	}
	for _, id := range ids {
		delete(set, id)
	}
	if len(set) == 0 {
		delete(s, key)
	}
}

func (s idSets) len() int {
	n := 0
	for _, set := range s {
		n += len(set)
	}
	return n
}

// sorted returns a copy with every id list sorted.
func (s idSets) sorted() map[string][]string {
	out := make(map[string][]string, len(s))
	for key, set := range s {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out[key] = ids
	}
	return out
}

// Ledger collects side registrations (type-id set updates) made while a
// pipeline or transaction is open. They reach the Index only when the batch
// completes; a failed or rolled back batch discards them.
//
// Outside of a batch registrations go straight to the Index.
type Ledger struct {
	mu       sync.Mutex
	index    Index
	batching bool
	added    idSets
	removed  idSets
}

// NewLedger returns a ledger applying into index. A nil index defaults to a
// fresh MemoryIndex.
func NewLedger(index Index) *Ledger {
	if index == nil {
		index = NewMemoryIndex()
	}
	return &Ledger{
		index:   index,
		added:   idSets{},
		removed: idSets{},
	}
}

// SetIndex replaces the index the ledger applies into.
func (l *Ledger) SetIndex(index Index) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.index = index
}

// Index returns the index the ledger applies into.
func (l *Ledger) Index() Index {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.index
}

// Begin switches the ledger to deferred mode for the duration of a batch.
func (l *Ledger) Begin() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batching = true
}

// Register records ids as members of setKey.
func (l *Ledger) Register(setKey string, ids ...string) error {
	l.mu.Lock()
	if !l.batching {
		index := l.index
		l.mu.Unlock()
		return index.Apply(map[string][]string{setKey: ids}, nil)
	}
	defer l.mu.Unlock()

	l.removed.remove(setKey, ids...)
	l.added.add(setKey, ids...)
	return nil
}

// Unregister drops ids from setKey.
func (l *Ledger) Unregister(setKey string, ids ...string) error {
	l.mu.Lock()
	if !l.batching {
		index := l.index
		l.mu.Unlock()
		return index.Apply(nil, map[string][]string{setKey: ids})
	}
	defer l.mu.Unlock()

	l.added.remove(setKey, ids...)
	l.removed.add(setKey, ids...)
	return nil
}

// Apply hands the pending additions and removals to the index in one call
// and leaves deferred mode. The pending state is cleared whatever the
// outcome, so a later batch never inherits it; a refused snapshot comes
// back in an *ApplyError.
func (l *Ledger) Apply() error {
	l.mu.Lock()
	added, removed := l.added, l.removed
	l.added, l.removed = idSets{}, idSets{}
	l.batching = false
	index := l.index
	l.mu.Unlock()

	if len(added) == 0 && len(removed) == 0 {
		return nil
	}
	a, r := added.sorted(), removed.sorted()
	if err := index.Apply(a, r); err != nil {
		return &ApplyError{Added: a, Removed: r, Err: err}
	}
	return nil
}

// Discard drops every pending registration and leaves deferred mode.
func (l *Ledger) Discard() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.added, l.removed = idSets{}, idSets{}
	l.batching = false
}

// Pending returns a copy of the pending additions with ids sorted.
func (l *Ledger) Pending() map[string][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.added.sorted()
}

// PendingRemovals returns a copy of the pending removals with ids sorted.
func (l *Ledger) PendingRemovals() map[string][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.removed.sorted()
}

// Len returns the number of pending additions and removals.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.added.len() + l.removed.len()
}
