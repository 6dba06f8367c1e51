package channel

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingIndex wraps a MemoryIndex and refuses snapshots while down, or
// any snapshot that removes ids when failRemovals is set.
type failingIndex struct {
	*MemoryIndex
	down         bool
	failRemovals bool
	calls        int
}

func (f *failingIndex) Apply(added, removed map[string][]string) error {
	f.calls++
	if f.down || (f.failRemovals && len(removed) > 0) {
		return errors.New("index unavailable")
	}
	return f.MemoryIndex.Apply(added, removed)
}

func TestLedger_DirectOutsideBatch(t *testing.T) {
	index := NewMemoryIndex()
	l := NewLedger(index)

	require.NoError(t, l.Register("ids:User", "2", "1"))
	assert.Equal(t, []string{"1", "2"}, index.Members("ids:User"))
	assert.Equal(t, 0, l.Len())

	require.NoError(t, l.Unregister("ids:User", "1"))
	assert.Equal(t, []string{"2"}, index.Members("ids:User"))
}

func TestLedger_DeferredUntilApply(t *testing.T) {
	index := NewMemoryIndex()
	l := NewLedger(index)

	l.Begin()
	require.NoError(t, l.Register("ids:User", "1", "2"))
	require.NoError(t, l.Register("ids:User", "2", "3"))
	require.NoError(t, l.Register("ids:Post", "9"))
	require.NoError(t, l.Unregister("ids:User", "3"))

	assert.Empty(t, index.Members("ids:User"))
	assert.Equal(t, 4, l.Len())
	assert.Equal(t, map[string][]string{
		"ids:User": {"1", "2"},
		"ids:Post": {"9"},
	}, l.Pending())
	assert.Equal(t, map[string][]string{"ids:User": {"3"}}, l.PendingRemovals())

	require.NoError(t, l.Apply())
	assert.Equal(t, []string{"1", "2"}, index.Members("ids:User"))
	assert.Equal(t, []string{"9"}, index.Members("ids:Post"))
	assert.Equal(t, 0, l.Len())

	// back to direct mode
	require.NoError(t, l.Register("ids:Post", "10"))
	assert.Equal(t, []string{"10", "9"}, index.Members("ids:Post"))
}

func TestLedger_DeferredRemoval(t *testing.T) {
	index := NewMemoryIndex()
	l := NewLedger(index)
	require.NoError(t, l.Register("ids:User", "1", "2"))

	l.Begin()
	require.NoError(t, l.Unregister("ids:User", "1"))
	assert.Equal(t, []string{"1", "2"}, index.Members("ids:User"))

	// registering again in the same batch cancels the removal
	require.NoError(t, l.Register("ids:User", "1"))
	require.NoError(t, l.Unregister("ids:User", "2"))
	require.NoError(t, l.Apply())
	assert.Equal(t, []string{"1"}, index.Members("ids:User"))
}

func TestLedger_Discard(t *testing.T) {
	index := NewMemoryIndex()
	l := NewLedger(index)

	l.Begin()
	require.NoError(t, l.Register("ids:User", "1"))
	l.Discard()

	assert.Equal(t, 0, l.Len())
	assert.Empty(t, index.Members("ids:User"))
	require.NoError(t, l.Apply())
	assert.Empty(t, index.Members("ids:User"))
}

func TestLedger_ApplyFailureReturnsSnapshot(t *testing.T) {
	index := &failingIndex{MemoryIndex: NewMemoryIndex(), down: true}
	l := NewLedger(index)

	l.Begin()
	require.NoError(t, l.Register("ids:User", "2", "1"))
	require.NoError(t, l.Unregister("ids:Post", "9"))

	err := l.Apply()
	var ae *ApplyError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 1, index.calls)
	assert.Equal(t, map[string][]string{"ids:User": {"1", "2"}}, ae.Added)
	assert.Equal(t, map[string][]string{"ids:Post": {"9"}}, ae.Removed)
	assert.Equal(t, 0, l.Len())

	// the caller can hand the snapshot back once the index recovers
	index.down = false
	require.NoError(t, index.Apply(ae.Added, ae.Removed))
	assert.Equal(t, []string{"1", "2"}, index.Members("ids:User"))
}

func TestLedger_RemovalFailureAppliesNothing(t *testing.T) {
	index := &failingIndex{MemoryIndex: NewMemoryIndex(), failRemovals: true}
	l := NewLedger(index)
	require.NoError(t, l.Register("ids:User", "1"))

	l.Begin()
	require.NoError(t, l.Register("ids:User", "2"))
	require.NoError(t, l.Unregister("ids:User", "1"))
	require.Error(t, l.Apply())

	assert.Equal(t, []string{"1"}, index.Members("ids:User"))
	assert.Equal(t, 0, l.Len())
}

func TestLedger_FailedApplyDoesNotLeakIntoNextBatch(t *testing.T) {
	index := &failingIndex{MemoryIndex: NewMemoryIndex(), down: true}
	l := NewLedger(index)

	l.Begin()
	require.NoError(t, l.Register("ids:User", "1"))
	require.Error(t, l.Apply())
	index.down = false

	// back in direct mode
	require.NoError(t, l.Register("ids:User", "5"))
	assert.Equal(t, []string{"5"}, index.Members("ids:User"))

	// a later batch that fails discards only its own registrations
	l.Begin()
	require.NoError(t, l.Register("ids:User", "6"))
	assert.Equal(t, map[string][]string{"ids:User": {"6"}}, l.Pending())
	l.Discard()

	require.NoError(t, l.Apply())
	assert.Equal(t, []string{"5"}, index.Members("ids:User"))
	assert.Equal(t, 2, index.calls)
}

func TestLedger_DefaultIndex(t *testing.T) {
	l := NewLedger(nil)
	_, ok := l.Index().(*MemoryIndex)
	assert.True(t, ok)
}

func TestGuard_ReleaseOnce(t *testing.T) {
	var lock BatchLock

	g, err := lock.BeginBatch()
	require.NoError(t, err)
	assert.True(t, lock.Batching())

	_, err = lock.BeginBatch()
	var ab *AlreadyBatchingError
	require.ErrorAs(t, err, &ab)

	assert.True(t, g.Release())
	assert.False(t, g.Release())
	assert.False(t, lock.Batching())

	// a stale guard cannot free a newer batch
	g2, err := lock.BeginBatch()
	require.NoError(t, err)
	assert.False(t, g.Release())
	assert.True(t, lock.Batching())
	assert.True(t, g2.Release())
}

func TestGuard_ConcurrentBegin(t *testing.T) {
	var lock BatchLock
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := lock.BeginBatch(); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
