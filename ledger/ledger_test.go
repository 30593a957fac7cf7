package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type counter struct {
	Value uint64
}

func (c *counter) Clone() *counter {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

type mapBacking struct {
	rows map[string]*counter
}

func newMapBacking() *mapBacking {
	return &mapBacking{rows: make(map[string]*counter)}
}

func (b *mapBacking) Get(id string) (*counter, bool) {
	row, ok := b.rows[id]
	if !ok {
		return nil, false
	}
	return row.Clone(), true
}

func (b *mapBacking) Put(id string, entity *counter) { b.rows[id] = entity.Clone() }
func (b *mapBacking) Remove(id string)               { delete(b.rows, id) }
func (b *mapBacking) Contains(id string) bool        { _, ok := b.rows[id]; return ok }
func (b *mapBacking) Size() int                      { return len(b.rows) }

func (b *mapBacking) Keys() []string {
	keys := make([]string, 0, len(b.rows))
	for key := range b.rows {
		keys = append(keys, key)
	}
	return keys
}

func newTestLedger(backing Backing[string, *counter]) *Transactional[string, *counter] {
	l := New(backing, func() *counter { return &counter{} })
	l.Begin()
	return l
}

func TestCommitFlushesChanges(t *testing.T) {
	backing := newMapBacking()
	backing.Put("a", &counter{Value: 1})
	l := newTestLedger(backing)

	l.Set("a", func(c *counter) *counter {
		c.Value = 5
		return c
	})
	l.Create("b")
	l.Set("b", func(c *counter) *counter {
		c.Value = 9
		return c
	})

	require.Equal(t, 1, backing.Size())
	l.Commit()

	a, ok := backing.Get("a")
	require.True(t, ok)
	require.Equal(t, uint64(5), a.Value)
	b, ok := backing.Get("b")
	require.True(t, ok)
	require.Equal(t, uint64(9), b.Value)
}

func TestRollbackDiscardsChanges(t *testing.T) {
	backing := newMapBacking()
	backing.Put("a", &counter{Value: 1})
	l := newTestLedger(backing)

	l.Set("a", func(c *counter) *counter {
		c.Value = 5
		return c
	})
	l.Create("b")
	l.Rollback()

	a, ok := backing.Get("a")
	require.True(t, ok)
	require.Equal(t, uint64(1), a.Value)
	require.False(t, backing.Contains("b"))
}

func TestDestroyRemovesOnCommit(t *testing.T) {
	backing := newMapBacking()
	backing.Put("a", &counter{Value: 1})
	l := newTestLedger(backing)

	l.Destroy("a")
	require.False(t, l.Exists("a"))
	require.True(t, backing.Contains("a"))

	l.Commit()
	require.False(t, backing.Contains("a"))
}

func TestRecreateAfterDestroySurvivesCommit(t *testing.T) {
	backing := newMapBacking()
	backing.Put("a", &counter{Value: 1})
	l := newTestLedger(backing)

	l.Destroy("a")
	require.False(t, l.Exists("a"))
	l.Create("a")
	l.Set("a", func(c *counter) *counter {
		c.Value = 4
		return c
	})
	require.True(t, l.Exists("a"))

	// The committed state must agree with the in-transaction view: the
	// re-created row wins over the earlier destroy.
	l.Commit()
	row, ok := backing.Get("a")
	require.True(t, ok)
	require.Equal(t, uint64(4), row.Value)
}

func TestGetCopyPanicsOnMissing(t *testing.T) {
	l := newTestLedger(newMapBacking())
	require.Panics(t, func() { l.GetCopy("ghost") })
}

func TestSetOutsideTransactionPanics(t *testing.T) {
	backing := newMapBacking()
	backing.Put("a", &counter{Value: 1})
	l := New(backing, func() *counter { return &counter{} })
	require.Panics(t, func() {
		l.Set("a", func(c *counter) *counter { return c })
	})
}

func TestExistsPending(t *testing.T) {
	backing := newMapBacking()
	backing.Put("a", &counter{Value: 1})
	l := newTestLedger(backing)

	l.Create("b")
	require.True(t, l.ExistsPending("b"))
	require.False(t, l.ExistsPending("a"))
}

func TestWrappedCommitPropagatesToParent(t *testing.T) {
	backing := newMapBacking()
	backing.Put("a", &counter{Value: 1})
	parent := newTestLedger(backing)

	child := Wrap(parent)
	child.Set("a", func(c *counter) *counter {
		c.Value = 7
		return c
	})
	child.Create("b")

	// Parent sees nothing until the child commits into it.
	require.Equal(t, uint64(1), parent.GetCopy("a").Value)
	child.Commit()
	require.Equal(t, uint64(7), parent.GetCopy("a").Value)
	require.True(t, parent.Exists("b"))

	// The durable layer is untouched until the parent itself commits.
	a, _ := backing.Get("a")
	require.Equal(t, uint64(1), a.Value)
	parent.Commit()
	a, _ = backing.Get("a")
	require.Equal(t, uint64(7), a.Value)
}

func TestWrappedRollbackLeavesParentUntouched(t *testing.T) {
	backing := newMapBacking()
	backing.Put("a", &counter{Value: 1})
	parent := newTestLedger(backing)
	parent.Set("a", func(c *counter) *counter {
		c.Value = 3
		return c
	})

	child := Wrap(parent)
	child.Set("a", func(c *counter) *counter {
		c.Value = 99
		return c
	})
	child.Create("b")
	child.Destroy("a")
	child.Rollback()

	require.Equal(t, uint64(3), parent.GetCopy("a").Value)
	require.False(t, parent.Exists("b"))
}

func TestWrappedReadsFallThrough(t *testing.T) {
	backing := newMapBacking()
	backing.Put("a", &counter{Value: 4})
	parent := newTestLedger(backing)

	child := Wrap(parent)
	require.Equal(t, uint64(4), child.GetCopy("a").Value)

	child.Set("a", func(c *counter) *counter {
		c.Value = 11
		return c
	})
	require.Equal(t, uint64(11), child.GetCopy("a").Value)
	require.Equal(t, uint64(4), parent.GetCopy("a").Value)
}
