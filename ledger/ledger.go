// Package ledger provides a keyed store of typed rows with transactional
// semantics. Changes during a transaction are kept in per-row change sets,
// which are either flushed to a backing store on commit or dropped without
// effect on rollback. A ledger can wrap another ledger, which is how each
// EVM call frame obtains its own copy-on-write view of its parent's state.
package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveTxn is the panic value for mutations outside Begin/Commit.
	ErrNoActiveTxn = errors.New("ledger: no active transaction")
	// ErrMissingEntity is wrapped into the panic value for reads of rows
	// that neither the backing store nor the pending change set contains.
	ErrMissingEntity = errors.New("ledger: missing entity")
)

// Entity is a row type that can be deep-copied. Clones keep pending change
// sets from aliasing rows already persisted in a backing store.
type Entity[E any] interface {
	Clone() E
}

// Backing is the durable (or parent-scoped) home of rows behind a
// transactional ledger. Get must return a copy the caller may mutate freely.
type Backing[K comparable, E Entity[E]] interface {
	Get(id K) (E, bool)
	Put(id K, entity E)
	Remove(id K)
	Contains(id K) bool
	Keys() []K
	Size() int
}

// Transactional wraps a Backing with begin/commit/rollback semantics. It
// implements Backing itself, so one ledger can serve as the backing of
// another; reads on the child fall through to the parent until a write
// shadows the key, and a child commit flushes into the parent's change set.
type Transactional[K comparable, E Entity[E]] struct {
	backing     Backing[K, E]
	newEntity   func() E
	changes     map[K]E
	changed     []K
	created     []K
	dead        map[K]struct{}
	removed     []K
	inTxn       bool
	keyToString func(K) string
}

// New constructs an inactive transactional ledger over the given backing.
// newEntity supplies default-valued rows for Create.
func New[K comparable, E Entity[E]](backing Backing[K, E], newEntity func() E) *Transactional[K, E] {
	return &Transactional[K, E]{
		backing:   backing,
		newEntity: newEntity,
		changes:   make(map[K]E),
		dead:      make(map[K]struct{}),
	}
}

// Wrap returns an active ledger backed by this one. The wrapper's commit
// writes into this ledger's change set; its rollback leaves this ledger
// untouched.
func Wrap[K comparable, E Entity[E]](source *Transactional[K, E]) *Transactional[K, E] {
	wrapper := New[K, E](source, source.newEntity)
	wrapper.keyToString = source.keyToString
	wrapper.Begin()
	return wrapper
}

// SetKeyToString installs a readable formatter used in panic messages.
func (l *Transactional[K, E]) SetKeyToString(fn func(K) string) { l.keyToString = fn }

// InTransaction reports whether a transaction is active.
func (l *Transactional[K, E]) InTransaction() bool { return l.inTxn }

// Begin opens a transaction. An already-open transaction is rolled back
// first; stacked views must never inherit a stale change set.
func (l *Transactional[K, E]) Begin() {
	if l.inTxn {
		l.Rollback()
	}
	l.inTxn = true
}

// Rollback drops every pending change and closes the transaction.
func (l *Transactional[K, E]) Rollback() {
	if !l.inTxn {
		panic(fmt.Errorf("%w: cannot rollback", ErrNoActiveTxn))
	}
	clear(l.changes)
	clear(l.dead)
	l.changed = l.changed[:0]
	l.created = l.created[:0]
	l.removed = l.removed[:0]
	l.inTxn = false
}

// Commit flushes changed and created rows, then removals, into the backing
// store and closes the transaction.
func (l *Transactional[K, E]) Commit() {
	l.throwIfNotInTxn()
	l.flushListed(l.changed)
	l.flushListed(l.created)
	for _, id := range l.removed {
		l.backing.Remove(id)
	}
	clear(l.changes)
	clear(l.dead)
	l.changed = l.changed[:0]
	l.created = l.created[:0]
	l.removed = l.removed[:0]
	l.inTxn = false
}

func (l *Transactional[K, E]) flushListed(ids []K) {
	for _, id := range ids {
		if _, gone := l.dead[id]; gone {
			continue
		}
		l.backing.Put(id, l.changes[id])
	}
}

// Exists reports whether a row is present, in either saved or transient
// state. Rows destroyed within the transaction are not present.
func (l *Transactional[K, E]) Exists(id K) bool {
	if _, gone := l.dead[id]; gone {
		return false
	}
	if _, pending := l.changes[id]; pending {
		return true
	}
	return l.backing.Contains(id)
}

// ExistsPending reports whether a row exists solely in transient state.
func (l *Transactional[K, E]) ExistsPending(id K) bool {
	_, pending := l.changes[id]
	return pending && !l.backing.Contains(id)
}

// GetCopy returns a copy of the row the caller may mutate freely. It panics
// with ErrMissingEntity if the row does not exist; callers check Exists
// first, exactly as with the engine's business-code tier.
func (l *Transactional[K, E]) GetCopy(id K) E {
	l.throwIfMissing(id)
	if pending, ok := l.changes[id]; ok {
		return pending.Clone()
	}
	entity, _ := l.backing.Get(id)
	return entity
}

// Set applies an in-place mutation to the row's pending state.
func (l *Transactional[K, E]) Set(id K, mutate func(E) E) {
	l.throwIfNotInTxn()
	l.throwIfMissing(id)
	pending, ok := l.changes[id]
	if !ok {
		pending, _ = l.backing.Get(id)
		l.changed = append(l.changed, id)
	}
	l.changes[id] = mutate(pending)
}

// Create adds a new row with default property values.
func (l *Transactional[K, E]) Create(id K) {
	l.throwIfNotInTxn()
	if l.Exists(id) {
		panic(fmt.Errorf("ledger: entity already exists with key %s", l.readable(id)))
	}
	if _, gone := l.dead[id]; gone {
		delete(l.dead, id)
		l.removed = removeKey(l.removed, id)
	}
	l.changes[id] = l.newEntity()
	l.created = append(l.created, id)
}

// Destroy forgets everything about the row with the given id.
func (l *Transactional[K, E]) Destroy(id K) {
	l.throwIfNotInTxn()
	if _, gone := l.dead[id]; !gone {
		l.dead[id] = struct{}{}
		l.removed = append(l.removed, id)
	}
}

// --- Backing implementation, letting a ledger back another ledger ---

// Get returns a copy of the row and whether it exists.
func (l *Transactional[K, E]) Get(id K) (E, bool) {
	if !l.Exists(id) {
		var zero E
		return zero, false
	}
	return l.GetCopy(id), true
}

// Put accumulates the entire row as this ledger's pending state. Unlike
// Set, a missing target row is created: the ledger wrapping this one may
// commit a row created inside the child frame.
func (l *Transactional[K, E]) Put(id K, entity E) {
	l.throwIfNotInTxn()
	if _, gone := l.dead[id]; gone {
		delete(l.dead, id)
		l.removed = removeKey(l.removed, id)
	}
	if _, pending := l.changes[id]; !pending {
		if l.backing.Contains(id) {
			l.changed = append(l.changed, id)
		} else {
			l.created = append(l.created, id)
		}
	}
	l.changes[id] = entity.Clone()
}

// Remove is Destroy under the Backing contract.
func (l *Transactional[K, E]) Remove(id K) { l.Destroy(id) }

// Contains is Exists under the Backing contract.
func (l *Transactional[K, E]) Contains(id K) bool { return l.Exists(id) }

// Keys lists the ids of the underlying store; transient-only rows are not
// included, matching the saved-state view used by rebuild paths.
func (l *Transactional[K, E]) Keys() []K { return l.backing.Keys() }

// Size reports the number of saved rows.
func (l *Transactional[K, E]) Size() int { return l.backing.Size() }

// --- internal helpers ---

func (l *Transactional[K, E]) throwIfNotInTxn() {
	if !l.inTxn {
		panic(ErrNoActiveTxn)
	}
}

func (l *Transactional[K, E]) throwIfMissing(id K) {
	if !l.Exists(id) {
		panic(fmt.Errorf("%w: %s", ErrMissingEntity, l.readable(id)))
	}
}

func (l *Transactional[K, E]) readable(id K) string {
	if l.keyToString != nil {
		return l.keyToString(id)
	}
	return fmt.Sprintf("%v", id)
}

func removeKey[K comparable](keys []K, id K) []K {
	for i, key := range keys {
		if key == id {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}
