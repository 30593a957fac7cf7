// Package backing provides the stores that hold ledger rows outside any
// transaction: an in-memory map for tests and genesis bootstrapping, and a
// key-value store over storage.Database with RLP-encoded rows for nodes.
package backing

import "heliochain/ledger"

// Memory is a map-backed store. Keys preserves insertion order so walks
// over the row set are deterministic under replay.
type Memory[K comparable, E ledger.Entity[E]] struct {
	rows  map[K]E
	order []K
}

// NewMemory returns an empty in-memory backing store.
func NewMemory[K comparable, E ledger.Entity[E]]() *Memory[K, E] {
	return &Memory[K, E]{rows: make(map[K]E)}
}

func (m *Memory[K, E]) Get(id K) (E, bool) {
	entity, ok := m.rows[id]
	if !ok {
		var zero E
		return zero, false
	}
	return entity.Clone(), true
}

func (m *Memory[K, E]) Put(id K, entity E) {
	if _, ok := m.rows[id]; !ok {
		m.order = append(m.order, id)
	}
	m.rows[id] = entity.Clone()
}

func (m *Memory[K, E]) Remove(id K) {
	if _, ok := m.rows[id]; !ok {
		return
	}
	delete(m.rows, id)
	for i, key := range m.order {
		if key == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *Memory[K, E]) Contains(id K) bool {
	_, ok := m.rows[id]
	return ok
}

func (m *Memory[K, E]) Keys() []K {
	return append([]K(nil), m.order...)
}

func (m *Memory[K, E]) Size() int { return len(m.rows) }
