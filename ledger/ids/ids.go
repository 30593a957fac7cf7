// Package ids issues entity numbers for newly created ledger rows.
package ids

import "errors"

// ErrNothingToReclaim is the panic value when ReclaimLast is called with no
// outstanding issuance; only a rolled-back pending creation may reclaim.
var ErrNothingToReclaim = errors.New("ids: nothing to reclaim")

// Source hands out sequential entity numbers. Sequential issuance keeps id
// assignment deterministic across replaying nodes.
type Source struct {
	first uint64
	next  uint64
}

// NewSource starts issuing at first.
func NewSource(first uint64) *Source {
	return &Source{first: first, next: first}
}

// NewTokenNum reserves and returns the next entity number.
func (s *Source) NewTokenNum() uint64 {
	id := s.next
	s.next++
	return id
}

// ReclaimLast releases the most recently issued number so a rolled-back
// creation does not burn an id.
func (s *Source) ReclaimLast() {
	if s.next == s.first {
		panic(ErrNothingToReclaim)
	}
	s.next--
}

// Peek returns the number the next issuance will use.
func (s *Source) Peek() uint64 { return s.next }
