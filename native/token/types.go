// Package token implements the token ledger engine: association
// bookkeeping, freeze/KYC/pause gating, balance and allowance mutation,
// NFT ownership transfer, token update, and pending-creation commit and
// rollback. Every operation pre-validates all relevant invariants before
// the first write, so a returned failure code guarantees untouched state.
package token

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// EntityID is the consensus-assigned number of an account or token.
type EntityID uint64

// MissingEntityID is the sentinel for "no entity". A unique token whose
// owner is the sentinel is currently held by its token's treasury.
const MissingEntityID EntityID = 0

// Address renders the id into the low-order bytes of a 20-byte EVM
// address, the long-zero form contract callers use for ledger entities.
func (id EntityID) Address() common.Address {
	var addr common.Address
	binary.BigEndian.PutUint64(addr[12:], uint64(id))
	return addr
}

func (id EntityID) String() string {
	return fmt.Sprintf("%d", uint64(id))
}

// EntityIDFromAddress recovers an entity number from a long-zero address.
func EntityIDFromAddress(addr common.Address) EntityID {
	return EntityID(binary.BigEndian.Uint64(addr[12:]))
}

// NftID identifies one serial of a non-fungible token type.
type NftID struct {
	Token  EntityID
	Serial uint64
}

func (id NftID) String() string {
	return fmt.Sprintf("%d.%d", id.Token, id.Serial)
}

// RelKey is the packed (account, token) pair keying a relationship row.
// The zero value is the sentinel terminating an account's association
// linked list.
type RelKey struct {
	Account EntityID
	Token   EntityID
}

// MissingRelKey terminates association linked lists.
var MissingRelKey = RelKey{}

// IsMissing reports whether the key is the list sentinel.
func (k RelKey) IsMissing() bool { return k == MissingRelKey }

func (k RelKey) String() string {
	return fmt.Sprintf("%d<->%d", k.Account, k.Token)
}

// RelKeyFor builds the relationship key for an account and token.
func RelKeyFor(account, tokenID EntityID) RelKey {
	return RelKey{Account: account, Token: tokenID}
}

// TokenType distinguishes divisible balances from serialised ownership.
type TokenType uint8

const (
	FungibleCommon TokenType = iota
	NonFungibleUnique
)

// Key is a serialized public key; an empty key means the capability it
// gates is absent from the token.
type Key []byte

// Present reports whether a usable key is set.
func (k Key) Present() bool { return len(k) > 0 }

func cloneKey(k Key) Key {
	if len(k) == 0 {
		return nil
	}
	return append(Key(nil), k...)
}
