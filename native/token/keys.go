package token

import (
	"encoding/binary"
	"fmt"
)

// Store-key prefixes for the durable row families.
var (
	PrefixAccounts = []byte("tok/acct/")
	PrefixTokens   = []byte("tok/type/")
	PrefixRels     = []byte("tok/rel/")
	PrefixNfts     = []byte("tok/nft/")
)

// EntityKeyCodec encodes entity numbers as fixed-width big-endian bytes so
// prefix walks visit rows in ascending id order.
type EntityKeyCodec struct{}

func (EntityKeyCodec) EncodeKey(id EntityID) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(id))
	return raw
}

func (EntityKeyCodec) DecodeKey(raw []byte) (EntityID, error) {
	if len(raw) != 8 {
		return MissingEntityID, fmt.Errorf("token: entity key must be 8 bytes, got %d", len(raw))
	}
	return EntityID(binary.BigEndian.Uint64(raw)), nil
}

// RelKeyCodec packs the (account, token) pair into 16 bytes.
type RelKeyCodec struct{}

func (RelKeyCodec) EncodeKey(key RelKey) []byte {
	raw := make([]byte, 16)
	binary.BigEndian.PutUint64(raw[:8], uint64(key.Account))
	binary.BigEndian.PutUint64(raw[8:], uint64(key.Token))
	return raw
}

func (RelKeyCodec) DecodeKey(raw []byte) (RelKey, error) {
	if len(raw) != 16 {
		return MissingRelKey, fmt.Errorf("token: relationship key must be 16 bytes, got %d", len(raw))
	}
	return RelKey{
		Account: EntityID(binary.BigEndian.Uint64(raw[:8])),
		Token:   EntityID(binary.BigEndian.Uint64(raw[8:])),
	}, nil
}

// NftKeyCodec packs (token, serial) into 16 bytes.
type NftKeyCodec struct{}

func (NftKeyCodec) EncodeKey(id NftID) []byte {
	raw := make([]byte, 16)
	binary.BigEndian.PutUint64(raw[:8], uint64(id.Token))
	binary.BigEndian.PutUint64(raw[8:], id.Serial)
	return raw
}

func (NftKeyCodec) DecodeKey(raw []byte) (NftID, error) {
	if len(raw) != 16 {
		return NftID{}, fmt.Errorf("token: nft key must be 16 bytes, got %d", len(raw))
	}
	return NftID{
		Token:  EntityID(binary.BigEndian.Uint64(raw[:8])),
		Serial: binary.BigEndian.Uint64(raw[8:]),
	}, nil
}
