package token

import (
	"math"

	"heliochain/core/codes"
)

// Mint raises the token's supply at its treasury. Fungible mints take a
// positive amount; unique mints take one metadata blob per new serial.
// The token must carry a supply key.
func (s *Store) Mint(tokenID EntityID, amount uint64, metadata [][]byte) codes.Code {
	if !s.Exists(tokenID) {
		return codes.InvalidTokenID
	}
	treasury := s.Get(tokenID).Treasury
	return s.sanityChecked(false, treasury, MissingEntityID, tokenID, func(tok *Token) codes.Code {
		if !tok.HasSupplyKey() {
			return codes.TokenHasNoSupplyKey
		}
		if tok.Type == NonFungibleUnique {
			return s.mintUnique(tokenID, tok, metadata)
		}
		return s.mintCommon(tokenID, tok, amount)
	})
}

func (s *Store) mintCommon(tokenID EntityID, tok *Token, amount uint64) codes.Code {
	if amount == 0 || amount > math.MaxInt64 {
		return codes.InvalidTokenMintAmount
	}
	if tok.TotalSupply > math.MaxInt64-amount {
		return codes.InvalidTokenMintAmount
	}
	if validity := s.tryAdjustment(tok.Treasury, tokenID, int64(amount)); validity != codes.OK {
		return validity
	}
	newSupply := tok.TotalSupply + amount
	s.Apply(tokenID, func(t *Token) { t.TotalSupply = newSupply })
	s.sideEffects.TrackTokenSupply(tokenID, newSupply)
	return codes.OK
}

func (s *Store) mintUnique(tokenID EntityID, tok *Token, metadata [][]byte) codes.Code {
	n := uint64(len(metadata))
	if n == 0 {
		return codes.InvalidTokenMintAmount
	}
	if tok.TotalSupply > math.MaxInt64-n {
		return codes.InvalidTokenMintAmount
	}
	if validity := s.checkRelFrozenAndKyc(tok.Treasury, tokenID); validity != codes.OK {
		return validity
	}

	first := tok.NextSerial
	if first == 0 {
		first = 1
	}
	for i := uint64(0); i < n; i++ {
		serial := first + i
		id := NftID{Token: tokenID, Serial: serial}
		blob := append([]byte(nil), metadata[i]...)
		s.ledgers.Nfts.Create(id)
		s.ledgers.Nfts.Set(id, func(u *UniqueToken) *UniqueToken {
			u.Owner = MissingEntityID
			u.Metadata = blob
			return u
		})
		s.views.MintNotice(id, tok.Treasury)
		s.sideEffects.TrackMintedSerial(serial)
	}

	treasury := tok.Treasury
	s.ledgers.Rels.Set(RelKeyFor(treasury, tokenID), func(r *Relationship) *Relationship {
		r.Balance += n
		return r
	})
	s.ledgers.Accounts.Set(treasury, func(a *Account) *Account {
		a.NumNftsOwned += n
		return a
	})
	s.sideEffects.TrackTokenUnitsChange(tokenID, treasury, int64(n))

	newSupply := tok.TotalSupply + n
	s.Apply(tokenID, func(t *Token) {
		t.TotalSupply = newSupply
		t.NextSerial = first + n
	})
	s.sideEffects.TrackTokenSupply(tokenID, newSupply)
	return codes.OK
}

// Burn lowers the token's supply out of its treasury. Fungible burns take
// a positive amount no larger than the treasury balance; unique burns take
// the serials to retire, each of which must still sit with the treasury.
func (s *Store) Burn(tokenID EntityID, amount uint64, serials []uint64) codes.Code {
	if !s.Exists(tokenID) {
		return codes.InvalidTokenID
	}
	treasury := s.Get(tokenID).Treasury
	return s.sanityChecked(false, treasury, MissingEntityID, tokenID, func(tok *Token) codes.Code {
		if !tok.HasSupplyKey() {
			return codes.TokenHasNoSupplyKey
		}
		if tok.Type == NonFungibleUnique {
			return s.burnUnique(tokenID, tok, serials)
		}
		return s.burnCommon(tokenID, tok, amount)
	})
}

func (s *Store) burnCommon(tokenID EntityID, tok *Token, amount uint64) codes.Code {
	if amount == 0 || amount > math.MaxInt64 {
		return codes.InvalidTokenBurnAmount
	}
	if amount > tok.TotalSupply {
		return codes.InvalidTokenBurnAmount
	}
	if validity := s.tryAdjustment(tok.Treasury, tokenID, -int64(amount)); validity != codes.OK {
		return validity
	}
	newSupply := tok.TotalSupply - amount
	s.Apply(tokenID, func(t *Token) { t.TotalSupply = newSupply })
	s.sideEffects.TrackTokenSupply(tokenID, newSupply)
	return codes.OK
}

func (s *Store) burnUnique(tokenID EntityID, tok *Token, serials []uint64) codes.Code {
	n := uint64(len(serials))
	if n == 0 || n > tok.TotalSupply {
		return codes.InvalidTokenBurnAmount
	}
	if validity := s.checkRelFrozenAndKyc(tok.Treasury, tokenID); validity != codes.OK {
		return validity
	}
	seen := make(map[uint64]struct{}, n)
	for _, serial := range serials {
		if _, dup := seen[serial]; dup {
			return codes.InvalidNftID
		}
		seen[serial] = struct{}{}
		id := NftID{Token: tokenID, Serial: serial}
		if !s.ledgers.Nfts.Exists(id) {
			return codes.InvalidNftID
		}
		if s.ledgers.Nfts.GetCopy(id).Owner != MissingEntityID {
			return codes.TreasuryMustOwnBurnedNft
		}
	}

	treasury := tok.Treasury
	for _, serial := range serials {
		id := NftID{Token: tokenID, Serial: serial}
		s.ledgers.Nfts.Destroy(id)
		s.views.BurnNotice(id, treasury)
	}
	s.ledgers.Rels.Set(RelKeyFor(treasury, tokenID), func(r *Relationship) *Relationship {
		r.Balance -= n
		return r
	})
	s.ledgers.Accounts.Set(treasury, func(a *Account) *Account {
		a.NumNftsOwned -= n
		return a
	})
	s.sideEffects.TrackTokenUnitsChange(tokenID, treasury, -int64(n))

	newSupply := tok.TotalSupply - n
	s.Apply(tokenID, func(t *Token) { t.TotalSupply = newSupply })
	s.sideEffects.TrackTokenSupply(tokenID, newSupply)
	return codes.OK
}
