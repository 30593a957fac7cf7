package token

import "heliochain/core/codes"

// ApproveTokenAllowance grants spender the right to move up to amount
// units of the fungible token out of owner's balance. Amount zero revokes
// the grant. Only fungible types carry amount allowances.
func (s *Store) ApproveTokenAllowance(owner, spender, tokenID EntityID, amount uint64) codes.Code {
	return s.sanityChecked(true, owner, MissingEntityID, tokenID, func(*Token) codes.Code {
		if !s.ledgers.Accounts.Exists(spender) {
			return codes.InvalidAccountID
		}
		s.ledgers.Accounts.Set(owner, func(a *Account) *Account {
			a.SetAllowance(tokenID, spender, amount)
			return a
		})
		return codes.OK
	})
}

// TokenAllowanceOf returns the remaining fungible allowance, zero when no
// grant exists.
func (s *Store) TokenAllowanceOf(owner, spender, tokenID EntityID) uint64 {
	if !s.ledgers.Accounts.Exists(owner) {
		return 0
	}
	return s.ledgers.Accounts.GetCopy(owner).AllowanceFor(tokenID, spender)
}

// UseTokenAllowance consumes amount from spender's fungible allowance on
// owner's balance. A spend beyond the remaining grant rejects without
// touching it.
func (s *Store) UseTokenAllowance(owner, spender, tokenID EntityID, amount uint64) codes.Code {
	remaining := s.TokenAllowanceOf(owner, spender, tokenID)
	if remaining == 0 {
		return codes.SpenderDoesNotHaveAllowance
	}
	if amount > remaining {
		return codes.AmountExceedsAllowance
	}
	s.ledgers.Accounts.Set(owner, func(a *Account) *Account {
		a.SetAllowance(tokenID, spender, remaining-amount)
		return a
	})
	return codes.OK
}

// ApproveNftSerial sets the per-serial spender. Only the serial's current
// owner (treasury for the sentinel) may grant it; MissingEntityID clears.
func (s *Store) ApproveNftSerial(owner, spender EntityID, id NftID) codes.Code {
	return s.sanityChecked(false, owner, MissingEntityID, id.Token, func(tok *Token) codes.Code {
		if !s.ledgers.Nfts.Exists(id) {
			return codes.InvalidNftID
		}
		holder := s.ledgers.Nfts.GetCopy(id).Owner
		if holder == MissingEntityID {
			holder = tok.Treasury
		}
		if holder != owner {
			return codes.SenderDoesNotOwnNftSerialNo
		}
		s.ledgers.Nfts.Set(id, func(u *UniqueToken) *UniqueToken {
			u.Spender = spender
			return u
		})
		return codes.OK
	})
}

// NftSpenderOf returns the approved spender of the serial, if any.
func (s *Store) NftSpenderOf(id NftID) (EntityID, bool) {
	if !s.ledgers.Nfts.Exists(id) {
		return MissingEntityID, false
	}
	spender := s.ledgers.Nfts.GetCopy(id).Spender
	return spender, spender != MissingEntityID
}

// SetApprovalForAll grants or revokes spender's operator status over all
// of owner's serials of the token.
func (s *Store) SetApprovalForAll(owner, spender, tokenID EntityID, approved bool) codes.Code {
	return s.sanityChecked(false, owner, MissingEntityID, tokenID, func(tok *Token) codes.Code {
		if tok.Type != NonFungibleUnique {
			return codes.InvalidTokenID
		}
		if !s.ledgers.Accounts.Exists(spender) {
			return codes.InvalidAccountID
		}
		s.ledgers.Accounts.Set(owner, func(a *Account) *Account {
			a.SetOperator(tokenID, spender, approved)
			return a
		})
		return codes.OK
	})
}

// IsApprovedForAll reports whether spender is an operator over owner's
// serials of the token.
func (s *Store) IsApprovedForAll(owner, spender, tokenID EntityID) bool {
	if !s.ledgers.Accounts.Exists(owner) {
		return false
	}
	return s.ledgers.Accounts.GetCopy(owner).IsOperatorFor(tokenID, spender)
}

// CanSpendNft reports whether spender may move the serial: the owner
// always can, as may the serial's approved spender or an operator of the
// owner.
func (s *Store) CanSpendNft(spender EntityID, id NftID) bool {
	if !s.ledgers.Nfts.Exists(id) || !s.Exists(id.Token) {
		return false
	}
	row := s.ledgers.Nfts.GetCopy(id)
	owner := row.Owner
	if owner == MissingEntityID {
		owner = s.Get(id.Token).Treasury
	}
	if spender == owner || spender == row.Spender {
		return true
	}
	return s.IsApprovedForAll(owner, spender, id.Token)
}
