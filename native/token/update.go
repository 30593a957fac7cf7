package token

import "heliochain/core/codes"

// UpdateOp describes a token update. Nil pointer fields leave the current
// value untouched; a non-nil empty Key removes the key, which only the
// admin key sentinel path permits.
type UpdateOp struct {
	Token EntityID

	Symbol string
	Name   string
	Memo   *string

	Treasury *EntityID

	AdminKey       *Key
	KycKey         *Key
	FreezeKey      *Key
	WipeKey        *Key
	SupplyKey      *Key
	FeeScheduleKey *Key
	PauseKey       *Key

	Expiry           uint64
	AutoRenewAccount *EntityID
	AutoRenewPeriod  uint64
}

func (op *UpdateOp) replacesAnyKey() bool {
	return op.AdminKey != nil || op.KycKey != nil || op.FreezeKey != nil ||
		op.WipeKey != nil || op.SupplyKey != nil || op.FeeScheduleKey != nil ||
		op.PauseKey != nil
}

// affectsExpiryAtMost reports whether the op only pushes expiry forward,
// which even an immutable token allows.
func (op *UpdateOp) affectsExpiryAtMost() bool {
	return !op.replacesAnyKey() &&
		op.Symbol == "" && op.Name == "" && op.Memo == nil &&
		op.Treasury == nil && op.AutoRenewAccount == nil &&
		op.AutoRenewPeriod == 0 &&
		op.Expiry != 0
}

// Update applies the op against the committed token, validating every
// touched field before the first write. Changing the treasury requires
// the new treasury to be usable and associated, and for unique types to
// hold no stale balance; the known-treasuries index moves with it.
func (s *Store) Update(op UpdateOp, now uint64) codes.Code {
	if !s.ledgers.Tokens.Exists(op.Token) {
		return codes.InvalidTokenID
	}
	tok := s.ledgers.Tokens.GetCopy(op.Token)
	if tok.Deleted {
		return codes.TokenWasDeleted
	}
	if tok.Paused {
		return codes.TokenIsPaused
	}
	if !tok.HasAdminKey() && !op.affectsExpiryAtMost() {
		return codes.TokenIsImmutable
	}

	if op.Expiry != 0 && (op.Expiry <= now || op.Expiry < tok.Expiry) {
		return codes.InvalidExpirationTime
	}
	if op.AutoRenewPeriod != 0 &&
		(op.AutoRenewPeriod < s.props.MinAutoRenewPeriod || op.AutoRenewPeriod > s.props.MaxAutoRenewPeriod) {
		return codes.InvalidRenewalPeriod
	}
	if op.AutoRenewAccount != nil && *op.AutoRenewAccount != MissingEntityID {
		if s.checkAccountUsability(*op.AutoRenewAccount) != codes.OK {
			return codes.InvalidAutorenewAccount
		}
	}

	if validity := checkKeyOfType(op.KycKey, tok.HasKycKey(), codes.TokenHasNoKycKey); validity != codes.OK {
		return validity
	}
	if validity := checkKeyOfType(op.FreezeKey, tok.HasFreezeKey(), codes.TokenHasNoFreezeKey); validity != codes.OK {
		return validity
	}
	if validity := checkKeyOfType(op.WipeKey, tok.HasWipeKey(), codes.TokenHasNoWipeKey); validity != codes.OK {
		return validity
	}
	if validity := checkKeyOfType(op.SupplyKey, tok.HasSupplyKey(), codes.TokenHasNoSupplyKey); validity != codes.OK {
		return validity
	}
	if validity := checkKeyOfType(op.FeeScheduleKey, tok.HasFeeScheduleKey(), codes.TokenHasNoFeeScheduleKey); validity != codes.OK {
		return validity
	}
	if validity := checkKeyOfType(op.PauseKey, tok.HasPauseKey(), codes.TokenHasNoPauseKey); validity != codes.OK {
		return validity
	}

	replacingTreasury := op.Treasury != nil && *op.Treasury != tok.Treasury
	if replacingTreasury {
		newTreasury := *op.Treasury
		if validity := s.checkAccountUsability(newTreasury); validity != codes.OK {
			return validity
		}
		newRel := RelKeyFor(newTreasury, op.Token)
		if !s.ledgers.Rels.Exists(newRel) {
			return codes.TokenNotAssociatedToAccount
		}
		if tok.Type == NonFungibleUnique && s.ledgers.Rels.GetCopy(newRel).Balance != 0 {
			return codes.TransactionRequiresZeroTokenBalances
		}
	}

	if replacingTreasury {
		oldTreasury := tok.Treasury
		newTreasury := *op.Treasury
		s.RemoveKnownTreasuryForToken(oldTreasury, op.Token)
		s.AddKnownTreasury(newTreasury, op.Token)
		if tok.Type == NonFungibleUnique {
			s.migrateTreasurySerials(op.Token, oldTreasury, newTreasury)
		}
	}

	s.ledgers.Tokens.Set(op.Token, func(t *Token) *Token {
		if op.Symbol != "" {
			t.Symbol = op.Symbol
		}
		if op.Name != "" {
			t.Name = op.Name
		}
		if op.Memo != nil {
			t.Memo = *op.Memo
		}
		if op.Treasury != nil {
			t.Treasury = *op.Treasury
		}
		applyKey(&t.AdminKey, op.AdminKey)
		applyKey(&t.KycKey, op.KycKey)
		applyKey(&t.FreezeKey, op.FreezeKey)
		applyKey(&t.WipeKey, op.WipeKey)
		applyKey(&t.SupplyKey, op.SupplyKey)
		applyKey(&t.FeeScheduleKey, op.FeeScheduleKey)
		applyKey(&t.PauseKey, op.PauseKey)
		if op.Expiry != 0 {
			t.Expiry = op.Expiry
		}
		if op.AutoRenewAccount != nil {
			t.AutoRenewAccount = *op.AutoRenewAccount
		}
		if op.AutoRenewPeriod != 0 {
			t.AutoRenewPeriod = op.AutoRenewPeriod
		}
		return t
	})
	return codes.OK
}

// migrateTreasurySerials moves every sentinel-owned serial's balance
// accounting from the old treasury to the new one. Sentinel owners stay
// sentinel: they now resolve to the new treasury.
func (s *Store) migrateTreasurySerials(tokenID EntityID, oldTreasury, newTreasury EntityID) {
	oldRel := RelKeyFor(oldTreasury, tokenID)
	newRel := RelKeyFor(newTreasury, tokenID)
	moved := s.ledgers.Rels.GetCopy(oldRel).Balance
	if moved == 0 {
		return
	}
	s.ledgers.Rels.Set(oldRel, func(r *Relationship) *Relationship {
		r.Balance = 0
		return r
	})
	s.ledgers.Rels.Set(newRel, func(r *Relationship) *Relationship {
		r.Balance += moved
		return r
	})
	s.ledgers.Accounts.Set(oldTreasury, func(a *Account) *Account {
		a.NumNftsOwned -= moved
		return a
	})
	s.ledgers.Accounts.Set(newTreasury, func(a *Account) *Account {
		a.NumNftsOwned += moved
		return a
	})
}

// checkKeyOfType rejects replacing a key the token was created without.
func checkKeyOfType(candidate *Key, tokenHasKey bool, failure codes.Code) codes.Code {
	if candidate != nil && !tokenHasKey {
		return failure
	}
	return codes.OK
}

func applyKey(target *Key, candidate *Key) {
	if candidate == nil {
		return
	}
	if !candidate.Present() {
		*target = nil
		return
	}
	*target = cloneKey(*candidate)
}
