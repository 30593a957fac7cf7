package token

// The row types below are the durable state of the token service. They are
// RLP-encoded by the key-value backing store, so every field is either an
// unsigned integer, a bool, bytes, or a nested struct of the same.

// Token is a token definition. Once fetched through the engine it is a
// copy; mutation goes through Apply, Update, or CommitCreation only.
type Token struct {
	Type             TokenType
	Decimals         uint32
	TotalSupply      uint64
	NextSerial       uint64
	Treasury         EntityID
	AdminKey         Key
	KycKey           Key
	FreezeKey        Key
	WipeKey          Key
	SupplyKey        Key
	FeeScheduleKey   Key
	PauseKey         Key
	FrozenByDefault  bool
	Deleted          bool
	Paused           bool
	Expiry           uint64
	AutoRenewAccount EntityID
	AutoRenewPeriod  uint64
	Symbol           string
	Name             string
	Memo             string
}

func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}
	clone := *t
	clone.AdminKey = cloneKey(t.AdminKey)
	clone.KycKey = cloneKey(t.KycKey)
	clone.FreezeKey = cloneKey(t.FreezeKey)
	clone.WipeKey = cloneKey(t.WipeKey)
	clone.SupplyKey = cloneKey(t.SupplyKey)
	clone.FeeScheduleKey = cloneKey(t.FeeScheduleKey)
	clone.PauseKey = cloneKey(t.PauseKey)
	return &clone
}

func (t *Token) HasAdminKey() bool       { return t.AdminKey.Present() }
func (t *Token) HasKycKey() bool         { return t.KycKey.Present() }
func (t *Token) HasFreezeKey() bool      { return t.FreezeKey.Present() }
func (t *Token) HasWipeKey() bool        { return t.WipeKey.Present() }
func (t *Token) HasSupplyKey() bool      { return t.SupplyKey.Present() }
func (t *Token) HasFeeScheduleKey() bool { return t.FeeScheduleKey.Present() }
func (t *Token) HasPauseKey() bool       { return t.PauseKey.Present() }
func (t *Token) HasAutoRenewAccount() bool {
	return t.AutoRenewAccount != MissingEntityID
}

// TokenAllowance grants a spender a fungible budget from an owner.
type TokenAllowance struct {
	Token   EntityID
	Spender EntityID
	Amount  uint64
}

// NftOperator grants a spender transfer rights over all of an owner's
// serials of one token type (ERC-721 setApprovalForAll).
type NftOperator struct {
	Token   EntityID
	Spender EntityID
}

// Account is the account-side state the token service reads and writes.
type Account struct {
	Balance                   uint64
	Key                       Key
	Deleted                   bool
	SmartContract             bool
	Expiry                    uint64
	MaxAutomaticAssociations  uint32
	UsedAutomaticAssociations uint32
	NumNftsOwned              uint64
	// LastAssociatedToken points at the head of the account's association
	// linked list, or MissingRelKey when the account has none.
	LastAssociatedToken RelKey
	TokenAllowances     []TokenAllowance
	NftOperators        []NftOperator
}

func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Key = cloneKey(a.Key)
	clone.TokenAllowances = append([]TokenAllowance(nil), a.TokenAllowances...)
	clone.NftOperators = append([]NftOperator(nil), a.NftOperators...)
	return &clone
}

// AllowanceFor returns the fungible allowance granted to spender for the
// token, or zero when none exists.
func (a *Account) AllowanceFor(tokenID, spender EntityID) uint64 {
	for _, allowance := range a.TokenAllowances {
		if allowance.Token == tokenID && allowance.Spender == spender {
			return allowance.Amount
		}
	}
	return 0
}

// SetAllowance replaces the fungible allowance for (token, spender);
// setting zero removes the entry.
func (a *Account) SetAllowance(tokenID, spender EntityID, amount uint64) {
	for i, allowance := range a.TokenAllowances {
		if allowance.Token == tokenID && allowance.Spender == spender {
			if amount == 0 {
				a.TokenAllowances = append(a.TokenAllowances[:i], a.TokenAllowances[i+1:]...)
			} else {
				a.TokenAllowances[i].Amount = amount
			}
			return
		}
	}
	if amount != 0 {
		a.TokenAllowances = append(a.TokenAllowances, TokenAllowance{Token: tokenID, Spender: spender, Amount: amount})
	}
}

// IsOperatorFor reports whether spender holds approval-for-all over the
// owner's serials of the token.
func (a *Account) IsOperatorFor(tokenID, spender EntityID) bool {
	for _, op := range a.NftOperators {
		if op.Token == tokenID && op.Spender == spender {
			return true
		}
	}
	return false
}

// SetOperator grants or revokes approval-for-all for (token, spender).
func (a *Account) SetOperator(tokenID, spender EntityID, approved bool) {
	for i, op := range a.NftOperators {
		if op.Token == tokenID && op.Spender == spender {
			if !approved {
				a.NftOperators = append(a.NftOperators[:i], a.NftOperators[i+1:]...)
			}
			return
		}
	}
	if approved {
		a.NftOperators = append(a.NftOperators, NftOperator{Token: tokenID, Spender: spender})
	}
}

// Relationship is the per-(account, token) row: units held (or serials
// owned, for NFT types), the gating flags, and the two link fields of the
// account's association list.
type Relationship struct {
	Balance    uint64
	Frozen     bool
	KycGranted bool
	Automatic  bool
	Prev       RelKey
	Next       RelKey
}

func (r *Relationship) Clone() *Relationship {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

// UniqueToken is one serial of a non-fungible type. Owner is the sentinel
// MissingEntityID while the serial sits in the token's treasury. Spender
// is the serial-scoped ERC-721 approval.
type UniqueToken struct {
	Owner    EntityID
	Spender  EntityID
	Metadata []byte
}

func (u *UniqueToken) Clone() *UniqueToken {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Metadata = append([]byte(nil), u.Metadata...)
	return &clone
}
