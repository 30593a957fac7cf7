package token

import (
	"errors"
	"fmt"
	"sort"

	"heliochain/core/codes"
	"heliochain/ledger"
	"heliochain/ledger/ids"
)

var (
	// ErrNoPendingCreation is the panic value for commit/rollback with no
	// creation in flight; that is a programmer error, not a business one.
	ErrNoPendingCreation = errors.New("token store: no pending token creation")
	// ErrUnknownToken is wrapped into the panic raised by Get and Apply
	// when the id was never checked with Exists.
	ErrUnknownToken = errors.New("token store: unknown token")
	// ErrTokenChangeFailed wraps a mutator fault inside Apply.
	ErrTokenChangeFailed = errors.New("token store: token change failed unexpectedly")
	// ErrUnknownTreasury is the panic value for removing a treasury the
	// derived index never learned about.
	ErrUnknownTreasury = errors.New("token store: not a known treasury")
)

// Properties are the dynamic ledger limits the engine enforces. They are
// passed in at construction; the engine holds no global configuration.
type Properties struct {
	MaxTokensPerAccount int
	AutoRenewEnabled    bool
	MinAutoRenewPeriod  uint64
	MaxAutoRenewPeriod  uint64
}

// Ledgers bundles the transactional views the engine mutates. The engine
// treats them as swappable: the precompile hands in frame-scoped wrappers,
// the native path hands in the transaction-scoped ledgers.
type Ledgers struct {
	Accounts *ledger.Transactional[EntityID, *Account]
	Tokens   *ledger.Transactional[EntityID, *Token]
	Rels     *ledger.Transactional[RelKey, *Relationship]
	Nfts     *ledger.Transactional[NftID, *UniqueToken]
}

// Store enforces the token-domain invariants over a set of transactional
// ledgers. State-changing operations validate their invariants before
// their first write, with one exception: auto-association on first touch
// lands before later gates run, so a non-OK code can leave pending
// changes behind. Callers own rolling back the enclosing transaction on
// failure.
type Store struct {
	ids         *ids.Source
	props       Properties
	sideEffects *SideEffects
	views       UniqueTokenViews
	ledgers     Ledgers

	// Derived cache of treasury -> token ids, rebuilt on restart.
	knownTreasuries map[EntityID]map[EntityID]struct{}

	pendingID       EntityID
	pendingCreation *Token

	nowFn func() uint64
}

// NewStore wires the engine. views may be nil for a no-op manager.
func NewStore(idSource *ids.Source, props Properties, sideEffects *SideEffects, views UniqueTokenViews, ledgers Ledgers) *Store {
	if views == nil {
		views = NoopUniqueTokenViews{}
	}
	return &Store{
		ids:             idSource,
		props:           props,
		sideEffects:     sideEffects,
		views:           views,
		ledgers:         ledgers,
		knownTreasuries: make(map[EntityID]map[EntityID]struct{}),
	}
}

// SetNowFunc overrides the consensus-second source, primarily for tests.
func (s *Store) SetNowFunc(now func() uint64) { s.nowFn = now }

func (s *Store) now() uint64 {
	if s.nowFn == nil {
		return 0
	}
	return s.nowFn()
}

// SideEffects exposes the tracker for the recording phase.
func (s *Store) SideEffects() *SideEffects { return s.sideEffects }

// checkAccountUsability gates every account argument: the account must
// exist, not be deleted, and not be detached (expired with zero balance)
// when auto-renew enforcement is on.
func (s *Store) checkAccountUsability(account EntityID) codes.Code {
	if !s.ledgers.Accounts.Exists(account) {
		return codes.InvalidAccountID
	}
	row := s.ledgers.Accounts.GetCopy(account)
	if row.Deleted {
		return codes.AccountDeleted
	}
	if s.props.AutoRenewEnabled && !row.SmartContract && row.Balance == 0 && row.Expiry <= s.now() {
		return codes.AccountExpiredAndPendingRemoval
	}
	return codes.OK
}

// RebuildViews recomputes the known-treasuries index from the token set.
// Used on restart and reconnect; deleted tokens' treasuries are no longer
// bound by treasury restrictions and are skipped.
func (s *Store) RebuildViews() {
	clear(s.knownTreasuries)
	for _, id := range s.ledgers.Tokens.Keys() {
		tok, ok := s.ledgers.Tokens.Get(id)
		if !ok || tok.Deleted {
			continue
		}
		s.AddKnownTreasury(tok.Treasury, id)
	}
}

// ListOfTokensServed returns the token ids the account treasures, in
// ascending id order.
func (s *Store) ListOfTokensServed(treasury EntityID) []EntityID {
	served, ok := s.knownTreasuries[treasury]
	if !ok {
		return nil
	}
	list := make([]EntityID, 0, len(served))
	for id := range served {
		list = append(list, id)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// IsCreationPending reports whether a provisional token awaits commit.
func (s *Store) IsCreationPending() bool { return s.pendingID != MissingEntityID }

// Associate links the account with each given token. A duplicate link,
// the per-account limit, or an exhausted automatic-association quota
// rejects the whole batch. New relationships are spliced at the head of
// the account's association linked list in O(1) per token.
func (s *Store) Associate(account EntityID, tokenIDs []EntityID, automatic bool) codes.Code {
	if validity := s.checkAccountUsability(account); validity != codes.OK {
		return validity
	}
	for _, id := range tokenIDs {
		if !s.Exists(id) {
			return codes.InvalidTokenID
		}
		if s.Get(id).Deleted {
			return codes.TokenWasDeleted
		}
	}

	row := s.ledgers.Accounts.GetCopy(account)
	associated := make(map[EntityID]struct{})
	count := 0
	for curr := row.LastAssociatedToken; !curr.IsMissing(); {
		associated[curr.Token] = struct{}{}
		count++
		curr = s.ledgers.Rels.GetCopy(curr).Next
	}
	seen := make(map[EntityID]struct{}, len(tokenIDs))
	for _, id := range tokenIDs {
		if _, already := associated[id]; already {
			return codes.TokenAlreadyAssociatedToAccount
		}
		if _, repeated := seen[id]; repeated {
			return codes.TokenIDRepeatedInTokenList
		}
		seen[id] = struct{}{}
	}
	if count+len(tokenIDs) > s.props.MaxTokensPerAccount {
		return codes.TokensPerAccountLimitExceeded
	}
	if automatic && row.UsedAutomaticAssociations >= row.MaxAutomaticAssociations {
		return codes.NoRemainingAutomaticAssociations
	}

	currKey := row.LastAssociatedToken
	for _, id := range tokenIDs {
		relKey := RelKeyFor(account, id)
		tok := s.Get(id)
		frozen := tok.HasFreezeKey() && tok.FrozenByDefault
		kycGranted := !tok.HasKycKey()

		s.ledgers.Rels.Create(relKey)
		prevOfHead := MissingRelKey
		if !currKey.IsMissing() {
			head := currKey
			prevOfHead = s.ledgers.Rels.GetCopy(head).Prev
			s.ledgers.Rels.Set(head, func(r *Relationship) *Relationship {
				r.Prev = relKey
				return r
			})
		}
		next := currKey
		s.ledgers.Rels.Set(relKey, func(r *Relationship) *Relationship {
			r.Frozen = frozen
			r.KycGranted = kycGranted
			r.Automatic = automatic
			r.Prev = prevOfHead
			r.Next = next
			return r
		})

		s.sideEffects.TrackAutoAssociation(id, account, automatic)
		if automatic {
			s.ledgers.Accounts.Set(account, func(a *Account) *Account {
				a.UsedAutomaticAssociations++
				return a
			})
		}
		currKey = relKey
	}
	head := currKey
	s.ledgers.Accounts.Set(account, func(a *Account) *Account {
		a.LastAssociatedToken = head
		return a
	})
	return codes.OK
}

// Dissociate splices the account's relationship with the token out of the
// association list. The relationship must carry a zero balance, and a
// token's current treasury cannot dissociate from it.
func (s *Store) Dissociate(account, tokenID EntityID) codes.Code {
	if validity := s.checkAccountUsability(account); validity != codes.OK {
		return validity
	}
	if !s.Exists(tokenID) {
		return codes.InvalidTokenID
	}
	relKey := RelKeyFor(account, tokenID)
	if !s.ledgers.Rels.Exists(relKey) {
		return codes.TokenNotAssociatedToAccount
	}
	if s.IsTreasuryForToken(account, tokenID) {
		return codes.AccountIsTreasury
	}
	rel := s.ledgers.Rels.GetCopy(relKey)
	if rel.Balance != 0 && !s.Get(tokenID).Deleted {
		return codes.TransactionRequiresZeroTokenBalances
	}

	if !rel.Prev.IsMissing() {
		next := rel.Next
		s.ledgers.Rels.Set(rel.Prev, func(r *Relationship) *Relationship {
			r.Next = next
			return r
		})
	}
	if !rel.Next.IsMissing() {
		prev := rel.Prev
		s.ledgers.Rels.Set(rel.Next, func(r *Relationship) *Relationship {
			r.Prev = prev
			return r
		})
	}
	wasAutomatic := rel.Automatic
	newHead := rel.Next
	s.ledgers.Accounts.Set(account, func(a *Account) *Account {
		if a.LastAssociatedToken == relKey {
			a.LastAssociatedToken = newHead
		}
		if wasAutomatic && a.UsedAutomaticAssociations > 0 {
			a.UsedAutomaticAssociations--
		}
		return a
	})
	s.ledgers.Rels.Destroy(relKey)
	s.sideEffects.TrackDissociation(tokenID, account)
	return codes.OK
}

// AssociationExists reports whether the account is linked with the token.
func (s *Store) AssociationExists(account, tokenID EntityID) bool {
	if s.checkAccountUsability(account) != codes.OK {
		return false
	}
	return s.Exists(tokenID) && s.ledgers.Rels.Exists(RelKeyFor(account, tokenID))
}

// Exists reports whether the id names the pending creation or a committed
// token.
func (s *Store) Exists(tokenID EntityID) bool {
	return (s.IsCreationPending() && s.pendingID == tokenID) || s.ledgers.Tokens.Exists(tokenID)
}

// Get returns a read copy of the token. It panics with ErrUnknownToken if
// the id is unknown; callers must check Exists first.
func (s *Store) Get(tokenID EntityID) *Token {
	s.throwIfMissing(tokenID)
	if s.IsCreationPending() && s.pendingID == tokenID {
		return s.pendingCreation.Clone()
	}
	return s.ledgers.Tokens.GetCopy(tokenID)
}

// Apply runs an in-place mutation against the committed token row. A
// mutator fault is wrapped as an engine-internal error rather than leaking
// as-is.
func (s *Store) Apply(tokenID EntityID, change func(*Token)) {
	s.throwIfMissing(tokenID)
	defer func() {
		if r := recover(); r != nil {
			panic(fmt.Errorf("%w: %v", ErrTokenChangeFailed, r))
		}
	}()
	s.ledgers.Tokens.Set(tokenID, func(t *Token) *Token {
		change(t)
		return t
	})
}

// GrantKyc marks the relationship KYC-granted; the token must carry a KYC
// key.
func (s *Store) GrantKyc(account, tokenID EntityID) codes.Code {
	return s.setHasKyc(account, tokenID, true)
}

// RevokeKyc clears the relationship's KYC flag.
func (s *Store) RevokeKyc(account, tokenID EntityID) codes.Code {
	return s.setHasKyc(account, tokenID, false)
}

// Freeze marks the relationship frozen; the token must carry a freeze key.
func (s *Store) Freeze(account, tokenID EntityID) codes.Code {
	return s.setIsFrozen(account, tokenID, true)
}

// Unfreeze clears the relationship's frozen flag.
func (s *Store) Unfreeze(account, tokenID EntityID) codes.Code {
	return s.setIsFrozen(account, tokenID, false)
}

func (s *Store) setHasKyc(account, tokenID EntityID, value bool) codes.Code {
	return s.manageFlag(account, tokenID, value, codes.TokenHasNoKycKey,
		func(t *Token) bool { return t.HasKycKey() },
		func(r *Relationship, v bool) { r.KycGranted = v })
}

func (s *Store) setIsFrozen(account, tokenID EntityID, value bool) codes.Code {
	return s.manageFlag(account, tokenID, value, codes.TokenHasNoFreezeKey,
		func(t *Token) bool { return t.HasFreezeKey() },
		func(r *Relationship, v bool) { r.Frozen = v })
}

func (s *Store) manageFlag(
	account, tokenID EntityID,
	value bool,
	keyFailure codes.Code,
	hasControlKey func(*Token) bool,
	setFlag func(*Relationship, bool),
) codes.Code {
	return s.sanityChecked(false, account, MissingEntityID, tokenID, func(tok *Token) codes.Code {
		if !hasControlKey(tok) {
			return keyFailure
		}
		s.ledgers.Rels.Set(RelKeyFor(account, tokenID), func(r *Relationship) *Relationship {
			setFlag(r, value)
			return r
		})
		return codes.OK
	})
}

// AdjustBalance applies a signed delta to the account's fungible balance
// of the token. Frozen or KYC-revoked relationships reject, as does any
// delta that would take the balance negative.
func (s *Store) AdjustBalance(account, tokenID EntityID, delta int64) codes.Code {
	return s.sanityChecked(true, account, MissingEntityID, tokenID, func(*Token) codes.Code {
		return s.tryAdjustment(account, tokenID, delta)
	})
}

func (s *Store) tryAdjustment(account, tokenID EntityID, delta int64) codes.Code {
	if validity := s.checkRelFrozenAndKyc(account, tokenID); validity != codes.OK {
		return validity
	}
	relKey := RelKeyFor(account, tokenID)
	balance := int64(s.ledgers.Rels.GetCopy(relKey).Balance)
	newBalance := balance + delta
	if newBalance < 0 {
		return codes.InsufficientTokenBalance
	}
	s.ledgers.Rels.Set(relKey, func(r *Relationship) *Relationship {
		r.Balance = uint64(newBalance)
		return r
	})
	s.sideEffects.TrackTokenUnitsChange(tokenID, account, delta)
	return codes.OK
}

func (s *Store) checkRelFrozenAndKyc(account, tokenID EntityID) codes.Code {
	rel := s.ledgers.Rels.GetCopy(RelKeyFor(account, tokenID))
	if rel.Frozen {
		return codes.AccountFrozenForToken
	}
	if !rel.KycGranted {
		return codes.AccountKycNotGrantedForToken
	}
	return codes.OK
}

// ChangeOwner transfers one serial from from to to. The stored owner
// sentinel resolves to the token's treasury for the ownership check, and a
// transfer to the treasury clears the owner back to the sentinel. Exactly
// one of the three view notices fires per transfer.
func (s *Store) ChangeOwner(nftID NftID, from, to EntityID) codes.Code {
	tokenID := nftID.Token
	return s.sanityChecked(false, from, to, tokenID, func(tok *Token) codes.Code {
		if !s.ledgers.Nfts.Exists(nftID) {
			return codes.InvalidNftID
		}
		if validity := s.checkRelFrozenAndKyc(from, tokenID); validity != codes.OK {
			return validity
		}
		if validity := s.checkRelFrozenAndKyc(to, tokenID); validity != codes.OK {
			return validity
		}

		treasury := tok.Treasury
		owner := s.ledgers.Nfts.GetCopy(nftID).Owner
		if owner == MissingEntityID {
			owner = treasury
		}
		if owner != from {
			return codes.SenderDoesNotOwnNftSerialNo
		}

		s.updateLedgersForNftExchange(nftID, from, to, owner, treasury)
		return codes.OK
	})
}

func (s *Store) updateLedgersForNftExchange(nftID NftID, from, to, owner, treasury EntityID) {
	fromRel := RelKeyFor(from, nftID.Token)
	toRel := RelKeyFor(to, nftID.Token)

	isTreasuryReturn := treasury == to
	newOwner := to
	if isTreasuryReturn {
		newOwner = MissingEntityID
	}
	s.ledgers.Nfts.Set(nftID, func(u *UniqueToken) *UniqueToken {
		u.Owner = newOwner
		u.Spender = MissingEntityID
		return u
	})

	// Correctness here depends on rejecting self-transfers upstream.
	s.ledgers.Accounts.Set(from, func(a *Account) *Account {
		a.NumNftsOwned--
		return a
	})
	s.ledgers.Accounts.Set(to, func(a *Account) *Account {
		a.NumNftsOwned++
		return a
	})
	s.ledgers.Rels.Set(fromRel, func(r *Relationship) *Relationship {
		r.Balance--
		return r
	})
	s.ledgers.Rels.Set(toRel, func(r *Relationship) *Relationship {
		r.Balance++
		return r
	})

	if isTreasuryReturn {
		s.views.TreasuryReturnNotice(nftID, owner, to)
	} else if treasury == from {
		s.views.TreasuryExitNotice(nftID, owner, to)
	} else {
		s.views.ExchangeNotice(nftID, owner, to)
	}
	s.sideEffects.TrackNftOwnerChange(nftID, from, to)
}

// ChangeOwnerWildCard moves all of from's held serials of the type to to
// in one step, used for whole-balance transfers. It adjusts only the
// aggregate counters and emits no per-serial view notices.
func (s *Store) ChangeOwnerWildCard(nftID NftID, from, to EntityID) codes.Code {
	tokenID := nftID.Token
	return s.sanityChecked(false, from, to, tokenID, func(*Token) codes.Code {
		if validity := s.checkRelFrozenAndKyc(from, tokenID); validity != codes.OK {
			return validity
		}
		if validity := s.checkRelFrozenAndKyc(to, tokenID); validity != codes.OK {
			return validity
		}

		fromRel := RelKeyFor(from, tokenID)
		toRel := RelKeyFor(to, tokenID)
		moved := s.ledgers.Rels.GetCopy(fromRel).Balance

		s.ledgers.Accounts.Set(from, func(a *Account) *Account {
			a.NumNftsOwned -= moved
			return a
		})
		s.ledgers.Accounts.Set(to, func(a *Account) *Account {
			a.NumNftsOwned += moved
			return a
		})
		s.ledgers.Rels.Set(fromRel, func(r *Relationship) *Relationship {
			r.Balance = 0
			return r
		})
		s.ledgers.Rels.Set(toRel, func(r *Relationship) *Relationship {
			r.Balance += moved
			return r
		})

		s.sideEffects.TrackNftOwnerChange(nftID, from, to)
		return codes.OK
	})
}

// MatchesTokenDecimals reports whether the token has the expected decimal
// scale, used by transfer lists carrying an expected-decimals guard.
func (s *Store) MatchesTokenDecimals(tokenID EntityID, expected uint32) bool {
	return s.Get(tokenID).Decimals == expected
}

// AddKnownTreasury records the account as treasury of the token in the
// derived index.
func (s *Store) AddKnownTreasury(account, tokenID EntityID) {
	served, ok := s.knownTreasuries[account]
	if !ok {
		served = make(map[EntityID]struct{})
		s.knownTreasuries[account] = served
	}
	served[tokenID] = struct{}{}
}

// RemoveKnownTreasuryForToken drops the token from the account's treasury
// set; it panics if the account was never a known treasury.
func (s *Store) RemoveKnownTreasuryForToken(account, tokenID EntityID) {
	served, ok := s.knownTreasuries[account]
	if !ok {
		panic(fmt.Errorf("%w: account %d", ErrUnknownTreasury, account))
	}
	delete(served, tokenID)
	if len(served) == 0 {
		delete(s.knownTreasuries, account)
	}
}

// IsKnownTreasury reports whether the account treasures any token.
func (s *Store) IsKnownTreasury(account EntityID) bool {
	_, ok := s.knownTreasuries[account]
	return ok
}

// IsTreasuryForToken reports whether the account is the token's treasury
// according to the derived index.
func (s *Store) IsTreasuryForToken(account, tokenID EntityID) bool {
	served, ok := s.knownTreasuries[account]
	if !ok {
		return false
	}
	_, serves := served[tokenID]
	return serves
}

// CreateProvisionally reserves an id and parks the candidate token in the
// pending-creation slot. Exactly one creation may be outstanding per
// engine instance.
func (s *Store) CreateProvisionally(candidate *Token) (EntityID, codes.Code) {
	if s.IsCreationPending() {
		return MissingEntityID, codes.FailInvalid
	}
	if validity := s.checkAccountUsability(candidate.Treasury); validity != codes.OK {
		return MissingEntityID, validity
	}
	s.pendingID = EntityID(s.ids.NewTokenNum())
	s.pendingCreation = candidate.Clone()
	return s.pendingID, codes.OK
}

// CommitCreation writes the pending token into the backing store and
// registers its treasury.
func (s *Store) CommitCreation() {
	s.throwIfNoCreationPending()
	id := s.pendingID
	pending := s.pendingCreation
	s.ledgers.Tokens.Put(id, pending)
	s.AddKnownTreasury(pending.Treasury, id)
	s.resetPendingCreation()
}

// RollbackCreation releases the reserved id and clears the pending slot.
func (s *Store) RollbackCreation() {
	s.throwIfNoCreationPending()
	s.ids.ReclaimLast()
	s.resetPendingCreation()
}

func (s *Store) resetPendingCreation() {
	s.pendingID = MissingEntityID
	s.pendingCreation = nil
}

func (s *Store) throwIfNoCreationPending() {
	if !s.IsCreationPending() {
		panic(ErrNoPendingCreation)
	}
}

func (s *Store) throwIfMissing(tokenID EntityID) {
	if !s.Exists(tokenID) {
		panic(fmt.Errorf("%w: %d", ErrUnknownToken, tokenID))
	}
}

// sanityChecked runs the shared gauntlet ahead of every relationship
// mutation: usable accounts, extant undeleted unpaused token, fungibility
// guard, and association (auto-associating when the account has spare
// automatic slots).
func (s *Store) sanityChecked(
	onlyFungibleCommon bool,
	account, counterparty, tokenID EntityID,
	action func(*Token) codes.Code,
) codes.Code {
	if validity := s.checkAccountUsability(account); validity != codes.OK {
		return validity
	}
	if counterparty != MissingEntityID {
		if validity := s.checkAccountUsability(counterparty); validity != codes.OK {
			return validity
		}
	}
	if !s.Exists(tokenID) {
		return codes.InvalidTokenID
	}
	tok := s.Get(tokenID)
	if tok.Deleted {
		return codes.TokenWasDeleted
	}
	if tok.Paused {
		return codes.TokenIsPaused
	}
	if onlyFungibleCommon && tok.Type == NonFungibleUnique {
		return codes.AccountAmountTransfersOnlyForFungible
	}

	if !s.ledgers.Rels.Exists(RelKeyFor(account, tokenID)) {
		if validity := s.validateAndAutoAssociate(account, tokenID); validity != codes.OK {
			return validity
		}
	}
	if counterparty != MissingEntityID && !s.ledgers.Rels.Exists(RelKeyFor(counterparty, tokenID)) {
		if validity := s.validateAndAutoAssociate(counterparty, tokenID); validity != codes.OK {
			return validity
		}
	}

	return action(tok)
}

// validateAndAutoAssociate associates in-flight instead of failing when
// the account still has automatic-association slots configured.
func (s *Store) validateAndAutoAssociate(account, tokenID EntityID) codes.Code {
	if s.ledgers.Accounts.GetCopy(account).MaxAutomaticAssociations > 0 {
		return s.Associate(account, []EntityID{tokenID}, true)
	}
	return codes.TokenNotAssociatedToAccount
}
