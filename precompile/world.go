package precompile

import (
	"heliochain/core/events"
	"heliochain/ledger"
	"heliochain/native/token"
)

// WorldLedgers is the frame-scoped view a precompile call mutates: the
// four transactional ledgers plus the side-effect tracker for that scope.
// Wrap layers a child view for a nested frame; reverting the child leaves
// this view untouched.
type WorldLedgers struct {
	Accounts *ledger.Transactional[token.EntityID, *token.Account]
	Tokens   *ledger.Transactional[token.EntityID, *token.Token]
	Rels     *ledger.Transactional[token.RelKey, *token.Relationship]
	Nfts     *ledger.Transactional[token.NftID, *token.UniqueToken]

	SideEffects *token.SideEffects
}

// NewWorldLedgers builds the durable-layer view over the given backings
// and opens a transaction on each ledger. A nil emitter discards events.
func NewWorldLedgers(
	accounts ledger.Backing[token.EntityID, *token.Account],
	tokens ledger.Backing[token.EntityID, *token.Token],
	rels ledger.Backing[token.RelKey, *token.Relationship],
	nfts ledger.Backing[token.NftID, *token.UniqueToken],
	emitter events.Emitter,
) *WorldLedgers {
	w := &WorldLedgers{
		Accounts:    ledger.New(accounts, func() *token.Account { return &token.Account{} }),
		Tokens:      ledger.New(tokens, func() *token.Token { return &token.Token{} }),
		Rels:        ledger.New(rels, func() *token.Relationship { return &token.Relationship{} }),
		Nfts:        ledger.New(nfts, func() *token.UniqueToken { return &token.UniqueToken{} }),
		SideEffects: token.NewSideEffects(),
	}
	w.Accounts.SetKeyToString(func(id token.EntityID) string { return id.String() })
	w.Tokens.SetKeyToString(func(id token.EntityID) string { return id.String() })
	w.Rels.SetKeyToString(func(k token.RelKey) string { return k.String() })
	w.Nfts.SetKeyToString(func(id token.NftID) string { return id.String() })
	w.SideEffects.SetEmitter(emitter)
	w.Begin()
	return w
}

// Wrap layers a child view over this one. Reads fall through until a
// write shadows a key; the child carries its own side-effect tracker.
func (w *WorldLedgers) Wrap() *WorldLedgers {
	child := &WorldLedgers{
		Accounts:    ledger.Wrap(w.Accounts),
		Tokens:      ledger.Wrap(w.Tokens),
		Rels:        ledger.Wrap(w.Rels),
		Nfts:        ledger.Wrap(w.Nfts),
		SideEffects: token.NewSideEffects(),
	}
	return child
}

// Begin opens a transaction on every ledger.
func (w *WorldLedgers) Begin() {
	w.Accounts.Begin()
	w.Tokens.Begin()
	w.Rels.Begin()
	w.Nfts.Begin()
}

// Commit flushes every ledger's change set into its source.
func (w *WorldLedgers) Commit() {
	w.Accounts.Commit()
	w.Tokens.Commit()
	w.Rels.Commit()
	w.Nfts.Commit()
}

// Revert discards every ledger's change set and the tracked side effects.
func (w *WorldLedgers) Revert() {
	w.Accounts.Rollback()
	w.Tokens.Rollback()
	w.Rels.Rollback()
	w.Nfts.Rollback()
	w.SideEffects.Reset()
}

// Ledgers adapts the view to the engine's ledger bundle.
func (w *WorldLedgers) Ledgers() token.Ledgers {
	return token.Ledgers{
		Accounts: w.Accounts,
		Tokens:   w.Tokens,
		Rels:     w.Rels,
		Nfts:     w.Nfts,
	}
}
