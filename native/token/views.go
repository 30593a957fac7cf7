package token

// UniqueTokenViews receives exactly one notice per serial transfer, chosen
// by whether the sender or receiver is the token's treasury. Downstream
// views (treasury-held serial indexes, mirror feeds) key off the notice
// kind rather than re-deriving it from the transfer legs.
type UniqueTokenViews interface {
	// TreasuryReturnNotice fires when a serial moves back to the treasury.
	TreasuryReturnNotice(id NftID, prevOwner, newOwner EntityID)
	// TreasuryExitNotice fires when the treasury sends a serial out.
	TreasuryExitNotice(id NftID, prevOwner, newOwner EntityID)
	// ExchangeNotice fires for transfers not touching the treasury.
	ExchangeNotice(id NftID, prevOwner, newOwner EntityID)
	// MintNotice fires when a serial is minted into the treasury.
	MintNotice(id NftID, treasury EntityID)
	// BurnNotice fires when the treasury burns a serial it holds.
	BurnNotice(id NftID, treasury EntityID)
}

// NoopUniqueTokenViews discards all notices.
type NoopUniqueTokenViews struct{}

func (NoopUniqueTokenViews) TreasuryReturnNotice(NftID, EntityID, EntityID) {}
func (NoopUniqueTokenViews) TreasuryExitNotice(NftID, EntityID, EntityID)   {}
func (NoopUniqueTokenViews) ExchangeNotice(NftID, EntityID, EntityID)       {}
func (NoopUniqueTokenViews) MintNotice(NftID, EntityID)                     {}
func (NoopUniqueTokenViews) BurnNotice(NftID, EntityID)                     {}

// TreasurySerialViews maintains the set of serials each token's treasury
// currently holds. It is a derived cache rebuilt from notices, never a
// source of truth.
type TreasurySerialViews struct {
	held map[EntityID]map[uint64]struct{}
}

// NewTreasurySerialViews returns an empty view manager.
func NewTreasurySerialViews() *TreasurySerialViews {
	return &TreasurySerialViews{held: make(map[EntityID]map[uint64]struct{})}
}

func (v *TreasurySerialViews) TreasuryReturnNotice(id NftID, _, _ EntityID) {
	serials, ok := v.held[id.Token]
	if !ok {
		serials = make(map[uint64]struct{})
		v.held[id.Token] = serials
	}
	serials[id.Serial] = struct{}{}
}

func (v *TreasurySerialViews) TreasuryExitNotice(id NftID, _, _ EntityID) {
	if serials, ok := v.held[id.Token]; ok {
		delete(serials, id.Serial)
		if len(serials) == 0 {
			delete(v.held, id.Token)
		}
	}
}

func (v *TreasurySerialViews) ExchangeNotice(NftID, EntityID, EntityID) {}

func (v *TreasurySerialViews) MintNotice(id NftID, _ EntityID) {
	v.TreasuryReturnNotice(id, MissingEntityID, MissingEntityID)
}

func (v *TreasurySerialViews) BurnNotice(id NftID, _ EntityID) {
	v.TreasuryExitNotice(id, MissingEntityID, MissingEntityID)
}

// TreasuryHolds reports whether the token's treasury holds the serial
// according to the view.
func (v *TreasurySerialViews) TreasuryHolds(id NftID) bool {
	serials, ok := v.held[id.Token]
	if !ok {
		return false
	}
	_, held := serials[id.Serial]
	return held
}
