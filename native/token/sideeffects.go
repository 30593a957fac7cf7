package token

import "heliochain/core/events"

// TokenUnitChange is a tracked fungible balance delta.
type TokenUnitChange struct {
	Token   EntityID
	Account EntityID
	Delta   int64
}

// NftOwnerChange is a tracked serial ownership transfer.
type NftOwnerChange struct {
	ID   NftID
	From EntityID
	To   EntityID
}

// AutoAssociation is a tracked relationship creation.
type AutoAssociation struct {
	Token     EntityID
	Account   EntityID
	Automatic bool
}

type Dissociation struct {
	Token   EntityID
	Account EntityID
}

// SideEffects accumulates the externally observable deltas of one
// transaction for the eventual consensus record. Scoped to a single
// transaction-processing context; Reset clears it between transactions.
type SideEffects struct {
	emitter       events.Emitter
	unitChanges   []TokenUnitChange
	ownerChanges  []NftOwnerChange
	associations  []AutoAssociation
	dissociations []Dissociation
	mintedSerials []uint64
	supplyByToken map[EntityID]uint64
}

// NewSideEffects returns an empty tracker that discards events.
func NewSideEffects() *SideEffects {
	return &SideEffects{
		emitter:       events.NoopEmitter{},
		supplyByToken: make(map[EntityID]uint64),
	}
}

// SetEmitter installs an event emitter. Passing nil resets to a no-op.
func (s *SideEffects) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		s.emitter = events.NoopEmitter{}
		return
	}
	s.emitter = emitter
}

// Reset drops every tracked side effect.
func (s *SideEffects) Reset() {
	s.unitChanges = s.unitChanges[:0]
	s.ownerChanges = s.ownerChanges[:0]
	s.associations = s.associations[:0]
	s.dissociations = s.dissociations[:0]
	s.mintedSerials = s.mintedSerials[:0]
	clear(s.supplyByToken)
}

// TrackTokenUnitsChange records a fungible balance delta.
func (s *SideEffects) TrackTokenUnitsChange(tokenID, account EntityID, delta int64) {
	s.unitChanges = append(s.unitChanges, TokenUnitChange{Token: tokenID, Account: account, Delta: delta})
	s.emitter.Emit(events.TokenUnitsChanged{Token: uint64(tokenID), Account: uint64(account), Delta: delta})
}

// TrackNftOwnerChange records a serial ownership transfer.
func (s *SideEffects) TrackNftOwnerChange(id NftID, from, to EntityID) {
	s.ownerChanges = append(s.ownerChanges, NftOwnerChange{ID: id, From: from, To: to})
	s.emitter.Emit(events.NftOwnerChanged{Token: uint64(id.Token), Serial: id.Serial, From: uint64(from), To: uint64(to)})
}

// TrackAutoAssociation records a relationship creation.
func (s *SideEffects) TrackAutoAssociation(tokenID, account EntityID, automatic bool) {
	s.associations = append(s.associations, AutoAssociation{Token: tokenID, Account: account, Automatic: automatic})
	s.emitter.Emit(events.TokenAssociated{Token: uint64(tokenID), Account: uint64(account), Automatic: automatic})
}

// TrackDissociation records a relationship removal.
func (s *SideEffects) TrackDissociation(tokenID, account EntityID) {
	s.dissociations = append(s.dissociations, Dissociation{Token: tokenID, Account: account})
	s.emitter.Emit(events.TokenDissociated{Token: uint64(tokenID), Account: uint64(account)})
}

// TrackTokenSupply records the post-operation total supply of a token.
func (s *SideEffects) TrackTokenSupply(tokenID EntityID, newSupply uint64) {
	s.supplyByToken[tokenID] = newSupply
	s.emitter.Emit(events.TokenSupplyChanged{Token: uint64(tokenID), NewSupply: newSupply})
}

// TrackMintedSerial records a serial created by an NFT mint.
func (s *SideEffects) TrackMintedSerial(serial uint64) {
	s.mintedSerials = append(s.mintedSerials, serial)
}

// UnitChanges returns the tracked fungible deltas in occurrence order.
func (s *SideEffects) UnitChanges() []TokenUnitChange { return s.unitChanges }

// OwnerChanges returns the tracked serial transfers in occurrence order.
func (s *SideEffects) OwnerChanges() []NftOwnerChange { return s.ownerChanges }

// Associations returns the tracked relationship creations.
func (s *SideEffects) Associations() []AutoAssociation { return s.associations }

// Dissociations returns the tracked relationship removals.
func (s *SideEffects) Dissociations() []Dissociation { return s.dissociations }

// MintedSerials returns the serials created by the last mint.
func (s *SideEffects) MintedSerials() []uint64 { return s.mintedSerials }

// NewSupplyOf returns the tracked post-operation supply of a token and
// whether mint or burn touched it this transaction.
func (s *SideEffects) NewSupplyOf(tokenID EntityID) (uint64, bool) {
	supply, ok := s.supplyByToken[tokenID]
	return supply, ok
}
