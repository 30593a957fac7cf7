package events

import (
	"strconv"

	"heliochain/core/types"
)

const (
	// TypeTokenAssociated is emitted when a relationship row is created.
	TypeTokenAssociated = "token.associated"
	// TypeTokenDissociated is emitted when a relationship row is spliced out.
	TypeTokenDissociated = "token.dissociated"
	// TypeTokenUnitsChanged is emitted for fungible balance adjustments.
	TypeTokenUnitsChanged = "token.unitsChanged"
	// TypeNftOwnerChanged is emitted per serial ownership transfer.
	TypeNftOwnerChanged = "token.nftOwnerChanged"
	// TypeTokenSupplyChanged is emitted when mint or burn moves total supply.
	TypeTokenSupplyChanged = "token.supplyChanged"
)

type TokenAssociated struct {
	Token     uint64
	Account   uint64
	Automatic bool
}

func (TokenAssociated) EventType() string { return TypeTokenAssociated }

func (e TokenAssociated) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenAssociated,
		Attributes: map[string]string{
			"token":     strconv.FormatUint(e.Token, 10),
			"account":   strconv.FormatUint(e.Account, 10),
			"automatic": strconv.FormatBool(e.Automatic),
		},
	}
}

type TokenDissociated struct {
	Token   uint64
	Account uint64
}

func (TokenDissociated) EventType() string { return TypeTokenDissociated }

func (e TokenDissociated) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenDissociated,
		Attributes: map[string]string{
			"token":   strconv.FormatUint(e.Token, 10),
			"account": strconv.FormatUint(e.Account, 10),
		},
	}
}

type TokenUnitsChanged struct {
	Token   uint64
	Account uint64
	Delta   int64
}

func (TokenUnitsChanged) EventType() string { return TypeTokenUnitsChanged }

func (e TokenUnitsChanged) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenUnitsChanged,
		Attributes: map[string]string{
			"token":   strconv.FormatUint(e.Token, 10),
			"account": strconv.FormatUint(e.Account, 10),
			"delta":   strconv.FormatInt(e.Delta, 10),
		},
	}
}

type NftOwnerChanged struct {
	Token  uint64
	Serial uint64
	From   uint64
	To     uint64
}

func (NftOwnerChanged) EventType() string { return TypeNftOwnerChanged }

func (e NftOwnerChanged) Event() *types.Event {
	return &types.Event{
		Type: TypeNftOwnerChanged,
		Attributes: map[string]string{
			"token":  strconv.FormatUint(e.Token, 10),
			"serial": strconv.FormatUint(e.Serial, 10),
			"from":   strconv.FormatUint(e.From, 10),
			"to":     strconv.FormatUint(e.To, 10),
		},
	}
}

type TokenSupplyChanged struct {
	Token     uint64
	NewSupply uint64
}

func (TokenSupplyChanged) EventType() string { return TypeTokenSupplyChanged }

func (e TokenSupplyChanged) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenSupplyChanged,
		Attributes: map[string]string{
			"token":     strconv.FormatUint(e.Token, 10),
			"newSupply": strconv.FormatUint(e.NewSupply, 10),
		},
	}
}
