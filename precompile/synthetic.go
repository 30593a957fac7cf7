package precompile

import (
	"heliochain/core/types"
	"heliochain/native/token"
)

// SyntheticTxnFactory builds a native-transaction-shaped body for every
// EVM-triggered ledger mutation, so the audit record is uniform across
// entry paths. The body is used only for the record, never re-parsed.
type SyntheticTxnFactory struct {
	payer      token.EntityID
	validStart uint64
	nextNonce  uint32
}

// NewSyntheticTxnFactory derives transaction ids from the frame payer and
// the consensus second of the enclosing transaction.
func NewSyntheticTxnFactory(payer token.EntityID, consensusSecond uint64) *SyntheticTxnFactory {
	return &SyntheticTxnFactory{payer: payer, validStart: consensusSecond}
}

func (f *SyntheticTxnFactory) nextID() types.TransactionID {
	f.nextNonce++
	return types.TransactionID{
		Payer:          uint64(f.payer),
		ValidStartSecs: f.validStart,
		Nonce:          f.nextNonce,
	}
}

// Associate builds the body of a token-associate mutation.
func (f *SyntheticTxnFactory) Associate(op AssociateOp) *types.TransactionBody {
	return &types.TransactionBody{
		ID:        f.nextID(),
		Associate: &types.AssociateBody{Account: uint64(op.Account), Tokens: entityNums(op.Tokens)},
	}
}

// Dissociate builds the body of a token-dissociate mutation.
func (f *SyntheticTxnFactory) Dissociate(op DissociateOp) *types.TransactionBody {
	return &types.TransactionBody{
		ID:         f.nextID(),
		Dissociate: &types.DissociateBody{Account: uint64(op.Account), Tokens: entityNums(op.Tokens)},
	}
}

// Mint builds the body of a mint mutation.
func (f *SyntheticTxnFactory) Mint(op MintOp) *types.TransactionBody {
	return &types.TransactionBody{
		ID:        f.nextID(),
		MintToken: &types.MintBody{Token: uint64(op.Token), Amount: op.Amount, Metadata: op.Metadata},
	}
}

// Burn builds the body of a burn mutation.
func (f *SyntheticTxnFactory) Burn(op BurnOp) *types.TransactionBody {
	return &types.TransactionBody{
		ID:        f.nextID(),
		BurnToken: &types.BurnBody{Token: uint64(op.Token), Amount: op.Amount, Serials: op.Serials},
	}
}

// CryptoTransfer builds the body of a transfer mutation, covering the
// dedicated transfer selectors and the general crypto-transfer form.
func (f *SyntheticTxnFactory) CryptoTransfer(op CryptoTransferOp) *types.TransactionBody {
	lists := make([]types.TokenTransferList, len(op.Lists))
	for i, list := range op.Lists {
		adjustments := make([]types.AccountAmount, len(list.Adjustments))
		for j, leg := range list.Adjustments {
			adjustments[j] = types.AccountAmount{Account: uint64(leg.Account), Amount: leg.Amount}
		}
		exchanges := make([]types.NftExchange, len(list.Exchanges))
		for j, leg := range list.Exchanges {
			exchanges[j] = types.NftExchange{
				Sender:   uint64(leg.Sender),
				Receiver: uint64(leg.Receiver),
				Serial:   leg.Serial,
			}
		}
		lists[i] = types.TokenTransferList{
			Token:        uint64(list.Token),
			Adjustments:  adjustments,
			NftExchanges: exchanges,
		}
	}
	return &types.TransactionBody{
		ID:             f.nextID(),
		CryptoTransfer: &types.CryptoTransferBody{Transfers: lists},
	}
}

// Approve builds the body of an allowance or operator mutation.
func (f *SyntheticTxnFactory) Approve(body types.ApproveBody) *types.TransactionBody {
	approve := body
	return &types.TransactionBody{ID: f.nextID(), ApproveAllowance: &approve}
}

// Placeholder builds a body carrying only a transaction id, used when a
// call fails before its operation could be decoded.
func (f *SyntheticTxnFactory) Placeholder() *types.TransactionBody {
	return &types.TransactionBody{ID: f.nextID()}
}

func entityNums(ids []token.EntityID) []uint64 {
	nums := make([]uint64, len(ids))
	for i, id := range ids {
		nums[i] = uint64(id)
	}
	return nums
}
