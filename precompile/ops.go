package precompile

import (
	"heliochain/core/codes"
	"heliochain/core/types"
	"heliochain/native/token"
)

func (p *TokenPrecompile) runAssociate(
	frame Frame,
	child *WorldLedgers,
	op AssociateOp,
	factory *SyntheticTxnFactory,
	input []byte,
	gas uint64,
) *Result {
	p.assertNotStatic(frame)
	body := factory.Associate(op)
	p.assertAccountKeyActive(child, op.Account, frame)
	store := p.newStore(frame, child)
	code := store.Associate(op.Account, op.Tokens, false)
	return p.finish(frame, child, body, input, code, gas, func() ([]byte, types.TransactionReceipt) {
		return EncodeStatus(codes.Success), types.TransactionReceipt{}
	})
}

func (p *TokenPrecompile) runDissociate(
	frame Frame,
	child *WorldLedgers,
	op DissociateOp,
	factory *SyntheticTxnFactory,
	input []byte,
	gas uint64,
) *Result {
	p.assertNotStatic(frame)
	body := factory.Dissociate(op)
	p.assertAccountKeyActive(child, op.Account, frame)
	store := p.newStore(frame, child)
	code := codes.OK
	for _, tokenID := range op.Tokens {
		if code = store.Dissociate(op.Account, tokenID); !code.IsOK() {
			break
		}
	}
	return p.finish(frame, child, body, input, code, gas, func() ([]byte, types.TransactionReceipt) {
		return EncodeStatus(codes.Success), types.TransactionReceipt{}
	})
}

func (p *TokenPrecompile) runMint(
	frame Frame,
	child *WorldLedgers,
	op MintOp,
	factory *SyntheticTxnFactory,
	input []byte,
	gas uint64,
) *Result {
	p.assertNotStatic(frame)
	body := factory.Mint(op)
	p.assertSupplyKeyActive(child, op.Token, frame)
	store := p.newStore(frame, child)
	code := store.Mint(op.Token, op.Amount, op.Metadata)
	return p.finish(frame, child, body, input, code, gas, func() ([]byte, types.TransactionReceipt) {
		supply, _ := child.SideEffects.NewSupplyOf(op.Token)
		serials := append([]uint64(nil), child.SideEffects.MintedSerials()...)
		output := EncodeMintResult(codes.Success, supply, serials)
		return output, types.TransactionReceipt{NewTotalSupply: supply, SerialNumbers: serials}
	})
}

func (p *TokenPrecompile) runBurn(
	frame Frame,
	child *WorldLedgers,
	op BurnOp,
	factory *SyntheticTxnFactory,
	input []byte,
	gas uint64,
) *Result {
	p.assertNotStatic(frame)
	body := factory.Burn(op)
	p.assertSupplyKeyActive(child, op.Token, frame)
	store := p.newStore(frame, child)
	code := store.Burn(op.Token, op.Amount, op.Serials)
	return p.finish(frame, child, body, input, code, gas, func() ([]byte, types.TransactionReceipt) {
		supply, _ := child.SideEffects.NewSupplyOf(op.Token)
		output := EncodeBurnResult(codes.Success, supply)
		return output, types.TransactionReceipt{NewTotalSupply: supply}
	})
}

func (p *TokenPrecompile) runTransfer(
	frame Frame,
	child *WorldLedgers,
	op CryptoTransferOp,
	factory *SyntheticTxnFactory,
	input []byte,
	gas uint64,
) *Result {
	p.assertNotStatic(frame)
	body := factory.CryptoTransfer(op)

	// Every debited party must have authorized the frame before any
	// ledger write happens.
	for _, list := range op.Lists {
		for _, leg := range list.Adjustments {
			if leg.Amount < 0 {
				p.assertAccountKeyActive(child, leg.Account, frame)
			}
		}
		for _, leg := range list.Exchanges {
			p.assertAccountKeyActive(child, leg.Sender, frame)
		}
	}

	store := p.newStore(frame, child)
	code := executeTransfer(store, op)
	return p.finish(frame, child, body, input, code, gas, func() ([]byte, types.TransactionReceipt) {
		return EncodeStatus(codes.Success), types.TransactionReceipt{}
	})
}

// executeTransfer applies each transfer list in order, stopping at the
// first violated invariant. Fungible legs of a list must net to zero.
func executeTransfer(store *token.Store, op CryptoTransferOp) codes.Code {
	for _, list := range op.Lists {
		var net int64
		for _, leg := range list.Adjustments {
			net += leg.Amount
		}
		if net != 0 {
			return codes.InvalidAccountAmounts
		}
		for _, leg := range list.Adjustments {
			if code := store.AdjustBalance(leg.Account, list.Token, leg.Amount); !code.IsOK() {
				return code
			}
		}
		for _, leg := range list.Exchanges {
			if leg.Sender == leg.Receiver {
				return codes.InvalidAccountAmounts
			}
			id := token.NftID{Token: list.Token, Serial: leg.Serial}
			if code := store.ChangeOwner(id, leg.Sender, leg.Receiver); !code.IsOK() {
				return code
			}
		}
	}
	return codes.OK
}
