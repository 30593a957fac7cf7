package precompile

import (
	"heliochain/core/codes"
	"heliochain/core/types"
	"heliochain/native/token"
)

// Fixed revert reasons for calling a selector against the wrong token
// type. These reject before execution; the ledger is never consulted.
var (
	reasonNotFungible    = []byte("invalid operation for non-fungible token")
	reasonNotNonFungible = []byte("invalid operation for fungible token")
)

var nftOnlySelectors = map[uint32]bool{
	AbiErcOwnerOf:           true,
	AbiErcTokenURI:          true,
	AbiErcGetApproved:       true,
	AbiErcSetApprovalForAll: true,
	AbiErcIsApprovedForAll:  true,
}

var fungibleOnlySelectors = map[uint32]bool{
	AbiErcDecimals:  true,
	AbiErcAllowance: true,
	AbiErcTransfer:  true,
}

var ercViewSelectors = map[uint32]bool{
	AbiErcName:             true,
	AbiErcSymbol:           true,
	AbiErcDecimals:         true,
	AbiErcTotalSupply:      true,
	AbiErcBalanceOf:        true,
	AbiErcAllowance:        true,
	AbiErcOwnerOf:          true,
	AbiErcTokenURI:         true,
	AbiErcGetApproved:      true,
	AbiErcIsApprovedForAll: true,
}

// runRedirect handles the two-level ERC dispatch: the outer selector
// names the token, the nested input carries the inner ERC call. Views
// answer from the current state on the cheap gas path; mutators run the
// full machine.
func (p *TokenPrecompile) runRedirect(
	frame Frame,
	child *WorldLedgers,
	op RedirectOp,
	factory *SyntheticTxnFactory,
	input []byte,
) *Result {
	inner, ok := selectorOf(op.Input)
	if !ok {
		abortWith(codes.FailInvalid)
	}

	viewGas := p.pricing.ViewGasRequirement()
	if !child.Tokens.Exists(op.Token) {
		child.Revert()
		return &Result{
			Output:   EncodeStatus(codes.InvalidTokenID),
			Status:   codes.InvalidTokenID,
			Reverted: true,
			GasUsed:  viewGas,
		}
	}
	tok := child.Tokens.GetCopy(op.Token)

	isFungible := tok.Type == token.FungibleCommon
	if isFungible && nftOnlySelectors[inner] {
		child.Revert()
		return &Result{Output: reasonNotNonFungible, Status: codes.NotSupported, Reverted: true, GasUsed: viewGas}
	}
	if !isFungible && fungibleOnlySelectors[inner] {
		child.Revert()
		return &Result{Output: reasonNotFungible, Status: codes.NotSupported, Reverted: true, GasUsed: viewGas}
	}

	if ercViewSelectors[inner] {
		return p.runErcView(child, op, tok, inner, viewGas)
	}

	switch inner {
	case AbiErcTransfer:
		return p.runErcTransfer(frame, child, op, factory, input)
	case AbiErcTransferFrom:
		return p.runErcTransferFrom(frame, child, op, tok, factory, input)
	case AbiErcApprove:
		return p.runErcApprove(frame, child, op, tok, factory, input)
	case AbiErcSetApprovalForAll:
		return p.runErcSetApprovalForAll(frame, child, op, factory, input)
	default:
		child.Revert()
		return &Result{
			Output:   EncodeStatus(codes.NotSupported),
			Status:   codes.NotSupported,
			Reverted: true,
			GasUsed:  viewGas,
		}
	}
}

// runErcView answers a read-only selector from the child view and then
// discards the view. View calls produce no synthetic record.
func (p *TokenPrecompile) runErcView(
	child *WorldLedgers,
	op RedirectOp,
	tok *token.Token,
	inner uint32,
	gas uint64,
) *Result {
	output, code := p.ercViewOutput(child, op, tok, inner)
	child.Revert()
	if !code.IsOK() {
		return &Result{Output: EncodeStatus(code), Status: code, Reverted: true, GasUsed: gas}
	}
	return &Result{Output: output, Status: codes.Success, GasUsed: gas}
}

func (p *TokenPrecompile) ercViewOutput(
	child *WorldLedgers,
	op RedirectOp,
	tok *token.Token,
	inner uint32,
) ([]byte, codes.Code) {
	switch inner {
	case AbiErcName:
		return EncodeString(tok.Name), codes.OK
	case AbiErcSymbol:
		return EncodeString(tok.Symbol), codes.OK
	case AbiErcDecimals:
		return EncodeUint(uint64(tok.Decimals)), codes.OK
	case AbiErcTotalSupply:
		return EncodeUint(tok.TotalSupply), codes.OK
	case AbiErcBalanceOf:
		owner := decodeErcAddress(inner, op.Input)
		relKey := token.RelKeyFor(owner, op.Token)
		if !child.Rels.Exists(relKey) {
			return EncodeUint(0), codes.OK
		}
		return EncodeUint(child.Rels.GetCopy(relKey).Balance), codes.OK
	case AbiErcAllowance:
		owner, spender := decodeErcAddressPair(inner, op.Input)
		if !child.Accounts.Exists(owner) {
			return EncodeUint(0), codes.OK
		}
		return EncodeUint(child.Accounts.GetCopy(owner).AllowanceFor(op.Token, spender)), codes.OK
	case AbiErcOwnerOf:
		serial := decodeErcSerial(inner, op.Input)
		id := token.NftID{Token: op.Token, Serial: serial}
		if !child.Nfts.Exists(id) {
			return nil, codes.InvalidNftID
		}
		owner := child.Nfts.GetCopy(id).Owner
		if owner == token.MissingEntityID {
			owner = tok.Treasury
		}
		return EncodeAddress(owner), codes.OK
	case AbiErcTokenURI:
		serial := decodeErcSerial(inner, op.Input)
		id := token.NftID{Token: op.Token, Serial: serial}
		if !child.Nfts.Exists(id) {
			return nil, codes.InvalidNftID
		}
		return EncodeString(string(child.Nfts.GetCopy(id).Metadata)), codes.OK
	case AbiErcGetApproved:
		serial := decodeErcSerial(inner, op.Input)
		id := token.NftID{Token: op.Token, Serial: serial}
		if !child.Nfts.Exists(id) {
			return nil, codes.InvalidNftID
		}
		return EncodeAddress(child.Nfts.GetCopy(id).Spender), codes.OK
	case AbiErcIsApprovedForAll:
		owner, operator := decodeErcAddressPair(inner, op.Input)
		approved := child.Accounts.Exists(owner) &&
			child.Accounts.GetCopy(owner).IsOperatorFor(op.Token, operator)
		return EncodeBool(approved), codes.OK
	default:
		return nil, codes.NotSupported
	}
}

// runErcTransfer moves fungible units out of the calling account.
func (p *TokenPrecompile) runErcTransfer(
	frame Frame,
	child *WorldLedgers,
	op RedirectOp,
	factory *SyntheticTxnFactory,
	input []byte,
) *Result {
	p.assertNotStatic(frame)
	recipient, rawAmount := decodeErcAddressAmount(AbiErcTransfer, op.Input)
	amount := int64AmountOf(AbiErcTransfer, rawAmount)
	transfer := CryptoTransferOp{Lists: []TokenTransferOp{{
		Token: op.Token,
		Adjustments: []AccountAmount{
			{Account: frame.Sender, Amount: -amount},
			{Account: recipient, Amount: amount},
		},
	}}}
	body := factory.CryptoTransfer(transfer)
	store := p.newStore(frame, child)
	code := executeTransfer(store, transfer)
	gas := p.pricing.GasRequirement(AbiErcTransfer)
	return p.finish(frame, child, body, input, code, gas, func() ([]byte, types.TransactionReceipt) {
		return EncodeBool(true), types.TransactionReceipt{}
	})
}

// runErcTransferFrom spends an allowance: the amount form for fungible
// tokens, the serial form for unique tokens.
func (p *TokenPrecompile) runErcTransferFrom(
	frame Frame,
	child *WorldLedgers,
	op RedirectOp,
	tok *token.Token,
	factory *SyntheticTxnFactory,
	input []byte,
) *Result {
	p.assertNotStatic(frame)
	store := p.newStore(frame, child)

	if tok.Type == token.FungibleCommon {
		from, to, rawAmount := decodeErcAddressPairAmount(AbiErcTransferFrom, op.Input)
		amount := int64AmountOf(AbiErcTransferFrom, rawAmount)
		transfer := CryptoTransferOp{Lists: []TokenTransferOp{{
			Token: op.Token,
			Adjustments: []AccountAmount{
				{Account: from, Amount: -amount},
				{Account: to, Amount: amount},
			},
		}}}
		body := factory.CryptoTransfer(transfer)
		code := codes.OK
		if from != frame.Sender {
			code = store.UseTokenAllowance(from, frame.Sender, op.Token, uint64(amount))
		}
		if code.IsOK() {
			code = executeTransfer(store, transfer)
		}
		gas := p.pricing.GasRequirement(AbiErcTransferFrom)
		return p.finish(frame, child, body, input, code, gas, func() ([]byte, types.TransactionReceipt) {
			return EncodeBool(true), types.TransactionReceipt{}
		})
	}

	from, to, rawSerial := decodeErcAddressPairAmount(AbiErcTransferFrom, op.Input)
	if !rawSerial.IsInt64() {
		failDecode(AbiErcTransferFrom, "serial number out of range")
	}
	serial := serialOf(AbiErcTransferFrom, rawSerial.Int64())
	id := token.NftID{Token: op.Token, Serial: serial}
	transfer := CryptoTransferOp{Lists: []TokenTransferOp{{
		Token:     op.Token,
		Exchanges: []NftExchange{{Sender: from, Receiver: to, Serial: serial}},
	}}}
	body := factory.CryptoTransfer(transfer)
	code := codes.OK
	if from != frame.Sender && !store.CanSpendNft(frame.Sender, id) {
		code = codes.SpenderDoesNotHaveAllowance
	}
	if code.IsOK() {
		code = store.ChangeOwner(id, from, to)
	}
	gas := p.pricing.GasRequirement(AbiErcTransferFrom)
	return p.finish(frame, child, body, input, code, gas, func() ([]byte, types.TransactionReceipt) {
		return nil, types.TransactionReceipt{}
	})
}

// runErcApprove grants an amount allowance on fungible tokens and a
// per-serial spender on unique tokens.
func (p *TokenPrecompile) runErcApprove(
	frame Frame,
	child *WorldLedgers,
	op RedirectOp,
	tok *token.Token,
	factory *SyntheticTxnFactory,
	input []byte,
) *Result {
	p.assertNotStatic(frame)
	store := p.newStore(frame, child)
	gas := p.pricing.GasRequirement(AbiErcApprove)

	if tok.Type == token.FungibleCommon {
		spender, rawAmount := decodeErcAddressAmount(AbiErcApprove, op.Input)
		amount := int64AmountOf(AbiErcApprove, rawAmount)
		body := factory.Approve(types.ApproveBody{
			Token:   uint64(op.Token),
			Owner:   uint64(frame.Sender),
			Spender: uint64(spender),
			Amount:  uint64(amount),
		})
		code := store.ApproveTokenAllowance(frame.Sender, spender, op.Token, uint64(amount))
		return p.finish(frame, child, body, input, code, gas, func() ([]byte, types.TransactionReceipt) {
			return EncodeBool(true), types.TransactionReceipt{}
		})
	}

	spender, rawSerial := decodeErcAddressAmount(AbiErcApprove, op.Input)
	if !rawSerial.IsInt64() {
		failDecode(AbiErcApprove, "serial number out of range")
	}
	serial := serialOf(AbiErcApprove, rawSerial.Int64())
	body := factory.Approve(types.ApproveBody{
		Token:   uint64(op.Token),
		Owner:   uint64(frame.Sender),
		Spender: uint64(spender),
		Serial:  serial,
	})
	code := store.ApproveNftSerial(frame.Sender, spender, token.NftID{Token: op.Token, Serial: serial})
	return p.finish(frame, child, body, input, code, gas, func() ([]byte, types.TransactionReceipt) {
		return nil, types.TransactionReceipt{}
	})
}

// runErcSetApprovalForAll grants or revokes an operator over all of the
// caller's serials.
func (p *TokenPrecompile) runErcSetApprovalForAll(
	frame Frame,
	child *WorldLedgers,
	op RedirectOp,
	factory *SyntheticTxnFactory,
	input []byte,
) *Result {
	p.assertNotStatic(frame)
	operator, approved := decodeErcAddressBool(AbiErcSetApprovalForAll, op.Input)
	body := factory.Approve(types.ApproveBody{
		Token:          uint64(op.Token),
		Owner:          uint64(frame.Sender),
		Spender:        uint64(operator),
		ApprovedForAll: approved,
	})
	store := p.newStore(frame, child)
	code := store.SetApprovalForAll(frame.Sender, operator, op.Token, approved)
	gas := p.pricing.GasRequirement(AbiErcSetApprovalForAll)
	return p.finish(frame, child, body, input, code, gas, func() ([]byte, types.TransactionReceipt) {
		return nil, types.TransactionReceipt{}
	})
}
