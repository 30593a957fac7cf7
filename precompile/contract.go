package precompile

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"heliochain/core/codes"
	"heliochain/core/types"
	"heliochain/ledger/ids"
	"heliochain/native/token"
	"heliochain/observability"
)

// ContractAddress is the EVM address the token service answers at. It
// sits in the reserved precompile range and is fixed across releases.
var ContractAddress = common.HexToAddress("0x0000000000000000000000000000000000000167")

// Frame is the slice of EVM call-frame context the bridge needs: who is
// calling, when, and whether mutation is allowed.
type Frame struct {
	Sender          token.EntityID
	SenderAddress   common.Address
	ConsensusSecond uint64
	Static          bool
}

// KeyActivationTest decides whether a stored ledger key is active for the
// frame. Signature cryptography lives behind this hook; the bridge only
// consumes the verdict.
type KeyActivationTest func(key token.Key, frame Frame) bool

// LongZeroKeyActivation treats a key as active when it encodes the
// calling contract's address, the contract-key convention for entities
// administered by a contract.
func LongZeroKeyActivation(key token.Key, frame Frame) bool {
	return len(key) == common.AddressLength && common.BytesToAddress(key) == frame.SenderAddress
}

// Result is the outcome of one precompile call. A nil Result from Compute
// means the selector is not handled here.
type Result struct {
	Output   []byte
	Status   codes.Code
	Reverted bool
	GasUsed  uint64
}

// TokenPrecompile dispatches ABI calls into the token engine. Each call
// runs the four phases in order: decoding, authorizing, executing over a
// freshly wrapped child view, and recording. No state leaks between
// calls; the child view commits only on full success.
type TokenPrecompile struct {
	world     *WorldLedgers
	ids       *ids.Source
	props     token.Properties
	views     token.UniqueTokenViews
	pricing   *PricingUtils
	historian *RecordsHistorian
	keyActive KeyActivationTest
	metrics   *observability.PrecompileMetrics
}

// NewTokenPrecompile wires the bridge over the transaction-scoped world
// view.
func NewTokenPrecompile(
	world *WorldLedgers,
	idSource *ids.Source,
	props token.Properties,
	views token.UniqueTokenViews,
	pricing *PricingUtils,
	historian *RecordsHistorian,
) *TokenPrecompile {
	return &TokenPrecompile{
		world:     world,
		ids:       idSource,
		props:     props,
		views:     views,
		pricing:   pricing,
		historian: historian,
		keyActive: LongZeroKeyActivation,
	}
}

// SetKeyActivation overrides the key activation hook.
func (p *TokenPrecompile) SetKeyActivation(test KeyActivationTest) {
	if test != nil {
		p.keyActive = test
	}
}

// SetMetrics enables dispatch metrics; nil disables them.
func (p *TokenPrecompile) SetMetrics(m *observability.PrecompileMetrics) { p.metrics = m }

// Address returns the fixed precompile address.
func (p *TokenPrecompile) Address() common.Address { return ContractAddress }

// RequiredGas prices the call from its selector alone, ahead of Compute.
func (p *TokenPrecompile) RequiredGas(input []byte) uint64 {
	selector, ok := selectorOf(input)
	if !ok {
		return 0
	}
	if selector == AbiRedirectForToken {
		return p.pricing.ViewGasRequirement()
	}
	return p.pricing.GasRequirement(selector)
}

// Compute runs one precompile call. Unknown selectors return nil so the
// caller can fall through to other handlers. Every handled call yields a
// Result; no fault escapes this boundary.
func (p *TokenPrecompile) Compute(frame Frame, input []byte) *Result {
	selector, ok := selectorOf(input)
	if !ok || !handledSelectors[selector] {
		return nil
	}
	start := time.Now()
	factory := NewSyntheticTxnFactory(frame.Sender, frame.ConsensusSecond)
	child := p.world.Wrap()
	result := p.computeGuarded(frame, selector, input, factory, child)
	outcome := "success"
	if result.Reverted {
		outcome = "revert"
	}
	p.metrics.ObserveCall(selectorName(selector), outcome, result.GasUsed, time.Since(start))
	return result
}

// computeGuarded is the recovery boundary: a tier-2 invalid-transaction
// signal keeps its code, anything else is downgraded to FAIL_INVALID. A
// failed call never leaves a partially committed child view behind.
func (p *TokenPrecompile) computeGuarded(
	frame Frame,
	selector uint32,
	input []byte,
	factory *SyntheticTxnFactory,
	child *WorldLedgers,
) (result *Result) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if child.Accounts.InTransaction() {
			child.Revert()
		}
		code := codes.FailInvalid
		if signal, ok := r.(InvalidTransactionError); ok {
			code = signal.Code
		}
		result = p.abortedResult(frame, input, factory, code)
	}()
	return p.dispatch(frame, selector, input, factory, child)
}

func (p *TokenPrecompile) dispatch(
	frame Frame,
	selector uint32,
	input []byte,
	factory *SyntheticTxnFactory,
	child *WorldLedgers,
) *Result {
	gas := p.RequiredGas(input)
	switch selector {
	case AbiAssociateToken:
		return p.runAssociate(frame, child, DecodeAssociateToken(input), factory, input, gas)
	case AbiAssociateTokens:
		return p.runAssociate(frame, child, DecodeAssociateTokens(input), factory, input, gas)
	case AbiDissociateToken:
		return p.runDissociate(frame, child, DecodeDissociateToken(input), factory, input, gas)
	case AbiDissociateTokens:
		return p.runDissociate(frame, child, DecodeDissociateTokens(input), factory, input, gas)
	case AbiMintToken:
		return p.runMint(frame, child, DecodeMint(input), factory, input, gas)
	case AbiBurnToken:
		return p.runBurn(frame, child, DecodeBurn(input), factory, input, gas)
	case AbiCryptoTransfer:
		return p.runTransfer(frame, child, DecodeCryptoTransfer(input), factory, input, gas)
	case AbiTransferToken:
		return p.runTransfer(frame, child, DecodeTransferToken(input), factory, input, gas)
	case AbiTransferTokens:
		return p.runTransfer(frame, child, DecodeTransferTokens(input), factory, input, gas)
	case AbiTransferNFT:
		return p.runTransfer(frame, child, DecodeTransferNFT(input), factory, input, gas)
	case AbiTransferNFTs:
		return p.runTransfer(frame, child, DecodeTransferNFTs(input), factory, input, gas)
	case AbiRedirectForToken:
		return p.runRedirect(frame, child, DecodeRedirectForToken(input), factory, input)
	default:
		panic("unreachable selector")
	}
}

// newStore builds the per-call engine over the child view. The treasury
// index is recomputed so the engine never trusts another call's cache.
func (p *TokenPrecompile) newStore(frame Frame, child *WorldLedgers) *token.Store {
	store := token.NewStore(p.ids, p.props, child.SideEffects, p.views, child.Ledgers())
	store.SetNowFunc(func() uint64 { return frame.ConsensusSecond })
	store.RebuildViews()
	return store
}

// finish closes the executing phase: a business failure reverts the child
// view and renders a status-only return; success renders the selector's
// return layout before committing. Both paths record.
func (p *TokenPrecompile) finish(
	frame Frame,
	child *WorldLedgers,
	body *types.TransactionBody,
	input []byte,
	code codes.Code,
	gas uint64,
	onSuccess func() ([]byte, types.TransactionReceipt),
) *Result {
	if !code.IsOK() {
		child.Revert()
		output := EncodeStatus(code)
		p.trackRecord(frame, body, input, code, gas, output)
		return &Result{Output: output, Status: code, Reverted: true, GasUsed: gas}
	}
	output, receipt := onSuccess()
	child.Commit()
	receipt.Status = codes.Success.String()
	p.trackSuccess(frame, body, input, gas, output, receipt)
	return &Result{Output: output, Status: codes.Success, GasUsed: gas}
}

func (p *TokenPrecompile) abortedResult(
	frame Frame,
	input []byte,
	factory *SyntheticTxnFactory,
	code codes.Code,
) *Result {
	gas := p.RequiredGas(input)
	output := EncodeStatus(code)
	p.trackRecord(frame, factory.Placeholder(), input, code, gas, output)
	return &Result{Output: output, Status: code, Reverted: true, GasUsed: gas}
}

// trackRecord attaches an unsuccessful record; the error string and the
// revert status must agree, since clients may observe either channel.
func (p *TokenPrecompile) trackRecord(
	frame Frame,
	body *types.TransactionBody,
	input []byte,
	code codes.Code,
	gas uint64,
	output []byte,
) {
	p.historian.TrackPrecompileRecord(&types.TransactionRecord{
		ID:              body.ID,
		Receipt:         types.TransactionReceipt{Status: code.String()},
		GasUsed:         gas,
		CallResult:      output,
		Error:           code.String(),
		FunctionParams:  append([]byte(nil), input...),
		ConsensusSecond: frame.ConsensusSecond,
	})
}

func (p *TokenPrecompile) trackSuccess(
	frame Frame,
	body *types.TransactionBody,
	input []byte,
	gas uint64,
	output []byte,
	receipt types.TransactionReceipt,
) {
	p.historian.TrackPrecompileRecord(&types.TransactionRecord{
		ID:              body.ID,
		Receipt:         receipt,
		GasUsed:         gas,
		CallResult:      output,
		FunctionParams:  append([]byte(nil), input...),
		ConsensusSecond: frame.ConsensusSecond,
	})
}

// --- authorization helpers ---

func (p *TokenPrecompile) assertNotStatic(frame Frame) {
	if frame.Static {
		abortWith(codes.InvalidTransaction)
	}
}

// assertAccountKeyActive gates operations acting on behalf of an account.
// The frame sender authorizes itself; anyone else must satisfy the
// account's key. Missing accounts fall through so the engine reports the
// precise code.
func (p *TokenPrecompile) assertAccountKeyActive(child *WorldLedgers, account token.EntityID, frame Frame) {
	if account == frame.Sender {
		return
	}
	if !child.Accounts.Exists(account) {
		return
	}
	key := child.Accounts.GetCopy(account).Key
	if !key.Present() || !p.keyActive(key, frame) {
		abortWith(codes.InvalidSignature)
	}
}

// assertSupplyKeyActive gates mint and burn. A token without a supply key
// falls through so the engine reports TOKEN_HAS_NO_SUPPLY_KEY.
func (p *TokenPrecompile) assertSupplyKeyActive(child *WorldLedgers, tokenID token.EntityID, frame Frame) {
	if !child.Tokens.Exists(tokenID) {
		return
	}
	key := child.Tokens.GetCopy(tokenID).SupplyKey
	if !key.Present() {
		return
	}
	if !p.keyActive(key, frame) {
		abortWith(codes.InvalidSignature)
	}
}

var handledSelectors = map[uint32]bool{
	AbiCryptoTransfer:   true,
	AbiTransferTokens:   true,
	AbiTransferToken:    true,
	AbiTransferNFTs:     true,
	AbiTransferNFT:      true,
	AbiMintToken:        true,
	AbiBurnToken:        true,
	AbiAssociateTokens:  true,
	AbiAssociateToken:   true,
	AbiDissociateTokens: true,
	AbiDissociateToken:  true,
	AbiRedirectForToken: true,
}

var selectorNames = map[uint32]string{
	AbiCryptoTransfer:   "cryptoTransfer",
	AbiTransferTokens:   "transferTokens",
	AbiTransferToken:    "transferToken",
	AbiTransferNFTs:     "transferNFTs",
	AbiTransferNFT:      "transferNFT",
	AbiMintToken:        "mintToken",
	AbiBurnToken:        "burnToken",
	AbiAssociateTokens:  "associateTokens",
	AbiAssociateToken:   "associateToken",
	AbiDissociateTokens: "dissociateTokens",
	AbiDissociateToken:  "dissociateToken",
	AbiRedirectForToken: "redirectForToken",
}

func selectorName(selector uint32) string {
	if name, ok := selectorNames[selector]; ok {
		return name
	}
	return "unknown"
}
