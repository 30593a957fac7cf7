package precompile

// PricingUtils converts an operation's native service fee into a gas
// requirement, so contract callers pay consistently with native
// submitters for the same logical operation. The conversion divides the
// fee by the reference gas price and applies a fixed safety multiplier.
type PricingUtils struct {
	referenceGasPrice uint64
	multiplierNum     uint64
	multiplierDen     uint64
	serviceFees       map[uint32]uint64
	viewGas           uint64
}

// Default service fees per outer selector, in the ledger's fee unit.
// The redirect selector is priced per inner call, not here.
var defaultServiceFees = map[uint32]uint64{
	AbiCryptoTransfer:   1_600_000,
	AbiTransferTokens:   1_600_000,
	AbiTransferToken:    1_200_000,
	AbiTransferNFTs:     1_600_000,
	AbiTransferNFT:      1_200_000,
	AbiMintToken:        1_800_000,
	AbiBurnToken:        1_800_000,
	AbiAssociateTokens:  2_400_000,
	AbiAssociateToken:   2_400_000,
	AbiDissociateTokens: 2_400_000,
	AbiDissociateToken:  2_400_000,

	AbiErcTransfer:          1_200_000,
	AbiErcTransferFrom:      1_200_000,
	AbiErcApprove:           1_000_000,
	AbiErcSetApprovalForAll: 1_000_000,
}

// NewPricingUtils builds a pricer. multiplierPercent is the safety margin
// in percent, e.g. 120 for the standard 1.2x.
func NewPricingUtils(referenceGasPrice uint64, multiplierPercent uint64) *PricingUtils {
	if referenceGasPrice == 0 {
		referenceGasPrice = 1
	}
	if multiplierPercent == 0 {
		multiplierPercent = 120
	}
	return &PricingUtils{
		referenceGasPrice: referenceGasPrice,
		multiplierNum:     multiplierPercent,
		multiplierDen:     100,
		serviceFees:       defaultServiceFees,
		viewGas:           100,
	}
}

// GasRequirement prices a mutating call by its outer selector.
func (p *PricingUtils) GasRequirement(selector uint32) uint64 {
	fee, ok := p.serviceFees[selector]
	if !ok {
		return p.viewGas
	}
	scaled := fee * p.multiplierNum
	gas := scaled / (p.multiplierDen * p.referenceGasPrice)
	if scaled%(p.multiplierDen*p.referenceGasPrice) != 0 {
		gas++
	}
	if gas < p.viewGas {
		return p.viewGas
	}
	return gas
}

// ViewGasRequirement prices the cheap read-only redirect path.
func (p *PricingUtils) ViewGasRequirement() uint64 {
	return p.viewGas
}
