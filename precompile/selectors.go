// Package precompile is the EVM-addressable entry point of the token
// service. It decodes ABI call data into native token operations, runs
// them against a frame-scoped view of the ledgers, and reports the result
// both as ABI return bytes and as a synthetic transaction record.
package precompile

import "encoding/binary"

// Outer selectors of the token service contract. The values are the
// first four bytes of the keccak-256 hash of each signature and are fixed
// across releases.
const (
	// cryptoTransfer((address,(address,int64)[],(address,address,int64)[])[])
	AbiCryptoTransfer uint32 = 0x189a554c
	// transferTokens(address,address[],int64[])
	AbiTransferTokens uint32 = 0x82bba493
	// transferToken(address,address,address,int64)
	AbiTransferToken uint32 = 0xeca36917
	// transferNFTs(address,address[],address[],int64[])
	AbiTransferNFTs uint32 = 0x2c4ba191
	// transferNFT(address,address,address,int64)
	AbiTransferNFT uint32 = 0x5cfc9011
	// mintToken(address,uint64,bytes[])
	AbiMintToken uint32 = 0x278e0b88
	// burnToken(address,uint64,int64[])
	AbiBurnToken uint32 = 0xacb9cff9
	// associateTokens(address,address[])
	AbiAssociateTokens uint32 = 0x2e63879b
	// associateToken(address,address)
	AbiAssociateToken uint32 = 0x49146bde
	// dissociateTokens(address,address[])
	AbiDissociateTokens uint32 = 0x78b63918
	// dissociateToken(address,address)
	AbiDissociateToken uint32 = 0x099794e8
	// redirectForToken(address,bytes)
	AbiRedirectForToken uint32 = 0x618dc65e
)

// Inner ERC-20/721 selectors reachable through redirectForToken.
const (
	AbiErcName              uint32 = 0x06fdde03
	AbiErcSymbol            uint32 = 0x95d89b41
	AbiErcDecimals          uint32 = 0x313ce567
	AbiErcTotalSupply       uint32 = 0x18160ddd
	AbiErcBalanceOf         uint32 = 0x70a08231
	AbiErcTransfer          uint32 = 0xa9059cbb
	AbiErcTransferFrom      uint32 = 0x23b872dd
	AbiErcAllowance         uint32 = 0xdd62ed3e
	AbiErcApprove           uint32 = 0x095ea7b3
	AbiErcSetApprovalForAll uint32 = 0xa22cb465
	AbiErcGetApproved       uint32 = 0x081812fc
	AbiErcIsApprovedForAll  uint32 = 0xe985e9c5
	AbiErcOwnerOf           uint32 = 0x6352211e
	AbiErcTokenURI          uint32 = 0xc87b56dd
)

// selectorOf extracts the 4-byte function selector. ok is false when the
// input is too short to carry one.
func selectorOf(input []byte) (uint32, bool) {
	if len(input) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(input[:4]), true
}
