package precompile

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/require"

	"heliochain/core/codes"
	"heliochain/native/token"
)

func redirectInput(t *testing.T, tokenID token.EntityID, inner uint32, innerArgs abi.Arguments, values ...any) []byte {
	t.Helper()
	nested := packInput(t, inner, innerArgs, values...)
	return packInput(t, AbiRedirectForToken, args(typeAddress, typeBytes), addr(uint64(tokenID)), nested)
}

func newErcFixture(t *testing.T) *bridgeFixture {
	t.Helper()
	f := newBridgeFixture(t)
	f.seedAccount(treasuryAcct, func(a *token.Account) { a.NumNftsOwned = 1 })
	f.seedAccount(aliceAcct, func(a *token.Account) { a.NumNftsOwned = 1 })
	f.seedAccount(bobAcct)
	f.seedToken(fungibleTok, func(tok *token.Token) {
		tok.Name = "Helio Token"
		tok.Symbol = "HLO"
		tok.Decimals = 6
		tok.TotalSupply = 50
	})
	f.seedToken(uniqueTok, func(tok *token.Token) {
		tok.Type = token.NonFungibleUnique
		tok.Name = "Helio Serial"
		tok.Symbol = "HLS"
	})
	f.seedRel(treasuryAcct, fungibleTok, 20)
	f.seedRel(aliceAcct, fungibleTok, 30)
	f.seedRel(bobAcct, fungibleTok, 0)
	f.seedRel(aliceAcct, uniqueTok, 1)
	f.seedRel(bobAcct, uniqueTok, 0)
	f.seedRel(treasuryAcct, uniqueTok, 1)

	for serial, owner := range map[uint64]token.EntityID{1: aliceAcct, 2: token.MissingEntityID} {
		id := token.NftID{Token: uniqueTok, Serial: serial}
		f.world.Nfts.Create(id)
		ownedBy := owner
		f.world.Nfts.Set(id, func(u *token.UniqueToken) *token.UniqueToken {
			u.Owner = ownedBy
			u.Metadata = []byte("ipfs://serial")
			return u
		})
	}
	return f
}

func TestErcViews(t *testing.T) {
	f := newErcFixture(t)
	frame := frameOf(aliceAcct)

	result := f.bridge.Compute(frame, redirectInput(t, fungibleTok, AbiErcName, nil))
	require.Equal(t, codes.Success, result.Status)
	require.Equal(t, EncodeString("Helio Token"), result.Output)
	require.Equal(t, uint64(100), result.GasUsed)

	result = f.bridge.Compute(frame, redirectInput(t, fungibleTok, AbiErcSymbol, nil))
	require.Equal(t, EncodeString("HLO"), result.Output)

	result = f.bridge.Compute(frame, redirectInput(t, fungibleTok, AbiErcDecimals, nil))
	require.Equal(t, EncodeUint(6), result.Output)

	result = f.bridge.Compute(frame, redirectInput(t, fungibleTok, AbiErcTotalSupply, nil))
	require.Equal(t, EncodeUint(50), result.Output)

	result = f.bridge.Compute(frame,
		redirectInput(t, fungibleTok, AbiErcBalanceOf, args(typeAddress), addr(uint64(aliceAcct))))
	require.Equal(t, EncodeUint(30), result.Output)

	// No synthetic records for view calls.
	require.Empty(t, f.historian.Records())
}

func TestErcBalanceOfUnassociatedIsZero(t *testing.T) {
	f := newErcFixture(t)
	ghost := token.EntityID(1777)
	f.seedAccount(ghost)

	result := f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, fungibleTok, AbiErcBalanceOf, args(typeAddress), addr(uint64(ghost))))
	require.Equal(t, codes.Success, result.Status)
	require.Equal(t, EncodeUint(0), result.Output)
}

func TestErcOwnerOfResolvesTreasurySentinel(t *testing.T) {
	f := newErcFixture(t)
	frame := frameOf(aliceAcct)

	result := f.bridge.Compute(frame,
		redirectInput(t, uniqueTok, AbiErcOwnerOf, args(typeUint256), big.NewInt(1)))
	require.Equal(t, EncodeAddress(aliceAcct), result.Output)

	result = f.bridge.Compute(frame,
		redirectInput(t, uniqueTok, AbiErcOwnerOf, args(typeUint256), big.NewInt(2)))
	require.Equal(t, EncodeAddress(treasuryAcct), result.Output)

	result = f.bridge.Compute(frame,
		redirectInput(t, uniqueTok, AbiErcOwnerOf, args(typeUint256), big.NewInt(9)))
	require.Equal(t, codes.InvalidNftID, result.Status)
	require.True(t, result.Reverted)
}

func TestErcTokenURI(t *testing.T) {
	f := newErcFixture(t)
	result := f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, uniqueTok, AbiErcTokenURI, args(typeUint256), big.NewInt(1)))
	require.Equal(t, EncodeString("ipfs://serial"), result.Output)
}

func TestErcTypeMisuseFixedReasons(t *testing.T) {
	f := newErcFixture(t)
	frame := frameOf(aliceAcct)

	// An NFT-only selector against a fungible token.
	result := f.bridge.Compute(frame,
		redirectInput(t, fungibleTok, AbiErcOwnerOf, args(typeUint256), big.NewInt(1)))
	require.Equal(t, codes.NotSupported, result.Status)
	require.True(t, result.Reverted)
	require.Equal(t, []byte("invalid operation for fungible token"), result.Output)

	// A fungible-only selector against a unique token.
	result = f.bridge.Compute(frame, redirectInput(t, uniqueTok, AbiErcDecimals, nil))
	require.Equal(t, codes.NotSupported, result.Status)
	require.Equal(t, []byte("invalid operation for non-fungible token"), result.Output)
}

func TestErcRedirectUnknownToken(t *testing.T) {
	f := newErcFixture(t)
	result := f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, token.EntityID(9999), AbiErcName, nil))
	require.Equal(t, codes.InvalidTokenID, result.Status)
	require.True(t, result.Reverted)
	require.Equal(t, uint64(100), result.GasUsed)
}

func TestErcRedirectUnknownInnerSelector(t *testing.T) {
	f := newErcFixture(t)
	nested := []byte{0xde, 0xad, 0xbe, 0xef}
	input := packInput(t, AbiRedirectForToken, args(typeAddress, typeBytes), addr(uint64(fungibleTok)), nested)
	result := f.bridge.Compute(frameOf(aliceAcct), input)
	require.Equal(t, codes.NotSupported, result.Status)
	require.Equal(t, EncodeStatus(codes.NotSupported), result.Output)
}

func TestErcTransfer(t *testing.T) {
	f := newErcFixture(t)

	result := f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, fungibleTok, AbiErcTransfer, args(typeAddress, typeUint256),
			addr(uint64(bobAcct)), big.NewInt(10)))

	require.Equal(t, codes.Success, result.Status)
	require.Equal(t, EncodeBool(true), result.Output)
	require.Equal(t, uint64(1440), result.GasUsed)
	require.Equal(t, uint64(20), f.relBalance(t, aliceAcct, fungibleTok))
	require.Equal(t, uint64(10), f.relBalance(t, bobAcct, fungibleTok))
	require.Len(t, f.historian.Records(), 1)
}

func TestErcTransferInsufficientBalance(t *testing.T) {
	f := newErcFixture(t)

	result := f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, fungibleTok, AbiErcTransfer, args(typeAddress, typeUint256),
			addr(uint64(bobAcct)), big.NewInt(31)))

	require.Equal(t, codes.InsufficientTokenBalance, result.Status)
	require.True(t, result.Reverted)
	require.Equal(t, uint64(30), f.relBalance(t, aliceAcct, fungibleTok))
}

func TestErcStaticFrameRejectsTransfer(t *testing.T) {
	f := newErcFixture(t)
	frame := frameOf(aliceAcct)
	frame.Static = true

	result := f.bridge.Compute(frame,
		redirectInput(t, fungibleTok, AbiErcTransfer, args(typeAddress, typeUint256),
			addr(uint64(bobAcct)), big.NewInt(10)))
	require.Equal(t, codes.InvalidTransaction, result.Status)
	require.Equal(t, uint64(30), f.relBalance(t, aliceAcct, fungibleTok))
}

func TestErcApproveAndTransferFrom(t *testing.T) {
	f := newErcFixture(t)

	result := f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, fungibleTok, AbiErcApprove, args(typeAddress, typeUint256),
			addr(uint64(bobAcct)), big.NewInt(40)))
	require.Equal(t, codes.Success, result.Status)
	require.Equal(t, EncodeBool(true), result.Output)

	result = f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, fungibleTok, AbiErcAllowance, args(typeAddress, typeAddress),
			addr(uint64(aliceAcct)), addr(uint64(bobAcct))))
	require.Equal(t, EncodeUint(40), result.Output)

	result = f.bridge.Compute(frameOf(bobAcct),
		redirectInput(t, fungibleTok, AbiErcTransferFrom, args(typeAddress, typeAddress, typeUint256),
			addr(uint64(aliceAcct)), addr(uint64(bobAcct)), big.NewInt(15)))
	require.Equal(t, codes.Success, result.Status)
	require.Equal(t, uint64(15), f.relBalance(t, aliceAcct, fungibleTok))
	require.Equal(t, uint64(15), f.relBalance(t, bobAcct, fungibleTok))

	result = f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, fungibleTok, AbiErcAllowance, args(typeAddress, typeAddress),
			addr(uint64(aliceAcct)), addr(uint64(bobAcct))))
	require.Equal(t, EncodeUint(25), result.Output)
}

func TestErcTransferFromWithoutAllowance(t *testing.T) {
	f := newErcFixture(t)

	result := f.bridge.Compute(frameOf(bobAcct),
		redirectInput(t, fungibleTok, AbiErcTransferFrom, args(typeAddress, typeAddress, typeUint256),
			addr(uint64(aliceAcct)), addr(uint64(bobAcct)), big.NewInt(15)))

	require.Equal(t, codes.SpenderDoesNotHaveAllowance, result.Status)
	require.True(t, result.Reverted)
	require.Equal(t, uint64(30), f.relBalance(t, aliceAcct, fungibleTok))
}

func TestErcTransferFromExceedingAllowance(t *testing.T) {
	f := newErcFixture(t)

	result := f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, fungibleTok, AbiErcApprove, args(typeAddress, typeUint256),
			addr(uint64(bobAcct)), big.NewInt(10)))
	require.Equal(t, codes.Success, result.Status)

	result = f.bridge.Compute(frameOf(bobAcct),
		redirectInput(t, fungibleTok, AbiErcTransferFrom, args(typeAddress, typeAddress, typeUint256),
			addr(uint64(aliceAcct)), addr(uint64(bobAcct)), big.NewInt(11)))
	require.Equal(t, codes.AmountExceedsAllowance, result.Status)
	require.Equal(t, uint64(30), f.relBalance(t, aliceAcct, fungibleTok))
}

func TestErcNftTransferFrom(t *testing.T) {
	f := newErcFixture(t)
	id := token.NftID{Token: uniqueTok, Serial: 1}

	// Bob holds no approval for Alice's serial.
	result := f.bridge.Compute(frameOf(bobAcct),
		redirectInput(t, uniqueTok, AbiErcTransferFrom, args(typeAddress, typeAddress, typeUint256),
			addr(uint64(aliceAcct)), addr(uint64(bobAcct)), big.NewInt(1)))
	require.Equal(t, codes.SpenderDoesNotHaveAllowance, result.Status)

	// A per-serial approval unlocks it.
	result = f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, uniqueTok, AbiErcApprove, args(typeAddress, typeUint256),
			addr(uint64(bobAcct)), big.NewInt(1)))
	require.Equal(t, codes.Success, result.Status)

	result = f.bridge.Compute(frameOf(bobAcct),
		redirectInput(t, uniqueTok, AbiErcTransferFrom, args(typeAddress, typeAddress, typeUint256),
			addr(uint64(aliceAcct)), addr(uint64(bobAcct)), big.NewInt(1)))
	require.Equal(t, codes.Success, result.Status)
	require.Nil(t, result.Output)
	require.Equal(t, bobAcct, f.world.Nfts.GetCopy(id).Owner)
}

func TestErcSetApprovalForAll(t *testing.T) {
	f := newErcFixture(t)

	result := f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, uniqueTok, AbiErcSetApprovalForAll, args(typeAddress, typeBool),
			addr(uint64(bobAcct)), true))
	require.Equal(t, codes.Success, result.Status)

	result = f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, uniqueTok, AbiErcIsApprovedForAll, args(typeAddress, typeAddress),
			addr(uint64(aliceAcct)), addr(uint64(bobAcct))))
	require.Equal(t, EncodeBool(true), result.Output)

	// An operator may move any of the owner's serials.
	result = f.bridge.Compute(frameOf(bobAcct),
		redirectInput(t, uniqueTok, AbiErcTransferFrom, args(typeAddress, typeAddress, typeUint256),
			addr(uint64(aliceAcct)), addr(uint64(bobAcct)), big.NewInt(1)))
	require.Equal(t, codes.Success, result.Status)
}

func TestErcGetApproved(t *testing.T) {
	f := newErcFixture(t)

	result := f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, uniqueTok, AbiErcApprove, args(typeAddress, typeUint256),
			addr(uint64(bobAcct)), big.NewInt(1)))
	require.Equal(t, codes.Success, result.Status)

	result = f.bridge.Compute(frameOf(aliceAcct),
		redirectInput(t, uniqueTok, AbiErcGetApproved, args(typeUint256), big.NewInt(1)))
	require.Equal(t, EncodeAddress(bobAcct), result.Output)
}
