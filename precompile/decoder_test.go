package precompile

import (
	"encoding/binary"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"heliochain/native/token"
)

func packInput(t *testing.T, selector uint32, arguments abi.Arguments, values ...any) []byte {
	t.Helper()
	payload, err := arguments.Pack(values...)
	require.NoError(t, err)
	input := make([]byte, 4, 4+len(payload))
	binary.BigEndian.PutUint32(input, selector)
	return append(input, payload...)
}

func addr(id uint64) common.Address {
	return token.EntityID(id).Address()
}

func requireDecodeError(t *testing.T, fn func()) {
	t.Helper()
	recovered := func() (r any) {
		defer func() { r = recover() }()
		fn()
		return nil
	}()
	require.IsType(t, DecodeError{}, recovered)
}

func TestDecodeAssociateToken(t *testing.T) {
	input := packInput(t, AbiAssociateToken, args(typeAddress, typeAddress), addr(1002), addr(2001))

	op := DecodeAssociateToken(input)
	require.Equal(t, token.EntityID(1002), op.Account)
	require.Equal(t, []token.EntityID{2001}, op.Tokens)
}

func TestDecodeAssociateTokens(t *testing.T) {
	input := packInput(t, AbiAssociateTokens, args(typeAddress, typeAddressSlice),
		addr(1002), []common.Address{addr(2001), addr(2002)})

	op := DecodeAssociateTokens(input)
	require.Equal(t, token.EntityID(1002), op.Account)
	require.Equal(t, []token.EntityID{2001, 2002}, op.Tokens)
}

func TestDecodeDissociateToken(t *testing.T) {
	input := packInput(t, AbiDissociateToken, args(typeAddress, typeAddress), addr(1002), addr(2001))

	op := DecodeDissociateToken(input)
	require.Equal(t, token.EntityID(1002), op.Account)
	require.Equal(t, []token.EntityID{2001}, op.Tokens)
}

func TestDecodeRejectsNonLedgerAddress(t *testing.T) {
	evmAddr := common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678")
	requireDecodeError(t, func() {
		DecodeAssociateToken(packInput(t, AbiAssociateToken, args(typeAddress, typeAddress), evmAddr, addr(2001)))
	})
	requireDecodeError(t, func() {
		DecodeAssociateToken(packInput(t, AbiAssociateToken, args(typeAddress, typeAddress), common.Address{}, addr(2001)))
	})
}

func TestDecodeRejectsShortInput(t *testing.T) {
	requireDecodeError(t, func() { DecodeAssociateToken([]byte{0x49, 0x14}) })
	requireDecodeError(t, func() { DecodeAssociateToken([]byte{0x49, 0x14, 0x6b, 0xde, 0x01}) })
}

func TestDecodeMint(t *testing.T) {
	input := packInput(t, AbiMintToken, args(typeAddress, typeUint64, typeBytesSlice),
		addr(2001), uint64(math.MaxInt64), [][]byte{[]byte("meta-a"), []byte("meta-b")})

	op := DecodeMint(input)
	require.Equal(t, token.EntityID(2001), op.Token)
	require.Equal(t, uint64(math.MaxInt64), op.Amount)
	require.Equal(t, [][]byte{[]byte("meta-a"), []byte("meta-b")}, op.Metadata)
}

func TestDecodeMintRejectsOversizedAmount(t *testing.T) {
	input := packInput(t, AbiMintToken, args(typeAddress, typeUint64, typeBytesSlice),
		addr(2001), uint64(math.MaxInt64)+1, [][]byte{})
	requireDecodeError(t, func() { DecodeMint(input) })
}

func TestDecodeMintEmptyMetadata(t *testing.T) {
	input := packInput(t, AbiMintToken, args(typeAddress, typeUint64, typeBytesSlice),
		addr(2001), uint64(25), [][]byte{})

	op := DecodeMint(input)
	require.Equal(t, uint64(25), op.Amount)
	require.Empty(t, op.Metadata)
}

func TestDecodeBurn(t *testing.T) {
	input := packInput(t, AbiBurnToken, args(typeAddress, typeUint64, typeInt64Slice),
		addr(2001), uint64(1), []int64{})

	op := DecodeBurn(input)
	require.Equal(t, token.EntityID(2001), op.Token)
	require.Equal(t, uint64(1), op.Amount)
	require.Empty(t, op.Serials)
}

func TestDecodeBurnSerials(t *testing.T) {
	input := packInput(t, AbiBurnToken, args(typeAddress, typeUint64, typeInt64Slice),
		addr(2001), uint64(0), []int64{1, 2, 3})

	op := DecodeBurn(input)
	require.Equal(t, []uint64{1, 2, 3}, op.Serials)
}

func TestDecodeBurnRejectsNonPositiveSerial(t *testing.T) {
	input := packInput(t, AbiBurnToken, args(typeAddress, typeUint64, typeInt64Slice),
		addr(2001), uint64(0), []int64{1, -2})
	requireDecodeError(t, func() { DecodeBurn(input) })
}

func TestDecodeTransferTokenSynthesizesLegs(t *testing.T) {
	input := packInput(t, AbiTransferToken, args(typeAddress, typeAddress, typeAddress, typeInt64),
		addr(2001), addr(1002), addr(1003), int64(40))

	op := DecodeTransferToken(input)
	require.Len(t, op.Lists, 1)
	require.Equal(t, token.EntityID(2001), op.Lists[0].Token)
	require.Equal(t, []AccountAmount{
		{Account: 1002, Amount: -40},
		{Account: 1003, Amount: 40},
	}, op.Lists[0].Adjustments)
}

func TestDecodeTransferTokenRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []int64{0, -1} {
		input := packInput(t, AbiTransferToken, args(typeAddress, typeAddress, typeAddress, typeInt64),
			addr(2001), addr(1002), addr(1003), amount)
		requireDecodeError(t, func() { DecodeTransferToken(input) })
	}
}

func TestDecodeTransferTokens(t *testing.T) {
	input := packInput(t, AbiTransferTokens, args(typeAddress, typeAddressSlice, typeInt64Slice),
		addr(2001), []common.Address{addr(1002), addr(1003)}, []int64{-7, 7})

	op := DecodeTransferTokens(input)
	require.Equal(t, []AccountAmount{
		{Account: 1002, Amount: -7},
		{Account: 1003, Amount: 7},
	}, op.Lists[0].Adjustments)
}

func TestDecodeTransferTokensRejectsLengthMismatch(t *testing.T) {
	input := packInput(t, AbiTransferTokens, args(typeAddress, typeAddressSlice, typeInt64Slice),
		addr(2001), []common.Address{addr(1002)}, []int64{-7, 7})
	requireDecodeError(t, func() { DecodeTransferTokens(input) })
}

func TestDecodeTransferNFT(t *testing.T) {
	input := packInput(t, AbiTransferNFT, args(typeAddress, typeAddress, typeAddress, typeInt64),
		addr(2002), addr(1002), addr(1003), int64(4))

	op := DecodeTransferNFT(input)
	require.Equal(t, []NftExchange{{Sender: 1002, Receiver: 1003, Serial: 4}}, op.Lists[0].Exchanges)
}

func TestDecodeTransferNFTs(t *testing.T) {
	input := packInput(t, AbiTransferNFTs, args(typeAddress, typeAddressSlice, typeAddressSlice, typeInt64Slice),
		addr(2002),
		[]common.Address{addr(1002), addr(1003)},
		[]common.Address{addr(1003), addr(1002)},
		[]int64{1, 2})

	op := DecodeTransferNFTs(input)
	require.Equal(t, []NftExchange{
		{Sender: 1002, Receiver: 1003, Serial: 1},
		{Sender: 1003, Receiver: 1002, Serial: 2},
	}, op.Lists[0].Exchanges)
}

func TestDecodeCryptoTransfer(t *testing.T) {
	lists := []rawTransferList{
		{
			Token: addr(2001),
			Transfers: []rawAdjustment{
				{AccountID: addr(1002), Amount: -9},
				{AccountID: addr(1003), Amount: 9},
			},
			NftTransfers: []rawNftTransfer{},
		},
		{
			Token:     addr(2002),
			Transfers: []rawAdjustment{},
			NftTransfers: []rawNftTransfer{
				{SenderAccountID: addr(1002), ReceiverAccountID: addr(1003), SerialNumber: 1},
			},
		},
	}
	input := packInput(t, AbiCryptoTransfer, args(typeTransferLists), lists)

	op := DecodeCryptoTransfer(input)
	require.Len(t, op.Lists, 2)
	require.Equal(t, token.EntityID(2001), op.Lists[0].Token)
	require.Equal(t, []AccountAmount{
		{Account: 1002, Amount: -9},
		{Account: 1003, Amount: 9},
	}, op.Lists[0].Adjustments)
	require.Equal(t, []NftExchange{{Sender: 1002, Receiver: 1003, Serial: 1}}, op.Lists[1].Exchanges)
}

func TestDecodeRedirectForToken(t *testing.T) {
	nested := packInput(t, AbiErcBalanceOf, args(typeAddress), addr(1002))
	input := packInput(t, AbiRedirectForToken, args(typeAddress, typeBytes), addr(2001), nested)

	op := DecodeRedirectForToken(input)
	require.Equal(t, token.EntityID(2001), op.Token)
	require.Equal(t, nested, op.Input)
}

func TestDecodeRedirectRejectsShortNestedCall(t *testing.T) {
	input := packInput(t, AbiRedirectForToken, args(typeAddress, typeBytes), addr(2001), []byte{0x06})
	requireDecodeError(t, func() { DecodeRedirectForToken(input) })
}

func TestErcAmountBounds(t *testing.T) {
	require.Equal(t, int64(40), int64AmountOf(AbiErcTransfer, big.NewInt(40)))
	requireDecodeError(t, func() {
		int64AmountOf(AbiErcTransfer, new(big.Int).Lsh(big.NewInt(1), 64))
	})
}

func TestDecodeErcSerialBounds(t *testing.T) {
	input := packInput(t, AbiErcOwnerOf, args(typeUint256), big.NewInt(3))
	require.Equal(t, uint64(3), decodeErcSerial(AbiErcOwnerOf, input))

	zero := packInput(t, AbiErcOwnerOf, args(typeUint256), big.NewInt(0))
	requireDecodeError(t, func() { decodeErcSerial(AbiErcOwnerOf, zero) })
}
