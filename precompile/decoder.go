package precompile

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"heliochain/native/token"
)

// Operation wrappers are the typed results of decoding. They carry ledger
// entity ids, never raw EVM addresses.

type AccountAmount struct {
	Account token.EntityID
	Amount  int64
}

type NftExchange struct {
	Sender   token.EntityID
	Receiver token.EntityID
	Serial   uint64
}

type TokenTransferOp struct {
	Token       token.EntityID
	Adjustments []AccountAmount
	Exchanges   []NftExchange
}

type CryptoTransferOp struct {
	Lists []TokenTransferOp
}

type AssociateOp struct {
	Account token.EntityID
	Tokens  []token.EntityID
}

type DissociateOp struct {
	Account token.EntityID
	Tokens  []token.EntityID
}

type MintOp struct {
	Token    token.EntityID
	Amount   uint64
	Metadata [][]byte
}

type BurnOp struct {
	Token   token.EntityID
	Amount  uint64
	Serials []uint64
}

type RedirectOp struct {
	Token token.EntityID
	Input []byte
}

func mustType(t string, components []abi.ArgumentMarshaling) abi.Type {
	typ, err := abi.NewType(t, "", components)
	if err != nil {
		panic(err)
	}
	return typ
}

var (
	typeAddress      = mustType("address", nil)
	typeAddressSlice = mustType("address[]", nil)
	typeUint64       = mustType("uint64", nil)
	typeUint256      = mustType("uint256", nil)
	typeInt64        = mustType("int64", nil)
	typeInt64Slice   = mustType("int64[]", nil)
	typeBool         = mustType("bool", nil)
	typeBytes        = mustType("bytes", nil)
	typeBytesSlice   = mustType("bytes[]", nil)

	typeTransferLists = mustType("tuple[]", []abi.ArgumentMarshaling{
		{Name: "token", Type: "address"},
		{Name: "transfers", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
			{Name: "accountID", Type: "address"},
			{Name: "amount", Type: "int64"},
		}},
		{Name: "nftTransfers", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
			{Name: "senderAccountID", Type: "address"},
			{Name: "receiverAccountID", Type: "address"},
			{Name: "serialNumber", Type: "int64"},
		}},
	})
)

// The raw* structs mirror the tuple component layout the abi package
// reflects transfer lists into.

type rawAdjustment struct {
	AccountID common.Address
	Amount    int64
}

type rawNftTransfer struct {
	SenderAccountID   common.Address
	ReceiverAccountID common.Address
	SerialNumber      int64
}

type rawTransferList struct {
	Token        common.Address
	Transfers    []rawAdjustment
	NftTransfers []rawNftTransfer
}

func args(types ...abi.Type) abi.Arguments {
	list := make(abi.Arguments, len(types))
	for i, t := range types {
		list[i] = abi.Argument{Type: t}
	}
	return list
}

// unpackOrFail decodes the payload after the selector, raising a
// DecodeError on any malformed input.
func unpackOrFail(selector uint32, arguments abi.Arguments, input []byte) []any {
	if len(input) < 4 {
		failDecode(selector, "input shorter than a selector")
	}
	values, err := arguments.Unpack(input[4:])
	if err != nil {
		failDecode(selector, "%v", err)
	}
	return values
}

func entityOf(selector uint32, addr common.Address) token.EntityID {
	id := token.EntityIDFromAddress(addr)
	if id == token.MissingEntityID || id.Address() != addr {
		failDecode(selector, "address %s is not a ledger entity", addr.Hex())
	}
	return id
}

func entitiesOf(selector uint32, addrs []common.Address) []token.EntityID {
	ids := make([]token.EntityID, len(addrs))
	for i, addr := range addrs {
		ids[i] = entityOf(selector, addr)
	}
	return ids
}

func serialOf(selector uint32, raw int64) uint64 {
	if raw <= 0 {
		failDecode(selector, "serial number %d out of range", raw)
	}
	return uint64(raw)
}

// DecodeAssociateToken parses associateToken(address,address).
func DecodeAssociateToken(input []byte) AssociateOp {
	values := unpackOrFail(AbiAssociateToken, args(typeAddress, typeAddress), input)
	return AssociateOp{
		Account: entityOf(AbiAssociateToken, values[0].(common.Address)),
		Tokens:  []token.EntityID{entityOf(AbiAssociateToken, values[1].(common.Address))},
	}
}

// DecodeAssociateTokens parses associateTokens(address,address[]).
func DecodeAssociateTokens(input []byte) AssociateOp {
	values := unpackOrFail(AbiAssociateTokens, args(typeAddress, typeAddressSlice), input)
	return AssociateOp{
		Account: entityOf(AbiAssociateTokens, values[0].(common.Address)),
		Tokens:  entitiesOf(AbiAssociateTokens, values[1].([]common.Address)),
	}
}

// DecodeDissociateToken parses dissociateToken(address,address).
func DecodeDissociateToken(input []byte) DissociateOp {
	values := unpackOrFail(AbiDissociateToken, args(typeAddress, typeAddress), input)
	return DissociateOp{
		Account: entityOf(AbiDissociateToken, values[0].(common.Address)),
		Tokens:  []token.EntityID{entityOf(AbiDissociateToken, values[1].(common.Address))},
	}
}

// DecodeDissociateTokens parses dissociateTokens(address,address[]).
func DecodeDissociateTokens(input []byte) DissociateOp {
	values := unpackOrFail(AbiDissociateTokens, args(typeAddress, typeAddressSlice), input)
	return DissociateOp{
		Account: entityOf(AbiDissociateTokens, values[0].(common.Address)),
		Tokens:  entitiesOf(AbiDissociateTokens, values[1].([]common.Address)),
	}
}

// DecodeMint parses mintToken(address,uint64,bytes[]). The amount must
// fit a signed 64-bit value.
func DecodeMint(input []byte) MintOp {
	values := unpackOrFail(AbiMintToken, args(typeAddress, typeUint64, typeBytesSlice), input)
	amount := values[1].(uint64)
	if amount > math.MaxInt64 {
		failDecode(AbiMintToken, "mint amount %d exceeds the supply range", amount)
	}
	metadata := values[2].([][]byte)
	copied := make([][]byte, len(metadata))
	for i, blob := range metadata {
		copied[i] = append([]byte(nil), blob...)
	}
	return MintOp{
		Token:    entityOf(AbiMintToken, values[0].(common.Address)),
		Amount:   amount,
		Metadata: copied,
	}
}

// DecodeBurn parses burnToken(address,uint64,int64[]).
func DecodeBurn(input []byte) BurnOp {
	values := unpackOrFail(AbiBurnToken, args(typeAddress, typeUint64, typeInt64Slice), input)
	amount := values[1].(uint64)
	if amount > math.MaxInt64 {
		failDecode(AbiBurnToken, "burn amount %d exceeds the supply range", amount)
	}
	rawSerials := values[2].([]int64)
	serials := make([]uint64, len(rawSerials))
	for i, raw := range rawSerials {
		serials[i] = serialOf(AbiBurnToken, raw)
	}
	return BurnOp{
		Token:   entityOf(AbiBurnToken, values[0].(common.Address)),
		Amount:  amount,
		Serials: serials,
	}
}

// DecodeTransferToken parses transferToken(address,address,address,int64)
// into a single-list crypto transfer. The amount must be positive; the
// debit leg is synthesized.
func DecodeTransferToken(input []byte) CryptoTransferOp {
	values := unpackOrFail(AbiTransferToken, args(typeAddress, typeAddress, typeAddress, typeInt64), input)
	amount := values[3].(int64)
	if amount <= 0 {
		failDecode(AbiTransferToken, "transfer amount %d must be positive", amount)
	}
	sender := entityOf(AbiTransferToken, values[1].(common.Address))
	receiver := entityOf(AbiTransferToken, values[2].(common.Address))
	return CryptoTransferOp{Lists: []TokenTransferOp{{
		Token: entityOf(AbiTransferToken, values[0].(common.Address)),
		Adjustments: []AccountAmount{
			{Account: sender, Amount: -amount},
			{Account: receiver, Amount: amount},
		},
	}}}
}

// DecodeTransferTokens parses transferTokens(address,address[],int64[]).
// Accounts and amounts pair positionally and must net to zero.
func DecodeTransferTokens(input []byte) CryptoTransferOp {
	values := unpackOrFail(AbiTransferTokens, args(typeAddress, typeAddressSlice, typeInt64Slice), input)
	accounts := entitiesOf(AbiTransferTokens, values[1].([]common.Address))
	amounts := values[2].([]int64)
	if len(accounts) != len(amounts) {
		failDecode(AbiTransferTokens, "%d accounts for %d amounts", len(accounts), len(amounts))
	}
	adjustments := make([]AccountAmount, len(accounts))
	for i := range accounts {
		adjustments[i] = AccountAmount{Account: accounts[i], Amount: amounts[i]}
	}
	return CryptoTransferOp{Lists: []TokenTransferOp{{
		Token:       entityOf(AbiTransferTokens, values[0].(common.Address)),
		Adjustments: adjustments,
	}}}
}

// DecodeTransferNFT parses transferNFT(address,address,address,int64).
func DecodeTransferNFT(input []byte) CryptoTransferOp {
	values := unpackOrFail(AbiTransferNFT, args(typeAddress, typeAddress, typeAddress, typeInt64), input)
	return CryptoTransferOp{Lists: []TokenTransferOp{{
		Token: entityOf(AbiTransferNFT, values[0].(common.Address)),
		Exchanges: []NftExchange{{
			Sender:   entityOf(AbiTransferNFT, values[1].(common.Address)),
			Receiver: entityOf(AbiTransferNFT, values[2].(common.Address)),
			Serial:   serialOf(AbiTransferNFT, values[3].(int64)),
		}},
	}}}
}

// DecodeTransferNFTs parses transferNFTs(address,address[],address[],int64[]).
func DecodeTransferNFTs(input []byte) CryptoTransferOp {
	values := unpackOrFail(AbiTransferNFTs, args(typeAddress, typeAddressSlice, typeAddressSlice, typeInt64Slice), input)
	senders := entitiesOf(AbiTransferNFTs, values[1].([]common.Address))
	receivers := entitiesOf(AbiTransferNFTs, values[2].([]common.Address))
	serials := values[3].([]int64)
	if len(senders) != len(receivers) || len(senders) != len(serials) {
		failDecode(AbiTransferNFTs, "mismatched transfer leg counts")
	}
	exchanges := make([]NftExchange, len(senders))
	for i := range senders {
		exchanges[i] = NftExchange{
			Sender:   senders[i],
			Receiver: receivers[i],
			Serial:   serialOf(AbiTransferNFTs, serials[i]),
		}
	}
	return CryptoTransferOp{Lists: []TokenTransferOp{{
		Token:     entityOf(AbiTransferNFTs, values[0].(common.Address)),
		Exchanges: exchanges,
	}}}
}

// DecodeCryptoTransfer parses the general
// cryptoTransfer((address,(address,int64)[],(address,address,int64)[])[]).
func DecodeCryptoTransfer(input []byte) CryptoTransferOp {
	values := unpackOrFail(AbiCryptoTransfer, args(typeTransferLists), input)
	raw := *abi.ConvertType(values[0], new([]rawTransferList)).(*[]rawTransferList)
	lists := make([]TokenTransferOp, len(raw))
	for i, list := range raw {
		adjustments := make([]AccountAmount, len(list.Transfers))
		for j, leg := range list.Transfers {
			adjustments[j] = AccountAmount{
				Account: entityOf(AbiCryptoTransfer, leg.AccountID),
				Amount:  leg.Amount,
			}
		}
		exchanges := make([]NftExchange, len(list.NftTransfers))
		for j, leg := range list.NftTransfers {
			exchanges[j] = NftExchange{
				Sender:   entityOf(AbiCryptoTransfer, leg.SenderAccountID),
				Receiver: entityOf(AbiCryptoTransfer, leg.ReceiverAccountID),
				Serial:   serialOf(AbiCryptoTransfer, leg.SerialNumber),
			}
		}
		lists[i] = TokenTransferOp{
			Token:       entityOf(AbiCryptoTransfer, list.Token),
			Adjustments: adjustments,
			Exchanges:   exchanges,
		}
	}
	return CryptoTransferOp{Lists: lists}
}

// DecodeRedirectForToken parses redirectForToken(address,bytes); the
// nested bytes are the inner ERC call, selector included.
func DecodeRedirectForToken(input []byte) RedirectOp {
	values := unpackOrFail(AbiRedirectForToken, args(typeAddress, typeBytes), input)
	nested := values[1].([]byte)
	if len(nested) < 4 {
		failDecode(AbiRedirectForToken, "nested call shorter than a selector")
	}
	return RedirectOp{
		Token: entityOf(AbiRedirectForToken, values[0].(common.Address)),
		Input: append([]byte(nil), nested...),
	}
}

// --- inner ERC argument decoders ---

func decodeErcAddress(selector uint32, input []byte) token.EntityID {
	values := unpackOrFail(selector, args(typeAddress), input)
	return entityOf(selector, values[0].(common.Address))
}

func decodeErcAddressPair(selector uint32, input []byte) (token.EntityID, token.EntityID) {
	values := unpackOrFail(selector, args(typeAddress, typeAddress), input)
	return entityOf(selector, values[0].(common.Address)),
		entityOf(selector, values[1].(common.Address))
}

func decodeErcAddressAmount(selector uint32, input []byte) (token.EntityID, *big.Int) {
	values := unpackOrFail(selector, args(typeAddress, typeUint256), input)
	return entityOf(selector, values[0].(common.Address)), values[1].(*big.Int)
}

func decodeErcAddressPairAmount(selector uint32, input []byte) (token.EntityID, token.EntityID, *big.Int) {
	values := unpackOrFail(selector, args(typeAddress, typeAddress, typeUint256), input)
	return entityOf(selector, values[0].(common.Address)),
		entityOf(selector, values[1].(common.Address)),
		values[2].(*big.Int)
}

func decodeErcAddressBool(selector uint32, input []byte) (token.EntityID, bool) {
	values := unpackOrFail(selector, args(typeAddress, typeBool), input)
	return entityOf(selector, values[0].(common.Address)), values[1].(bool)
}

func decodeErcSerial(selector uint32, input []byte) uint64 {
	values := unpackOrFail(selector, args(typeUint256), input)
	raw := values[0].(*big.Int)
	if !raw.IsInt64() {
		failDecode(selector, "serial number out of range")
	}
	return serialOf(selector, raw.Int64())
}

// int64AmountOf bounds an ERC uint256 amount to the ledger's signed
// 64-bit unit space.
func int64AmountOf(selector uint32, raw *big.Int) int64 {
	if raw.Sign() < 0 || !raw.IsInt64() {
		failDecode(selector, "amount %s exceeds the unit range", raw)
	}
	return raw.Int64()
}
