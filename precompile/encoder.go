package precompile

import (
	"github.com/holiman/uint256"

	"heliochain/core/codes"
	"heliochain/native/token"
)

// The encoders render the fixed ABI return layouts of each selector: a
// 32-byte-word head, then any dynamic tail. Layouts are pinned by golden
// byte tests and must never change shape.

const wordSize = 32

func word(v uint64) []byte {
	b := uint256.NewInt(v).Bytes32()
	return b[:]
}

func appendWord(out []byte, v uint64) []byte {
	return append(out, word(v)...)
}

// EncodeStatus renders a bare response-code word, the failure return of
// every mutating selector.
func EncodeStatus(code codes.Code) []byte {
	return word(uint64(code))
}

// EncodeBurnResult renders (int64 responseCode, uint64 newTotalSupply).
func EncodeBurnResult(code codes.Code, newTotalSupply uint64) []byte {
	out := make([]byte, 0, 2*wordSize)
	out = appendWord(out, uint64(code))
	return appendWord(out, newTotalSupply)
}

// EncodeMintResult renders (int64 responseCode, uint64 newTotalSupply,
// int64[] serialNumbers); the serial list tail starts at offset 0x60.
func EncodeMintResult(code codes.Code, newTotalSupply uint64, serials []uint64) []byte {
	out := make([]byte, 0, (4+len(serials))*wordSize)
	out = appendWord(out, uint64(code))
	out = appendWord(out, newTotalSupply)
	out = appendWord(out, 3*wordSize)
	out = appendWord(out, uint64(len(serials)))
	for _, serial := range serials {
		out = appendWord(out, serial)
	}
	return out
}

// EncodeBool renders a single boolean word.
func EncodeBool(v bool) []byte {
	if v {
		return word(1)
	}
	return word(0)
}

// EncodeUint renders a single unsigned word.
func EncodeUint(v uint64) []byte {
	return word(v)
}

// EncodeAddress renders an entity id as its long-zero address word.
func EncodeAddress(id token.EntityID) []byte {
	out := make([]byte, wordSize)
	copy(out[12:], id.Address().Bytes())
	return out
}

// EncodeString renders a dynamic string return: offset word, length word,
// then the bytes padded up to a word boundary.
func EncodeString(s string) []byte {
	padded := (len(s) + wordSize - 1) / wordSize * wordSize
	out := make([]byte, 0, 2*wordSize+padded)
	out = appendWord(out, wordSize)
	out = appendWord(out, uint64(len(s)))
	out = append(out, s...)
	return append(out, make([]byte, padded-len(s))...)
}
