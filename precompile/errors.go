package precompile

import (
	"fmt"

	"heliochain/core/codes"
)

// InvalidTransactionError carries a response code out of a context that
// cannot return one directly, such as an authorization check evaluated
// deep inside execution. It is raised as a panic and recovered exactly
// once, at the Compute boundary.
type InvalidTransactionError struct {
	Code codes.Code
}

func (e InvalidTransactionError) Error() string { return e.Code.String() }

// abortWith raises a tier-2 invalid-transaction signal.
func abortWith(code codes.Code) {
	panic(InvalidTransactionError{Code: code})
}

// DecodeError is the structured failure a decoder raises on malformed or
// oversized call data. It never wraps partial results; the whole call is
// rejected.
type DecodeError struct {
	Selector uint32
	Reason   string
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("decode 0x%08x: %s", e.Selector, e.Reason)
}

func failDecode(selector uint32, format string, args ...any) {
	panic(DecodeError{Selector: selector, Reason: fmt.Sprintf(format, args...)})
}
