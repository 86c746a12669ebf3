package value

import (
	"errors"
	"fmt"
)

// Sentinel errors for the arithmetic and coercion failures of §4.2. Callers
// wrap them with operand detail; the dispatch loop surfaces them as fatal.
var (
	// ErrNonIntegral reports a float → integer coercion on a value with a
	// fractional part or out of int64 range.
	ErrNonIntegral = errors.New("number has no integer representation")

	// ErrParse reports a string that does not parse as a number.
	ErrParse = errors.New("string cannot be converted to a number")

	// ErrZeroDiv reports integer division or modulo by zero.
	ErrZeroDiv = errors.New("attempt to perform 'n//0' or 'n%0'")
)

// TypeError reports an operation applied to an unsupported type.
type TypeError struct {
	Op   string // "perform arithmetic on", "concatenate", "get length of", "call", ...
	Type string // Lua type name of the offending operand
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("attempt to %s a %s value", e.Op, e.Type)
}

// NewTypeError builds a TypeError naming the offending value's type.
func NewTypeError(op string, v Value) error {
	return &TypeError{Op: op, Type: v.TypeName()}
}

// CompareError reports an order comparison between incomparable types.
type CompareError struct {
	Left, Right string
}

func (e *CompareError) Error() string {
	if e.Left == e.Right {
		return fmt.Sprintf("attempt to compare two %s values", e.Left)
	}
	return fmt.Sprintf("attempt to compare %s with %s", e.Left, e.Right)
}
