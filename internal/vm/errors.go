package vm

import (
	"fmt"

	"github.com/zboralski/galua/internal/value"
)

// UnimplementedError reports execution of an opcode outside the implemented
// set (the generic-for pair).
type UnimplementedError struct {
	Op string
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("unimplemented opcode %s", e.Op)
}

// RuntimeError wraps a fatal execution error with the source position of the
// faulting instruction.
type RuntimeError struct {
	Source string
	Line   uint32
	Err    error
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

func errNotFunction(v value.Value) error {
	return value.NewTypeError("call", v)
}

func errNotTable(v value.Value) error {
	return value.NewTypeError("index", v)
}
