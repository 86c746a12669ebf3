package chunk

import "github.com/zboralski/galua/internal/value"

// UpvalueDesc describes how a closure captures one upvalue: from the
// enclosing frame's register window (InStack) at register Index, or from the
// enclosing closure's own upvalue list.
type UpvalueDesc struct {
	InStack bool
	Index   uint8
}

// LocalVar is debug information for one local variable's register scope.
type LocalVar struct {
	Name    string
	StartPC uint32
	EndPC   uint32
}

// Prototype is an immutable compiled function: its code, constants, upvalue
// shape and nested prototypes, plus debug arrays that do not affect
// execution.
type Prototype struct {
	Source          string
	LineDefined     uint32
	LastLineDefined uint32
	NumParams       uint8
	IsVararg        bool
	MaxStackSize    uint8

	Code      []uint32
	Constants []value.Value
	Upvalues  []UpvalueDesc
	Protos    []*Prototype

	// Debug information.
	LineInfo     []uint32
	LocalVars    []LocalVar
	UpvalueNames []string
}

// IsMainChunk reports whether this prototype is the top-level function of a
// source file rather than a nested function.
func (p *Prototype) IsMainChunk() bool {
	return p.LineDefined == 0
}

// Chunk is one loaded file: the validated header, the upvalue count of the
// top-level function, and the root of the prototype tree.
type Chunk struct {
	Header       Header
	UpvalueCount byte
	Main         *Prototype
}
