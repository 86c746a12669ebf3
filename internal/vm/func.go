package vm

import (
	"fmt"

	"github.com/zboralski/galua/internal/chunk"
	"github.com/zboralski/galua/internal/value"
)

// GoFunc is the signature of a host-provided function. On entry its
// arguments occupy stack indices 1..Top() of the builtin's own frame; it
// pushes its results and returns their count.
type GoFunc func(*State) int

// Closure is a callable value: either an instantiated prototype or a host
// function, plus its captured upvalue cells. Two closures instantiated from
// the same prototype have independent upvalue lists; a closure is equal only
// to itself.
type Closure struct {
	proto  *chunk.Prototype
	fn     GoFunc
	name   string // host function name, for display and traces
	upvals []*cell
}

func (*Closure) TypeName() string { return "function" }

func (c *Closure) String() string {
	if c.fn != nil {
		return fmt.Sprintf("builtin: %s", c.name)
	}
	return fmt.Sprintf("function: %p", c)
}

// NewClosure instantiates proto with one fresh nil cell per upvalue
// descriptor. Capture happens afterwards, in CLOSURE handling.
func NewClosure(proto *chunk.Prototype) *Closure {
	upvals := make([]*cell, len(proto.Upvalues))
	for i := range upvals {
		upvals[i] = newCell(value.Nil)
	}
	return &Closure{proto: proto, upvals: upvals}
}

// NewGoClosure wraps a host function as a callable value.
func NewGoClosure(name string, fn GoFunc) *Closure {
	return &Closure{fn: fn, name: name}
}

// Proto returns the compiled prototype, or nil for host functions.
func (c *Closure) Proto() *chunk.Prototype { return c.proto }

// IsGo reports whether the closure wraps a host function.
func (c *Closure) IsGo() bool { return c.fn != nil }

// Name returns the host function name, or "" for bytecode closures.
func (c *Closure) Name() string { return c.name }
