package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zboralski/galua/internal/chunk"
	glog "github.com/zboralski/galua/internal/log"
	"github.com/zboralski/galua/internal/value"
)

// registryGlobals is the reserved registry key under which the global
// environment table lives.
const registryGlobals = value.Integer(2)

// Options tunes execution behavior.
type Options struct {
	// ShowIns prints each opcode name, indented by call depth, as it
	// executes.
	ShowIns bool
}

// InstructionHook observes each instruction just before it executes.
type InstructionHook func(depth, pc int, op string)

// State is the virtual machine: the call chain of frames, the registry
// holding the global environment, and the embedding API. External stack
// indices are 1-based and may be negative (counting from the top); register
// indices inside opcode handlers are 0-based.
type State struct {
	id       string
	depth    int
	opts     Options
	frames   []*frame
	registry *value.Table
	out      io.Writer
	debugOut io.Writer

	// OnInstruction, if set, observes every executed instruction.
	OnInstruction InstructionHook
}

// New creates a State with an empty global environment and a default frame.
func New() *State {
	globals := value.NewTable(0)
	registry := value.NewTable(1)
	if err := registry.Set(registryGlobals, globals); err != nil {
		panic(err)
	}

	s := &State{
		id:       uuid.NewString(),
		frames:   []*frame{newFrame(headroom)},
		registry: registry,
		out:      os.Stdout,
		debugOut: os.Stdout,
	}
	if glog.L != nil {
		glog.L.Debug("state created", zap.String("state", s.id))
	}
	return s
}

// WithOptions sets execution options and returns the state.
func (s *State) WithOptions(opts Options) *State {
	s.opts = opts
	return s
}

// ID returns the state's session id, used to correlate log lines.
func (s *State) ID() string { return s.id }

// Output returns the writer builtins print to.
func (s *State) Output() io.Writer { return s.out }

// SetOutput redirects builtin output.
func (s *State) SetOutput(w io.Writer) { s.out = w }

// SetDebugOutput redirects the ShowIns opcode listing.
func (s *State) SetDebugOutput(w io.Writer) { s.debugOut = w }

// Globals returns the global environment table.
func (s *State) Globals() *value.Table {
	t, ok := s.registry.Get(registryGlobals).(*value.Table)
	if !ok {
		panic("vm: registry globals slot is not a table")
	}
	return t
}

// LoadChunk wraps the chunk's main prototype in a closure whose upvalue #0
// is bound to the global environment, and pushes it on the stack ready for
// Call.
func (s *State) LoadChunk(ch *chunk.Chunk) {
	s.LoadProto(ch.Main)
}

// LoadProto pushes a top-level closure for proto, binding upvalue #0 (the
// _ENV upvalue) to the global environment table.
func (s *State) LoadProto(proto *chunk.Prototype) {
	cl := NewClosure(proto)
	if len(cl.upvals) > 0 {
		cl.upvals[0] = newCell(s.Globals())
	}
	s.Push(cl)
	if glog.L != nil {
		glog.L.Debug("chunk loaded",
			zap.String("state", s.id),
			glog.Proto(proto.Source),
			zap.Int("instructions", len(proto.Code)),
		)
	}
}

// Register installs v into the global table under name.
func (s *State) Register(name string, v value.Value) {
	if err := s.Globals().Set(value.String(name), v); err != nil {
		panic(err)
	}
}

func (s *State) frame() *frame {
	return s.frames[len(s.frames)-1]
}

func (s *State) pushFrame(f *frame) {
	s.frames = append(s.frames, f)
	s.depth++
}

func (s *State) popFrame() *frame {
	f := s.frame()
	s.frames = s.frames[:len(s.frames)-1]
	s.depth--
	return f
}

// Depth returns the current call nesting depth.
func (s *State) Depth() int { return s.depth }

// PC returns the current frame's next-to-execute instruction index.
func (s *State) PC() int { return s.frame().pc }

// Top returns the number of live stack slots in the current frame.
func (s *State) Top() int { return s.frame().top }

// AbsIndex resolves a possibly-negative 1-based index to an absolute one.
func (s *State) AbsIndex(index int) int { return s.frame().absIndex(index) }

// CheckStack ensures room for n more pushes.
func (s *State) CheckStack(n int) { s.frame().check(n) }

// RegCount returns the active prototype's declared register count.
func (s *State) RegCount() int {
	return int(s.frame().proto.MaxStackSize)
}

// Push pushes v onto the current frame.
func (s *State) Push(v value.Value) { s.frame().push(v) }

// Pop removes and returns the top value.
func (s *State) Pop() value.Value { return s.frame().pop() }

// PopN discards n values from the top.
func (s *State) PopN(n int) {
	for i := 0; i < n; i++ {
		s.frame().pop()
	}
}

// Get reads the value at a 1-based (possibly negative) index.
func (s *State) Get(index int) value.Value { return s.frame().get(index) }

// PushIndex pushes a copy of the value at index.
func (s *State) PushIndex(index int) {
	f := s.frame()
	f.push(f.get(index))
}

// Replace pops the top value into the slot at index.
func (s *State) Replace(index int) {
	f := s.frame()
	v := f.pop()
	f.set(index, v)
}

// Copy copies the value at from into the slot at to.
func (s *State) Copy(from, to int) {
	f := s.frame()
	f.set(to, f.get(from))
}

// Rotate rotates the slots between index and the top by n positions toward
// the top (n < 0 rotates toward the bottom), as three reversals.
func (s *State) Rotate(index, n int) {
	f := s.frame()
	high := f.top - 1
	low := f.absIndex(index) - 1
	var mid int
	if n >= 0 {
		mid = high - n
	} else {
		mid = low - n - 1
	}
	f.reverse(low, mid)
	f.reverse(mid+1, high)
	f.reverse(low, high)
}

// Insert moves the top value into index, shifting up.
func (s *State) Insert(index int) {
	s.Rotate(index, 1)
}

// Remove deletes the value at index, shifting down.
func (s *State) Remove(index int) {
	s.Rotate(index, -1)
	s.PopN(1)
}

// SetTop grows (with nil) or shrinks the stack to the given index.
func (s *State) SetTop(index int) {
	f := s.frame()
	top := f.absIndex(index)
	n := f.top - top
	for ; n < 0; n++ {
		f.push(value.Nil)
	}
	for ; n > 0; n-- {
		f.pop()
	}
}

func (s *State) addPC(n int) {
	s.frame().addPC(n)
}

// fetch returns the instruction at pc and advances past it.
func (s *State) fetch() Instruction {
	f := s.frame()
	ins := f.fetch()
	f.addPC(1)
	return ins
}

// getConst pushes constant index from the active prototype.
func (s *State) getConst(index int) {
	consts := s.frame().proto.Constants
	if index < 0 || index >= len(consts) {
		panic(fmt.Sprintf("vm: missing constant %d in %s", index, s.frame().proto.Source))
	}
	s.Push(consts[index])
}

// getRK pushes an RK operand: a constant when the RK bit is set, the
// register's value otherwise.
func (s *State) getRK(field int) {
	if field > 0xFF {
		s.getConst(field & 0xFF)
	} else {
		s.PushIndex(field + 1)
	}
}

// upvalue returns the cell of the current closure's upvalue i.
func (s *State) upvalue(i int) *cell {
	ups := s.frame().upvals
	if i < 0 || i >= len(ups) {
		panic(fmt.Sprintf("vm: illegal upvalue index %d", i))
	}
	return ups[i]
}

func (s *State) toBoolean(index int) bool {
	return value.IsTruthy(s.Get(index))
}

func (s *State) toNumber(index int) (float64, error) {
	return value.ToFloat(s.Get(index))
}

// lenAt pushes the length of the value at index: byte length for strings,
// entry count for tables.
func (s *State) lenAt(index int) error {
	v := s.Get(index)
	switch x := v.(type) {
	case value.String:
		s.Push(value.Integer(len(x)))
	case *value.Table:
		s.Push(value.Integer(x.Len()))
	default:
		return value.NewTypeError("get length of", v)
	}
	return nil
}

// concat pops the top n values and pushes their concatenation. Numbers
// convert to their decimal form; any other type is an error.
func (s *State) concat(n int) error {
	if n == 0 {
		s.Push(value.String(""))
		return nil
	}
	for i := 1; i < n; i++ {
		s2, err := concatString(s.Pop())
		if err != nil {
			return err
		}
		s1, err := concatString(s.Pop())
		if err != nil {
			return err
		}
		s.Push(value.String(s1 + s2))
	}
	return nil
}

func concatString(v value.Value) (string, error) {
	switch v.(type) {
	case value.String, value.Integer, value.Float:
		return value.ToString(v), nil
	default:
		return "", value.NewTypeError("concatenate", v)
	}
}

// tableGetTop pops a key and pushes the value stored under it in the table
// at index.
func (s *State) tableGetTop(index int) error {
	abs := s.AbsIndex(index)
	key := s.Pop()
	t, ok := s.Get(abs).(*value.Table)
	if !ok {
		return errNotTable(s.Get(abs))
	}
	s.Push(t.Get(key))
	return nil
}

// tableSetTop pops a value then a key and stores them into the table at
// index.
func (s *State) tableSetTop(index int) error {
	abs := s.AbsIndex(index)
	v := s.Pop()
	key := s.Pop()
	t, ok := s.Get(abs).(*value.Table)
	if !ok {
		return errNotTable(s.Get(abs))
	}
	return t.Set(key, v)
}

// tableSetInt pops a value and stores it at integer key k in the table at
// index.
func (s *State) tableSetInt(index int, k int64) error {
	abs := s.AbsIndex(index)
	v := s.Pop()
	t, ok := s.Get(abs).(*value.Table)
	if !ok {
		return errNotTable(s.Get(abs))
	}
	t.SetInt(k, v)
	return nil
}

// runtimeError decorates err with the source position of the instruction
// that just executed.
func (s *State) runtimeError(err error) error {
	f := s.frame()
	if f.proto == nil {
		return err
	}
	var line uint32
	if pc := f.pc - 1; pc >= 0 && pc < len(f.proto.LineInfo) {
		line = f.proto.LineInfo[pc]
	}
	return &RuntimeError{Source: f.proto.Source, Line: line, Err: err}
}
