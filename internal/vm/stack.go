package vm

import (
	"github.com/zboralski/galua/internal/chunk"
	"github.com/zboralski/galua/internal/value"
)

// cell is a shared mutable value container. Register slots are cells so that
// open upvalues can alias them by reference; a closed upvalue is a cell that
// owns its value outright.
type cell struct {
	v value.Value
}

func newCell(v value.Value) *cell { return &cell{v: v} }

// frame is one call-stack entry: the register window of an active closure,
// its pc, captured upvalues, varargs, and the registry of open upvalue cells
// keyed by the register they alias.
type frame struct {
	pc      int
	top     int
	slots   []*cell
	varargs []value.Value
	proto   *chunk.Prototype
	upvals  []*cell
	openUV  map[int]*cell
}

// headroom is the extra slot count allocated beyond a prototype's declared
// register window, so short call sequences avoid growing the slot array.
const headroom = 20

func newFrame(size int) *frame {
	slots := make([]*cell, size)
	for i := range slots {
		slots[i] = newCell(value.Nil)
	}
	return &frame{
		slots:  slots,
		openUV: make(map[int]*cell),
	}
}

func (f *frame) addPC(n int) {
	if f.pc+n < 0 {
		panic("vm: pc moved below zero")
	}
	f.pc += n
}

// fetch returns the instruction at pc without advancing.
func (f *frame) fetch() Instruction {
	return Instruction(f.proto.Code[f.pc])
}

// check grows the slot array until n free slots exist above top.
func (f *frame) check(n int) {
	for free := len(f.slots) - f.top; free < n; free++ {
		f.slots = append(f.slots, newCell(value.Nil))
	}
}

// push places v in a fresh cell at top. Pushing never reuses the old cell:
// an open upvalue that aliased this slot keeps the value it saw.
func (f *frame) push(v value.Value) {
	if f.top == len(f.slots) {
		f.slots = append(f.slots, newCell(value.Nil))
	}
	f.slots[f.top] = newCell(v)
	f.top++
}

// pushN pushes n values from vs, truncating or padding with nil. n < 0 means
// all of vs.
func (f *frame) pushN(vs []value.Value, n int) {
	if n < 0 {
		n = len(vs)
	}
	for i := 0; i < n; i++ {
		if i < len(vs) {
			f.push(vs[i])
		} else {
			f.push(value.Nil)
		}
	}
}

// pop removes and returns the top value, replacing the slot with a fresh nil
// cell so aliases are severed.
func (f *frame) pop() value.Value {
	if f.top == 0 {
		panic("vm: stack underflow")
	}
	f.top--
	v := f.slots[f.top].v
	f.slots[f.top] = newCell(value.Nil)
	return v
}

// popN pops n values and returns them in stack order (deepest first).
func (f *frame) popN(n int) []value.Value {
	vs := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		vs[i] = f.pop()
	}
	return vs
}

// absIndex translates a 1-based possibly-negative API index into a 1-based
// absolute index.
func (f *frame) absIndex(index int) int {
	if index >= 0 {
		return index
	}
	abs := index + f.top + 1
	if abs < 0 {
		panic("vm: illegal negative stack index")
	}
	return abs
}

func (f *frame) isValid(index int) bool {
	if index < 0 {
		index += f.top + 1
	}
	return index >= 0 && index <= f.top
}

// get reads the value at a 1-based index. Reads beyond the slot array yield
// nil.
func (f *frame) get(index int) value.Value {
	abs := f.absIndex(index)
	if abs <= 0 {
		panic("vm: illegal stack index 0")
	}
	if abs > len(f.slots) {
		return value.Nil
	}
	return f.slots[abs-1].v
}

// set writes through the cell at a 1-based index, so open upvalues aliasing
// the slot observe the write.
func (f *frame) set(index int, v value.Value) {
	abs := f.absIndex(index)
	if abs <= 0 || abs > f.top {
		panic("vm: stack index out of range")
	}
	f.slots[abs-1].v = v
}

// cellAt returns the shared cell of a 0-based register, for upvalue capture.
func (f *frame) cellAt(reg int) *cell {
	return f.slots[reg]
}

func (f *frame) swap(a, b int) {
	f.slots[a], f.slots[b] = f.slots[b], f.slots[a]
}

// reverse flips the slot range [low, high], both 0-based inclusive.
func (f *frame) reverse(low, high int) {
	for low < high {
		f.swap(low, high)
		low++
		high--
	}
}

// closeUpvalues closes every open cell aliasing a register >= reg. The cell
// keeps the value currently in the slot; the register gets an independent
// cell so later writes to it no longer reach the closures that captured it.
func (f *frame) closeUpvalues(reg int) {
	for idx, c := range f.openUV {
		if idx < reg {
			continue
		}
		if idx < len(f.slots) && f.slots[idx] == c {
			f.slots[idx] = newCell(c.v)
		}
		delete(f.openUV, idx)
	}
}
