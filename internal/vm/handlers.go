package vm

import (
	"fmt"

	"github.com/zboralski/galua/internal/value"
)

// listBatch is the SETLIST flush size (FPF): batch C writes integer keys
// starting at (C-1)*listBatch + 1.
const listBatch = 50

func execMove(ins Instruction, s *State) error {
	a, b, _ := ins.ABC()
	s.Copy(b+1, a+1)
	return nil
}

func execLoadK(ins Instruction, s *State) error {
	a, bx := ins.ABx()
	s.getConst(bx)
	s.Replace(a + 1)
	return nil
}

// execLoadKX takes its constant index from the Ax of the following EXTRAARG,
// consuming it.
func execLoadKX(ins Instruction, s *State) error {
	a, _ := ins.ABx()
	ax := s.fetch().Ax()
	s.getConst(ax)
	s.Replace(a + 1)
	return nil
}

func execLoadBool(ins Instruction, s *State) error {
	a, b, c := ins.ABC()
	s.Push(value.Bool(b != 0))
	s.Replace(a + 1)
	if c != 0 {
		s.addPC(1)
	}
	return nil
}

func execLoadNil(ins Instruction, s *State) error {
	a, b, _ := ins.ABC()
	s.Push(value.Nil)
	for i := a + 1; i <= a+1+b; i++ {
		s.Copy(-1, i)
	}
	s.PopN(1)
	return nil
}

func execGetUpval(ins Instruction, s *State) error {
	a, b, _ := ins.ABC()
	s.Push(s.upvalue(b).v)
	s.Replace(a + 1)
	return nil
}

func execSetUpval(ins Instruction, s *State) error {
	a, b, _ := ins.ABC()
	s.upvalue(b).v = s.Get(a + 1)
	return nil
}

func execGetTabUp(ins Instruction, s *State) error {
	a, b, c := ins.ABC()
	s.getRK(c)
	key := s.Pop()
	t, ok := s.upvalue(b).v.(*value.Table)
	if !ok {
		return errNotTable(s.upvalue(b).v)
	}
	s.Push(t.Get(key))
	s.Replace(a + 1)
	return nil
}

func execSetTabUp(ins Instruction, s *State) error {
	a, b, c := ins.ABC()
	s.getRK(b)
	s.getRK(c)
	v := s.Pop()
	key := s.Pop()
	t, ok := s.upvalue(a).v.(*value.Table)
	if !ok {
		return errNotTable(s.upvalue(a).v)
	}
	return t.Set(key, v)
}

func execGetTable(ins Instruction, s *State) error {
	a, b, c := ins.ABC()
	s.getRK(c)
	if err := s.tableGetTop(b + 1); err != nil {
		return err
	}
	s.Replace(a + 1)
	return nil
}

func execSetTable(ins Instruction, s *State) error {
	a, b, c := ins.ABC()
	s.getRK(b)
	s.getRK(c)
	return s.tableSetTop(a + 1)
}

// execNewTable sizes the fresh table from both floating-point-byte hints:
// B is the array-part estimate, C the hash-part estimate.
func execNewTable(ins Instruction, s *State) error {
	a, b, c := ins.ABC()
	n := value.FB2Int(b) + value.FB2Int(c)
	s.Push(value.NewTable(n))
	s.Replace(a + 1)
	return nil
}

func execSelf(ins Instruction, s *State) error {
	a, b, c := ins.ABC()
	a1, b1 := a+1, b+1
	s.Copy(b1, a1+1)
	s.getRK(c)
	if err := s.tableGetTop(b1); err != nil {
		return err
	}
	s.Replace(a1)
	return nil
}

// arith2 adapts a binary value operation to an RK-operand handler.
func arith2(op func(a, b value.Value) (value.Value, error)) func(Instruction, *State) error {
	return func(ins Instruction, s *State) error {
		a, b, c := ins.ABC()
		s.getRK(b)
		s.getRK(c)
		vc := s.Pop()
		vb := s.Pop()
		res, err := op(vb, vc)
		if err != nil {
			return err
		}
		s.Push(res)
		s.Replace(a + 1)
		return nil
	}
}

// arith1 adapts a unary value operation.
func arith1(op func(v value.Value) (value.Value, error)) func(Instruction, *State) error {
	return func(ins Instruction, s *State) error {
		a, b, _ := ins.ABC()
		s.PushIndex(b + 1)
		res, err := op(s.Pop())
		if err != nil {
			return err
		}
		s.Push(res)
		s.Replace(a + 1)
		return nil
	}
}

func execNot(ins Instruction, s *State) error {
	a, b, _ := ins.ABC()
	s.Push(value.Bool(!s.toBoolean(b + 1)))
	s.Replace(a + 1)
	return nil
}

func execLen(ins Instruction, s *State) error {
	a, b, _ := ins.ABC()
	if err := s.lenAt(b + 1); err != nil {
		return err
	}
	s.Replace(a + 1)
	return nil
}

func execConcat(ins Instruction, s *State) error {
	a, b, c := ins.ABC()
	a1, b1, c1 := a+1, b+1, c+1
	n := c1 - b1 + 1
	s.CheckStack(n)
	for i := b1; i <= c1; i++ {
		s.PushIndex(i)
	}
	if err := s.concat(n); err != nil {
		return err
	}
	s.Replace(a1)
	return nil
}

// execJmp adjusts pc and, when A > 0, closes every open upvalue whose source
// register is >= A-1 so closures made inside the exited scope keep their own
// values.
func execJmp(ins Instruction, s *State) error {
	a, sbx := ins.AsBx()
	s.addPC(sbx)
	if a > 0 {
		s.frame().closeUpvalues(a - 1)
	}
	return nil
}

// cmp2 adapts an order predicate to the EQ/LT/LE skip-next protocol.
func cmp2(op func(a, b value.Value) (bool, error)) func(Instruction, *State) error {
	return func(ins Instruction, s *State) error {
		a, b, c := ins.ABC()
		s.getRK(b)
		s.getRK(c)
		vc := s.Pop()
		vb := s.Pop()
		res, err := op(vb, vc)
		if err != nil {
			return err
		}
		if res != (a != 0) {
			s.addPC(1)
		}
		return nil
	}
}

var (
	execEq = cmp2(func(a, b value.Value) (bool, error) { return value.Equal(a, b), nil })
	execLt = cmp2(value.Less)
	execLe = cmp2(value.LessEqual)
)

func execTest(ins Instruction, s *State) error {
	a, _, c := ins.ABC()
	if s.toBoolean(a+1) != (c != 0) {
		s.addPC(1)
	}
	return nil
}

func execTestSet(ins Instruction, s *State) error {
	a, b, c := ins.ABC()
	if s.toBoolean(b+1) == (c != 0) {
		s.Copy(b+1, a+1)
	} else {
		s.addPC(1)
	}
	return nil
}

// fixStack completes a variadic sequence: the top of the stack holds the
// marker recorded by a previous C=0 call, the 1-based register at which its
// variadic results begin. Registers a up to that marker (the function and
// fixed arguments) are pushed above the already-present variadic results,
// then rotated underneath them.
func fixStack(a int, s *State) error {
	m, ok := s.Pop().(value.Integer)
	if !ok {
		panic("vm: missing variadic marker on stack")
	}
	n := int(m)
	s.CheckStack(n - a)
	for index := a; index < n; index++ {
		s.PushIndex(index)
	}
	s.Rotate(s.RegCount()+1, n-a)
	return nil
}

// pushFuncAndArgs returns the argument count after arranging the callee and
// its arguments on top of the stack. B=0 consumes everything from register A
// to the current top.
func pushFuncAndArgs(a, b int, s *State) (int, error) {
	if b >= 1 {
		s.CheckStack(b)
		for index := a; index < a+b; index++ {
			s.PushIndex(index)
		}
		return b - 1, nil
	}
	if err := fixStack(a, s); err != nil {
		return 0, err
	}
	return s.Top() - s.RegCount() - 1, nil
}

// popResults reshapes call results per C: C=1 discards, C>1 moves exactly
// C-1 into registers starting at a, C=0 leaves them on the stack and records
// the marker consumed by a later fixStack.
func popResults(a, c int, s *State) {
	switch {
	case c == 1:
	case c > 1:
		for index := a + c - 2; index >= a; index-- {
			s.Replace(index)
		}
	default:
		s.CheckStack(1)
		s.Push(value.Integer(a))
	}
}

func execCall(ins Instruction, s *State) error {
	a, b, c := ins.ABC()
	a1 := a + 1
	narg, err := pushFuncAndArgs(a1, b, s)
	if err != nil {
		return err
	}
	if err := s.Call(narg, c-1); err != nil {
		return err
	}
	popResults(a1, c, s)
	return nil
}

// execTailCall reuses the CALL path with C=0 semantics: all results stay on
// the stack with their marker, and the RETURN 0 that follows every TAILCALL
// hands them to the caller. The frame is not actually recycled.
func execTailCall(ins Instruction, s *State) error {
	a, b, _ := ins.ABC()
	a1 := a + 1
	narg, err := pushFuncAndArgs(a1, b, s)
	if err != nil {
		return err
	}
	if err := s.Call(narg, -1); err != nil {
		return err
	}
	popResults(a1, 0, s)
	return nil
}

// execReturn arranges the returned values on the caller-visible tail of the
// frame; callLua pops the frame and reshapes to the caller's expectation.
func execReturn(ins Instruction, s *State) error {
	a, b, _ := ins.ABC()
	a1 := a + 1
	switch {
	case b == 0:
		return fixStack(a1, s)
	case b > 1:
		s.CheckStack(b - 1)
		for index := a1; index <= a1+b-2; index++ {
			s.PushIndex(index)
		}
	}
	return nil
}

// execForPrep backs the control variable off by one step and jumps to the
// loop's FORLOOP.
func execForPrep(ins Instruction, s *State) error {
	a, sbx := ins.AsBx()
	a1 := a + 1
	s.PushIndex(a1)
	s.PushIndex(a1 + 2)
	step := s.Pop()
	init := s.Pop()
	res, err := value.Sub(init, step)
	if err != nil {
		return fmt.Errorf("'for' initial value: %w", err)
	}
	s.Push(res)
	s.Replace(a1)
	s.addPC(sbx)
	return nil
}

// execForLoop advances the control variable and keeps looping while it has
// not passed the limit in the step's direction.
func execForLoop(ins Instruction, s *State) error {
	a, sbx := ins.AsBx()
	a1 := a + 1
	s.PushIndex(a1 + 2)
	s.PushIndex(a1)
	index := s.Pop()
	step := s.Pop()
	res, err := value.Add(step, index)
	if err != nil {
		return fmt.Errorf("'for' step: %w", err)
	}
	s.Push(res)
	s.Replace(a1)

	stepNum, err := s.toNumber(a1 + 2)
	if err != nil {
		return fmt.Errorf("'for' step: %w", err)
	}
	var cont bool
	if stepNum > 0 {
		cont, err = value.LessEqual(s.Get(a1), s.Get(a1+1))
	} else {
		cont, err = value.LessEqual(s.Get(a1+1), s.Get(a1))
	}
	if err != nil {
		return fmt.Errorf("'for' limit: %w", err)
	}
	if cont {
		s.addPC(sbx)
		s.Copy(a1, a1+3)
	}
	return nil
}

func execSetList(ins Instruction, s *State) error {
	a, b, c := ins.ABC()
	a1 := a + 1

	bZero := b == 0
	if bZero {
		m, ok := s.Pop().(value.Integer)
		if !ok {
			panic("vm: missing variadic marker on stack")
		}
		b = int(m) - a1 - 1
	}

	s.CheckStack(1)
	var batch int
	if c > 0 {
		batch = c - 1
	} else {
		// C is carried by the following EXTRAARG
		batch = s.fetch().Ax() - 1
	}
	index := int64(batch) * listBatch
	for n := 1; n <= b; n++ {
		index++
		s.PushIndex(a1 + n)
		if err := s.tableSetInt(a1, index); err != nil {
			return err
		}
	}

	if bZero {
		for i := s.RegCount() + 1; i <= s.Top(); i++ {
			index++
			s.PushIndex(i)
			if err := s.tableSetInt(a1, index); err != nil {
				return err
			}
		}
		s.SetTop(s.RegCount())
	}
	return nil
}

func execClosure(ins Instruction, s *State) error {
	a, bx := ins.ABx()
	s.loadProto(bx)
	s.Replace(a + 1)
	return nil
}

func execVararg(ins Instruction, s *State) error {
	a, b, _ := ins.ABC()
	if b != 1 {
		s.loadVararg(b - 1)
		popResults(a+1, b, s)
	}
	return nil
}

func execUnimplemented(ins Instruction, s *State) error {
	return &UnimplementedError{Op: ins.Info().Name}
}

// execExtraArg only runs if the preceding instruction failed to consume its
// EXTRAARG, which a well-formed chunk never produces.
func execExtraArg(ins Instruction, s *State) error {
	return fmt.Errorf("EXTRAARG fetched as an instruction")
}
