package vm

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	glog "github.com/zboralski/galua/internal/log"
	"github.com/zboralski/galua/internal/ui/colorize"
	"github.com/zboralski/galua/internal/value"
)

// runFunction drives the dispatch loop of the current frame: fetch, advance
// pc, execute, stop once the fetched instruction was RETURN.
func (s *State) runFunction() error {
	for {
		ins := s.fetch()
		info := ins.Info()
		if s.opts.ShowIns {
			fmt.Fprintf(s.debugOut, "%s%s\n",
				strings.Repeat("    ", s.depth-1),
				colorize.Opcode(info.Name))
		}
		if s.OnInstruction != nil {
			s.OnInstruction(s.depth, s.frame().pc-1, info.Name)
		}
		if err := info.exec(ins, s); err != nil {
			var re *RuntimeError
			if errors.As(err, &re) {
				// already positioned by the frame that faulted
				return err
			}
			return s.runtimeError(err)
		}
		if ins.IsReturn() {
			return nil
		}
	}
}

// Call invokes the value sitting at -(narg+1), popping it and the narg
// arguments above it, and pushes the results. nret < 0 keeps all results;
// otherwise exactly nret are kept, padded with nil.
func (s *State) Call(narg, nret int) error {
	v := s.Get(-(narg + 1))
	cl, ok := v.(*Closure)
	if !ok {
		return errNotFunction(v)
	}
	if cl.IsGo() {
		return s.callGo(cl, narg, nret)
	}
	return s.callLua(cl, narg, nret)
}

// callLua pushes a fresh register-window frame for the closure, copies the
// fixed parameters in, captures varargs when the prototype is variadic, and
// re-enters the dispatch loop. Returned values left above the register zone
// are reshaped onto the caller per nret.
func (s *State) callLua(cl *Closure, narg, nret int) error {
	proto := cl.proto
	nregs := int(proto.MaxStackSize)
	nparams := int(proto.NumParams)

	f := newFrame(nregs + headroom)
	f.proto = proto
	f.upvals = cl.upvals

	funcAndArgs := s.frame().popN(narg + 1)
	args := funcAndArgs[1:]
	fixed := args
	if len(fixed) > nparams {
		fixed = args[:nparams]
	}
	f.pushN(fixed, nparams)
	f.top = nregs
	if proto.IsVararg && narg > nparams {
		f.varargs = append([]value.Value(nil), args[nparams:]...)
	}

	s.pushFrame(f)
	if glog.L != nil {
		glog.L.Debug("call",
			zap.String("state", s.id),
			glog.Depth(s.depth),
			glog.Proto(proto.Source),
			zap.Int("narg", narg),
		)
	}
	err := s.runFunction()
	f.closeUpvalues(0)
	s.popFrame()
	if err != nil {
		return err
	}

	if nret != 0 {
		ret := f.popN(f.top - nregs)
		s.frame().check(len(ret))
		s.frame().pushN(ret, nret)
	}
	return nil
}

// callGo runs a host function on its own frame: arguments become stack
// indices 1..narg, the function pushes results and reports their count.
func (s *State) callGo(cl *Closure, narg, nret int) error {
	f := newFrame(narg + headroom)
	f.upvals = cl.upvals

	args := s.frame().popN(narg)
	s.frame().pop() // the function itself
	f.pushN(args, narg)

	s.pushFrame(f)
	if glog.L != nil {
		glog.L.Debug("call builtin",
			zap.String("state", s.id),
			glog.Depth(s.depth),
			zap.String("fn", cl.name),
		)
	}
	nres := cl.fn(s)
	s.popFrame()

	if nret != 0 {
		ret := f.popN(nres)
		s.frame().check(len(ret))
		s.frame().pushN(ret, nret)
	}
	return nil
}

// loadProto instantiates child prototype index of the running function,
// capturing upvalues per its descriptors: stack captures share the enclosing
// frame's open cell for that register (creating and recording it on first
// capture), others share the enclosing closure's own cell.
func (s *State) loadProto(index int) {
	f := s.frame()
	if index < 0 || index >= len(f.proto.Protos) {
		panic(fmt.Sprintf("vm: missing child prototype %d in %s", index, f.proto.Source))
	}
	proto := f.proto.Protos[index]
	cl := NewClosure(proto)
	for i, uv := range proto.Upvalues {
		if uv.InStack {
			reg := int(uv.Index)
			if c, ok := f.openUV[reg]; ok {
				cl.upvals[i] = c
			} else {
				c := f.cellAt(reg)
				cl.upvals[i] = c
				f.openUV[reg] = c
			}
		} else {
			cl.upvals[i] = f.upvals[uv.Index]
		}
	}
	f.push(cl)
}

// loadVararg pushes the current frame's captured varargs; n < 0 pushes all
// of them, otherwise exactly n padded with nil.
func (s *State) loadVararg(n int) {
	f := s.frame()
	f.check(len(f.varargs))
	f.pushN(f.varargs, n)
}
