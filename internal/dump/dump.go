// Package dump renders loaded chunks as a human-readable listing: function
// headers, decoded instructions, constants, locals and upvalues, recursively
// over the prototype tree.
package dump

import (
	"fmt"
	"io"

	"github.com/zboralski/galua/internal/chunk"
	"github.com/zboralski/galua/internal/ui/colorize"
	"github.com/zboralski/galua/internal/value"
	"github.com/zboralski/galua/internal/vm"
)

// Chunk writes the listing of a whole loaded chunk.
func Chunk(w io.Writer, ch *chunk.Chunk) {
	Proto(w, ch.Main)
}

// Proto writes the listing of one prototype and its children.
func Proto(w io.Writer, p *chunk.Prototype) {
	printHeader(w, p)
	printCode(w, p)
	printConstants(w, p)
	printLocals(w, p)
	printUpvalues(w, p)
	for _, child := range p.Protos {
		fmt.Fprintln(w)
		Proto(w, child)
	}
}

func printHeader(w io.Writer, p *chunk.Prototype) {
	funcType := "function"
	if p.IsMainChunk() {
		funcType = "main"
	}

	fmt.Fprintf(w, "%s <%s:%d,%d> (%d instructions)\n",
		colorize.Header(funcType),
		colorize.FuncName(p.Source),
		p.LineDefined,
		p.LastLineDefined,
		len(p.Code),
	)

	vararg := ""
	if p.IsVararg {
		vararg = "+"
	}
	fmt.Fprintf(w, "%d%s params, %d slots, %d upvalues, %d locals, %d constants, %d functions\n",
		p.NumParams,
		vararg,
		p.MaxStackSize,
		len(p.Upvalues),
		len(p.LocalVars),
		len(p.Constants),
		len(p.Protos),
	)
}

func printCode(w io.Writer, p *chunk.Prototype) {
	for pc, raw := range p.Code {
		line := "-"
		if pc < len(p.LineInfo) {
			line = fmt.Sprintf("%d", p.LineInfo[pc])
		}
		fmt.Fprintf(w, "\t%s\t[%s]\t%s\n",
			colorize.PC(pc+1),
			colorize.Detail(line),
			colorize.Source(vm.Instruction(raw).String()),
		)
	}
}

func printConstants(w io.Writer, p *chunk.Prototype) {
	fmt.Fprintf(w, "Constants (%d):\n", len(p.Constants))
	for i, k := range p.Constants {
		fmt.Fprintf(w, "\t%d\t%s\n", i+1, colorize.Source(constantRepr(k)))
	}
}

func constantRepr(v value.Value) string {
	if s, ok := v.(value.String); ok {
		return fmt.Sprintf("%q", string(s))
	}
	return value.ToString(v)
}

func printLocals(w io.Writer, p *chunk.Prototype) {
	fmt.Fprintf(w, "Locals (%d):\n", len(p.LocalVars))
	for i, lv := range p.LocalVars {
		fmt.Fprintf(w, "\t%d\t%s\t%d\t%d\n", i, lv.Name, lv.StartPC, lv.EndPC)
	}
}

func printUpvalues(w io.Writer, p *chunk.Prototype) {
	fmt.Fprintf(w, "Upvalues (%d):\n", len(p.Upvalues))
	for i, uv := range p.Upvalues {
		name := "-"
		if i < len(p.UpvalueNames) && p.UpvalueNames[i] != "" {
			name = p.UpvalueNames[i]
		}
		inStack := 0
		if uv.InStack {
			inStack = 1
		}
		fmt.Fprintf(w, "\t%d\t%s\t%d\t%d\n", i, name, inStack, uv.Index)
	}
}
