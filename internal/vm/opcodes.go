package vm

import "github.com/zboralski/galua/internal/value"

// Mode is the operand layout of an opcode.
type Mode byte

const (
	IABC Mode = iota
	IABx
	IAsBx
	IAx
)

// ArgMode describes how one operand field is used, for the disassembler.
type ArgMode byte

const (
	ArgN ArgMode = iota // not used
	ArgU                // used as-is
	ArgR                // register or jump offset
	ArgK                // register/constant (RK) or constant index
)

// Opcode numbers, in instruction-word order.
const (
	OpMove = iota
	OpLoadK
	OpLoadKX
	OpLoadBool
	OpLoadNil
	OpGetUpval
	OpGetTabUp
	OpGetTable
	OpSetTabUp
	OpSetUpval
	OpSetTable
	OpNewTable
	OpSelf
	OpAdd
	OpSub
	OpMul
	OpMod
	OpPow
	OpDiv
	OpIDiv
	OpBAnd
	OpBOr
	OpBXor
	OpShl
	OpShr
	OpUnm
	OpBNot
	OpNot
	OpLen
	OpConcat
	OpJmp
	OpEq
	OpLt
	OpLe
	OpTest
	OpTestSet
	OpCall
	OpTailCall
	OpReturn
	OpForLoop
	OpForPrep
	OpTForCall
	OpTForLoop
	OpSetList
	OpClosure
	OpVararg
	OpExtraArg

	// NumOpcodes is the size of the dispatch table.
	NumOpcodes
)

// OpInfo is one row of the dispatch table: name, operand metadata, and the
// handler.
type OpInfo struct {
	Test bool // next instruction is a conditional jump
	SetA bool // writes register A
	ArgB ArgMode
	ArgC ArgMode
	Mode Mode
	Name string
	exec func(Instruction, *State) error
}

// opcodes is indexed by the low 6 bits of the instruction word.
var opcodes [NumOpcodes]OpInfo

func init() {
	opcodes = [NumOpcodes]OpInfo{
		OpMove:     {false, true, ArgR, ArgN, IABC, "MOVE", execMove},
		OpLoadK:    {false, true, ArgK, ArgN, IABx, "LOADK", execLoadK},
		OpLoadKX:   {false, true, ArgN, ArgN, IABx, "LOADKX", execLoadKX},
		OpLoadBool: {false, true, ArgU, ArgU, IABC, "LOADBOOL", execLoadBool},
		OpLoadNil:  {false, true, ArgU, ArgN, IABC, "LOADNIL", execLoadNil},
		OpGetUpval: {false, true, ArgU, ArgN, IABC, "GETUPVAL", execGetUpval},
		OpGetTabUp: {false, true, ArgU, ArgK, IABC, "GETTABUP", execGetTabUp},
		OpGetTable: {false, true, ArgR, ArgK, IABC, "GETTABLE", execGetTable},
		OpSetTabUp: {false, false, ArgK, ArgK, IABC, "SETTABUP", execSetTabUp},
		OpSetUpval: {false, false, ArgU, ArgN, IABC, "SETUPVAL", execSetUpval},
		OpSetTable: {false, false, ArgK, ArgK, IABC, "SETTABLE", execSetTable},
		OpNewTable: {false, true, ArgU, ArgU, IABC, "NEWTABLE", execNewTable},
		OpSelf:     {false, true, ArgR, ArgK, IABC, "SELF", execSelf},
		OpAdd:      {false, true, ArgK, ArgK, IABC, "ADD", arith2(value.Add)},
		OpSub:      {false, true, ArgK, ArgK, IABC, "SUB", arith2(value.Sub)},
		OpMul:      {false, true, ArgK, ArgK, IABC, "MUL", arith2(value.Mul)},
		OpMod:      {false, true, ArgK, ArgK, IABC, "MOD", arith2(value.Mod)},
		OpPow:      {false, true, ArgK, ArgK, IABC, "POW", arith2(value.Pow)},
		OpDiv:      {false, true, ArgK, ArgK, IABC, "DIV", arith2(value.Div)},
		OpIDiv:     {false, true, ArgK, ArgK, IABC, "IDIV", arith2(value.IDiv)},
		OpBAnd:     {false, true, ArgK, ArgK, IABC, "BAND", arith2(value.Band)},
		OpBOr:      {false, true, ArgK, ArgK, IABC, "BOR", arith2(value.Bor)},
		OpBXor:     {false, true, ArgK, ArgK, IABC, "BXOR", arith2(value.Bxor)},
		OpShl:      {false, true, ArgK, ArgK, IABC, "SHL", arith2(value.Shl)},
		OpShr:      {false, true, ArgK, ArgK, IABC, "SHR", arith2(value.Shr)},
		OpUnm:      {false, true, ArgR, ArgN, IABC, "UNM", arith1(value.Neg)},
		OpBNot:     {false, true, ArgR, ArgN, IABC, "BNOT", arith1(value.BNot)},
		OpNot:      {false, true, ArgR, ArgN, IABC, "NOT", execNot},
		OpLen:      {false, true, ArgR, ArgN, IABC, "LEN", execLen},
		OpConcat:   {false, true, ArgR, ArgR, IABC, "CONCAT", execConcat},
		OpJmp:      {false, false, ArgR, ArgN, IAsBx, "JMP", execJmp},
		OpEq:       {true, false, ArgK, ArgK, IABC, "EQ", execEq},
		OpLt:       {true, false, ArgK, ArgK, IABC, "LT", execLt},
		OpLe:       {true, false, ArgK, ArgK, IABC, "LE", execLe},
		OpTest:     {true, false, ArgN, ArgU, IABC, "TEST", execTest},
		OpTestSet:  {true, true, ArgR, ArgU, IABC, "TESTSET", execTestSet},
		OpCall:     {false, true, ArgU, ArgU, IABC, "CALL", execCall},
		OpTailCall: {false, true, ArgU, ArgU, IABC, "TAILCALL", execTailCall},
		OpReturn:   {false, false, ArgU, ArgN, IABC, "RETURN", execReturn},
		OpForLoop:  {false, true, ArgR, ArgN, IAsBx, "FORLOOP", execForLoop},
		OpForPrep:  {false, true, ArgR, ArgN, IAsBx, "FORPREP", execForPrep},
		OpTForCall: {false, false, ArgN, ArgU, IABC, "TFORCALL", execUnimplemented},
		OpTForLoop: {false, true, ArgR, ArgN, IAsBx, "TFORLOOP", execUnimplemented},
		OpSetList:  {false, false, ArgU, ArgU, IABC, "SETLIST", execSetList},
		OpClosure:  {false, true, ArgU, ArgN, IABx, "CLOSURE", execClosure},
		OpVararg:   {false, true, ArgU, ArgN, IABC, "VARARG", execVararg},
		OpExtraArg: {false, false, ArgU, ArgU, IAx, "EXTRAARG", execExtraArg},
	}
}
