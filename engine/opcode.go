package engine

// Opcode describes one of the 22 instructions the decoder recognizes: its
// mnemonic (for disassembly and logging), its operand arity, the
// Instruction method that carries it out, and which operand (if any) is a
// Destination rather than a plain source/target value.
//
// Multiple instructions differ only in how many operand words follow the
// opcode word itself; the decoder reads exactly Arity further words before
// handing control to Exec.
type Opcode struct {
	Name  string
	Arity int
	Exec  func(e *Engine, ops []uint16) error

	// DestIndex is the index within Operands of this instruction's
	// Destination operand (Memory(address) or Register(index), per the
	// ISA's data model), or -1 if the instruction has none. jmp/jt/jf/call
	// targets are not Destinations: they are read and resolved to an
	// address, never written to.
	DestIndex int
}

// Opcodes maps each instruction's numeric encoding to its Opcode
// description. Values not present here are illegal opcodes.
var Opcodes = map[uint16]Opcode{
	0:  {Name: "halt", Arity: 0, Exec: (*Engine).opHalt, DestIndex: -1},
	1:  {Name: "set", Arity: 2, Exec: (*Engine).opSet, DestIndex: 0},
	2:  {Name: "push", Arity: 1, Exec: (*Engine).opPush, DestIndex: -1},
	3:  {Name: "pop", Arity: 1, Exec: (*Engine).opPop, DestIndex: 0},
	4:  {Name: "eq", Arity: 3, Exec: (*Engine).opEq, DestIndex: 0},
	5:  {Name: "gt", Arity: 3, Exec: (*Engine).opGt, DestIndex: 0},
	6:  {Name: "jmp", Arity: 1, Exec: (*Engine).opJmp, DestIndex: -1},
	7:  {Name: "jt", Arity: 2, Exec: (*Engine).opJt, DestIndex: -1},
	8:  {Name: "jf", Arity: 2, Exec: (*Engine).opJf, DestIndex: -1},
	9:  {Name: "add", Arity: 3, Exec: (*Engine).opAdd, DestIndex: 0},
	10: {Name: "mult", Arity: 3, Exec: (*Engine).opMult, DestIndex: 0},
	11: {Name: "mod", Arity: 3, Exec: (*Engine).opMod, DestIndex: 0},
	12: {Name: "and", Arity: 3, Exec: (*Engine).opAnd, DestIndex: 0},
	13: {Name: "or", Arity: 3, Exec: (*Engine).opOr, DestIndex: 0},
	14: {Name: "not", Arity: 2, Exec: (*Engine).opNot, DestIndex: 0},
	15: {Name: "rmem", Arity: 2, Exec: (*Engine).opRmem, DestIndex: 0},
	16: {Name: "wmem", Arity: 2, Exec: (*Engine).opWmem, DestIndex: 0},
	17: {Name: "call", Arity: 1, Exec: (*Engine).opCall, DestIndex: -1},
	18: {Name: "ret", Arity: 0, Exec: (*Engine).opRet, DestIndex: -1},
	19: {Name: "out", Arity: 1, Exec: (*Engine).opOut, DestIndex: -1},
	20: {Name: "in", Arity: 1, Exec: (*Engine).opIn, DestIndex: 0},
	21: {Name: "noop", Arity: 0, Exec: (*Engine).opNoop, DestIndex: -1},
}
