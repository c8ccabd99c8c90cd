package engine

import (
	"fmt"

	"vm15/memory"
)

// DecodeError reports a failure to decode the word at Address as an
// instruction: either the opcode itself is unrecognized, or not enough
// operand words remain before the end of addressable memory (for both,
// Address and Opcode are the instruction's own address and opcode word), or
// an operand word lies above the register range (then Address and Opcode
// are that operand's address and word).
type DecodeError struct {
	Address uint16
	Opcode  uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("engine: illegal opcode %d at address %d", e.Opcode, e.Address)
}

// Instruction is a fully decoded instruction ready for dispatch: its Opcode
// description, the raw operand words that followed it in memory, and the
// total word length (1 + arity) consumed from memory.
type Instruction struct {
	Opcode   Opcode
	Operands []uint16
	Address  uint16
	Length   uint16
}

// Decode reads the instruction at ip without executing or resolving it,
// for callers outside the engine (disassembly, static analysis) that need
// to inspect instruction boundaries without stepping the machine.
func Decode(mem *memory.Memory, ip uint16) (Instruction, error) {
	return decode(mem, ip)
}

// decode reads the instruction at ip, returning it with its word Length, so
// the following instruction starts at ip+Length. It does not resolve
// operands against registers; that is the Engine's job during dispatch.
func decode(mem *memory.Memory, ip uint16) (Instruction, error) {
	code := mem.Read(ip)
	op, ok := Opcodes[code]
	if !ok {
		return Instruction{}, &DecodeError{Address: ip, Opcode: code}
	}

	ops := make([]uint16, op.Arity)
	for i := 0; i < op.Arity; i++ {
		addr := ip + 1 + uint16(i)
		if int(addr) >= memory.Size {
			return Instruction{}, &DecodeError{Address: ip, Opcode: code}
		}
		w := mem.Read(addr)
		if w > 32775 {
			return Instruction{}, &DecodeError{Address: addr, Opcode: w}
		}
		ops[i] = w
	}

	return Instruction{
		Opcode:   op,
		Operands: ops,
		Address:  ip,
		Length:   uint16(1 + op.Arity),
	}, nil
}
