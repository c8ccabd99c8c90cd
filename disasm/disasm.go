// Package disasm renders a program image as a linear listing of decoded
// instructions, operand by operand, without following control flow.
package disasm

import (
	"fmt"
	"strings"

	"vm15/bits"
	"vm15/engine"
	"vm15/memory"
)

// Line is one decoded instruction, ready to print.
type Line struct {
	Address uint16
	Words   []uint16
	Text    string
}

// Disassemble walks mem from address 0, decoding one instruction at a time
// and advancing by that instruction's length. It does not follow jumps,
// calls, or any other control transfer: the listing is purely linear, the
// same way a raw image is laid out in memory.
//
// The zero fill after the last nonzero word (the part of memory a shorter
// image leaves untouched) is not listed word by word: its first word is
// listed as a single halt and the listing ends there.
//
// A decode failure (illegal opcode, or an operand word outside the
// Number/Register range) ends the listing at that address rather than
// failing outright, since the remainder of the image may simply be data
// rather than code.
func Disassemble(mem *memory.Memory) []Line {
	end := memory.Size
	for end > 0 && mem.Read(uint16(end-1)) == 0 {
		end--
	}

	var lines []Line
	ip := uint16(0)
	for {
		if int(ip) >= memory.Size || int(ip) > end {
			break
		}
		inst, err := engine.Decode(mem, ip)
		if err != nil {
			break
		}
		lines = append(lines, Line{
			Address: inst.Address,
			Words:   append([]uint16{}, inst.Operands...),
			Text:    render(inst),
		})
		if inst.Length == 0 {
			break
		}
		ip += inst.Length
	}
	return lines
}

func render(inst engine.Instruction) string {
	if len(inst.Operands) == 0 {
		return inst.Opcode.Name
	}
	parts := make([]string, len(inst.Operands))
	for i, w := range inst.Operands {
		parts[i] = operandText(w, i == inst.Opcode.DestIndex)
	}
	return fmt.Sprintf("%s %s", inst.Opcode.Name, strings.Join(parts, ", "))
}

// operandText renders a single operand word: a register reference as
// "rN" regardless of position, a literal Destination operand (a raw
// memory address, per the Destination type's Memory(address) case) as
// "[addr]", and any other literal as a bare decimal.
func operandText(w uint16, isDest bool) string {
	if bits.IsRegister(w) {
		return fmt.Sprintf("r%d", bits.RegisterIndex(w))
	}
	if isDest {
		return fmt.Sprintf("[%d]", w)
	}
	return fmt.Sprintf("%d", w)
}

// String renders the full listing as one address-prefixed line per
// instruction, e.g. "0006  jt r0, 10".
func String(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%04x  %s\n", l.Address, l.Text)
	}
	return b.String()
}
