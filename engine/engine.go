// Package engine implements the Synacor-style virtual machine: its address
// space, register file, stack, instruction set, and the run loop that
// drives them. It is deliberately ignorant of how input and output
// characters travel to a host; that is the screen package's job.
package engine

import (
	"errors"
	"fmt"

	"vm15/bits"
	"vm15/memory"
	"vm15/screen"
)

// teleporterCheckAddress is the address of the integrity check the
// teleporter puzzle performs before accepting register 7 as correct. The
// engine special-cases a call landing here; see checkTeleporter and the
// override fields below.
const teleporterCheckAddress = 6027

// overrideAtOpCount is the number of executed instructions after which, if
// a Register8Preset has been supplied, the engine forces it into register
// 7. This mirrors a debugging shortcut that lets a known-good register 7
// value be injected without replaying the whole search that discovers it.
const overrideAtOpCount = 701400

// ErrHalt is returned by Step (and surfaces through the run modes) when a
// halt instruction has just executed. Callers that only care about normal
// termination can check errors.Is(err, ErrHalt).
var ErrHalt = errors.New("engine: halted")

// Engine is one running instance of the virtual machine.
type Engine struct {
	Memory    *memory.Memory
	Registers [8]uint16
	Stack     []uint16
	IP        uint16

	// Screen is the engine's end of the bidirectional character conduit
	// used by out and in.
	Screen *screen.Screen

	// BypassTeleporterCheck, when true, makes the engine short-circuit the
	// teleporter's integrity check: a call to teleporterCheckAddress
	// executes as a ret with registers 0 and 1 forced to 6 and 4, instead
	// of running the check's own (very slow) body.
	BypassTeleporterCheck bool

	// Register8Preset, if non-nil, is forced into register 7 once
	// overrideAtOpCount instructions have executed. It has no effect
	// unless that op count is reached.
	Register8Preset *uint16

	// OpCount is the number of instructions executed so far.
	OpCount uint64

	// haltRequested is set by ret when the stack is empty: an empty-stack
	// ret is a clean halt, not an execution error.
	haltRequested bool
}

// New constructs an Engine over the given memory image and screen. The
// caller owns the Screen's peer end.
func New(mem *memory.Memory, scr *screen.Screen) *Engine {
	return &Engine{Memory: mem, Screen: scr}
}

// ExecutionError reports a failure within an otherwise well-decoded
// instruction: a stack underflow, an out-of-range address, or an
// arithmetic operation (mod) with a zero divisor.
type ExecutionError struct {
	Address uint16
	Reason  string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("engine: execution error at address %d: %s", e.Address, e.Reason)
}

// resolve reads the value denoted by a raw operand word: a Number operand
// yields itself, a Register operand yields that register's current
// contents verbatim. Register contents loaded by rmem from outside the
// ISA's own arithmetic may exceed the 15-bit Number range; arithmetic
// instructions tolerate that and reduce their result mod 32768 regardless.
func (e *Engine) resolve(w uint16) uint16 {
	if bits.IsRegister(w) {
		return e.Registers[bits.RegisterIndex(w)]
	}
	return w
}

// resolveAddress resolves w the same way resolve does, but additionally
// requires the result to be a valid Number (<= 32767), since it names a
// memory address or jump target. A resolution outside that range is a
// fatal execution error.
func (e *Engine) resolveAddress(w uint16) (uint16, error) {
	v := e.resolve(w)
	if v > bits.NumberMax {
		return 0, &ExecutionError{Address: e.IP, Reason: "address out of range"}
	}
	return v, nil
}

// writeDest stores val into the destination denoted by a raw operand word:
// a Register destination writes that register, a literal Number
// destination writes memory at that address.
func (e *Engine) writeDest(w uint16, val uint16) {
	if bits.IsRegister(w) {
		e.Registers[bits.RegisterIndex(w)] = val
		return
	}
	e.Memory.Write(w, val)
}

// checkTeleporter reports whether the engine is about to execute a call
// instruction whose target is teleporterCheckAddress. The search harness
// uses this to stop an engine right at the point where the integrity
// check would otherwise run, without needing BypassTeleporterCheck.
func (e *Engine) checkTeleporter() (bool, error) {
	inst, err := decode(e.Memory, e.IP)
	if err != nil {
		return false, err
	}
	if inst.Opcode.Name != "call" {
		return false, nil
	}
	return e.resolve(inst.Operands[0]) == teleporterCheckAddress, nil
}

// Step decodes and executes exactly one instruction, following the
// pipeline: decode, count the instruction, apply instrumented overrides,
// execute. It returns ErrHalt when the instruction was a halt (explicit or
// an empty-stack ret); any other non-nil error is a decode or execution
// failure.
func (e *Engine) Step() error {
	inst, err := decode(e.Memory, e.IP)
	if err != nil {
		return err
	}

	e.OpCount++

	ret18 := Opcodes[18]
	if e.BypassTeleporterCheck && e.IP == teleporterCheckAddress {
		e.Registers[0] = 6
		e.Registers[1] = 4
		inst = Instruction{Opcode: ret18, Address: inst.Address, Length: 1}
	}
	e.applyOverride()

	nextIP := e.IP + inst.Length
	e.IP = nextIP
	if err := inst.Opcode.Exec(e, inst.Operands); err != nil {
		return err
	}

	if inst.Opcode.Name == "halt" || e.haltRequested {
		return ErrHalt
	}
	return nil
}

// applyOverride forces Register8Preset into register 7 once OpCount
// reaches overrideAtOpCount.
func (e *Engine) applyOverride() {
	if e.OpCount == overrideAtOpCount && e.Register8Preset != nil {
		e.Registers[7] = *e.Register8Preset
	}
}

// Run executes instructions until a halt instruction runs or a fatal error
// occurs.
func (e *Engine) Run() error {
	for {
		err := e.Step()
		if errors.Is(err, ErrHalt) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// RunUntilEmpty executes instructions until a halt instruction runs or the
// program issues an in instruction while the screen has no input buffered
// (at which point execution would otherwise block waiting on the host). It
// returns halted=true only in the former case, so a caller can tell a
// clean stop from one that is waiting on more input.
func (e *Engine) RunUntilEmpty() (halted bool, err error) {
	for {
		inst, err := decode(e.Memory, e.IP)
		if err != nil {
			return false, err
		}
		if inst.Opcode.Name == "in" {
			empty, err := e.Screen.IsEmpty()
			if err != nil {
				return false, err
			}
			if empty {
				return false, nil
			}
		}

		err = e.Step()
		if errors.Is(err, ErrHalt) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
	}
}

// RunUntilCondition executes instructions until halt, a fatal error, or
// until pred reports true when evaluated just before the next instruction
// would execute.
func (e *Engine) RunUntilCondition(pred func(e *Engine) bool) error {
	for {
		if pred(e) {
			return nil
		}
		err := e.Step()
		if errors.Is(err, ErrHalt) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// CheckTeleporter runs until the engine is about to execute a call
// targeting teleporterCheckAddress, a halt instruction runs, or a fatal
// error occurs. It returns whether the teleporter call point was reached.
func (e *Engine) CheckTeleporter() (bool, error) {
	for {
		atCheck, err := e.checkTeleporter()
		if err != nil {
			return false, err
		}
		if atCheck {
			return true, nil
		}
		err = e.Step()
		if errors.Is(err, ErrHalt) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
}
