package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"vm15/engine"
	"vm15/memory"
	"vm15/screen"
)

// program is a tiny test-only assembler: it tracks the current word
// address as instructions are appended, so loop and branch targets never
// have to be computed by hand.
type program struct {
	words []uint16
}

func (p *program) pc() uint16 { return uint16(len(p.words)) }

func (p *program) emit(words ...uint16) { p.words = append(p.words, words...) }

func reg(n int) uint16 { return uint16(32768 + n) }

// buildTeleporterFixture assembles a synthetic program image that: calls
// address 6027 (the address the engine's teleporter bypass special-cases),
// busy-loops long enough to cross the op-count threshold at which
// Register8Preset is injected into register 7, then compares register 7
// against expected and prints "SUCCESS" or "FAIL" accordingly.
func buildTeleporterFixture(expected uint16) []byte {
	var p program
	p.emit(17, 6027)          // call 6027
	p.emit(1, reg(4), 11)     // set r4, 11 (outer pass count)

	outerLoop := p.pc()
	p.emit(1, reg(2), 32767) // set r2, 32767 (inner pass count)
	innerLoop := p.pc()
	p.emit(9, reg(2), reg(2), 32767) // add r2, r2, 32767  (r2--)
	p.emit(7, reg(2), innerLoop)     // jt r2, innerLoop
	p.emit(9, reg(4), reg(4), 32767) // add r4, r4, 32767  (r4--)
	p.emit(7, reg(4), outerLoop)     // jt r4, outerLoop

	// 11 outer passes * (1 + 32767*2 + 2) instructions comfortably exceeds
	// the op-count threshold the engine injects Register8Preset at, so
	// register 7 always holds the candidate value by the time execution
	// reaches here.
	p.emit(4, reg(3), reg(7), expected) // eq r3, r7, expected
	failJumpOperandIdx := len(p.words) + 2
	p.emit(8, reg(3), 0) // jf r3, failLabel (patched below)

	for _, c := range "SUCCESS" {
		p.emit(19, uint16(c)) // out c
	}
	p.emit(0) // halt

	failLabel := p.pc()
	p.words[failJumpOperandIdx] = failLabel
	for _, c := range "FAIL" {
		p.emit(19, uint16(c)) // out c
	}
	p.emit(0) // halt

	image := make([]byte, 65536)
	for i, w := range p.words {
		image[i*2] = byte(w)
		image[i*2+1] = byte(w >> 8)
	}
	return image
}

func successMarker(output string) bool {
	return strings.Contains(output, "SUCCESS")
}

func TestFindLocatesCorrectCandidate(t *testing.T) {
	image := buildTeleporterFixture(7)

	result, err := Find(context.Background(), image, nil, []Candidate{3, 5, 7, 9}, successMarker)
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, Candidate(7), result.Register8)
}

func TestFindReturnsErrorWhenNoCandidateMatches(t *testing.T) {
	image := buildTeleporterFixture(7)

	_, err := Find(context.Background(), image, nil, []Candidate{3, 5, 9}, successMarker)
	assert.Error(t, err)
}

func TestAllCandidatesCoversFullRange(t *testing.T) {
	candidates := AllCandidates()
	assert.Len(t, candidates, 65535)
	assert.Equal(t, Candidate(1), candidates[0])
	assert.Equal(t, Candidate(65535), candidates[len(candidates)-1])
}

func TestClosedFormRegister7Deterministic(t *testing.T) {
	a := closedFormRegister7(1)
	b := closedFormRegister7(1)
	assert.Equal(t, a, b)
}

func TestClosedFormRegister7VariesWithInput(t *testing.T) {
	a := closedFormRegister7(1)
	b := closedFormRegister7(2)
	assert.NotEqual(t, a, b)
}

// buildClosedFormFixture assembles a program that performs the teleporter
// check subroutine's own three-register recursion via real call/ret
// instructions, seeded with r0Seed/r1Seed/candidate in registers 0, 1, 2,
// leaving the result in register 0 when it halts. It mirrors
// runCachedHelper's branch structure exactly, just without memoization,
// the way the real subroutine's bytecode has no cache either.
func buildClosedFormFixture(r0Seed, r1Seed, candidate uint16) []byte {
	var p program
	p.emit(1, reg(2), candidate) // set r2, candidate
	p.emit(1, reg(0), r0Seed)    // set r0, r0Seed
	p.emit(1, reg(1), r1Seed)    // set r1, r1Seed
	checkCallOperandIdx := len(p.words) + 1
	p.emit(17, 0) // call CHECK (patched below)
	p.emit(0)     // halt

	check := p.pc()
	p.words[checkCallOperandIdx] = check

	zeroJumpOperandIdx := len(p.words) + 2
	p.emit(8, reg(0), 0) // jf r0, ZERO (patched below)
	elseJumpOperandIdx := len(p.words) + 2
	p.emit(8, reg(1), 0) // jf r1, ELSE (patched below)

	// r0 != 0 && r1 != 0
	p.emit(2, reg(0))                // push r0 (val = r0, kept across the call)
	p.emit(9, reg(1), reg(1), 32767) // add r1, r1, 32767 (r1--)
	p.emit(17, check)                // call CHECK
	p.emit(1, reg(1), reg(0))        // set r1, r0
	p.emit(3, reg(3))                // pop r3 (r3 = val)
	p.emit(9, reg(0), reg(3), 32767) // add r0, r3, 32767 (r0 = val - 1)
	p.emit(17, check)                // call CHECK
	p.emit(18)                       // ret

	elseLabel := p.pc()
	p.words[elseJumpOperandIdx] = elseLabel
	// r0 != 0 && r1 == 0
	p.emit(9, reg(0), reg(0), 32767) // add r0, r0, 32767 (r0--)
	p.emit(1, reg(1), reg(2))        // set r1, r2 (r1 = candidate)
	p.emit(17, check)                // call CHECK
	p.emit(18)                       // ret

	zeroLabel := p.pc()
	p.words[zeroJumpOperandIdx] = zeroLabel
	// r0 == 0
	p.emit(9, reg(0), reg(1), 1) // add r0, r1, 1
	p.emit(18)                   // ret

	image := make([]byte, 65536)
	for i, w := range p.words {
		image[i*2] = byte(w)
		image[i*2+1] = byte(w >> 8)
	}
	return image
}

// TestEngineDrivenRecursionAgreesWithClosedForm runs the real engine over
// hand-assembled bytecode implementing the teleporter check subroutine's
// recursion (call/ret, no memoization) and checks it against closedForm for
// a small r0/r1 seed pair and a handful of candidate ("register 7") values.
// The real puzzle's seeds (4, 5445) make the naive engine-driven version
// cost exponential time dominated by the 5445 constant regardless of the
// candidate, so this exercises the same recursive structure with a seed
// pair small enough for the naive engine to finish quickly.
func TestEngineDrivenRecursionAgreesWithClosedForm(t *testing.T) {
	const r0Seed, r1Seed = 3, 1

	for _, candidate := range []uint16{0, 1, 2, 5, 17} {
		image := buildClosedFormFixture(r0Seed, r1Seed, candidate)
		mem, err := memory.LoadImage(image)
		assert.NoError(t, err)

		_, vmSide := screen.New()
		e := engine.New(mem, vmSide)
		err = e.Run()
		assert.NoError(t, err)

		want := closedForm(r0Seed, r1Seed, candidate)
		assert.Equal(t, want[0], e.Registers[0], "candidate %d", candidate)
	}
}
