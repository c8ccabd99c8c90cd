package search

// closedFormRegister7 computes, for a trial register-7 value, the registers
// (r0, r1, r7) the teleporter puzzle's own check subroutine would leave,
// with its result in element 0 — without running any bytecode at all. It exists purely as a fast
// cross-check for tests: the production path in Find always drives the
// real engine, never this function, since the point of the harness is to
// verify candidates the way the actual program does.
//
// The recursion mirrors the puzzle's own (famously expensive) three-
// register routine; memoizing on the (r0, r1, r7) triple is what makes it
// tractable at all.
func closedFormRegister7(val uint16) [3]uint16 {
	return closedForm(4, 5445, val)
}

// closedForm runs the same recursion as closedFormRegister7 from arbitrary
// seed registers, so tests can cross-check it against a real engine
// running the equivalent bytecode over a tractably small r0/r1 seed
// instead of the puzzle's own (r0=4, r1=5445) pair.
func closedForm(r0, r1, val uint16) [3]uint16 {
	regs := [3]uint16{r0, r1, val}
	cache := make(map[[3]uint16][3]uint16)
	runCached(&regs, cache)
	return regs
}

func runCached(registers *[3]uint16, cache map[[3]uint16][3]uint16) {
	if cached, ok := cache[*registers]; ok {
		*registers = cached
		return
	}
	key := *registers
	regs := *registers
	runCachedHelper(&regs, cache)
	cache[key] = regs
	*registers = regs
}

func runCachedHelper(registers *[3]uint16, cache map[[3]uint16][3]uint16) {
	if registers[0] != 0 {
		if registers[1] != 0 {
			val := registers[0]
			registers[1]--
			runCached(registers, cache)
			registers[1] = registers[0]
			registers[0] = val - 1
			runCached(registers, cache)
			return
		}
		registers[0]--
		registers[1] = registers[2]
		runCached(registers, cache)
		return
	}
	registers[0] = (registers[1] + 1) % 32768
}
