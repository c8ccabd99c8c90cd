package engine

import "vm15/bits"

// Each instruction method implements one opcode's effect on e, given its
// raw (unresolved) operand words. Destination operands are written via
// writeDest; source operands are read via resolve. IP has already been
// advanced past the instruction by the time Exec runs, so control-flow
// instructions simply overwrite e.IP to redirect execution.

func (e *Engine) opHalt(_ []uint16) error {
	return nil
}

func (e *Engine) opSet(ops []uint16) error {
	e.writeDest(ops[0], e.resolve(ops[1]))
	return nil
}

func (e *Engine) opPush(ops []uint16) error {
	e.Stack = append(e.Stack, e.resolve(ops[0]))
	return nil
}

func (e *Engine) opPop(ops []uint16) error {
	v, err := e.popStack()
	if err != nil {
		return err
	}
	e.writeDest(ops[0], v)
	return nil
}

func (e *Engine) opEq(ops []uint16) error {
	b := e.resolve(ops[1])
	c := e.resolve(ops[2])
	if b == c {
		e.writeDest(ops[0], 1)
	} else {
		e.writeDest(ops[0], 0)
	}
	return nil
}

func (e *Engine) opGt(ops []uint16) error {
	b := e.resolve(ops[1])
	c := e.resolve(ops[2])
	if b > c {
		e.writeDest(ops[0], 1)
	} else {
		e.writeDest(ops[0], 0)
	}
	return nil
}

func (e *Engine) opJmp(ops []uint16) error {
	addr, err := e.resolveAddress(ops[0])
	if err != nil {
		return err
	}
	e.IP = addr
	return nil
}

func (e *Engine) opJt(ops []uint16) error {
	if e.resolve(ops[0]) != 0 {
		addr, err := e.resolveAddress(ops[1])
		if err != nil {
			return err
		}
		e.IP = addr
	}
	return nil
}

func (e *Engine) opJf(ops []uint16) error {
	if e.resolve(ops[0]) == 0 {
		addr, err := e.resolveAddress(ops[1])
		if err != nil {
			return err
		}
		e.IP = addr
	}
	return nil
}

func (e *Engine) opAdd(ops []uint16) error {
	e.writeDest(ops[0], bits.Add(e.resolve(ops[1]), e.resolve(ops[2])))
	return nil
}

func (e *Engine) opMult(ops []uint16) error {
	e.writeDest(ops[0], bits.Mul(e.resolve(ops[1]), e.resolve(ops[2])))
	return nil
}

func (e *Engine) opMod(ops []uint16) error {
	divisor := e.resolve(ops[2])
	if divisor == 0 {
		return &ExecutionError{Address: e.IP, Reason: "mod by zero"}
	}
	e.writeDest(ops[0], bits.Mod(e.resolve(ops[1]), divisor))
	return nil
}

func (e *Engine) opAnd(ops []uint16) error {
	e.writeDest(ops[0], bits.And(e.resolve(ops[1]), e.resolve(ops[2])))
	return nil
}

func (e *Engine) opOr(ops []uint16) error {
	e.writeDest(ops[0], bits.Or(e.resolve(ops[1]), e.resolve(ops[2])))
	return nil
}

func (e *Engine) opNot(ops []uint16) error {
	e.writeDest(ops[0], bits.Not(e.resolve(ops[1])))
	return nil
}

func (e *Engine) opRmem(ops []uint16) error {
	addr, err := e.resolveAddress(ops[1])
	if err != nil {
		return err
	}
	e.writeDest(ops[0], e.Memory.Read(addr))
	return nil
}

func (e *Engine) opWmem(ops []uint16) error {
	addr, err := e.resolveAddress(ops[0])
	if err != nil {
		return err
	}
	e.Memory.Write(addr, e.resolve(ops[1]))
	return nil
}

func (e *Engine) opCall(ops []uint16) error {
	addr, err := e.resolveAddress(ops[0])
	if err != nil {
		return err
	}
	e.Stack = append(e.Stack, e.IP)
	e.IP = addr
	return nil
}

func (e *Engine) opRet(_ []uint16) error {
	if len(e.Stack) == 0 {
		e.haltRequested = true
		return nil
	}
	v, err := e.popStack()
	if err != nil {
		return err
	}
	e.IP = v
	return nil
}

func (e *Engine) opOut(ops []uint16) error {
	return e.Screen.SendChar(rune(bits.Low8(e.resolve(ops[0]))))
}

func (e *Engine) opIn(ops []uint16) error {
	c, err := e.Screen.GetChar()
	if err != nil {
		return err
	}
	e.writeDest(ops[0], uint16(c))
	return nil
}

func (e *Engine) opNoop(_ []uint16) error {
	return nil
}

// popStack pops and returns the top of the stack, or an ExecutionError if
// the stack is empty.
func (e *Engine) popStack() (uint16, error) {
	if len(e.Stack) == 0 {
		return 0, &ExecutionError{Address: e.IP, Reason: "stack underflow"}
	}
	v := e.Stack[len(e.Stack)-1]
	e.Stack = e.Stack[:len(e.Stack)-1]
	return v, nil
}
