package sel810

import "github.com/sirupsen/logrus"

// Executor decodes and executes one instruction per Step call. It holds
// no state of its own beyond the current step's carry and halt
// bookkeeping; all persistent state lives in Machine, Memory, the
// PeripheralTable and the InterruptEngine it is wired to.
type Executor struct {
	M     *Machine
	Mem   *Memory
	Table *PeripheralTable
	IE    *InterruptEngine
	IO    *IOArbiter
	Cfg   Config
	log   *logrus.Logger

	cfExplicit bool // true for the one step CSB itself runs, so the
	// end-of-step CF clear doesn't immediately wipe what CSB just set.
	haltRequested bool
}

// NewExecutor wires an Executor to the given components. A nil logger uses
// the package standard logger.
func NewExecutor(m *Machine, mem *Memory, table *PeripheralTable, ie *InterruptEngine, io *IOArbiter, cfg Config, logger *logrus.Logger) *Executor {
	return &Executor{
		M:     m,
		Mem:   mem,
		Table: table,
		IE:    ie,
		IO:    io,
		Cfg:   cfg,
		log:   newLogger(logger),
	}
}

// HaltRequested reports whether the instruction just executed was HLT.
// Cleared at the start of the next Step.
func (e *Executor) HaltRequested() bool { return e.haltRequested }

// Step executes the instruction already latched in IR, applies the
// carry-clear rule and PC update, then prefetches the next instruction
// into IR before returning. It never returns an error; undefined opcodes
// and invalid peripheral references are silent no-ops.
func (e *Executor) Step() {
	ir := e.M.IR
	op := ir >> 12

	e.cfExplicit = false
	e.haltRequested = false

	var pcInc uint16
	switch op {
	case 0:
		pcInc = e.execAug00(ir)
	case 11:
		pcInc = e.execAug13(ir)
	case 15:
		pcInc = e.execAug17(ir)
	default:
		pcInc = e.execMemRef(op, ir)
	}

	if op != 7 && !e.cfExplicit {
		e.M.CF = false
	}

	if pcInc != 0 {
		e.M.SetPC(e.M.PC + pcInc)
	}

	word := e.Mem.Read(e.M.PC)
	e.M.T = word
	e.M.SetIR(word)
}

// effectiveAddress computes the EA for a memory-reference instruction word,
// chasing the indirect chain with no depth limit. Indexing selects X when
// XP is set, otherwise B.
func (e *Executor) effectiveAddress(ir uint16) uint16 {
	x := ir&0x0800 != 0
	i := ir&0x0400 != 0
	mbit := ir&0x0200 != 0
	ea := ir & 0x01FF

	if mbit {
		ea |= e.M.PC & 0x7E00
	} else if !x {
		ea |= e.M.VBR & 0x7E00
	}
	if x {
		ea = (ea + e.indexRegister()) & addrMask
	}

	for i {
		w := e.Mem.Read(ea)
		x = w&0x8000 != 0
		i = w&0x4000 != 0
		ea = (e.M.PC & 0x4000) | (w & 0x3FFF)
		if x {
			ea = (ea + e.indexRegister()) & addrMask
		}
	}
	return ea & addrMask
}

func (e *Executor) indexRegister() uint16 {
	if e.M.XP {
		return e.M.X
	}
	return e.M.B
}

// addCarry adds a, b and an incoming carry bit as signed 16-bit values,
// reporting whether the signed sum overflows 16 bits.
func addCarry(a, b uint16, cf bool) (uint16, bool) {
	c := int32(0)
	if cf {
		c = 1
	}
	sum := int32(int16(a)) + int32(int16(b)) + c
	return uint16(int16(sum)), sum > 32767 || sum < -32768
}

// subCarry subtracts b and an incoming carry (borrow) bit from a as signed
// 16-bit values, reporting signed overflow.
func subCarry(a, b uint16, cf bool) (uint16, bool) {
	c := int32(0)
	if cf {
		c = 1
	}
	diff := int32(int16(a)) - int32(int16(b)) - c
	return uint16(int16(diff)), diff > 32767 || diff < -32768
}
