package sel810

// Augmented-00 sub-opcodes occupy bits 5-0 of IR; shift count occupies
// bits 9-6 where applicable. The numbering below is this emulator's own
// assignment, chosen so every named operation fits under the "44 and
// above are no-ops" boundary.
const (
	aug00HLT = 0
	aug00RNA = 1
	aug00NEG = 2
	aug00CSB = 3
	aug00CNS = 4

	aug00CLA = 5
	aug00CLB = 6
	aug00CAB = 7
	aug00CBB = 8

	aug00TAB = 9
	aug00TBA = 10
	aug00IAB = 11

	aug00AOA = 12
	aug00AOB = 13
	aug00SOF = 14
	aug00COF = 15

	aug00SAZ = 16
	aug00SAN = 17
	aug00SAP = 18
	aug00SBZ = 19
	aug00SBN = 20
	aug00SBP = 21

	aug00CIX  = 22
	aug00TXA  = 23
	aug00TAX  = 24
	aug00TXB  = 25
	aug00TBX  = 26
	aug00XPIX = 27
	aug00XPIB = 28
	aug00IXS  = 29

	aug00LOB = 30
	aug00TOI = 31

	aug00ShiftSingleRight = 32
	aug00ShiftSingleLeft  = 33
	aug00ShiftDoubleRight = 34
	aug00ShiftDoubleLeft  = 35
	aug00FRL              = 36
	aug00FRR              = 37
)

// execAug00 dispatches the augmented-00 sub-opcode family. Undefined
// sub-ops, including all values from 44 up, are no-ops.
func (e *Executor) execAug00(ir uint16) uint16 {
	sub := ir & 0x3F
	count := int((ir >> 6) & 0xF)

	switch sub {
	case aug00HLT:
		return e.execHLT()
	case aug00RNA:
		return e.execRNA()
	case aug00NEG:
		return e.execNEG()
	case aug00CSB:
		return e.execCSB()
	case aug00CNS:
		e.M.SetA(cnsConvert(e.M.A))
		return 1

	case aug00CLA:
		e.M.SetA(0)
		return 1
	case aug00CLB:
		e.M.SetB(0)
		return 1
	case aug00CAB:
		e.M.SetA(^e.M.A)
		return 1
	case aug00CBB:
		e.M.SetB(^e.M.B)
		return 1

	case aug00TAB:
		e.M.SetB(e.M.A)
		return 1
	case aug00TBA:
		e.M.SetA(e.M.B)
		return 1
	case aug00IAB:
		a, b := e.M.A, e.M.B
		e.M.SetA(b)
		e.M.SetB(a)
		return 1

	case aug00AOA:
		sum, ovf := addCarry(e.M.A, 1, false)
		e.M.SetA(sum)
		e.M.OVF = ovf
		return 1
	case aug00AOB:
		sum, ovf := addCarry(e.M.B, 1, false)
		e.M.SetB(sum)
		e.M.OVF = ovf
		return 1
	case aug00SOF:
		e.M.OVF = false
		return 1
	case aug00COF:
		e.M.OVF = true
		return 1

	case aug00SAZ:
		return e.skipInc(e.M.A == 0)
	case aug00SAN:
		return e.skipInc(int16(e.M.A) < 0)
	case aug00SAP:
		return e.skipInc(int16(e.M.A) > 0)
	case aug00SBZ:
		return e.skipInc(e.M.B == 0)
	case aug00SBN:
		return e.skipInc(int16(e.M.B) < 0)
	case aug00SBP:
		return e.skipInc(int16(e.M.B) > 0)

	case aug00CIX:
		e.M.X = 0
		return 1
	case aug00TXA:
		e.M.SetA(e.M.X)
		return 1
	case aug00TAX:
		e.M.X = e.M.A
		return 1
	case aug00TXB:
		e.M.SetB(e.M.X)
		return 1
	case aug00TBX:
		e.M.X = e.M.B
		return 1
	case aug00XPIX:
		e.M.XP = true
		return 1
	case aug00XPIB:
		e.M.XP = false
		return 1
	case aug00IXS:
		e.M.X++
		if e.M.X == 0 {
			return 2
		}
		return 1

	case aug00LOB:
		return e.execLOB()
	case aug00TOI:
		e.IE.MarkTOI()
		e.IE.IntBlocked = true
		return 1

	case aug00ShiftSingleRight:
		e.M.SetA(shiftRightSingle(e.M.A, count))
		return 1
	case aug00ShiftSingleLeft:
		e.M.SetA(shiftLeftSingle(e.M.A, count))
		return 1
	case aug00ShiftDoubleRight:
		e.shiftDouble(count, true)
		return 1
	case aug00ShiftDoubleLeft:
		e.shiftDouble(count, false)
		return 1
	case aug00FRL:
		e.fullRotate(count, true)
		return 1
	case aug00FRR:
		e.fullRotate(count, false)
		return 1

	default:
		e.log.WithField("sub", sub).Debug("undefined augmented-00 sub-op, no-op")
		return 1
	}
}

func (e *Executor) skipInc(cond bool) uint16 {
	if cond {
		return 2
	}
	return 1
}

func (e *Executor) execHLT() uint16 {
	e.haltRequested = true
	return 0
}

// execRNA rounds A using B's bit 14, setting OVF only on the -1 -> 0 wrap.
func (e *Executor) execRNA() uint16 {
	if e.M.B&0x4000 != 0 {
		old := int16(e.M.A)
		newA := old + 1
		e.M.SetA(uint16(newA))
		if old == -1 && newA == 0 {
			e.M.OVF = true
		}
	}
	return 1
}

// execNEG negates A, consuming CF as a borrow. It never writes CF -- CSB
// is the only instruction that sets it.
func (e *Executor) execNEG() uint16 {
	borrow := int32(0)
	if e.M.CF {
		borrow = 1
	}
	result := -int32(int16(e.M.A)) - borrow
	e.M.OVF = result > 32767 || result < -32768
	e.M.SetA(uint16(int16(result)))
	return 1
}

// execCSB sets CF from B's sign bit and blocks interrupt preemption for
// one step, since CSB must be observed atomically with whatever reads CF
// next.
func (e *Executor) execCSB() uint16 {
	e.M.CF = e.M.B&0x8000 != 0
	e.cfExplicit = true
	e.IE.IntBlocked = true
	return 1
}

// execLOB reads the word following the instruction itself as a 15-bit
// branch target, dismissing any pending TOI.
func (e *Executor) execLOB() uint16 {
	w := e.Mem.Read((e.M.PC + 1) & addrMask)
	e.M.SetPC(w & pcMask)
	if e.IE.TOI {
		e.IE.DismissTOI()
	}
	return 0
}

// cnsConvert reinterprets a sign-magnitude 16-bit value as two's complement.
func cnsConvert(a uint16) uint16 {
	mag := a & 0x7FFF
	if a&0x8000 != 0 {
		return uint16(-int16(mag))
	}
	return mag
}

func shiftRightSingle(a uint16, n int) uint16 {
	return uint16(int16(a) >> uint(n))
}

func shiftLeftSingle(a uint16, n int) uint16 {
	return a << uint(n)
}

// shiftDouble shifts the 31-bit A:B pair (packed the same way DIV packs
// its dividend: A<<15 | B's low 15 bits) while leaving B's sign bit
// untouched.
func (e *Executor) shiftDouble(n int, right bool) {
	bSign := e.M.B & 0x8000
	val := int32(int16(e.M.A))<<15 | int32(e.M.B&0x7FFF)
	if right {
		val >>= uint(n)
	} else {
		val <<= uint(n)
	}
	e.M.SetA(uint16((val >> 15) & 0xFFFF))
	e.M.SetB(uint16(val&0x7FFF) | bSign)
}

// fullRotate rotates the literal 32-bit concatenation of A and B.
func (e *Executor) fullRotate(n int, left bool) {
	n &= 31
	combined := uint32(e.M.A)<<16 | uint32(e.M.B)
	if left {
		combined = combined<<uint(n) | combined>>uint(32-n)
	} else {
		combined = combined>>uint(n) | combined<<uint(32-n)
	}
	e.M.SetA(uint16(combined >> 16))
	e.M.SetB(uint16(combined & 0xFFFF))
}
