package sel810

// execMemRef dispatches the memory-reference opcode classes (1-10, 12-14).
// It returns the PC_inc for the step; 0 means the handler already set PC
// itself (a branch).
func (e *Executor) execMemRef(op uint16, ir uint16) uint16 {
	ea := e.effectiveAddress(ir)

	switch op {
	case 1: // LAA
		e.M.SetA(e.Mem.Read(ea))
		return 1
	case 2: // LBA
		e.M.SetB(e.Mem.Read(ea))
		return 1
	case 3: // STA
		e.Mem.Write(ea, e.M.A)
		return 1
	case 4: // STB
		e.Mem.Write(ea, e.M.B)
		return 1
	case 5: // AMA
		sum, ovf := addCarry(e.M.A, e.Mem.Read(ea), e.M.CF)
		e.M.SetA(sum)
		e.M.OVF = ovf
		return 1
	case 6: // SMA
		diff, ovf := subCarry(e.M.A, e.Mem.Read(ea), e.M.CF)
		e.M.SetA(diff)
		e.M.OVF = ovf
		return 1
	case 7: // MPY
		e.execMPY(ea)
		return 1
	case 8: // DIV
		e.execDIV(ea)
		return 1
	case 9: // BRU
		e.execBRU(ir, ea)
		return 0
	case 10: // SPB
		e.execSPB(ea)
		return 0
	case 12: // IMS
		return e.execIMS(ea)
	case 13: // CMA
		return e.execCMA(ea)
	case 14: // AMB
		sum, ovf := addCarry(e.M.B, e.Mem.Read(ea), e.M.CF)
		e.M.SetB(sum)
		e.M.OVF = ovf
		return 1
	default:
		return 1 // undefined opcode: no-op
	}
}

// execMPY implements the MPY table row. The (-32768, -32768) operand pair
// is the one 16x16 signed multiply whose magnitude does not fit the
// general bit-slice formula: its documented result (A=0x4000, B=0, OVF
// set) is special-cased here rather than derived.
func (e *Executor) execMPY(ea uint16) {
	b := e.M.B
	mval := e.Mem.Read(ea)

	if int16(b) == -32768 && int16(mval) == -32768 {
		e.M.SetA(0x4000)
		e.M.SetB(0)
		e.M.OVF = true
		return
	}

	prod := int32(int16(b)) * int32(int16(mval))
	e.M.SetA(uint16((prod >> 15) & 0xFFFF))
	e.M.SetB(uint16(prod & 0x7FFF))
	e.M.OVF = false
}

// execDIV implements the DIV table row. OVF is the classic pre-division
// check: the quotient cannot fit in 16 bits if the dividend's high word
// (A, before it's overwritten) is at least as large in magnitude as the
// divisor.
func (e *Executor) execDIV(ea uint16) {
	a := e.M.A
	b := e.M.B
	mval := e.Mem.Read(ea)

	ovf := int16Abs(int16(a)) >= int16Abs(int16(mval))

	divisor := int64(int16(mval))
	if divisor == 0 {
		e.M.OVF = true
		return
	}

	dividend := int64(int16(a))<<15 | int64(b&0x7FFF)
	quotient := dividend / divisor
	remainder := dividend % divisor

	e.M.SetA(uint16(int16(quotient)))
	e.M.SetB(uint16(int16(remainder)))
	e.M.OVF = ovf
}

// execBRU implements PC <- EA, dismissing a pending TOI if the original
// instruction's I-bit was set ("indirect BRU", per the TOI glossary entry).
func (e *Executor) execBRU(ir uint16, ea uint16) {
	e.M.SetPC(ea)
	if ir&0x0400 != 0 && e.IE.TOI {
		e.IE.DismissTOI()
	}
}

// execSPB implements store-place-and-branch: M[EA] <- (PC+1)&0x3FFF;
// PC <- EA; blocks interrupt preemption for one step.
func (e *Executor) execSPB(ea uint16) {
	e.Mem.Write(ea, (e.M.PC+1)&0x3FFF)
	e.M.SetPC(ea)
	e.IE.IntBlocked = true
}

// execIMS implements increment-and-skip-on-zero.
func (e *Executor) execIMS(ea uint16) uint16 {
	v := e.Mem.Read(ea) + 1
	e.Mem.Write(ea, v)
	if v == 0 {
		return 2
	}
	return 1
}

// execCMA implements the three-way compare-and-skip: two extra words
// skipped if A strictly exceeds M[EA], one if equal, none otherwise.
func (e *Executor) execCMA(ea uint16) uint16 {
	a := int16(e.M.A)
	m := int16(e.Mem.Read(ea))
	switch {
	case a > m:
		return 3
	case a == m:
		return 2
	default:
		return 1
	}
}
