package sel810

// execAug13 dispatches the augmented-13 control-I/O and priority-interrupt
// family (opcode 11). Sub-op occupies bits 8-6, unit bits 5-0. CEU's and
// TEU's 16-bit command word is A -- there is no other 16-bit-wide operand
// available to an instruction whose remaining fields are 3 bits of sub-op
// and 6 of unit.
func (e *Executor) execAug13(ir uint16) uint16 {
	subop := (ir >> 6) & 0x7
	unit := ir & 0x3F

	switch subop {
	case 0, 1: // CEU skip, CEU wait
		wait := subop == 1
		ok := e.IO.Command(unit, e.M.A, wait)
		return e.skipInc(ok)

	case 2: // TEU
		ok := e.IO.Test(unit, e.M.A, false, e.Cfg.IOHoldPollCmd)
		return e.skipInc(ok)

	case 4: // SNS: skip if the operator switch named by unit's low nibble is clear
		bit := uint(unit & 0xF)
		return e.skipInc(e.M.SR&(1<<bit) == 0)

	case 6: // PIE (unit==0) / PID (unit==1): group in A, mask in B
		group := e.M.A & 0x7
		mask := e.M.B & 0x0FFF
		if unit&1 == 0 {
			e.IE.PIE(group, mask)
		} else {
			e.IE.PID(group, mask)
		}
		e.IE.IntBlocked = true
		return 1

	default:
		e.log.WithField("subop", subop).Debug("undefined augmented-13 sub-op, no-op")
		return 1
	}
}

// execAug17 dispatches the augmented-17 data-I/O family (opcode 15). Bits
// 8-6 select {AOP, AIP, MOP, MIP} x {skip, wait}; bit 11 (R) adds the
// input word into the destination instead of replacing it; unit is bits
// 5-0. MOP/MIP have no room left for a 9-bit displacement in this word, so
// their EA is decoded from the word immediately following the
// instruction, using the same X/I/M/indirect algorithm as a
// memory-reference instruction.
func (e *Executor) execAug17(ir uint16) uint16 {
	subop := (ir >> 6) & 0x7
	unit := ir & 0x3F
	r := ir&0x0800 != 0

	switch subop {
	case 0, 1: // AOP skip, AOP wait
		wait := subop == 1
		ok := e.IO.WriteWord(unit, e.M.A, wait)
		return e.skipInc(ok)

	case 2, 3: // AIP skip, AIP wait
		wait := subop == 3
		ok, v := e.IO.ReadWord(unit, wait)
		if ok {
			if r {
				sum, _ := addCarry(e.M.A, v, false)
				e.M.SetA(sum)
			} else {
				e.M.SetA(v)
			}
		}
		return e.skipInc(ok)

	case 4, 5: // MOP skip, MOP wait
		wait := subop == 5
		ea := e.operandEA()
		ok := e.IO.WriteWord(unit, e.Mem.Read(ea), wait)
		return e.ioWordPCInc(ok)

	case 6, 7: // MIP skip, MIP wait
		wait := subop == 7
		ea := e.operandEA()
		ok, v := e.IO.ReadWord(unit, wait)
		if ok {
			if r {
				sum, _ := addCarry(e.Mem.Read(ea), v, false)
				e.Mem.Write(ea, sum)
			} else {
				e.Mem.Write(ea, v)
			}
		}
		return e.ioWordPCInc(ok)

	default:
		// subop is 3 bits and every value 0-7 is claimed by a case above;
		// unreachable, kept for switch completeness and parity with
		// execAug00/execAug13's undefined-subop handling.
		e.log.WithField("subop", subop).Debug("undefined augmented-17 sub-op, no-op")
		return 1
	}
}

// operandEA decodes the word following the current instruction as an EA
// specifier, for the data-I/O opcodes that carry one.
func (e *Executor) operandEA() uint16 {
	w := e.Mem.Read((e.M.PC + 1) & addrMask)
	return e.effectiveAddress(w)
}

// ioWordPCInc accounts for the extra operand word MOP/MIP consume: base 2
// (instruction + operand word), plus one more on success, mirroring AOP's
// documented "advance by one extra word on success".
func (e *Executor) ioWordPCInc(ok bool) uint16 {
	if ok {
		return 3
	}
	return 2
}
