package sel810

// Machine holds the SEL 810A register file and flags. It is the single
// owner of CPU-visible state; only the executor and the
// interrupt engine mutate it once a RunLoop is driving them, but a bare
// Machine is perfectly usable standalone for unit tests.
type Machine struct {
	A, B uint16 // 16-bit signed accumulators
	X    uint16 // index register
	PC   uint16 // 15-bit program counter, top bit always clear
	IR   uint16 // current instruction register
	T    uint16 // transient/fetch register, mirrored to the front panel
	SR   uint16 // control-switch register (operator input)
	VBR  uint16 // variable base register, only bits 9-14 significant
	PPR  uint16 // protect-register shadow (no page-table semantics here)

	CF  bool // carry flag
	XP  bool // index-pointer flag: true selects X, false selects B
	OVF bool // overflow flag

	bp   RegBreakpoints
	sink BreakSink
}

// NewMachine returns a Machine in its reset state.
func NewMachine() *Machine {
	m := &Machine{sink: nullSink{}}
	m.bp.init()
	return m
}

// SetBreakSink installs the receiver of register-value breakpoint firings.
// A nil sink restores the no-op default.
func (m *Machine) SetBreakSink(s BreakSink) {
	if s == nil {
		s = nullSink{}
	}
	m.sink = s
}

// MasterClear zeroes A, B, T, IR, PC, VBR, OVF, CF. X, SR, PPR and XP are
// deliberately left untouched: this is the original hardware's own reset
// scope, not an oversight.
func (m *Machine) MasterClear() {
	m.A = 0
	m.B = 0
	m.T = 0
	m.IR = 0
	m.PC = 0
	m.VBR = 0
	m.OVF = false
	m.CF = false
}

// SetA writes A, firing any matching register-value breakpoint.
func (m *Machine) SetA(v uint16) {
	m.A = v
	m.checkBP(RegA, v)
}

// SetB writes B, firing any matching register-value breakpoint.
func (m *Machine) SetB(v uint16) {
	m.B = v
	m.checkBP(RegB, v)
}

// SetIR writes IR, firing any matching register-value breakpoint.
func (m *Machine) SetIR(v uint16) {
	m.IR = v
	m.checkBP(RegIR, v)
}

// SetPC writes PC (masked to 15 bits), firing any matching register-value
// breakpoint.
func (m *Machine) SetPC(v uint16) {
	v &= pcMask
	m.PC = v
	m.checkBP(RegPC, v)
}

// SetVBR writes VBR, masking off the bits the hardware never implements.
func (m *Machine) SetVBR(v uint16) {
	m.VBR = v &^ vbrMask
}

func (m *Machine) checkBP(reg RegisterID, v uint16) {
	if !m.bp.anySet(reg) {
		return
	}
	if m.bp.check(reg, v) {
		m.sink.OnBreak(BreakEvent{Kind: BreakReg, Reg: reg, Value: v})
	}
}

// SetRegBP arms a register-value breakpoint. count == -1 breaks on every
// match without decrementing; count > 0 decrements on match and fires on
// the 1->0 transition.
func (m *Machine) SetRegBP(reg RegisterID, value uint16, count int32) {
	m.bp.set(reg, value, count)
}

// ClearRegBP disarms a single register-value breakpoint.
func (m *Machine) ClearRegBP(reg RegisterID, value uint16) {
	m.bp.clear(reg, value)
}

// ClearAllRegBP disarms every register-value breakpoint.
func (m *Machine) ClearAllRegBP() {
	m.bp.clearAll()
}
