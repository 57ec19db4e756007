package sel810

import "github.com/sirupsen/logrus"

// groupCount is the number of real priority groups (0-7); IntGroup == 8 is
// the "nothing active" sentinel, outside the valid range.
const groupCount = 8

// InterruptEngine implements the request/enable/active priority scan and
// vectored dispatch. Only the executor flow mutates its fields;
// RunLoop.Snapshot reads IntGroup, IntLevel and IntMask for the front-panel
// mirror.
type InterruptEngine struct {
	Request [groupCount]uint16
	Enabled [groupCount]uint16
	Active  [groupCount]uint16

	IntGroup   uint16 // 0..7, or 8 for "none active"
	IntLevel   uint16 // 1..12
	IntMask    uint16 // one-hot within IntGroup
	IntBlocked bool
	TOI        bool

	log *logrus.Logger
}

// NewInterruptEngine returns an engine with no groups active. A nil logger
// uses the package standard logger.
func NewInterruptEngine(logger *logrus.Logger) *InterruptEngine {
	return &InterruptEngine{IntGroup: groupCount, log: newLogger(logger)}
}

// Step runs one interrupt-engine cycle: aggregate pending device requests,
// apply the one-cycle IntBlocked lockout, then scan for a preempting
// candidate and vector to it. Called once per CPU step, after the executor
// returns.
func (ie *InterruptEngine) Step(m *Machine, mem *Memory, table *PeripheralTable) {
	ie.aggregate(table)

	if ie.IntBlocked {
		ie.IntBlocked = false
		return
	}

	g, candidate, ok := ie.selectCandidate()
	if !ok {
		return
	}
	ie.preempt(g, candidate, m, mem)
}

func (ie *InterruptEngine) aggregate(table *PeripheralTable) {
	table.Each(func(_ uint16, dev Peripheral) {
		vec := dev.Interrupts()
		if vec == nil {
			return
		}
		for g := 0; g < groupCount; g++ {
			if (*vec)[g] != 0 {
				ie.Request[g] |= (*vec)[g]
			}
		}
	})
}

// selectCandidate scans groups 0..IntGroup in priority order (lower group
// number is higher priority) and returns the first group whose masked
// request preempts the currently active level.
func (ie *InterruptEngine) selectCandidate() (group int, candidate uint16, ok bool) {
	top := int(ie.IntGroup)
	if top > groupCount-1 {
		top = groupCount - 1
	}
	for g := 0; g <= top; g++ {
		c := ie.Request[g] & ie.Enabled[g]
		if c == 0 {
			continue
		}
		if g < int(ie.IntGroup) {
			return g, c, true
		}
		// g == IntGroup: only a strictly higher-priority bit within the
		// same group preempts the currently active level.
		if highestBit(c) > highestBit(ie.IntMask) {
			return g, c, true
		}
	}
	return 0, 0, false
}

func (ie *InterruptEngine) preempt(g int, candidate uint16, m *Machine, mem *Memory) {
	hb := highestBit(candidate)
	mask := uint16(1) << uint(hb)

	level := 12 - hb // bit 11 is level 1, bit 0 is level 12

	ie.IntGroup = uint16(g)
	ie.IntMask = mask
	ie.IntLevel = uint16(level)
	ie.Active[g] |= mask

	vector := 514 + g*16 + (level - 1)
	if g > 2 {
		vector += 16
	}

	word := mem.Read(uint16(vector))
	target := word & pcMask
	mem.Write(target, m.PC)
	m.SetPC(target + 1)
	m.SetIR(mem.Read(m.PC))
	m.T = m.IR
	ie.IntBlocked = true

	ie.log.WithFields(logrus.Fields{
		"group":  g,
		"level":  level,
		"mask":   mask,
		"vector": vector,
		"target": target,
	}).Debug("interrupt dispatch")
}

// PIE sets bits in Enabled[group], masked to the 12-bit request width.
func (ie *InterruptEngine) PIE(group uint16, mask uint16) {
	if int(group) >= groupCount {
		return
	}
	ie.Enabled[group] |= mask & 0x0FFF
}

// PID clears bits in Enabled[group].
func (ie *InterruptEngine) PID(group uint16, mask uint16) {
	if int(group) >= groupCount {
		return
	}
	ie.Enabled[group] &^= mask & 0x0FFF
}

// MarkTOI arms the pending-dismissal flag; dismissal itself happens on the
// next BRU-with-indirect or LOB.
func (ie *InterruptEngine) MarkTOI() {
	ie.TOI = true
}

// DismissTOI performs the dismissal sequence: clear the currently active
// group/level's bit in Active and Request, then rescan Active for the
// next-highest level to restore as current. If nothing remains active,
// IntGroup reverts to the "none" sentinel.
func (ie *InterruptEngine) DismissTOI() {
	if !ie.TOI {
		return
	}
	ie.TOI = false

	if int(ie.IntGroup) >= groupCount {
		return
	}
	g := ie.IntGroup
	ie.Active[g] &^= ie.IntMask
	ie.Request[g] &^= ie.IntMask

	for gg := 0; gg < groupCount; gg++ {
		if ie.Active[gg] == 0 {
			continue
		}
		hb := highestBit(ie.Active[gg])
		ie.IntGroup = uint16(gg)
		ie.IntMask = uint16(1) << uint(hb)
		ie.IntLevel = uint16(12 - hb)
		return
	}
	ie.IntGroup = groupCount
	ie.IntLevel = 0
	ie.IntMask = 0
}

// highestBit returns the index (0-11, bit 11 highest priority) of the
// highest set bit in a 12-bit mask, or -1 if mask is zero.
func highestBit(mask uint16) int {
	for b := 11; b >= 0; b-- {
		if mask&(1<<uint(b)) != 0 {
			return b
		}
	}
	return -1
}
