package sel810

import (
	"testing"

	"github.com/matryer/is"
)

type fakeInterruptDevice struct {
	vec InterruptVector
}

func (d *fakeInterruptDevice) TestReady(uint16) bool    { return false }
func (d *fakeInterruptDevice) Test(uint16) bool         { return false }
func (d *fakeInterruptDevice) CommandReady() bool       { return false }
func (d *fakeInterruptDevice) Command(uint16) bool      { return false }
func (d *fakeInterruptDevice) ReadReady() bool          { return false }
func (d *fakeInterruptDevice) Read() (bool, uint16)     { return false, 0 }
func (d *fakeInterruptDevice) WriteReady() bool         { return false }
func (d *fakeInterruptDevice) Write(uint16) bool        { return false }
func (d *fakeInterruptDevice) Interrupts() *InterruptVector { return &d.vec }
func (d *fakeInterruptDevice) Exit()                    {}

// scenario 4: interrupt dispatch.
func TestScenarioInterruptDispatch(t *testing.T) {
	is := is.New(t)
	m := NewMachine()
	mem := NewMemory()
	table := NewPeripheralTable()
	ie := NewInterruptEngine(nil)

	dev := &fakeInterruptDevice{}
	dev.vec[3] = 0x800
	table.Attach(0, dev)

	ie.Enabled[3] = 0x800
	m.SetPC(1000)
	mem.Write(578, 0x0064) // vector word: X=0,I=0, target 0x64

	ie.Step(m, mem, table)

	is.Equal(ie.IntGroup, uint16(3))
	is.Equal(ie.IntMask, uint16(0x800))
	is.Equal(ie.IntLevel, uint16(1))
	is.Equal(ie.Active[3]&0x800, uint16(0x800))
	is.True(ie.IntBlocked)
	is.Equal(m.PC, uint16(0x65))
	is.Equal(mem.Read(0x64), uint16(1000))
}

func TestPIEPIDRoundTrip(t *testing.T) {
	is := is.New(t)
	ie := NewInterruptEngine(nil)
	before := ie.Enabled[2]
	ie.PIE(2, 0x0F0)
	ie.PID(2, 0x0F0)
	is.Equal(ie.Enabled[2], before)
}

func TestIntBlockedGatesOneScan(t *testing.T) {
	is := is.New(t)
	m := NewMachine()
	mem := NewMemory()
	table := NewPeripheralTable()
	ie := NewInterruptEngine(nil)

	dev := &fakeInterruptDevice{}
	dev.vec[0] = 0x800
	table.Attach(0, dev)
	ie.Enabled[0] = 0x800
	ie.IntBlocked = true

	ie.Step(m, mem, table)

	is.True(!ie.IntBlocked) // cleared, no dispatch this cycle
	is.Equal(ie.IntGroup, uint16(groupCount))
}

func TestHigherPriorityGroupPreempts(t *testing.T) {
	is := is.New(t)
	m := NewMachine()
	mem := NewMemory()
	table := NewPeripheralTable()
	ie := NewInterruptEngine(nil)

	ie.IntGroup = 5
	ie.IntMask = 0x001
	ie.Active[5] = 0x001
	ie.Enabled[1] = 0x400
	ie.Request[1] = 0x400
	mem.Write(531, 0x0010) // vector for group 1 level 2

	ie.Step(m, mem, table)

	is.Equal(ie.IntGroup, uint16(1))
}

func TestDismissTOIRestoresNextHighestActive(t *testing.T) {
	is := is.New(t)
	ie := NewInterruptEngine(nil)
	ie.Active[2] = 0x004
	ie.Active[4] = 0x100
	ie.IntGroup = 4
	ie.IntMask = 0x100
	ie.IntLevel = 9
	ie.TOI = true

	ie.DismissTOI()

	is.Equal(ie.IntGroup, uint16(2))
	is.Equal(ie.IntMask, uint16(0x004))
	is.Equal(ie.IntLevel, uint16(10)) // bit 2 -> level 12-2

}

func TestDismissTOINoneLeftSetsNoneSentinel(t *testing.T) {
	is := is.New(t)
	ie := NewInterruptEngine(nil)
	ie.Active[3] = 0x800
	ie.IntGroup = 3
	ie.IntMask = 0x800
	ie.TOI = true

	ie.DismissTOI()

	is.Equal(ie.IntGroup, uint16(groupCount))
	is.Equal(ie.IntLevel, uint16(0))
	is.Equal(ie.IntMask, uint16(0))
}
