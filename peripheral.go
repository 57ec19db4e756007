package sel810

import "sync"

// maxUnits is the size of the unit-id space addressed by control/data I/O
// instructions: a sparse map from unit id (0-63) to peripheral handle.
const maxUnits = 64

// InterruptVector is a peripheral's 9-slot request vector: one 12-bit mask
// per interrupt group 0-7, plus a reserved slot 8 that the interrupt
// engine never aggregates.
type InterruptVector [9]uint16

// Peripheral is the capability set every attached device implements. A
// device that never interrupts returns a nil InterruptVector from
// Interrupts.
type Peripheral interface {
	TestReady(cmd uint16) bool
	Test(cmd uint16) bool

	CommandReady() bool
	Command(cmd uint16) bool

	ReadReady() bool
	Read() (bool, uint16)

	WriteReady() bool
	Write(v uint16) bool

	Interrupts() *InterruptVector

	Exit()
}

// PeripheralTable is the unit-indexed device table, guarded by a single
// coarse lock.
type PeripheralTable struct {
	mu    sync.Mutex
	units [maxUnits]Peripheral
}

// NewPeripheralTable returns an empty table.
func NewPeripheralTable() *PeripheralTable {
	return &PeripheralTable{}
}

// Get returns the peripheral attached at unit, or nil if none. unit values
// outside 0-63 always return nil (an invalid peripheral reference).
func (t *PeripheralTable) Get(unit uint16) Peripheral {
	if unit >= maxUnits {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.units[unit]
}

// Attach installs dev at unit, returning the previously attached device if
// any (the caller is responsible for calling Exit on it exactly once; see
// Detach for removing-and-releasing in one call).
func (t *PeripheralTable) Attach(unit uint16, dev Peripheral) (Peripheral, bool) {
	if unit >= maxUnits {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	old := t.units[unit]
	t.units[unit] = dev
	return old, true
}

// Detach removes and releases (Exit) the peripheral at unit, if any.
func (t *PeripheralTable) Detach(unit uint16) {
	if unit >= maxUnits {
		return
	}
	t.mu.Lock()
	old := t.units[unit]
	t.units[unit] = nil
	t.mu.Unlock()
	if old != nil {
		old.Exit()
	}
}

// Each calls fn for every attached unit, in unit order. Used by the
// interrupt engine's per-instruction aggregation pass.
func (t *PeripheralTable) Each(fn func(unit uint16, dev Peripheral)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for u, dev := range t.units {
		if dev != nil {
			fn(uint16(u), dev)
		}
	}
}

// DetachAll releases every attached peripheral exactly once. Used by
// RunLoop teardown.
func (t *PeripheralTable) DetachAll() {
	t.mu.Lock()
	var released []Peripheral
	for u, dev := range t.units {
		if dev != nil {
			released = append(released, dev)
			t.units[u] = nil
		}
	}
	t.mu.Unlock()
	for _, dev := range released {
		dev.Exit()
	}
}
