package sel810

import "sync"

// RegBreakpoints holds the per-value breakpoint counters for A, B, IR and
// PC. Counters follow the shared convention used by address
// breakpoints in memory.go: 0 means disarmed, -1 means "always fire", a
// positive count decrements on match and fires on the 1->0 transition.
//
// Values are sparse relative to the full 16-bit space, so each register
// gets a map rather than the dense arrays memory.go uses for addresses
// (which are co-located with the memory array itself for locality).
type RegBreakpoints struct {
	mu      sync.Mutex
	counts  [4]map[uint16]int32
	anyFlag [4]bool
}

func (b *RegBreakpoints) init() {
	for i := range b.counts {
		b.counts[i] = make(map[uint16]int32)
	}
}

// anySet is the cheap hot-path gate: no lock, no map lookup, when nothing
// is armed for reg.
func (b *RegBreakpoints) anySet(reg RegisterID) bool {
	return b.anyFlag[reg]
}

func (b *RegBreakpoints) set(reg RegisterID, value uint16, count int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if count == 0 {
		delete(b.counts[reg], value)
	} else {
		b.counts[reg][value] = count
	}
	b.anyFlag[reg] = len(b.counts[reg]) > 0
}

func (b *RegBreakpoints) clear(reg RegisterID, value uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.counts[reg], value)
	b.anyFlag[reg] = len(b.counts[reg]) > 0
}

func (b *RegBreakpoints) clearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.counts {
		b.counts[i] = make(map[uint16]int32)
		b.anyFlag[i] = false
	}
}

// check reports whether value fires a breakpoint on reg, decrementing a
// positive counter on the way.
func (b *RegBreakpoints) check(reg RegisterID, value uint16) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	count, ok := b.counts[reg][value]
	if !ok || count == 0 {
		return false
	}
	if count < 0 {
		return true // sentinel: always fire, never decrements
	}
	count--
	if count == 0 {
		delete(b.counts[reg], value)
		b.anyFlag[reg] = len(b.counts[reg]) > 0
		return true
	}
	b.counts[reg][value] = count
	return false
}
