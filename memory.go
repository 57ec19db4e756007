package sel810

import "sync"

// Memory is the SEL 810A's 32768-word core store, with per-address
// read/write breakpoint counters co-located for locality.
type Memory struct {
	mu sync.Mutex

	words [wordCount]uint16

	readCount  [wordCount]int32
	writeCount [wordCount]int32
	anyRead    bool
	anyWrite   bool

	sink BreakSink
}

// NewMemory returns a zeroed 32768-word core store.
func NewMemory() *Memory {
	return &Memory{sink: nullSink{}}
}

// SetBreakSink installs the receiver of address breakpoint firings. A nil
// sink restores the no-op default.
func (m *Memory) SetBreakSink(s BreakSink) {
	if s == nil {
		s = nullSink{}
	}
	m.sink = s
}

// Read returns the word at addr, checking the read breakpoint counter
// first. addr is masked to the 15-bit address space.
func (m *Memory) Read(addr uint16) uint16 {
	addr &= addrMask
	if m.anyRead {
		if m.checkCounter(&m.readCount, addr, &m.anyRead) {
			m.sink.OnBreak(BreakEvent{Kind: BreakRead, Addr: addr})
		}
	}
	return m.words[addr]
}

// Write stores v at addr, checking the write breakpoint counter first.
func (m *Memory) Write(addr uint16, v uint16) {
	addr &= addrMask
	if m.anyWrite {
		if m.checkCounter(&m.writeCount, addr, &m.anyWrite) {
			m.sink.OnBreak(BreakEvent{Kind: BreakWrite, Addr: addr})
		}
	}
	m.words[addr] = v
}

// checkCounter implements the shared decrement-and-fire rule: -1 always
// fires without decrementing, a positive count decrements and fires on the
// 1->0 transition, 0 never fires. anyFlag is recomputed only when a
// counter reaches 0, so the hot path stays a single bool check for
// programs with no breakpoints at all.
func (m *Memory) checkCounter(counter *[wordCount]int32, addr uint16, anyFlag *bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := counter[addr]
	switch {
	case c == 0:
		return false
	case c < 0:
		return true
	default:
		c--
		counter[addr] = c
		if c == 0 {
			*anyFlag = m.anyCounterSet(counter)
			return true
		}
		return false
	}
}

func (m *Memory) anyCounterSet(counter *[wordCount]int32) bool {
	for _, c := range counter {
		if c != 0 {
			return true
		}
	}
	return false
}

// SetReadBP arms a read breakpoint at addr. count == -1 means "always
// fire"; count > 0 fires once the counter decrements to 0; count == 0
// disarms it.
func (m *Memory) SetReadBP(addr uint16, count int32) {
	addr &= addrMask
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCount[addr] = count
	m.anyRead = m.anyCounterSet(&m.readCount)
}

// SetWriteBP arms a write breakpoint at addr, with the same count
// convention as SetReadBP.
func (m *Memory) SetWriteBP(addr uint16, count int32) {
	addr &= addrMask
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCount[addr] = count
	m.anyWrite = m.anyCounterSet(&m.writeCount)
}

// ClearAllBP disarms every address breakpoint.
func (m *Memory) ClearAllBP() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCount = [wordCount]int32{}
	m.writeCount = [wordCount]int32{}
	m.anyRead = false
	m.anyWrite = false
}

// LoadImage packs data as big-endian byte pairs into successive words
// starting at start, wrapping the address at 32768. An odd trailing byte
// is packed high-byte-only. This bypasses breakpoints entirely: a bulk
// load is not a simulated bus cycle.
func (m *Memory) LoadImage(start uint16, data []byte) {
	addr := start & addrMask
	for i := 0; i < len(data); i += 2 {
		hi := uint16(data[i])
		var lo uint16
		if i+1 < len(data) {
			lo = uint16(data[i+1])
		}
		m.words[addr] = hi<<8 | lo
		addr = (addr + 1) & addrMask
	}
}
