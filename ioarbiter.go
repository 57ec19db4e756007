package sel810

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// IOArbiter implements the SKIP/WAIT/IOHOLD state machine over a
// PeripheralTable. It owns the one volatile flag (holding) that has to be
// visible cross-goroutine while an instruction on the executor flow is
// stalled waiting for a device.
type IOArbiter struct {
	cfg     Config
	table   *PeripheralTable
	log     *logrus.Logger
	holding atomic.Bool
	release chan struct{}
}

// NewIOArbiter returns an arbiter bound to table, using cfg's timing
// windows. A nil logger uses the package standard logger.
func NewIOArbiter(table *PeripheralTable, cfg Config, logger *logrus.Logger) *IOArbiter {
	return &IOArbiter{
		cfg:     cfg,
		table:   table,
		log:     newLogger(logger),
		release: make(chan struct{}, 1),
	}
}

// IOHold reports whether the arbiter is currently stalled in IOHOLD.
func (io *IOArbiter) IOHold() bool { return io.holding.Load() }

// ReleaseIOHold abandons the current IOHOLD wait, if any, causing the
// blocked arbitration to re-check device readiness immediately.
func (io *IOArbiter) ReleaseIOHold() {
	select {
	case io.release <- struct{}{}:
	default:
	}
}

// drainRelease clears a stale release signal left over from a prior call
// that was never actually waiting when ReleaseIOHold fired.
func (io *IOArbiter) drainRelease() {
	select {
	case <-io.release:
	default:
	}
}

// Test arbitrates a TEU-style test operation on unit.
func (io *IOArbiter) Test(unit uint16, cmd uint16, wait bool, pollIOHold time.Duration) bool {
	return io.arbitrateBool(unit, wait, pollIOHold,
		func(p Peripheral) bool { return p.TestReady(cmd) },
		func(p Peripheral) bool { return p.Test(cmd) })
}

// Command arbitrates a CEU-style command operation on unit.
func (io *IOArbiter) Command(unit uint16, cmd uint16, wait bool) bool {
	return io.arbitrateBool(unit, wait, io.cfg.IOHoldPollCmd,
		func(p Peripheral) bool { return p.CommandReady() },
		func(p Peripheral) bool { return p.Command(cmd) })
}

// ReadWord arbitrates an AIP/MIP-style input operation on unit.
func (io *IOArbiter) ReadWord(unit uint16, wait bool) (bool, uint16) {
	dev := io.table.Get(unit)
	if dev == nil {
		return false, 0
	}
	ok := io.await(dev, wait, io.cfg.IOHoldPollData, func(p Peripheral) bool { return p.ReadReady() })
	if !ok {
		return false, 0
	}
	return dev.Read()
}

// WriteWord arbitrates an AOP/MOP-style output operation on unit.
func (io *IOArbiter) WriteWord(unit uint16, v uint16, wait bool) bool {
	return io.arbitrateBool(unit, wait, io.cfg.IOHoldPollData,
		func(p Peripheral) bool { return p.WriteReady() },
		func(p Peripheral) bool { return p.Write(v) })
}

func (io *IOArbiter) arbitrateBool(unit uint16, wait bool, pollIOHold time.Duration,
	ready func(Peripheral) bool, op func(Peripheral) bool) bool {
	dev := io.table.Get(unit)
	if dev == nil {
		return false
	}
	if !io.await(dev, wait, pollIOHold, ready) {
		return false
	}
	return op(dev)
}

// await blocks (if wait is true) until ready(dev) is true, spin-polling
// the indicator-lag window first and then escalating to IOHOLD. In SKIP
// mode (wait == false) it checks once and returns immediately.
func (io *IOArbiter) await(dev Peripheral, wait bool, pollIOHold time.Duration, ready func(Peripheral) bool) bool {
	if ready(dev) {
		return true
	}
	if !wait {
		return false
	}

	io.drainRelease()

	deadline := time.Now().Add(io.cfg.IndicatorLag)
	for time.Now().Before(deadline) {
		time.Sleep(io.cfg.WaitPoll)
		if ready(dev) {
			return true
		}
	}

	io.log.WithField("component", "ioarbiter").Debug("entering IOHOLD")
	io.holding.Store(true)
	defer func() {
		io.holding.Store(false)
		io.log.WithField("component", "ioarbiter").Debug("leaving IOHOLD")
	}()

	for {
		select {
		case <-io.release:
			if ready(dev) {
				return true
			}
			// a release re-checks once and, if still not ready, resumes
			// the IOHOLD poll.
		case <-time.After(pollIOHold):
		}
		if ready(dev) {
			return true
		}
	}
}
