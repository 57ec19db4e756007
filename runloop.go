package sel810

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// RunLoop is the run-loop controller: it owns the
// Halt/Step/Interrupt gate and wires the Machine, Memory, PeripheralTable,
// IOArbiter, InterruptEngine and Executor together. It is the one
// production BreakSink: a breakpoint firing halts the loop and logs a
// diagnostic.
type RunLoop struct {
	M     *Machine
	Mem   *Memory
	Table *PeripheralTable
	IO    *IOArbiter
	IE    *InterruptEngine
	Exec  *Executor
	Cfg   Config
	Panel FrontPanel

	log *logrus.Logger

	halt      atomic.Bool
	step      atomic.Bool
	interrupt atomic.Bool
	dirty     atomic.Bool

	done chan struct{}
}

// NewRunLoop constructs a fully wired, halted RunLoop with a NullFrontPanel.
// A nil logger uses the package standard logger.
func NewRunLoop(cfg Config, logger *logrus.Logger) *RunLoop {
	log := newLogger(logger)
	m := NewMachine()
	mem := NewMemory()
	table := NewPeripheralTable()
	ie := NewInterruptEngine(log)
	io := NewIOArbiter(table, cfg, log)
	exec := NewExecutor(m, mem, table, ie, io, cfg, log)

	r := &RunLoop{
		M:     m,
		Mem:   mem,
		Table: table,
		IO:    io,
		IE:    ie,
		Exec:  exec,
		Cfg:   cfg,
		Panel: NullFrontPanel{},
		log:   log,
		done:  make(chan struct{}),
	}
	r.halt.Store(true)
	m.SetBreakSink(r)
	mem.SetBreakSink(r)
	return r
}

// SetFrontPanel installs the push target for state-mirror snapshots. A nil
// panel restores the no-op default.
func (r *RunLoop) SetFrontPanel(p FrontPanel) {
	if p == nil {
		p = NullFrontPanel{}
	}
	r.Panel = p
}

// Run clears Halt, allowing the loop to execute continuously.
func (r *RunLoop) Run() { r.halt.Store(false) }

// Halt sets Halt, parking the loop between steps.
func (r *RunLoop) Halt() { r.halt.Store(true) }

// Halted reports the current Halt state.
func (r *RunLoop) Halted() bool { return r.halt.Load() }

// Step arms a single-step request. Meaningful only while halted: the loop
// executes exactly one CPU step and one interrupt step, then clears it.
func (r *RunLoop) Step() { r.step.Store(true) }

// MasterClear resets machine state and un-halts nothing -- the caller
// decides whether to Run afterward.
func (r *RunLoop) MasterClear() { r.M.MasterClear() }

// Attach installs dev at unit, returning the peripheral it replaced, if
// any, so the caller can release it.
func (r *RunLoop) Attach(unit uint16, dev Peripheral) (Peripheral, bool) {
	return r.Table.Attach(unit, dev)
}

// Detach removes and releases the peripheral at unit.
func (r *RunLoop) Detach(unit uint16) { r.Table.Detach(unit) }

// ReleaseIOHold abandons the current IOHOLD wait, if any.
func (r *RunLoop) ReleaseIOHold() { r.IO.ReleaseIOHold() }

// SetReadBP arms a read breakpoint at addr.
func (r *RunLoop) SetReadBP(addr uint16, count int32) { r.Mem.SetReadBP(addr, count) }

// SetWriteBP arms a write breakpoint at addr.
func (r *RunLoop) SetWriteBP(addr uint16, count int32) { r.Mem.SetWriteBP(addr, count) }

// SetRegBP arms a register-value breakpoint.
func (r *RunLoop) SetRegBP(reg RegisterID, value uint16, count int32) {
	r.M.SetRegBP(reg, value, count)
}

// ClearAllBP disarms every address and register-value breakpoint.
func (r *RunLoop) ClearAllBP() {
	r.Mem.ClearAllBP()
	r.M.ClearAllRegBP()
}

// NotifyInterrupt lets an I/O worker flow ping the run loop's Interrupt
// flag awake. The run loop itself polls continuously and does not
// depend on this signal to make progress; it exists for external
// observers that want to know a request just landed.
func (r *RunLoop) NotifyInterrupt() { r.interrupt.Store(true) }

// InterruptPending reports and clears the Interrupt flag.
func (r *RunLoop) InterruptPending() bool { return r.interrupt.Swap(false) }

// Loop runs the controller body until Close is called. Intended to be
// started with `go r.Loop()`.
func (r *RunLoop) Loop() {
	for {
		select {
		case <-r.done:
			return
		default:
		}

		if r.halt.Load() {
			if r.step.Load() {
				r.runOneStep()
				r.step.Store(false)
			} else {
				time.Sleep(r.Cfg.WaitPoll)
			}
			continue
		}
		r.runOneStep()
	}
}

func (r *RunLoop) runOneStep() {
	r.Exec.Step()
	if r.Exec.HaltRequested() {
		r.halt.Store(true)
	}
	r.IE.Step(r.M, r.Mem, r.Table)
	r.dirty.Store(true)
}

// PushLoop periodically pushes a state-mirror snapshot to Panel whenever
// the loop has made progress since the last push. Intended to be started
// with `go r.PushLoop()`.
func (r *RunLoop) PushLoop() {
	ticker := time.NewTicker(frontPanelPushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			if r.dirty.CompareAndSwap(true, false) {
				r.Panel.Push(r.Snapshot())
			}
		}
	}
}

// Snapshot builds the current state mirror.
func (r *RunLoop) Snapshot() Mirror {
	return Mirror{
		A: r.M.A, B: r.M.B, X: r.M.X, PC: r.M.PC, IR: r.M.IR, T: r.M.T,
		SR: r.M.SR, VBR: r.M.VBR, PPR: r.M.PPR,
		CF: r.M.CF, XP: r.M.XP, OVF: r.M.OVF,
		Halted:   r.halt.Load(),
		IOHold:   r.IO.IOHold(),
		IntGroup: r.IE.IntGroup,
		IntLevel: r.IE.IntLevel,
		IntMask:  r.IE.IntMask,
		Dirty:    true,
	}
}

// OnBreak implements BreakSink: a firing breakpoint halts the loop and
// emits a diagnostic naming PC, IR and the decoded mnemonic.
func (r *RunLoop) OnBreak(ev BreakEvent) {
	r.halt.Store(true)
	r.log.WithFields(logrus.Fields{
		"kind":     ev.Kind.String(),
		"addr":     ev.Addr,
		"reg":      ev.Reg.String(),
		"value":    ev.Value,
		"pc":       r.M.PC,
		"ir":       r.M.IR,
		"mnemonic": mnemonic(r.M.IR),
	}).Warn("breakpoint fired")
}

// Close tears the loop down: detaches and releases every peripheral, and
// signals Loop/PushLoop to exit.
func (r *RunLoop) Close() {
	close(r.done)
	r.Table.DetachAll()
}
