package sel810

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestMirrorSerializeRoundTrip(t *testing.T) {
	is := is.New(t)
	mir := Mirror{A: 1, B: 2, PC: 3, IntGroup: 4, Halted: true, Dirty: true}

	raw, err := mir.Serialize()
	is.NoErr(err)

	var got Mirror
	is.NoErr(json.Unmarshal(raw, &got))
	is.Equal(got, mir)
}

func TestNullFrontPanelPushIsNoOp(t *testing.T) {
	var p NullFrontPanel
	p.Push(Mirror{A: 1}) // must not panic
}

type capturingPanel struct {
	pushes chan Mirror
}

func (p *capturingPanel) Push(m Mirror) { p.pushes <- m }

func TestRunLoopPushLoopPushesOnlyWhenDirty(t *testing.T) {
	is := is.New(t)
	r := NewRunLoop(fastTestConfig(), nil)
	panel := &capturingPanel{pushes: make(chan Mirror, 4)}
	r.SetFrontPanel(panel)

	go r.PushLoop()
	defer r.Close()

	select {
	case <-panel.pushes:
		t.Fatal("push happened before any step marked the loop dirty")
	case <-time.After(50 * time.Millisecond):
	}

	r.Mem.Write(0, 0x0000) // HLT, leaves PC untouched but still marks dirty
	r.M.SetIR(r.Mem.Read(0))
	r.Step()
	go r.Loop()

	select {
	case mir := <-panel.pushes:
		is.True(mir.Dirty)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a push after a dirty step")
	}
}

func TestSnapshotReflectsCurrentState(t *testing.T) {
	is := is.New(t)
	r := NewRunLoop(fastTestConfig(), nil)
	r.M.SetA(0x1234)
	r.M.SetPC(100)
	r.IE.IntGroup = 2
	r.IE.IntLevel = 5
	r.IE.IntMask = 0x040

	mir := r.Snapshot()

	is.Equal(mir.A, uint16(0x1234))
	is.Equal(mir.PC, uint16(100))
	is.Equal(mir.IntGroup, uint16(2))
	is.Equal(mir.IntLevel, uint16(5))
	is.Equal(mir.IntMask, uint16(0x040))
	is.True(mir.Halted)
}
