package sel810

import (
	"encoding/json"
	"time"
)

// frontPanelPushInterval is the cadence at which the run loop pushes a
// snapshot of the state mirror when marked dirty.
const frontPanelPushInterval = 200 * time.Millisecond

// Mirror is the plain, JSON-serializable snapshot of machine state the
// front-panel flow reads and forwards. It carries no behavior of its own;
// the network protocol and persistence-array bookkeeping on top of it are
// an external collaborator's job.
type Mirror struct {
	A, B, X, PC, IR, T, SR, VBR, PPR uint16
	CF, XP, OVF                      bool

	Halted bool
	IOHold bool

	IntGroup uint16
	IntLevel uint16
	IntMask  uint16

	Dirty bool
}

// Serialize encodes the mirror as the UTF-8 JSON object the front-panel
// protocol's frame body carries.
func (mir Mirror) Serialize() ([]byte, error) {
	return json.Marshal(mir)
}

// FrontPanel is the interface an external network-protocol collaborator
// implements; the core only ever calls Push.
type FrontPanel interface {
	Push(Mirror)
}

// NullFrontPanel discards every push. It is the default until something
// real is wired in, so a bare RunLoop works in tests without a network
// listener.
type NullFrontPanel struct{}

func (NullFrontPanel) Push(Mirror) {}
