package sel810

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"
)

type fakeIODevice struct {
	ready atomic.Bool
	word  uint16
}

func (d *fakeIODevice) TestReady(uint16) bool        { return d.ready.Load() }
func (d *fakeIODevice) Test(uint16) bool             { return true }
func (d *fakeIODevice) CommandReady() bool           { return d.ready.Load() }
func (d *fakeIODevice) Command(uint16) bool          { return true }
func (d *fakeIODevice) ReadReady() bool              { return d.ready.Load() }
func (d *fakeIODevice) Read() (bool, uint16)         { return true, d.word }
func (d *fakeIODevice) WriteReady() bool             { return d.ready.Load() }
func (d *fakeIODevice) Write(uint16) bool            { return true }
func (d *fakeIODevice) Interrupts() *InterruptVector { return nil }
func (d *fakeIODevice) Exit()                        {}

func fastTestConfig() Config {
	return Config{
		IndicatorLag:   40 * time.Millisecond,
		WaitPoll:       5 * time.Millisecond,
		IOHoldPollCmd:  10 * time.Millisecond,
		IOHoldPollData: 4 * time.Millisecond,
	}
}

func TestSkipModeReturnsImmediatelyWhenNotReady(t *testing.T) {
	is := is.New(t)
	table := NewPeripheralTable()
	dev := &fakeIODevice{}
	table.Attach(0, dev)
	io := NewIOArbiter(table, fastTestConfig(), nil)

	start := time.Now()
	ok := io.Command(0, 0, false)
	is.True(!ok)
	is.True(time.Since(start) < 10*time.Millisecond)
}

func TestWaitModeSucceedsOnceReadyWithinIndicatorLag(t *testing.T) {
	is := is.New(t)
	table := NewPeripheralTable()
	dev := &fakeIODevice{}
	table.Attach(0, dev)
	cfg := fastTestConfig()
	io := NewIOArbiter(table, cfg, nil)

	time.AfterFunc(15*time.Millisecond, func() { dev.ready.Store(true) })

	ok := io.Command(0, 0, true)
	is.True(ok)
}

// scenario 6: IOHOLD recovery once ReadReady becomes true beyond the
// indicator-lag window.
func TestScenarioIOHoldRecovery(t *testing.T) {
	is := is.New(t)
	table := NewPeripheralTable()
	dev := &fakeIODevice{word: 0x55AA}
	table.Attach(3, dev)
	cfg := fastTestConfig()
	io := NewIOArbiter(table, cfg, nil)

	sawHold := make(chan bool, 1)
	go func() {
		time.Sleep(cfg.IndicatorLag + cfg.IOHoldPollData)
		sawHold <- io.IOHold()
	}()
	time.AfterFunc(2*cfg.IndicatorLag, func() { dev.ready.Store(true) })

	ok, v := io.ReadWord(3, true)

	is.True(ok)
	is.Equal(v, uint16(0x55AA))
	is.True(!io.IOHold())
	is.True(<-sawHold)
}

func TestReleaseIOHoldRechecksImmediately(t *testing.T) {
	is := is.New(t)
	table := NewPeripheralTable()
	dev := &fakeIODevice{}
	table.Attach(0, dev)
	cfg := fastTestConfig()
	io := NewIOArbiter(table, cfg, nil)

	go func() {
		time.Sleep(cfg.IndicatorLag + 2*time.Millisecond)
		dev.ready.Store(true)
		io.ReleaseIOHold()
	}()

	start := time.Now()
	ok := io.Command(0, 0, true)
	elapsed := time.Since(start)

	is.True(ok)
	is.True(elapsed < cfg.IndicatorLag+cfg.IOHoldPollCmd)
}

func TestMissingPeripheralIsSilentNoOp(t *testing.T) {
	is := is.New(t)
	table := NewPeripheralTable()
	io := NewIOArbiter(table, fastTestConfig(), nil)

	is.True(!io.Command(5, 0, false))
	ok, v := io.ReadWord(5, true)
	is.True(!ok)
	is.Equal(v, uint16(0))
}
