package twi

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardnew/softtwi/clock"
	"github.com/ardnew/softtwi/pkg"
	"github.com/ardnew/softtwi/twi/hal"
	"github.com/ardnew/softtwi/twi/hal/sim"
)

const rtcAddress = 0x68

// newSimMaster returns an initialized master on a simulated peripheral with
// a register target at rtcAddress. Ticks are milliseconds.
func newSimMaster(t *testing.T, timeout uint16) (*Master, *sim.Peripheral, *sim.RegisterTarget) {
	t.Helper()

	periph := sim.New()
	target := sim.NewRegisterTarget(rtcAddress, 64)
	periph.Attach(target)

	ticks := clock.NewStopwatch()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = ticks.Run(ctx, time.Millisecond) }()

	t.Cleanup(func() {
		cancel()
		_ = periph.Close()
	})

	m := New(periph, clock.NewSystem(16_000_000), ticks)
	if err := m.Init(100_000, DefaultBufferSize); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := m.SetTimeout(timeout); err != nil {
		t.Fatalf("SetTimeout() error = %v", err)
	}
	if err := m.SetDevice(rtcAddress, false); err != nil {
		t.Fatalf("SetDevice() error = %v", err)
	}
	return m, periph, target
}

// settle waits for a queued STOP to reach the bus.
func settle(t *testing.T, p *sim.Peripheral) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for p.TWCR()&hal.TWSTO != 0 {
		if time.Now().After(deadline) {
			t.Fatal("STOP never completed")
		}
		time.Sleep(100 * time.Microsecond)
	}
}

func equalFrames(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestReadRegTwoPhase(t *testing.T) {
	m, periph, target := newSimMaster(t, 2000)
	target.Load(0x00, []byte{0x30, 0x59, 0x23, 0x07, 0x31, 0x12, 0x99})

	out := make([]byte, 7)
	if err := m.ReadReg(0x00, out, 7); err != nil {
		t.Fatalf("ReadReg() error = %v", err)
	}
	settle(t, periph)

	want := []byte{0x30, 0x59, 0x23, 0x07, 0x31, 0x12, 0x99}
	if !bytes.Equal(out, want) {
		t.Errorf("ReadReg() = % x, want % x", out, want)
	}

	frames := periph.Recorder().Frames()
	wantFrames := [][]byte{
		{0xD0, 0x00},
		append([]byte{0xD1}, want...),
	}
	if !equalFrames(frames, wantFrames) {
		t.Errorf("frames = % x, want % x", frames, wantFrames)
	}

	// Every received byte but the last is acknowledged.
	var reads []sim.Event
	for _, e := range periph.Recorder().Events() {
		if e.Type == sim.EventRead {
			reads = append(reads, e)
		}
	}
	for i, e := range reads {
		last := i == len(reads)-1
		if e.Ack == last {
			t.Errorf("read %d ack = %v, want %v", i, e.Ack, !last)
		}
	}
	if n := periph.Recorder().Count(sim.EventStop); n != 2 {
		t.Errorf("STOP count = %d, want 2", n)
	}
	if m.LastError() != nil {
		t.Errorf("LastError() = %v, want nil", m.LastError())
	}
}

func TestReadRegSingleByteNacked(t *testing.T) {
	m, periph, target := newSimMaster(t, 2000)
	target.Load(0x08, []byte{0x5A})

	out := make([]byte, 1)
	if err := m.ReadReg(0x08, out, 1); err != nil {
		t.Fatalf("ReadReg() error = %v", err)
	}
	if out[0] != 0x5A {
		t.Errorf("ReadReg() = %#02x, want 0x5a", out[0])
	}
	for _, e := range periph.Recorder().Events() {
		if e.Type == sim.EventRead && e.Ack {
			t.Errorf("single byte read was acknowledged: %s", e)
		}
	}
}

func TestWriteRegFrame(t *testing.T) {
	m, periph, target := newSimMaster(t, 2000)

	if err := m.WriteReg(0x07, []byte{0x10}, 1); err != nil {
		t.Fatalf("WriteReg() error = %v", err)
	}
	settle(t, periph)

	wantFrames := [][]byte{{0xD0, 0x07, 0x10}}
	if frames := periph.Recorder().Frames(); !equalFrames(frames, wantFrames) {
		t.Errorf("frames = % x, want % x", frames, wantFrames)
	}
	if got := target.Registers()[0x07]; got != 0x10 {
		t.Errorf("register 0x07 = %#02x, want 0x10", got)
	}
	if target.Stops() != 1 {
		t.Errorf("target saw %d STOPs, want 1", target.Stops())
	}
}

func TestWriteRegThenReadBack(t *testing.T) {
	m, _, _ := newSimMaster(t, 2000)

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if err := m.WriteReg(0x20, data, len(data)); err != nil {
		t.Fatalf("WriteReg() error = %v", err)
	}
	out := make([]byte, len(data))
	if err := m.ReadReg(0x20, out, len(out)); err != nil {
		t.Fatalf("ReadReg() error = %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("read back % x, want % x", out, data)
	}
}

func TestAddressNack(t *testing.T) {
	m, periph, _ := newSimMaster(t, 2000)
	periph.Detach(rtcAddress)

	out := []byte{0xEE, 0xEE}
	err := m.ReadReg(0x00, out, 2)
	if !errors.Is(err, pkg.ErrCommunicationFailed) {
		t.Fatalf("ReadReg() error = %v, want %v", err, pkg.ErrCommunicationFailed)
	}
	if m.LastBusStatus() != hal.StatusMTxAdrNack {
		t.Errorf("LastBusStatus() = %s, want MTX_ADR_NACK", m.LastBusStatus())
	}
	if !bytes.Equal(out, []byte{0xEE, 0xEE}) {
		t.Errorf("failed read wrote caller buffer: % x", out)
	}
	if pkg.CodeOf(m.LastError()) != pkg.CodeCommunicationFailed {
		t.Errorf("CodeOf(LastError()) = %s", pkg.CodeOf(m.LastError()))
	}
}

func TestDataNack(t *testing.T) {
	m, _, target := newSimMaster(t, 2000)
	target.SetNackData(true)

	err := m.WriteReg(0x00, []byte{0x01, 0x02}, 2)
	if !errors.Is(err, pkg.ErrCommunicationFailed) {
		t.Fatalf("WriteReg() error = %v, want %v", err, pkg.ErrCommunicationFailed)
	}
	if m.LastBusStatus() != hal.StatusMTxDataNack {
		t.Errorf("LastBusStatus() = %s, want MTX_DATA_NACK", m.LastBusStatus())
	}
}

func TestBusErrorFails(t *testing.T) {
	m, periph, _ := newSimMaster(t, 2000)
	periph.InjectBusError()

	err := m.WriteReg(0x00, []byte{0x01}, 1)
	if !errors.Is(err, pkg.ErrCommunicationFailed) {
		t.Fatalf("WriteReg() error = %v, want %v", err, pkg.ErrCommunicationFailed)
	}
	if m.LastBusStatus() != hal.StatusBusError {
		t.Errorf("LastBusStatus() = %s, want BUS_ERROR", m.LastBusStatus())
	}
}

func TestRecoversAfterFault(t *testing.T) {
	m, _, target := newSimMaster(t, 2000)
	target.Load(0x00, []byte{0x42})

	_ = m.SetDevice(0x50, false)
	if err := m.ReadReg(0x00, make([]byte, 1), 1); !errors.Is(err, pkg.ErrCommunicationFailed) {
		t.Fatalf("ReadReg() from absent device error = %v", err)
	}

	// The faulted frame left the bus held; the next START is a repeated one.
	_ = m.SetDevice(rtcAddress, false)
	out := make([]byte, 1)
	if err := m.ReadReg(0x00, out, 1); err != nil {
		t.Fatalf("ReadReg() after fault error = %v", err)
	}
	if out[0] != 0x42 {
		t.Errorf("ReadReg() = %#02x, want 0x42", out[0])
	}
	if m.LastError() != nil {
		t.Errorf("LastError() = %v, want nil", m.LastError())
	}
}

func TestArbitrationLostRetries(t *testing.T) {
	m, periph, target := newSimMaster(t, 2000)
	periph.LoseArbitration(2)

	if err := m.WriteReg(0x03, []byte{0x77}, 1); err != nil {
		t.Fatalf("WriteReg() error = %v", err)
	}
	if n := periph.Recorder().Count(sim.EventArbLost); n != 2 {
		t.Errorf("arbitration losses = %d, want 2", n)
	}
	if n := periph.Recorder().Count(sim.EventStart); n != 3 {
		t.Errorf("START count = %d, want 3", n)
	}
	if got := target.Registers()[0x03]; got != 0x77 {
		t.Errorf("register 0x03 = %#02x, want 0x77", got)
	}
}

func TestArbitrationLostForeverTimesOut(t *testing.T) {
	m, periph, _ := newSimMaster(t, 20)
	periph.LoseArbitration(-1)

	start := time.Now()
	err := m.WriteReg(0x00, []byte{0x01}, 1)
	if !errors.Is(err, pkg.ErrCommunicationTimeout) {
		t.Fatalf("WriteReg() error = %v, want %v", err, pkg.ErrCommunicationTimeout)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
	if !errors.Is(m.LastError(), pkg.ErrCommunicationTimeout) {
		t.Errorf("LastError() = %v, want %v", m.LastError(), pkg.ErrCommunicationTimeout)
	}
}

func TestReinitAfterTimeout(t *testing.T) {
	for i := 0; i < 5; i++ {
		m, periph, target := newSimMaster(t, 5)
		periph.LoseArbitration(-1)

		err := m.WriteReg(0x05, []byte{0x11}, 1)
		if !errors.Is(err, pkg.ErrCommunicationTimeout) {
			t.Fatalf("iteration %d: WriteReg() error = %v, want %v", i, err, pkg.ErrCommunicationTimeout)
		}

		// The engine is still retrying START when Init runs.
		if err := m.Init(100_000, 30); err != nil {
			t.Fatalf("iteration %d: Init() error = %v", i, err)
		}
		periph.LoseArbitration(0)
		_ = m.SetTimeout(2000)

		if err := m.WriteReg(0x05, []byte{0x42}, 1); err != nil {
			t.Fatalf("iteration %d: WriteReg() after Init error = %v, bus status %s",
				i, err, m.LastBusStatus())
		}
		if got := target.Registers()[0x05]; got != 0x42 {
			t.Errorf("iteration %d: register 0x05 = %#02x, want 0x42", i, got)
		}
		if m.BufferSize() != 30 {
			t.Errorf("iteration %d: BufferSize() = %d, want 30", i, m.BufferSize())
		}
	}
}
