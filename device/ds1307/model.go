package ds1307

import (
	"sync"
	"time"

	"github.com/ardnew/softtwi/datetime"
	"github.com/ardnew/softtwi/twi/hal/sim"
)

// Model emulates a DS1307 on the simulated bus. Its register file is a
// [sim.RegisterTarget] of 64 bytes; Tick advances the clock registers by
// one second unless the clock-halt bit is set.
type Model struct {
	*sim.RegisterTarget
	mutex sync.Mutex // orders Tick against bus writes
}

var _ sim.Target = (*Model)(nil)

// NewModel creates a halted chip, as after first power-up.
func NewModel() *Model {
	m := &Model{RegisterTarget: sim.NewRegisterTarget(Address, RegRAM+RAMSize)}
	m.Load(RegSeconds, []byte{bitClockHalt, 0x00, 0x00, 0x01, 0x01, 0x01, 0x00})
	return m
}

// Write implements sim.Target.
func (m *Model) Write(b byte) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.RegisterTarget.Write(b)
}

// Tick advances the clock by one second.
func (m *Model) Tick() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	regs := m.Registers()
	dt, halted, err := decode(regs[:timeRegisters])
	if halted || err != nil {
		return
	}
	format, _ := dt.TimeFormat()

	t, err := dt.ToTime()
	if err != nil {
		return
	}
	next, err := datetime.FromTime(t.Add(time.Second))
	if err != nil {
		return
	}
	if err := next.SetTimeFormat(format); err != nil {
		return
	}
	out, err := encode(next, false)
	if err != nil {
		// Past 2099 the year register wraps to 2000.
		_ = next.SetDate(baseYear, datetime.January, 1)
		if out, err = encode(next, false); err != nil {
			return
		}
	}
	m.Load(RegSeconds, out)
}

// Run calls Tick every period until done is closed.
func (m *Model) Run(period time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.Tick()
		}
	}
}
