package twi

import (
	"runtime"

	"github.com/ardnew/softtwi/pkg"
	"github.com/ardnew/softtwi/twi/hal"
)

// busy reports whether the interrupt engine is armed.
func (m *Master) busy() bool {
	return m.regs.TWCR()&hal.TWIE != 0
}

// waitWhileBusy polls until the interrupt engine disarms, which happens on
// both a clean STOP and the fault reset. It fails with
// [pkg.ErrCommunicationTimeout] once more than the configured number of
// ticks have elapsed; a zero timeout waits forever.
func (m *Master) waitWhileBusy() error {
	timeout := uint32(m.timeout)
	start := m.ticks.Ticks()

	for {
		if !m.busy() {
			return nil
		}
		if timeout != 0 && m.ticks.Ticks()-start > timeout {
			return pkg.ErrCommunicationTimeout
		}
		runtime.Gosched()
	}
}
