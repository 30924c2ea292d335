package clock

import (
	"fmt"
	"sync"

	"github.com/ardnew/softtwi/pkg"
)

// DefaultSourceHz is the oscillator frequency assumed when none is given.
const DefaultSourceHz = 16_000_000

// Prescaler divides the oscillator clock to produce the CPU clock.
type Prescaler uint16

// Supported CPU clock prescalers.
const (
	Prescaler1   Prescaler = 1
	Prescaler2   Prescaler = 2
	Prescaler4   Prescaler = 4
	Prescaler8   Prescaler = 8
	Prescaler16  Prescaler = 16
	Prescaler32  Prescaler = 32
	Prescaler64  Prescaler = 64
	Prescaler128 Prescaler = 128
	Prescaler256 Prescaler = 256
)

// Bits returns the CLKPS field value for the prescaler, or false if the
// prescaler is not supported by the hardware.
func (p Prescaler) Bits() (uint8, bool) {
	switch p {
	case Prescaler1:
		return 0, true
	case Prescaler2:
		return 1, true
	case Prescaler4:
		return 2, true
	case Prescaler8:
		return 3, true
	case Prescaler16:
		return 4, true
	case Prescaler32:
		return 5, true
	case Prescaler64:
		return 6, true
	case Prescaler128:
		return 7, true
	case Prescaler256:
		return 8, true
	default:
		return 0, false
	}
}

// String returns a human-readable prescaler.
func (p Prescaler) String() string {
	return fmt.Sprintf("1/%d", uint16(p))
}

// CLKPR bits.
const (
	clkpce  = 1 << 7 // Clock prescaler change enable
	clkpsMk = 0x0F
)

// PrescalerRegister is the clock prescale register (CLKPR) of the target.
// Writes must follow the timed sequence: change-enable first, new value next.
type PrescalerRegister interface {
	ReadCLKPR() uint8
	WriteCLKPR(v uint8)
}

// System reports the CPU clock and controls the system clock prescaler.
type System struct {
	mutex     sync.RWMutex
	sourceHz  uint32
	cpuHz     uint32
	prescaler Prescaler
	reg       PrescalerRegister
}

// NewSystem creates a system clock with the given oscillator frequency and
// prescaler 1. A zero frequency selects [DefaultSourceHz].
func NewSystem(sourceHz uint32) *System {
	if sourceHz == 0 {
		sourceHz = DefaultSourceHz
	}
	return &System{
		sourceHz:  sourceHz,
		cpuHz:     sourceHz,
		prescaler: Prescaler1,
	}
}

// AttachRegister connects the prescale register written by SetPrescaler.
// Without a register, SetPrescaler only updates the reported CPU clock.
func (s *System) AttachRegister(reg PrescalerRegister) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.reg = reg
}

// CPUClock returns the current CPU clock frequency in Hz.
func (s *System) CPUClock() uint32 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.cpuHz
}

// SourceClock returns the oscillator frequency in Hz.
func (s *System) SourceClock() uint32 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.sourceHz
}

// Prescaler returns the active prescaler.
func (s *System) Prescaler() Prescaler {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.prescaler
}

// SetPrescaler changes the system clock prescaler.
// Returns [pkg.ErrClockPrescalerNotSupported] for unsupported values and
// [pkg.ErrClockPrescalerChangeFailed] if the register does not read back
// the requested setting.
func (s *System) SetPrescaler(p Prescaler) error {
	bits, ok := p.Bits()
	if !ok {
		return pkg.ErrClockPrescalerNotSupported
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.reg != nil {
		s.reg.WriteCLKPR(clkpce)
		s.reg.WriteCLKPR(bits)
		if s.reg.ReadCLKPR()&clkpsMk != bits {
			pkg.LogWarn(pkg.ComponentClock, "prescaler change rejected",
				"prescaler", p.String())
			return pkg.ErrClockPrescalerChangeFailed
		}
	}

	s.prescaler = p
	s.cpuHz = s.sourceHz / uint32(p)

	pkg.LogDebug(pkg.ComponentClock, "prescaler changed",
		"prescaler", p.String(),
		"cpu_hz", s.cpuHz)

	return nil
}
