package twi

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/ardnew/softtwi/pkg"
)

var _ i2c.BusCloser = (*Bus)(nil)

// Bus exposes a Master as a periph.io i2c.Bus so drivers written against
// periph can run on the TWI peripheral.
//
// The register transaction model constrains Tx: w must start with the
// register address. A transfer with only w writes w[1:] to that register;
// a transfer with a one-byte w and a non-empty r reads len(r) bytes from it.
//
// Bus serializes access to the master, so it is safe for concurrent use.
type Bus struct {
	mutex sync.Mutex
	m     *Master
}

// NewBus wraps an initialized master.
func NewBus(m *Master) *Bus {
	return &Bus{m: m}
}

// String implements conn.Resource.
func (b *Bus) String() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return fmt.Sprintf("twi(%dHz)", b.m.ClockSpeed())
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if len(w) == 0 {
		return fmt.Errorf("twi: tx to %#02x: %w", addr, pkg.ErrArgumentCannotBeZero)
	}
	if len(w) > 1 && len(r) > 0 {
		return fmt.Errorf("twi: tx to %#02x: write-then-read with payload: %w", addr, pkg.ErrFeatureNotSupported)
	}

	if err := b.m.SetDevice(addr, false); err != nil {
		return err
	}

	reg := w[0]
	if len(r) > 0 {
		if err := b.m.ReadReg(reg, r, len(r)); err != nil {
			return fmt.Errorf("twi: read %#02x reg %#02x: %w", addr, reg, err)
		}
		return nil
	}

	if err := b.m.WriteReg(reg, w[1:], len(w)-1); err != nil {
		return fmt.Errorf("twi: write %#02x reg %#02x: %w", addr, reg, err)
	}
	return nil
}

// SetSpeed implements i2c.Bus by re-initializing the master at the new
// speed, keeping its buffer size.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	size := b.m.BufferSize()
	if size == 0 {
		size = DefaultBufferSize
	}
	hz := f / physic.Hertz
	if hz < 0 || hz > physic.Frequency(^uint32(0)) {
		return fmt.Errorf("twi: speed %s: %w", f, pkg.ErrArgumentValueInvalid)
	}
	return b.m.Init(uint32(hz), size)
}

// Close implements io.Closer.
func (b *Bus) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.m.Close()
}
