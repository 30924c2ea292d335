package sim

import (
	"sync"

	"github.com/ardnew/softtwi/pkg"
	"github.com/ardnew/softtwi/twi/hal"
)

var _ hal.Registers = (*Peripheral)(nil)

// Target is a slave device attached to the simulated bus.
type Target interface {
	// Address returns the 7-bit slave address.
	Address() uint8
	// Start is called when the target is addressed; read reports SLA+R.
	// Returning false NACKs the address.
	Start(read bool) bool
	// Write delivers a data byte from the master. Returning false NACKs it.
	Write(b byte) bool
	// Read returns the next byte for the master; ack reports whether the
	// master will acknowledge it.
	Read(ack bool) byte
	// Stop is called on a STOP condition while the target is addressed.
	Stop()
}

// Peripheral simulates the ATmega TWI block in master mode.
//
// Register writes are applied immediately. A TWCR write with TWINT set
// queues the requested bus action, which a background goroutine performs
// before updating TWSR, raising TWINT and invoking the interrupt handler
// when TWIE is set. The handler therefore runs on that goroutine, just as
// an ISR runs outside the foreground on hardware.
//
// A TWCR write that clears TWEN returns only after a handler already in
// progress has returned, so foreground code that disables the interface
// never overlaps the ISR. The handler itself must not clear TWEN.
type Peripheral struct {
	mutex sync.Mutex

	twcr, twsr, twdr, twbr uint8
	twar, twamr            uint8
	handler                func()
	pending                bool

	// dispatching is set while the handler runs outside the mutex. halting
	// counts disable writes waiting for it to clear; no action is performed
	// while one waits.
	dispatching bool
	halting     int
	idle        *sync.Cond

	targets       map[uint8]Target
	active        Target
	owned         bool // START issued and no STOP yet
	expectAddress bool
	reading       bool

	arbLoss  int // injected arbitration losses; negative is unbounded
	busError bool

	recorder *Recorder

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a simulated peripheral and starts its bus goroutine.
func New() *Peripheral {
	p := &Peripheral{
		twsr:     uint8(hal.StatusNoState),
		twdr:     0xFF,
		targets:  make(map[uint8]Target),
		recorder: NewRecorder(),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	p.idle = sync.NewCond(&p.mutex)
	p.wg.Add(1)
	go p.run()
	return p
}

// Close stops the bus goroutine. Pending actions are discarded.
func (p *Peripheral) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
	return nil
}

// Attach connects a target to the bus, replacing any target at its address.
func (p *Peripheral) Attach(t Target) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.targets[t.Address()&0x7F] = t
	pkg.LogDebug(pkg.ComponentHAL, "target attached", "address", t.Address()&0x7F)
}

// Detach removes the target at addr.
func (p *Peripheral) Detach(addr uint8) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	delete(p.targets, addr&0x7F)
	pkg.LogDebug(pkg.ComponentHAL, "target detached", "address", addr&0x7F)
}

// Recorder returns the bus event recorder.
func (p *Peripheral) Recorder() *Recorder {
	return p.recorder
}

// LoseArbitration makes the next n address phases lose arbitration.
// A negative n loses arbitration on every address phase.
func (p *Peripheral) LoseArbitration(n int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.arbLoss = n
}

// InjectBusError makes the next bus action report BUS_ERROR.
func (p *Peripheral) InjectBusError() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.busError = true
}

// TWCR implements hal.Registers.
func (p *Peripheral) TWCR() uint8 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.twcr
}

// SetTWCR implements hal.Registers.
func (p *Peripheral) SetTWCR(v uint8) {
	p.mutex.Lock()

	if v&hal.TWEN == 0 {
		// Disabling the interface aborts any transfer and releases the bus.
		p.halting++
		for p.dispatching {
			p.idle.Wait()
		}
		p.halting--
		aborted := p.pending
		p.twcr = v &^ hal.TWINT
		p.pending = false
		p.owned = false
		p.active = nil
		p.expectAddress = false
		p.mutex.Unlock()
		if aborted {
			pkg.LogDebug(pkg.ComponentHAL, "interface disabled with action pending")
		}
		return
	}

	if v&hal.TWINT == 0 {
		// The flag is cleared only by writing one to it.
		p.twcr = v | p.twcr&hal.TWINT
		p.mutex.Unlock()
		return
	}

	if p.pending && p.twcr&hal.TWSTO != 0 {
		// A queued STOP completes before the next request is accepted.
		p.pending = false
		p.stop()
	}

	p.twcr = v &^ hal.TWINT
	p.pending = true
	p.mutex.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// TWSR implements hal.Registers.
func (p *Peripheral) TWSR() uint8 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.twsr
}

// SetTWSR implements hal.Registers. Only the prescaler bits are writable.
func (p *Peripheral) SetTWSR(v uint8) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.twsr = p.twsr&hal.StatusMask | v&hal.PrescalerMask
}

// TWDR implements hal.Registers.
func (p *Peripheral) TWDR() uint8 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.twdr
}

// SetTWDR implements hal.Registers. Writing while the bus is busy sets TWWC.
func (p *Peripheral) SetTWDR(v uint8) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.pending {
		p.twcr |= hal.TWWC
		return
	}
	p.twdr = v
}

// TWBR implements hal.Registers.
func (p *Peripheral) TWBR() uint8 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.twbr
}

// SetTWBR implements hal.Registers.
func (p *Peripheral) SetTWBR(v uint8) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.twbr = v
}

// SetTWAR implements hal.Registers.
func (p *Peripheral) SetTWAR(v uint8) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.twar = v
}

// SetTWAMR implements hal.Registers.
func (p *Peripheral) SetTWAMR(v uint8) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.twamr = v
}

// SetInterruptHandler implements hal.Registers.
func (p *Peripheral) SetInterruptHandler(handler func()) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.handler = handler
}

func (p *Peripheral) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case <-p.wake:
		}
		for p.step() {
			select {
			case <-p.done:
				return
			default:
			}
		}
	}
}

// step performs one pending bus action and, if the action raised the
// interrupt, calls the handler. It reports whether an action ran.
func (p *Peripheral) step() bool {
	p.mutex.Lock()
	if !p.pending || p.halting > 0 {
		p.mutex.Unlock()
		return false
	}
	p.pending = false

	status, raise := p.perform()
	if raise {
		p.twsr = uint8(status) | p.twsr&hal.PrescalerMask
		p.twcr |= hal.TWINT
	}
	handler := p.handler
	fire := raise && p.twcr&hal.TWIE != 0 && handler != nil
	p.dispatching = fire
	p.mutex.Unlock()

	if fire {
		handler()
		p.mutex.Lock()
		p.dispatching = false
		p.idle.Broadcast()
		p.mutex.Unlock()
	}
	return true
}

// perform executes the action requested by TWCR. It returns the resulting
// status and whether TWINT is raised. Called with the mutex held.
func (p *Peripheral) perform() (hal.Status, bool) {
	if p.busError {
		p.busError = false
		p.owned = false
		p.active = nil
		pkg.LogDebug(pkg.ComponentSim, "bus error injected")
		return hal.StatusBusError, true
	}

	switch {
	case p.twcr&hal.TWSTA != 0:
		p.recorder.add(Event{Type: EventStart})
		status := hal.StatusStart
		if p.owned {
			status = hal.StatusRepStart
		}
		p.owned = true
		p.active = nil
		p.expectAddress = true
		return status, true

	case p.twcr&hal.TWSTO != 0:
		p.stop()
		return hal.StatusNoState, false

	case !p.owned:
		return hal.StatusBusError, true

	case p.expectAddress:
		return p.address(), true

	case !p.reading:
		b := p.twdr
		ack := p.active != nil && p.active.Write(b)
		p.recorder.add(Event{Type: EventWrite, Byte: b, Ack: ack})
		if ack {
			return hal.StatusMTxDataAck, true
		}
		return hal.StatusMTxDataNack, true

	default:
		ack := p.twcr&hal.TWEA != 0
		var b byte = 0xFF
		if p.active != nil {
			b = p.active.Read(ack)
		}
		p.twdr = b
		p.recorder.add(Event{Type: EventRead, Byte: b, Ack: ack})
		if ack {
			return hal.StatusMRxDataAck, true
		}
		return hal.StatusMRxDataNack, true
	}
}

// stop releases the bus. Called with the mutex held.
func (p *Peripheral) stop() {
	p.recorder.add(Event{Type: EventStop})
	if p.active != nil {
		p.active.Stop()
	}
	p.active = nil
	p.owned = false
	p.twcr &^= hal.TWSTO
	p.twsr = uint8(hal.StatusNoState) | p.twsr&hal.PrescalerMask
}

// address transmits SLA+R/W from TWDR. Called with the mutex held.
func (p *Peripheral) address() hal.Status {
	sla := p.twdr
	read := sla&hal.DirRead != 0
	p.expectAddress = false

	if p.arbLoss != 0 {
		if p.arbLoss > 0 {
			p.arbLoss--
		}
		p.owned = false
		p.recorder.add(Event{Type: EventArbLost, Byte: sla})
		return hal.StatusArbLost
	}

	t, ok := p.targets[sla>>1]
	ack := ok && t.Start(read)
	p.recorder.add(Event{Type: EventWrite, Byte: sla, Ack: ack})

	if !ack {
		if read {
			return hal.StatusMRxAdrNack
		}
		return hal.StatusMTxAdrNack
	}

	p.active = t
	p.reading = read
	if read {
		return hal.StatusMRxAdrAck
	}
	return hal.StatusMTxAdrAck
}
