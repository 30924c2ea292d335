package twi

import (
	"log/slog"
	"sync/atomic"

	"github.com/ardnew/softtwi/pkg"
	"github.com/ardnew/softtwi/twi/hal"
)

// ClockSource reports the CPU clock used to derive the bus bit rate.
type ClockSource interface {
	CPUClock() uint32
}

// TickSource is a free-running counter advanced by a timer interrupt.
type TickSource interface {
	Ticks() uint32
}

// Master is an interrupt-driven TWI (I2C) master.
//
// Register operations look synchronous: SendData queues a frame in the
// transaction buffer, arms the hardware and polls until the interrupt
// handler has driven the frame to completion, a fault, or the timeout.
//
// A Master owns its peripheral; only one Master may be attached to a given
// register file, and its foreground methods must not be called
// concurrently. Use [Bus] when several goroutines share the bus.
type Master struct {
	regs  hal.Registers
	clock ClockSource
	ticks TickSource
	alloc func(n int) []byte

	// Written by the foreground only while the engine is idle.
	buffer       []byte
	bufferLength int

	// Written by the interrupt handler only.
	index         int
	transactionOk atomic.Bool
	state         atomic.Uint32
	busStatus     atomic.Uint32

	initialized    bool
	deviceSet      bool
	deviceAddress  uint16
	useLongAddress bool
	timeout        uint16
	clockSpeed     uint32
	prescalerBits  uint8
	bitRate        uint8
	lastError      error
}

// New creates an unconfigured master on the given registers and installs
// its interrupt handler. Call Init before transferring data.
func New(regs hal.Registers, clock ClockSource, ticks TickSource) *Master {
	m := &Master{
		regs:    regs,
		clock:   clock,
		ticks:   ticks,
		alloc:   func(n int) []byte { return make([]byte, n) },
		timeout: DefaultTimeout,
	}
	m.state.Store(uint32(hal.StatusNoState))
	regs.SetInterruptHandler(m.HandleInterrupt)
	return m
}

// BusType reports that the master drives a TWI bus.
func (m *Master) BusType() pkg.BusType {
	return pkg.BusTWI
}

// Init resets the peripheral, allocates a transaction buffer of
// bufferSize+HeaderSize bytes and programs the bit rate for clockSpeed Hz.
//
// The interface is disabled and its registers cleared before the arguments
// are validated, so a failed Init leaves the bus disabled. Init may be
// called again to reconfigure, including after a timeout left the engine
// running; the previous buffer is released.
func (m *Master) Init(clockSpeed uint32, bufferSize int) error {
	// Stop the engine before the buffer is touched.
	m.regs.SetTWCR(m.regs.TWCR() &^ hal.TWEN)
	m.regs.SetTWCR(0)
	m.regs.SetTWSR(0)
	m.regs.SetTWBR(0)
	m.regs.SetTWAR(0)
	m.regs.SetTWAMR(0)
	m.initialized = false

	switch {
	case clockSpeed < MinClockSpeed:
		return m.fail(pkg.ErrClockSpeedTooLow)
	case clockSpeed > MaxClockSpeed:
		return m.fail(pkg.ErrClockSpeedTooHigh)
	case bufferSize < MinBufferSize:
		return m.fail(pkg.ErrBufferSizeTooSmall)
	case bufferSize > MaxBufferSize:
		return m.fail(pkg.ErrBufferSizeTooLarge)
	}

	m.buffer = nil
	buf := m.alloc(bufferSize + HeaderSize)
	if len(buf) != bufferSize+HeaderSize {
		return m.fail(pkg.ErrMemoryAllocation)
	}
	m.buffer = buf
	m.bufferLength = 0
	m.index = 0

	cpuHz := m.clock.CPUClock()
	bits, twbr := BitRate(cpuHz, clockSpeed)
	m.regs.SetTWSR(bits & hal.PrescalerMask)
	m.regs.SetTWBR(twbr)
	m.regs.SetTWDR(0xFF) // release SDA
	m.regs.SetTWCR(hal.TWEN)

	m.clockSpeed = clockSpeed
	m.prescalerBits = bits
	m.bitRate = twbr
	m.initialized = true

	pkg.LogInfo(pkg.ComponentTWI, "bus initialized",
		"speed_hz", clockSpeed,
		"scl_hz", SCLFrequency(cpuHz, bits, twbr),
		"prescaler", prescalerTiers[bits],
		"twbr", twbr,
		"buffer", bufferSize)

	return m.succeed()
}

// Close disables the interface, detaches the interrupt handler and
// releases the transaction buffer.
func (m *Master) Close() error {
	m.regs.SetTWCR(0)
	m.regs.SetInterruptHandler(nil)
	m.buffer = nil
	m.bufferLength = 0
	m.initialized = false
	return nil
}

// SetDevice selects the slave addressed by subsequent register operations.
// No bus activity occurs until a transfer starts.
func (m *Master) SetDevice(address uint16, useLongAddress bool) error {
	m.deviceAddress = address
	m.useLongAddress = useLongAddress
	m.deviceSet = true
	return m.succeed()
}

// SetTimeout sets the number of ticks to wait for the bus to go idle.
// Zero waits forever.
func (m *Master) SetTimeout(ticks uint16) error {
	m.timeout = ticks
	return m.succeed()
}

// ReadReg reads count bytes starting at register reg of the selected
// device into buf. buf is only written when the whole transaction succeeds.
func (m *Master) ReadReg(reg uint8, buf []byte, count int) error {
	addr, err := m.selectedAddress()
	if err != nil {
		return err
	}
	return m.SendData(addr, Read, reg, buf, count)
}

// WriteReg writes count bytes from buf starting at register reg of the
// selected device.
func (m *Master) WriteReg(reg uint8, buf []byte, count int) error {
	addr, err := m.selectedAddress()
	if err != nil {
		return err
	}
	return m.SendData(addr, Write, reg, buf, count)
}

func (m *Master) selectedAddress() (uint8, error) {
	if !m.deviceSet {
		return 0, m.fail(pkg.ErrNoDeviceSelected)
	}
	if m.useLongAddress {
		return 0, m.fail(pkg.ErrFeatureNotSupported)
	}
	if m.deviceAddress > MaxShortAddress {
		return 0, m.fail(pkg.ErrArgumentValueInvalid)
	}
	return uint8(m.deviceAddress), nil
}

// SendData performs one register transaction with the slave at addr.
//
// A write sends the single frame [SLA+W, reg, payload...]. A read first
// sends [SLA+W, reg] to set the register pointer, then [SLA+R] and receives
// length bytes, which are copied into payload once the read phase completes
// cleanly. Each phase waits for the interrupt engine to go idle.
func (m *Master) SendData(addr uint8, dir Direction, reg uint8, payload []byte, length int) error {
	if !m.initialized {
		return m.fail(pkg.ErrNotInitialized)
	}
	if length > 0 && payload == nil {
		return m.fail(pkg.ErrArgumentPointerNull)
	}
	if length < 0 || addr > MaxShortAddress {
		return m.fail(pkg.ErrArgumentValueInvalid)
	}
	if length > len(payload) {
		return m.fail(pkg.ErrBufferTooSmall)
	}

	switch dir {
	case Write:
		if length+HeaderSize > len(m.buffer) {
			return m.fail(pkg.ErrBufferSizeTooLarge)
		}
	case Read:
		if length+1 > len(m.buffer) {
			return m.fail(pkg.ErrBufferSizeTooLarge)
		}
	default:
		return m.fail(pkg.ErrArgumentValueInvalid)
	}

	if err := m.waitWhileBusy(); err != nil {
		return m.fail(err)
	}

	if dir == Write {
		m.buffer[0] = addr<<1 | hal.DirWrite
		m.buffer[1] = reg
		copy(m.buffer[HeaderSize:], payload[:length])
		if err := m.transact(length + HeaderSize); err != nil {
			return m.fail(err)
		}
		return m.succeed()
	}

	// Register pointer phase.
	m.buffer[0] = addr<<1 | hal.DirWrite
	m.buffer[1] = reg
	if err := m.transact(HeaderSize); err != nil {
		return m.fail(err)
	}

	// Data phase. Received bytes land after the address byte.
	m.buffer[0] = addr<<1 | hal.DirRead
	if err := m.transact(length + 1); err != nil {
		return m.fail(err)
	}
	copy(payload[:length], m.buffer[1:length+1])

	return m.succeed()
}

// transact arms the engine for a frame of n buffered bytes and waits for
// it to finish. The engine must be idle.
func (m *Master) transact(n int) error {
	m.bufferLength = n
	m.startTransmission()
	if err := m.waitWhileBusy(); err != nil {
		pkg.LogDebug(pkg.ComponentTWI, "transaction timed out",
			"address", m.buffer[0]>>1,
			"state", m.State().String())
		return err
	}
	if !m.transactionOk.Load() {
		pkg.LogDebug(pkg.ComponentTWI, "transaction failed",
			"address", m.buffer[0]>>1,
			"status", m.LastBusStatus().String())
		return pkg.ErrCommunicationFailed
	}
	return nil
}

// startTransmission requests a START condition with the interrupt enabled.
func (m *Master) startTransmission() {
	m.transactionOk.Store(false)
	m.state.Store(uint32(hal.StatusNoState))
	m.regs.SetTWCR(ctrlStart)
}

// HandleInterrupt advances the bus state machine by one byte event. It is
// installed as the TWI interrupt vector by New.
func (m *Master) HandleInterrupt() {
	raw := m.regs.TWSR()
	status := hal.StatusOf(raw)
	m.state.Store(uint32(status))

	step := Transition(status, m.index, m.bufferLength)
	if step.Store >= len(m.buffer) || step.Load >= len(m.buffer) {
		step = faultStep(m.index)
	}

	if step.Store != noIndex {
		m.buffer[step.Store] = m.regs.TWDR()
	}
	if step.Load != noIndex {
		m.regs.SetTWDR(m.buffer[step.Load])
	}
	m.index = step.Index

	switch step.Outcome {
	case OutcomeComplete:
		m.transactionOk.Store(true)
	case OutcomeFault:
		m.busStatus.Store(uint32(raw))
		if pkg.LogEnabled(slog.LevelDebug) {
			pkg.LogDebug(pkg.ComponentTWI, "bus fault", "status", status.String())
		}
	}

	m.regs.SetTWCR(step.Control)
}

// LastError returns the outcome of the most recent operation.
func (m *Master) LastError() error {
	return m.lastError
}

// LastBusStatus returns the raw status latched by the last bus fault.
func (m *Master) LastBusStatus() hal.Status {
	return hal.StatusOf(uint8(m.busStatus.Load()))
}

// State returns the status code seen by the most recent interrupt.
func (m *Master) State() hal.Status {
	return hal.Status(m.state.Load())
}

// Initialized reports whether Init has succeeded.
func (m *Master) Initialized() bool {
	return m.initialized
}

// Timeout returns the configured wait timeout in ticks.
func (m *Master) Timeout() uint16 {
	return m.timeout
}

// Capacity returns the size of the transaction buffer, header included.
func (m *Master) Capacity() int {
	return len(m.buffer)
}

// BufferSize returns the payload capacity requested at Init.
func (m *Master) BufferSize() int {
	if len(m.buffer) < HeaderSize {
		return 0
	}
	return len(m.buffer) - HeaderSize
}

// ClockSpeed returns the bus speed requested at Init.
func (m *Master) ClockSpeed() uint32 {
	return m.clockSpeed
}

// ClockSetting returns the prescaler bits and divisor programmed at Init.
func (m *Master) ClockSetting() (prescalerBits, twbr uint8) {
	return m.prescalerBits, m.bitRate
}

// Device returns the selected slave address and addressing mode.
func (m *Master) Device() (address uint16, useLongAddress, ok bool) {
	return m.deviceAddress, m.useLongAddress, m.deviceSet
}

func (m *Master) fail(err error) error {
	m.lastError = err
	return err
}

func (m *Master) succeed() error {
	m.lastError = nil
	return nil
}
