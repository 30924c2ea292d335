package ds1307

import (
	"fmt"

	"github.com/ardnew/softtwi/datetime"
	"github.com/ardnew/softtwi/pkg"
)

// Bus is the register bus the driver talks through. *twi.Master
// implements it.
type Bus interface {
	SetDevice(address uint16, useLongAddress bool) error
	ReadReg(reg uint8, buf []byte, count int) error
	WriteReg(reg uint8, buf []byte, count int) error
	BusType() pkg.BusType
}

// Device is a DS1307 on a TWI bus.
type Device struct {
	bus        Bus
	halted     bool
	squareWave SquareWave
	lastError  error
}

// New attaches a driver to bus, which must be a TWI bus.
func New(bus Bus) (*Device, error) {
	if bus == nil {
		return nil, pkg.ErrBusHandlerNil
	}
	if bus.BusType() != pkg.BusTWI {
		return nil, fmt.Errorf("ds1307 on %s bus: %w", bus.BusType(), pkg.ErrBusNotSupported)
	}
	return &Device{bus: bus}, nil
}

// LastError returns the outcome of the most recent operation.
func (d *Device) LastError() error {
	return d.lastError
}

// Halted reports the clock-halt state seen by the last register access.
func (d *Device) Halted() bool {
	return d.halted
}

// SquareWave returns the last square wave setting written.
func (d *Device) SquareWave() SquareWave {
	return d.squareWave
}

// Start clears the clock-halt bit so the oscillator runs.
func (d *Device) Start() error {
	return d.setCounting(true)
}

// Stop sets the clock-halt bit.
func (d *Device) Stop() error {
	return d.setCounting(false)
}

func (d *Device) setCounting(counting bool) error {
	var sec [1]byte
	if err := d.read(RegSeconds, sec[:]); err != nil {
		return d.fail(fmt.Errorf("read seconds: %w", err))
	}
	if counting {
		sec[0] &^= bitClockHalt
	} else {
		sec[0] |= bitClockHalt
	}
	if err := d.write(RegSeconds, sec[:]); err != nil {
		return d.fail(fmt.Errorf("write seconds: %w", err))
	}
	d.halted = !counting
	pkg.LogDebug(pkg.ComponentRTC, "clock counting", "running", counting)
	return d.succeed()
}

// DateTime reads the current date and time. The time keeps the hour format
// the chip is running in.
func (d *Device) DateTime() (datetime.DateTime, error) {
	regs := make([]byte, timeRegisters)
	if err := d.read(RegSeconds, regs); err != nil {
		return datetime.DateTime{}, d.fail(fmt.Errorf("read clock: %w", err))
	}
	dt, halted, err := decode(regs)
	d.halted = halted
	if err != nil {
		pkg.LogWarn(pkg.ComponentRTC, "clock registers hold an invalid value",
			"registers", fmt.Sprintf("% x", regs), "error", err)
		return datetime.DateTime{}, d.fail(err)
	}
	return dt, d.succeed()
}

// SetDateTime writes date and time. Both halves of dt must be set and its
// year must lie in 2000-2099. The clock-halt bit is preserved.
func (d *Device) SetDateTime(dt datetime.DateTime) error {
	var sec [1]byte
	if err := d.read(RegSeconds, sec[:]); err != nil {
		return d.fail(fmt.Errorf("read seconds: %w", err))
	}
	halted := sec[0]&bitClockHalt != 0

	regs, err := encode(dt, halted)
	if err != nil {
		return d.fail(err)
	}
	if err := d.write(RegSeconds, regs); err != nil {
		return d.fail(fmt.Errorf("write clock: %w", err))
	}
	d.halted = halted
	pkg.LogDebug(pkg.ComponentRTC, "clock set", "datetime", dt.String())
	return d.succeed()
}

// Date reads the calendar date.
func (d *Device) Date() (year uint16, month datetime.Month, day uint8, weekDay datetime.WeekDay, err error) {
	dt, err := d.DateTime()
	if err != nil {
		return 0, datetime.MonthUndefined, 0, datetime.WeekDayUndefined, err
	}
	return dt.Date()
}

// SetDate replaces the calendar date, keeping the time of day.
func (d *Device) SetDate(year uint16, month datetime.Month, day uint8) error {
	dt, err := d.DateTime()
	if err != nil {
		return err
	}
	if err := dt.SetDate(year, month, day); err != nil {
		return d.fail(err)
	}
	return d.SetDateTime(dt)
}

// Time reads the time of day in the requested format.
func (d *Device) Time(format datetime.TimeFormat) (hours, minutes, seconds uint8, ampm datetime.AmPm, err error) {
	dt, err := d.DateTime()
	if err != nil {
		return 0, 0, 0, datetime.AM, err
	}
	return dt.Time(format)
}

// SetTime replaces the time of day, keeping the date. The chip switches to
// the given hour format.
func (d *Device) SetTime(hours, minutes, seconds uint8, format datetime.TimeFormat, ampm datetime.AmPm) error {
	dt, err := d.DateTime()
	if err != nil {
		return err
	}
	if err := dt.SetTime(hours, minutes, seconds, format, ampm); err != nil {
		return d.fail(err)
	}
	return d.SetDateTime(dt)
}

// SetSquareWave programs the SQW/OUT pin.
func (d *Device) SetSquareWave(sw SquareWave) error {
	ctrl, ok := sw.control()
	if !ok {
		return d.fail(pkg.ErrArgumentValueInvalid)
	}
	if err := d.write(RegControl, []byte{ctrl}); err != nil {
		return d.fail(fmt.Errorf("write control: %w", err))
	}
	d.squareWave = sw
	return d.succeed()
}

// ReadRAM reads len(buf) bytes of user RAM starting at pos.
func (d *Device) ReadRAM(pos uint8, buf []byte) error {
	if err := checkRAM(pos, buf); err != nil {
		return d.fail(err)
	}
	if err := d.read(RegRAM+pos, buf); err != nil {
		return d.fail(fmt.Errorf("read ram at %d: %w", pos, err))
	}
	return d.succeed()
}

// WriteRAM writes buf to user RAM starting at pos.
func (d *Device) WriteRAM(pos uint8, buf []byte) error {
	if err := checkRAM(pos, buf); err != nil {
		return d.fail(err)
	}
	if err := d.write(RegRAM+pos, buf); err != nil {
		return d.fail(fmt.Errorf("write ram at %d: %w", pos, err))
	}
	return d.succeed()
}

func checkRAM(pos uint8, buf []byte) error {
	switch {
	case buf == nil:
		return pkg.ErrArgumentPointerNull
	case len(buf) == 0:
		return pkg.ErrArgumentCannotBeZero
	case len(buf) > RAMSize:
		return pkg.ErrBufferSizeTooLarge
	case pos > RAMSize-1:
		return pkg.ErrArgumentValueInvalid
	case int(pos)+len(buf) > RAMSize:
		return pkg.ErrBufferSizeTooLarge
	}
	return nil
}

func (d *Device) read(reg uint8, buf []byte) error {
	if err := d.bus.SetDevice(Address, false); err != nil {
		return err
	}
	return d.bus.ReadReg(reg, buf, len(buf))
}

func (d *Device) write(reg uint8, buf []byte) error {
	if err := d.bus.SetDevice(Address, false); err != nil {
		return err
	}
	return d.bus.WriteReg(reg, buf, len(buf))
}

func (d *Device) fail(err error) error {
	d.lastError = err
	return err
}

func (d *Device) succeed() error {
	d.lastError = nil
	return nil
}
