package ds1307

import (
	"fmt"
	"strings"

	"github.com/ardnew/softtwi/datetime"
	"github.com/ardnew/softtwi/pkg"
)

// Address is the fixed 7-bit bus address of the DS1307.
const Address = 0x68

// Register map.
const (
	RegSeconds = 0x00
	RegMinutes = 0x01
	RegHours   = 0x02
	RegDay     = 0x03
	RegDate    = 0x04
	RegMonth   = 0x05
	RegYear    = 0x06
	RegControl = 0x07
	RegRAM     = 0x08
)

// RAMSize is the number of user RAM bytes.
const RAMSize = 56

// Register bits.
const (
	bitClockHalt = 1 << 7 // Seconds: oscillator stopped
	bit12Hour    = 1 << 6 // Hours: 12-hour mode
	bitPM        = 1 << 5 // Hours: PM in 12-hour mode
	bitOut       = 1 << 7 // Control: output level when square wave is off
	bitSQWE      = 1 << 4 // Control: square wave enable
	maskRS       = 0x03   // Control: rate select
)

// baseYear is the century the two-digit year register counts from.
const baseYear = 2000

// timeRegisters is the span of the clock registers.
const timeRegisters = RegYear - RegSeconds + 1

// SquareWave selects the SQW/OUT pin function.
type SquareWave uint8

// Square wave settings.
const (
	SquareWaveOffLow SquareWave = iota
	SquareWaveOffHigh
	SquareWave1Hz
	SquareWave4kHz
	SquareWave8kHz
	SquareWave32kHz
)

var squareWaveNames = [...]string{
	SquareWaveOffLow:  "off",
	SquareWaveOffHigh: "off-high",
	SquareWave1Hz:     "1hz",
	SquareWave4kHz:    "4khz",
	SquareWave8kHz:    "8khz",
	SquareWave32kHz:   "32khz",
}

// String returns the configuration name of the setting.
func (s SquareWave) String() string {
	if int(s) < len(squareWaveNames) {
		return squareWaveNames[s]
	}
	return fmt.Sprintf("SquareWave(%d)", uint8(s))
}

// ParseSquareWave converts a configuration name to a setting.
func ParseSquareWave(name string) (SquareWave, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range squareWaveNames {
		if n == name {
			return SquareWave(i), nil
		}
	}
	return 0, fmt.Errorf("square wave %q: %w", name, pkg.ErrArgumentValueInvalid)
}

// control returns the control register value for the setting.
func (s SquareWave) control() (uint8, bool) {
	switch s {
	case SquareWaveOffLow:
		return 0, true
	case SquareWaveOffHigh:
		return bitOut, true
	case SquareWave1Hz, SquareWave4kHz, SquareWave8kHz, SquareWave32kHz:
		return bitSQWE | uint8(s-SquareWave1Hz)&maskRS, true
	default:
		return 0, false
	}
}

func toBCD(v uint8) uint8 {
	return (v/10)<<4 | v%10
}

func fromBCD(b uint8) uint8 {
	return (b>>4)*10 + b&0x0F
}

// decode converts the clock registers to a DateTime. It also reports the
// clock-halt bit.
func decode(regs []byte) (dt datetime.DateTime, halted bool, err error) {
	halted = regs[RegSeconds]&bitClockHalt != 0
	seconds := fromBCD(regs[RegSeconds] &^ bitClockHalt)
	minutes := fromBCD(regs[RegMinutes] & 0x7F)

	var (
		hours  uint8
		format = datetime.Format24Hours
		ampm   = datetime.AM
	)
	h := regs[RegHours]
	if h&bit12Hour != 0 {
		format = datetime.Format12Hours
		hours = fromBCD(h & 0x1F)
		if h&bitPM != 0 {
			ampm = datetime.PM
		}
	} else {
		hours = fromBCD(h & 0x3F)
	}

	day := fromBCD(regs[RegDate] & 0x3F)
	month := datetime.Month(fromBCD(regs[RegMonth] & 0x1F))
	year := baseYear + uint16(fromBCD(regs[RegYear]))

	if err = dt.SetDate(year, month, day); err != nil {
		return dt, halted, err
	}
	if err = dt.SetTime(hours, minutes, seconds, format, ampm); err != nil {
		return dt, halted, err
	}
	return dt, halted, nil
}

// encode converts a DateTime to clock register values, keeping its hour
// format and setting the clock-halt bit as requested.
func encode(dt datetime.DateTime, halted bool) ([]byte, error) {
	year, month, day, weekDay, err := dt.Date()
	if err != nil {
		return nil, err
	}
	format, err := dt.TimeFormat()
	if err != nil {
		return nil, err
	}
	hours, minutes, seconds, ampm, err := dt.Time(format)
	if err != nil {
		return nil, err
	}
	if year < baseYear || year > baseYear+99 {
		return nil, pkg.ErrArgumentValueInvalid
	}

	regs := make([]byte, timeRegisters)
	regs[RegSeconds] = toBCD(seconds)
	if halted {
		regs[RegSeconds] |= bitClockHalt
	}
	regs[RegMinutes] = toBCD(minutes)
	regs[RegHours] = toBCD(hours)
	if format == datetime.Format12Hours {
		regs[RegHours] |= bit12Hour
		if ampm == datetime.PM {
			regs[RegHours] |= bitPM
		}
	}
	regs[RegDay] = uint8(weekDay)
	regs[RegDate] = toBCD(day)
	regs[RegMonth] = toBCD(uint8(month))
	regs[RegYear] = toBCD(uint8(year - baseYear))
	return regs, nil
}
