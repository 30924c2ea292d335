package datetime

import (
	"fmt"
	"time"
)

// Month of the year. MonthUndefined marks an unset date.
type Month uint8

// Months.
const (
	MonthUndefined Month = iota
	January
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

// String returns the English name of the month.
func (m Month) String() string {
	if m >= January && m <= December {
		return time.Month(m).String()
	}
	return "Undefined"
}

// WeekDay numbers the days of the week starting at Sunday = 1.
type WeekDay uint8

// Week days.
const (
	WeekDayUndefined WeekDay = iota
	Sunday
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// String returns the English name of the day.
func (d WeekDay) String() string {
	if d >= Sunday && d <= Saturday {
		return time.Weekday(d - 1).String()
	}
	return "Undefined"
}

// TimeFormat selects 24-hour (0-23) or 12-hour (1-12 AM/PM) hours.
type TimeFormat uint8

// Time formats.
const (
	Format24Hours TimeFormat = iota
	Format12Hours
)

// String returns "24h" or "12h".
func (f TimeFormat) String() string {
	switch f {
	case Format24Hours:
		return "24h"
	case Format12Hours:
		return "12h"
	default:
		return fmt.Sprintf("TimeFormat(%d)", uint8(f))
	}
}

// AmPm is the half-day flag used with Format12Hours.
type AmPm uint8

// Half-day flags.
const (
	AM AmPm = iota
	PM
)

// String returns "AM" or "PM".
func (a AmPm) String() string {
	if a == PM {
		return "PM"
	}
	return "AM"
}

// TimeZone is a civil UTC offset in minutes east of Greenwich.
type TimeZone int16

// Civil UTC offsets.
const (
	UTCMinus1200 TimeZone = -12 * 60
	UTCMinus1100 TimeZone = -11 * 60
	UTCMinus1000 TimeZone = -10 * 60
	UTCMinus0930 TimeZone = -(9*60 + 30)
	UTCMinus0900 TimeZone = -9 * 60
	UTCMinus0800 TimeZone = -8 * 60
	UTCMinus0700 TimeZone = -7 * 60
	UTCMinus0600 TimeZone = -6 * 60
	UTCMinus0500 TimeZone = -5 * 60
	UTCMinus0400 TimeZone = -4 * 60
	UTCMinus0330 TimeZone = -(3*60 + 30)
	UTCMinus0300 TimeZone = -3 * 60
	UTCMinus0230 TimeZone = -(2*60 + 30)
	UTCMinus0200 TimeZone = -2 * 60
	UTCMinus0100 TimeZone = -1 * 60
	UTC          TimeZone = 0
	UTCPlus0100  TimeZone = 1 * 60
	UTCPlus0200  TimeZone = 2 * 60
	UTCPlus0300  TimeZone = 3 * 60
	UTCPlus0330  TimeZone = 3*60 + 30
	UTCPlus0400  TimeZone = 4 * 60
	UTCPlus0430  TimeZone = 4*60 + 30
	UTCPlus0500  TimeZone = 5 * 60
	UTCPlus0530  TimeZone = 5*60 + 30
	UTCPlus0545  TimeZone = 5*60 + 45
	UTCPlus0600  TimeZone = 6 * 60
	UTCPlus0630  TimeZone = 6*60 + 30
	UTCPlus0700  TimeZone = 7 * 60
	UTCPlus0800  TimeZone = 8 * 60
	UTCPlus0830  TimeZone = 8*60 + 30
	UTCPlus0845  TimeZone = 8*60 + 45
	UTCPlus0900  TimeZone = 9 * 60
	UTCPlus0930  TimeZone = 9*60 + 30
	UTCPlus1000  TimeZone = 10 * 60
	UTCPlus1030  TimeZone = 10*60 + 30
	UTCPlus1100  TimeZone = 11 * 60
	UTCPlus1200  TimeZone = 12 * 60
	UTCPlus1245  TimeZone = 12*60 + 45
	UTCPlus1300  TimeZone = 13 * 60
	UTCPlus1400  TimeZone = 14 * 60
)

var civilZones = map[TimeZone]struct{}{
	UTCMinus1200: {}, UTCMinus1100: {}, UTCMinus1000: {}, UTCMinus0930: {},
	UTCMinus0900: {}, UTCMinus0800: {}, UTCMinus0700: {}, UTCMinus0600: {},
	UTCMinus0500: {}, UTCMinus0400: {}, UTCMinus0330: {}, UTCMinus0300: {},
	UTCMinus0230: {}, UTCMinus0200: {}, UTCMinus0100: {}, UTC: {},
	UTCPlus0100: {}, UTCPlus0200: {}, UTCPlus0300: {}, UTCPlus0330: {},
	UTCPlus0400: {}, UTCPlus0430: {}, UTCPlus0500: {}, UTCPlus0530: {},
	UTCPlus0545: {}, UTCPlus0600: {}, UTCPlus0630: {}, UTCPlus0700: {},
	UTCPlus0800: {}, UTCPlus0830: {}, UTCPlus0845: {}, UTCPlus0900: {},
	UTCPlus0930: {}, UTCPlus1000: {}, UTCPlus1030: {}, UTCPlus1100: {},
	UTCPlus1200: {}, UTCPlus1245: {}, UTCPlus1300: {}, UTCPlus1400: {},
}

// Valid reports whether z is one of the civil offsets.
func (z TimeZone) Valid() bool {
	_, ok := civilZones[z]
	return ok
}

// Location returns a fixed time.Location for the offset.
func (z TimeZone) Location() *time.Location {
	if z == UTC {
		return time.UTC
	}
	return time.FixedZone(z.String(), int(z)*60)
}

// String formats the offset as "UTC+hh:mm".
func (z TimeZone) String() string {
	sign := '+'
	m := int(z)
	if m < 0 {
		sign, m = '-', -m
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, m/60, m%60)
}
