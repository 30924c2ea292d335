package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/ardnew/softtwi/pkg"
)

// DateTime is a date and a time of day that are set independently.
// The zero value has neither half set and sits in UTC.
type DateTime struct {
	dateSet  bool
	year     uint16
	month    Month
	day      uint8
	weekDay  WeekDay
	leapYear bool

	timeSet bool
	hours   uint8
	minutes uint8
	seconds uint8
	millis  uint16
	format  TimeFormat
	ampm    AmPm

	zone TimeZone
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year uint16) bool {
	return year%400 == 0 || (year%4 == 0 && year%100 != 0)
}

// DaysIn returns the number of days in month of year, or 0 for an invalid month.
func DaysIn(month Month, year uint16) uint8 {
	switch month {
	case January, March, May, July, August, October, December:
		return 31
	case April, June, September, November:
		return 30
	case February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// weekDayOf uses Sakamoto's method.
func weekDayOf(year uint16, month Month, day uint8) WeekDay {
	offsets := [12]int{0, 3, 2, 5, 0, 3, 5, 1, 4, 6, 2, 4}
	y := int(year)
	if month < March {
		y--
	}
	d := (y + y/4 - y/100 + y/400 + offsets[month-1] + int(day)) % 7
	return WeekDay(d + 1)
}

// SetDate sets the calendar date. An invalid date clears the date half.
func (dt *DateTime) SetDate(year uint16, month Month, day uint8) error {
	dt.dateSet = false
	if year == 0 || day == 0 || day > DaysIn(month, year) {
		pkg.LogDebug(pkg.ComponentDateTime, "invalid date",
			"year", year, "month", uint8(month), "day", day)
		return pkg.ErrDateInvalid
	}
	dt.year = year
	dt.month = month
	dt.day = day
	dt.leapYear = IsLeapYear(year)
	dt.weekDay = weekDayOf(year, month, day)
	dt.dateSet = true
	return nil
}

// Date returns the calendar date and its day of the week.
func (dt DateTime) Date() (year uint16, month Month, day uint8, weekDay WeekDay, err error) {
	if !dt.dateSet {
		return 0, MonthUndefined, 0, WeekDayUndefined, pkg.ErrDateNotInitialized
	}
	return dt.year, dt.month, dt.day, dt.weekDay, nil
}

// WeekDay returns the day of the week of the date.
func (dt DateTime) WeekDay() (WeekDay, error) {
	if !dt.dateSet {
		return WeekDayUndefined, pkg.ErrDateNotInitialized
	}
	return dt.weekDay, nil
}

// IsLeapYear reports whether the date falls in a leap year.
func (dt DateTime) IsLeapYear() (bool, error) {
	if !dt.dateSet {
		return false, pkg.ErrDateNotInitialized
	}
	return dt.leapYear, nil
}

// IsDateSet reports whether a valid date has been set.
func (dt DateTime) IsDateSet() bool { return dt.dateSet }

// IsTimeSet reports whether a valid time has been set.
func (dt DateTime) IsTimeSet() bool { return dt.timeSet }

func validTime(hours, minutes, seconds uint8, format TimeFormat) bool {
	if minutes > 59 || seconds > 59 {
		return false
	}
	switch format {
	case Format24Hours:
		return hours <= 23
	case Format12Hours:
		return hours >= 1 && hours <= 12
	default:
		return false
	}
}

// SetTime sets the time of day. ampm is used only with Format12Hours.
// An invalid time clears the time half; milliseconds restart at zero.
func (dt *DateTime) SetTime(hours, minutes, seconds uint8, format TimeFormat, ampm AmPm) error {
	return dt.SetTimeMillis(hours, minutes, seconds, 0, format, ampm)
}

// SetTimeMillis is SetTime with a millisecond field. Values above 999 are
// stored as zero.
func (dt *DateTime) SetTimeMillis(hours, minutes, seconds uint8, millis uint16, format TimeFormat, ampm AmPm) error {
	dt.timeSet = false
	if !validTime(hours, minutes, seconds, format) {
		pkg.LogDebug(pkg.ComponentDateTime, "invalid time",
			"hours", hours, "minutes", minutes, "seconds", seconds, "format", format.String())
		return pkg.ErrTimeInvalid
	}
	if millis > 999 {
		millis = 0
	}
	if format == Format24Hours {
		ampm = AM
		if hours >= 12 {
			ampm = PM
		}
	}
	dt.hours = hours
	dt.minutes = minutes
	dt.seconds = seconds
	dt.millis = millis
	dt.format = format
	dt.ampm = ampm
	dt.timeSet = true
	return nil
}

// convertHours translates an hour value between formats.
func convertHours(hours uint8, ampm AmPm, from, to TimeFormat) (uint8, AmPm) {
	switch {
	case from == Format12Hours && to == Format24Hours:
		switch {
		case ampm == AM && hours == 12:
			return 0, AM
		case ampm == PM && hours < 12:
			return hours + 12, PM
		}
		return hours, ampm
	case from == Format24Hours && to == Format12Hours:
		switch {
		case hours == 0:
			return 12, AM
		case hours < 12:
			return hours, AM
		case hours == 12:
			return 12, PM
		default:
			return hours - 12, PM
		}
	}
	return hours, ampm
}

// Time returns the time of day in the requested format. ampm is meaningful
// for Format12Hours and reports the half of day for Format24Hours.
func (dt DateTime) Time(format TimeFormat) (hours, minutes, seconds uint8, ampm AmPm, err error) {
	if !dt.timeSet {
		return 0, 0, 0, AM, pkg.ErrTimeNotInitialized
	}
	if format != Format24Hours && format != Format12Hours {
		return 0, 0, 0, AM, pkg.ErrArgumentValueInvalid
	}
	hours, ampm = convertHours(dt.hours, dt.ampm, dt.format, format)
	return hours, dt.minutes, dt.seconds, ampm, nil
}

// Milliseconds returns the millisecond field of the time.
func (dt DateTime) Milliseconds() uint16 { return dt.millis }

// TimeFormat returns the format the time was stored in.
func (dt DateTime) TimeFormat() (TimeFormat, error) {
	if !dt.timeSet {
		return Format24Hours, pkg.ErrTimeNotInitialized
	}
	return dt.format, nil
}

// SetTimeFormat converts the stored time to format.
func (dt *DateTime) SetTimeFormat(format TimeFormat) error {
	if !dt.timeSet {
		return pkg.ErrTimeNotInitialized
	}
	if format != Format24Hours && format != Format12Hours {
		return pkg.ErrArgumentValueInvalid
	}
	dt.hours, dt.ampm = convertHours(dt.hours, dt.ampm, dt.format, format)
	dt.format = format
	return nil
}

// SetTimeZone sets the UTC offset. Only civil offsets are accepted.
func (dt *DateTime) SetTimeZone(zone TimeZone) error {
	if !zone.Valid() {
		return pkg.ErrArgumentValueInvalid
	}
	dt.zone = zone
	return nil
}

// TimeZone returns the UTC offset.
func (dt DateTime) TimeZone() TimeZone { return dt.zone }

// FromTime builds a DateTime from t in 24-hour format. When t's offset is
// not a civil one, t is converted to UTC first.
func FromTime(t time.Time) (DateTime, error) {
	_, offset := t.Zone()
	zone := TimeZone(offset / 60)
	if offset%60 != 0 || !zone.Valid() {
		t, zone = t.UTC(), UTC
	}
	if t.Year() < 1 || t.Year() > 0xFFFF {
		return DateTime{}, pkg.ErrDateInvalid
	}

	var dt DateTime
	if err := dt.SetDate(uint16(t.Year()), Month(t.Month()), uint8(t.Day())); err != nil {
		return DateTime{}, err
	}
	millis := uint16(t.Nanosecond() / int(time.Millisecond))
	if err := dt.SetTimeMillis(uint8(t.Hour()), uint8(t.Minute()), uint8(t.Second()), millis, Format24Hours, AM); err != nil {
		return DateTime{}, err
	}
	dt.zone = zone
	return dt, nil
}

// ToTime returns the equivalent time.Time in the DateTime's zone.
func (dt DateTime) ToTime() (time.Time, error) {
	if !dt.dateSet {
		return time.Time{}, pkg.ErrDateNotInitialized
	}
	if !dt.timeSet {
		return time.Time{}, pkg.ErrTimeNotInitialized
	}
	hours, _ := convertHours(dt.hours, dt.ampm, dt.format, Format24Hours)
	return time.Date(int(dt.year), time.Month(dt.month), int(dt.day),
		int(hours), int(dt.minutes), int(dt.seconds),
		int(dt.millis)*int(time.Millisecond), dt.zone.Location()), nil
}

// String formats the value as "YYYY-MM-DD Day hh:mm:ss.mmm UTC+hh:mm",
// with dashes for an unset half. 12-hour times carry an AM/PM suffix.
func (dt DateTime) String() string {
	var b strings.Builder
	if dt.dateSet {
		fmt.Fprintf(&b, "%04d-%02d-%02d %s", dt.year, dt.month, dt.day, dt.weekDay.String()[:3])
	} else {
		b.WriteString("----------")
	}
	b.WriteByte(' ')
	if dt.timeSet {
		fmt.Fprintf(&b, "%02d:%02d:%02d.%03d", dt.hours, dt.minutes, dt.seconds, dt.millis)
		if dt.format == Format12Hours {
			b.WriteByte(' ')
			b.WriteString(dt.ampm.String())
		}
	} else {
		b.WriteString("--:--:--")
	}
	b.WriteByte(' ')
	b.WriteString(dt.zone.String())
	return b.String()
}
