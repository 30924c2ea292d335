// Package config loads the YAML configuration shared by the example
// programs: CPU clock, TWI bus, RTC, console and logging settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ardnew/softtwi/clock"
	"github.com/ardnew/softtwi/device/ds1307"
	"github.com/ardnew/softtwi/pkg"
	"github.com/ardnew/softtwi/twi"
)

type Config struct {
	Clock   ClockConfig   `yaml:"clock"`
	TWI     TWIConfig     `yaml:"twi"`
	RTC     RTCConfig     `yaml:"rtc"`
	Console ConsoleConfig `yaml:"console"`
	Log     LogConfig     `yaml:"log"`
}

type ClockConfig struct {
	CPUHz     uint32 `yaml:"cpu_hz"`
	Prescaler uint16 `yaml:"prescaler"`
	Tick      string `yaml:"tick"` // period of the tick interrupt, e.g. "1ms"
}

type TWIConfig struct {
	SpeedHz      uint32 `yaml:"speed_hz"`
	BufferSize   int    `yaml:"buffer_size"`
	TimeoutTicks uint16 `yaml:"timeout_ticks"`
}

type RTCConfig struct {
	Address    uint16 `yaml:"address"`
	Poll       string `yaml:"poll"`        // e.g. "1s"
	SquareWave string `yaml:"square_wave"` // off, off-high, 1hz, 4khz, 8khz, 32khz
}

type ConsoleConfig struct {
	Port string `yaml:"port"` // serial device; empty writes to stdout
	Baud int    `yaml:"baud"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

func Default() *Config {
	return &Config{
		Clock: ClockConfig{
			CPUHz:     clock.DefaultSourceHz,
			Prescaler: uint16(clock.Prescaler1),
			Tick:      "1ms",
		},
		TWI: TWIConfig{
			SpeedHz:      100_000,
			BufferSize:   twi.DefaultBufferSize,
			TimeoutTicks: twi.DefaultTimeout,
		},
		RTC: RTCConfig{
			Address:    ds1307.Address,
			Poll:       "1s",
			SquareWave: ds1307.SquareWave1Hz.String(),
		},
		Console: ConsoleConfig{
			Baud: 115200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path, fills unset fields from Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	pkg.LogDebug(pkg.ComponentConfig, "config loaded", "path", path)
	return c, nil
}

// Parse decodes YAML, fills unset fields from Default and validates.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	d := Default()
	if c.Clock.CPUHz == 0 {
		c.Clock.CPUHz = d.Clock.CPUHz
	}
	if c.Clock.Prescaler == 0 {
		c.Clock.Prescaler = d.Clock.Prescaler
	}
	if c.Clock.Tick == "" {
		c.Clock.Tick = d.Clock.Tick
	}
	if c.TWI.SpeedHz == 0 {
		c.TWI.SpeedHz = d.TWI.SpeedHz
	}
	if c.TWI.BufferSize == 0 {
		c.TWI.BufferSize = d.TWI.BufferSize
	}
	if c.TWI.TimeoutTicks == 0 {
		c.TWI.TimeoutTicks = d.TWI.TimeoutTicks
	}
	if c.RTC.Address == 0 {
		c.RTC.Address = d.RTC.Address
	}
	if c.RTC.Poll == "" {
		c.RTC.Poll = d.RTC.Poll
	}
	if c.RTC.SquareWave == "" {
		c.RTC.SquareWave = d.RTC.SquareWave
	}
	if c.Console.Baud == 0 {
		c.Console.Baud = d.Console.Baud
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := clock.Prescaler(c.Clock.Prescaler).Bits(); !ok {
		errs = append(errs, fmt.Errorf("clock.prescaler %d: %w", c.Clock.Prescaler, pkg.ErrClockPrescalerNotSupported))
	}
	if _, err := c.TickPeriod(); err != nil {
		errs = append(errs, err)
	}

	switch {
	case c.TWI.SpeedHz < twi.MinClockSpeed:
		errs = append(errs, fmt.Errorf("twi.speed_hz %d: %w", c.TWI.SpeedHz, pkg.ErrClockSpeedTooLow))
	case c.TWI.SpeedHz > twi.MaxClockSpeed:
		errs = append(errs, fmt.Errorf("twi.speed_hz %d: %w", c.TWI.SpeedHz, pkg.ErrClockSpeedTooHigh))
	}
	switch {
	case c.TWI.BufferSize < twi.MinBufferSize:
		errs = append(errs, fmt.Errorf("twi.buffer_size %d: %w", c.TWI.BufferSize, pkg.ErrBufferSizeTooSmall))
	case c.TWI.BufferSize > twi.MaxBufferSize:
		errs = append(errs, fmt.Errorf("twi.buffer_size %d: %w", c.TWI.BufferSize, pkg.ErrBufferSizeTooLarge))
	}

	if c.RTC.Address > twi.MaxShortAddress {
		errs = append(errs, fmt.Errorf("rtc.address %#x: %w", c.RTC.Address, pkg.ErrArgumentValueInvalid))
	}
	if _, err := c.PollPeriod(); err != nil {
		errs = append(errs, err)
	}
	if _, err := ds1307.ParseSquareWave(c.RTC.SquareWave); err != nil {
		errs = append(errs, fmt.Errorf("rtc.square_wave: %w", err))
	}

	if c.Console.Baud <= 0 {
		errs = append(errs, fmt.Errorf("console.baud %d: %w", c.Console.Baud, pkg.ErrArgumentValueInvalid))
	}

	if _, ok := pkg.ParseLogLevel(c.Log.Level); !ok {
		errs = append(errs, fmt.Errorf("log.level %q: %w", c.Log.Level, pkg.ErrArgumentValueInvalid))
	}
	if _, ok := parseLogFormat(c.Log.Format); !ok {
		errs = append(errs, fmt.Errorf("log.format %q: %w", c.Log.Format, pkg.ErrArgumentValueInvalid))
	}

	return errors.Join(errs...)
}

// TickPeriod returns the parsed clock.tick duration.
func (c *Config) TickPeriod() (time.Duration, error) {
	return positiveDuration("clock.tick", c.Clock.Tick)
}

// PollPeriod returns the parsed rtc.poll duration.
func (c *Config) PollPeriod() (time.Duration, error) {
	return positiveDuration("rtc.poll", c.RTC.Poll)
}

// SquareWave returns the parsed rtc.square_wave setting.
func (c *Config) SquareWave() (ds1307.SquareWave, error) {
	return ds1307.ParseSquareWave(c.RTC.SquareWave)
}

// ApplyLogging configures the driver logger from the log section.
func (c *Config) ApplyLogging() {
	if level, ok := pkg.ParseLogLevel(c.Log.Level); ok {
		pkg.SetLogLevel(level)
	}
	if format, ok := parseLogFormat(c.Log.Format); ok {
		pkg.SetLogFormat(format)
	}
}

func positiveDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s %q: %w", field, s, pkg.ErrArgumentValueInvalid)
	}
	return d, nil
}

func parseLogFormat(s string) (pkg.LogFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return pkg.LogFormatText, true
	case "json":
		return pkg.LogFormatJSON, true
	default:
		return pkg.LogFormatText, false
	}
}
