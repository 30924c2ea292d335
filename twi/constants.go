package twi

import "fmt"

// Bus clock limits in Hz.
const (
	MinClockSpeed = 1_000
	MaxClockSpeed = 400_000
)

// Transaction buffer limits. The allocated buffer holds HeaderSize extra
// bytes for the address and register header.
const (
	MinBufferSize = 10
	MaxBufferSize = 100
	HeaderSize    = 2
)

// Defaults used when the caller has no preference.
const (
	DefaultClockSpeed = 10_000
	DefaultBufferSize = 20
	DefaultTimeout    = 20 // ticks
)

// MaxShortAddress is the largest 7-bit slave address.
const MaxShortAddress = 0x7F

// Direction selects the register protocol used by SendData.
type Direction uint8

// Transfer directions.
const (
	Write Direction = iota
	Read
)

// String returns a human-readable direction.
func (d Direction) String() string {
	switch d {
	case Write:
		return "write"
	case Read:
		return "read"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}
