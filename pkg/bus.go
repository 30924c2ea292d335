package pkg

// BusType identifies the kind of bus a driver is attached to. Device
// drivers check it to reject a bus handler of the wrong kind.
type BusType uint8

// Bus types.
const (
	BusNone     BusType = iota // Not initialized
	BusOWI                     // One Wire Interface
	BusParallel                // Parallel bit-bang interface
	BusSerial                  // Serial bit-bang interface
	BusSPI                     // Serial Peripheral Interface
	BusTWI                     // Two Wire Interface (I2C)
	BusUART                    // Universal Sync./Async. Receiver Transmitter
)

// String returns a human-readable bus type.
func (b BusType) String() string {
	switch b {
	case BusOWI:
		return "OWI"
	case BusParallel:
		return "parallel"
	case BusSerial:
		return "serial"
	case BusSPI:
		return "SPI"
	case BusTWI:
		return "TWI"
	case BusUART:
		return "UART"
	default:
		return "none"
	}
}
