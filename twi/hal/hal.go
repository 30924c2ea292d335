package hal

import "fmt"

// TWCR (control register) bits.
const (
	TWINT = 1 << 7 // Interrupt flag; writing 1 clears it and starts the requested action
	TWEA  = 1 << 6 // Enable acknowledge on received bytes
	TWSTA = 1 << 5 // START condition request
	TWSTO = 1 << 4 // STOP condition request
	TWWC  = 1 << 3 // Write collision flag
	TWEN  = 1 << 2 // Interface enable
	TWIE  = 1 << 0 // Interrupt enable
)

// TWSR (status register) fields.
const (
	StatusMask    = 0xF8 // Status code bits
	PrescalerMask = 0x03 // TWPS1..TWPS0
)

// Direction bit appended to a 7-bit slave address (SLA+R/W).
const (
	DirWrite = 0
	DirRead  = 1
)

// Status is a TWI status code as reported in TWSR (prescaler bits masked off).
type Status uint8

// Master mode status codes.
const (
	StatusBusError    Status = 0x00 // Illegal START or STOP condition
	StatusStart       Status = 0x08 // START transmitted
	StatusRepStart    Status = 0x10 // Repeated START transmitted
	StatusMTxAdrAck   Status = 0x18 // SLA+W transmitted, ACK received
	StatusMTxAdrNack  Status = 0x20 // SLA+W transmitted, NACK received
	StatusMTxDataAck  Status = 0x28 // Data transmitted, ACK received
	StatusMTxDataNack Status = 0x30 // Data transmitted, NACK received
	StatusArbLost     Status = 0x38 // Arbitration lost in SLA+R/W or data
	StatusMRxAdrAck   Status = 0x40 // SLA+R transmitted, ACK received
	StatusMRxAdrNack  Status = 0x48 // SLA+R transmitted, NACK received
	StatusMRxDataAck  Status = 0x50 // Data received, ACK returned
	StatusMRxDataNack Status = 0x58 // Data received, NACK returned
)

// Slave mode status codes. The master never handles these; they are listed so
// diagnostics can name every code the peripheral may report.
const (
	StatusSRxAdrAck          Status = 0x60 // Own SLA+W received, ACK returned
	StatusSRxAdrAckArbLost   Status = 0x68 // Arbitration lost as master; own SLA+W received
	StatusSRxGenAck          Status = 0x70 // General call received, ACK returned
	StatusSRxGenAckArbLost   Status = 0x78 // Arbitration lost as master; general call received
	StatusSRxAdrDataAck      Status = 0x80 // Addressed data received, ACK returned
	StatusSRxAdrDataNack     Status = 0x88 // Addressed data received, NACK returned
	StatusSRxGenDataAck      Status = 0x90 // General call data received, ACK returned
	StatusSRxGenDataNack     Status = 0x98 // General call data received, NACK returned
	StatusSRxStopRestart     Status = 0xA0 // STOP or repeated START while addressed
	StatusSTxAdrAck          Status = 0xA8 // Own SLA+R received, ACK returned
	StatusSTxAdrAckArbLost   Status = 0xB0 // Arbitration lost as master; own SLA+R received
	StatusSTxDataAck         Status = 0xB8 // Data transmitted, ACK received
	StatusSTxDataNack        Status = 0xC0 // Data transmitted, NACK received
	StatusSTxDataAckLastByte Status = 0xC8 // Last data transmitted (TWEA=0), ACK received
	StatusNoState            Status = 0xF8 // No relevant state information; TWINT=0
)

// StatusOf extracts the status code from a raw TWSR value.
func StatusOf(twsr uint8) Status {
	return Status(twsr & StatusMask)
}

// String returns a short name for the status code.
func (s Status) String() string {
	switch s {
	case StatusBusError:
		return "BUS_ERROR"
	case StatusStart:
		return "START"
	case StatusRepStart:
		return "REP_START"
	case StatusMTxAdrAck:
		return "MTX_ADR_ACK"
	case StatusMTxAdrNack:
		return "MTX_ADR_NACK"
	case StatusMTxDataAck:
		return "MTX_DATA_ACK"
	case StatusMTxDataNack:
		return "MTX_DATA_NACK"
	case StatusArbLost:
		return "ARB_LOST"
	case StatusMRxAdrAck:
		return "MRX_ADR_ACK"
	case StatusMRxAdrNack:
		return "MRX_ADR_NACK"
	case StatusMRxDataAck:
		return "MRX_DATA_ACK"
	case StatusMRxDataNack:
		return "MRX_DATA_NACK"
	case StatusSRxAdrAck:
		return "SRX_ADR_ACK"
	case StatusSRxAdrAckArbLost:
		return "SRX_ADR_ACK_M_ARB_LOST"
	case StatusSRxGenAck:
		return "SRX_GEN_ACK"
	case StatusSRxGenAckArbLost:
		return "SRX_GEN_ACK_M_ARB_LOST"
	case StatusSRxAdrDataAck:
		return "SRX_ADR_DATA_ACK"
	case StatusSRxAdrDataNack:
		return "SRX_ADR_DATA_NACK"
	case StatusSRxGenDataAck:
		return "SRX_GEN_DATA_ACK"
	case StatusSRxGenDataNack:
		return "SRX_GEN_DATA_NACK"
	case StatusSRxStopRestart:
		return "SRX_STOP_RESTART"
	case StatusSTxAdrAck:
		return "STX_ADR_ACK"
	case StatusSTxAdrAckArbLost:
		return "STX_ADR_ACK_M_ARB_LOST"
	case StatusSTxDataAck:
		return "STX_DATA_ACK"
	case StatusSTxDataNack:
		return "STX_DATA_NACK"
	case StatusSTxDataAckLastByte:
		return "STX_DATA_ACK_LAST_BYTE"
	case StatusNoState:
		return "NO_STATE"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(s))
	}
}

// Registers is the Hardware Abstraction Layer for a TWI peripheral.
//
// Each accessor maps to one memory-mapped register of the ATmega TWI block.
// Writing TWCR with TWINT set hands the bus to the peripheral, which performs
// the requested action (START, STOP, transmit TWDR, receive into TWDR) and,
// once done, updates TWSR, raises TWINT and, if TWIE is set, invokes the
// handler installed with SetInterruptHandler.
//
// Accessors may be called from the foreground and from the interrupt
// handler; implementations must make individual register accesses atomic.
type Registers interface {
	// TWCR returns the control register.
	TWCR() uint8
	// SetTWCR writes the control register. A write that clears TWEN
	// returns only once no interrupt handler is running.
	SetTWCR(v uint8)

	// TWSR returns the status register (status code and prescaler bits).
	TWSR() uint8
	// SetTWSR writes the status register; only the prescaler bits are writable.
	SetTWSR(v uint8)

	// TWDR returns the data register.
	TWDR() uint8
	// SetTWDR writes the data register.
	SetTWDR(v uint8)

	// TWBR returns the bit rate register.
	TWBR() uint8
	// SetTWBR writes the bit rate register.
	SetTWBR(v uint8)

	// SetTWAR writes the slave address register.
	SetTWAR(v uint8)
	// SetTWAMR writes the slave address mask register.
	SetTWAMR(v uint8)

	// SetInterruptHandler installs the TWI interrupt vector.
	// A nil handler detaches the vector.
	SetInterruptHandler(handler func())
}
