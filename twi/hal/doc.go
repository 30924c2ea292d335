// Package hal defines the Hardware Abstraction Layer for the TWI master.
//
// The HAL is the register file of the ATmega Two-Wire Interface: control
// (TWCR), status (TWSR), data (TWDR), bit rate (TWBR) and the slave address
// registers, plus the interrupt vector. The master in
// [github.com/ardnew/softtwi/twi] implements all I2C protocol logic on top
// of it; the HAL only moves bytes between the driver and the hardware.
//
// # Implementing a HAL
//
// On a TinyGo target each accessor is a volatile load or store of the
// corresponding register and SetInterruptHandler binds the TWI vector:
//
//	type avrTWI struct{}
//
//	func (avrTWI) TWCR() uint8     { return avr.TWCR.Get() }
//	func (avrTWI) SetTWCR(v uint8) { avr.TWCR.Set(v) }
//	// ... remaining registers
//
// A simulated peripheral for host-side testing is available in
// [github.com/ardnew/softtwi/twi/hal/sim].
//
// # Status Codes
//
// [Status] enumerates every code the peripheral reports in TWSR. The master
// state machine handles the master-mode codes and treats everything else as
// a bus fault.
package hal
