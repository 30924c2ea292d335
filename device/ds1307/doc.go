// Package ds1307 drives the Maxim DS1307 serial real-time clock over a TWI
// register bus.
//
// The chip keeps BCD time and date in registers 0x00-0x06, a square-wave
// control register at 0x07 and 56 bytes of battery-backed RAM from 0x08.
// [Model] emulates the chip on the simulated bus for hosted builds.
package ds1307
