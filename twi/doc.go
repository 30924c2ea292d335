// Package twi implements an interrupt-driven master for the ATmega TWI
// (I2C) peripheral.
//
// A [Master] is configured with [Master.Init], pointed at a slave with
// [Master.SetDevice] and then moves data with the register protocol used by
// most I2C peripherals:
//
//	write:  START, SLA+W, reg, data..., STOP
//	read:   START, SLA+W, reg, STOP, START, SLA+R, data..., STOP
//
// The foreground stages each frame in a transaction buffer and arms the
// peripheral. From then on [Master.HandleInterrupt], installed as the TWI
// interrupt vector, advances the frame one byte event at a time following
// the pure transition table in [Transition]. The foreground polls until the
// engine disarms or the tick timeout expires.
//
// The hardware is reached through [hal.Registers]; package sim provides a
// simulated peripheral for hosted builds and tests. [Bus] adapts a Master
// to periph.io's i2c.Bus.
package twi
