// Package sim provides an in-process model of the ATmega TWI peripheral.
//
// [Peripheral] implements [hal.Registers] and drives byte events from a
// background goroutine that plays the role of the TWI interrupt. Slaves
// are modelled by the [Target] interface; [RegisterTarget] covers the
// common register-file device. Every bus event is captured by a
// [Recorder] so tests can assert exact frames, and faults such as lost
// arbitration or a bus error can be injected on demand.
package sim
