package twi

import "github.com/ardnew/softtwi/twi/hal"

// Control register values written by the state machine.
const (
	ctrlStart   = hal.TWEN | hal.TWIE | hal.TWINT | hal.TWSTA
	ctrlNext    = hal.TWEN | hal.TWIE | hal.TWINT
	ctrlNextAck = hal.TWEN | hal.TWIE | hal.TWINT | hal.TWEA
	ctrlStop    = hal.TWEN | hal.TWINT | hal.TWSTO
	ctrlIdle    = hal.TWEN
)

// Outcome is the transaction-level effect of one interrupt.
type Outcome uint8

// Interrupt outcomes.
const (
	OutcomePending  Outcome = iota // Engine re-armed for the next byte event
	OutcomeComplete                // Transaction finished cleanly; STOP issued
	OutcomeRetry                   // Arbitration lost; START re-issued
	OutcomeFault                   // NACK or bus error; interface reset to idle
)

// String returns a human-readable outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeComplete:
		return "complete"
	case OutcomeRetry:
		return "retry"
	case OutcomeFault:
		return "fault"
	default:
		return "unknown"
	}
}

// noIndex marks an unused Load or Store slot in a Step.
const noIndex = -1

// Step is the hardware action taken for one status code.
//
// Store is applied first (TWDR into the buffer), then Load (buffer into
// TWDR), then Control is written to TWCR. Index is the in-flight buffer
// position after the step.
type Step struct {
	Control uint8
	Load    int
	Store   int
	Index   int
	Outcome Outcome
}

// Transition returns the step for a status code given the in-flight buffer
// index and the number of bytes queued for the transaction.
//
// Every step leaves the engine armed for the next byte event, issuing STOP,
// or reset to idle.
func Transition(status hal.Status, index, length int) Step {
	step := Step{Load: noIndex, Store: noIndex, Index: index}

	switch status {
	case hal.StatusStart, hal.StatusRepStart:
		// The address byte is loaded right after START.
		step.Index = 0
		return transmit(step, length)

	case hal.StatusMTxAdrAck, hal.StatusMTxDataAck:
		return transmit(step, length)

	case hal.StatusMRxDataAck:
		step.Store = step.Index
		step.Index++
		return receive(step, length)

	case hal.StatusMRxAdrAck:
		return receive(step, length)

	case hal.StatusMRxDataNack:
		step.Store = step.Index
		step.Control = ctrlStop
		step.Outcome = OutcomeComplete
		return step

	case hal.StatusArbLost:
		step.Control = ctrlStart
		step.Outcome = OutcomeRetry
		return step

	default:
		// MTX_ADR_NACK, MRX_ADR_NACK, MTX_DATA_NACK, BUS_ERROR and any
		// code the master does not expect. No STOP is issued.
		return faultStep(index)
	}
}

// transmit loads the next queued byte or closes the transaction.
func transmit(step Step, length int) Step {
	if step.Index < length {
		step.Load = step.Index
		step.Index++
		step.Control = ctrlNext
		step.Outcome = OutcomePending
		return step
	}
	step.Control = ctrlStop
	step.Outcome = OutcomeComplete
	return step
}

// receive arms the next reception, NACKing the last expected byte.
func receive(step Step, length int) Step {
	if step.Index < length-1 {
		step.Control = ctrlNextAck
	} else {
		step.Control = ctrlNext
	}
	step.Outcome = OutcomePending
	return step
}

func faultStep(index int) Step {
	return Step{
		Control: ctrlIdle,
		Load:    noIndex,
		Store:   noIndex,
		Index:   index,
		Outcome: OutcomeFault,
	}
}
