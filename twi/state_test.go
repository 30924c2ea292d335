package twi

import (
	"testing"

	"github.com/ardnew/softtwi/twi/hal"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name   string
		status hal.Status
		index  int
		length int
		want   Step
	}{
		{
			name:   "start loads address",
			status: hal.StatusStart, index: 5, length: 3,
			want: Step{Control: ctrlNext, Load: 0, Store: noIndex, Index: 1, Outcome: OutcomePending},
		},
		{
			name:   "repeated start loads address",
			status: hal.StatusRepStart, index: 2, length: 1,
			want: Step{Control: ctrlNext, Load: 0, Store: noIndex, Index: 1, Outcome: OutcomePending},
		},
		{
			name:   "address ack loads register",
			status: hal.StatusMTxAdrAck, index: 1, length: 3,
			want: Step{Control: ctrlNext, Load: 1, Store: noIndex, Index: 2, Outcome: OutcomePending},
		},
		{
			name:   "data ack loads next byte",
			status: hal.StatusMTxDataAck, index: 2, length: 3,
			want: Step{Control: ctrlNext, Load: 2, Store: noIndex, Index: 3, Outcome: OutcomePending},
		},
		{
			name:   "data ack after last byte stops",
			status: hal.StatusMTxDataAck, index: 3, length: 3,
			want: Step{Control: ctrlStop, Load: noIndex, Store: noIndex, Index: 3, Outcome: OutcomeComplete},
		},
		{
			name:   "read address ack enables ack",
			status: hal.StatusMRxAdrAck, index: 1, length: 8,
			want: Step{Control: ctrlNextAck, Load: noIndex, Store: noIndex, Index: 1, Outcome: OutcomePending},
		},
		{
			name:   "read address ack for single byte nacks",
			status: hal.StatusMRxAdrAck, index: 1, length: 2,
			want: Step{Control: ctrlNext, Load: noIndex, Store: noIndex, Index: 1, Outcome: OutcomePending},
		},
		{
			name:   "received byte stored and acked",
			status: hal.StatusMRxDataAck, index: 1, length: 8,
			want: Step{Control: ctrlNextAck, Load: noIndex, Store: 1, Index: 2, Outcome: OutcomePending},
		},
		{
			name:   "byte before last arms nack",
			status: hal.StatusMRxDataAck, index: 6, length: 8,
			want: Step{Control: ctrlNext, Load: noIndex, Store: 6, Index: 7, Outcome: OutcomePending},
		},
		{
			name:   "last byte stored and stopped",
			status: hal.StatusMRxDataNack, index: 7, length: 8,
			want: Step{Control: ctrlStop, Load: noIndex, Store: 7, Index: 7, Outcome: OutcomeComplete},
		},
		{
			name:   "arbitration lost restarts",
			status: hal.StatusArbLost, index: 2, length: 3,
			want: Step{Control: ctrlStart, Load: noIndex, Store: noIndex, Index: 2, Outcome: OutcomeRetry},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transition(tt.status, tt.index, tt.length)
			if got != tt.want {
				t.Errorf("Transition(%s, %d, %d) = %+v, want %+v",
					tt.status, tt.index, tt.length, got, tt.want)
			}
		})
	}
}

func TestTransitionFaults(t *testing.T) {
	faults := []hal.Status{
		hal.StatusBusError,
		hal.StatusMTxAdrNack,
		hal.StatusMRxAdrNack,
		hal.StatusMTxDataNack,
		hal.StatusSRxAdrAck,
		hal.StatusSTxDataAck,
		hal.StatusNoState,
	}
	for _, status := range faults {
		got := Transition(status, 4, 6)
		if got.Outcome != OutcomeFault {
			t.Errorf("Transition(%s).Outcome = %s, want fault", status, got.Outcome)
		}
		if got.Control != hal.TWEN {
			t.Errorf("Transition(%s).Control = %#02x, want TWEN only", status, got.Control)
		}
		if got.Load != noIndex || got.Store != noIndex {
			t.Errorf("Transition(%s) touches the buffer: %+v", status, got)
		}
		if got.Index != 4 {
			t.Errorf("Transition(%s).Index = %d, want 4", status, got.Index)
		}
	}
}

// Every status leaves the engine armed, stopping, or reset to idle.
func TestTransitionNeverStalls(t *testing.T) {
	for raw := 0; raw < 0x100; raw += 8 {
		status := hal.Status(raw)
		for index := 0; index < 4; index++ {
			step := Transition(status, index, 3)
			armed := step.Control&(hal.TWIE|hal.TWINT) == hal.TWIE|hal.TWINT
			stopping := step.Control&hal.TWSTO != 0
			idle := step.Control == hal.TWEN
			if !armed && !stopping && !idle {
				t.Errorf("Transition(%s, %d) control %#02x stalls the bus", status, index, step.Control)
			}
			if step.Control&hal.TWEN == 0 {
				t.Errorf("Transition(%s, %d) disables the interface", status, index)
			}
		}
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{OutcomePending, "pending"},
		{OutcomeComplete, "complete"},
		{OutcomeRetry, "retry"},
		{OutcomeFault, "fault"},
		{Outcome(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.o, got, tt.want)
		}
	}
}
