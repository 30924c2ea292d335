package sim

import (
	"fmt"
	"sync"
)

// EventType identifies a bus condition or byte transfer.
type EventType uint8

// Bus events.
const (
	EventStart EventType = iota
	EventStop
	EventWrite   // Byte sent by the master (address or data)
	EventRead    // Byte received by the master
	EventArbLost // Address phase lost arbitration
)

// String returns a human-readable event type.
func (t EventType) String() string {
	switch t {
	case EventStart:
		return "START"
	case EventStop:
		return "STOP"
	case EventWrite:
		return "WRITE"
	case EventRead:
		return "READ"
	case EventArbLost:
		return "ARB_LOST"
	default:
		return "UNKNOWN"
	}
}

// Event is one recorded bus event. Ack is the acknowledge bit that followed
// the byte; it is unused for START and STOP.
type Event struct {
	Type EventType
	Byte byte
	Ack  bool
}

// String formats the event for logs and test failures.
func (e Event) String() string {
	switch e.Type {
	case EventWrite, EventRead, EventArbLost:
		ack := "NACK"
		if e.Ack {
			ack = "ACK"
		}
		return fmt.Sprintf("%s(%#02x,%s)", e.Type, e.Byte, ack)
	default:
		return e.Type.String()
	}
}

// Recorder captures bus events in order.
type Recorder struct {
	mutex  sync.Mutex
	events []Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(e Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]Event(nil), r.events...)
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = r.events[:0]
}

// Count returns the number of recorded events of type t.
func (r *Recorder) Count(t EventType) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Frames returns the bytes moved after each START, one slice per frame.
// A frame ends at STOP, at the next START, or on lost arbitration.
func (r *Recorder) Frames() [][]byte {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var (
		frames [][]byte
		frame  []byte
		open   bool
	)
	flush := func() {
		if open {
			frames = append(frames, frame)
		}
		frame, open = nil, false
	}
	for _, e := range r.events {
		switch e.Type {
		case EventStart:
			flush()
			frame, open = []byte{}, true
		case EventStop, EventArbLost:
			flush()
		case EventWrite, EventRead:
			if open {
				frame = append(frame, e.Byte)
			}
		}
	}
	flush()
	return frames
}
