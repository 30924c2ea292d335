package pkg

import (
	"errors"
	"fmt"
	"testing"
)

func TestCode_String(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeNone, "none"},
		{CodeClockSpeedTooLow, "clock speed too low"},
		{CodeNoDeviceSelected, "no device selected"},
		{CodeCommunicationTimeout, "communication timeout"},
		{CodeCommunicationFailed, "communication failed"},
		{CodeBusNotSupported, "bus not supported"},
		{CodeUnknown, "unknown"},
		{Code(200), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.code.String(); got != tt.want {
				t.Errorf("Code.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCode_Error(t *testing.T) {
	tests := []struct {
		code    Code
		wantErr error
	}{
		{CodeNone, nil},
		{CodeClockSpeedTooHigh, ErrClockSpeedTooHigh},
		{CodeBufferSizeTooSmall, ErrBufferSizeTooSmall},
		{CodeMemoryAllocation, ErrMemoryAllocation},
		{CodeNotInitialized, ErrNotInitialized},
		{CodeArgumentPointerNull, ErrArgumentPointerNull},
		{CodeDateInvalid, ErrDateInvalid},
		{CodeTimeNotInitialized, ErrTimeNotInitialized},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := tt.code.Error()
			if err != tt.wantErr {
				t.Errorf("Code.Error() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != CodeNone {
		t.Errorf("CodeOf(nil) = %v, want %v", got, CodeNone)
	}

	wrapped := fmt.Errorf("read seconds: %w", ErrCommunicationFailed)
	if got := CodeOf(wrapped); got != CodeCommunicationFailed {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, CodeCommunicationFailed)
	}

	if got := CodeOf(errors.New("something else")); got != CodeUnknown {
		t.Errorf("CodeOf(foreign) = %v, want %v", got, CodeUnknown)
	}

	// Every code round-trips through its sentinel.
	for c := CodeClockSpeedTooLow; c < CodeUnknown; c++ {
		if got := CodeOf(c.Error()); got != c {
			t.Errorf("CodeOf(%v.Error()) = %v", c, got)
		}
	}
}

func TestErrorsDistinct(t *testing.T) {
	seen := make(map[string]Code)
	for c := CodeClockSpeedTooLow; c < CodeUnknown; c++ {
		msg := c.Error().Error()
		if prev, ok := seen[msg]; ok {
			t.Errorf("codes %v and %v share message %q", prev, c, msg)
		}
		seen[msg] = c
	}
}
