package pkg

import "errors"

// Configuration errors.
var (
	// ErrClockSpeedTooLow indicates a bus clock below the supported minimum.
	ErrClockSpeedTooLow = errors.New("clock speed too low")

	// ErrClockSpeedTooHigh indicates a bus clock above the supported maximum.
	ErrClockSpeedTooHigh = errors.New("clock speed too high")

	// ErrBufferSizeTooSmall indicates a buffer size below the supported minimum.
	ErrBufferSizeTooSmall = errors.New("buffer size too small")

	// ErrBufferSizeTooLarge indicates a buffer size (or frame) above the supported maximum.
	ErrBufferSizeTooLarge = errors.New("buffer size too large")

	// ErrMemoryAllocation indicates the transaction buffer could not be allocated.
	ErrMemoryAllocation = errors.New("memory allocation failed")

	// ErrClockPrescalerNotSupported indicates an unsupported system clock prescaler.
	ErrClockPrescalerNotSupported = errors.New("clock prescaler not supported")

	// ErrClockPrescalerChangeFailed indicates the prescaler register did not accept a new value.
	ErrClockPrescalerChangeFailed = errors.New("clock prescaler change failed")
)

// Usage errors.
var (
	// ErrNotInitialized indicates an operation attempted before initialization.
	ErrNotInitialized = errors.New("not initialized")

	// ErrNoDeviceSelected indicates a register operation without a target device.
	ErrNoDeviceSelected = errors.New("no device selected")

	// ErrArgumentPointerNull indicates a nil buffer passed with a nonzero length.
	ErrArgumentPointerNull = errors.New("argument pointer null")

	// ErrArgumentCannotBeZero indicates a zero length or count where one is required.
	ErrArgumentCannotBeZero = errors.New("argument cannot be zero")

	// ErrArgumentValueInvalid indicates an argument outside its valid range.
	ErrArgumentValueInvalid = errors.New("argument value invalid")

	// ErrBufferTooSmall indicates the provided buffer is shorter than the requested count.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrFeatureNotSupported indicates an unimplemented feature (e.g., 10-bit addressing).
	ErrFeatureNotSupported = errors.New("feature not supported")
)

// Transport errors.
var (
	// ErrCommunicationTimeout indicates the bus did not go idle before the deadline.
	ErrCommunicationTimeout = errors.New("communication timeout")

	// ErrCommunicationFailed indicates a transaction that did not complete cleanly
	// (address or data NACK, bus error).
	ErrCommunicationFailed = errors.New("communication failed")
)

// Calendar errors.
var (
	// ErrDateInvalid indicates an impossible calendar date.
	ErrDateInvalid = errors.New("date invalid")

	// ErrTimeInvalid indicates an impossible time of day.
	ErrTimeInvalid = errors.New("time invalid")

	// ErrDateNotInitialized indicates a date read before it was set.
	ErrDateNotInitialized = errors.New("date not initialized")

	// ErrTimeNotInitialized indicates a time read before it was set.
	ErrTimeNotInitialized = errors.New("time not initialized")
)

// Device errors.
var (
	// ErrBusHandlerNil indicates a device driver constructed without a bus.
	ErrBusHandlerNil = errors.New("bus handler nil")

	// ErrBusNotSupported indicates a device driver attached to the wrong bus type.
	ErrBusNotSupported = errors.New("bus not supported")
)

// Code classifies driver errors for diagnostics. It mirrors the sentinel
// errors one-to-one so a code can be stored in fixed-size state or sent
// over a console without carrying an error value.
type Code uint8

// Error codes.
const (
	CodeNone Code = iota
	CodeClockSpeedTooLow
	CodeClockSpeedTooHigh
	CodeBufferSizeTooSmall
	CodeBufferSizeTooLarge
	CodeMemoryAllocation
	CodeClockPrescalerNotSupported
	CodeClockPrescalerChangeFailed
	CodeNotInitialized
	CodeNoDeviceSelected
	CodeArgumentPointerNull
	CodeArgumentCannotBeZero
	CodeArgumentValueInvalid
	CodeBufferTooSmall
	CodeFeatureNotSupported
	CodeCommunicationTimeout
	CodeCommunicationFailed
	CodeDateInvalid
	CodeTimeInvalid
	CodeDateNotInitialized
	CodeTimeNotInitialized
	CodeBusHandlerNil
	CodeBusNotSupported
	CodeUnknown
)

var codeErrors = [...]error{
	CodeNone:                       nil,
	CodeClockSpeedTooLow:           ErrClockSpeedTooLow,
	CodeClockSpeedTooHigh:          ErrClockSpeedTooHigh,
	CodeBufferSizeTooSmall:         ErrBufferSizeTooSmall,
	CodeBufferSizeTooLarge:         ErrBufferSizeTooLarge,
	CodeMemoryAllocation:           ErrMemoryAllocation,
	CodeClockPrescalerNotSupported: ErrClockPrescalerNotSupported,
	CodeClockPrescalerChangeFailed: ErrClockPrescalerChangeFailed,
	CodeNotInitialized:             ErrNotInitialized,
	CodeNoDeviceSelected:           ErrNoDeviceSelected,
	CodeArgumentPointerNull:        ErrArgumentPointerNull,
	CodeArgumentCannotBeZero:       ErrArgumentCannotBeZero,
	CodeArgumentValueInvalid:       ErrArgumentValueInvalid,
	CodeBufferTooSmall:             ErrBufferTooSmall,
	CodeFeatureNotSupported:        ErrFeatureNotSupported,
	CodeCommunicationTimeout:       ErrCommunicationTimeout,
	CodeCommunicationFailed:        ErrCommunicationFailed,
	CodeDateInvalid:                ErrDateInvalid,
	CodeTimeInvalid:                ErrTimeInvalid,
	CodeDateNotInitialized:         ErrDateNotInitialized,
	CodeTimeNotInitialized:         ErrTimeNotInitialized,
	CodeBusHandlerNil:              ErrBusHandlerNil,
	CodeBusNotSupported:            ErrBusNotSupported,
}

// String returns a string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeNone:
		return "none"
	case CodeUnknown:
		return "unknown"
	}
	if int(c) < len(codeErrors) {
		return codeErrors[c].Error()
	}
	return "unknown"
}

// Error returns the sentinel error for the code, or nil for CodeNone.
func (c Code) Error() error {
	if c == CodeNone {
		return nil
	}
	if int(c) < len(codeErrors) {
		return codeErrors[c]
	}
	return errors.New("unknown error")
}

// CodeOf returns the code of the first sentinel error matched by err.
// Wrapped errors are unwrapped with errors.Is.
func CodeOf(err error) Code {
	if err == nil {
		return CodeNone
	}
	for c := CodeClockSpeedTooLow; int(c) < len(codeErrors); c++ {
		if errors.Is(err, codeErrors[c]) {
			return c
		}
	}
	return CodeUnknown
}
