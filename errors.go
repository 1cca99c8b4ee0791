package wave

import (
	"errors"
	"fmt"
)

var (
	// ErrFileCannotOpen is returned when the backing file cannot be acquired.
	ErrFileCannotOpen = errors.New("file cannot be opened")
	// ErrFileNotOpen is returned when an operation needs a file handle but the
	// container has none.
	ErrFileNotOpen = errors.New("file is not open")
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("invalid wave format")
	// ErrMissingToken is returned when a required subchunk is absent.
	ErrMissingToken = errors.New("missing subchunk")
	// ErrMissingData is returned when required bytes are absent, either in
	// the fmt subchunk or in a block of the data payload.
	ErrMissingData = errors.New("missing data")
	// ErrRange is returned for out-of-bounds byte, channel or sample access.
	ErrRange = errors.New("out of range")
	// ErrDataInvalid is returned when a setter receives a non-positive value.
	ErrDataInvalid = errors.New("invalid data")
	// ErrMemory is returned instead of attempting an allocation that exceeds
	// the configured limits.
	ErrMemory = errors.New("allocation limit exceeded")
	// ErrUnsupported is returned when a DomainData destination cannot take
	// the requested shape.
	ErrUnsupported = errors.New("unsupported operation")
)

// FormatReason describes why a file failed structural validation.
type FormatReason int

const (
	// RiffMissing means the file does not start with a RIFF header.
	RiffMissing FormatReason = iota + 1
	// NotWave means the RIFF form type is not WAVE.
	NotWave
	// NotPCM means the fmt chunk names a format other than integer PCM.
	NotPCM
	// BitrateHigh means the sample size exceeds 32 bits.
	BitrateHigh
	// SampleSizeInvalid means the sample size is zero or not a whole number
	// of bytes.
	SampleSizeInvalid
	// NoChannels means the fmt chunk declares zero channels.
	NoChannels
	// BlockAlignMismatch means block align differs from channels times the
	// sample size in bytes.
	BlockAlignMismatch
)

// String returns a human readable description of the reason.
func (r FormatReason) String() string {
	switch r {
	case RiffMissing:
		return "RIFF header missing"
	case NotWave:
		return "not a WAVE file"
	case NotPCM:
		return "not PCM"
	case BitrateHigh:
		return "sample size above 32 bits"
	case SampleSizeInvalid:
		return "sample size is not a positive multiple of 8"
	case NoChannels:
		return "no channels"
	case BlockAlignMismatch:
		return "block align does not match channels and sample size"
	default:
		return fmt.Sprintf("FormatReason(%d)", int(r))
	}
}

// FormatError is returned by Parse when the file is not a usable PCM wave.
type FormatError struct {
	Reason FormatReason
	// Detail optionally carries the offending value.
	Detail string
	// Err is an optional underlying cause.
	Err error
}

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return "wave format: " + e.Reason.String()
	}

	return "wave format: " + e.Reason.String() + ": " + e.Detail
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFormat) true for every FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func formatErrorf(reason FormatReason, format string, args ...any) *FormatError {
	return &FormatError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// FormatReasonOf extracts the FormatReason carried by err, if any.
func FormatReasonOf(err error) (FormatReason, bool) {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe.Reason, true
	}

	return 0, false
}
