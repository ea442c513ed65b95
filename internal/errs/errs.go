// Package errs defines the error kinds reported by the recording pipeline.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unknown Kind = iota
	// InvalidInput: geometry requested for empty or malformed data.
	InvalidInput
	// UnsupportedEncoder: no codec from the preference list is available.
	UnsupportedEncoder
	// RecorderState: start while recording, stop while not recording, overlapping calls.
	RecorderState
	// EncodeFailure: a single sampled frame could not be encoded.
	EncodeFailure
	// FinalizationFailure: the encoder failed while the recording was being stopped.
	FinalizationFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case UnsupportedEncoder:
		return "UnsupportedEncoder"
	case RecorderState:
		return "RecorderStateError"
	case EncodeFailure:
		return "EncodeFailure"
	case FinalizationFailure:
		return "FinalizationFailure"
	default:
		return "Unknown"
	}
}

// Error is a human readable message tagged with a Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
