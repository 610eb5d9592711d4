package domain

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks across the error taxonomy
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrRemote          = errors.New("remote error")
	ErrDecode          = errors.New("decode error")
)

// InvalidArgumentError is returned when a caller supplies a contradictory or out-of-range parameter
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Field, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// InvalidArgument builds an InvalidArgumentError
func InvalidArgument(field, format string, args ...interface{}) error {
	return &InvalidArgumentError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RemoteError is returned on network failure or a non-2xx status.
// StatusCode is 0 when no response was received.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("remote error: %s", e.Message)
	}
	return fmt.Sprintf("remote error: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// DecodeError is returned when a body cannot be parsed as JSON or as an image
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
