package binfmt

import (
	"errors"
	"fmt"
)

var (
	// ErrTooShort is returned when the data ends before a required field.
	ErrTooShort = errors.New("data too short")
	// ErrBadMagic is returned when a header carries an unexpected magic number.
	ErrBadMagic = errors.New("bad magic")
	// ErrNotSquare is returned when a matrix is expected to be square but is not.
	ErrNotSquare = errors.New("matrix is not square")
	// ErrMisaligned is returned when a field does not start on its required boundary.
	ErrMisaligned = errors.New("misaligned field")
	// ErrOutOfBounds is returned when a field extends past the end of the data.
	ErrOutOfBounds = errors.New("field out of bounds")
	// ErrTrailingData is returned when bytes remain after the last expected field.
	ErrTrailingData = errors.New("unexpected trailing data")
	// ErrInvalid is returned when a header field holds an unsupported value.
	ErrInvalid = errors.New("invalid value")
)

// Error describes a malformed binary layout.
//
// Match the failure class with errors.Is against the sentinels above.
type Error struct {
	// Component names the decoder that rejected the data (e.g. "connector").
	Component string
	// Offset is the byte offset at which the problem was detected.
	Offset int
	// Detail is a human-readable description of the mismatch.
	Detail string
	// Err is the sentinel describing the failure class.
	Err error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v at offset %d", e.Component, e.Err, e.Offset)
	}
	return fmt.Sprintf("%s: %v at offset %d: %s", e.Component, e.Err, e.Offset, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an *Error for component at offset.
func Errorf(component string, offset int, sentinel error, format string, args ...any) *Error {
	return &Error{
		Component: component,
		Offset:    offset,
		Detail:    fmt.Sprintf(format, args...),
		Err:       sentinel,
	}
}
