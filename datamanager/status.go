package datamanager

import (
	"errors"
	"fmt"
)

// Status classifies a load failure.
type Status int

const (
	// OK means the data loaded.
	OK Status = iota
	// EngineVersionMismatch means the data was built for another engine version.
	EngineVersionMismatch
	// DataMissing means a required section is absent.
	DataMissing
	// DataBroken means the blob or a section is malformed.
	DataBroken
	// MmapFailure means the data file could not be mapped.
	MmapFailure
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case EngineVersionMismatch:
		return "ENGINE_VERSION_MISMATCH"
	case DataMissing:
		return "DATA_MISSING"
	case DataBroken:
		return "DATA_BROKEN"
	case MmapFailure:
		return "MMAP_FAILURE"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// StatusError is returned by FromArray and FromFile.
type StatusError struct {
	Status  Status
	Section string // empty when the failure is not tied to a section
	Err     error
}

func (e *StatusError) Error() string {
	msg := "datamanager: " + e.Status.String()
	if e.Section != "" {
		msg += fmt.Sprintf(" (section %q)", e.Section)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusOf returns the Status carried by err, OK for nil, and DataBroken for
// errors without one.
func StatusOf(err error) Status {
	if err == nil {
		return OK
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return DataBroken
}

func statusErr(s Status, section string, err error) error {
	return &StatusError{Status: s, Section: section, Err: err}
}

// ErrMemoryLimit is returned when decoding compressed sections would exceed
// the configured memory budget.
var ErrMemoryLimit = errors.New("datamanager: memory limit exceeded")
