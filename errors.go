package imecore

import (
	"errors"
	"fmt"

	"github.com/hupe1980/imecore/datamanager"
)

var (
	// ErrDataMissing is returned when the data set lacks a required section.
	ErrDataMissing = errors.New("imecore: data missing")

	// ErrDataBroken is returned when the data set or a component is malformed.
	ErrDataBroken = errors.New("imecore: data broken")

	// ErrVersionMismatch is returned when the data was built for another
	// engine version.
	ErrVersionMismatch = errors.New("imecore: engine version mismatch")

	// ErrMmapFailure is returned when a local data file cannot be mapped.
	ErrMmapFailure = errors.New("imecore: mmap failure")

	// ErrMemoryLimit is returned when loading would exceed the resource
	// controller's memory limit.
	ErrMemoryLimit = datamanager.ErrMemoryLimit

	// ErrInvalidSource is returned by Open for a nil or incomplete Source.
	ErrInvalidSource = errors.New("imecore: invalid source")
)

// ComponentError reports which component failed to build from otherwise
// valid data. It matches ErrDataBroken and its cause under errors.Is.
type ComponentError struct {
	Component string
	cause     error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("imecore: build %s: %v", e.Component, e.cause)
}

func (e *ComponentError) Unwrap() []error { return []error{ErrDataBroken, e.cause} }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var se *datamanager.StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.Status {
	case datamanager.DataMissing:
		return fmt.Errorf("%w: %w", ErrDataMissing, err)
	case datamanager.DataBroken:
		return fmt.Errorf("%w: %w", ErrDataBroken, err)
	case datamanager.EngineVersionMismatch:
		return fmt.Errorf("%w: %w", ErrVersionMismatch, err)
	case datamanager.MmapFailure:
		return fmt.Errorf("%w: %w", ErrMmapFailure, err)
	}
	return err
}
