package core

import (
	"errors"
	"fmt"
)

// The error taxonomy of a run:
//
//   - TransientError: a network blip, lock timeout or similar while reading
//     from the source. The engine retries the whole chunk.
//   - RecordError: a single record failed parsing or a stage. The engine
//     drops the record and counts it against the skip budget.
//   - ConfigError: invalid or missing setting, surfaces before any record
//     is read. Never retried.
//   - SinkError: an I/O or encryption layer failure while writing the
//     artifact. Fatal, never retried.

type TransientError struct {
	err error
}

// Transient marks an error as a retryable source failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{err: err}
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient source error: %s", e.err)
}

func (e *TransientError) Unwrap() error { return e.err }

// IsTransient reports whether err is classified as retryable.
func IsTransient(err error) bool {
	var e *TransientError
	return errors.As(err, &e)
}

type RecordError struct {
	err error
}

// Skippable marks an error as attributable to a single record.
func Skippable(err error) error {
	if err == nil {
		return nil
	}
	return &RecordError{err: err}
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record error: %s", e.err)
}

func (e *RecordError) Unwrap() error { return e.err }

// IsSkippable reports whether err is classified as a single-record failure.
func IsSkippable(err error) bool {
	var e *RecordError
	return errors.As(err, &e)
}

type ConfigError struct {
	err error
}

func Configf(format string, args ...any) error {
	return &ConfigError{err: fmt.Errorf(format, args...)}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.err)
}

func (e *ConfigError) Unwrap() error { return e.err }

func IsConfig(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

type SinkError struct {
	err error
}

func Sink(err error) error {
	if err == nil {
		return nil
	}
	return &SinkError{err: err}
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink error: %s", e.err)
}

func (e *SinkError) Unwrap() error { return e.err }

func IsSink(err error) bool {
	var e *SinkError
	return errors.As(err, &e)
}
