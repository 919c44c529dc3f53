// Package errors provides error handling for pgtyped.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing messages
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "check the db section of your config")
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors shared across the generator.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrAmbiguousTransform indicates two parameter transforms resolve to the same field name
	ErrAmbiguousTransform = New("ambiguous parameter transform")

	// ErrUnknownParamIndex indicates a transform points outside the resolved parameter list
	ErrUnknownParamIndex = New("parameter index out of range")

	// ErrFailFast is returned by batch runs that stopped on the first failure
	ErrFailFast = New("generation failed (failOnError is set)")

	// ErrPoolClosed is returned for jobs that were queued when the pool shut down
	ErrPoolClosed = New("worker pool closed")

	// ErrInvalidConfig indicates the configuration file could not be used
	ErrInvalidConfig = New("invalid config")
)

// IsAmbiguousTransform checks if an error is or wraps ErrAmbiguousTransform
func IsAmbiguousTransform(err error) bool {
	return err != nil && Is(err, ErrAmbiguousTransform)
}

// IsPoolClosed checks if an error is or wraps ErrPoolClosed
func IsPoolClosed(err error) bool {
	return err != nil && Is(err, ErrPoolClosed)
}
