// Package tagparsererr defines the error taxonomy shared by every parser
// and writer in this module.
//
// The original C++ implementation this module is modeled on signals these
// conditions with a small hierarchy of exception types
// (TruncatedDataException, InvalidDataException, ...). Go has no exceptions,
// so each kind is a sentinel error that callers can match with errors.Is,
// wrapped with github.com/pkg/errors so a failure keeps its originating
// stack trace and a human-readable cause chain.
package tagparsererr

import "github.com/pkg/errors"

// Sentinel errors. Match with errors.Is, not type assertion.
var (
	// ErrIO indicates the underlying stream failed to read, write, or seek.
	ErrIO = errors.New("tagparser: io failure")

	// ErrTruncatedData indicates a declared size exceeds the bytes actually
	// available.
	ErrTruncatedData = errors.New("tagparser: truncated data")

	// ErrInvalidData indicates a signature mismatch or another structurally
	// malformed value.
	ErrInvalidData = errors.New("tagparser: invalid data")

	// ErrParsingFailure is the generic parse error raised when none of the
	// more specific sentinels apply.
	ErrParsingFailure = errors.New("tagparser: parsing failure")

	// ErrVersionNotSupported indicates a container/tag version this module
	// refuses to interpret.
	ErrVersionNotSupported = errors.New("tagparser: version not supported")

	// ErrConversion indicates a Base64 or text-encoding conversion failed.
	ErrConversion = errors.New("tagparser: conversion failure")

	// ErrNoDataFound is the discriminator for "padding reached" style
	// early-termination signals. It is a normal outcome, not a failure, and
	// callers that iterate over frames should branch on it rather than
	// abort the whole parse.
	ErrNoDataFound = errors.New("tagparser: no data found")

	// ErrOperationAborted indicates a progress callback requested
	// cancellation mid-copy.
	ErrOperationAborted = errors.New("tagparser: operation aborted")
)

// Wrap annotates err with message and associates it with sentinel so that
// errors.Is(result, sentinel) succeeds.
func Wrap(sentinel error, err error, message string) error {
	if err == nil {
		return errors.WithStack(errors.WithMessage(sentinel, message))
	}
	return errors.WithStack(errors.WithMessage(&wrapped{sentinel: sentinel, cause: err}, message))
}

// New builds a fresh error associated with sentinel, without an underlying
// cause.
func New(sentinel error, message string) error {
	return errors.WithStack(errors.WithMessage(sentinel, message))
}

type wrapped struct {
	sentinel error
	cause    error
}

func (w *wrapped) Error() string {
	return w.cause.Error()
}

func (w *wrapped) Unwrap() error {
	return w.cause
}

func (w *wrapped) Is(target error) bool {
	return w.sentinel == target
}
