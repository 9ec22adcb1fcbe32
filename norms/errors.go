package norms

import "errors"

// Common norms errors
var (
	// ErrEmptyDocID indicates a document without an id
	ErrEmptyDocID = errors.New("document id cannot be empty")

	// ErrEmptyField indicates a field without a name
	ErrEmptyField = errors.New("field name cannot be empty")

	// ErrNegativeBoost indicates a field boost below zero
	ErrNegativeBoost = errors.New("field boost must be non-negative")

	// ErrIncompatibleSnapshot indicates a snapshot written with another
	// norm encoding or format version
	ErrIncompatibleSnapshot = errors.New("incompatible norm snapshot")

	// ErrCorruptSnapshot indicates a snapshot that cannot be decoded
	ErrCorruptSnapshot = errors.New("corrupt norm snapshot")
)
