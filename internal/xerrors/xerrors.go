// Package xerrors defines the error taxonomy shared by every core component,
// matching the error design in the plant monitor specification.
package xerrors

import "errors"

// Sentinel errors. Components wrap these with fmt.Errorf("...: %w", Err...)
// so that errors.Is still matches at every call site.
var (
	// ErrInvalidArgument covers a bad pointer, out-of-range enum, or a
	// zero-length value where a positive one is required.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotInitialised means a subsystem was used before its init path ran.
	ErrNotInitialised = errors.New("not initialised")

	// ErrNotFound means no record matches a lookup (minute slot, daily
	// summary, or a missing persisted blob for link credentials).
	ErrNotFound = errors.New("not found")

	// ErrSizeMismatch means a persisted blob's size disagrees with the
	// compiled layout. Converted to "use defaults" for profiles, surfaced
	// as-is for credentials.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrIO covers persistent-storage or link-layer failures.
	ErrIO = errors.New("io error")

	// ErrSensor marks a single sub-sensor failure folded into a composite
	// sample's error flag.
	ErrSensor = errors.New("sensor error")

	// ErrTimeout marks a bounded external wait (e.g. time sync) elapsing.
	ErrTimeout = errors.New("timeout")

	// ErrCRCMismatch marks a discarded reading whose carried CRC didn't match.
	ErrCRCMismatch = errors.New("crc mismatch")
)
