package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTarget signals a target count outside [0, n].
	ErrInvalidTarget = errors.New("invalid target count")
	// ErrDimensionMismatch signals a comparison between fingerprints of different widths.
	ErrDimensionMismatch = errors.New("fingerprint dimension mismatch")
	// ErrDecode signals an unreadable or undecodable image source.
	ErrDecode = errors.New("image decode failed")
	// ErrInvalidOptions signals malformed selection options (window size, strategy, floor).
	ErrInvalidOptions = errors.New("invalid selection options")
	// ErrDuplicateCandidate signals two candidates sharing one identifier.
	ErrDuplicateCandidate = errors.New("duplicate candidate identifier")
	// ErrNotFound signals a missing resource (directory, file).
	ErrNotFound = errors.New("not found")
)

// InvalidTargetError wraps ErrInvalidTarget with the requested and available counts.
type InvalidTargetError struct {
	Target    int
	Available int
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("%s: target %d, available %d", ErrInvalidTarget.Error(), e.Target, e.Available)
}

func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }

// NewInvalidTarget creates an invalid target error.
func NewInvalidTarget(target, available int) error {
	return &InvalidTargetError{Target: target, Available: available}
}

// DimensionMismatchError wraps ErrDimensionMismatch with both widths in bits.
type DimensionMismatchError struct {
	Left  int
	Right int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: %d bits vs %d bits", ErrDimensionMismatch.Error(), e.Left, e.Right)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(left, right int) error {
	return &DimensionMismatchError{Left: left, Right: right}
}

// DecodeError reports a single candidate whose source could not be read or decoded.
// Errors.Is matches both ErrDecode and the underlying cause.
type DecodeError struct {
	ID  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDecode.Error(), e.ID, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// NewDecodeError creates a decode error for the given identifier.
func NewDecodeError(id string, err error) error {
	return &DecodeError{ID: id, Err: err}
}
