package smartsample

import "github.com/kailas-cloud/smartsample/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidTarget      = domain.ErrInvalidTarget
	ErrInvalidOptions     = domain.ErrInvalidOptions
	ErrDimensionMismatch  = domain.ErrDimensionMismatch
	ErrDuplicateCandidate = domain.ErrDuplicateCandidate
	ErrDecode             = domain.ErrDecode
	ErrNotFound           = domain.ErrNotFound
)

// Typed errors, usable with errors.As.
type (
	InvalidTargetError     = domain.InvalidTargetError
	DimensionMismatchError = domain.DimensionMismatchError
	DecodeError            = domain.DecodeError
)
