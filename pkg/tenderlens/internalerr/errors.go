package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrResourceMissing  = errors.New("resource missing")
	ErrSchema           = errors.New("schema error")
	ErrUnclustered      = errors.New("entity missing from cluster table")
	ErrInsufficientData = errors.New("insufficient data")
	ErrFitFailed        = errors.New("topic model fit failed")
)
