package pgen

import "errors"

var (
	ErrInvalidConfig   = errors.New("invalid noise config")
	ErrZeroZoom        = errors.New("zoom must be nonzero")
	ErrNegativeOctaves = errors.New("octave count must not be negative")
	ErrNonFinite       = errors.New("value must be finite")
	ErrRange           = errors.New("scaled coordinate out of range")
	ErrDimension       = errors.New("unsupported dimension")
	ErrRandomSource    = errors.New("random source failed")
)
