package repository

import "errors"

// Sentinel kinds for history store errors.
var (
	ErrCorrupt           = errors.New("history data is corrupt")
	ErrUnavailable       = errors.New("history store unavailable")
	ErrUnsupportedDriver = errors.New("unsupported history store driver")
)
