package scale

import "errors"

// Sentinel kinds for grade-point parsing.
var (
	ErrEmpty             = errors.New("grade point is empty")
	ErrNotNumeric        = errors.New("grade point is not a number")
	ErrInvalidGradePoint = errors.New("grade point is not on the scale")
)
