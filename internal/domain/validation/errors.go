package validation

import "errors"

// ErrInvalidSubmission matches any FieldErrors value via errors.Is.
var ErrInvalidSubmission = errors.New("invalid submission")
