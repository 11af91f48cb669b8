package loadgen

import "errors"

// Sentinel kinds for seeding failures.
var (
	ErrUnhealthy    = errors.New("service is not healthy")
	ErrVerification = errors.New("history verification failed")
	ErrInvalidRun   = errors.New("invalid run configuration")
)
