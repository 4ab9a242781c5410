package herdcheck

import "errors"

var (
	// ErrInvalidConfig marks a rejected run configuration.
	ErrInvalidConfig = errors.New("invalid herd-check config")
	// ErrUnhealthy is returned when the target fails its health check.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrMismatch is returned when the server disagrees with the local answer.
	ErrMismatch = errors.New("server answer mismatch")
	// ErrUnexpectedStatus is returned for responses with a status the check did not expect.
	ErrUnexpectedStatus = errors.New("unexpected status")
)
