package reindeer

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	// ErrMalformed marks a body that is not syntactically valid JSON.
	ErrMalformed = errors.New("malformed herd")
	// ErrInvalidHerd marks valid JSON that does not describe a herd.
	ErrInvalidHerd = errors.New("invalid herd")
	// ErrEmptyHerd is returned by reductions that need at least one reindeer.
	ErrEmptyHerd = errors.New("empty herd")
)
