package starblock

import "errors"

var (
	// ErrPoolExhausted is returned by GetBlock when no block can be supplied
	// without breaking the configured bound.
	ErrPoolExhausted = errors.New("starblock: pool exhausted")
	// ErrInvalidCapacity is returned for non-positive pool or block sizes.
	ErrInvalidCapacity = errors.New("starblock: invalid capacity")
)
