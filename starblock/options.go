package starblock

import (
	"log/slog"

	"github.com/hupe1980/starcache/internal/resource"
)

// OverflowPolicy decides what GetBlock does when every block is hot.
type OverflowPolicy int

const (
	// OverflowSoft allocates past the soft capacity, unless the resource
	// controller's memory ceiling refuses.
	OverflowSoft OverflowPolicy = iota
	// OverflowReject never allocates past the soft capacity.
	OverflowReject
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowSoft:
		return "soft"
	case OverflowReject:
		return "reject"
	default:
		return "unknown"
	}
}

type options struct {
	policy OverflowPolicy
	rc     *resource.Controller
	batch  int
	logger *slog.Logger
}

// Option configures a Pool.
type Option func(*options)

// WithOverflowPolicy sets the policy applied when every block is hot.
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithResourceController charges block memory to rc. Allocations it refuses
// fail with ErrPoolExhausted.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithReadBatch sets how many records a chain fetches per catalog read.
func WithReadBatch(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batch = n
		}
	}
}

// WithLogger sets the logger for the pool and its chains.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
