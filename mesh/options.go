package mesh

import "log/slog"

type options struct {
	precessor Precessor
	logger    *slog.Logger
}

// Option configures a Mesh.
type Option func(*options)

// WithPrecessor sets the transform Aperture applies to its center.
// If nil is passed, the identity is used.
func WithPrecessor(p Precessor) Option {
	return func(o *options) {
		if p == nil {
			p = identity{}
		}
		o.precessor = p
	}
}

// WithLogger sets the logger used for misuse diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
