package polycall

import "go.uber.org/zap"

type config struct {
	logger *zap.Logger
	strict bool
}

// Option configures a Runtime.
type Option func(*config)

// WithLogger sets the logger for lifecycle and call diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStrictResults makes results with unrecognized tags fail instead of
// decoding to Null.
func WithStrictResults(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}

func newConfig(opts []Option) config {
	c := config{logger: Logger()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
