package metacall

import (
	"go.uber.org/zap"
)

type config struct {
	logger *zap.Logger
}

// Option configures New.
type Option func(*config)

// WithLogger sets the logger for lifecycle diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
