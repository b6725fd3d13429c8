package bridge

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/value"
)

// Caller runs the call protocol against one runtime.
type Caller struct {
	rt     foreign.Runtime
	logger *zap.Logger
	strict bool
}

// Option configures a Caller.
type Option func(*Caller)

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Caller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStrictResults makes unrecognized result tags an error instead of Null.
func WithStrictResults(strict bool) Option {
	return func(c *Caller) {
		c.strict = strict
	}
}

// NewCaller creates a Caller for rt.
func NewCaller(rt foreign.Runtime, opts ...Option) *Caller {
	c := &Caller{
		rt:     rt,
		logger: Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call invokes name on rt with a default Caller.
func Call(ctx context.Context, rt foreign.Runtime, name string, args ...value.Value) (value.Value, error) {
	return NewCaller(rt).Call(ctx, name, args...)
}

// Call invokes the runtime function name with args and decodes its result.
// A function without a result returns value.Null. All handles created or
// received during the call are released before Call returns.
func (c *Caller) Call(ctx context.Context, name string, args ...value.Value) (value.Value, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseResolve, "function name is empty")
	}

	fn := c.rt.Function(name)
	if fn == foreign.NilCallable {
		return nil, errors.FunctionNotFound(name)
	}

	argv := newHandleSet(c.rt, len(args))
	defer argv.release()

	for i, arg := range args {
		h, err := encode(c.rt, name, i, arg)
		if err != nil {
			return nil, err
		}
		argv.add(h)
	}

	ret := c.rt.Call(ctx, fn, argv.handles)
	if ret == foreign.NilHandle {
		if d, ok := c.rt.(foreign.Diagnoser); ok {
			if cause := d.LastError(); cause != nil {
				return nil, errors.CallFailed(name, cause)
			}
		}
		return value.Null{}, nil
	}

	result := own(c.rt, ret)
	defer result.release()

	v, tag, ok := decode(c.rt, ret)
	if !ok {
		c.logger.Warn("unrecognized result tag",
			zap.String("function", name),
			zap.Int32("tag", int32(tag)))
		if c.strict {
			return nil, errors.UnrecognizedTag(name, int(tag))
		}
	} else if !tag.Primitive() && tag != foreign.TagNull {
		c.logger.Debug("result kind has no conversion",
			zap.String("function", name),
			zap.Stringer("tag", tag))
	}

	return v, nil
}
