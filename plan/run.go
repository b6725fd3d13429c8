package plan

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/value"
)

// Runner is the runtime surface a plan drives. *polycall.Runtime satisfies it.
type Runner interface {
	LoadFromFile(ctx context.Context, tag string, paths ...string) error
	Call(ctx context.Context, name string, args ...value.Value) (value.Value, error)
}

// Result is the outcome of one planned call.
type Result struct {
	Got  value.Value
	Err  error
	Call Call

	// Failure describes the unmet expectation, empty when the call passed.
	Failure string
}

// Passed reports whether the call met its expectation.
func (r Result) Passed() bool { return r.Failure == "" }

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *zap.Logger
}

// WithLogger sets the logger that reports each step.
func WithLogger(l *zap.Logger) Option {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run performs every load, then every call, in file order. A failed load
// stops the run. Failed calls do not: each is recorded in the results and
// the returned error combines them.
func Run(ctx context.Context, rt Runner, p *Plan, opts ...Option) ([]Result, error) {
	cfg := runConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, l := range p.Loads {
		paths := p.resolve(l.Paths)
		cfg.logger.Debug("plan load", zap.String("tag", l.Tag), zap.Strings("paths", paths))
		if err := rt.LoadFromFile(ctx, l.Tag, paths...); err != nil {
			return nil, err
		}
	}

	results := make([]Result, 0, len(p.Calls))
	var errs error
	for _, c := range p.Calls {
		got, err := rt.Call(ctx, c.Name, c.Args...)
		r := Result{Call: c, Got: got, Err: err, Failure: check(c, got, err)}
		results = append(results, r)

		if r.Passed() {
			cfg.logger.Debug("plan call passed", zap.String("func", c.Name), zap.Stringer("result", stringer{got}))
			continue
		}
		cfg.logger.Warn("plan call failed", zap.String("func", c.Name), zap.String("failure", r.Failure))
		errs = multierr.Append(errs, errors.New(errors.PhaseCall, errors.KindCallFailed).
			Path(c.Name).
			Detail("%s", r.Failure).
			Build())
	}
	return results, errs
}

func (p *Plan) resolve(paths []string) []string {
	if p.Dir == "" {
		return paths
	}
	out := make([]string, len(paths))
	for i, path := range paths {
		if filepath.IsAbs(path) {
			out[i] = path
		} else {
			out[i] = filepath.Join(p.Dir, path)
		}
	}
	return out
}

func check(c Call, got value.Value, err error) string {
	if c.ErrorKind != "" {
		if err == nil {
			return fmt.Sprintf("want %s error, got result %v", c.ErrorKind, got)
		}
		var perr *errors.Error
		if !stderrors.As(err, &perr) || perr.Kind != c.ErrorKind {
			return fmt.Sprintf("want %s error, got %v", c.ErrorKind, err)
		}
		return ""
	}
	if err != nil {
		return err.Error()
	}
	if c.Expect == nil || matches(got, c.Expect, c.loose) {
		return ""
	}
	return fmt.Sprintf("got %s %v, want %s %v", got.Kind(), got, c.Expect.Kind(), c.Expect)
}

func matches(got, want value.Value, loose bool) bool {
	if value.Equal(got, want) {
		return true
	}
	if !loose {
		return false
	}
	g, ok := numeric(got)
	if !ok {
		return false
	}
	w, _ := numeric(want)
	if _, single := got.(value.Float); single {
		return float32(g) == float32(w)
	}
	return g == w
}

func numeric(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Short:
		return float64(x), true
	case value.Int:
		return float64(x), true
	case value.Long:
		return float64(x), true
	case value.Float:
		return float64(x), true
	case value.Double:
		return float64(x), true
	}
	return 0, false
}

type stringer struct{ v value.Value }

func (s stringer) String() string {
	if s.v == nil {
		return "<nil>"
	}
	return s.v.String()
}
