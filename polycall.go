package polycall

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/polycall/bridge"
	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/value"
)

type state uint8

const (
	stateNew state = iota
	stateReady
	stateFailed
	stateDestroyed
)

func (s state) String() string {
	switch s {
	case stateNew:
		return "new"
	case stateReady:
		return "ready"
	case stateFailed:
		return "failed"
	case stateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Runtime owns one foreign runtime and drives it through its lifecycle.
// The zero value is not usable; create one with New.
type Runtime struct {
	mu     sync.Mutex
	rt     foreign.Runtime
	caller *bridge.Caller
	logger *zap.Logger
	state  state
}

// New wraps rt. The runtime is not started until Initialize.
func New(rt foreign.Runtime, opts ...Option) *Runtime {
	cfg := newConfig(opts)
	return &Runtime{
		rt:     rt,
		logger: cfg.logger,
		caller: bridge.NewCaller(rt,
			bridge.WithLogger(cfg.logger),
			bridge.WithStrictResults(cfg.strict),
		),
	}
}

// Initialize starts the foreign runtime. It may be called once; later calls
// fail without touching the runtime, whatever the outcome of the first.
func (r *Runtime) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateNew {
		return errors.InvalidInput(errors.PhaseInit, "runtime is "+r.state.String()+", initialize may only run once")
	}

	if status := r.rt.Initialize(ctx); status != foreign.StatusOK {
		r.state = stateFailed
		err := errors.InitializationFailed(int(status), lastError(r.rt))
		r.logger.Error("initialize failed", zap.Int("status", int(status)), zap.Error(err))
		return err
	}

	r.state = stateReady
	r.logger.Debug("runtime initialized")
	return nil
}

// LoadFromFile loads paths with the loader registered for tag.
func (r *Runtime) LoadFromFile(ctx context.Context, tag string, paths ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateReady {
		return errors.NotInitialized("load_from_file")
	}
	if tag == "" {
		return errors.InvalidInput(errors.PhaseLoad, "loader tag is empty")
	}
	if len(paths) == 0 {
		return errors.InvalidInput(errors.PhaseLoad, "no paths to load")
	}

	if status := r.rt.LoadFromFile(ctx, tag, paths); status != foreign.StatusOK {
		err := errors.LoadFailed(tag, paths, int(status), lastError(r.rt))
		r.logger.Warn("load failed",
			zap.String("tag", tag),
			zap.Strings("paths", paths),
			zap.Error(err))
		return err
	}

	r.logger.Debug("loaded", zap.String("tag", tag), zap.Strings("paths", paths))
	return nil
}

// Call invokes the foreign function name with args.
func (r *Runtime) Call(ctx context.Context, name string, args ...value.Value) (value.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateReady {
		return nil, errors.NotInitialized("call")
	}
	return r.caller.Call(ctx, name, args...)
}

// Functions lists the callables currently loaded, when the foreign runtime
// can enumerate them.
func (r *Runtime) Functions() ([]foreign.FunctionInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateReady {
		return nil, errors.NotInitialized("functions")
	}
	in, ok := r.rt.(foreign.Inspector)
	if !ok {
		return nil, errors.New(errors.PhaseRuntime, errors.KindUnsupported).
			Detail("runtime cannot list functions").
			Build()
	}
	return in.Functions(), nil
}

// Destroy stops the foreign runtime. It never fails: a non-zero status is
// logged. Destroy is safe to call before Initialize, after a failed
// Initialize and more than once; the runtime is stopped at most once.
func (r *Runtime) Destroy(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.state
	r.state = stateDestroyed

	switch prev {
	case stateNew, stateDestroyed:
		return
	}

	if status := r.rt.Destroy(ctx); status != foreign.StatusOK {
		r.logger.Warn("destroy returned non-zero status",
			zap.Int("status", int(status)),
			zap.NamedError("cause", lastError(r.rt)))
		return
	}
	r.logger.Debug("runtime destroyed")
}

func lastError(rt foreign.Runtime) error {
	if d, ok := rt.(foreign.Diagnoser); ok {
		return d.LastError()
	}
	return nil
}
