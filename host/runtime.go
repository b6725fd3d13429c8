package host

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/handle"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithLoader registers l at construction. A duplicate tag panics.
func WithLoader(l Loader) Option {
	return func(r *Runtime) {
		if err := r.Register(l); err != nil {
			panic(err)
		}
	}
}

// WithObserver subscribes o to value handle events.
func WithObserver(o handle.Observer) Option {
	return func(r *Runtime) {
		r.observers = append(r.observers, o)
	}
}

type loaded struct {
	fn  Function
	tag string
}

// Runtime implements foreign.Runtime, foreign.Inspector and
// foreign.Diagnoser. Value, handle and lifecycle methods are safe for
// concurrent use. LastError holds a single slot shared by all goroutines,
// so an operation and the LastError read that explains it must not be
// interleaved with other operations; polycall.Runtime serializes them.
type Runtime struct {
	values    *handle.Table[Datum]
	logger    *zap.Logger
	lastErr   error
	loaders   map[string]Loader
	byName    map[string]int
	funcs     []loaded
	observers []handle.Observer
	mu        sync.RWMutex
	errMu     sync.Mutex
	started   bool
}

var (
	_ foreign.Runtime   = (*Runtime)(nil)
	_ foreign.Inspector = (*Runtime)(nil)
	_ foreign.Diagnoser = (*Runtime)(nil)
)

// New creates a stopped runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		logger:  Logger(),
		loaders: make(map[string]Loader),
		byName:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.values = r.newTable()
	return r
}

func (r *Runtime) newTable() *handle.Table[Datum] {
	t := handle.New[Datum]()
	for _, o := range r.observers {
		t.Subscribe(o)
	}
	return t
}

// Register adds a loader for its tag.
func (r *Runtime) Register(l Loader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag := l.Tag()
	if tag == "" {
		return errors.Registration("loader", "", fmt.Errorf("empty tag"))
	}
	if _, exists := r.loaders[tag]; exists {
		return errors.Registration("loader", tag, fmt.Errorf("tag already registered"))
	}
	r.loaders[tag] = l
	return nil
}

// Tags returns the registered loader tags in sorted order.
func (r *Runtime) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedTags()
}

// Initialize starts every loader implementing Starter. Initializing a
// running runtime is a no-op.
func (r *Runtime) Initialize(ctx context.Context) foreign.Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return foreign.StatusOK
	}

	var running []string
	for _, tag := range r.sortedTags() {
		s, ok := r.loaders[tag].(Starter)
		if !ok {
			continue
		}
		if err := s.Start(ctx); err != nil {
			r.logger.Error("loader start failed", zap.String("tag", tag), zap.Error(err))
			for _, prev := range running {
				if cerr := r.loaders[prev].Close(ctx); cerr != nil {
					err = multierr.Append(err, fmt.Errorf("close %s: %w", prev, cerr))
				}
			}
			r.setErr(errors.InitializationFailed(int(foreign.StatusFailed),
				errors.Wrap(errors.PhaseInit, errors.KindInitialization, err, "start "+tag)))
			return foreign.StatusFailed
		}
		running = append(running, tag)
	}

	if r.values == nil {
		r.values = r.newTable()
	}
	r.started = true
	r.setErr(nil)
	r.logger.Debug("runtime initialized", zap.Strings("loaders", r.sortedTags()))
	return foreign.StatusOK
}

// Destroy closes every loader, drops loaded functions and releases all
// outstanding values. Destroying a stopped runtime is a no-op.
func (r *Runtime) Destroy(ctx context.Context) foreign.Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return foreign.StatusOK
	}
	r.started = false

	var errs error
	for _, tag := range r.sortedTags() {
		if err := r.loaders[tag].Close(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close %s: %w", tag, err))
		}
	}

	if leaked := r.values.Len(); leaked > 0 {
		r.logger.Warn("releasing outstanding values", zap.Int("count", leaked))
	}
	errs = multierr.Append(errs, r.values.Close())
	r.values = nil

	r.funcs = nil
	r.byName = make(map[string]int)

	if errs != nil {
		r.logger.Error("destroy failed", zap.Error(errs))
		r.setErr(errors.Wrap(errors.PhaseRuntime, errors.KindCallFailed, errs, "destroy"))
		return foreign.StatusFailed
	}
	r.setErr(nil)
	r.logger.Debug("runtime destroyed")
	return foreign.StatusOK
}

// LoadFromFile loads paths with the loader registered for tag. Either all
// functions of the load become visible or none do.
func (r *Runtime) LoadFromFile(ctx context.Context, tag string, paths []string) foreign.Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	fail := func(err error) foreign.Status {
		r.logger.Error("load failed", zap.String("tag", tag), zap.Strings("paths", paths), zap.Error(err))
		r.setErr(errors.LoadFailed(tag, paths, int(foreign.StatusFailed), err))
		return foreign.StatusFailed
	}

	if !r.started {
		return fail(errors.NotInitialized("load_from_file"))
	}
	l, ok := r.loaders[tag]
	if !ok {
		return fail(errors.NotFound(errors.PhaseLoad, "loader", tag))
	}

	fns, err := l.Load(ctx, paths)
	if err != nil {
		return fail(err)
	}

	seen := make(map[string]struct{}, len(fns))
	for _, fn := range fns {
		name := fn.Info().Name
		if name == "" {
			return fail(errors.InvalidInput(errors.PhaseLoad, "function with empty name"))
		}
		if _, dup := seen[name]; dup {
			return fail(errors.InvalidInput(errors.PhaseLoad, "function "+name+" defined twice"))
		}
		if i, exists := r.byName[name]; exists {
			return fail(errors.InvalidInput(errors.PhaseLoad,
				"function "+name+" already loaded from "+r.funcs[i].tag))
		}
		seen[name] = struct{}{}
	}

	for _, fn := range fns {
		r.byName[fn.Info().Name] = len(r.funcs)
		r.funcs = append(r.funcs, loaded{fn: fn, tag: tag})
	}

	r.setErr(nil)
	r.logger.Debug("loaded", zap.String("tag", tag), zap.Strings("paths", paths), zap.Int("functions", len(fns)))
	return foreign.StatusOK
}

// Function resolves name to a callable.
func (r *Runtime) Function(name string) foreign.Callable {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byName[name]
	if !ok {
		return foreign.NilCallable
	}
	return foreign.Callable(i + 1)
}

// Functions lists loaded functions in load order.
func (r *Runtime) Functions() []foreign.FunctionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]foreign.FunctionInfo, len(r.funcs))
	for i, l := range r.funcs {
		info := l.fn.Info()
		if info.Language == "" {
			info.Language = l.tag
		}
		infos[i] = info
	}
	return infos
}

// Call invokes fn. It returns the nil handle for void functions and on
// failure; LastError distinguishes the two.
func (r *Runtime) Call(ctx context.Context, fn foreign.Callable, args []foreign.Handle) (ret foreign.Handle) {
	r.mu.RLock()
	started := r.started
	var target Function
	if i := int(fn) - 1; i >= 0 && i < len(r.funcs) {
		target = r.funcs[i].fn
	}
	values := r.values
	r.mu.RUnlock()

	r.setErr(nil)
	if !started {
		r.setErr(errors.NotInitialized("call"))
		return foreign.NilHandle
	}
	if target == nil {
		r.setErr(errors.NotFound(errors.PhaseResolve, "callable", fmt.Sprintf("%d", fn)))
		return foreign.NilHandle
	}

	info := target.Info()
	datums, err := bindArgs(values, info, args)
	if err != nil {
		r.setErr(err)
		return foreign.NilHandle
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("function panicked", zap.String("function", info.Name), zap.Any("panic", p))
			r.setErr(errors.CallFailed(info.Name, fmt.Errorf("panic: %v", p)))
			ret = foreign.NilHandle
		}
	}()

	result, err := target.Invoke(ctx, datums)
	if err != nil {
		r.setErr(errors.CallFailed(info.Name, err))
		return foreign.NilHandle
	}
	if info.Void {
		return foreign.NilHandle
	}

	id, err := values.Insert(result)
	if err != nil {
		r.setErr(errors.CallFailed(info.Name, err))
		return foreign.NilHandle
	}
	return foreign.Handle(id)
}

// bindArgs resolves argument handles and checks them against info.
func bindArgs(values *handle.Table[Datum], info foreign.FunctionInfo, args []foreign.Handle) ([]Datum, error) {
	if len(args) < len(info.Params) || (len(args) > len(info.Params) && !info.Variadic) {
		return nil, errors.InvalidInput(errors.PhaseCall,
			fmt.Sprintf("%s takes %d arguments, got %d", info.Name, len(info.Params), len(args)))
	}

	datums := make([]Datum, len(args))
	for i, h := range args {
		d, ok := values.Get(handle.ID(h))
		if !ok {
			return nil, errors.InvalidData(errors.PhaseCall, errors.ArgPath(info.Name, i), "stale or unknown value handle")
		}
		if i < len(info.Params) && info.Params[i].Typed {
			want := info.Params[i].Tag
			c, ok := Coerce(d, want)
			if !ok {
				return nil, errors.TypeMismatch(errors.PhaseCall, errors.ArgPath(info.Name, i), d.Tag.String(), want.String())
			}
			d = c
		}
		datums[i] = d
	}
	return datums, nil
}

// LastError returns and clears the error recorded by the last operation.
func (r *Runtime) LastError() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	err := r.lastErr
	r.lastErr = nil
	return err
}

func (r *Runtime) setErr(err error) {
	r.errMu.Lock()
	r.lastErr = err
	r.errMu.Unlock()
}

// Stats reports value handle counters.
func (r *Runtime) Stats() handle.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.values == nil {
		return handle.Stats{}
	}
	return r.values.Stats()
}

func (r *Runtime) sortedTags() []string {
	tags := make([]string, 0, len(r.loaders))
	for tag := range r.loaders {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
