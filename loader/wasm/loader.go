package wasm

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/host"
)

// Tag is the language tag of the wasm loader.
const Tag = "wasm"

// exports that are part of the module ABI rather than callable functions
var reserved = map[string]bool{
	"_start":       true,
	"_initialize":  true,
	cabiRealloc:    true,
	legacyRealloc:  true,
	"cabi_free":    true,
	"memory":       true,
	"__heap_base":  true,
	"__data_end":   true,
	"__stack_low":  true,
	"__stack_high": true,
}

// Config holds loader settings.
type Config struct {
	Stdout io.Writer
	Stderr io.Writer

	// MemoryLimitPages caps guest memory in 64KiB pages. 0 keeps the
	// wazero default.
	MemoryLimitPages uint32
}

// Option configures a Loader.
type Option func(*Loader)

// WithMemoryLimitPages caps guest memory per module.
func WithMemoryLimitPages(pages uint32) Option {
	return func(l *Loader) { l.cfg.MemoryLimitPages = pages }
}

// WithStdout routes guest stdout to w.
func WithStdout(w io.Writer) Option {
	return func(l *Loader) { l.cfg.Stdout = w }
}

// WithStderr routes guest stderr to w.
func WithStderr(w io.Writer) Option {
	return func(l *Loader) { l.cfg.Stderr = w }
}

// WithLogger sets the loader logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}

// Loader compiles and instantiates modules in one wazero runtime.
type Loader struct {
	runtime wazero.Runtime
	logger  *zap.Logger
	cfg     Config
	mu      sync.Mutex
}

// New creates a loader. The wazero runtime is created on Start or on the
// first Load.
func New(opts ...Option) *Loader {
	l := &Loader{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Tag() string { return Tag }

// Start creates the wazero runtime and instantiates WASI.
func (l *Loader) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.start(ctx)
}

func (l *Loader) start(ctx context.Context) error {
	if l.runtime != nil {
		return nil
	}

	rcfg := wazero.NewRuntimeConfig()
	if l.cfg.MemoryLimitPages > 0 {
		rcfg = rcfg.WithMemoryLimitPages(l.cfg.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, rcfg)

	if _, err := instantiateWASI(ctx, r); err != nil {
		_ = r.Close(ctx)
		return errors.Wrap(errors.PhaseInit, errors.KindInitialization, err, "instantiate WASI")
	}
	l.runtime = r
	l.logger.Debug("wasm runtime started", zap.Uint32("memory_limit_pages", l.cfg.MemoryLimitPages))
	return nil
}

// Load compiles and instantiates every .wasm file in paths. A module that
// fails leaves no instance behind.
func (l *Loader) Load(ctx context.Context, paths []string) ([]host.Function, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(paths) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "no module path given")
	}
	if err := l.start(ctx); err != nil {
		return nil, err
	}

	var (
		out       []host.Function
		instances []*instance
	)
	for _, path := range paths {
		fns, inst, err := l.loadModule(ctx, path)
		if err != nil {
			for _, i := range instances {
				_ = i.mod.Close(ctx)
			}
			return nil, err
		}
		instances = append(instances, inst)
		out = append(out, fns...)
	}
	return out, nil
}

func (l *Loader) loadModule(ctx context.Context, path string) ([]host.Function, *instance, error) {
	if filepath.Ext(path) != ".wasm" {
		return nil, nil, errors.InvalidInput(errors.PhaseLoad, path+" is not a .wasm file")
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	sigs, err := readSidecar(path)
	if err != nil {
		return nil, nil, err
	}

	compiled, err := l.runtime.CompileModule(ctx, code)
	if err != nil {
		return nil, nil, errors.ParseFailed(path, err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName("").
		WithStartFunctions("_initialize")
	if l.cfg.Stdout != nil {
		modCfg = modCfg.WithStdout(l.cfg.Stdout)
	}
	if l.cfg.Stderr != nil {
		modCfg = modCfg.WithStderr(l.cfg.Stderr)
	}

	mod, err := l.runtime.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("instantiate %s: %w", path, err)
	}
	inst := newInstance(mod, path)

	defs := compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	var fns []host.Function
	for _, name := range names {
		if reserved[name] || strings.HasPrefix(name, postReturnName) {
			continue
		}
		def := defs[name]

		sig, typed := sigs[name]
		if typed {
			if !sig.matchesCore(def) {
				_ = mod.Close(ctx)
				return nil, nil, errors.InvalidData(errors.PhaseLoad, []string{path, name},
					"WIT signature does not match the core export")
			}
		} else {
			var ok bool
			if sig, ok = coreSignature(def); !ok {
				l.logger.Debug("skipping export", zap.String("module", path), zap.String("export", name))
				continue
			}
		}
		fns = append(fns, newFunction(inst, name, sig))
	}

	for name := range sigs {
		if _, ok := defs[name]; !ok {
			_ = mod.Close(ctx)
			return nil, nil, errors.NotFound(errors.PhaseLoad, "export", name)
		}
	}

	l.logger.Debug("module loaded", zap.String("path", path), zap.Int("functions", len(fns)), zap.Bool("wit", sigs != nil))
	return fns, inst, nil
}

// readSidecar parses the .wit file next to path, if any.
func readSidecar(path string) (map[string]*signature, error) {
	witPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".wit"
	text, err := os.ReadFile(witPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sigs, err := parseWIT(string(text))
	if err != nil {
		return nil, errors.ParseFailed(witPath, err)
	}
	return sigs, nil
}

// Close closes the wazero runtime and every module in it.
func (l *Loader) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.runtime == nil {
		return nil
	}
	err := l.runtime.Close(ctx)
	l.runtime = nil
	return err
}
