package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/handle"
	"github.com/wippyai/polycall/host"
	"github.com/wippyai/polycall/loader/hclfunc"
	"github.com/wippyai/polycall/loader/mock"
	"github.com/wippyai/polycall/loader/native"
	"github.com/wippyai/polycall/loader/wasm"
	"github.com/wippyai/polycall/metacall"
)

// demoHost backs the "demo" namespace of the go loader.
type demoHost struct{}

func (demoHost) Namespace() string { return "demo" }

func (demoHost) Add(a, b float64) float64 { return a + b }

func (demoHost) Greet(name string) string { return "Hello, " + name }

func (demoHost) Repeat(s string, n int32) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("negative count %d", n)
	}
	return strings.Repeat(s, int(n)), nil
}

func builtins() (*native.Registry, error) {
	reg := native.NewRegistry()
	if err := reg.RegisterHost(demoHost{}); err != nil {
		return nil, err
	}
	for name, fn := range map[string]any{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"trim":  strings.TrimSpace,
	} {
		if err := reg.RegisterFunc("strings", name, fn); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func newBackend(name string, log *zap.Logger) (foreign.Runtime, error) {
	switch name {
	case "host":
		reg, err := builtins()
		if err != nil {
			return nil, err
		}
		return host.New(
			host.WithLogger(log.Named("host")),
			host.WithLoader(mock.New()),
			host.WithLoader(native.New(reg)),
			host.WithLoader(hclfunc.New(hclfunc.WithLogger(log.Named("hcl")))),
			host.WithLoader(wasm.New(
				wasm.WithLogger(log.Named("wasm")),
				wasm.WithStdout(os.Stdout),
				wasm.WithStderr(os.Stderr),
			)),
			host.WithObserver(handleTracer(log.Named("handle"))),
		), nil
	case "metacall":
		return metacall.New(metacall.WithLogger(log.Named("metacall")))
	default:
		return nil, fmt.Errorf("unknown backend %q (want host or metacall)", name)
	}
}

func handleTracer(log *zap.Logger) handle.Observer {
	return handle.ObserverFunc(func(e handle.Event) {
		if ce := log.Check(zap.DebugLevel, "handle "+e.Type.String()); ce != nil {
			ce.Write(zap.Uint64("id", uint64(e.ID)), zap.Any("value", e.Value))
		}
	})
}
