package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/polycall"
	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/host"
	"github.com/wippyai/polycall/plan"
	"github.com/wippyai/polycall/value"
)

// repeated collects a flag given more than once.
type repeated []string

func (r *repeated) String() string { return strings.Join(*r, " ") }

func (r *repeated) Set(s string) error {
	*r = append(*r, s)
	return nil
}

type options struct {
	backend     string
	funcName    string
	planFile    string
	logLevel    string
	logFormat   string
	loads       repeated
	args        repeated
	list        bool
	interactive bool
	strict      bool
}

func main() {
	var o options
	flag.StringVar(&o.backend, "backend", "host", "Runtime backend: host or metacall")
	flag.Var(&o.loads, "load", "Load sources, tag:path[,path] (repeatable)")
	flag.StringVar(&o.funcName, "func", "", "Function to call")
	flag.Var(&o.args, "arg", "Argument as kind:text, e.g. int:5 or str:hi (repeatable)")
	flag.StringVar(&o.planFile, "plan", "", "Run an HCL plan file")
	flag.BoolVar(&o.list, "list", false, "List loaded functions and exit")
	flag.BoolVar(&o.interactive, "i", false, "Interactive mode with TUI")
	flag.BoolVar(&o.strict, "strict", false, "Fail on results with unrecognized tags")
	flag.StringVar(&o.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flag.StringVar(&o.logFormat, "log-format", "console", "Log format: console or json")
	flag.Parse()

	if len(o.loads) == 0 && o.planFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: polycall -load tag:path[,path] [-func name] [-arg kind:text ...]")
		fmt.Fprintln(os.Stderr, "       polycall -load tag:path -list")
		fmt.Fprintln(os.Stderr, "       polycall -load tag:path -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       polycall -plan plan.hcl")
		os.Exit(1)
	}

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options) error {
	ctx := context.Background()

	log, err := newLogger(o.logLevel, o.logFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	backend, err := newBackend(o.backend, log)
	if err != nil {
		return err
	}

	rt := polycall.New(backend, polycall.WithLogger(log), polycall.WithStrictResults(o.strict))
	defer rt.Destroy(ctx)

	if hr, ok := backend.(*host.Runtime); ok {
		defer func() {
			st := hr.Stats()
			log.Debug("handle stats",
				zap.Int("live", st.Live),
				zap.Uint64("created", st.Created),
				zap.Uint64("released", st.Released),
				zap.Uint64("rejected", st.Rejected))
		}()
	}

	if err := rt.Initialize(ctx); err != nil {
		return err
	}

	for _, arg := range o.loads {
		tag, paths, err := parseLoad(arg)
		if err != nil {
			return err
		}
		if err := rt.LoadFromFile(ctx, tag, paths...); err != nil {
			return err
		}
	}

	if o.planFile != "" {
		return runPlan(ctx, rt, o.planFile, log)
	}

	if o.list {
		return listFunctions(rt)
	}

	if o.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(rt, strings.Join(o.loads, " "))
	}

	if o.funcName == "" {
		fmt.Println("Loaded. Use -func to call a function or -list to see them.")
		return nil
	}

	args := make([]value.Value, len(o.args))
	for i, text := range o.args {
		v, err := value.ParseTyped(text)
		if err != nil {
			return fmt.Errorf("arg %d: %w", i, err)
		}
		args[i] = v
	}

	result, err := rt.Call(ctx, o.funcName, args...)
	if err != nil {
		return err
	}
	fmt.Println(value.Format(result))
	return nil
}

// parseLoad splits "tag:path[,path]".
func parseLoad(arg string) (string, []string, error) {
	tag, list, ok := strings.Cut(arg, ":")
	if !ok || tag == "" || list == "" {
		return "", nil, fmt.Errorf("load %q: want tag:path[,path]", arg)
	}
	var paths []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return "", nil, fmt.Errorf("load %q: no paths", arg)
	}
	return tag, paths, nil
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("log format %q: want console or json", format)
	}
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func runPlan(ctx context.Context, rt *polycall.Runtime, path string, log *zap.Logger) error {
	p, err := plan.ParseFile(path)
	if err != nil {
		return err
	}
	results, err := plan.Run(ctx, rt, p, plan.WithLogger(log.Named("plan")))
	for _, r := range results {
		status := "ok  "
		detail := fmt.Sprint(r.Got)
		if !r.Passed() {
			status = "FAIL"
			detail = r.Failure
		}
		fmt.Printf("%s %s(%s): %s\n", status, r.Call.Name, formatArgs(r.Call.Args), detail)
	}
	return err
}

func listFunctions(rt *polycall.Runtime) error {
	fns, err := rt.Functions()
	if err != nil {
		return err
	}
	if len(fns) == 0 {
		fmt.Println("No functions loaded.")
		return nil
	}
	for _, fn := range fns {
		fmt.Printf("  %s  [%s]\n", signature(fn), fn.Language)
	}
	return nil
}

func signature(fn foreign.FunctionInfo) string {
	params := make([]string, 0, len(fn.Params)+1)
	for _, p := range fn.Params {
		params = append(params, p.Name+": "+paramType(p))
	}
	if fn.Variadic {
		params = append(params, "...")
	}
	result := ""
	if !fn.Void {
		result = " -> " + fn.Result.String()
	}
	return fn.Name + "(" + strings.Join(params, ", ") + ")" + result
}

func paramType(p foreign.Param) string {
	if !p.Typed {
		return "any"
	}
	return p.Tag.String()
}

func formatArgs(args []value.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.Format(a)
	}
	return strings.Join(parts, ", ")
}
