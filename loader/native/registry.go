package native

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/wippyai/polycall/errors"
)

// Host is a value whose exported methods become functions. Namespace and
// Register are never exported as functions.
type Host interface {
	Namespace() string
}

// ExplicitRegistrar lets a Host choose function names instead of deriving
// them from method names.
type ExplicitRegistrar interface {
	Register() map[string]any
}

// Registry holds Go functions by namespace and name.
type Registry struct {
	funcs map[string]map[string]*function
	mu    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]map[string]*function),
	}
}

// RegisterHost registers the methods of h under h.Namespace().
func (r *Registry) RegisterHost(h Host) error {
	ns := h.Namespace()
	if ns == "" {
		return errors.InvalidInput(errors.PhaseHost, "namespace cannot be empty")
	}

	handlers := make(map[string]any)
	if er, ok := h.(ExplicitRegistrar); ok {
		for name, fn := range er.Register() {
			handlers[name] = fn
		}
	} else {
		rv := reflect.ValueOf(h)
		rt := rv.Type()
		for i := 0; i < rt.NumMethod(); i++ {
			m := rt.Method(i)
			if !m.IsExported() || m.Name == "Namespace" || m.Name == "Register" {
				continue
			}
			handlers[toSnakeCase(m.Name)] = rv.Method(i).Interface()
		}
	}

	built := make(map[string]*function, len(handlers))
	for name, fn := range handlers {
		f, err := newFunction(name, fn)
		if err != nil {
			return errors.Registration(ns, name, err)
		}
		built[name] = f
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs[ns] == nil {
		r.funcs[ns] = make(map[string]*function)
	}
	for name, f := range built {
		r.funcs[ns][name] = f
	}
	return nil
}

// RegisterFunc registers fn as namespace/name. Registering an existing
// name replaces it.
func (r *Registry) RegisterFunc(namespace, name string, fn any) error {
	if namespace == "" {
		return errors.InvalidInput(errors.PhaseHost, "namespace cannot be empty")
	}
	if name == "" {
		return errors.InvalidInput(errors.PhaseHost, "function name cannot be empty")
	}

	f, err := newFunction(name, fn)
	if err != nil {
		return errors.Registration(namespace, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs[namespace] == nil {
		r.funcs[namespace] = make(map[string]*function)
	}
	r.funcs[namespace][name] = f
	return nil
}

// Namespaces returns the registered namespaces in sorted order.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.funcs))
	for ns := range r.funcs {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// lookup returns the functions of ns sorted by name.
func (r *Registry) lookup(ns string) ([]*function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	funcs, ok := r.funcs[ns]
	if !ok {
		return nil, false
	}
	out := make([]*function, 0, len(funcs))
	for _, f := range funcs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, true
}

// toSnakeCase converts PascalCase to snake_case.
// Handles acronyms: GetHTTPURL -> get_http_url
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}

		end := i + 1
		for end < len(runes) && unicode.IsUpper(runes[end]) {
			end++
		}
		// the last capital of a run starts the next word
		if end > i+1 && end < len(runes) && unicode.IsLower(runes[end]) {
			end--
		}

		if i > 0 {
			b.WriteByte('_')
		}
		for j := i; j < end; j++ {
			b.WriteRune(unicode.ToLower(runes[j]))
		}
		i = end - 1
	}
	return b.String()
}

func typeError(t reflect.Type, detail string) error {
	return errors.New(errors.PhaseHost, errors.KindTypeMismatch).
		ValueKind(t.String()).
		Detail("%s", detail).
		Build()
}

func describe(fn any) string {
	if fn == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", fn)
}
