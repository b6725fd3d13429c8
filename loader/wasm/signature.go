package wasm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/foreign"
)

// kind is the lowering of one parameter or result.
type kind uint8

const (
	kindI32 kind = iota
	kindI64
	kindF32
	kindF64
	kindBool
	kindChar
	kindS8
	kindU8
	kindS16
	kindU16
	kindU32
	kindU64
	kindString
)

// tag is the runtime tag a kind is exposed as.
func (k kind) tag() foreign.Tag {
	switch k {
	case kindI32, kindU16:
		return foreign.TagInt
	case kindI64, kindU32, kindU64:
		return foreign.TagLong
	case kindF32:
		return foreign.TagFloat
	case kindF64:
		return foreign.TagDouble
	case kindBool:
		return foreign.TagBool
	case kindChar:
		return foreign.TagChar
	case kindS8, kindU8, kindS16:
		return foreign.TagShort
	case kindString:
		return foreign.TagString
	}
	return foreign.TagNull
}

// flat is the number of core values a kind lowers to.
func (k kind) flat() int {
	if k == kindString {
		return 2
	}
	return 1
}

// core is the core value type a kind lowers to. Strings lower to two i32.
func (k kind) core() api.ValueType {
	switch k {
	case kindI64, kindU64:
		return api.ValueTypeI64
	case kindF32:
		return api.ValueTypeF32
	case kindF64:
		return api.ValueTypeF64
	}
	return api.ValueTypeI32
}

// signature is the typed view of an export.
type signature struct {
	names   []string
	params  []kind
	results []kind
}

func (s *signature) void() bool { return len(s.results) == 0 }

// coreSignature types an export from its core definition. ok is false for
// signatures that cannot be exposed.
func coreSignature(def api.FunctionDefinition) (*signature, bool) {
	sig := &signature{}
	for i, vt := range def.ParamTypes() {
		k, ok := coreKind(vt)
		if !ok {
			return nil, false
		}
		sig.params = append(sig.params, k)
		name := fmt.Sprintf("p%d", i)
		if names := def.ParamNames(); i < len(names) && names[i] != "" {
			name = names[i]
		}
		sig.names = append(sig.names, name)
	}

	results := def.ResultTypes()
	if len(results) > 1 {
		return nil, false
	}
	for _, vt := range results {
		k, ok := coreKind(vt)
		if !ok {
			return nil, false
		}
		sig.results = append(sig.results, k)
	}
	return sig, true
}

func coreKind(vt api.ValueType) (kind, bool) {
	switch vt {
	case api.ValueTypeI32:
		return kindI32, true
	case api.ValueTypeI64:
		return kindI64, true
	case api.ValueTypeF32:
		return kindF32, true
	case api.ValueTypeF64:
		return kindF64, true
	}
	return 0, false
}

// matchesCore reports whether sig lowers to the core definition. A string
// result is returned through a return area pointer.
func (s *signature) matchesCore(def api.FunctionDefinition) bool {
	var params []api.ValueType
	for _, k := range s.params {
		for i := 0; i < k.flat(); i++ {
			params = append(params, k.core())
		}
	}
	if !equalTypes(params, def.ParamTypes()) {
		return false
	}

	var results []api.ValueType
	for _, k := range s.results {
		results = append(results, k.core())
	}
	return equalTypes(results, def.ResultTypes())
}

func equalTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var funcPattern = regexp.MustCompile(`(?:export\s+)?([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// parseWIT extracts function signatures from WIT text.
// Pattern: [export] name: func(params) -> result;
func parseWIT(text string) (map[string]*signature, error) {
	sigs := make(map[string]*signature)

	for _, match := range funcPattern.FindAllStringSubmatch(text, -1) {
		name := match[1]
		sig := &signature{}

		for i, p := range splitParams(strings.TrimSpace(match[2])) {
			pname, typ := fmt.Sprintf("p%d", i), p
			if idx := strings.LastIndex(p, ":"); idx != -1 {
				pname, typ = strings.TrimSpace(p[:idx]), strings.TrimSpace(p[idx+1:])
			}
			k, err := witKind(typ)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, name+": parameter "+pname)
			}
			sig.params = append(sig.params, k)
			sig.names = append(sig.names, pname)
		}

		result := strings.TrimSpace(match[3])
		if result != "" && result != "()" {
			k, err := witKind(result)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, name+": result")
			}
			sig.results = []kind{k}
		}

		sigs[name] = sig
	}

	if len(sigs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "no functions found in WIT text")
	}
	return sigs, nil
}

// witKind maps a WIT type to its lowering. Only scalar types and strings
// are supported.
func witKind(s string) (kind, error) {
	t, err := wit.ParseType(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	switch t.(type) {
	case wit.Bool:
		return kindBool, nil
	case wit.Char:
		return kindChar, nil
	case wit.S8:
		return kindS8, nil
	case wit.U8:
		return kindU8, nil
	case wit.S16:
		return kindS16, nil
	case wit.U16:
		return kindU16, nil
	case wit.S32:
		return kindI32, nil
	case wit.U32:
		return kindU32, nil
	case wit.S64:
		return kindI64, nil
	case wit.U64:
		return kindU64, nil
	case wit.F32:
		return kindF32, nil
	case wit.F64:
		return kindF64, nil
	case wit.String:
		return kindString, nil
	}
	return 0, fmt.Errorf("unsupported type %s", s)
}

// splitParams splits a parameter list, handling nested parens and angle
// brackets.
func splitParams(s string) []string {
	var (
		out   []string
		cur   strings.Builder
		depth int
	)
	for _, ch := range s {
		switch ch {
		case '(', '<':
			depth++
		case ')', '>':
			depth--
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(cur.String()); str != "" {
					out = append(out, str)
				}
				cur.Reset()
				continue
			}
		}
		cur.WriteRune(ch)
	}
	if str := strings.TrimSpace(cur.String()); str != "" {
		out = append(out, str)
	}
	return out
}
