package wasm

import (
	"context"
	"fmt"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/host"
)

const (
	cabiRealloc    = "cabi_realloc"
	legacyRealloc  = "canonical_abi_realloc"
	postReturnName = "cabi_post_"
)

// instance is one instantiated module. Calls into it are serialized.
type instance struct {
	mod     api.Module
	realloc api.Function
	path    string
	mu      sync.Mutex
}

func newInstance(mod api.Module, path string) *instance {
	inst := &instance{mod: mod, path: path}
	if fn := mod.ExportedFunction(cabiRealloc); fn != nil {
		inst.realloc = fn
	} else if fn := mod.ExportedFunction(legacyRealloc); fn != nil {
		inst.realloc = fn
	}
	return inst
}

// alloc reserves size bytes in guest memory.
func (i *instance) alloc(ctx context.Context, size, align uint32) (uint32, error) {
	if i.realloc == nil {
		return 0, fmt.Errorf("%s exports no %s", i.path, cabiRealloc)
	}
	res, err := i.realloc.Call(ctx, 0, 0, uint64(align), uint64(size))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cabiRealloc, err)
	}
	return api.DecodeU32(res[0]), nil
}

// function is an export bound to its instance.
type function struct {
	inst *instance
	fn   api.Function
	post api.Function
	sig  *signature
	info foreign.FunctionInfo
}

func newFunction(inst *instance, name string, sig *signature) *function {
	f := &function{
		inst: inst,
		fn:   inst.mod.ExportedFunction(name),
		post: inst.mod.ExportedFunction(postReturnName + name),
		sig:  sig,
		info: foreign.FunctionInfo{
			Name:     name,
			Language: Tag,
			Result:   foreign.TagNull,
			Void:     sig.void(),
		},
	}
	for i, k := range sig.params {
		f.info.Params = append(f.info.Params, foreign.Param{Name: sig.names[i], Tag: k.tag(), Typed: true})
	}
	if !sig.void() {
		f.info.Result = sig.results[0].tag()
	}
	return f
}

func (f *function) Info() foreign.FunctionInfo { return f.info }

// Invoke lowers args, calls the export and lifts its result.
func (f *function) Invoke(ctx context.Context, args []host.Datum) (host.Datum, error) {
	f.inst.mu.Lock()
	defer f.inst.mu.Unlock()

	stack := make([]uint64, 0, len(args)+1)
	for i, k := range f.sig.params {
		lowered, err := f.lower(ctx, k, args[i])
		if err != nil {
			return host.Datum{}, fmt.Errorf("argument %d: %w", i, err)
		}
		stack = append(stack, lowered...)
	}

	res, err := f.fn.Call(ctx, stack...)
	if err != nil {
		return host.Datum{}, err
	}
	if f.sig.void() {
		return host.Null(), nil
	}

	d, err := f.lift(f.sig.results[0], res[0])
	if f.post != nil {
		if _, perr := f.post.Call(ctx, res...); perr != nil && err == nil {
			err = fmt.Errorf("post-return: %w", perr)
		}
	}
	return d, err
}

func (f *function) lower(ctx context.Context, k kind, d host.Datum) ([]uint64, error) {
	switch k {
	case kindI32, kindS8, kindU8, kindS16, kindU16, kindU32, kindBool:
		return []uint64{api.EncodeI32(int32(d.Int64()))}, nil
	case kindChar:
		return []uint64{api.EncodeU32(uint32(uint8(d.I)))}, nil
	case kindI64, kindU64:
		return []uint64{api.EncodeI64(d.Int64())}, nil
	case kindF32:
		return []uint64{api.EncodeF32(float32(d.Float64()))}, nil
	case kindF64:
		return []uint64{api.EncodeF64(d.Float64())}, nil
	case kindString:
		ptr, err := f.writeString(ctx, d.S)
		if err != nil {
			return nil, err
		}
		return []uint64{api.EncodeU32(ptr), api.EncodeU32(uint32(len(d.S)))}, nil
	}
	return nil, fmt.Errorf("cannot lower kind %d", k)
}

func (f *function) writeString(ctx context.Context, s string) (uint32, error) {
	if len(s) == 0 {
		return 0, nil
	}
	if uint64(len(s)) > math.MaxUint32 {
		return 0, fmt.Errorf("string of %d bytes exceeds guest address space", len(s))
	}
	ptr, err := f.inst.alloc(ctx, uint32(len(s)), 1)
	if err != nil {
		return 0, err
	}
	mem := f.inst.mod.Memory()
	if mem == nil || !mem.WriteString(ptr, s) {
		return 0, fmt.Errorf("write of %d bytes at %#x out of range", len(s), ptr)
	}
	return ptr, nil
}

func (f *function) lift(k kind, raw uint64) (host.Datum, error) {
	switch k {
	case kindI32:
		return host.Int(api.DecodeI32(raw)), nil
	case kindS8:
		return host.Short(int16(int8(raw))), nil
	case kindU8:
		return host.Short(int16(uint8(raw))), nil
	case kindS16:
		return host.Short(int16(raw)), nil
	case kindU16:
		return host.Int(int32(uint16(raw))), nil
	case kindU32:
		return host.Long(int64(api.DecodeU32(raw))), nil
	case kindI64, kindU64:
		return host.Long(int64(raw)), nil
	case kindF32:
		return host.Float(api.DecodeF32(raw)), nil
	case kindF64:
		return host.Double(api.DecodeF64(raw)), nil
	case kindBool:
		return host.Bool(uint32(raw) != 0), nil
	case kindChar:
		r := api.DecodeU32(raw)
		if r > 0xFF {
			return host.Datum{}, fmt.Errorf("char U+%04X does not fit in one byte", r)
		}
		return host.Char(int8(uint8(r))), nil
	case kindString:
		return f.readString(api.DecodeU32(raw))
	}
	return host.Datum{}, fmt.Errorf("cannot lift kind %d", k)
}

// readString reads a (ptr, len) pair from the return area at retptr.
func (f *function) readString(retptr uint32) (host.Datum, error) {
	mem := f.inst.mod.Memory()
	if mem == nil {
		return host.Datum{}, fmt.Errorf("module has no memory")
	}
	ptr, ok1 := mem.ReadUint32Le(retptr)
	n, ok2 := mem.ReadUint32Le(retptr + 4)
	if !ok1 || !ok2 {
		return host.Datum{}, fmt.Errorf("return area %#x out of range", retptr)
	}
	b, ok := mem.Read(ptr, n)
	if !ok {
		return host.Datum{}, fmt.Errorf("string at %#x+%d out of range", ptr, n)
	}
	if !utf8.Valid(b) {
		return host.Datum{}, fmt.Errorf("string at %#x is not valid UTF-8", ptr)
	}
	return host.String(string(b)), nil
}
