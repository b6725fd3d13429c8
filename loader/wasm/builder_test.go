package wasm

import (
	"encoding/binary"
	"math"
)

// Minimal core module encoder for tests.

const (
	i32 byte = 0x7f
	i64 byte = 0x7e
	f32 byte = 0x7d
	f64 byte = 0x7c
)

type testFunc struct {
	name    string
	params  []byte
	results []byte
	body    []byte
}

type dataSegment struct {
	bytes  []byte
	offset int32
}

type testModule struct {
	funcs []testFunc
	data  []dataSegment

	// heap > 0 adds a bump allocator exported as cabi_realloc starting at
	// heap, plus an exported memory.
	heap   int32
	memory bool
}

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

func sleb(v int32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func vec(items ...[]byte) []byte {
	out := uleb(uint32(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func name(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func section(id byte, content []byte) []byte {
	return append(append([]byte{id}, uleb(uint32(len(content)))...), content...)
}

// instruction helpers
func localGet(i uint32) []byte { return append([]byte{0x20}, uleb(i)...) }
func i32Const(v int32) []byte  { return append([]byte{0x41}, sleb(v)...) }
func i32Store() []byte         { return []byte{0x36, 0x02, 0x00} }
func f64Const(v float64) []byte {
	b := make([]byte, 9)
	b[0] = 0x44
	binary.LittleEndian.PutUint64(b[1:], math.Float64bits(v))
	return b
}

func ops(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func (m testModule) bytes() []byte {
	funcs := m.funcs
	if m.heap > 0 {
		funcs = append(funcs[:len(funcs):len(funcs)], testFunc{
			name:    "cabi_realloc",
			params:  []byte{i32, i32, i32, i32},
			results: []byte{i32},
			// old := heap; heap += size; return old
			body: ops([]byte{0x23, 0x00, 0x23, 0x00}, localGet(3), []byte{0x6a, 0x24, 0x00}),
		})
	}

	var types, indices, exports, codes [][]byte
	for i, f := range funcs {
		types = append(types, ops([]byte{0x60}, vec(bytesOf(f.params)...), vec(bytesOf(f.results)...)))
		indices = append(indices, uleb(uint32(i)))
		exports = append(exports, ops(name(f.name), []byte{0x00}, uleb(uint32(i))))
		body := ops([]byte{0x00}, f.body, []byte{0x0b})
		codes = append(codes, append(uleb(uint32(len(body))), body...))
	}

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = append(out, section(1, vec(types...))...)
	out = append(out, section(3, vec(indices...))...)
	if m.memory || m.heap > 0 {
		out = append(out, section(5, vec([]byte{0x00, 0x01}))...)
		exports = append(exports, ops(name("memory"), []byte{0x02, 0x00}))
	}
	if m.heap > 0 {
		out = append(out, section(6, vec(ops([]byte{i32, 0x01}, i32Const(m.heap), []byte{0x0b})))...)
	}
	out = append(out, section(7, vec(exports...))...)
	out = append(out, section(10, vec(codes...))...)
	if len(m.data) > 0 {
		var segs [][]byte
		for _, d := range m.data {
			segs = append(segs, ops([]byte{0x00}, i32Const(d.offset), []byte{0x0b}, uleb(uint32(len(d.bytes))), d.bytes))
		}
		out = append(out, section(11, vec(segs...))...)
	}
	return out
}

func bytesOf(types []byte) [][]byte {
	out := make([][]byte, len(types))
	for i, t := range types {
		out[i] = []byte{t}
	}
	return out
}
