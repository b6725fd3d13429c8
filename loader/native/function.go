package native

import (
	"context"
	"reflect"
	"strconv"

	"github.com/wippyai/polycall/errors"
	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/host"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	datumType   = reflect.TypeOf(host.Datum{})
)

// function is a reflected Go function.
type function struct {
	fn      reflect.Value
	result  reflect.Type
	name    string
	params  []reflect.Type
	info    foreign.FunctionInfo
	withCtx bool
	withErr bool
}

func newFunction(name string, fn any) (*function, error) {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, errors.New(errors.PhaseHost, errors.KindTypeMismatch).
			ValueKind(describe(fn)).
			Detail("handler must be a function").
			Build()
	}

	ft := rv.Type()
	f := &function{
		fn:   rv,
		name: name,
		info: foreign.FunctionInfo{
			Name:     name,
			Language: Tag,
			Variadic: ft.IsVariadic(),
		},
	}

	in := 0
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		f.withCtx = true
		in = 1
	}
	for i := in; i < ft.NumIn(); i++ {
		t := ft.In(i)
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			t = t.Elem()
		}
		tag, typed, ok := tagOf(t)
		if !ok {
			return nil, typeError(t, "unsupported parameter type")
		}
		f.params = append(f.params, t)
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			continue
		}
		f.info.Params = append(f.info.Params, foreign.Param{
			Name:  "p" + strconv.Itoa(len(f.info.Params)),
			Tag:   tag,
			Typed: typed,
		})
	}

	out := ft.NumOut()
	if out > 0 && ft.Out(out-1) == errorType {
		f.withErr = true
		out--
	}
	switch out {
	case 0:
		f.info.Void = true
		f.info.Result = foreign.TagNull
	case 1:
		t := ft.Out(0)
		tag, _, ok := tagOf(t)
		if !ok {
			return nil, typeError(t, "unsupported result type")
		}
		f.result = t
		f.info.Result = tag
	default:
		return nil, typeError(ft, "at most one result besides error")
	}

	return f, nil
}

// tagOf maps a Go type to its tag. typed is false for Datum.
func tagOf(t reflect.Type) (tag foreign.Tag, typed, ok bool) {
	if t == datumType {
		return foreign.TagNull, false, true
	}
	switch t.Kind() {
	case reflect.Bool:
		return foreign.TagBool, true, true
	case reflect.Int8:
		return foreign.TagChar, true, true
	case reflect.Int16:
		return foreign.TagShort, true, true
	case reflect.Int32:
		return foreign.TagInt, true, true
	case reflect.Int64, reflect.Int:
		return foreign.TagLong, true, true
	case reflect.Float32:
		return foreign.TagFloat, true, true
	case reflect.Float64:
		return foreign.TagDouble, true, true
	case reflect.String:
		return foreign.TagString, true, true
	}
	return 0, false, false
}

func (f *function) Info() foreign.FunctionInfo { return f.info }

// Invoke converts args to the Go parameter types and calls the function.
func (f *function) Invoke(ctx context.Context, args []host.Datum) (host.Datum, error) {
	in := make([]reflect.Value, 0, len(args)+1)
	if f.withCtx {
		in = append(in, reflect.ValueOf(ctx))
	}

	fixed := len(f.info.Params)
	for i, d := range args {
		t := f.params[min(i, len(f.params)-1)]
		// the runtime coerces typed fixed parameters; variadic ones are ours
		if i >= fixed {
			if tag, typed, _ := tagOf(t); typed {
				c, ok := host.Coerce(d, tag)
				if !ok {
					return host.Datum{}, errors.TypeMismatch(errors.PhaseCall, errors.ArgPath(f.name, i), d.Tag.String(), tag.String())
				}
				d = c
			}
		}
		in = append(in, toReflect(d, t))
	}

	out := f.fn.Call(in)

	if f.withErr {
		if errv := out[len(out)-1]; !errv.IsNil() {
			return host.Datum{}, errv.Interface().(error)
		}
	}
	if f.result == nil {
		return host.Null(), nil
	}
	return fromReflect(out[0]), nil
}

func toReflect(d host.Datum, t reflect.Type) reflect.Value {
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		v.SetBool(d.Truth())
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		v.SetInt(d.Int64())
	case reflect.Float32, reflect.Float64:
		v.SetFloat(d.Float64())
	case reflect.String:
		v.SetString(d.Text())
	case reflect.Struct:
		v.Set(reflect.ValueOf(d))
	}
	return v
}

func fromReflect(v reflect.Value) host.Datum {
	if v.Type() == datumType {
		return v.Interface().(host.Datum)
	}
	switch v.Kind() {
	case reflect.Bool:
		return host.Bool(v.Bool())
	case reflect.Int8:
		return host.Char(int8(v.Int()))
	case reflect.Int16:
		return host.Short(int16(v.Int()))
	case reflect.Int32:
		return host.Int(int32(v.Int()))
	case reflect.Int64, reflect.Int:
		return host.Long(v.Int())
	case reflect.Float32:
		return host.Float(float32(v.Float()))
	case reflect.Float64:
		return host.Double(v.Float())
	case reflect.String:
		return host.String(v.String())
	}
	return host.Null()
}
