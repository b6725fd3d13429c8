package host

import (
	"go.uber.org/zap"

	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/handle"
)

func (r *Runtime) table() *handle.Table[Datum] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values
}

func (r *Runtime) create(d Datum) foreign.Handle {
	t := r.table()
	if t == nil {
		return foreign.NilHandle
	}
	id, err := t.Insert(d)
	if err != nil {
		r.logger.Debug("value not created", zap.Stringer("datum", d), zap.Error(err))
		return foreign.NilHandle
	}
	return foreign.Handle(id)
}

// datum returns the value behind h, or a null datum for unknown handles.
func (r *Runtime) datum(h foreign.Handle) Datum {
	t := r.table()
	if t == nil {
		return Null()
	}
	d, ok := t.Get(handle.ID(h))
	if !ok {
		r.logger.Debug("read of unknown handle", zap.Uint64("handle", uint64(h)))
		return Null()
	}
	return d
}

func (r *Runtime) CreateShort(v int16) foreign.Handle    { return r.create(Short(v)) }
func (r *Runtime) CreateInt(v int32) foreign.Handle      { return r.create(Int(v)) }
func (r *Runtime) CreateLong(v int64) foreign.Handle     { return r.create(Long(v)) }
func (r *Runtime) CreateFloat(v float32) foreign.Handle  { return r.create(Float(v)) }
func (r *Runtime) CreateDouble(v float64) foreign.Handle { return r.create(Double(v)) }
func (r *Runtime) CreateBool(v bool) foreign.Handle      { return r.create(Bool(v)) }
func (r *Runtime) CreateChar(v int8) foreign.Handle      { return r.create(Char(v)) }
func (r *Runtime) CreateString(s string) foreign.Handle  { return r.create(String(s)) }

// DestroyValue releases h. Releasing the nil handle is a no-op; releasing
// a stale handle is logged and ignored.
func (r *Runtime) DestroyValue(h foreign.Handle) {
	if h == foreign.NilHandle {
		return
	}
	t := r.table()
	if t == nil {
		return
	}
	if _, ok := t.Release(handle.ID(h)); !ok {
		r.logger.Warn("release of unknown handle", zap.Uint64("handle", uint64(h)))
	}
}

// ValueID reports the tag of h. Unknown handles report TagNull.
func (r *Runtime) ValueID(h foreign.Handle) foreign.Tag {
	return r.datum(h).Tag
}

func (r *Runtime) ToShort(h foreign.Handle) int16    { return int16(r.datum(h).Int64()) }
func (r *Runtime) ToInt(h foreign.Handle) int32      { return int32(r.datum(h).Int64()) }
func (r *Runtime) ToLong(h foreign.Handle) int64     { return r.datum(h).Int64() }
func (r *Runtime) ToFloat(h foreign.Handle) float32  { return float32(r.datum(h).Float64()) }
func (r *Runtime) ToDouble(h foreign.Handle) float64 { return r.datum(h).Float64() }
func (r *Runtime) ToBool(h foreign.Handle) bool      { return r.datum(h).Truth() }
func (r *Runtime) ToChar(h foreign.Handle) int8      { return int8(r.datum(h).Int64()) }
func (r *Runtime) ToString(h foreign.Handle) string  { return r.datum(h).Text() }
