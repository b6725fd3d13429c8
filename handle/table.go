package handle

import (
	"errors"
	"io"
	"sync"

	"go.uber.org/multierr"
)

var (
	// ErrClosed is returned by Insert after Close.
	ErrClosed = errors.New("handle table closed")

	// ErrFull is returned by Insert when every slot is live.
	ErrFull = errors.New("handle table full")
)

type entry[T any] struct {
	value T
	gen   uint32
	live  bool
}

type subscription struct {
	o  Observer
	id uint64
}

// Table stores values of type T behind IDs. It is safe for concurrent use.
type Table[T any] struct {
	entries   []entry[T]
	free      []uint32
	observers []subscription
	stats     Stats
	nextSub   uint64
	mu        sync.Mutex
	obsMu     sync.RWMutex
	closed    bool
}

// New creates an empty table.
func New[T any]() *Table[T] {
	return &Table[T]{
		entries: make([]entry[T], 0, 64),
		free:    make([]uint32, 0, 16),
	}
}

// Insert stores v and returns its ID.
func (t *Table[T]) Insert(v T) (ID, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return Nil, ErrClosed
	}

	var slot uint32
	if n := len(t.free); n > 0 {
		slot = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		if len(t.entries) >= maxSlots {
			t.mu.Unlock()
			return Nil, ErrFull
		}
		t.entries = append(t.entries, entry[T]{})
		slot = uint32(len(t.entries) - 1)
	}

	e := &t.entries[slot]
	e.value = v
	e.live = true
	id := makeID(slot, e.gen)

	t.stats.Live++
	t.stats.Created++
	t.mu.Unlock()

	t.notify(Event{Type: EventCreated, ID: id, Value: v})
	return id, nil
}

// Get returns the value behind id.
func (t *Table[T]) Get(id ID) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(id)
	if e == nil {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Release removes id and returns its value. Releasing an ID that is not
// live returns false and records a rejection.
func (t *Table[T]) Release(id ID) (T, bool) {
	v, ok, _ := t.release(id)
	return v, ok
}

// ReleaseErr is Release that also reports the error from closing the value.
func (t *Table[T]) ReleaseErr(id ID) (bool, error) {
	_, ok, err := t.release(id)
	return ok, err
}

func (t *Table[T]) release(id ID) (T, bool, error) {
	var zero T

	t.mu.Lock()
	e := t.lookup(id)
	if e == nil {
		t.stats.Rejected++
		t.mu.Unlock()
		t.notify(Event{Type: EventRejected, ID: id})
		return zero, false, nil
	}

	v := e.value
	e.value = zero
	e.live = false
	e.gen = (e.gen + 1) & genMask
	slot, _ := id.slot()
	t.free = append(t.free, slot)
	t.stats.Live--
	t.stats.Released++
	t.mu.Unlock()

	err := closeValue(v)
	t.notify(Event{Type: EventReleased, ID: id, Value: v})
	return v, true, err
}

// lookup returns the live entry for id. Caller holds mu.
func (t *Table[T]) lookup(id ID) *entry[T] {
	slot, ok := id.slot()
	if !ok || int(slot) >= len(t.entries) {
		return nil
	}
	e := &t.entries[slot]
	if !e.live || e.gen != id.generation() {
		return nil
	}
	return e
}

// Len returns the number of live values.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.Live
}

// Stats returns a snapshot of the counters.
func (t *Table[T]) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Each calls fn for live values in slot order until fn returns false.
// fn must not modify the table.
func (t *Table[T]) Each(fn func(ID, T) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		e := &t.entries[i]
		if !e.live {
			continue
		}
		if !fn(makeID(uint32(i), e.gen), e.value) {
			return
		}
	}
}

// Subscribe registers o and returns a function that removes it.
func (t *Table[T]) Subscribe(o Observer) (unsubscribe func()) {
	t.obsMu.Lock()
	t.nextSub++
	id := t.nextSub
	t.observers = append(t.observers, subscription{id: id, o: o})
	t.obsMu.Unlock()

	return func() {
		t.obsMu.Lock()
		defer t.obsMu.Unlock()
		for i, s := range t.observers {
			if s.id == id {
				t.observers = append(t.observers[:i], t.observers[i+1:]...)
				return
			}
		}
	}
}

// Clear releases every live value. The table stays usable.
func (t *Table[T]) Clear() error {
	var ids []ID
	t.Each(func(id ID, _ T) bool {
		ids = append(ids, id)
		return true
	})

	var errs error
	for _, id := range ids {
		_, err := t.ReleaseErr(id)
		errs = multierr.Append(errs, err)
	}
	return errs
}

// Close releases every live value and rejects further inserts. Close is
// idempotent.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	return t.Clear()
}

func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, s := range t.observers {
		s.o.OnHandleEvent(e)
	}
}

func closeValue(v any) error {
	if c, ok := v.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
