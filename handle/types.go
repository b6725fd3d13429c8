package handle

// ID refers to a value in a Table. IDs fit in a uintptr: the low slotBits
// hold the slot number plus one, the bits above the slot generation. That
// is 32 and 32 bits on 64-bit platforms, 20 and 12 on 32-bit ones. The
// zero ID is invalid.
type ID uint64

// Nil is the invalid ID.
const Nil ID = 0

const (
	idBits   = 32 << (^uintptr(0) >> 63)
	slotBits = 20 + 12*(idBits/64)
	genBits  = idBits - slotBits

	slotMask = 1<<slotBits - 1
	genMask  = 1<<genBits - 1

	// maxSlots is the table capacity; slot+1 must fit in slotBits.
	maxSlots = slotMask
)

func makeID(slot, gen uint32) ID {
	return ID(gen&genMask)<<slotBits | ID(slot+1)
}

func (id ID) slot() (uint32, bool) {
	s := uint32(uint64(id) & slotMask)
	if s == 0 {
		return 0, false
	}
	return s - 1, true
}

func (id ID) generation() uint32 {
	return uint32(uint64(id)>>slotBits) & genMask
}

// EventType classifies lifecycle events.
type EventType uint8

const (
	EventCreated EventType = iota
	EventReleased

	// EventRejected is sent when Release is called with an ID that is
	// not live: never issued, already released or issued before a reuse.
	EventRejected
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventReleased:
		return "released"
	case EventRejected:
		return "rejected"
	}
	return "unknown"
}

// Event describes one lifecycle transition. Value is the zero value for
// EventRejected.
type Event struct {
	Value any
	ID    ID
	Type  EventType
}

// Observer receives lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnHandleEvent(e Event) { f(e) }

// Stats counts table activity since creation.
type Stats struct {
	Live     int
	Created  uint64
	Released uint64
	Rejected uint64
}
