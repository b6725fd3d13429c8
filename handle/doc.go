// Package handle provides a generation-checked handle table.
//
// A Table maps small integer IDs to Go values. IDs are never zero, and a
// released slot is reused only with a new generation, so a stale or
// doubly released ID is rejected instead of aliasing a newer value:
//
//	table := handle.New[Datum]()
//
//	id, err := table.Insert(d)
//	d, ok := table.Get(id)
//	d, ok = table.Release(id) // ok is false on the second release
//
// # Observers
//
// Observers receive Created, Released and Rejected events after the
// table lock is dropped, so an observer may call back into the table:
//
//	unsubscribe := table.Subscribe(handle.ObserverFunc(func(e handle.Event) {
//	    log.Printf("%s %d", e.Type, e.ID)
//	}))
//	defer unsubscribe()
//
// # Cleanup
//
// Values implementing io.Closer are closed when released and when the
// table is closed. Close reports every close error.
package handle
