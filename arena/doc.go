// Package arena provides generational handle arenas for the scheduler tables.
//
// An Arena maps stable handles to values. Handles carry a generation tag, so
// a handle to a removed entry stays detectably stale even after its slot has
// been reused:
//
//	a := arena.New[string]()
//
//	h := a.Insert("value")
//	v, ok := a.Get(h)    // "value", true
//	v, ok = a.Remove(h)  // "value", true
//	_, ok = a.Get(h)     // false, and still false after the slot is reused
//
// The zero Handle is the nil sentinel. It is never allocated and fails every
// lookup.
//
// # Leasing
//
// The executor must not hold an arena entry while resuming it, because the
// resumption may itself insert into the same arena. Take vacates an entry but
// keeps its slot reserved; Restore puts the value back under the original
// handle, and Release frees the slot instead:
//
//	v, ok := a.Take(h)  // entry absent to lookups, slot not reusable
//	...                 // run code that may Insert
//	a.Restore(h, v)     // or a.Release(h) if the value is finished
//
// Arenas are not safe for concurrent use; the executor is single-threaded.
package arena
