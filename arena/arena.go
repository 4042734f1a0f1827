package arena

import "fmt"

// Handle is an opaque, generation-checked reference to an arena entry.
// The zero Handle is the nil sentinel and is never allocated.
type Handle struct {
	index uint32
	gen   uint32
}

// Nil is the sentinel handle. It fails every lookup.
var Nil Handle

// IsNil reports whether h is the nil sentinel.
func (h Handle) IsNil() bool {
	return h.gen == 0
}

// String formats the handle as index/generation for diagnostics.
func (h Handle) String() string {
	if h.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%d/%d", h.index, h.gen)
}

type slotState uint8

const (
	slotVacant slotState = iota
	slotOccupied
	slotLeased
)

type slot[T any] struct {
	value T
	gen   uint32
	state slotState
}

// Arena is a generational handle table.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// New creates an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{
		slots: make([]slot[T], 0, 16),
		free:  make([]uint32, 0, 8),
	}
}

// Insert stores a value and returns its handle.
func (a *Arena[T]) Insert(value T) Handle {
	a.live++

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.gen++
		s.state = slotOccupied
		s.value = value
		return Handle{index: idx, gen: s.gen}
	}

	a.slots = append(a.slots, slot[T]{value: value, gen: 1, state: slotOccupied})
	return Handle{index: uint32(len(a.slots) - 1), gen: 1}
}

func (a *Arena[T]) lookup(h Handle, want slotState) *slot[T] {
	if h.IsNil() || int(h.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.index]
	if s.state != want || s.gen != h.gen {
		return nil
	}
	return s
}

// Get retrieves a value by handle. A stale or leased handle fails.
func (a *Arena[T]) Get(h Handle) (T, bool) {
	if s := a.lookup(h, slotOccupied); s != nil {
		return s.value, true
	}
	var zero T
	return zero, false
}

// Remove deletes an entry and returns its value. The slot becomes reusable
// and any copy of h is stale from now on.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	s := a.lookup(h, slotOccupied)
	if s == nil {
		var zero T
		return zero, false
	}

	value := s.value
	var zero T
	s.value = zero
	s.state = slotVacant
	a.free = append(a.free, h.index)
	a.live--
	return value, true
}

// Take vacates an entry while keeping its slot reserved. The entry is absent
// to Get until Restore puts it back under the same handle, or Release frees
// the slot for reuse.
func (a *Arena[T]) Take(h Handle) (T, bool) {
	s := a.lookup(h, slotOccupied)
	if s == nil {
		var zero T
		return zero, false
	}

	value := s.value
	var zero T
	s.value = zero
	s.state = slotLeased
	a.live--
	return value, true
}

// Restore re-occupies a leased slot with the original handle.
func (a *Arena[T]) Restore(h Handle, value T) bool {
	s := a.lookup(h, slotLeased)
	if s == nil {
		return false
	}
	s.value = value
	s.state = slotOccupied
	a.live++
	return true
}

// Release frees a leased slot without restoring its entry.
func (a *Arena[T]) Release(h Handle) bool {
	s := a.lookup(h, slotLeased)
	if s == nil {
		return false
	}
	s.state = slotVacant
	a.free = append(a.free, h.index)
	return true
}

// Len returns the number of live entries. Leased entries do not count.
func (a *Arena[T]) Len() int {
	return a.live
}

// Each iterates over all live entries. The callback must not mutate the
// arena; collect handles first when removal is needed.
func (a *Arena[T]) Each(fn func(Handle, T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.state != slotOccupied {
			continue
		}
		if !fn(Handle{index: uint32(i), gen: s.gen}, s.value) {
			return
		}
	}
}
