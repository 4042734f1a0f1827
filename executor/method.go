package executor

import (
	"github.com/wippyai/hostexec/arena"
	"github.com/wippyai/hostexec/fault"
)

// MethodKind classifies a method context.
type MethodKind uint8

const (
	// KindMutating marks an update invocation. Mutating contexts may spawn
	// migratory tasks and drain the migratory queue.
	KindMutating MethodKind = iota

	// KindReadOnly marks a query invocation. Read-only contexts must not
	// leave work outliving them: they can neither spawn nor resume migratory
	// tasks.
	KindReadOnly
)

// String returns the kind name.
func (k MethodKind) String() string {
	switch k {
	case KindMutating:
		return "mutating"
	case KindReadOnly:
		return "read-only"
	default:
		return "unknown"
	}
}

// methodContext is the scheduler's record of one top-level invocation. It
// exists from the start of the invocation until the invocation has returned
// and handleCount is zero. ready is the context's protected wakeup queue,
// FIFO by wake order.
type methodContext struct {
	kind        MethodKind
	handleCount int
	ready       []arena.Handle
}

// MethodGuard is a reference-counted borrow of a method context. It keeps
// the context alive across a suspension point: create one with
// ExtendCurrentMethodContext before issuing an inter-host call, thread it
// through the call's user data, and hand it back to EnterCallback or
// EnterTrapRecovery when the host responds.
//
// Close releases the borrow. Entry points close guards passed to them; a
// guard held across a call is closed by whichever entry finally consumes it.
type MethodGuard struct {
	state  *State
	method arena.Handle
	closed bool
}

// ForMethod acquires a guard on the given method context. The nil sentinel
// yields a guard that does nothing on Close. A dangling non-nil handle is a
// bug in handle lifetime tracking and fails fatally.
func (s *State) ForMethod(h arena.Handle) *MethodGuard {
	if h.IsNil() {
		return &MethodGuard{state: s}
	}
	ctx, ok := s.methods.Get(h)
	if !ok {
		fault.Raise(fault.CodeUseAfterFree, "internal error: method context %s already torn down", h)
	}
	ctx.handleCount++
	return &MethodGuard{state: s, method: h}
}

// ExtendCurrentMethodContext acquires a guard on the currently active method
// context. It fails fatally outside an executor context. Within an untracked
// context it returns a no-op guard.
func (s *State) ExtendCurrentMethodContext() *MethodGuard {
	if !s.inContext {
		fault.Raise(fault.CodeOutsideContext, "the current method context can only be extended within an executor context")
	}
	return s.ForMethod(s.current)
}

// Method returns the handle of the guarded context. Nil for a no-op guard.
func (g *MethodGuard) Method() arena.Handle {
	return g.method
}

// Released reports whether the guard has been closed, either directly or by
// an entry point that consumed it.
func (g *MethodGuard) Released() bool {
	return g == nil || g.closed
}

// Close releases the borrow. Closing twice, closing a no-op guard, or
// closing after the context is already gone are all tolerated no-ops; the
// context itself is only torn down by the entry-exit logic.
func (g *MethodGuard) Close() {
	if g == nil || g.closed {
		return
	}
	g.closed = true
	if g.method.IsNil() {
		return
	}
	if ctx, ok := g.state.methods.Get(g.method); ok {
		ctx.handleCount--
	}
}
