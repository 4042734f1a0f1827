package executor

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostexec/arena"
	"github.com/wippyai/hostexec/fault"
)

// EnterTrackedUpdate begins a mutating method invocation: it allocates a
// method context, runs body inside it, drives PollAll, and tears the context
// down unless outstanding guards keep it alive.
func (s *State) EnterTrackedUpdate(body func()) {
	fault.Install(s.reporter)
	h := s.methods.Insert(&methodContext{kind: KindMutating})
	s.enter(h, nil, body, false)
}

// EnterTrackedQuery begins a read-only method invocation. Identical to
// EnterTrackedUpdate except for the context kind, which forbids migratory
// spawns and migratory polling for the duration.
func (s *State) EnterTrackedQuery(body func()) {
	fault.Install(s.reporter)
	h := s.methods.Insert(&methodContext{kind: KindReadOnly})
	s.enter(h, nil, body, false)
}

// EnterUntracked runs body under the nil sentinel context: no method context
// is allocated or torn down, and the migratory queue is polled as mutating.
// Used for host-triggered code that needs the executor without method
// tracking.
func (s *State) EnterUntracked(body func()) {
	fault.Install(s.reporter)
	s.enter(arena.Nil, nil, body, false)
}

// EnterCallback re-enters the method context a guard has kept alive across
// an inter-host call, runs the callback body, and drives PollAll. The guard
// is released as part of the exit, inside the entered window. A nil guard
// enters the untracked context.
func (s *State) EnterCallback(g *MethodGuard, body func()) {
	s.enter(guardMethod(g), g, body, false)
}

// EnterTrapRecovery re-enters a method context whose callback is known to
// have trapped. The body runs with the recovering flag set and must not
// spawn; it typically calls CancelAllTasksAttachedToCurrentMethod. No
// polling happens: tasks are being unwound, not resumed.
func (s *State) EnterTrapRecovery(g *MethodGuard, body func()) {
	s.enter(guardMethod(g), g, body, true)
}

func guardMethod(g *MethodGuard) arena.Handle {
	if g == nil {
		return arena.Nil
	}
	if g.closed {
		fault.Raise(fault.CodeUseAfterFree, "internal error: entry guard already released")
	}
	return g.method
}

// enter is the shared skeleton of the five entry points: establish the
// current method, run the body (and PollAll unless recovering), release the
// entry guard, then tear the context down once nothing references it.
func (s *State) enter(method arena.Handle, guard *MethodGuard, body func(), recovery bool) {
	if s.inContext {
		fault.Raise(fault.CodeNestedContext, "an executor context is already active")
	}
	s.inContext = true
	s.current = method

	Logger().Debug("entered executor context",
		zap.Stringer("method", method),
		zap.Bool("recovery", recovery))

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		// The host aborts the invocation and rolls back its state; report
		// the failure to the diagnostic sink and restore the singletons so
		// an embedder that survives the unwind is not left entered.
		guard.Close()
		s.polling = false
		s.recovering = false
		s.current = arena.Nil
		s.inContext = false
		fault.Report(r)
		panic(r)
	}()

	if recovery {
		s.recovering = true
		body()
		s.recovering = false
	} else {
		body()
		s.PollAll()
	}

	// The guard's decrement happens inside the entered window, after the
	// body's own effects.
	guard.Close()

	if !method.IsNil() {
		if ctx, ok := s.methods.Get(method); ok && ctx.handleCount == 0 {
			s.teardown(method)
		}
	}

	s.current = arena.Nil
	s.inContext = false
}

// teardown removes a method context once it has returned and no guards
// reference it, canceling any of its tasks still pending.
func (s *State) teardown(method arena.Handle) {
	canceled := s.cancelBoundTasks(method)
	s.methods.Remove(method)

	Logger().Debug("method context torn down",
		zap.Stringer("method", method),
		zap.Int("canceled", canceled))
}
