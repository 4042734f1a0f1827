package executor

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostexec"
	"github.com/wippyai/hostexec/arena"
	"github.com/wippyai/hostexec/fault"
)

// PollAll resumes ready tasks until none remain. The current method's own
// wakeup queue is drained first; the shared migratory queue only after that,
// and only when the active context is mutating. Entry points call this after
// their body; it is exported for host glue that drives the scheduler
// manually.
//
// Fails fatally when no executor context is active.
func (s *State) PollAll() {
	if !s.inContext {
		fault.Raise(fault.CodeOutsideContext, "tasks can only be polled within an executor context")
	}
	kind := s.currentKind()

	for {
		h, ok := s.nextReady(kind)
		if !ok {
			return
		}

		// A queued wakeup can outlive its task: the task may have completed
		// or been canceled since. Skipping is expected, not an error.
		t, ok := s.tasks.Take(h)
		if !ok {
			continue
		}
		t.queued = false

		// The task is out of the table while it runs, so the resumption may
		// spawn or otherwise touch the tables. A wakeup firing during this
		// window finds the task absent and is dropped; the future's own
		// Pending bookkeeping covers it.
		s.polling = true
		result := t.future.Poll(&waker{state: s, task: h})
		s.polling = false

		if result == hostexec.Pending {
			// Reinsert at the original handle: queued wakeups and captured
			// wakers must keep finding this task.
			if !s.tasks.Restore(h, t) {
				fault.Raise(fault.CodeInternal, "task slot %s reused while polling", h)
			}
			continue
		}

		s.tasks.Release(h)
		Logger().Debug("task completed", zap.Stringer("task", h))
	}
}

// nextReady pops the next ready task handle by priority.
func (s *State) nextReady(kind MethodKind) (arena.Handle, bool) {
	if !s.current.IsNil() {
		if ctx, ok := s.methods.Get(s.current); ok && len(ctx.ready) > 0 {
			h := ctx.ready[0]
			ctx.ready = ctx.ready[1:]
			return h, true
		}
	}
	if kind == KindMutating && len(s.migratory) > 0 {
		h := s.migratory[0]
		s.migratory = s.migratory[1:]
		return h, true
	}
	return arena.Nil, false
}
