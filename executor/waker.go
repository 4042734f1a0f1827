package executor

import (
	"github.com/wippyai/hostexec/arena"
	"github.com/wippyai/hostexec/fault"
)

// waker resumes one task. It captures only the task's handle, never the task
// itself, so a waker outliving its task is harmless.
type waker struct {
	state *State
	task  arena.Handle
}

// Wake marks the task ready by pushing it onto the queue its binding
// selects. Waking a task that no longer exists is a silent no-op: wakeups
// race benignly with cancellation and completion. A task already sitting in
// a queue is not enqueued twice.
func (w *waker) Wake() {
	s := w.state
	t, ok := s.tasks.Get(w.task)
	if !ok || t.queued {
		return
	}

	if t.binding.IsNil() {
		t.queued = true
		s.migratory = append(s.migratory, w.task)
		return
	}

	ctx, ok := s.methods.Get(t.binding)
	if !ok {
		// Teardown cancels bound tasks before removing their context, so a
		// live task can never point at a missing one.
		fault.Raise(fault.CodeInternal, "task %s bound to missing method context %s", w.task, t.binding)
	}
	t.queued = true
	ctx.ready = append(ctx.ready, w.task)
}
