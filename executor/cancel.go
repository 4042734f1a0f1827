package executor

import (
	"github.com/wippyai/hostexec"
	"github.com/wippyai/hostexec/arena"
	"github.com/wippyai/hostexec/fault"
)

// CancelAllTasksAttachedToCurrentMethod removes every task bound to the
// current method context and runs their destructors. It is the trap-recovery
// sweep: the host signals that the method aborted, and the executor unwinds
// the work the method left behind without resuming it.
//
// Cancellation is always driven from outside task bodies. Calling this from
// inside a running task fails fatally, as does calling it with no active
// executor context. Under the untracked context it is a no-op: migratory
// tasks have no binding and are never canceled.
func (s *State) CancelAllTasksAttachedToCurrentMethod() {
	if !s.inContext {
		fault.Raise(fault.CodeOutsideContext, "tasks can only be canceled within an executor context")
	}
	if s.polling {
		fault.Raise(fault.CodeTableBusy, "cancel_all_tasks_attached_to_current_method cannot be called from an async task")
	}
	if s.current.IsNil() {
		return
	}
	s.cancelBoundTasks(s.current)
}

// cancelBoundTasks removes all tasks bound to method and runs their Drop
// hooks. Destructors run only after the sweep has released the table, so a
// destructor is free to consult the recovering flag or touch the tables.
func (s *State) cancelBoundTasks(method arena.Handle) int {
	var victims []arena.Handle
	s.tasks.Each(func(h arena.Handle, t *task) bool {
		if t.binding == method {
			victims = append(victims, h)
		}
		return true
	})

	canceled := make([]hostexec.Future, 0, len(victims))
	for _, h := range victims {
		if t, ok := s.tasks.Remove(h); ok {
			canceled = append(canceled, t.future)
		}
	}

	for _, f := range canceled {
		if d, ok := f.(hostexec.Dropper); ok {
			d.Drop()
		}
	}
	return len(canceled)
}
