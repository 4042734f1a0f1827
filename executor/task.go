package executor

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostexec"
	"github.com/wippyai/hostexec/arena"
	"github.com/wippyai/hostexec/fault"
)

// task is one entry in the task table: a suspended future plus the method
// context it is bound to (nil for migratory tasks). queued tracks membership
// in a wakeup queue so a handle never appears in two queues at once.
type task struct {
	future  hostexec.Future
	binding arena.Handle
	queued  bool
}

// TaskRef is a lightweight reference to a spawned task. Holding or dropping
// it has no effect on the task; tasks are owned by the table.
type TaskRef struct {
	h arena.Handle
}

// String formats the underlying handle for diagnostics.
func (r TaskRef) String() string {
	return r.h.String()
}

func (s *State) spawnChecks() {
	if !s.inContext {
		fault.Raise(fault.CodeOutsideContext, "tasks can only be spawned within an executor context")
	}
	if s.recovering {
		fault.Raise(fault.CodeSpawnDuringRecovery, "tasks cannot be spawned while recovering from a trap")
	}
}

// SpawnProtected creates a task bound to the current method context. The
// task is enqueued immediately, so it is polled at least once before the
// current entry returns to the host. If the context is torn down while the
// task is still pending, the task is canceled and its Drop runs.
//
// Fails fatally outside an executor context, within an untracked context,
// or while trap recovery is running.
func (s *State) SpawnProtected(f hostexec.Future) TaskRef {
	s.spawnChecks()
	if s.current.IsNil() {
		fault.Raise(fault.CodeOutsideContext, "spawn_protected cannot be called outside of a tracking context")
	}
	ctx, ok := s.methods.Get(s.current)
	if !ok {
		fault.Raise(fault.CodeInternal, "current method context %s missing", s.current)
	}

	h := s.tasks.Insert(&task{future: f, binding: s.current, queued: true})
	ctx.ready = append(ctx.ready, h)

	Logger().Debug("spawned protected task",
		zap.Stringer("task", h),
		zap.Stringer("method", s.current))
	return TaskRef{h: h}
}

// SpawnMigratory creates a task with no method binding. It runs under
// whichever mutating method context drains the migratory queue next and
// survives the spawning method's own return.
//
// Fails fatally outside an executor context, while trap recovery is running,
// or when the current context is read-only.
func (s *State) SpawnMigratory(f hostexec.Future) TaskRef {
	s.spawnChecks()
	if s.currentKind() == KindReadOnly {
		fault.Raise(fault.CodeKindViolation, "unprotected spawns cannot be made within a query context")
	}

	h := s.tasks.Insert(&task{future: f, queued: true})
	s.migratory = append(s.migratory, h)

	Logger().Debug("spawned migratory task", zap.Stringer("task", h))
	return TaskRef{h: h}
}

// currentKind resolves the active context's kind. The nil sentinel, used for
// untracked invocations such as a bare callback, defaults to mutating.
func (s *State) currentKind() MethodKind {
	if s.current.IsNil() {
		return KindMutating
	}
	ctx, ok := s.methods.Get(s.current)
	if !ok {
		fault.Raise(fault.CodeInternal, "current method context %s missing", s.current)
	}
	return ctx.kind
}
