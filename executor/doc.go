// Package executor implements the cooperative scheduler core.
//
// The executor tracks in-flight asynchronous tasks, binds them to the method
// invocation that spawned them, multiplexes wakeups across concurrent
// inter-host calls, and cancels tasks when a method traps. It assumes a
// single logical thread of control: the host invokes entry points and
// callbacks strictly sequentially, never overlapping.
//
// # Method Contexts
//
// Every tracked top-level invocation gets a method context, classified as
// mutating (update) or read-only (query). A context lives from the start of
// its invocation until the invocation has returned and no guards reference
// it anymore. Guards are what keep a context alive across a suspension
// point: one is created with ExtendCurrentMethodContext before an inter-host
// call is issued and handed back to EnterCallback when the reply arrives.
//
// # Tasks
//
// SpawnProtected binds a task to the current method context; the task is
// canceled (its Drop runs) if the context is torn down first. SpawnMigratory
// creates a free-floating task that runs under whichever mutating method
// polls it next, and is only permitted from mutating contexts.
//
// # Scheduling
//
// PollAll drains the current method's own wakeup queue first, in FIFO order,
// then the shared migratory queue, and only if the active context is
// mutating. Read-only contexts never resume migratory tasks. A task is
// temporarily taken out of the task table while it is being resumed, so the
// resumption is free to spawn or touch the tables; a wakeup that fires during
// that window finds the task absent and is dropped, which a correctly
// implemented future compensates for through its own Pending bookkeeping.
//
// # Trap Recovery
//
// When the host reports that a method-bound callback trapped, it re-enters
// the executor with EnterTrapRecovery. The recovery body runs with the
// recovering flag set, typically calling
// CancelAllTasksAttachedToCurrentMethod; canceled task destructors observe
// IsRecoveringFromTrap and can release locks or poison resources
// accordingly.
//
// All contract violations are fatal, see the fault package.
package executor
