// Package hostexec provides a cooperative task executor for host-integrated,
// callback-driven environments.
//
// The target environment is a single logical thread of control scheduled by
// an external host: the host invokes top-level entry points ("methods") and
// later fires exactly one reply-or-reject callback for each outstanding
// inter-host call. The host may also abort ("trap") an in-progress method,
// roll its state back to the last suspension point, and ask the executor to
// run cleanup. There is no parallelism, no preemption, and no panic-catching
// across the host boundary.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	hostexec/        Root package with the Future, Waker and Dropper interfaces
//	├── executor/    Core scheduler: task and method tables, wakeup queues,
//	│                method guards, the poll loop, and the entry protocol
//	├── call/        Inter-host call futures with reply/reject delivery
//	├── arena/       Generational handle arenas backing the scheduler tables
//	├── fault/       Fatal-condition taxonomy and trap diagnostics
//	└── host/        Host-boundary interfaces and a deterministic simulator
//
// # Quick Start
//
// Create an executor, enter a tracked method context, and spawn work:
//
//	ex := executor.New()
//
//	ex.EnterTrackedUpdate(func() {
//	    ex.SpawnProtected(work) // polled before EnterTrackedUpdate returns
//	})
//
// Background work that should outlive the spawning method is spawned
// migratory and runs under whichever mutating method polls it next:
//
//	ex.SpawnMigratory(retryLoop)
//
// # Tasks and Futures
//
// A task is a suspended computation implementing Future. The executor resumes
// it with a Waker; the future returns Pending to suspend again or Ready to
// complete. A future that needs cleanup when its task is canceled before
// completion additionally implements Dropper.
//
// # Thread Safety
//
// Nothing in this library is safe for concurrent use. The execution model is
// strictly single-threaded and cooperative; the host invokes entry points and
// callbacks sequentially, never overlapping. Violations of the model are
// structural bugs and fail fast, see the fault package.
package hostexec
