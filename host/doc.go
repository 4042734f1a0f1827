// Package host provides the host-boundary types and a deterministic
// in-process host simulator.
//
// The executor core never calls the host directly; it is invoked by it. This
// package pins down that narrow inbound surface: begin a tracked update or
// query, begin an untracked invocation, deliver a callback for a method a
// guard has kept alive, or begin trap recovery for it. The Simulator drives
// those entry points sequentially, the way a real host schedules a single
// execution unit: one invocation at a time, one callback at a time, never
// overlapping.
//
// A simulation registers named update/query handlers and named services
// reachable through CallRemote:
//
//	sim := host.NewSimulator()
//	sim.RegisterService("echo", func(p []byte) ([]byte, error) { return p, nil })
//	sim.RegisterUpdate("ping", func(sim *host.Simulator) {
//	    sim.Executor().SpawnProtected(&pingTask{sim: sim})
//	})
//
//	err := sim.Invoke("ping") // runs the handler, polls until idle
//	err = sim.Settle()        // delivers outstanding call responses
//
// Responses are delivered in issue order by DeliverNext. AbortNext instead
// simulates the host trapping a call's continuation: the response is never
// delivered — the host rolled the method back, so from the method's point of
// view the continuation never ran — and the method's cleanup path cancels
// its tasks under the recovering flag.
//
// Traps raised by handlers or resumed tasks are caught at the boundary,
// reported like a host diagnostic channel would, and returned as *TrapError.
// The simulator then voids the calls the trapped execution issued and runs
// trap recovery for the method, approximating the host's state rollback.
// The approximation is only exact when the trap fires before the callback's
// effects; a real host restores all state to the last suspension point.
package host
