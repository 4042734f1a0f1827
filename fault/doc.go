// Package fault provides the fatal-condition taxonomy for the executor.
//
// Every condition in this package indicates a structural or programming bug,
// never a recoverable runtime state: continuing after one would operate on an
// inconsistent scheduler. Violations are therefore raised as panics carrying
// a *Fault and are never returned as error values:
//
//	fault.Raise(fault.CodeOutsideContext,
//	    "tasks can only be polled within an executor context")
//
// A recovered panic value can be matched by code:
//
//	if f, ok := r.(*fault.Fault); ok && f.Code == fault.CodeNestedContext {
//	    ...
//	}
//
// # Trap Reporting
//
// Hosts abort the surrounding process when an entry point panics. So that
// operators can distinguish an executor contract violation from a host-side
// trap, the executor reports every escaping panic to a diagnostic sink with
// source location before re-raising it. The sink is installed once,
// process-wide, by the first tracked or untracked entry; later installs are
// no-ops.
package fault
