package host

import "fmt"

// Handler implements a named update or query method. It runs inside a
// tracked method context; anything it spawns protected is bound to that
// invocation.
type Handler func(sim *Simulator)

// Service implements the remote side of an inter-host call. It runs outside
// any executor context. A returned error becomes a rejection.
type Service func(payload []byte) ([]byte, error)

// Reject codes used by the simulator's transport.
const (
	// RejectUnroutable: no service is registered for the call's destination.
	RejectUnroutable uint32 = 3

	// RejectServiceFailure: the service returned an error.
	RejectServiceFailure uint32 = 5
)

// TrapError is returned when an invocation or a delivered callback trapped.
// The host aborted the execution; Value is the recovered panic value.
type TrapError struct {
	Method string
	Value  any
}

// Error implements the error interface.
func (e *TrapError) Error() string {
	return fmt.Sprintf("method %q trapped: %v", e.Method, e.Value)
}
