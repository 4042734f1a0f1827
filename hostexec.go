package hostexec

// Poll reports the outcome of resuming a Future.
type Poll uint8

const (
	// Pending means the future suspended again and will be resumed after its
	// Waker fires.
	Pending Poll = iota

	// Ready means the future completed and must not be polled again.
	Ready
)

// String returns the poll state name.
func (p Poll) String() string {
	switch p {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Waker schedules the task that owns a future for another resumption.
//
// A waker captures only the task's handle, never the task itself. Waking a
// task that has already completed or been canceled is a benign no-op.
type Waker interface {
	Wake()
}

// Future is a suspended unit of work, resumed cooperatively by the executor.
//
// Poll either completes the computation and returns Ready, or stores w for a
// later wakeup and returns Pending. Poll is never invoked concurrently; the
// executor resumes at most one future at a time.
type Future interface {
	Poll(w Waker) Poll
}

// Dropper is optionally implemented by futures that need cleanup when their
// task is canceled before completion.
//
// Drop runs when a task is removed by cancellation: either explicitly during
// trap recovery, or implicitly when the method context that owns it is torn
// down with the task still pending. Drop does not run on normal completion.
type Dropper interface {
	Drop()
}
