package fault

import (
	"fmt"
	"runtime"
	"strings"
)

// Code categorizes the contract violation.
type Code string

const (
	// CodeNestedContext: an entry point was invoked while another context was
	// already active. Nesting is never valid in the cooperative model.
	CodeNestedContext Code = "nested_context"

	// CodeUseAfterFree: a method guard referenced a context that has already
	// been torn down, where this should be impossible.
	CodeUseAfterFree Code = "context_use_after_free"

	// CodeOutsideContext: spawning, polling or extending the current method
	// without an active executor context.
	CodeOutsideContext Code = "outside_context"

	// CodeSpawnDuringRecovery: spawning while trap recovery is running would
	// leak tasks that can never run.
	CodeSpawnDuringRecovery Code = "spawn_during_recovery"

	// CodeKindViolation: a migratory spawn under a read-only context.
	CodeKindViolation Code = "kind_violation"

	// CodeTableBusy: re-entrant access to the task table, i.e. cancellation
	// invoked from inside a running task.
	CodeTableBusy Code = "table_busy"

	// CodeCallCompleted: a call future was awaited again after its result had
	// already been taken.
	CodeCallCompleted Code = "call_already_completed"

	// CodeCallTrapped: a call future was awaited after its owning task was
	// canceled by a trap elsewhere.
	CodeCallTrapped Code = "call_already_trapped"

	// CodeInternal: an invariant the executor maintains itself was broken.
	CodeInternal Code = "internal"
)

// Fault is the structured panic value raised on contract violations.
type Fault struct {
	Code   Code
	Detail string
	File   string
	Line   int
}

// Error implements the error interface.
func (f *Fault) Error() string {
	var b strings.Builder

	b.WriteString("[executor] ")
	b.WriteString(string(f.Code))
	if f.Detail != "" {
		b.WriteString(": ")
		b.WriteString(f.Detail)
	}
	if f.File != "" {
		fmt.Fprintf(&b, " (%s:%d)", f.File, f.Line)
	}
	return b.String()
}

// Is reports whether target matches this fault by code.
func (f *Fault) Is(target error) bool {
	if t, ok := target.(*Fault); ok {
		return f.Code == t.Code
	}
	return false
}

// New constructs a fault capturing the caller's source location.
func New(code Code, format string, args ...any) *Fault {
	f := &Fault{Code: code, Detail: format}
	if len(args) > 0 {
		f.Detail = fmt.Sprintf(format, args...)
	}
	if _, file, line, ok := runtime.Caller(1); ok {
		f.File = file
		f.Line = line
	}
	return f
}

// Raise panics with a fault capturing the caller's source location.
func Raise(code Code, format string, args ...any) {
	f := &Fault{Code: code, Detail: format}
	if len(args) > 0 {
		f.Detail = fmt.Sprintf(format, args...)
	}
	if _, file, line, ok := runtime.Caller(1); ok {
		f.File = file
		f.Line = line
	}
	panic(f)
}
