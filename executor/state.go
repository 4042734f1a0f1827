package executor

import (
	"github.com/wippyai/hostexec/arena"
	"github.com/wippyai/hostexec/fault"
)

// State owns all scheduler data: the task and method tables, the wakeup
// queues, and the current-method and recovering singletons. It is the
// explicit form of what the host environment treats as process-wide state.
//
// State is not safe for concurrent use.
type State struct {
	methods   *arena.Arena[*methodContext]
	tasks     *arena.Arena[*task]
	migratory []arena.Handle

	current    arena.Handle
	inContext  bool
	polling    bool
	recovering bool

	reporter fault.Reporter
}

// Option configures a State.
type Option func(*State)

// WithReporter sets the diagnostic sink installed by the first tracked or
// untracked entry point.
func WithReporter(r fault.Reporter) Option {
	return func(s *State) { s.reporter = r }
}

// New creates an empty executor state.
func New(opts ...Option) *State {
	s := &State{
		methods: arena.New[*methodContext](),
		tasks:   arena.New[*task](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsRecoveringFromTrap reports whether trap recovery is currently running.
// Task destructors consult it to distinguish cancellation-from-trap from
// normal teardown.
func (s *State) IsRecoveringFromTrap() bool {
	return s.recovering
}

// Snapshot is a point-in-time view of the scheduler for diagnostics.
type Snapshot struct {
	Methods        int
	Tasks          int
	MigratoryReady int
	InContext      bool
	Recovering     bool
}

// Snapshot captures the current table and queue sizes.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Methods:        s.methods.Len(),
		Tasks:          s.tasks.Len(),
		MigratoryReady: len(s.migratory),
		InContext:      s.inContext,
		Recovering:     s.recovering,
	}
}
