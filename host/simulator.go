package host

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/hostexec/call"
	"github.com/wippyai/hostexec/executor"
)

// outboundCall is one issued, not-yet-delivered inter-host call. The two
// guards mirror what real host glue threads through a call's user data: one
// is consumed by the callback entry, the other by the post-callback cleanup
// (or by trap recovery when the callback never runs).
type outboundCall struct {
	id        int
	service   string
	payload   []byte
	completer *call.Completer
	callback  *executor.MethodGuard
	cleanup   *executor.MethodGuard
}

func (oc *outboundCall) label() string {
	return fmt.Sprintf("%s#%d", oc.service, oc.id)
}

// Simulator is a deterministic in-process host. It owns one executor,
// dispatches named update/query handlers through the tracked entry points,
// carries outbound calls to registered services, and delivers their
// responses one at a time in issue order.
//
// Everything runs on the caller's goroutine; nothing overlaps. The simulator
// is also the executor's trap reporter, standing in for the host's
// diagnostic channel.
type Simulator struct {
	ex       *executor.State
	updates  map[string]Handler
	queries  map[string]Handler
	services map[string]Service

	pending []*outboundCall
	nextID  int

	events []string
	traps  []string
}

// NewSimulator creates a simulator with a fresh executor wired to it.
func NewSimulator() *Simulator {
	sim := &Simulator{
		updates:  make(map[string]Handler),
		queries:  make(map[string]Handler),
		services: make(map[string]Service),
	}
	sim.ex = executor.New(executor.WithReporter(sim))
	return sim
}

// Executor returns the simulator's executor, for handlers and tasks to spawn
// and extend against.
func (s *Simulator) Executor() *executor.State {
	return s.ex
}

// RegisterUpdate registers a mutating method handler under name.
func (s *Simulator) RegisterUpdate(name string, h Handler) {
	s.updates[name] = h
}

// RegisterQuery registers a read-only method handler under name.
func (s *Simulator) RegisterQuery(name string, h Handler) {
	s.queries[name] = h
}

// RegisterService registers a callable service under name.
func (s *Simulator) RegisterService(name string, svc Service) {
	s.services[name] = svc
}

// Note appends an application-level entry to the event log. Handlers and
// tasks use it to interleave their own progress with the host's actions.
func (s *Simulator) Note(format string, args ...any) {
	s.event(format, args...)
}

// Events returns the ordered log of everything the simulator did.
func (s *Simulator) Events() []string {
	return s.events
}

// Traps returns the messages reported through the diagnostic channel.
func (s *Simulator) Traps() []string {
	return s.traps
}

// PendingCalls returns the number of issued calls awaiting delivery.
func (s *Simulator) PendingCalls() int {
	return len(s.pending)
}

// ReportTrap implements fault.Reporter.
func (s *Simulator) ReportTrap(message, file string, line int) {
	s.traps = append(s.traps, message)
	s.event("trap reported: %s", message)
	Logger().Warn("trap reported",
		zap.String("message", message),
		zap.String("file", file),
		zap.Int("line", line))
}

// Invoke runs the named update handler as a tracked mutating invocation and
// polls until the executor is idle. A trap aborts the invocation and is
// returned as *TrapError.
func (s *Simulator) Invoke(name string) error {
	h, ok := s.updates[name]
	if !ok {
		return fmt.Errorf("no update method %q", name)
	}
	return s.run(name, h, s.ex.EnterTrackedUpdate)
}

// Query runs the named query handler as a tracked read-only invocation.
func (s *Simulator) Query(name string) error {
	h, ok := s.queries[name]
	if !ok {
		return fmt.Errorf("no query method %q", name)
	}
	return s.run(name, h, s.ex.EnterTrackedQuery)
}

func (s *Simulator) run(name string, h Handler, entry func(func())) (err error) {
	s.event("invoke %s", name)
	issued := len(s.pending)

	// The rollback guard keeps the method context reachable if the handler
	// traps before issuing any call, so recovery can still tear it down.
	var rollback *executor.MethodGuard
	defer func() {
		if r := recover(); r != nil {
			s.abortTrapped(name, r, issued, rollback)
			err = &TrapError{Method: name, Value: r}
		}
	}()

	entry(func() {
		rollback = s.ex.ExtendCurrentMethodContext()
		h(s)
	})

	// Release the rollback guard inside an entered window so the context is
	// torn down now unless outstanding calls keep it alive.
	s.ex.EnterCallback(rollback, func() {})
	s.event("done %s", name)
	return nil
}

// CallRemote issues a call to a named service. It must run inside an
// executor context; the returned future resolves when the simulator delivers
// the response.
func (s *Simulator) CallRemote(service string, payload []byte) *call.Future {
	fut, completer := call.New(s.ex)
	oc := &outboundCall{
		id:        s.nextID,
		service:   service,
		payload:   payload,
		completer: completer,
		callback:  s.ex.ExtendCurrentMethodContext(),
		cleanup:   s.ex.ExtendCurrentMethodContext(),
	}
	s.nextID++
	s.pending = append(s.pending, oc)
	s.event("call %s", oc.label())
	return fut
}

// DeliverNext routes the oldest outstanding call to its service and delivers
// the response through the callback entry point. A trap raised while the
// callback's method resumes aborts the delivery and is returned as
// *TrapError.
func (s *Simulator) DeliverNext() (err error) {
	if len(s.pending) == 0 {
		return fmt.Errorf("no outstanding calls to deliver")
	}
	oc := s.pending[0]
	s.pending = s.pending[1:]

	// The service runs on the remote side, outside any executor context.
	res := s.route(oc)
	if res.Rejected() {
		s.event("deliver %s: reject %d", oc.label(), res.RejectCode)
	} else {
		s.event("deliver %s: reply", oc.label())
	}

	issued := len(s.pending)
	defer func() {
		if r := recover(); r != nil {
			s.abortTrapped("callback "+oc.label(), r, issued, oc.cleanup)
			err = &TrapError{Method: "callback " + oc.label(), Value: r}
		}
	}()

	s.ex.EnterCallback(oc.callback, func() {
		if res.Rejected() {
			oc.completer.Reject(res.RejectCode, res.RejectMessage)
		} else {
			oc.completer.Reply(res.Reply)
		}
	})
	s.ex.EnterCallback(oc.cleanup, func() {})
	return nil
}

// AbortNext simulates the host trapping the continuation of the oldest
// outstanding call. The response is never delivered: the host rolled the
// method back, so from the method's point of view the continuation never
// ran. The method's remaining tasks are canceled under the recovering flag.
func (s *Simulator) AbortNext() error {
	if len(s.pending) == 0 {
		return fmt.Errorf("no outstanding calls to abort")
	}
	oc := s.pending[0]
	s.pending = s.pending[1:]
	s.event("abort %s", oc.label())

	s.ex.EnterTrapRecovery(oc.cleanup, func() {
		oc.callback.Close()
		s.ex.CancelAllTasksAttachedToCurrentMethod()
	})
	return nil
}

// Settle delivers outstanding responses until none remain, including calls
// issued by the callbacks themselves. Traps do not stop delivery; their
// errors are combined and returned.
func (s *Simulator) Settle() error {
	var err error
	for len(s.pending) > 0 {
		err = multierr.Append(err, s.DeliverNext())
	}
	return err
}

func (s *Simulator) route(oc *outboundCall) call.Result {
	svc, ok := s.services[oc.service]
	if !ok {
		return call.Result{
			RejectCode:    RejectUnroutable,
			RejectMessage: fmt.Sprintf("no route to service %q", oc.service),
		}
	}
	reply, err := svc(oc.payload)
	if err != nil {
		return call.Result{RejectCode: RejectServiceFailure, RejectMessage: err.Error()}
	}
	return call.Result{Reply: reply}
}

// abortTrapped approximates the host's rollback after a trap: calls issued
// by the aborted execution are voided so their responses are never
// delivered, and trap recovery cancels what the execution left behind.
func (s *Simulator) abortTrapped(name string, r any, issued int, rollback *executor.MethodGuard) {
	s.event("trap %s: %v", name, r)

	voided := s.pending[issued:]
	s.pending = s.pending[:issued]
	for _, oc := range voided {
		s.event("void %s", oc.label())
		s.ex.EnterTrapRecovery(oc.cleanup, func() {
			oc.callback.Close()
			s.ex.CancelAllTasksAttachedToCurrentMethod()
		})
	}

	if !rollback.Released() {
		s.ex.EnterTrapRecovery(rollback, func() {
			s.ex.CancelAllTasksAttachedToCurrentMethod()
		})
	}
}

func (s *Simulator) event(format string, args ...any) {
	e := fmt.Sprintf(format, args...)
	s.events = append(s.events, e)
	Logger().Debug("host event", zap.String("event", e))
}
