package call

import (
	"github.com/wippyai/hostexec"
	"github.com/wippyai/hostexec/executor"
	"github.com/wippyai/hostexec/fault"
)

// Result carries the host's response to a call. RejectCode zero means the
// call succeeded and Reply holds the payload; any other code means the call
// was rejected with a message.
type Result struct {
	Reply         []byte
	RejectCode    uint32
	RejectMessage string
}

// Rejected reports whether the call was rejected.
func (r Result) Rejected() bool {
	return r.RejectCode != 0
}

type stage uint8

const (
	stagePending stage = iota
	stageReady
	stageTaken
	stageTrapped
)

// Future is the awaitable half of an inter-host call.
type Future struct {
	state  *executor.State
	waker  hostexec.Waker
	result Result
	stage  stage
}

// Completer is the host-facing half: exactly one of Reply or Reject fires.
type Completer struct {
	f *Future
}

// New creates a connected Future/Completer pair on the given executor.
func New(ex *executor.State) (*Future, *Completer) {
	f := &Future{state: ex}
	return f, &Completer{f: f}
}

// Poll implements hostexec.Future. Once the result has been taken the future
// is spent: polling it again fails fatally, as does polling a future whose
// owning task was canceled by a trap.
func (f *Future) Poll(w hostexec.Waker) hostexec.Poll {
	switch f.stage {
	case stageTrapped:
		fault.Raise(fault.CodeCallTrapped, "the call was already trapped: its task was canceled during trap recovery")
	case stageTaken:
		fault.Raise(fault.CodeCallCompleted, "the call was already completed and its result taken")
	case stageReady:
		f.stage = stageTaken
		return hostexec.Ready
	}
	f.waker = w
	return hostexec.Pending
}

// Result returns the response. Valid only after Poll has returned Ready.
func (f *Future) Result() Result {
	if f.stage != stageTaken {
		fault.Raise(fault.CodeInternal, "call result read before completion")
	}
	return f.result
}

// Drop implements hostexec.Dropper. A pending call dropped during trap
// recovery is poisoned: the host rolled back the state its continuation
// depended on, so any later await must trap rather than observe a response
// that logically never happened.
func (f *Future) Drop() {
	if f.state.IsRecoveringFromTrap() && f.stage != stageTaken {
		f.stage = stageTrapped
	}
}

// Reply delivers a successful response and wakes the awaiting task.
func (c *Completer) Reply(payload []byte) {
	c.complete(Result{Reply: payload})
}

// Reject delivers a rejection and wakes the awaiting task. code must be
// non-zero.
func (c *Completer) Reject(code uint32, message string) {
	if code == 0 {
		fault.Raise(fault.CodeInternal, "reject code must be non-zero")
	}
	c.complete(Result{RejectCode: code, RejectMessage: message})
}

func (c *Completer) complete(r Result) {
	f := c.f
	switch f.stage {
	case stagePending:
		f.result = r
		f.stage = stageReady
		if f.waker != nil {
			f.waker.Wake()
		}
	case stageTrapped:
		// The call's task is gone; the late response is dropped.
	default:
		fault.Raise(fault.CodeInternal, "call completed twice")
	}
}
