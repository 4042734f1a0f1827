package executor

import (
	"testing"

	"github.com/wippyai/hostexec"
)

// A protected task ready in the same pass as a migratory one is resumed
// first.
func TestPollAll_ProtectedBeforeMigratory(t *testing.T) {
	ex := New()
	var log []string

	ex.EnterTrackedUpdate(func() {
		ex.SpawnProtected(&scriptFuture{onPoll: func(hostexec.Waker, int) hostexec.Poll {
			log = append(log, "1")
			return hostexec.Ready
		}})
		ex.SpawnMigratory(&scriptFuture{onPoll: func(hostexec.Waker, int) hostexec.Poll {
			log = append(log, "2")
			return hostexec.Ready
		}})
	})

	if len(log) != 2 || log[0] != "1" || log[1] != "2" {
		t.Fatalf("Expected [1 2], got %v", log)
	}
}

// Protected tasks resume in spawn order within one pass.
func TestPollAll_FIFOPerMethod(t *testing.T) {
	ex := New()
	var order []int

	ex.EnterTrackedUpdate(func() {
		for i := 1; i <= 3; i++ {
			i := i
			ex.SpawnProtected(&scriptFuture{onPoll: func(hostexec.Waker, int) hostexec.Poll {
				order = append(order, i)
				return hostexec.Ready
			}})
		}
	})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("Expected [1 2 3], got %v", order)
	}
}

// Polling without an active context is fatal.
func TestPollAll_OutsideContextFatal(t *testing.T) {
	ex := New()
	f := catchFault(t, func() { ex.PollAll() })
	if f.Code != "outside_context" {
		t.Fatalf("Expected outside_context, got %q", f.Code)
	}
	if f.Detail != "tasks can only be polled within an executor context" {
		t.Fatalf("Unexpected detail: %q", f.Detail)
	}
}

// A task bound to method M is never resumed while another method is active.
func TestPollAll_MethodIsolation(t *testing.T) {
	ex := New()
	var w hostexec.Waker
	task := pendingForever(&w)
	var g *MethodGuard

	ex.EnterTrackedUpdate(func() {
		g = ex.ExtendCurrentMethodContext()
		ex.SpawnProtected(task)
	})
	if task.polls != 1 {
		t.Fatalf("Expected the spawn-time poll, got %d", task.polls)
	}

	// Ready in M's queue while another method runs.
	w.Wake()
	ex.EnterTrackedUpdate(func() {})
	if task.polls != 1 {
		t.Fatalf("Task bound to M resumed under M': %d polls", task.polls)
	}

	// Re-entering M through its guard resumes it.
	ex.EnterCallback(g, func() {})
	if task.polls != 2 {
		t.Fatalf("Expected resumption under M, got %d polls", task.polls)
	}
}

// A ready migratory task does not run under a query.
func TestPollAll_QueryNeverDrainsMigratory(t *testing.T) {
	ex := New()
	var w hostexec.Waker
	task := pendingForever(&w)

	ex.EnterTrackedUpdate(func() {
		ex.SpawnMigratory(task)
	})
	if task.polls != 1 {
		t.Fatalf("Expected the spawn-time poll, got %d", task.polls)
	}

	w.Wake()
	ex.EnterTrackedQuery(func() {})
	if task.polls != 1 {
		t.Fatalf("Migratory task resumed under a query: %d polls", task.polls)
	}

	ex.EnterTrackedUpdate(func() {})
	if task.polls != 2 {
		t.Fatalf("Expected resumption under an update, got %d polls", task.polls)
	}
}

// A migratory task survives the method that spawned it and keeps running
// under later mutating contexts.
func TestPollAll_MigratoryMigrates(t *testing.T) {
	ex := New()
	var w hostexec.Waker
	completed := false

	ex.EnterTrackedUpdate(func() {
		ex.SpawnMigratory(&scriptFuture{onPoll: func(wk hostexec.Waker, n int) hostexec.Poll {
			if n == 1 {
				w = wk
				return hostexec.Pending
			}
			completed = true
			return hostexec.Ready
		}})
	})
	if ex.tasks.Len() != 1 {
		t.Fatal("Expected the migratory task to survive the spawning method")
	}

	w.Wake()
	ex.EnterUntracked(func() {})
	if !completed {
		t.Fatal("Expected completion under the untracked context")
	}
	if ex.tasks.Len() != 0 {
		t.Fatal("Expected the completed task removed from the table")
	}
}

// A wakeup that fires while the task is out of the table for resumption is
// dropped: the task is not re-queued when its poll returns Pending.
func TestPollAll_WakeupDuringResumeIsLost(t *testing.T) {
	ex := New()

	ex.EnterTrackedUpdate(func() {
		ex.SpawnMigratory(&scriptFuture{onPoll: func(w hostexec.Waker, n int) hostexec.Poll {
			w.Wake()
			return hostexec.Pending
		}})
	})

	if ex.tasks.Len() != 1 {
		t.Fatal("Expected the pending task restored to the table")
	}
	if len(ex.migratory) != 0 {
		t.Fatal("Expected the in-flight wakeup to be dropped")
	}
}

// Resuming a task may spawn: the new task runs in the same pass.
func TestPollAll_SpawnDuringResume(t *testing.T) {
	ex := New()
	var log []string

	ex.EnterTrackedUpdate(func() {
		ex.SpawnProtected(&scriptFuture{onPoll: func(hostexec.Waker, int) hostexec.Poll {
			log = append(log, "outer")
			ex.SpawnProtected(&scriptFuture{onPoll: func(hostexec.Waker, int) hostexec.Poll {
				log = append(log, "inner")
				return hostexec.Ready
			}})
			return hostexec.Ready
		}})
	})

	if len(log) != 2 || log[0] != "outer" || log[1] != "inner" {
		t.Fatalf("Expected [outer inner], got %v", log)
	}
	if ex.tasks.Len() != 0 {
		t.Fatal("Expected all tasks completed")
	}
}
