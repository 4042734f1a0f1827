package executor

import (
	"strings"
	"testing"

	"github.com/wippyai/hostexec"
	"github.com/wippyai/hostexec/fault"
)

// A method returning with pending protected tasks cancels them as part of
// teardown, running destructors.
func TestTeardown_CancelsPendingProtectedTasks(t *testing.T) {
	ex := New()
	drops := 0

	ex.EnterTrackedUpdate(func() {
		for i := 0; i < 3; i++ {
			f := pendingForever(nil)
			f.onDrop = func() { drops++ }
			ex.SpawnProtected(f)
		}
	})

	if drops != 3 {
		t.Fatalf("Expected 3 destructors, got %d", drops)
	}
	if ex.tasks.Len() != 0 {
		t.Fatal("Expected the task table empty after teardown")
	}
}

// Trap recovery cancels bound tasks exactly once, with the
// recovering flag observable inside the destructor and cleared after.
func TestTrapRecovery_CancelsWithRecoveringFlag(t *testing.T) {
	ex := New()
	drops := 0
	var sawRecovering bool
	var g *MethodGuard
	var ref TaskRef

	ex.EnterTrackedUpdate(func() {
		g = ex.ExtendCurrentMethodContext()
		f := pendingForever(nil)
		f.onDrop = func() {
			drops++
			sawRecovering = ex.IsRecoveringFromTrap()
		}
		ref = ex.SpawnProtected(f)
	})
	if drops != 0 {
		t.Fatal("Task must survive while the guard keeps its method alive")
	}

	ex.EnterTrapRecovery(g, func() {
		ex.CancelAllTasksAttachedToCurrentMethod()
	})

	if drops != 1 {
		t.Fatalf("Expected exactly one destructor run, got %d", drops)
	}
	if !sawRecovering {
		t.Fatal("Destructor must observe the recovering flag")
	}
	if ex.IsRecoveringFromTrap() {
		t.Fatal("Recovering flag must be cleared after recovery returns")
	}
	if _, ok := ex.tasks.Get(ref.h); ok {
		t.Fatal("Expected the task removed from the table")
	}
}

// Waking a canceled task through a previously captured waker is a silent
// no-op.
func TestWaker_StaleWakeIsNoop(t *testing.T) {
	ex := New()
	var w hostexec.Waker
	var g *MethodGuard

	ex.EnterTrackedUpdate(func() {
		g = ex.ExtendCurrentMethodContext()
		ex.SpawnProtected(pendingForever(&w))
	})
	ex.EnterTrapRecovery(g, func() {
		ex.CancelAllTasksAttachedToCurrentMethod()
	})

	w.Wake()
	snap := ex.Snapshot()
	if snap.Tasks != 0 || snap.MigratoryReady != 0 {
		t.Fatalf("Stale wake must not enqueue anything: %+v", snap)
	}
}

func TestWaker_DoubleWakeEnqueuesOnce(t *testing.T) {
	ex := New()
	var w hostexec.Waker

	ex.EnterTrackedUpdate(func() {
		ex.SpawnMigratory(pendingForever(&w))
	})

	w.Wake()
	w.Wake()
	if len(ex.migratory) != 1 {
		t.Fatalf("Expected a single queue entry, got %d", len(ex.migratory))
	}
}

// Migratory spawns are forbidden under a query.
func TestSpawnMigratory_UnderQueryIsFatal(t *testing.T) {
	ex := New()
	f := catchFault(t, func() {
		ex.EnterTrackedQuery(func() {
			ex.SpawnMigratory(completeOnce())
		})
	})
	if f.Code != fault.CodeKindViolation {
		t.Fatalf("Expected kind_violation, got %q", f.Code)
	}
	if !strings.Contains(f.Detail, "query context") {
		t.Fatalf("Expected the query-context message, got %q", f.Detail)
	}
}

func TestSpawn_OutsideContextIsFatal(t *testing.T) {
	ex := New()
	f := catchFault(t, func() { ex.SpawnProtected(completeOnce()) })
	if f.Code != fault.CodeOutsideContext {
		t.Fatalf("Expected outside_context, got %q", f.Code)
	}
}

func TestSpawnProtected_UntrackedContextIsFatal(t *testing.T) {
	ex := New()
	f := catchFault(t, func() {
		ex.EnterUntracked(func() {
			ex.SpawnProtected(completeOnce())
		})
	})
	if f.Code != fault.CodeOutsideContext {
		t.Fatalf("Expected outside_context, got %q", f.Code)
	}
	if !strings.Contains(f.Detail, "tracking context") {
		t.Fatalf("Expected the tracking-context message, got %q", f.Detail)
	}
}

func TestSpawn_DuringRecoveryIsFatal(t *testing.T) {
	ex := New()
	var g *MethodGuard
	ex.EnterTrackedUpdate(func() {
		g = ex.ExtendCurrentMethodContext()
	})

	f := catchFault(t, func() {
		ex.EnterTrapRecovery(g, func() {
			ex.SpawnProtected(completeOnce())
		})
	})
	if f.Code != fault.CodeSpawnDuringRecovery {
		t.Fatalf("Expected spawn_during_recovery, got %q", f.Code)
	}
	if ex.IsRecoveringFromTrap() {
		t.Fatal("Recovering flag must be cleared on unwind")
	}
}

func TestCancelAll_OutsideContextIsFatal(t *testing.T) {
	ex := New()
	f := catchFault(t, func() { ex.CancelAllTasksAttachedToCurrentMethod() })
	if f.Code != fault.CodeOutsideContext {
		t.Fatalf("Expected outside_context, got %q", f.Code)
	}
}

// Cancellation is driven from outside task bodies only.
func TestCancelAll_FromInsideTaskIsFatal(t *testing.T) {
	ex := New()
	f := catchFault(t, func() {
		ex.EnterTrackedUpdate(func() {
			ex.SpawnProtected(&scriptFuture{onPoll: func(hostexec.Waker, int) hostexec.Poll {
				ex.CancelAllTasksAttachedToCurrentMethod()
				return hostexec.Ready
			}})
		})
	})
	if f.Code != fault.CodeTableBusy {
		t.Fatalf("Expected table_busy, got %q", f.Code)
	}
	if !strings.Contains(f.Detail, "async task") {
		t.Fatalf("Expected the async-task message, got %q", f.Detail)
	}
}

// Under the untracked context there is nothing bound to cancel; migratory
// tasks must be left alone.
func TestCancelAll_UntrackedIsNoop(t *testing.T) {
	ex := New()
	drops := 0

	ex.EnterTrackedUpdate(func() {
		f := pendingForever(nil)
		f.onDrop = func() { drops++ }
		ex.SpawnMigratory(f)
	})

	ex.EnterUntracked(func() {
		ex.CancelAllTasksAttachedToCurrentMethod()
	})

	if drops != 0 || ex.tasks.Len() != 1 {
		t.Fatalf("Migratory task must survive: drops=%d tasks=%d", drops, ex.tasks.Len())
	}
}
