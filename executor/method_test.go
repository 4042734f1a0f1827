package executor

import (
	"testing"

	"github.com/wippyai/hostexec/arena"
	"github.com/wippyai/hostexec/fault"
)

func TestForMethod_NilSentinelIsNoop(t *testing.T) {
	ex := New()
	g := ex.ForMethod(arena.Nil)
	if !g.Method().IsNil() {
		t.Fatal("Expected a nil-method guard")
	}
	g.Close()
	g.Close() // double close tolerated
}

func TestForMethod_DanglingHandleIsFatal(t *testing.T) {
	ex := New()
	h := ex.methods.Insert(&methodContext{kind: KindMutating})
	ex.methods.Remove(h)

	f := catchFault(t, func() { ex.ForMethod(h) })
	if f.Code != fault.CodeUseAfterFree {
		t.Fatalf("Expected context_use_after_free, got %q", f.Code)
	}
}

func TestExtendCurrentMethodContext_OutsideContextIsFatal(t *testing.T) {
	ex := New()
	f := catchFault(t, func() { ex.ExtendCurrentMethodContext() })
	if f.Code != fault.CodeOutsideContext {
		t.Fatalf("Expected outside_context, got %q", f.Code)
	}
}

func TestExtendCurrentMethodContext_UntrackedYieldsNoopGuard(t *testing.T) {
	ex := New()
	ex.EnterUntracked(func() {
		g := ex.ExtendCurrentMethodContext()
		if !g.Method().IsNil() {
			t.Fatal("Expected a nil-method guard under the untracked context")
		}
		g.Close()
	})
}

func TestMethodGuard_CountsBorrows(t *testing.T) {
	ex := New()
	var g1, g2 *MethodGuard

	ex.EnterTrackedUpdate(func() {
		g1 = ex.ExtendCurrentMethodContext()
		g2 = ex.ExtendCurrentMethodContext()
	})
	if ex.methods.Len() != 1 {
		t.Fatal("Expected the context alive under two guards")
	}

	ex.EnterCallback(g1, func() {})
	if ex.methods.Len() != 1 {
		t.Fatal("Expected the context alive under the remaining guard")
	}

	ex.EnterCallback(g2, func() {})
	if ex.methods.Len() != 0 {
		t.Fatal("Expected teardown after the last guard")
	}
}

func TestMethodGuard_CloseAfterTeardownIsSilent(t *testing.T) {
	ex := New()
	var g *MethodGuard
	ex.EnterTrackedUpdate(func() {
		g = ex.ExtendCurrentMethodContext()
	})

	// Unlike ForMethod on a dangling handle, Close on one is tolerated.
	ex.methods.Remove(g.Method())
	g.Close()
}
