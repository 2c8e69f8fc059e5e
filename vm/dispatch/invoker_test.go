package dispatch

import (
	"testing"

	"github.com/hollis/verdin/vm"
)

func countingTarget(name string, calls *int) *vm.CallTarget {
	return vm.NewTarget(name, func(rt *vm.Runtime, receiver, block vm.Value, args []vm.Value) (vm.Value, error) {
		*calls++
		return vm.FromSmallInt(int64(*calls)), nil
	})
}

func TestDirectInvokerBindsPlainTarget(t *testing.T) {
	rt := vm.NewRuntime()
	var calls int
	target := countingTarget("frob", &calls)

	iv := newInvoker(target, nil, false)
	if iv.kind != callDirect {
		t.Fatal("plain target should get the direct strategy")
	}

	iv.invoke(rt, vm.Nil, vm.Nil, nil)
	if iv.bound != target {
		t.Error("an unsplit target binds to itself")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDirectInvokerSplitsOnce(t *testing.T) {
	rt := vm.NewRuntime()
	var calls int
	target := countingTarget("frob", &calls)
	target.AlwaysSplit = true

	iv := newInvoker(target, nil, false)
	iv.invoke(rt, vm.Nil, vm.Nil, nil)

	if iv.bound == target {
		t.Fatal("an always-split target must bind to a private clone")
	}
	if !iv.bound.IsSplit() || iv.bound.Root() != target {
		t.Error("the binding should be a split rooted at the original")
	}

	// Subsequent invocations reuse the same clone.
	first := iv.bound
	iv.invoke(rt, vm.Nil, vm.Nil, nil)
	if iv.bound != first {
		t.Error("splitting happens at most once per invoker")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (clone shares the body)", calls)
	}
}

func TestSplitIsPerSite(t *testing.T) {
	rt := vm.NewRuntime()
	var calls int
	target := countingTarget("frob", &calls)
	target.AlwaysSplit = true

	a := newInvoker(target, nil, false)
	b := newInvoker(target, nil, false)
	a.invoke(rt, vm.Nil, vm.Nil, nil)
	b.invoke(rt, vm.Nil, vm.Nil, nil)

	if a.bound == b.bound {
		t.Error("each invoker gets its own split clone")
	}
}

func TestForceIndirectSkipsBinding(t *testing.T) {
	rt := vm.NewRuntime()
	var calls int
	target := countingTarget("frob", &calls)
	target.AlwaysSplit = true
	target.ForceIndirect = true

	iv := newInvoker(target, nil, false)
	if iv.kind != callIndirect {
		t.Fatal("force-indirect target should get the indirect strategy")
	}

	iv.invoke(rt, vm.Nil, vm.Nil, nil)
	if iv.bound != nil {
		t.Error("indirect invocation never binds or splits")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestGenericForcesIndirect(t *testing.T) {
	var calls int
	target := countingTarget("frob", &calls)

	iv := newInvoker(target, nil, true)
	if iv.kind != callIndirect {
		t.Error("megamorphic resolution must use the indirect strategy")
	}
}

func TestMegamorphicSiteNeverSplits(t *testing.T) {
	// A target that asks for splitting still goes through the shared root
	// once its site has flipped to generic dispatch.
	en := testEngine(Config{MaxDepth: 1})
	rt := en.Runtime()
	site := en.Site("Main>>run", "value")

	a := rt.DefineClass("SA", rt.ObjectClass)
	b := rt.DefineClass("SB", rt.ObjectClass)

	split := vm.NewTarget0("value", func(rt *vm.Runtime, receiver vm.Value) (vm.Value, error) {
		return vm.FromSmallInt(1), nil
	})
	split.AlwaysSplit = true
	a.DefineMethod(rt.Selectors, "value", split)
	defineReturning(rt, b, "value", 2)

	dispatchInt(t, site, a.NewInstance().ToValue())
	dispatchInt(t, site, b.NewInstance().ToValue()) // flips the site
	if site.State() != StateMegamorphic {
		t.Fatal("site should be megamorphic")
	}
	if got := dispatchInt(t, site, a.NewInstance().ToValue()); got != 1 {
		t.Errorf("megamorphic dispatch = %d, want 1", got)
	}
}
