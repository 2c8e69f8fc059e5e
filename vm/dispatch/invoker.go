package dispatch

import (
	"sync"

	"github.com/hollis/verdin/vm"
)

// callKind selects the invocation strategy for a resolved target. The
// choice is fixed when the cache entry is installed and never revisited
// without a full chain rebuild.
type callKind uint8

const (
	// callDirect invokes a call-site-private binding of the target,
	// splitting (cloning) it when the target asks for it. Splitting
	// happens at most once per site, lazily, on the first invocation.
	callDirect callKind = iota

	// callIndirect invokes the shared target through the generic entry
	// point. Used for targets that opt out of specialization and for
	// megamorphic dispatch.
	callIndirect
)

// invoker performs the actual invocation of a resolved target.
type invoker struct {
	kind      callKind
	target    *vm.CallTarget
	declaring *vm.Class

	bindOnce sync.Once
	bound    *vm.CallTarget // direct path only, set by bindOnce
}

// newInvoker picks the strategy for a freshly resolved target. generic
// forces the indirect path (megamorphic sites).
func newInvoker(target *vm.CallTarget, declaring *vm.Class, generic bool) *invoker {
	kind := callDirect
	if generic || target.ForceIndirect {
		kind = callIndirect
	}
	return &invoker{kind: kind, target: target, declaring: declaring}
}

// invoke runs the target.
func (iv *invoker) invoke(rt *vm.Runtime, receiver, block vm.Value, args []vm.Value) (vm.Value, error) {
	switch iv.kind {
	case callDirect:
		iv.bindOnce.Do(iv.bind)
		return iv.bound.Body(rt, receiver, block, args)
	default:
		return iv.target.Body(rt, receiver, block, args)
	}
}

// bind fixes the direct-path target, splitting it if the compiler flagged
// it for per-site specialization.
func (iv *invoker) bind() {
	if iv.target.AlwaysSplit {
		iv.bound = iv.target.Split()
	} else {
		iv.bound = iv.target
	}
}

// Declaring returns the class the bound method was found on.
func (iv *invoker) Declaring() *vm.Class { return iv.declaring }
