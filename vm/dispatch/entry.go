package dispatch

import (
	"fmt"

	"github.com/hollis/verdin/vm"
)

// guardKind is the closed set of guard variants a chain entry can carry.
type guardKind uint8

const (
	// guardBoxed matches heap objects by exact class pointer.
	guardBoxed guardKind = iota

	// guardClassSide matches a class receiver (class-side sends and
	// constant reads) by class pointer.
	guardClassSide

	// guardUnboxed matches primitive receivers by structural kind.
	// Primitive representations are never redefined, so these entries
	// carry no real assumption.
	guardUnboxed
)

// entry is one link of a dispatch chain: a guard plus the value resolved
// for that guard. Entries are immutable after construction and published
// only via an atomic head swap, so concurrent readers never observe a
// partially built entry. The next link is exclusively owned; chains are
// never cyclic.
type entry struct {
	guard         guardKind
	action        Action
	expectedClass *vm.Class // guardBoxed, guardClassSide
	expectedKind  vm.Kind   // guardUnboxed
	token         *vm.Assumption

	call     *invoker // CallMethod
	constant vm.Value // ReadConstant

	next *entry
}

// matches reports whether the entry's guard accepts the receiver for the
// given action. A false result is a pure GuardMiss: traversal continues at
// next with no side effects.
func (e *entry) matches(receiver vm.Value, action Action) bool {
	if e.action != action {
		return false
	}
	switch e.guard {
	case guardBoxed:
		obj := receiver.ObjectRef()
		return obj != nil && obj.Class() == e.expectedClass
	case guardClassSide:
		return receiver.ClassRef() == e.expectedClass
	default:
		return !receiver.IsObject() && !receiver.IsClass() && receiver.Kind() == e.expectedKind
	}
}

// stale reports whether the entry's assumption snapshot has been
// invalidated. A stale entry is healed by suffix rebuild, never skipped:
// falling through could mask a now-applicable resolution.
func (e *entry) stale() bool {
	return !e.token.Check()
}

// serve produces the entry's bound result.
func (e *entry) serve(rt *vm.Runtime, receiver, block vm.Value, args []vm.Value) (vm.Value, error) {
	switch e.action {
	case CallMethod:
		return e.call.invoke(rt, receiver, block, args)
	case RespondTo:
		// The presence of a matching entry already proves the method
		// exists.
		return vm.True, nil
	default:
		return e.constant, nil
	}
}

// clone returns a copy of the entry with a different continuation. Used
// when rebuilding a chain suffix; the guard, token snapshot, and resolved
// value carry over unchanged.
func (e *entry) clone(next *entry) *entry {
	dup := &entry{
		guard:         e.guard,
		action:        e.action,
		expectedClass: e.expectedClass,
		expectedKind:  e.expectedKind,
		token:         e.token,
		call:          e.call,
		constant:      e.constant,
		next:          next,
	}
	return dup
}

// depth returns the number of entries from e to the tail.
func (e *entry) depth() int {
	n := 0
	for cur := e; cur != nil; cur = cur.next {
		n++
	}
	return n
}

func (e *entry) String() string {
	switch e.guard {
	case guardBoxed, guardClassSide:
		return fmt.Sprintf("entry(%s, %s)", e.expectedClass.Name, e.action)
	default:
		return fmt.Sprintf("entry(%s, %s)", e.expectedKind, e.action)
	}
}
