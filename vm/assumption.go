package vm

import (
	"fmt"
	"sync/atomic"
)

// Assumption is a cheap, one-way validity token.
//
// Every class owns an assumption covering its method table (and a second
// one covering its constants). Dispatch cache entries snapshot the current
// assumption at install time; a snapshot that was ever invalidated stays
// invalid forever. Mutators invalidate the class's current assumption and
// mint a fresh one, so entries installed after the mutation guard against
// the new token.
//
// Check is a single atomic load. Entries are never actively revoked; they
// simply fail their next check.
type Assumption struct {
	name  string
	valid atomic.Bool
}

// NewAssumption creates a valid assumption. The name is diagnostic only.
func NewAssumption(name string) *Assumption {
	a := &Assumption{name: name}
	a.valid.Store(true)
	return a
}

// Check returns true while the assumption still holds.
func (a *Assumption) Check() bool {
	return a.valid.Load()
}

// Invalidate marks the assumption stale. The transition is one-way; calling
// it again is a no-op.
func (a *Assumption) Invalidate() {
	a.valid.Store(false)
}

// Name returns the diagnostic name.
func (a *Assumption) Name() string { return a.name }

func (a *Assumption) String() string {
	state := "valid"
	if !a.valid.Load() {
		state = "invalid"
	}
	return fmt.Sprintf("Assumption(%s, %s)", a.name, state)
}

// AlwaysValid is a shared assumption that never fails its check. Guard
// entries for primitive receivers use it: primitive representations are
// never redefined, so there is nothing to invalidate.
var AlwaysValid = NewAssumption("always-valid")
