package vm

// CallTarget is an executable method body produced by the compilation
// layer. The dispatch engine treats the body as opaque: it binds a target
// into a cache entry once per (class, selector) resolution and invokes it
// through a call invoker.
//
// A target is immutable after construction. Per-call-site specialization
// works by cloning the target (Split), never by mutating it.
type CallTarget struct {
	// Name is the selector the body was compiled for, diagnostic only.
	Name string

	// Arity is the declared argument count, or -1 for variable arity.
	Arity int

	// AlwaysSplit is a compiler hint: the body's behavior depends heavily
	// on caller-supplied block/argument shapes, so every call site should
	// get its own clone.
	AlwaysSplit bool

	// ForceIndirect marks recursive or self-referential targets for which
	// per-site specialization is not worthwhile. Such targets are always
	// invoked through the shared indirect path.
	ForceIndirect bool

	// Body executes the method. rt gives access to the object model, block
	// is Nil when no block was supplied.
	Body BodyFunc

	root *CallTarget // original target for splits, nil on roots
}

// BodyFunc is the signature of a compiled method body.
type BodyFunc func(rt *Runtime, receiver Value, block Value, args []Value) (Value, error)

// NewTarget creates a variable-arity call target.
func NewTarget(name string, body BodyFunc) *CallTarget {
	return &CallTarget{Name: name, Arity: -1, Body: body}
}

// NewTargetN creates a fixed-arity call target.
func NewTargetN(name string, arity int, body BodyFunc) *CallTarget {
	return &CallTarget{Name: name, Arity: arity, Body: body}
}

// NewTarget0 creates a zero-argument call target.
func NewTarget0(name string, fn func(rt *Runtime, receiver Value) (Value, error)) *CallTarget {
	return NewTargetN(name, 0, func(rt *Runtime, receiver, block Value, args []Value) (Value, error) {
		return fn(rt, receiver)
	})
}

// NewTarget1 creates a one-argument call target.
func NewTarget1(name string, fn func(rt *Runtime, receiver, arg Value) (Value, error)) *CallTarget {
	return NewTargetN(name, 1, func(rt *Runtime, receiver, block Value, args []Value) (Value, error) {
		return fn(rt, receiver, args[0])
	})
}

// NewTarget2 creates a two-argument call target.
func NewTarget2(name string, fn func(rt *Runtime, receiver, a, b Value) (Value, error)) *CallTarget {
	return NewTargetN(name, 2, func(rt *Runtime, receiver, block Value, args []Value) (Value, error) {
		return fn(rt, receiver, args[0], args[1])
	})
}

// Split returns a call-site-private clone of the target. The clone shares
// the body but has its own identity, which lets an optimizing engine
// specialize it against the shapes seen at one site.
func (t *CallTarget) Split() *CallTarget {
	clone := *t
	if t.root == nil {
		clone.root = t
	} else {
		clone.root = t.root
	}
	return &clone
}

// IsSplit returns true if t is a per-site clone.
func (t *CallTarget) IsSplit() bool { return t.root != nil }

// Root returns the original target behind a split, or t itself.
func (t *CallTarget) Root() *CallTarget {
	if t.root != nil {
		return t.root
	}
	return t
}
