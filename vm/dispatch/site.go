package dispatch

import (
	"sync"
	"sync/atomic"

	"github.com/hollis/verdin/vm"
)

// DefaultMaxDepth is the chain depth bound used when the configuration
// does not override it. Six specialized entries, following Cog: sites
// exhibiting more shapes than that rarely benefit from further
// specialization.
const DefaultMaxDepth = 6

// Config tunes the dispatch engine.
type Config struct {
	// MaxDepth bounds the number of specialized entries per call site.
	// A site that observes more distinct shapes flips permanently to
	// megamorphic dispatch. Zero means DefaultMaxDepth.
	MaxDepth int

	// Trace enables debug logging of chain transitions.
	Trace bool
}

func (c Config) withDefaults() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	return c
}

// Engine creates and tracks the call sites of a runtime.
type Engine struct {
	rt  *vm.Runtime
	cfg Config

	mu       sync.Mutex
	sites    []*CallSite
	ordinals map[string]int
}

// NewEngine creates a dispatch engine over the given runtime.
func NewEngine(rt *vm.Runtime, cfg Config) *Engine {
	return &Engine{
		rt:       rt,
		cfg:      cfg.withDefaults(),
		ordinals: make(map[string]int),
	}
}

// Runtime returns the object model this engine dispatches through.
func (en *Engine) Runtime() *vm.Runtime { return en.rt }

// Config returns the effective configuration.
func (en *Engine) Config() Config { return en.cfg }

// SiteOption configures a call site at creation.
type SiteOption func(*CallSite)

// WithBlockPass marks a site whose compiled form forwards a block-pass
// argument. Such a site must never also receive a literal block.
func WithBlockPass() SiteOption {
	return func(s *CallSite) { s.blockPass = true }
}

// Site creates a call site. owner names the enclosing compiled unit
// ("Class>>method"); selector is the message or constant name the site
// was compiled for. Sites live for the lifetime of the compiled code that
// contains them.
func (en *Engine) Site(owner, selector string, opts ...SiteOption) *CallSite {
	s := &CallSite{
		engine:     en,
		Owner:      owner,
		Selector:   selector,
		selectorID: en.rt.Intern(selector),
	}
	for _, opt := range opts {
		opt(s)
	}
	en.mu.Lock()
	s.Ordinal = en.ordinals[owner]
	en.ordinals[owner] = s.Ordinal + 1
	en.sites = append(en.sites, s)
	en.mu.Unlock()
	return s
}

// Sites returns all call sites created so far.
func (en *Engine) Sites() []*CallSite {
	en.mu.Lock()
	defer en.mu.Unlock()
	return append([]*CallSite(nil), en.sites...)
}

// ---------------------------------------------------------------------------
// CallSite
// ---------------------------------------------------------------------------

// State is a call site's position in the Empty -> Monomorphic ->
// Polymorphic -> Megamorphic progression.
type State uint8

const (
	StateEmpty State = iota
	StateMonomorphic
	StatePolymorphic
	StateMegamorphic
)

var stateNames = [...]string{
	StateEmpty:       "empty",
	StateMonomorphic: "monomorphic",
	StatePolymorphic: "polymorphic",
	StateMegamorphic: "megamorphic",
}

func (st State) String() string {
	if int(st) < len(stateNames) {
		return stateNames[st]
	}
	return "?"
}

// CallSite anchors one dispatch chain. The head pointer is the only
// mutable piece of chain state; entries behind it are immutable. Writers
// build replacement chains off to the side and install them with a
// compare-and-swap, so readers walking the old chain are never blocked
// and never see a torn entry. Losing an install race discards the loser's
// work and re-reads the updated chain.
type CallSite struct {
	engine     *Engine
	Owner      string
	Selector   string
	Ordinal    int
	selectorID int
	blockPass  bool

	head    atomic.Pointer[entry]
	generic atomic.Bool

	hits     atomic.Uint64
	misses   atomic.Uint64
	installs atomic.Uint64
	rebuilds atomic.Uint64
}

// Dispatch resolves the site's selector against receiver and performs
// action. Guard checks on the hot path are pure reads; every chain
// mutation happens off to the side followed by an atomic head swap.
func (s *CallSite) Dispatch(receiver, block vm.Value, args []vm.Value, action Action) (vm.Value, error) {
	if s.blockPass && !block.IsNil() {
		return vm.Nil, ErrAmbiguousBlockAndArgument
	}
	for {
		if s.generic.Load() {
			s.misses.Add(1)
			return s.dispatchGeneric(receiver, block, args, action)
		}
		v, err, retry := s.dispatchOnce(receiver, block, args, action)
		if retry {
			continue
		}
		return v, err
	}
}

// dispatchOnce walks the current chain a single time. retry is true when
// a concurrent writer superseded the chain mid-flight and the dispatch
// must re-read it.
func (s *CallSite) dispatchOnce(receiver, block vm.Value, args []vm.Value, action Action) (vm.Value, error, bool) {
	head := s.head.Load()
	for e := head; e != nil; e = e.next {
		if !e.matches(receiver, action) {
			continue
		}
		if e.stale() {
			return s.rebuildAt(head, e, receiver, block, args, action)
		}
		s.hits.Add(1)
		v, err := e.serve(s.engine.rt, receiver, block, args)
		return v, err, false
	}
	return s.missAt(head, receiver, block, args, action)
}

// missAt is the fallback tail: full lookup, entry manufacture, and
// prepend. Reached only when no installed entry matched the receiver.
func (s *CallSite) missAt(head *entry, receiver, block vm.Value, args []vm.Value, action Action) (vm.Value, error, bool) {
	s.misses.Add(1)

	fresh, immediate, err := s.resolve(receiver, action, false)
	if err != nil {
		// Lookup failure is the caller's problem; nothing is cached.
		return vm.Nil, err, false
	}
	if fresh == nil {
		return immediate, nil, false
	}

	if head.depth() >= s.engine.cfg.MaxDepth {
		// Too many shapes. Discard the specialized chain and dispatch
		// generically from now on. The flag is set before the head is
		// cleared: a racing install that lands between the two stores is
		// wiped by the head store, so the flipped site always ends at
		// depth zero. The reverse order would let such an entry survive.
		s.generic.Store(true)
		s.head.Store(nil)
		s.engine.traceMegamorphic(s)
		v, err := s.dispatchGeneric(receiver, block, args, action)
		return v, err, false
	}

	fresh.next = head
	if !s.head.CompareAndSwap(head, fresh) {
		// Another thread installed first. Its entry is as good as ours.
		return vm.Nil, nil, true
	}
	s.installs.Add(1)
	s.engine.traceInstall(s, fresh)

	v, err := fresh.serve(s.engine.rt, receiver, block, args)
	return v, err, false
}

// rebuildAt heals a chain whose entry failed its assumption check:
// entries ahead of the stale one are preserved, the stale entry is
// dropped, and a freshly resolved entry for the current receiver heads
// the new suffix. A stale entry is never simply skipped -- it could mask
// a now-applicable resolution behind it.
func (s *CallSite) rebuildAt(head, stale *entry, receiver, block vm.Value, args []vm.Value, action Action) (vm.Value, error, bool) {
	fresh, immediate, err := s.resolve(receiver, action, false)

	suffix := stale.next
	if fresh != nil {
		fresh.next = suffix
		suffix = fresh
	}
	newHead := suffix
	var prefix []*entry
	for e := head; e != nil && e != stale; e = e.next {
		prefix = append(prefix, e)
	}
	for i := len(prefix) - 1; i >= 0; i-- {
		newHead = prefix[i].clone(newHead)
	}

	if !s.head.CompareAndSwap(head, newHead) {
		// Chain changed under us; discard and re-read.
		return vm.Nil, nil, true
	}
	s.rebuilds.Add(1)
	s.engine.traceRebuild(s, stale)

	if err != nil {
		return vm.Nil, err, false
	}
	if fresh == nil {
		return immediate, nil, false
	}
	v, serveErr := fresh.serve(s.engine.rt, receiver, block, args)
	return v, serveErr, false
}

// dispatchGeneric is the megamorphic path: full lookup on every call,
// indirect invocation, nothing cached.
func (s *CallSite) dispatchGeneric(receiver, block vm.Value, args []vm.Value, action Action) (vm.Value, error) {
	fresh, immediate, err := s.resolve(receiver, action, true)
	if err != nil {
		return vm.Nil, err
	}
	if fresh == nil {
		return immediate, nil
	}
	return fresh.serve(s.engine.rt, receiver, block, args)
}

// resolve performs full lookup for the receiver's current shape and
// builds an unlinked entry. It returns (nil, value, nil) for results that
// must not be cached (a respond-to miss answers false), and a language
// error when lookup fails. generic forces the indirect invocation path
// and is used for megamorphic dispatch.
func (s *CallSite) resolve(receiver vm.Value, action Action, generic bool) (*entry, vm.Value, error) {
	rt := s.engine.rt

	var (
		guard guardKind
		class *vm.Class
		kind  vm.Kind
		table *vm.MethodTable
	)
	switch {
	case receiver.IsObject():
		guard = guardBoxed
		class = receiver.ObjectRef().Class()
		table = class.Methods
	case receiver.IsClass():
		guard = guardClassSide
		class = receiver.ClassRef()
		table = class.ClassMethods
	default:
		guard = guardUnboxed
		kind = receiver.Kind()
		class = rt.ClassFor(receiver)
		table = class.Methods
	}

	e := &entry{
		guard:         guard,
		action:        action,
		expectedClass: class,
		expectedKind:  kind,
	}

	switch action {
	case CallMethod:
		target, declaring := table.Lookup(s.selectorID)
		if target == nil {
			return nil, vm.Nil, &vm.DoesNotUnderstandError{ReceiverClass: class, Selector: s.Selector}
		}
		e.call = newInvoker(target, declaring, generic)
		e.token = s.methodToken(guard, class)

	case RespondTo:
		target, _ := table.Lookup(s.selectorID)
		if target == nil {
			// Failed lookups are never cached.
			return nil, vm.False, nil
		}
		e.token = s.methodToken(guard, class)

	default: // ReadConstant
		value, _, ok := class.LookupConstant(s.Selector)
		if !ok {
			return nil, vm.Nil, &vm.UninitializedConstantError{Class: class, Name: s.Selector}
		}
		e.constant = value
		e.token = class.ConstantAssumption()
	}

	return e, vm.Nil, nil
}

// methodToken picks the assumption snapshot for a method-flavored entry.
// Unboxed guards hold no real token.
func (s *CallSite) methodToken(guard guardKind, class *vm.Class) *vm.Assumption {
	if guard == guardUnboxed {
		return vm.AlwaysValid
	}
	return class.MethodAssumption()
}

// State returns the site's cache state.
func (s *CallSite) State() State {
	if s.generic.Load() {
		return StateMegamorphic
	}
	switch n := s.head.Load().depth(); {
	case n == 0:
		return StateEmpty
	case n == 1:
		return StateMonomorphic
	default:
		return StatePolymorphic
	}
}

// Depth returns the number of live specialized entries.
func (s *CallSite) Depth() int {
	return s.head.Load().depth()
}
