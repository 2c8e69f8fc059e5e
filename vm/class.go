package vm

import (
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// MethodTable
// ---------------------------------------------------------------------------

// MethodTable maps selector IDs to call targets for one class.
//
// Targets are stored in a slice indexed by selector ID; inheritance walks
// the parent chain. Reads take an RLock — the dispatch engine only touches
// tables on a cache miss, so full lookup is off the hot path and mutation
// is rare.
type MethodTable struct {
	mu      sync.RWMutex
	class   *Class
	parent  *MethodTable
	targets []*CallTarget
}

func newMethodTable(class *Class, parent *MethodTable) *MethodTable {
	return &MethodTable{
		class:   class,
		parent:  parent,
		targets: make([]*CallTarget, 0, 32),
	}
}

// Lookup resolves selector along the inheritance chain. Returns the target
// and its declaring class, or (nil, nil) when no method is defined.
func (mt *MethodTable) Lookup(selector int) (*CallTarget, *Class) {
	for t := mt; t != nil; t = t.parent {
		t.mu.RLock()
		var found *CallTarget
		if selector >= 0 && selector < len(t.targets) {
			found = t.targets[selector]
		}
		t.mu.RUnlock()
		if found != nil {
			return found, t.class
		}
	}
	return nil, nil
}

// LookupLocal resolves selector in this table only.
func (mt *MethodTable) LookupLocal(selector int) *CallTarget {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	if selector >= 0 && selector < len(mt.targets) {
		return mt.targets[selector]
	}
	return nil
}

// Defines returns true if this table (not parents) defines selector.
func (mt *MethodTable) Defines(selector int) bool {
	return mt.LookupLocal(selector) != nil
}

// Class returns the owning class.
func (mt *MethodTable) Class() *Class { return mt.class }

func (mt *MethodTable) insert(selector int, target *CallTarget) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if selector >= len(mt.targets) {
		grown := make([]*CallTarget, selector+1)
		copy(grown, mt.targets)
		mt.targets = grown
	}
	mt.targets[selector] = target
}

func (mt *MethodTable) remove(selector int) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if selector >= 0 && selector < len(mt.targets) {
		mt.targets[selector] = nil
	}
}

// ---------------------------------------------------------------------------
// Class
// ---------------------------------------------------------------------------

// Class is a Verdin class: a named method table in an inheritance chain,
// plus class-side methods, constants, and the assumptions the dispatch
// engine guards on.
//
// Every mutation of the method table (instance or class side) invalidates
// the class's current method assumption — and, transitively, those of its
// subclasses, since their lookup results may have changed — and mints a
// fresh one. Constant definitions do the same with the separate constant
// assumption. Cache entries snapshot whichever assumption matches their
// dispatch action.
type Class struct {
	Name       string
	Superclass *Class
	InstVars   []string
	NumSlots   int

	Methods      *MethodTable
	ClassMethods *MethodTable

	methodsToken   atomic.Pointer[Assumption]
	constantsToken atomic.Pointer[Assumption]

	constMu sync.RWMutex
	consts  map[string]Value

	subMu      sync.Mutex
	subclasses []*Class
}

// NewClass creates a class under superclass (nil for the root). Method
// tables are created and linked to the parent's.
func NewClass(name string, superclass *Class) *Class {
	c := &Class{
		Name:       name,
		Superclass: superclass,
	}
	var parentMT, parentCMT *MethodTable
	if superclass != nil {
		parentMT = superclass.Methods
		parentCMT = superclass.ClassMethods
		c.NumSlots = superclass.NumSlots
		superclass.addSubclass(c)
	}
	c.Methods = newMethodTable(c, parentMT)
	c.ClassMethods = newMethodTable(c, parentCMT)
	c.methodsToken.Store(NewAssumption(name + " methods unmodified"))
	c.constantsToken.Store(NewAssumption(name + " constants unmodified"))
	return c
}

// NewClassWithInstVars creates a class declaring instance variables.
func NewClassWithInstVars(name string, superclass *Class, instVars []string) *Class {
	c := NewClass(name, superclass)
	c.InstVars = instVars
	c.NumSlots += len(instVars)
	return c
}

func (c *Class) addSubclass(sub *Class) {
	c.subMu.Lock()
	c.subclasses = append(c.subclasses, sub)
	c.subMu.Unlock()
}

// MethodAssumption returns the current method-table assumption. Guard
// entries snapshot it at install time.
func (c *Class) MethodAssumption() *Assumption {
	return c.methodsToken.Load()
}

// ConstantAssumption returns the current constant-table assumption.
func (c *Class) ConstantAssumption() *Assumption {
	return c.constantsToken.Load()
}

// noteMethodsChanged invalidates the method assumption of c and every
// transitive subclass, replacing each with a fresh token. Entries that
// snapshotted an old token fail their next guard check.
func (c *Class) noteMethodsChanged() {
	old := c.methodsToken.Swap(NewAssumption(c.Name + " methods unmodified"))
	old.Invalidate()
	c.subMu.Lock()
	subs := append([]*Class(nil), c.subclasses...)
	c.subMu.Unlock()
	for _, sub := range subs {
		sub.noteMethodsChanged()
	}
}

func (c *Class) noteConstantsChanged() {
	old := c.constantsToken.Swap(NewAssumption(c.Name + " constants unmodified"))
	old.Invalidate()
	c.subMu.Lock()
	subs := append([]*Class(nil), c.subclasses...)
	c.subMu.Unlock()
	for _, sub := range subs {
		sub.noteConstantsChanged()
	}
}

// ---------------------------------------------------------------------------
// Method definition
// ---------------------------------------------------------------------------

// DefineMethod installs (or redefines) an instance method. Selector names
// are interned in the given table.
func (c *Class) DefineMethod(selectors *SelectorTable, name string, target *CallTarget) {
	c.Methods.insert(selectors.Intern(name), target)
	c.noteMethodsChanged()
}

// RemoveMethod removes an instance method if present.
func (c *Class) RemoveMethod(selectors *SelectorTable, name string) {
	id := selectors.Lookup(name)
	if id < 0 {
		return
	}
	c.Methods.remove(id)
	c.noteMethodsChanged()
}

// DefineClassMethod installs (or redefines) a class-side method.
func (c *Class) DefineClassMethod(selectors *SelectorTable, name string, target *CallTarget) {
	c.ClassMethods.insert(selectors.Intern(name), target)
	c.noteMethodsChanged()
}

// LookupMethod resolves an instance method by selector ID, walking the
// superclass chain. Returns the target and its declaring class.
func (c *Class) LookupMethod(selector int) (*CallTarget, *Class) {
	return c.Methods.Lookup(selector)
}

// RespondsTo returns true if c or a superclass defines selector.
func (c *Class) RespondsTo(selector int) bool {
	t, _ := c.Methods.Lookup(selector)
	return t != nil
}

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

// DefineConstant binds a constant on this class.
func (c *Class) DefineConstant(name string, value Value) {
	c.constMu.Lock()
	if c.consts == nil {
		c.consts = make(map[string]Value)
	}
	c.consts[name] = value
	c.constMu.Unlock()
	c.noteConstantsChanged()
}

// LookupConstant resolves a constant, walking the superclass chain.
// Returns the value, the declaring class, and whether it was found.
func (c *Class) LookupConstant(name string) (Value, *Class, bool) {
	for cur := c; cur != nil; cur = cur.Superclass {
		cur.constMu.RLock()
		v, ok := cur.consts[name]
		cur.constMu.RUnlock()
		if ok {
			return v, cur, true
		}
	}
	return Nil, nil, false
}

// IsSubclassOf returns true if c is other or a subclass of other.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Superclass {
		if cur == other {
			return true
		}
	}
	return false
}

// ToValue boxes the class as a first-class value.
func (c *Class) ToValue() Value { return FromClass(c) }

func (c *Class) String() string { return c.Name }

// ---------------------------------------------------------------------------
// ClassTable
// ---------------------------------------------------------------------------

// ClassTable is the runtime's class registry. Thread-safe.
type ClassTable struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

// NewClassTable creates an empty registry.
func NewClassTable() *ClassTable {
	return &ClassTable{classes: make(map[string]*Class)}
}

// Register adds a class, returning any class previously registered under
// the same name.
func (ct *ClassTable) Register(c *Class) *Class {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	old := ct.classes[c.Name]
	ct.classes[c.Name] = c
	return old
}

// Lookup finds a class by name, or nil.
func (ct *ClassTable) Lookup(name string) *Class {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.classes[name]
}

// All returns the registered classes in unspecified order.
func (ct *ClassTable) All() []*Class {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	out := make([]*Class, 0, len(ct.classes))
	for _, c := range ct.classes {
		out = append(out, c)
	}
	return out
}

// Len returns the number of registered classes.
func (ct *ClassTable) Len() int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return len(ct.classes)
}
