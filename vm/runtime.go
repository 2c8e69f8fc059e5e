package vm

// Runtime is the object-model root: the class registry, the selector
// table, and the builtin classes primitive values dispatch through.
type Runtime struct {
	Classes   *ClassTable
	Selectors *SelectorTable

	ObjectClass       *Class
	UndefinedClass    *Class
	BooleanClass      *Class
	TrueClass         *Class
	FalseClass        *Class
	SmallIntegerClass *Class
	FloatClass        *Class
	SymbolClass       *Class
	BlockClass        *Class
	ClassClass        *Class
}

// NewRuntime creates a runtime with the builtin class hierarchy
// registered.
func NewRuntime() *Runtime {
	rt := &Runtime{
		Classes:   NewClassTable(),
		Selectors: NewSelectorTable(),
	}

	rt.ObjectClass = rt.DefineClass("Object", nil)
	rt.UndefinedClass = rt.DefineClass("UndefinedObject", rt.ObjectClass)
	rt.BooleanClass = rt.DefineClass("Boolean", rt.ObjectClass)
	rt.TrueClass = rt.DefineClass("True", rt.BooleanClass)
	rt.FalseClass = rt.DefineClass("False", rt.BooleanClass)
	rt.SmallIntegerClass = rt.DefineClass("SmallInteger", rt.ObjectClass)
	rt.FloatClass = rt.DefineClass("Float", rt.ObjectClass)
	rt.SymbolClass = rt.DefineClass("Symbol", rt.ObjectClass)
	rt.BlockClass = rt.DefineClass("Block", rt.ObjectClass)
	rt.ClassClass = rt.DefineClass("Class", rt.ObjectClass)

	return rt
}

// DefineClass creates and registers a class.
func (rt *Runtime) DefineClass(name string, superclass *Class) *Class {
	c := NewClass(name, superclass)
	rt.Classes.Register(c)
	return c
}

// DefineClassWithInstVars creates and registers a class with instance
// variables.
func (rt *Runtime) DefineClassWithInstVars(name string, superclass *Class, instVars []string) *Class {
	c := NewClassWithInstVars(name, superclass, instVars)
	rt.Classes.Register(c)
	return c
}

// ClassFor returns the dispatch class for a value. Heap objects carry
// their own class; every other kind maps to a builtin.
func (rt *Runtime) ClassFor(v Value) *Class {
	switch v.Kind() {
	case KindObject:
		if obj := v.ObjectRef(); obj != nil && obj.Class() != nil {
			return obj.Class()
		}
		return rt.ObjectClass
	case KindClass:
		return rt.ClassClass
	case KindNil:
		return rt.UndefinedClass
	case KindTrue:
		return rt.TrueClass
	case KindFalse:
		return rt.FalseClass
	case KindSmallInt:
		return rt.SmallIntegerClass
	case KindFloat:
		return rt.FloatClass
	case KindSymbol:
		return rt.SymbolClass
	case KindBlock:
		return rt.BlockClass
	default:
		return rt.ObjectClass
	}
}

// Intern interns a selector name.
func (rt *Runtime) Intern(name string) int {
	return rt.Selectors.Intern(name)
}
