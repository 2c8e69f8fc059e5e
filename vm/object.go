package vm

// Object is a heap-allocated Verdin instance: a class pointer plus indexed
// instance-variable slots.
type Object struct {
	class *Class
	slots []Value
}

// NewInstance allocates an instance of c with all slots nil.
func (c *Class) NewInstance() *Object {
	obj := &Object{class: c}
	if c.NumSlots > 0 {
		obj.slots = make([]Value, c.NumSlots)
		for i := range obj.slots {
			obj.slots[i] = Nil
		}
	}
	return obj
}

// Class returns the object's class. This is the shape the boxed dispatch
// guard compares against.
func (obj *Object) Class() *Class { return obj.class }

// Slot returns the value at index. Panics if out of range.
func (obj *Object) Slot(index int) Value {
	return obj.slots[index]
}

// SetSlot stores value at index. Panics if out of range.
func (obj *Object) SetSlot(index int, value Value) {
	obj.slots[index] = value
}

// NumSlots returns the slot count.
func (obj *Object) NumSlots() int { return len(obj.slots) }

// ToValue boxes the object.
func (obj *Object) ToValue() Value { return FromObject(obj) }

// ClassName returns the class name, or "?" for a classless object.
func (obj *Object) ClassName() string {
	if obj.class == nil {
		return "?"
	}
	return obj.class.Name
}
