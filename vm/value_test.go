package vm

import (
	"fmt"
	"math"
	"runtime"
	"testing"
)

// ---------------------------------------------------------------------------
// Kind classification
// ---------------------------------------------------------------------------

func TestValueKinds(t *testing.T) {
	if Nil.Kind() != KindNil {
		t.Errorf("Nil.Kind() = %v, want KindNil", Nil.Kind())
	}
	if True.Kind() != KindTrue {
		t.Errorf("True.Kind() = %v, want KindTrue", True.Kind())
	}
	if False.Kind() != KindFalse {
		t.Errorf("False.Kind() = %v, want KindFalse", False.Kind())
	}
	if FromSmallInt(42).Kind() != KindSmallInt {
		t.Error("small int should have KindSmallInt")
	}
	if FromFloat64(3.14).Kind() != KindFloat {
		t.Error("float should have KindFloat")
	}
	if FromSymbolID(7).Kind() != KindSymbol {
		t.Error("symbol should have KindSymbol")
	}
}

func TestFloatNaNIsFloat(t *testing.T) {
	// A genuine NaN must classify as a float, not as a tagged value.
	v := FromFloat64(math.NaN())
	if v.Kind() != KindFloat {
		t.Errorf("NaN Kind() = %v, want KindFloat", v.Kind())
	}
	if !v.IsFloat() {
		t.Error("NaN should be a float")
	}
}

func TestFloatInfinity(t *testing.T) {
	for _, f := range []float64{math.Inf(1), math.Inf(-1)} {
		v := FromFloat64(f)
		if !v.IsFloat() {
			t.Errorf("Inf %v should be a float", f)
		}
		if v.Float64() != f {
			t.Errorf("Float64() = %v, want %v", v.Float64(), f)
		}
	}
}

// ---------------------------------------------------------------------------
// Small integers
// ---------------------------------------------------------------------------

func TestSmallIntRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 42, -42, MaxSmallInt, MinSmallInt}
	for _, n := range cases {
		v := FromSmallInt(n)
		if !v.IsSmallInt() {
			t.Errorf("FromSmallInt(%d) should be a small int", n)
		}
		if got := v.SmallInt(); got != n {
			t.Errorf("SmallInt() = %d, want %d", got, n)
		}
	}
}

func TestSmallIntOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FromSmallInt above range should panic")
		}
	}()
	FromSmallInt(MaxSmallInt + 1)
}

// ---------------------------------------------------------------------------
// Objects and classes
// ---------------------------------------------------------------------------

func TestObjectRoundTrip(t *testing.T) {
	c := NewClassWithInstVars("Point", nil, []string{"x", "y"})
	obj := c.NewInstance()
	obj.SetSlot(0, FromSmallInt(3))
	obj.SetSlot(1, FromSmallInt(4))

	v := obj.ToValue()
	if !v.IsObject() {
		t.Fatal("boxed object should be an object value")
	}
	back := v.ObjectRef()
	if back != obj {
		t.Error("ObjectRef should return the original object")
	}
	if back.Slot(0).SmallInt() != 3 || back.Slot(1).SmallInt() != 4 {
		t.Error("slots should survive boxing")
	}
	if back.Class() != c {
		t.Error("class pointer should survive boxing")
	}
}

func TestClassValueRoundTrip(t *testing.T) {
	c := NewClass("Widget", nil)
	v := c.ToValue()
	if !v.IsClass() {
		t.Fatal("boxed class should be a class value")
	}
	if v.ClassRef() != c {
		t.Error("ClassRef should return the original class")
	}
	if v.Kind() != KindClass {
		t.Errorf("Kind() = %v, want KindClass", v.Kind())
	}
}

func TestLoopInstancesStayDistinct(t *testing.T) {
	// Receivers boxed in a loop must keep their own identity: the boxed
	// pointer has to count as a live reference, or the allocator is free
	// to reuse one slot for every iteration.
	classes := make([]*Class, 4)
	for i := range classes {
		classes[i] = NewClass(fmt.Sprintf("Loop%d", i), nil)
	}

	vals := make([]Value, len(classes))
	for i, c := range classes {
		vals[i] = c.NewInstance().ToValue()
	}

	for i, v := range vals {
		if got := v.ObjectRef().Class(); got != classes[i] {
			t.Errorf("vals[%d] has class %v, want %v", i, got, classes[i])
		}
		for j := i + 1; j < len(vals); j++ {
			if v.ObjectRef() == vals[j].ObjectRef() {
				t.Errorf("vals[%d] and vals[%d] alias the same object", i, j)
			}
		}
	}
}

func TestBoxedObjectsSurviveGC(t *testing.T) {
	// An object whose only reference is a boxed Value must not be
	// collected.
	c := NewClassWithInstVars("Cell", nil, []string{"n"})
	vals := make([]Value, 8)
	for i := range vals {
		obj := c.NewInstance()
		obj.SetSlot(0, FromSmallInt(int64(i)))
		vals[i] = obj.ToValue()
	}

	runtime.GC()
	runtime.GC()

	for i, v := range vals {
		obj := v.ObjectRef()
		if obj == nil {
			t.Fatalf("vals[%d] lost its object", i)
		}
		if got := obj.Slot(0).SmallInt(); got != int64(i) {
			t.Errorf("vals[%d] slot = %d, want %d", i, got, i)
		}
	}
}

func TestBlockRoundTrip(t *testing.T) {
	b := &Block{Target: NewTarget("block", func(rt *Runtime, recv, block Value, args []Value) (Value, error) {
		return Nil, nil
	})}
	v := FromBlock(b)
	if !v.IsBlock() {
		t.Fatal("boxed block should be a block value")
	}
	if v.BlockRef() != b {
		t.Error("BlockRef should return the original block")
	}
}

// ---------------------------------------------------------------------------
// Truthiness
// ---------------------------------------------------------------------------

func TestTruthiness(t *testing.T) {
	if Nil.IsTruthy() || False.IsTruthy() {
		t.Error("nil and false must be falsy")
	}
	if !True.IsTruthy() {
		t.Error("true must be truthy")
	}
	if !FromSmallInt(0).IsTruthy() {
		t.Error("zero is truthy")
	}
	if !FromFloat64(0).IsTruthy() {
		t.Error("0.0 is truthy")
	}
}
