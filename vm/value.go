package vm

import (
	"math"
	"unsafe"
)

// Value represents a Verdin value using NaN-tagging.
//
// All values carry a 64-bit word. Anything that is not a tagged quiet NaN
// is an IEEE 754 double; small integers, symbols, and the specials are
// encoded in the quiet-NaN space with a 3-bit tag and a 48-bit payload.
// Heap references (objects, classes, blocks) keep their tag in the word
// but carry the pointer in a separate field so it stays visible to the
// garbage collector; a pointer smuggled through the payload bits would
// let the collector free (or the stack allocator reuse) a referent that
// is still reachable through a cached value.
//
// Encoding:
//   - Float:    native IEEE 754 double, ptr nil
//   - SmallInt: quiet NaN + tagInt + 48-bit signed payload
//   - Symbol:   quiet NaN + tagSymbol + interned selector ID
//   - Special:  quiet NaN + tagSpecial + nil/true/false
//   - Object:   quiet NaN + tagObject, ptr = *Object
//   - Class:    quiet NaN + tagClass, ptr = *Class
//   - Block:    quiet NaN + tagBlock, ptr = *Block
type Value struct {
	bits uint64
	ptr  unsafe.Pointer
}

const (
	quietNaN uint64 = 0x7FF8000000000000

	tagMask     uint64 = 0x0007000000000000
	payloadMask uint64 = 0x0000FFFFFFFFFFFF

	tagObject  uint64 = 0x0001000000000000
	tagInt     uint64 = 0x0002000000000000
	tagSpecial uint64 = 0x0003000000000000
	tagSymbol  uint64 = 0x0004000000000000
	tagBlock   uint64 = 0x0005000000000000
	tagClass   uint64 = 0x0006000000000000

	intSignBit    uint64 = 0x0000800000000000
	intSignExtend uint64 = 0xFFFF000000000000
)

// Special payloads.
const (
	specialNil   uint64 = 0
	specialTrue  uint64 = 1
	specialFalse uint64 = 2
)

// Pre-built special values.
var (
	Nil   = Value{bits: quietNaN | tagSpecial | specialNil}
	True  = Value{bits: quietNaN | tagSpecial | specialTrue}
	False = Value{bits: quietNaN | tagSpecial | specialFalse}
)

// SmallInt range (48-bit signed).
const (
	MaxSmallInt int64 = (1 << 47) - 1
	MinSmallInt int64 = -(1 << 47)
)

// Kind is the structural identity of a value, used as the guard shape for
// receivers that are not heap objects. Two values of the same non-object
// Kind always dispatch through the same class.
type Kind uint8

const (
	KindFloat Kind = iota
	KindSmallInt
	KindNil
	KindTrue
	KindFalse
	KindSymbol
	KindBlock
	KindObject
	KindClass
)

var kindNames = [...]string{
	KindFloat:    "Float",
	KindSmallInt: "SmallInt",
	KindNil:      "Nil",
	KindTrue:     "True",
	KindFalse:    "False",
	KindSymbol:   "Symbol",
	KindBlock:    "Block",
	KindObject:   "Object",
	KindClass:    "Class",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// Kind returns the structural kind of v.
func (v Value) Kind() Kind {
	if (v.bits & quietNaN) != quietNaN {
		return KindFloat
	}
	switch v.bits & tagMask {
	case tagInt:
		return KindSmallInt
	case tagObject:
		return KindObject
	case tagClass:
		return KindClass
	case tagSymbol:
		return KindSymbol
	case tagBlock:
		return KindBlock
	case tagSpecial:
		switch v.bits & payloadMask {
		case specialTrue:
			return KindTrue
		case specialFalse:
			return KindFalse
		default:
			return KindNil
		}
	default:
		// Untagged quiet NaN is an ordinary float NaN.
		return KindFloat
	}
}

// ---------------------------------------------------------------------------
// Type predicates
// ---------------------------------------------------------------------------

// IsFloat returns true if v is an IEEE 754 double (including Inf and
// untagged NaN).
func (v Value) IsFloat() bool { return v.Kind() == KindFloat }

// IsSmallInt returns true if v is a small integer.
func (v Value) IsSmallInt() bool {
	return (v.bits & (quietNaN | tagMask)) == (quietNaN | tagInt)
}

// IsObject returns true if v is a heap object pointer.
func (v Value) IsObject() bool {
	return (v.bits & (quietNaN | tagMask)) == (quietNaN | tagObject)
}

// IsClass returns true if v is a first-class class reference.
func (v Value) IsClass() bool {
	return (v.bits & (quietNaN | tagMask)) == (quietNaN | tagClass)
}

// IsSymbol returns true if v is an interned symbol.
func (v Value) IsSymbol() bool {
	return (v.bits & (quietNaN | tagMask)) == (quietNaN | tagSymbol)
}

// IsBlock returns true if v is a block closure.
func (v Value) IsBlock() bool {
	return (v.bits & (quietNaN | tagMask)) == (quietNaN | tagBlock)
}

// IsNil returns true if v is the nil value.
func (v Value) IsNil() bool { return v == Nil }

// IsBool returns true if v is true or false.
func (v Value) IsBool() bool { return v == True || v == False }

// ---------------------------------------------------------------------------
// Floats
// ---------------------------------------------------------------------------

// Float64 returns v as a float64. Panics if v is not a float.
func (v Value) Float64() float64 {
	if !v.IsFloat() {
		panic("vm: Value.Float64: not a float")
	}
	return math.Float64frombits(v.bits)
}

// FromFloat64 boxes a float64.
func FromFloat64(f float64) Value {
	return Value{bits: math.Float64bits(f)}
}

// ---------------------------------------------------------------------------
// Small integers
// ---------------------------------------------------------------------------

// SmallInt returns v as an int64. Panics if v is not a small integer.
func (v Value) SmallInt() int64 {
	if !v.IsSmallInt() {
		panic("vm: Value.SmallInt: not a small integer")
	}
	payload := v.bits & payloadMask
	if payload&intSignBit != 0 {
		payload |= intSignExtend
	}
	return int64(payload)
}

// FromSmallInt boxes an int64. Panics if n is out of the SmallInt range.
func FromSmallInt(n int64) Value {
	if n > MaxSmallInt || n < MinSmallInt {
		panic("vm: FromSmallInt: out of range")
	}
	return Value{bits: quietNaN | tagInt | (uint64(n) & payloadMask)}
}

// ---------------------------------------------------------------------------
// Objects and classes
// ---------------------------------------------------------------------------

// ObjectRef returns the *Object behind v, or nil if v is not an object.
func (v Value) ObjectRef() *Object {
	if !v.IsObject() {
		return nil
	}
	return (*Object)(v.ptr)
}

// FromObject boxes an object pointer.
func FromObject(obj *Object) Value {
	return Value{bits: quietNaN | tagObject, ptr: unsafe.Pointer(obj)}
}

// ClassRef returns the *Class behind v, or nil if v is not a class value.
func (v Value) ClassRef() *Class {
	if !v.IsClass() {
		return nil
	}
	return (*Class)(v.ptr)
}

// FromClass boxes a class pointer as a first-class value.
func FromClass(c *Class) Value {
	return Value{bits: quietNaN | tagClass, ptr: unsafe.Pointer(c)}
}

// ---------------------------------------------------------------------------
// Symbols
// ---------------------------------------------------------------------------

// SymbolID returns the interned ID of a symbol value.
func (v Value) SymbolID() uint32 {
	if !v.IsSymbol() {
		panic("vm: Value.SymbolID: not a symbol")
	}
	return uint32(v.bits & payloadMask)
}

// FromSymbolID boxes an interned symbol ID.
func FromSymbolID(id uint32) Value {
	return Value{bits: quietNaN | tagSymbol | uint64(id)}
}

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

// Block is a closure passed alongside a message send. The dispatch engine
// treats it as opaque; only the target it eventually invokes cares about
// its body.
type Block struct {
	Target *CallTarget
}

// FromBlock boxes a block closure.
func FromBlock(b *Block) Value {
	return Value{bits: quietNaN | tagBlock, ptr: unsafe.Pointer(b)}
}

// BlockRef returns the *Block behind v, or nil if v is not a block.
func (v Value) BlockRef() *Block {
	if !v.IsBlock() {
		return nil
	}
	return (*Block)(v.ptr)
}

// ---------------------------------------------------------------------------
// Booleans and truthiness
// ---------------------------------------------------------------------------

// Bool returns v as a bool. Panics if v is not true or false.
func (v Value) Bool() bool {
	switch v {
	case True:
		return true
	case False:
		return false
	default:
		panic("vm: Value.Bool: not a boolean")
	}
}

// FromBool boxes a bool.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// IsTruthy reports conditional truth. Only false and nil are falsy.
func (v Value) IsTruthy() bool {
	return v != False && v != Nil
}
