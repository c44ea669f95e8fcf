package object

import (
	"fmt"
	"math"
	"strconv"
	"unsafe"
)

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull

	TypeBoolean

	TypeFloatNumber
	TypeIntegerNumber

	TypeString

	TypeNativeFunction

	TypeObject
	TypeConstructor
)

// String returns a human-readable string representation of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeFloatNumber, TypeIntegerNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeNativeFunction:
		return "native function"
	case TypeObject:
		return "object"
	case TypeConstructor:
		return "constructor"
	default:
		return "unknown"
	}
}

// Value is the tagged representation every property slot, prototype
// link and accessor holds. Immediate kinds live in payload; heap kinds
// point at their backing record through obj.
type Value struct {
	typ     ValueType
	payload uint64
	obj     unsafe.Pointer
}

type StringObject struct {
	value string
}

// NativeFn is the signature of every Go-implemented callable in the
// model: getters, setters and constructor initializers. receiver is
// the implicit "self" the call is bound to.
type NativeFn func(receiver Value, args []Value) (Value, error)

type NativeFunctionObject struct {
	Arity    int
	Variadic bool
	Name     string
	Fn       NativeFn
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, payload: 1}
	False     = Value{typ: TypeBoolean, payload: 0}
	NaN       = Value{typ: TypeFloatNumber, payload: math.Float64bits(math.NaN())}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeFloatNumber, payload: math.Float64bits(value)}
}

func IntegerValue(value int32) Value {
	return Value{typ: TypeIntegerNumber, payload: uint64(int64(value))}
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, obj: unsafe.Pointer(&StringObject{value: value})}
}

func NewNativeFunction(arity int, variadic bool, name string, fn NativeFn) Value {
	nf := &NativeFunctionObject{Arity: arity, Variadic: variadic, Name: name, Fn: fn}
	return Value{typ: TypeNativeFunction, obj: unsafe.Pointer(nf)}
}

// NewValueFromPlainObject boxes an existing PlainObject.
func NewValueFromPlainObject(o *PlainObject) Value {
	return Value{typ: TypeObject, obj: unsafe.Pointer(o)}
}

// NewValueFromConstructor boxes an existing ConstructorObject.
func NewValueFromConstructor(c *ConstructorObject) Value {
	return Value{typ: TypeConstructor, obj: unsafe.Pointer(c)}
}

func (v Value) Type() ValueType { return v.typ }

func (v Value) TypeName() string { return v.typ.String() }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }

func (v Value) IsNull() bool { return v.typ == TypeNull }

// IsNullish reports whether the value is the chain terminator
// (undefined or null) when used as a prototype link.
func (v Value) IsNullish() bool { return v.typ == TypeUndefined || v.typ == TypeNull }

func (v Value) IsBoolean() bool { return v.typ == TypeBoolean }

func (v Value) IsNumber() bool { return v.typ == TypeFloatNumber || v.typ == TypeIntegerNumber }

func (v Value) IsString() bool { return v.typ == TypeString }

func (v Value) IsObject() bool { return v.typ == TypeObject }

func (v Value) IsConstructor() bool { return v.typ == TypeConstructor }

// IsChainable reports whether the value can appear as a member of a
// prototype chain (plain objects and constructors both can).
func (v Value) IsChainable() bool { return v.typ == TypeObject || v.typ == TypeConstructor }

func (v Value) IsCallable() bool { return v.typ == TypeNativeFunction }

func (v Value) AsBoolean() bool { return v.payload != 0 }

func (v Value) AsFloat() float64 { return math.Float64frombits(v.payload) }

func (v Value) AsInteger() int32 { return int32(int64(v.payload)) }

func (v Value) AsString() string {
	if v.typ != TypeString {
		return ""
	}
	return (*StringObject)(v.obj).value
}

func (v Value) AsPlainObject() *PlainObject {
	if v.typ != TypeObject {
		return nil
	}
	return (*PlainObject)(v.obj)
}

func (v Value) AsConstructor() *ConstructorObject {
	if v.typ != TypeConstructor {
		return nil
	}
	return (*ConstructorObject)(v.obj)
}

func (v Value) AsNativeFunction() *NativeFunctionObject {
	if v.typ != TypeNativeFunction {
		return nil
	}
	return (*NativeFunctionObject)(v.obj)
}

// Is implements identity comparison: same tag, and same payload or
// same backing record. Strings compare by content.
func (v Value) Is(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean, TypeFloatNumber, TypeIntegerNumber:
		return v.payload == other.payload
	case TypeString:
		return v.AsString() == other.AsString()
	default:
		return v.obj == other.obj
	}
}

// Inspect renders a debug representation. Objects print their arena id
// so log lines and test failures can be correlated.
func (v Value) Inspect() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.payload != 0 {
			return "true"
		}
		return "false"
	case TypeFloatNumber:
		return strconv.FormatFloat(v.AsFloat(), 'g', -1, 64)
	case TypeIntegerNumber:
		return strconv.FormatInt(int64(v.AsInteger()), 10)
	case TypeString:
		return strconv.Quote(v.AsString())
	case TypeNativeFunction:
		return fmt.Sprintf("<native fn %s>", v.AsNativeFunction().Name)
	case TypeObject:
		return fmt.Sprintf("<object #%d>", v.AsPlainObject().id)
	case TypeConstructor:
		return fmt.Sprintf("<constructor %s>", v.AsConstructor().Name)
	default:
		return "<unknown>"
	}
}
