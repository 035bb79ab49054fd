package vdom

import (
	"fmt"
	"strconv"
)

// ScalarKind is the Value discriminator.
type ScalarKind uint8

const (
	ScalarString ScalarKind = iota
	ScalarBool
	ScalarInt
	ScalarFloat
)

// String returns the string representation of the ScalarKind.
func (k ScalarKind) String() string {
	switch k {
	case ScalarString:
		return "String"
	case ScalarBool:
		return "Bool"
	case ScalarInt:
		return "Int"
	case ScalarFloat:
		return "Float"
	default:
		return "Unknown"
	}
}

// Value is a plain attribute scalar. Only the field matching Kind is set,
// which keeps Value comparable with ==.
type Value struct {
	Kind  ScalarKind
	Str   string
	Bool  bool
	Int   int64
	Float float64
}

// StringValue creates a string scalar.
func StringValue(s string) Value { return Value{Kind: ScalarString, Str: s} }

// BoolValue creates a boolean scalar.
func BoolValue(b bool) Value { return Value{Kind: ScalarBool, Bool: b} }

// IntValue creates an integer scalar.
func IntValue(i int64) Value { return Value{Kind: ScalarInt, Int: i} }

// FloatValue creates a floating point scalar.
func FloatValue(f float64) Value { return Value{Kind: ScalarFloat, Float: f} }

// ValueOf converts a Go value to a Value. Unknown types are formatted with
// fmt's %v verb.
func ValueOf(v any) Value {
	switch val := v.(type) {
	case Value:
		return val
	case string:
		return StringValue(val)
	case bool:
		return BoolValue(val)
	case int:
		return IntValue(int64(val))
	case int32:
		return IntValue(int64(val))
	case int64:
		return IntValue(val)
	case uint:
		return IntValue(int64(val))
	case uint32:
		return IntValue(int64(val))
	case float32:
		return FloatValue(float64(val))
	case float64:
		return FloatValue(val)
	case fmt.Stringer:
		return StringValue(val.String())
	default:
		return StringValue(fmt.Sprintf("%v", v))
	}
}

// String renders the value the way it appears in markup.
func (v Value) String() string {
	switch v.Kind {
	case ScalarBool:
		return strconv.FormatBool(v.Bool)
	case ScalarInt:
		return strconv.FormatInt(v.Int, 10)
	case ScalarFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return v.Str
	}
}

// Truthy reports whether the value reads as an affirmative flag.
func (v Value) Truthy() bool {
	switch v.Kind {
	case ScalarBool:
		return v.Bool
	case ScalarInt:
		return v.Int != 0
	case ScalarFloat:
		return v.Float != 0
	default:
		return v.Str == "true"
	}
}
