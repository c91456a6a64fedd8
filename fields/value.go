package fields

import "fmt"

// Kind tags the concrete type carried by a Value. Mirrors the wire-level
// parameter types the compiler hands to the SQL layer (spec.md §6.2):
// Int | Float | String | Bool | StringArray | ColorSet.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindBool
	KindStringArray
	KindColorSet
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindStringArray:
		return "string_array"
	case KindColorSet:
		return "color_set"
	default:
		return "unknown"
	}
}

// Value is a parsed, domain-normalized query value. It is a small tagged
// union rather than an interface hierarchy, matching the AST's own
// tagged-sum shape (spec.md §9): no type asserts are needed beyond
// switching on Kind.
type Value struct {
	Kind    Kind
	Int     int64
	Float   float64
	Str     string
	Bool    bool
	Strs    []string
	Colors  ColorSet
}

func IntValue(v int64) Value       { return Value{Kind: KindInt, Int: v} }
func FloatValue(v float64) Value   { return Value{Kind: KindFloat, Float: v} }
func StringValue(v string) Value   { return Value{Kind: KindString, Str: v} }
func BoolValue(v bool) Value       { return Value{Kind: KindBool, Bool: v} }
func StringArray(v []string) Value { return Value{Kind: KindStringArray, Strs: v} }
func ColorSetValue(v ColorSet) Value {
	return Value{Kind: KindColorSet, Colors: v}
}

// IsNumeric reports whether the value can participate in Arith lowering.
func (v Value) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

func (v Value) AsFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindString:
		return v.Str
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindStringArray:
		return fmt.Sprintf("%v", v.Strs)
	case KindColorSet:
		return v.Colors.Canonical()
	default:
		return ""
	}
}
