package model

import (
	"strconv"
)

// Kind is the storage type of an attribute value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFloat
	KindInt
	KindBool
)

// String returns the kind name used in logs and dumps.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is a tagged scalar held by an attribute.
// The zero Value has KindInvalid.
type Value struct {
	kind Kind
	f    float64
	i    int64
	b    bool
}

// Float creates a float value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Int creates an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Bool creates a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether the value carries a kind.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Float returns the value as float64. Integers are converted, booleans map to 0/1.
func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	case KindBool:
		if v.b {
			return 1
		}
	}
	return 0
}

// Int returns the value as int64. Floats are truncated.
func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return int64(v.f)
	case KindBool:
		if v.b {
			return 1
		}
	}
	return 0
}

// Bool returns the boolean payload. Non-bool kinds report true when non-zero.
func (v Value) Bool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindFloat:
		return v.f != 0
	case KindInt:
		return v.i != 0
	}
	return false
}

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindFloat:
		return v.f == o.f
	case KindInt:
		return v.i == o.i
	case KindBool:
		return v.b == o.b
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return "<invalid>"
}
