package ast

import (
	"fmt"
	"strconv"
)

// ValueType represents the type of a literal or reference in a DCL rule.
// DCL has a strict type system with no automatic coercion.
type ValueType string

const (
	ValueTypeString   ValueType = "string"
	ValueTypeNumber   ValueType = "number"
	ValueTypeBoolean  ValueType = "boolean"
	ValueTypeNull     ValueType = "null"
	ValueTypeRegex    ValueType = "regex"
	ValueTypeFieldRef ValueType = "field_ref" // Late-bound, resolved at evaluation time
)

// Value represents a value node in the AST (comparison operands, action
// arguments). Values are immutable once parsed.
type Value struct {
	Type     ValueType
	Str      string   // String content or regex pattern body
	Num      float64  // Numeric content
	Bool     bool     // Boolean content
	Field    FieldRef // Referenced field (for ValueTypeFieldRef)
	Location Location // Source location
}

// StringValue constructs a string literal value.
func StringValue(s string) *Value { return &Value{Type: ValueTypeString, Str: s} }

// NumberValue constructs a numeric literal value.
func NumberValue(n float64) *Value { return &Value{Type: ValueTypeNumber, Num: n} }

// BoolValue constructs a boolean literal value.
func BoolValue(b bool) *Value { return &Value{Type: ValueTypeBoolean, Bool: b} }

// NullValue constructs a null literal value.
func NullValue() *Value { return &Value{Type: ValueTypeNull} }

// RegexValue constructs a regex literal value holding the pattern body.
// The pattern is not compiled here; compilation happens at evaluation time
// so an invalid pattern surfaces as an evaluation error, not a parse error.
func RegexValue(pattern string) *Value { return &Value{Type: ValueTypeRegex, Str: pattern} }

// FieldRefValue constructs a late-bound field reference value.
func FieldRefValue(field FieldRef) *Value { return &Value{Type: ValueTypeFieldRef, Field: field} }

// IsLiteral reports whether the value is a literal (not a field reference).
func (v *Value) IsLiteral() bool {
	return v.Type != ValueTypeFieldRef
}

// Equal reports structural equality between two values, ignoring location.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValueTypeString, ValueTypeRegex:
		return v.Str == other.Str
	case ValueTypeNumber:
		return v.Num == other.Num
	case ValueTypeBoolean:
		return v.Bool == other.Bool
	case ValueTypeNull:
		return true
	case ValueTypeFieldRef:
		return v.Field.Equal(other.Field)
	default:
		return false
	}
}

// String returns a DCL-syntax rendering of the value.
func (v *Value) String() string {
	switch v.Type {
	case ValueTypeString:
		return strconv.Quote(v.Str)
	case ValueTypeNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.Bool)
	case ValueTypeNull:
		return "null"
	case ValueTypeRegex:
		return "/" + v.Str + "/"
	case ValueTypeFieldRef:
		return v.Field.String()
	default:
		return fmt.Sprintf("<%s>", v.Type)
	}
}
