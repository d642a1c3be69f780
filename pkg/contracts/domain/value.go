package domain

import (
	"fmt"
	"strconv"
	"time"
)

// ValueKind identifies what a Value holds.
type ValueKind string

const (
	ValueKindAbsent   ValueKind = "absent"
	ValueKindNumeric  ValueKind = "numeric"
	ValueKindText     ValueKind = "text"
	ValueKindBoolean  ValueKind = "boolean"
	ValueKindDatetime ValueKind = "datetime"
)

// Value is a tagged scalar cell value. The zero Value is absent, which
// doubles as the distinguished missing marker for every column type.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	b    bool
	t    time.Time
}

// AbsentValue returns the missing-data marker.
func AbsentValue() Value { return Value{kind: ValueKindAbsent} }

// NumericValue wraps a float64.
func NumericValue(v float64) Value { return Value{kind: ValueKindNumeric, num: v} }

// TextValue wraps a string.
func TextValue(s string) Value { return Value{kind: ValueKindText, str: s} }

// BooleanValue wraps a bool.
func BooleanValue(b bool) Value { return Value{kind: ValueKindBoolean, b: b} }

// DatetimeValue wraps a time.Time.
func DatetimeValue(t time.Time) Value { return Value{kind: ValueKindDatetime, t: t} }

// Kind returns what the value holds. The zero Value reports absent.
func (v Value) Kind() ValueKind {
	if v.kind == "" {
		return ValueKindAbsent
	}
	return v.kind
}

// IsAbsent reports whether the value is the missing marker.
func (v Value) IsAbsent() bool { return v.Kind() == ValueKindAbsent }

// Float returns the numeric payload; ok is false for other kinds.
func (v Value) Float() (float64, bool) { return v.num, v.kind == ValueKindNumeric }

// Text returns the string payload.
func (v Value) Text() (string, bool) { return v.str, v.kind == ValueKindText }

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == ValueKindBoolean }

// Time returns the datetime payload.
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == ValueKindDatetime }

// String renders the value for reports and logs.
func (v Value) String() string {
	switch v.Kind() {
	case ValueKindNumeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case ValueKindText:
		return v.str
	case ValueKindBoolean:
		return strconv.FormatBool(v.b)
	case ValueKindDatetime:
		return v.t.Format("2006-01-02 15:04:05")
	default:
		return "<absent>"
	}
}

// Equal compares two values for exact equality, kind included.
func (v Value) Equal(o Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case ValueKindNumeric:
		return v.num == o.num
	case ValueKindText:
		return v.str == o.str
	case ValueKindBoolean:
		return v.b == o.b
	case ValueKindDatetime:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

// Key returns a comparable representation used for grouping and mode counts.
// Distinct kinds never collide even when they render identically.
func (v Value) Key() string {
	return fmt.Sprintf("%s|%s", v.Kind(), v.String())
}
