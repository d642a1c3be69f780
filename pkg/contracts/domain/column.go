package domain

import (
	"time"
)

// ColumnType identifies the logical type of a column
type ColumnType string

const (
	ColumnTypeNumeric     ColumnType = "numeric"
	ColumnTypeText        ColumnType = "text"
	ColumnTypeBoolean     ColumnType = "boolean"
	ColumnTypeDatetime    ColumnType = "datetime"
	ColumnTypeCategorical ColumnType = "categorical"
)

// Column is a named sequence of values of a single logical type.
// Absence is tracked per cell, independent of the logical type, so any
// entry may be missing regardless of what the column holds.
//
// Columns are immutable from outside the package: accessors return
// copies of the backing slices, and new columns are built through the
// typed constructors. Engines consume columns, compute replacements and
// assemble fresh Tables rather than mutating in place.
type Column struct {
	name   string
	ctype  ColumnType
	absent []bool

	nums  []float64
	strs  []string
	bools []bool
	times []time.Time
}

// NewNumericColumn creates a numeric column. A nil absent mask means no
// value is missing; otherwise the mask must match len(values).
func NewNumericColumn(name string, values []float64, absent []bool) Column {
	return Column{
		name:   name,
		ctype:  ColumnTypeNumeric,
		nums:   append([]float64(nil), values...),
		absent: normalizeMask(absent, len(values)),
	}
}

// NewTextColumn creates a free-text column.
func NewTextColumn(name string, values []string, absent []bool) Column {
	return Column{
		name:   name,
		ctype:  ColumnTypeText,
		strs:   append([]string(nil), values...),
		absent: normalizeMask(absent, len(values)),
	}
}

// NewCategoricalColumn creates a categorical column backed by strings.
func NewCategoricalColumn(name string, values []string, absent []bool) Column {
	c := NewTextColumn(name, values, absent)
	c.ctype = ColumnTypeCategorical
	return c
}

// NewBooleanColumn creates a boolean column.
func NewBooleanColumn(name string, values []bool, absent []bool) Column {
	return Column{
		name:   name,
		ctype:  ColumnTypeBoolean,
		bools:  append([]bool(nil), values...),
		absent: normalizeMask(absent, len(values)),
	}
}

// NewDatetimeColumn creates a datetime column.
func NewDatetimeColumn(name string, values []time.Time, absent []bool) Column {
	return Column{
		name:   name,
		ctype:  ColumnTypeDatetime,
		times:  append([]time.Time(nil), values...),
		absent: normalizeMask(absent, len(values)),
	}
}

func normalizeMask(absent []bool, n int) []bool {
	mask := make([]bool, n)
	copy(mask, absent)
	return mask
}

// Name returns the column name.
func (c Column) Name() string { return c.name }

// Type returns the logical column type.
func (c Column) Type() ColumnType { return c.ctype }

// Len returns the number of cells in the column.
func (c Column) Len() int { return len(c.absent) }

// IsAbsent reports whether the cell at row i is missing.
func (c Column) IsAbsent(i int) bool { return c.absent[i] }

// AbsentCount returns the number of missing cells.
func (c Column) AbsentCount() int {
	n := 0
	for _, a := range c.absent {
		if a {
			n++
		}
	}
	return n
}

// IsNumeric reports whether the column holds numeric values.
func (c Column) IsNumeric() bool { return c.ctype == ColumnTypeNumeric }

// Float returns the numeric value at row i; ok is false when the cell is
// absent or the column is not numeric.
func (c Column) Float(i int) (float64, bool) {
	if c.ctype != ColumnTypeNumeric || c.absent[i] {
		return 0, false
	}
	return c.nums[i], true
}

// StringVal returns the text value at row i for text and categorical columns.
func (c Column) StringVal(i int) (string, bool) {
	if (c.ctype != ColumnTypeText && c.ctype != ColumnTypeCategorical) || c.absent[i] {
		return "", false
	}
	return c.strs[i], true
}

// Bool returns the boolean value at row i.
func (c Column) Bool(i int) (bool, bool) {
	if c.ctype != ColumnTypeBoolean || c.absent[i] {
		return false, false
	}
	return c.bools[i], true
}

// Time returns the datetime value at row i.
func (c Column) Time(i int) (time.Time, bool) {
	if c.ctype != ColumnTypeDatetime || c.absent[i] {
		return time.Time{}, false
	}
	return c.times[i], true
}

// Value returns the cell at row i as a tagged scalar.
func (c Column) Value(i int) Value {
	if c.absent[i] {
		return AbsentValue()
	}
	switch c.ctype {
	case ColumnTypeNumeric:
		return NumericValue(c.nums[i])
	case ColumnTypeBoolean:
		return BooleanValue(c.bools[i])
	case ColumnTypeDatetime:
		return DatetimeValue(c.times[i])
	default:
		return TextValue(c.strs[i])
	}
}

// Floats returns copies of the numeric values and the absent mask.
// Absent cells hold a zero value; callers must consult the mask.
func (c Column) Floats() ([]float64, []bool) {
	return append([]float64(nil), c.nums...), append([]bool(nil), c.absent...)
}

// Strings returns copies of the string values and the absent mask.
func (c Column) Strings() ([]string, []bool) {
	return append([]string(nil), c.strs...), append([]bool(nil), c.absent...)
}

// Bools returns copies of the boolean values and the absent mask.
func (c Column) Bools() ([]bool, []bool) {
	return append([]bool(nil), c.bools...), append([]bool(nil), c.absent...)
}

// Times returns copies of the datetime values and the absent mask.
func (c Column) Times() ([]time.Time, []bool) {
	return append([]time.Time(nil), c.times...), append([]bool(nil), c.absent...)
}

// AbsentMask returns a copy of the per-cell absence mask.
func (c Column) AbsentMask() []bool {
	return append([]bool(nil), c.absent...)
}

// NonAbsentFloats returns only the present numeric values, in row order.
func (c Column) NonAbsentFloats() []float64 {
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if !c.absent[i] {
			out = append(out, v)
		}
	}
	return out
}

// Renamed returns a copy of the column under a new name.
func (c Column) Renamed(name string) Column {
	c.name = name
	return c
}

// filtered returns a copy keeping only rows where keep[i] is true.
func (c Column) filtered(keep []bool) Column {
	out := Column{name: c.name, ctype: c.ctype}
	for i, k := range keep {
		if !k {
			continue
		}
		out.absent = append(out.absent, c.absent[i])
		switch c.ctype {
		case ColumnTypeNumeric:
			out.nums = append(out.nums, c.nums[i])
		case ColumnTypeBoolean:
			out.bools = append(out.bools, c.bools[i])
		case ColumnTypeDatetime:
			out.times = append(out.times, c.times[i])
		default:
			out.strs = append(out.strs, c.strs[i])
		}
	}
	return out
}

// reordered returns a copy with rows rearranged by the given index order.
func (c Column) reordered(order []int) Column {
	out := Column{name: c.name, ctype: c.ctype}
	out.absent = make([]bool, len(order))
	switch c.ctype {
	case ColumnTypeNumeric:
		out.nums = make([]float64, len(order))
	case ColumnTypeBoolean:
		out.bools = make([]bool, len(order))
	case ColumnTypeDatetime:
		out.times = make([]time.Time, len(order))
	default:
		out.strs = make([]string, len(order))
	}
	for dst, src := range order {
		out.absent[dst] = c.absent[src]
		switch c.ctype {
		case ColumnTypeNumeric:
			out.nums[dst] = c.nums[src]
		case ColumnTypeBoolean:
			out.bools[dst] = c.bools[src]
		case ColumnTypeDatetime:
			out.times[dst] = c.times[src]
		default:
			out.strs[dst] = c.strs[src]
		}
	}
	return out
}
