package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Table is an ordered collection of named columns with positional row
// alignment: row i of every column belongs to the same logical record.
// All columns have equal length at all times; constructors and mutating
// helpers enforce the invariant and return new Table values, never
// modifying the receiver.
type Table struct {
	cols  []Column
	index map[string]int
}

// NewTable builds a table from the given columns. It fails when column
// lengths differ or a name repeats.
func NewTable(cols ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if len(t.cols) > 0 && c.Len() != t.cols[0].Len() {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name(), c.Len(), t.cols[0].Len())
		}
		if _, dup := t.index[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name())
		}
		t.index[c.Name()] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNewTable is NewTable that panics on invalid input. Intended for
// tests and literals where the shape is known statically.
func MustNewTable(cols ...Column) *Table {
	t, err := NewTable(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count (columns share it by invariant).
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Columns returns the columns in table order.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.cols...)
}

// ValidateColumns checks that every requested column exists, returning
// the names resolved in table order when the list is empty. Engines call
// this before any mutation so misconfigured policies fail fast.
func (t *Table) ValidateColumns(names []string) ([]string, error) {
	if len(names) == 0 {
		return t.ColumnNames(), nil
	}
	var unknown []string
	for _, n := range names {
		if !t.HasColumn(n) {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown columns: %s", strings.Join(unknown, ", "))
	}
	return append([]string(nil), names...), nil
}

// WithColumn returns a new table with the column replaced in place when
// the name already exists, or appended otherwise. Appending requires the
// column length to match the table's row count.
func (t *Table) WithColumn(c Column) (*Table, error) {
	if len(t.cols) > 0 && c.Len() != t.NumRows() {
		return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name(), c.Len(), t.NumRows())
	}
	out := t.shallowCopy()
	if i, ok := out.index[c.Name()]; ok {
		out.cols[i] = c
		return out, nil
	}
	out.index[c.Name()] = len(out.cols)
	out.cols = append(out.cols, c)
	return out, nil
}

// DropColumns returns a new table without the named columns. Unknown
// names are ignored; callers wanting fail-fast use ValidateColumns first.
func (t *Table) DropColumns(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := &Table{index: make(map[string]int)}
	for _, c := range t.cols {
		if drop[c.Name()] {
			continue
		}
		out.index[c.Name()] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out
}

// FilterRows returns a new table keeping only rows where keep[i] is true.
// Every column shrinks together, preserving the equal-length invariant.
func (t *Table) FilterRows(keep []bool) (*Table, error) {
	if len(keep) != t.NumRows() {
		return nil, fmt.Errorf("keep mask has %d entries, want %d", len(keep), t.NumRows())
	}
	out := &Table{index: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		out.index[c.Name()] = len(out.cols)
		out.cols = append(out.cols, c.filtered(keep))
	}
	return out, nil
}

// SortedByColumn returns a new table with rows stably ordered by the
// named column ascending. Absent cells sort last. Used by the sequential
// missing-value strategies that declare an ordering column.
func (t *Table) SortedByColumn(name string) (*Table, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("ordering column %q not found", name)
	}
	order := make([]int, t.NumRows())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if col.IsAbsent(ia) != col.IsAbsent(ib) {
			return !col.IsAbsent(ia)
		}
		if col.IsAbsent(ia) {
			return false
		}
		switch col.Type() {
		case ColumnTypeNumeric:
			va, _ := col.Float(ia)
			vb, _ := col.Float(ib)
			return va < vb
		case ColumnTypeDatetime:
			va, _ := col.Time(ia)
			vb, _ := col.Time(ib)
			return va.Before(vb)
		case ColumnTypeBoolean:
			va, _ := col.Bool(ia)
			vb, _ := col.Bool(ib)
			return !va && vb
		default:
			va, _ := col.StringVal(ia)
			vb, _ := col.StringVal(ib)
			return va < vb
		}
	})
	out := &Table{index: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		out.index[c.Name()] = len(out.cols)
		out.cols = append(out.cols, c.reordered(order))
	}
	return out, nil
}

// Clone returns a deep-enough copy: column values are immutable from
// outside the package, so sharing their backing arrays is safe.
func (t *Table) Clone() *Table {
	return t.shallowCopy()
}

func (t *Table) shallowCopy() *Table {
	out := &Table{
		cols:  append([]Column(nil), t.cols...),
		index: make(map[string]int, len(t.index)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	return out
}

var (
	nonIdentRe  = regexp.MustCompile(`[^a-z0-9_]+`)
	underscoreRe = regexp.MustCompile(`_+`)
)

// NormalizeColumnNames returns a new table with trimmed, lowercased
// column names where runs of spaces and punctuation become a single
// underscore ("Order ID" -> "order_id"). Collisions after normalization
// are an error since they would break positional alignment by name.
func (t *Table) NormalizeColumnNames() (*Table, error) {
	out := &Table{index: make(map[string]int, len(t.cols))}
	for _, c := range t.cols {
		name := strings.ToLower(strings.TrimSpace(c.Name()))
		name = nonIdentRe.ReplaceAllString(name, "_")
		name = strings.Trim(underscoreRe.ReplaceAllString(name, "_"), "_")
		if _, dup := out.index[name]; dup {
			return nil, fmt.Errorf("column name collision after normalization: %q", name)
		}
		out.index[name] = len(out.cols)
		out.cols = append(out.cols, c.Renamed(name))
	}
	return out, nil
}
