package missing

import (
	"fmt"
	"sort"

	apperrors "tabclean/internal/errors"
	"tabclean/internal/stats"
	"tabclean/pkg/contracts/domain"
)

// dropRows removes every row with an absent cell in any target column.
func (e *Engine) dropRows(table *domain.Table, cols []string, report *domain.Report) (*domain.Table, error) {
	n := table.NumRows()
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}

	before := make(map[string]int, len(cols))
	for _, name := range cols {
		col, _ := table.Column(name)
		before[name] = col.AbsentCount()
		for i := 0; i < n; i++ {
			if col.IsAbsent(i) {
				keep[i] = false
			}
		}
	}

	out, err := table.FilterRows(keep)
	if err != nil {
		return nil, err
	}

	for _, name := range cols {
		col, _ := out.Column(name)
		report.AddRow(name, string(StrategyDropRows),
			fmt.Sprintf("%d", before[name]),
			fmt.Sprintf("%d", col.AbsentCount()), "")
	}
	dropped := n - out.NumRows()
	report.AddRow(RowFilterColumn, string(StrategyDropRows),
		fmt.Sprintf("%d", n), fmt.Sprintf("%d", out.NumRows()),
		fmt.Sprintf("dropped %d of %d rows", dropped, n))
	return out, nil
}

// dropCols removes target columns whose absence rate meets the threshold.
func (e *Engine) dropCols(table *domain.Table, cols []string, thresholdPct float64, report *domain.Report) (*domain.Table, error) {
	n := table.NumRows()

	var toDrop []string
	for _, name := range cols {
		col, _ := table.Column(name)
		pct := 0.0
		if n > 0 {
			pct = float64(col.AbsentCount()) / float64(n) * 100.0
		}
		if pct >= thresholdPct {
			toDrop = append(toDrop, name)
			report.AddRow(name, string(StrategyDropCols),
				fmt.Sprintf("%d", col.AbsentCount()), "0",
				fmt.Sprintf("dropped (%.1f%% missing, threshold %.1f%%)", pct, thresholdPct))
		} else {
			report.AddRow(name, string(StrategyDropCols),
				fmt.Sprintf("%d", col.AbsentCount()),
				fmt.Sprintf("%d", col.AbsentCount()),
				fmt.Sprintf("kept (%.1f%% missing)", pct))
		}
	}
	if len(toDrop) == 0 {
		return table.Clone(), nil
	}
	return table.DropColumns(toDrop...), nil
}

// valueKindFor maps a column type to the value kind a constant fill must carry.
func valueKindFor(t domain.ColumnType) domain.ValueKind {
	switch t {
	case domain.ColumnTypeNumeric:
		return domain.ValueKindNumeric
	case domain.ColumnTypeBoolean:
		return domain.ValueKindBoolean
	case domain.ColumnTypeDatetime:
		return domain.ValueKindDatetime
	default:
		return domain.ValueKindText
	}
}

// fillConstant replaces absent cells with one fixed value. The value
// kind must match every target column's type; a mismatch is rejected
// before any column is touched.
func (e *Engine) fillConstant(table *domain.Table, cols []string, value domain.Value, report *domain.Report) (*domain.Table, error) {
	for _, name := range cols {
		col, _ := table.Column(name)
		if value.Kind() != valueKindFor(col.Type()) {
			return nil, apperrors.NewConfigError(
				fmt.Sprintf("constant_value kind %q does not fit column %q of type %q",
					value.Kind(), name, col.Type()), nil)
		}
	}

	out := table
	for _, name := range cols {
		col, _ := out.Column(name)
		before := col.AbsentCount()
		filled, err := fillAbsent(col, func(int) (domain.Value, bool) { return value, true })
		if err != nil {
			return nil, err
		}
		out, err = out.WithColumn(filled)
		if err != nil {
			return nil, err
		}
		report.AddRow(name, string(StrategyConstant),
			fmt.Sprintf("%d", before), "0",
			fmt.Sprintf("filled %d with %s", before, value.String()))
	}
	return out, nil
}

// fillCentral handles mean and median. Non-numeric targets and columns
// with no present values are skipped with a report note.
func (e *Engine) fillCentral(table *domain.Table, cols []string, strategy Strategy, report *domain.Report) (*domain.Table, error) {
	out := table
	for _, name := range cols {
		col, _ := out.Column(name)
		before := col.AbsentCount()

		if !col.IsNumeric() {
			report.AddRow(name, string(strategy),
				fmt.Sprintf("%d", before), fmt.Sprintf("%d", before), "skip (non-numeric)")
			continue
		}
		present := col.NonAbsentFloats()
		if len(present) == 0 {
			report.AddRow(name, string(strategy),
				fmt.Sprintf("%d", before), fmt.Sprintf("%d", before), "skip (no non-missing values)")
			continue
		}

		var fill float64
		if strategy == StrategyMean {
			fill = stats.Mean(present)
		} else {
			fill = stats.Median(present)
		}

		filled, err := fillAbsent(col, func(int) (domain.Value, bool) {
			return domain.NumericValue(fill), true
		})
		if err != nil {
			return nil, err
		}
		out, err = out.WithColumn(filled)
		if err != nil {
			return nil, err
		}
		report.AddRow(name, string(strategy),
			fmt.Sprintf("%d", before), "0",
			fmt.Sprintf("filled %d with %s %g", before, strategy, fill))
	}
	return out, nil
}

// fillMode fills absent cells with the most frequent present value.
// Ties break toward the value seen first.
func (e *Engine) fillMode(table *domain.Table, cols []string, report *domain.Report) (*domain.Table, error) {
	out := table
	for _, name := range cols {
		col, _ := out.Column(name)
		before := col.AbsentCount()

		mode, ok := modeValue(col, nil)
		if !ok {
			report.AddRow(name, string(StrategyMode),
				fmt.Sprintf("%d", before), fmt.Sprintf("%d", before), "skip (no non-missing values)")
			continue
		}

		filled, err := fillAbsent(col, func(int) (domain.Value, bool) { return mode, true })
		if err != nil {
			return nil, err
		}
		out, err = out.WithColumn(filled)
		if err != nil {
			return nil, err
		}
		report.AddRow(name, string(StrategyMode),
			fmt.Sprintf("%d", before), "0",
			fmt.Sprintf("filled %d with mode %s", before, mode.String()))
	}
	return out, nil
}

// fillGrouped handles group_median and group_mode. Each absent cell is
// filled from the statistic of its own group. Cells whose group key is
// absent, or whose group has no present values, stay absent.
func (e *Engine) fillGrouped(table *domain.Table, cols []string, strategy Strategy, groupBy string, report *domain.Report) (*domain.Table, error) {
	groupCol, _ := table.Column(groupBy)
	n := table.NumRows()

	groupKey := make([]string, n)
	for i := 0; i < n; i++ {
		if !groupCol.IsAbsent(i) {
			groupKey[i] = groupCol.Value(i).Key()
		}
	}

	out := table
	for _, name := range cols {
		if name == groupBy {
			continue
		}
		col, _ := out.Column(name)
		before := col.AbsentCount()

		if strategy == StrategyGroupMedian && !col.IsNumeric() {
			report.AddRow(name, string(strategy),
				fmt.Sprintf("%d", before), fmt.Sprintf("%d", before), "skip (non-numeric)")
			continue
		}

		fills := make(map[string]domain.Value)
		keys := distinctKeys(groupKey)
		for _, key := range keys {
			inGroup := func(i int) bool { return groupKey[i] == key }
			if strategy == StrategyGroupMedian {
				vals := groupFloats(col, groupKey, key)
				if len(vals) > 0 {
					fills[key] = domain.NumericValue(stats.Median(vals))
				}
			} else {
				if mode, ok := modeValue(col, inGroup); ok {
					fills[key] = mode
				}
			}
		}

		filled, err := fillAbsent(col, func(i int) (domain.Value, bool) {
			if groupKey[i] == "" {
				return domain.Value{}, false
			}
			v, ok := fills[groupKey[i]]
			return v, ok
		})
		if err != nil {
			return nil, err
		}
		out, err = out.WithColumn(filled)
		if err != nil {
			return nil, err
		}
		report.AddRow(name, string(strategy),
			fmt.Sprintf("%d", before),
			fmt.Sprintf("%d", mustColumn(out, name).AbsentCount()),
			fmt.Sprintf("filled by %s groups", groupBy))
	}
	return out, nil
}

// fillSequential handles ffill, bfill and interpolate_linear. The table
// is sorted by the time column first unless the policy disables it; the
// result keeps that order.
func (e *Engine) fillSequential(table *domain.Table, cols []string, policy Policy, report *domain.Report) (*domain.Table, error) {
	out := table
	var err error
	if policy.SortTime {
		out, err = out.SortedByColumn(policy.TimeCol)
		if err != nil {
			return nil, err
		}
	}

	for _, name := range cols {
		if name == policy.TimeCol {
			continue
		}
		col, _ := out.Column(name)
		before := col.AbsentCount()

		if policy.Strategy == StrategyInterpolate && !col.IsNumeric() {
			report.AddRow(name, string(policy.Strategy),
				fmt.Sprintf("%d", before), fmt.Sprintf("%d", before), "skip (non-numeric)")
			continue
		}

		var filled domain.Column
		switch policy.Strategy {
		case StrategyFFill:
			filled = directionalFill(col, false)
		case StrategyBFill:
			filled = directionalFill(col, true)
		default:
			filled = interpolateLinear(col)
		}

		out, err = out.WithColumn(filled)
		if err != nil {
			return nil, err
		}
		report.AddRow(name, string(policy.Strategy),
			fmt.Sprintf("%d", before),
			fmt.Sprintf("%d", mustColumn(out, name).AbsentCount()),
			fmt.Sprintf("ordered by %s", policy.TimeCol))
	}
	return out, nil
}

// directionalFill carries the nearest present value forward (or backward)
// into absent cells. Cells before the first present value (ffill) or
// after the last (bfill) stay absent.
func directionalFill(col domain.Column, backward bool) domain.Column {
	n := col.Len()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if backward {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	last := -1
	fillFrom := make([]int, n)
	for _, i := range idx {
		if !col.IsAbsent(i) {
			last = i
		}
		fillFrom[i] = last
	}

	filled, _ := fillAbsent(col, func(i int) (domain.Value, bool) {
		if fillFrom[i] < 0 {
			return domain.Value{}, false
		}
		return col.Value(fillFrom[i]), true
	})
	return filled
}

// interpolateLinear fills absent numeric cells by position-linear
// interpolation between the neighboring present values. Absent runs at
// either boundary take the nearest present value.
func interpolateLinear(col domain.Column) domain.Column {
	vals, mask := col.Floats()
	n := len(vals)

	var present []int
	for i := 0; i < n; i++ {
		if !mask[i] {
			present = append(present, i)
		}
	}
	if len(present) == 0 {
		return col
	}

	out := make([]float64, n)
	outMask := make([]bool, n)
	copy(out, vals)
	for i := 0; i < n; i++ {
		if !mask[i] {
			continue
		}
		pos := sort.SearchInts(present, i)
		switch {
		case pos == 0:
			out[i] = vals[present[0]]
		case pos == len(present):
			out[i] = vals[present[len(present)-1]]
		default:
			lo, hi := present[pos-1], present[pos]
			frac := float64(i-lo) / float64(hi-lo)
			out[i] = vals[lo] + (vals[hi]-vals[lo])*frac
		}
	}
	return domain.NewNumericColumn(col.Name(), out, outMask)
}

// fillAbsent rebuilds a column, replacing each absent cell with the
// value the callback supplies. A false callback return leaves the cell
// absent. Value kinds must match the column type.
func fillAbsent(col domain.Column, value func(i int) (domain.Value, bool)) (domain.Column, error) {
	n := col.Len()
	name := col.Name()

	kindErr := func(i int, v domain.Value) error {
		return apperrors.NewConfigError(
			fmt.Sprintf("fill value kind %q does not fit column %q of type %q",
				v.Kind(), name, col.Type()), nil)
	}

	switch col.Type() {
	case domain.ColumnTypeNumeric:
		vals, mask := col.Floats()
		for i := 0; i < n; i++ {
			if !mask[i] {
				continue
			}
			v, ok := value(i)
			if !ok {
				continue
			}
			f, ok := v.Float()
			if !ok {
				return domain.Column{}, kindErr(i, v)
			}
			vals[i], mask[i] = f, false
		}
		return domain.NewNumericColumn(name, vals, mask), nil
	case domain.ColumnTypeBoolean:
		vals, mask := col.Bools()
		for i := 0; i < n; i++ {
			if !mask[i] {
				continue
			}
			v, ok := value(i)
			if !ok {
				continue
			}
			b, ok := v.Bool()
			if !ok {
				return domain.Column{}, kindErr(i, v)
			}
			vals[i], mask[i] = b, false
		}
		return domain.NewBooleanColumn(name, vals, mask), nil
	case domain.ColumnTypeDatetime:
		vals, mask := col.Times()
		for i := 0; i < n; i++ {
			if !mask[i] {
				continue
			}
			v, ok := value(i)
			if !ok {
				continue
			}
			ts, ok := v.Time()
			if !ok {
				return domain.Column{}, kindErr(i, v)
			}
			vals[i], mask[i] = ts, false
		}
		return domain.NewDatetimeColumn(name, vals, mask), nil
	default:
		vals, mask := col.Strings()
		for i := 0; i < n; i++ {
			if !mask[i] {
				continue
			}
			v, ok := value(i)
			if !ok {
				continue
			}
			s, ok := v.Text()
			if !ok {
				return domain.Column{}, kindErr(i, v)
			}
			vals[i], mask[i] = s, false
		}
		if col.Type() == domain.ColumnTypeCategorical {
			return domain.NewCategoricalColumn(name, vals, mask), nil
		}
		return domain.NewTextColumn(name, vals, mask), nil
	}
}

// modeValue finds the most frequent present value, optionally restricted
// to rows where include returns true. Ties break toward first occurrence.
func modeValue(col domain.Column, include func(i int) bool) (domain.Value, bool) {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	values := make(map[string]domain.Value)

	for i := 0; i < col.Len(); i++ {
		if col.IsAbsent(i) || (include != nil && !include(i)) {
			continue
		}
		v := col.Value(i)
		key := v.Key()
		if _, seen := counts[key]; !seen {
			firstSeen[key] = i
			values[key] = v
		}
		counts[key]++
	}
	if len(counts) == 0 {
		return domain.Value{}, false
	}

	var bestKey string
	bestCount := -1
	for key, c := range counts {
		if c > bestCount || (c == bestCount && firstSeen[key] < firstSeen[bestKey]) {
			bestKey, bestCount = key, c
		}
	}
	return values[bestKey], true
}

// groupFloats collects the present numeric values of rows in one group.
func groupFloats(col domain.Column, groupKey []string, key string) []float64 {
	var out []float64
	for i := 0; i < col.Len(); i++ {
		if groupKey[i] != key {
			continue
		}
		if v, ok := col.Float(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// distinctKeys returns the non-empty group keys in first-seen order.
func distinctKeys(groupKey []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range groupKey {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func mustColumn(table *domain.Table, name string) domain.Column {
	col, _ := table.Column(name)
	return col
}
