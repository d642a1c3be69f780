package missing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	apperrors "tabclean/internal/errors"
	"tabclean/pkg/contracts/domain"
)

// SortKey orders summary rows.
type SortKey string

const (
	SortByPct    SortKey = "missing_pct"
	SortByCnt    SortKey = "missing_cnt"
	SortByColumn SortKey = "column"
)

// SummaryRow is one column's missingness snapshot.
type SummaryRow struct {
	Column        string            `json:"column"`
	MissingCnt    int               `json:"missing_cnt"`
	MissingPct    float64           `json:"missing_pct"`
	NonMissingCnt int               `json:"non_missing_cnt"`
	Type          domain.ColumnType `json:"dtype"`
}

// PatternRow is one distinct set of simultaneously-absent columns with
// its frequency among all rows.
type PatternRow struct {
	Columns []string `json:"missing_columns"`
	Count   int      `json:"pattern_count"`
	Pct     float64  `json:"pattern_pct"`
}

// Summary produces per-column absent counts and rates for the requested
// columns (all columns when nil), sorted by the given key.
func (e *Engine) Summary(ctx context.Context, table *domain.Table, columns []string, sortBy SortKey, descending bool) ([]SummaryRow, error) {
	cols, err := table.ValidateColumns(columns)
	if err != nil {
		return nil, apperrors.NewConfigError("summary targets unknown columns", err)
	}

	n := table.NumRows()
	rows := make([]SummaryRow, 0, len(cols))
	for _, name := range cols {
		col, _ := table.Column(name)
		missing := col.AbsentCount()
		pct := 0.0
		if n > 0 {
			pct = float64(missing) / float64(n) * 100.0
		}
		rows = append(rows, SummaryRow{
			Column:        name,
			MissingCnt:    missing,
			MissingPct:    pct,
			NonMissingCnt: n - missing,
			Type:          col.Type(),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		var less bool
		switch sortBy {
		case SortByCnt:
			less = rows[i].MissingCnt < rows[j].MissingCnt
		case SortByColumn:
			less = rows[i].Column < rows[j].Column
		default:
			less = rows[i].MissingPct < rows[j].MissingPct
		}
		if descending {
			return !less && !equalKey(rows[i], rows[j], sortBy)
		}
		return less
	})

	e.logger.DebugContext(ctx, "missing summary computed",
		slog.Int("columns", len(rows)), slog.Int("rows", n))
	return rows, nil
}

func equalKey(a, b SummaryRow, key SortKey) bool {
	switch key {
	case SortByCnt:
		return a.MissingCnt == b.MissingCnt
	case SortByColumn:
		return a.Column == b.Column
	default:
		return a.MissingPct == b.MissingPct
	}
}

// Pattern finds the distinct sets of simultaneously-absent columns among
// rows with at least one absence, ranked by frequency and truncated to
// topN. Structural (non-random) missingness shows up as dominant sets.
func (e *Engine) Pattern(ctx context.Context, table *domain.Table, columns []string, topN int) ([]PatternRow, error) {
	cols, err := table.ValidateColumns(columns)
	if err != nil {
		return nil, apperrors.NewConfigError("pattern targets unknown columns", err)
	}
	if topN <= 0 {
		topN = 10
	}

	n := table.NumRows()
	if n == 0 {
		return []PatternRow{}, nil
	}

	colRefs := make([]domain.Column, len(cols))
	for i, name := range cols {
		colRefs[i], _ = table.Column(name)
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	members := make(map[string][]string)
	for row := 0; row < n; row++ {
		var set []string
		for i, col := range colRefs {
			if col.IsAbsent(row) {
				set = append(set, cols[i])
			}
		}
		if len(set) == 0 {
			continue
		}
		key := strings.Join(set, ", ")
		if _, seen := counts[key]; !seen {
			firstSeen[key] = row
			members[key] = set
		}
		counts[key]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return firstSeen[keys[i]] < firstSeen[keys[j]]
	})
	if len(keys) > topN {
		keys = keys[:topN]
	}

	rows := make([]PatternRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, PatternRow{
			Columns: members[k],
			Count:   counts[k],
			Pct:     float64(counts[k]) / float64(n) * 100.0,
		})
	}
	return rows, nil
}

// SummaryReport renders summary rows as a diagnostic report.
func SummaryReport(rows []SummaryRow) *domain.Report {
	r := domain.NewReport("Missing Summary",
		"column", "missing_cnt", "missing_pct", "non_missing_cnt", "dtype")
	for _, row := range rows {
		r.AddRow(row.Column,
			fmt.Sprintf("%d", row.MissingCnt),
			fmt.Sprintf("%.2f", row.MissingPct),
			fmt.Sprintf("%d", row.NonMissingCnt),
			string(row.Type))
	}
	return r
}

// PatternReport renders pattern rows as a diagnostic report.
func PatternReport(rows []PatternRow) *domain.Report {
	r := domain.NewReport("Missing Patterns", "missing_columns", "pattern_count", "pattern_pct")
	for _, row := range rows {
		r.AddRow(strings.Join(row.Columns, ", "),
			fmt.Sprintf("%d", row.Count),
			fmt.Sprintf("%.2f", row.Pct))
	}
	return r
}

// CompareRow is one column's before/after missingness delta.
type CompareRow struct {
	Column           string  `json:"column"`
	MissingCntBefore int     `json:"missing_cnt_before"`
	MissingPctBefore float64 `json:"missing_pct_before"`
	MissingCntAfter  int     `json:"missing_cnt_after"`
	MissingPctAfter  float64 `json:"missing_pct_after"`
	CntDelta         int     `json:"missing_cnt_delta"`
	PctDelta         float64 `json:"missing_pct_delta"`
}

// CompareBeforeAfter audits a handling pass: per shared column, absent
// counts and rates before and after plus their deltas. Columns the
// handling removed (drop_cols) are skipped, matching the intersection
// semantics of the audit.
func (e *Engine) CompareBeforeAfter(ctx context.Context, before, after *domain.Table, columns []string) ([]CompareRow, error) {
	cols, err := before.ValidateColumns(columns)
	if err != nil {
		return nil, apperrors.NewConfigError("compare targets unknown columns", err)
	}

	var shared []string
	for _, c := range cols {
		if after.HasColumn(c) {
			shared = append(shared, c)
		}
	}

	bRows, err := e.Summary(ctx, before, shared, SortByColumn, false)
	if err != nil {
		return nil, err
	}
	aRows, err := e.Summary(ctx, after, shared, SortByColumn, false)
	if err != nil {
		return nil, err
	}

	byCol := make(map[string]SummaryRow, len(aRows))
	for _, r := range aRows {
		byCol[r.Column] = r
	}

	out := make([]CompareRow, 0, len(bRows))
	for _, b := range bRows {
		a := byCol[b.Column]
		out = append(out, CompareRow{
			Column:           b.Column,
			MissingCntBefore: b.MissingCnt,
			MissingPctBefore: b.MissingPct,
			MissingCntAfter:  a.MissingCnt,
			MissingPctAfter:  a.MissingPct,
			CntDelta:         a.MissingCnt - b.MissingCnt,
			PctDelta:         a.MissingPct - b.MissingPct,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MissingPctBefore > out[j].MissingPctBefore
	})
	return out, nil
}

// CompareReport renders compare rows as a diagnostic report.
func CompareReport(rows []CompareRow) *domain.Report {
	r := domain.NewReport("Missing Before/After",
		"column", "missing_cnt_before", "missing_pct_before",
		"missing_cnt_after", "missing_pct_after", "missing_cnt_delta", "missing_pct_delta")
	for _, row := range rows {
		r.AddRow(row.Column,
			fmt.Sprintf("%d", row.MissingCntBefore),
			fmt.Sprintf("%.2f", row.MissingPctBefore),
			fmt.Sprintf("%d", row.MissingCntAfter),
			fmt.Sprintf("%.2f", row.MissingPctAfter),
			fmt.Sprintf("%d", row.CntDelta),
			fmt.Sprintf("%.2f", row.PctDelta))
	}
	return r
}
