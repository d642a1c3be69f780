package outlier

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"tabclean/internal/stats"
	"tabclean/pkg/contracts/domain"
)

// FlagSuffix names the boolean marker column ActionFlag appends.
const FlagSuffix = "__is_outlier"

// RowFilterColumn is the synthetic report row added when ActionDrop
// removes whole rows.
const RowFilterColumn = "__ROW_FILTER__"

// ReportHeaders are the columns of every outlier report.
var ReportHeaders = []string{"column", "method", "action", "non_null", "outliers", "outlier_rate", "note"}

// Engine detects and treats outliers in numeric columns.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger falls back to slog.Default.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// detection is one column's outcome: bounds, per-row flags and counts.
// lower/upper are the detection bounds; capLower/capUpper are the
// percentile bounds capping winsorizes to, whatever the method.
type detection struct {
	column   string
	lower    float64
	upper    float64
	capLower float64
	capUpper float64
	flags    []bool
	nonNull  int
	outliers int
	skipNote string
}

// Apply runs the policy's detection over the target columns and applies
// its action, returning the treated table and a per-column report. The
// input table is never mutated.
func (e *Engine) Apply(ctx context.Context, table *domain.Table, policy Policy) (*domain.Table, *domain.Report, error) {
	cols, err := policy.validate(table)
	if err != nil {
		return nil, nil, err
	}

	detections, err := e.detect(ctx, table, cols, policy)
	if err != nil {
		return nil, nil, err
	}

	report := domain.NewReport("Outlier Treatment", ReportHeaders...)
	out := table.Clone()

	for _, d := range detections {
		if d.skipNote != "" {
			report.AddRow(d.column, string(policy.Method), string(policy.Action),
				fmt.Sprintf("%d", d.nonNull), "0", "0.0000", d.skipNote)
			continue
		}

		note := fmt.Sprintf("bounds [%g, %g]", d.lower, d.upper)
		switch policy.Action {
		case ActionCap:
			out, err = capColumn(out, d)
		case ActionFlag:
			out, err = flagColumn(out, d)
		}
		if err != nil {
			return nil, nil, err
		}

		rate := 0.0
		if d.nonNull > 0 {
			rate = float64(d.outliers) / float64(d.nonNull)
		}
		report.AddRow(d.column, string(policy.Method), string(policy.Action),
			fmt.Sprintf("%d", d.nonNull), fmt.Sprintf("%d", d.outliers),
			fmt.Sprintf("%.4f", rate), note)
	}

	if policy.Action == ActionDrop {
		out, err = dropFlagged(out, detections, report, policy)
		if err != nil {
			return nil, nil, err
		}
	}

	e.logger.InfoContext(ctx, "outliers treated",
		slog.String("method", string(policy.Method)),
		slog.String("action", string(policy.Action)),
		slog.Int("columns", len(detections)),
		slog.Int("rows_before", table.NumRows()),
		slog.Int("rows_after", out.NumRows()))
	return out, report, nil
}

// detect computes bounds and flags for every target column. Columns are
// independent, so detection fans out across goroutines.
func (e *Engine) detect(ctx context.Context, table *domain.Table, cols []string, policy Policy) ([]detection, error) {
	detections := make([]detection, len(cols))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range cols {
		i, name := i, name
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			detections[i] = detectColumn(table, name, policy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detections, nil
}

func detectColumn(table *domain.Table, name string, policy Policy) detection {
	col, _ := table.Column(name)
	d := detection{column: name}

	if !col.IsNumeric() {
		d.skipNote = "skip (non-numeric)"
		return d
	}

	present := col.NonAbsentFloats()
	d.nonNull = len(present)
	if d.nonNull < policy.minNonNull() {
		d.skipNote = "skip (too few non-null)"
		return d
	}

	d.capLower = stats.Percentile(present, policy.capLowerQ())
	d.capUpper = stats.Percentile(present, policy.capUpperQ())

	switch policy.Method {
	case MethodMAD:
		d.lower, d.upper = madBounds(present, policy.madZ())
	case MethodPercentile:
		d.lower, d.upper = d.capLower, d.capUpper
	default:
		d.lower, d.upper = iqrBounds(present, policy.iqrK())
	}

	d.flags = make([]bool, col.Len())
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Float(i)
		if !ok {
			continue
		}
		if v < d.lower || v > d.upper {
			d.flags[i] = true
			d.outliers++
		}
	}
	return d
}

// iqrBounds returns Tukey fences. A zero IQR collapses the fences to
// the quartiles themselves so a constant column flags nothing.
func iqrBounds(present []float64, k float64) (float64, float64) {
	q1 := stats.Percentile(present, 0.25)
	q3 := stats.Percentile(present, 0.75)
	iqr := q3 - q1
	if iqr == 0 {
		return q1, q3
	}
	return q1 - k*iqr, q3 + k*iqr
}

// madBounds inverts the robust z-score cutoff into value bounds. A zero
// MAD forces every z-score to zero, which the collapsed bounds express.
func madBounds(present []float64, z float64) (float64, float64) {
	med := stats.Median(present)
	mad := stats.MAD(present)
	if mad == 0 {
		return math.Inf(-1), math.Inf(1)
	}
	spread := z * mad / madScale
	return med - spread, med + spread
}

// capColumn winsorizes to the percentile bounds. Detection decides what
// counts as an outlier in the report; the replacement values come from
// the cap quantiles even under iqr and mad detection.
func capColumn(table *domain.Table, d detection) (*domain.Table, error) {
	col, _ := table.Column(d.column)
	vals, mask := col.Floats()
	for i := range vals {
		if mask[i] {
			continue
		}
		if vals[i] < d.capLower {
			vals[i] = d.capLower
		} else if vals[i] > d.capUpper {
			vals[i] = d.capUpper
		}
	}
	return table.WithColumn(domain.NewNumericColumn(d.column, vals, mask))
}

func flagColumn(table *domain.Table, d detection) (*domain.Table, error) {
	return table.WithColumn(domain.NewBooleanColumn(d.column+FlagSuffix, d.flags, nil))
}

// dropFlagged removes every row flagged by any detected column and
// records the row-level effect under the synthetic report row.
func dropFlagged(table *domain.Table, detections []detection, report *domain.Report, policy Policy) (*domain.Table, error) {
	n := table.NumRows()
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	for _, d := range detections {
		for i, flagged := range d.flags {
			if flagged {
				keep[i] = false
			}
		}
	}

	out, err := table.FilterRows(keep)
	if err != nil {
		return nil, err
	}
	report.AddRow(RowFilterColumn, string(policy.Method), string(policy.Action),
		fmt.Sprintf("%d", n), fmt.Sprintf("%d", n-out.NumRows()),
		"", fmt.Sprintf("dropped %d of %d rows", n-out.NumRows(), n))
	return out, nil
}
