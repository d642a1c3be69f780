package coerce

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"tabclean/pkg/contracts/domain"
)

// Spec lists the target columns per intended logical type, plus the
// policy knobs the conversions need. Specs are plain values and never
// mutated by the engine.
type Spec struct {
	NumericCols  []string `yaml:"numeric_cols" json:"numeric_cols"`
	DatetimeCols []string `yaml:"datetime_cols" json:"datetime_cols"`
	BoolCols     []string `yaml:"bool_cols" json:"bool_cols"`
	CategoryCols []string `yaml:"category_cols" json:"category_cols"`

	// DayFirst disambiguates DD/MM versus MM/DD date ordering. This is a
	// caller decision; the data carries no reliable inference signal.
	DayFirst bool `yaml:"day_first" json:"day_first"`

	// CategoryMinFreq collapses categories seen fewer times than this
	// into the Other bucket. Zero or one keeps every category.
	CategoryMinFreq int `yaml:"category_min_freq" json:"category_min_freq" validate:"min=0"`

	// OtherLabel overrides the rare-category bucket name.
	OtherLabel string `yaml:"other_label" json:"other_label"`
}

// Engine converts loosely-typed columns according to a Spec.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a type-coercion engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// ReportHeaders are the columns of the coercion diagnostic report.
var ReportHeaders = []string{"column", "before_type", "after_type", "parse_fail_rate", "note"}

type reportRow struct {
	column   string
	before   string
	after    string
	failRate string
	note     string
}

// Apply converts the spec's target columns and returns a new table plus
// a per-column report. Columns missing from the table produce a skip row
// in the report; the remaining spec still applies.
func (e *Engine) Apply(ctx context.Context, table *domain.Table, spec Spec) (*domain.Table, *domain.Report, error) {
	minFreq := spec.CategoryMinFreq
	otherLabel := spec.OtherLabel
	if otherLabel == "" {
		otherLabel = DefaultOtherLabel
	}

	e.logger.InfoContext(ctx, "applying type coercion",
		slog.Int("numeric_cols", len(spec.NumericCols)),
		slog.Int("datetime_cols", len(spec.DatetimeCols)),
		slog.Int("bool_cols", len(spec.BoolCols)),
		slog.Int("category_cols", len(spec.CategoryCols)))

	out := table.Clone()
	var rows []reportRow
	var err error

	skip := func(name string) reportRow {
		e.logger.WarnContext(ctx, "coercion target column not found", slog.String("column", name))
		return reportRow{column: name, before: "-", after: "-", failRate: "-", note: "skip: column not found"}
	}

	for _, name := range spec.NumericCols {
		col, ok := out.Column(name)
		if !ok {
			rows = append(rows, skip(name))
			continue
		}
		converted, failRate := coerceNumeric(col)
		if out, err = out.WithColumn(converted); err != nil {
			return nil, nil, err
		}
		rows = append(rows, reportRow{
			column:   name,
			before:   string(col.Type()),
			after:    string(converted.Type()),
			failRate: formatRate(failRate),
			note:     "numeric coercion (currency/commas/parentheses/percent)",
		})
	}

	for _, name := range spec.DatetimeCols {
		col, ok := out.Column(name)
		if !ok {
			rows = append(rows, skip(name))
			continue
		}
		converted, failRate := coerceDatetime(col, spec.DayFirst)
		if out, err = out.WithColumn(converted); err != nil {
			return nil, nil, err
		}
		rows = append(rows, reportRow{
			column:   name,
			before:   string(col.Type()),
			after:    string(converted.Type()),
			failRate: formatRate(failRate),
			note:     "datetime coercion (unparsable -> absent)",
		})
	}

	for _, name := range spec.BoolCols {
		col, ok := out.Column(name)
		if !ok {
			rows = append(rows, skip(name))
			continue
		}
		converted, failRate := coerceBool(col)
		if out, err = out.WithColumn(converted); err != nil {
			return nil, nil, err
		}
		rows = append(rows, reportRow{
			column:   name,
			before:   string(col.Type()),
			after:    string(converted.Type()),
			failRate: formatRate(failRate),
			note:     "boolean coercion (y/n/yes/no/1/0/true/false)",
		})
	}

	for _, name := range spec.CategoryCols {
		col, ok := out.Column(name)
		if !ok {
			rows = append(rows, skip(name))
			continue
		}
		converted := coerceCategory(col, minFreq, otherLabel)
		if out, err = out.WithColumn(converted); err != nil {
			return nil, nil, err
		}
		rows = append(rows, reportRow{
			column:   name,
			before:   string(col.Type()),
			after:    string(converted.Type()),
			failRate: "-",
			note:     fmt.Sprintf("category coercion (min_freq=%d)", minFreq),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].column < rows[j].column })

	report := domain.NewReport("Type Coercion", ReportHeaders...)
	for _, r := range rows {
		report.AddRow(r.column, r.before, r.after, r.failRate, r.note)
	}
	return out, report, nil
}

// coerceNumeric converts a column to numeric. The failure rate is the
// fraction of non-originally-absent cells that could not be parsed.
func coerceNumeric(col domain.Column) (domain.Column, float64) {
	n := col.Len()
	values := make([]float64, n)
	absent := make([]bool, n)
	present, failed := 0, 0

	for i := 0; i < n; i++ {
		v := col.Value(i)
		if v.IsAbsent() {
			absent[i] = true
			continue
		}
		present++
		parsed, ok := parseNumeric(v.String())
		if !ok {
			absent[i] = true
			failed++
			continue
		}
		values[i] = parsed
	}

	return domain.NewNumericColumn(col.Name(), values, absent), failRate(failed, present)
}

func coerceDatetime(col domain.Column, dayFirst bool) (domain.Column, float64) {
	n := col.Len()
	values := make([]time.Time, n)
	absent := make([]bool, n)
	present, failed := 0, 0

	for i := 0; i < n; i++ {
		v := col.Value(i)
		if v.IsAbsent() {
			absent[i] = true
			continue
		}
		if t, isTime := v.Time(); isTime {
			values[i] = t
			present++
			continue
		}
		present++
		parsed, ok := parseDatetime(v.String(), dayFirst)
		if !ok {
			absent[i] = true
			failed++
			continue
		}
		values[i] = parsed
	}

	return domain.NewDatetimeColumn(col.Name(), values, absent), failRate(failed, present)
}

func coerceBool(col domain.Column) (domain.Column, float64) {
	n := col.Len()
	values := make([]bool, n)
	absent := make([]bool, n)
	present, failed := 0, 0

	for i := 0; i < n; i++ {
		v := col.Value(i)
		if v.IsAbsent() {
			absent[i] = true
			continue
		}
		present++
		parsed, ok := parseBool(v.String())
		if !ok {
			absent[i] = true
			failed++
			continue
		}
		values[i] = parsed
	}

	return domain.NewBooleanColumn(col.Name(), values, absent), failRate(failed, present)
}

func failRate(failed, present int) float64 {
	if present == 0 {
		return 0
	}
	return float64(failed) / float64(present)
}

func formatRate(rate float64) string {
	return fmt.Sprintf("%.4f", rate)
}
