package missing

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "tabclean/internal/errors"
	"tabclean/pkg/contracts/domain"
)

// RowFilterColumn is the synthetic report row name used when a strategy
// removes whole rows rather than touching a single column.
const RowFilterColumn = "__ROW_FILTER__"

// ReportHeaders are the columns of every handling report.
var ReportHeaders = []string{"column", "strategy", "missing_before", "missing_after", "note"}

// Engine diagnoses and handles absent values. It holds no table state;
// every call takes the table it operates on.
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

// Handle applies one policy to the table and returns the handled table
// plus a per-column report. The input table is never mutated. Policy
// problems (unknown strategy, unknown columns, missing auxiliary
// columns) fail before any work happens.
func (e *Engine) Handle(ctx context.Context, table *domain.Table, policy Policy) (*domain.Table, *domain.Report, error) {
	cols, err := policy.validate(table)
	if err != nil {
		return nil, nil, err
	}

	report := domain.NewReport("Missing Handling", ReportHeaders...)

	var out *domain.Table
	switch policy.Strategy {
	case StrategyDropRows:
		out, err = e.dropRows(table, cols, report)
	case StrategyDropCols:
		out, err = e.dropCols(table, cols, policy.dropThreshold(), report)
	case StrategyConstant:
		out, err = e.fillConstant(table, cols, policy.ConstantValue, report)
	case StrategyMean, StrategyMedian:
		out, err = e.fillCentral(table, cols, policy.Strategy, report)
	case StrategyMode:
		out, err = e.fillMode(table, cols, report)
	case StrategyGroupMedian, StrategyGroupMode:
		out, err = e.fillGrouped(table, cols, policy.Strategy, policy.GroupByCol, report)
	case StrategyFFill, StrategyBFill, StrategyInterpolate:
		out, err = e.fillSequential(table, cols, policy, report)
	default:
		err = apperrors.NewConfigError(fmt.Sprintf("unknown strategy: %q", policy.Strategy), nil)
	}
	if err != nil {
		return nil, nil, err
	}

	e.logger.InfoContext(ctx, "missing values handled",
		slog.String("strategy", string(policy.Strategy)),
		slog.Int("columns", len(cols)),
		slog.Int("rows_before", table.NumRows()),
		slog.Int("rows_after", out.NumRows()))
	return out, report, nil
}

// AddMissingFlags appends a numeric indicator column <col>_is_missing
// (1 when the cell is absent, 0 otherwise) for each requested column.
// The flags preserve missingness as signal before any imputation runs.
func (e *Engine) AddMissingFlags(ctx context.Context, table *domain.Table, columns []string) (*domain.Table, []string, error) {
	cols, err := table.ValidateColumns(columns)
	if err != nil {
		return nil, nil, apperrors.NewConfigError("flag targets unknown columns", err)
	}

	out := table
	added := make([]string, 0, len(cols))
	for _, name := range cols {
		col, _ := out.Column(name)
		flags := make([]float64, col.Len())
		for i := 0; i < col.Len(); i++ {
			if col.IsAbsent(i) {
				flags[i] = 1
			}
		}
		flagName := name + "_is_missing"
		out, err = out.WithColumn(domain.NewNumericColumn(flagName, flags, nil))
		if err != nil {
			return nil, nil, err
		}
		added = append(added, flagName)
	}

	e.logger.DebugContext(ctx, "missing flags added", slog.Int("flags", len(added)))
	return out, added, nil
}
