package missing

import (
	"fmt"

	apperrors "tabclean/internal/errors"
	"tabclean/pkg/contracts/domain"
)

// Strategy selects how absent values are handled. Strategies are
// mutually exclusive; one Handle call applies exactly one.
type Strategy string

const (
	StrategyDropRows    Strategy = "drop_rows"
	StrategyDropCols    Strategy = "drop_cols"
	StrategyConstant    Strategy = "constant"
	StrategyMean        Strategy = "mean"
	StrategyMedian      Strategy = "median"
	StrategyMode        Strategy = "mode"
	StrategyGroupMedian Strategy = "group_median"
	StrategyGroupMode   Strategy = "group_mode"
	StrategyFFill       Strategy = "ffill"
	StrategyBFill       Strategy = "bfill"
	StrategyInterpolate Strategy = "interpolate_linear"
)

// DefaultDropThresholdPct is the column-absence rate above which
// drop_cols removes a column.
const DefaultDropThresholdPct = 60.0

// Policy configures one handling pass. Policies are immutable values;
// the engine never writes to them.
type Policy struct {
	Strategy Strategy `yaml:"strategy" json:"strategy" validate:"required"`

	// Columns to process. Empty means every column in the table.
	Columns []string `yaml:"columns" json:"columns"`

	// ConstantValue is the fill value for StrategyConstant.
	ConstantValue domain.Value `yaml:"-" json:"-"`

	// DropThresholdPct applies to StrategyDropCols. Zero means the
	// default of 60 percent.
	DropThresholdPct float64 `yaml:"drop_threshold_pct" json:"drop_threshold_pct" validate:"min=0,max=100"`

	// GroupByCol names the grouping column for the group strategies.
	GroupByCol string `yaml:"groupby_col" json:"groupby_col"`

	// TimeCol names the ordering column for ffill, bfill and linear
	// interpolation.
	TimeCol string `yaml:"time_col" json:"time_col"`

	// SortTime controls whether the table is sorted by TimeCol before a
	// sequential strategy runs. On by default through DefaultPolicy.
	SortTime bool `yaml:"sort_time" json:"sort_time"`
}

// DefaultPolicy returns a policy with the conventional defaults: median
// fill over all columns, drop threshold 60 percent, time sorting on.
func DefaultPolicy() Policy {
	return Policy{
		Strategy:         StrategyMedian,
		DropThresholdPct: DefaultDropThresholdPct,
		SortTime:         true,
	}
}

var knownStrategies = map[Strategy]bool{
	StrategyDropRows: true, StrategyDropCols: true, StrategyConstant: true,
	StrategyMean: true, StrategyMedian: true, StrategyMode: true,
	StrategyGroupMedian: true, StrategyGroupMode: true,
	StrategyFFill: true, StrategyBFill: true, StrategyInterpolate: true,
}

// isGrouped reports whether the strategy reads a grouping column.
func (s Strategy) isGrouped() bool {
	return s == StrategyGroupMedian || s == StrategyGroupMode
}

// isSequential reports whether the strategy reads an ordering column.
func (s Strategy) isSequential() bool {
	return s == StrategyFFill || s == StrategyBFill || s == StrategyInterpolate
}

// validate checks the policy against the table before any mutation.
// Failures here are configuration errors; the input table is untouched.
func (p Policy) validate(table *domain.Table) ([]string, error) {
	if !knownStrategies[p.Strategy] {
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown strategy: %q", p.Strategy), nil).
			WithContext("strategy", string(p.Strategy))
	}

	cols, err := table.ValidateColumns(p.Columns)
	if err != nil {
		return nil, apperrors.NewConfigError("policy targets unknown columns", err)
	}

	if p.Strategy.isGrouped() {
		if p.GroupByCol == "" {
			return nil, apperrors.NewConfigError("groupby_col is required for group-based strategies", nil).
				WithContext("strategy", string(p.Strategy))
		}
		if !table.HasColumn(p.GroupByCol) {
			return nil, apperrors.NewConfigError(fmt.Sprintf("groupby_col %q not found in table", p.GroupByCol), nil)
		}
	}

	if p.Strategy.isSequential() {
		if p.TimeCol == "" {
			return nil, apperrors.NewConfigError("time_col is required for sequential strategies", nil).
				WithContext("strategy", string(p.Strategy))
		}
		if !table.HasColumn(p.TimeCol) {
			return nil, apperrors.NewConfigError(fmt.Sprintf("time_col %q not found in table", p.TimeCol), nil)
		}
	}

	if p.Strategy == StrategyConstant && p.ConstantValue.IsAbsent() {
		return nil, apperrors.NewConfigError("constant strategy requires a non-absent constant_value", nil)
	}

	return cols, nil
}

// dropThreshold resolves the effective drop_cols threshold.
func (p Policy) dropThreshold() float64 {
	if p.DropThresholdPct == 0 {
		return DefaultDropThresholdPct
	}
	return p.DropThresholdPct
}
