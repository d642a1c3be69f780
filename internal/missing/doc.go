// Package missing diagnoses and handles absent values in tabular data.
//
// # Architecture
//
// The package offers two independent services on one Engine:
//
//  1. Diagnosis: read-only summaries (per-column counts and rates) and
//     co-missingness patterns (which column sets go absent together).
//  2. Handling: policy-driven imputation or removal, returning a new
//     table and a per-column report.
//
// # Strategies
//
// drop_rows, drop_cols, constant, mean, median, mode, group_median,
// group_mode, ffill, bfill and interpolate_linear. Group and sequential
// strategies read an auxiliary column declared in the policy; asking for
// one without that column is a configuration error raised before any
// mutation.
//
// # Usage
//
//	engine := missing.NewEngine(logger)
//	rows, _ := engine.Summary(ctx, table, nil, missing.SortByPct, true)
//	cleaned, report, err := engine.Handle(ctx, table, missing.Policy{
//	    Strategy:   missing.StrategyGroupMedian,
//	    Columns:    []string{"income"},
//	    GroupByCol: "segment",
//	})
//
// AddMissingFlags and CompareBeforeAfter support treating missingness as
// a feature and auditing what a handling pass actually changed.
package missing
