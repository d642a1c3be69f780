// Package coerce normalizes raw, loosely-typed column values into
// well-typed numeric, datetime, boolean and categorical columns.
//
// # Architecture
//
// The package exposes a single Engine driven by a Spec listing target
// columns per intended logical type. Each conversion is total: values
// that cannot be parsed become absent rather than failing the column,
// and the per-column parse failure rate is surfaced in the diagnostic
// report.
//
// # Usage
//
//	engine := coerce.NewEngine(logger)
//	fixed, report, err := engine.Apply(ctx, table, coerce.Spec{
//	    NumericCols:  []string{"amount"},
//	    DatetimeCols: []string{"order_date"},
//	    BoolCols:     []string{"is_member"},
//	    CategoryCols: []string{"city"},
//	})
//
// # Error Handling
//
// Per-value parse failures are recovered locally and aggregated into the
// failure-rate metric. A requested column that does not exist produces a
// skip row in the report, never a fatal error.
package coerce
