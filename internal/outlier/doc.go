// Package outlier detects and treats extreme numeric values.
//
// # Architecture
//
// One Apply call runs detection over the target columns concurrently,
// then applies a single action to the whole table. Detection methods
// and actions combine freely:
//
//   - iqr: Tukey fences at Q1-k*IQR and Q3+k*IQR
//   - mad: robust z-score from the median absolute deviation
//   - pct: fixed quantile bounds
//
//   - cap: winsorize to the cap quantiles, under every method
//   - flag: append a boolean <col>__is_outlier marker column
//   - drop: remove rows flagged in any target column
//
// # Degenerate Inputs
//
// Zero spread never poisons the math: a zero IQR collapses the fences
// to [Q1, Q3], and a zero MAD forces every robust z-score to zero so
// nothing is flagged. Columns with fewer present values than the
// policy minimum are skipped with a report note instead of producing
// unstable bounds.
package outlier
