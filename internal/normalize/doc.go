// Package normalize rescales numeric features with a fit/transform
// lifecycle: statistics are learned once on training data and replayed
// unchanged on later tables.
//
// # Methods
//
//   - standard: (x - mean) / std
//   - minmax: (x - min) / (max - min)
//   - robust: (x - median) / IQR
//   - log: log1p of non-negative values, stateless
//   - yeo_johnson: power transform with fitted lambda, then standardized
//
// Degenerate spreads never divide by zero; a constant column maps to
// zero under every stateful method.
//
// # Usage
//
//	engine := normalize.NewEngine(logger)
//	params, err := engine.Fit(ctx, train, normalize.Spec{Method: normalize.MethodStandard})
//	scored, report, err := engine.Transform(ctx, serve, params)
//
// Transform fails when a fitted column is missing from its input, and
// FittedParams never silently refit. FitTransform covers the common
// single-table case.
package normalize
