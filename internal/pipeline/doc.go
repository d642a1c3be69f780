// Package pipeline orchestrates the cleaning engines as an ordered run
// of steps over a single table.
//
// # Architecture
//
// A Manager owns an ordered list of Steps. Each Run gets a unique ID
// and a RunState that carries the evolving table, the reports every
// step emits and per-step lifecycle state (pending, active, completed,
// failed, skipped) with timings. Steps validate against the current
// state before executing, so a misconfigured run fails before any
// mutation reaches the table.
//
// Execution is traced with OpenTelemetry: one span per run, one child
// span per step, with error status recorded on failure.
//
// # Usage
//
//	mgr := pipeline.NewManager(logger,
//	    pipeline.NewCoerceStep(logger, coerceSpec),
//	    pipeline.NewMissingStep(logger, missingPolicy),
//	    pipeline.NewOutlierStep(logger, outlierPolicy),
//	    pipeline.NewNormalizeStep(logger, normalizeSpec),
//	)
//	state, err := mgr.Run(ctx, table)
//	cleaned := state.Table()
package pipeline
