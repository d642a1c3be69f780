// Package config loads and validates the YAML description of a
// cleaning pipeline: which steps run, with which policies, plus
// logging and export settings.
//
// # Validation
//
// Load is fail-fast: a config that names an unknown strategy, an
// out-of-range threshold or a malformed constant never produces a
// Config value. Structural validation runs through the validator tags
// on the policy types themselves, so the rules live next to the fields
// they constrain.
//
// # Usage
//
//	cfg, err := config.Load("pipeline.yaml")
//	logger := cfg.Logging.BuildLogger(os.Stderr)
//	steps, err := cfg.BuildSteps(logger)
//	mgr := pipeline.NewManager(logger, steps...)
package config
