package pipeline

import (
	"context"
	"log/slog"

	"tabclean/internal/coerce"
	apperrors "tabclean/internal/errors"
	"tabclean/internal/missing"
	"tabclean/internal/normalize"
	"tabclean/internal/outlier"
)

// Step IDs in their conventional run order.
const (
	StepIDCoerce    = "coerce"
	StepIDMissing   = "missing"
	StepIDOutlier   = "outlier"
	StepIDNormalize = "normalize"
)

// ArtifactNormalizeParams is the RunState artifact key under which the
// normalize step stores its fitted parameters.
const ArtifactNormalizeParams = "normalize_params"

func validateHasTable(state *RunState, stepID string) error {
	if state.Table() == nil {
		return apperrors.NewUsageError("no table in run state for step " + stepID)
	}
	return nil
}

// CoerceStep runs type coercion.
type CoerceStep struct {
	engine *coerce.Engine
	spec   coerce.Spec
}

// NewCoerceStep creates the type-coercion step.
func NewCoerceStep(logger *slog.Logger, spec coerce.Spec) *CoerceStep {
	return &CoerceStep{engine: coerce.NewEngine(logger), spec: spec}
}

func (s *CoerceStep) ID() string   { return StepIDCoerce }
func (s *CoerceStep) Name() string { return "Type Coercion" }

func (s *CoerceStep) Validate(state *RunState) error {
	return validateHasTable(state, s.ID())
}

func (s *CoerceStep) Execute(ctx context.Context, state *RunState) error {
	fixed, report, err := s.engine.Apply(ctx, state.Table(), s.spec)
	if err != nil {
		return err
	}
	state.SetTable(fixed)
	state.AddReport(report)
	return nil
}

// MissingStep runs missing-value handling.
type MissingStep struct {
	engine *missing.Engine
	policy missing.Policy
}

// NewMissingStep creates the missing-value step.
func NewMissingStep(logger *slog.Logger, policy missing.Policy) *MissingStep {
	return &MissingStep{engine: missing.NewEngine(logger), policy: policy}
}

func (s *MissingStep) ID() string   { return StepIDMissing }
func (s *MissingStep) Name() string { return "Missing Values" }

func (s *MissingStep) Validate(state *RunState) error {
	return validateHasTable(state, s.ID())
}

func (s *MissingStep) Execute(ctx context.Context, state *RunState) error {
	handled, report, err := s.engine.Handle(ctx, state.Table(), s.policy)
	if err != nil {
		return err
	}
	state.SetTable(handled)
	state.AddReport(report)
	return nil
}

// OutlierStep runs outlier detection and treatment.
type OutlierStep struct {
	engine *outlier.Engine
	policy outlier.Policy
}

// NewOutlierStep creates the outlier step.
func NewOutlierStep(logger *slog.Logger, policy outlier.Policy) *OutlierStep {
	return &OutlierStep{engine: outlier.NewEngine(logger), policy: policy}
}

func (s *OutlierStep) ID() string   { return StepIDOutlier }
func (s *OutlierStep) Name() string { return "Outlier Treatment" }

func (s *OutlierStep) Validate(state *RunState) error {
	return validateHasTable(state, s.ID())
}

func (s *OutlierStep) Execute(ctx context.Context, state *RunState) error {
	treated, report, err := s.engine.Apply(ctx, state.Table(), s.policy)
	if err != nil {
		return err
	}
	state.SetTable(treated)
	state.AddReport(report)
	return nil
}

// NormalizeStep fits and applies feature scaling, leaving the fitted
// parameters in the run state for reuse on later tables.
type NormalizeStep struct {
	engine *normalize.Engine
	spec   normalize.Spec
}

// NewNormalizeStep creates the normalization step.
func NewNormalizeStep(logger *slog.Logger, spec normalize.Spec) *NormalizeStep {
	return &NormalizeStep{engine: normalize.NewEngine(logger), spec: spec}
}

func (s *NormalizeStep) ID() string   { return StepIDNormalize }
func (s *NormalizeStep) Name() string { return "Normalization" }

func (s *NormalizeStep) Validate(state *RunState) error {
	return validateHasTable(state, s.ID())
}

func (s *NormalizeStep) Execute(ctx context.Context, state *RunState) error {
	scaled, params, report, err := s.engine.FitTransform(ctx, state.Table(), s.spec)
	if err != nil {
		return err
	}
	state.SetTable(scaled)
	state.AddReport(report)
	state.SetArtifact(ArtifactNormalizeParams, params)
	return nil
}
