package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"tabclean/pkg/contracts/domain"
)

// Manager executes an ordered list of steps over a table, producing one
// RunState per run. Managers are stateless between runs and safe for
// concurrent use.
type Manager struct {
	logger *slog.Logger
	tracer *Tracer
	steps  []Step
}

// NewManager creates a manager over the given steps in execution order.
// A nil logger falls back to slog.Default.
func NewManager(logger *slog.Logger, steps ...Step) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger, tracer: NewTracer(), steps: steps}
}

// Steps returns the configured steps in execution order.
func (m *Manager) Steps() []Step {
	return append([]Step(nil), m.steps...)
}

// Run executes every step in order against the table. The returned
// RunState always reflects what happened, also on failure: completed
// steps keep their reports, the failing step carries its error and the
// steps after it stay pending.
func (m *Manager) Run(ctx context.Context, table *domain.Table) (*RunState, error) {
	state := NewRunState(uuid.New().String())
	state.SetTable(table)

	for _, step := range m.steps {
		state.setStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	rows := 0
	if table != nil {
		rows = table.NumRows()
	}
	ctx, runSpan := m.tracer.StartRun(ctx, state.ID, len(m.steps), rows)
	defer runSpan.End()

	state.Start()
	m.logger.InfoContext(ctx, "cleaning run started",
		slog.String("run_id", state.ID),
		slog.Int("steps", len(m.steps)),
		slog.Int("rows", rows))

	for _, step := range m.steps {
		if err := ctx.Err(); err != nil {
			state.Cancel()
			m.tracer.RecordRunCompletion(runSpan, state, err)
			return state, err
		}

		stepState := state.Step(step.ID())

		if err := step.Validate(state); err != nil {
			err = fmt.Errorf("step %s validation: %w", step.ID(), err)
			stepState.Fail(err)
			state.Fail(err)
			m.tracer.RecordRunCompletion(runSpan, state, err)
			m.logger.ErrorContext(ctx, "step validation failed",
				slog.String("run_id", state.ID),
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			return state, err
		}

		stepCtx, stepSpan := m.tracer.StartStep(ctx, state.ID, step.ID())
		stepState.Start()

		err := step.Execute(stepCtx, state)
		m.tracer.RecordStepCompletion(stepSpan, step.ID(), stepState.Duration(), err)
		stepSpan.End()

		if err != nil {
			err = fmt.Errorf("step %s: %w", step.ID(), err)
			stepState.Fail(err)
			state.Fail(err)
			m.tracer.RecordRunCompletion(runSpan, state, err)
			m.logger.ErrorContext(ctx, "step failed",
				slog.String("run_id", state.ID),
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			return state, err
		}

		stepState.Complete()
		m.logger.InfoContext(ctx, "step completed",
			slog.String("run_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", stepState.Duration()),
			slog.Int("rows", state.Table().NumRows()))
	}

	state.Complete()
	m.tracer.RecordRunCompletion(runSpan, state, nil)
	m.logger.InfoContext(ctx, "cleaning run completed",
		slog.String("run_id", state.ID),
		slog.Duration("duration", state.Duration()))
	return state, nil
}
