package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	apperrors "tabclean/internal/errors"
	"tabclean/internal/stats"
	"tabclean/pkg/contracts/domain"
)

// ReportHeaders are the columns of every transform report.
var ReportHeaders = []string{"column", "method", "mean_before", "std_before", "mean_after", "std_after", "note"}

// ColumnParams holds the statistics fitted for one column. Center and
// Scale cover the affine methods; Lambda and the post-transform moments
// belong to yeo_johnson.
type ColumnParams struct {
	Center     float64 `json:"center"`
	Scale      float64 `json:"scale"`
	Lambda     float64 `json:"lambda,omitempty"`
	PostCenter float64 `json:"post_center,omitempty"`
	PostScale  float64 `json:"post_scale,omitempty"`
}

// FittedParams is the reusable outcome of a Fit. Applying it to another
// table replays exactly the training statistics; it never refits.
type FittedParams struct {
	Method  Method                  `json:"method"`
	Columns []string                `json:"columns"`
	Params  map[string]ColumnParams `json:"params"`
	Clip    bool                    `json:"clip"`
	ClipMin float64                 `json:"clip_min"`
	ClipMax float64                 `json:"clip_max"`
}

// Engine fits and applies normalizers.
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

// Fit learns the method's statistics from the table. Every target
// column must be numeric and hold at least one present value.
func (e *Engine) Fit(ctx context.Context, table *domain.Table, spec Spec) (*FittedParams, error) {
	cols, err := spec.validate(table)
	if err != nil {
		return nil, err
	}

	fitted := &FittedParams{
		Method:  spec.Method,
		Columns: cols,
		Params:  make(map[string]ColumnParams, len(cols)),
		Clip:    spec.Clip,
	}
	if spec.Clip {
		fitted.ClipMin, fitted.ClipMax = spec.clipRange()
	}

	for _, name := range cols {
		col, _ := table.Column(name)
		present := col.NonAbsentFloats()
		if len(present) == 0 {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("column %q has no non-missing values to fit", name))
		}
		fitted.Params[name] = fitColumn(present, spec.Method)
	}

	e.logger.InfoContext(ctx, "normalizer fitted",
		slog.String("method", string(spec.Method)),
		slog.Int("columns", len(cols)))
	return fitted, nil
}

// fitColumn computes one column's parameters. Zero spreads substitute a
// unit scale so constant columns map to zero instead of dividing by zero.
func fitColumn(present []float64, method Method) ColumnParams {
	switch method {
	case MethodMinMax:
		lo, hi := present[0], present[0]
		for _, v := range present {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		return ColumnParams{Center: lo, Scale: safeScale(hi - lo)}
	case MethodRobust:
		q1 := stats.Percentile(present, 0.25)
		q3 := stats.Percentile(present, 0.75)
		return ColumnParams{Center: stats.Median(present), Scale: safeScale(q3 - q1)}
	case MethodLog:
		return ColumnParams{Scale: 1}
	case MethodYeoJohnson:
		lambda := fitLambda(present)
		transformed := make([]float64, len(present))
		for i, v := range present {
			transformed[i] = yeoJohnson(v, lambda)
		}
		return ColumnParams{
			Lambda:     lambda,
			Scale:      1,
			PostCenter: stats.Mean(transformed),
			PostScale:  safeScale(stats.PopStdDev(transformed)),
		}
	default:
		return ColumnParams{Center: stats.Mean(present), Scale: safeScale(stats.PopStdDev(present))}
	}
}

func safeScale(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}

// Transform applies previously fitted parameters to a table. Every
// fitted column must exist in the input as a numeric column; a missing
// one is an error, not a silent skip. Absent cells stay absent.
//
// The log method is stateless, so params only needs Method and Columns
// for it; every other method requires fitted statistics.
func (e *Engine) Transform(ctx context.Context, table *domain.Table, params *FittedParams) (*domain.Table, *domain.Report, error) {
	if params == nil || len(params.Columns) == 0 {
		return nil, nil, apperrors.NewUsageError("transform called before fit")
	}
	if params.Method != MethodLog && len(params.Params) == 0 {
		return nil, nil, apperrors.NewUsageError("transform called before fit")
	}

	report := domain.NewReport("Normalization", ReportHeaders...)
	out := table.Clone()

	for _, name := range params.Columns {
		col, ok := table.Column(name)
		if !ok {
			return nil, nil, apperrors.NewAppError(apperrors.ErrTypeNotFound,
				fmt.Sprintf("fitted column %q not found in input", name), nil)
		}
		if !col.IsNumeric() {
			return nil, nil, apperrors.NewConfigError(
				fmt.Sprintf("fitted column %q is %s in input, want numeric", name, col.Type()), nil)
		}
		cp := params.Params[name]

		beforeMean := stats.Mean(col.NonAbsentFloats())
		beforeStd := stats.StdDev(col.NonAbsentFloats())

		vals, mask := col.Floats()
		for i := range vals {
			if mask[i] {
				continue
			}
			v := applyColumn(vals[i], params.Method, cp)
			if params.Clip {
				v = math.Min(math.Max(v, params.ClipMin), params.ClipMax)
			}
			vals[i] = v
		}

		var err error
		out, err = out.WithColumn(domain.NewNumericColumn(name, vals, mask))
		if err != nil {
			return nil, nil, err
		}

		after, _ := out.Column(name)
		report.AddRow(name, string(params.Method),
			fmt.Sprintf("%.4f", beforeMean), fmt.Sprintf("%.4f", beforeStd),
			fmt.Sprintf("%.4f", stats.Mean(after.NonAbsentFloats())),
			fmt.Sprintf("%.4f", stats.StdDev(after.NonAbsentFloats())),
			methodNote(params.Method, cp))
	}

	e.logger.InfoContext(ctx, "normalization applied",
		slog.String("method", string(params.Method)),
		slog.Int("columns", len(params.Columns)),
		slog.Int("rows", table.NumRows()))
	return out, report, nil
}

// FitTransform fits on the table and immediately transforms it.
func (e *Engine) FitTransform(ctx context.Context, table *domain.Table, spec Spec) (*domain.Table, *FittedParams, *domain.Report, error) {
	params, err := e.Fit(ctx, table, spec)
	if err != nil {
		return nil, nil, nil, err
	}
	out, report, err := e.Transform(ctx, table, params)
	if err != nil {
		return nil, nil, nil, err
	}
	return out, params, report, nil
}

func applyColumn(v float64, method Method, cp ColumnParams) float64 {
	switch method {
	case MethodLog:
		// Stateless; negatives clamp to zero before log1p.
		return math.Log1p(math.Max(v, 0))
	case MethodYeoJohnson:
		return (yeoJohnson(v, cp.Lambda) - cp.PostCenter) / cp.PostScale
	default:
		return (v - cp.Center) / cp.Scale
	}
}

func methodNote(method Method, cp ColumnParams) string {
	switch method {
	case MethodYeoJohnson:
		return fmt.Sprintf("lambda %.4f", cp.Lambda)
	case MethodLog:
		return "log1p, stateless"
	default:
		return fmt.Sprintf("center %g scale %g", cp.Center, cp.Scale)
	}
}
