package normalize

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tabclean/internal/errors"
	"tabclean/internal/stats"
	"tabclean/pkg/contracts/domain"
)

func numTable(name string, vals []float64, absent []bool) *domain.Table {
	return domain.MustNewTable(domain.NewNumericColumn(name, vals, absent))
}

func TestEngine_FitTransform_Standard(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(slog.Default())

	out, params, report, err := engine.FitTransform(ctx,
		numTable("x", []float64{10, 20, 30}, nil), Spec{Method: MethodStandard})
	require.NoError(t, err)

	cp := params.Params["x"]
	assert.InDelta(t, 20.0, cp.Center, 1e-9)
	assert.InDelta(t, math.Sqrt(200.0/3.0), cp.Scale, 1e-9)

	x, _ := out.Column("x")
	v0, _ := x.Float(0)
	v2, _ := x.Float(2)
	assert.InDelta(t, -v2, v0, 1e-9)
	assert.InDelta(t, 0.0, stats.Mean(x.NonAbsentFloats()), 1e-9)

	row := report.FindRow("column", "x")
	require.GreaterOrEqual(t, row, 0)
	meanAfter, _ := report.Cell(row, "mean_after")
	assert.Equal(t, "0.0000", meanAfter)
}

func TestEngine_Transform_ReplaysFittedStatistics(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	params, err := engine.Fit(ctx, numTable("x", []float64{10, 20, 30}, nil),
		Spec{Method: MethodStandard, Columns: []string{"x"}})
	require.NoError(t, err)

	// A serving value equal to the training mean lands exactly on zero,
	// proving the training statistics were replayed rather than refit.
	out, _, err := engine.Transform(ctx, numTable("x", []float64{20}, nil), params)
	require.NoError(t, err)

	x, _ := out.Column("x")
	v, ok := x.Float(0)
	require.True(t, ok)
	assert.InDelta(t, 0.0, v, 1e-9)
}

func TestEngine_FitTransform_MinMaxAndRobust(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	out, _, _, err := engine.FitTransform(ctx,
		numTable("x", []float64{10, 20, 30}, nil), Spec{Method: MethodMinMax})
	require.NoError(t, err)
	x, _ := out.Column("x")
	for i, want := range []float64{0, 0.5, 1} {
		v, _ := x.Float(i)
		assert.InDelta(t, want, v, 1e-9)
	}

	out, _, _, err = engine.FitTransform(ctx,
		numTable("x", []float64{1, 2, 3, 4, 5}, nil), Spec{Method: MethodRobust})
	require.NoError(t, err)
	x, _ = out.Column("x")
	for i, want := range []float64{-1, -0.5, 0, 0.5, 1} {
		v, _ := x.Float(i)
		assert.InDelta(t, want, v, 1e-9)
	}
}

func TestEngine_FitTransform_ConstantColumnMapsToZero(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	for _, method := range []Method{MethodStandard, MethodMinMax, MethodRobust} {
		out, _, _, err := engine.FitTransform(ctx,
			numTable("x", []float64{7, 7, 7}, nil), Spec{Method: method})
		require.NoError(t, err, method)

		x, _ := out.Column("x")
		for i := 0; i < 3; i++ {
			v, _ := x.Float(i)
			assert.Equal(t, 0.0, v, "method %s row %d", method, i)
		}
	}
}

func TestEngine_FitTransform_Log(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	out, _, _, err := engine.FitTransform(ctx,
		numTable("x", []float64{-1, 0, math.E - 1}, nil), Spec{Method: MethodLog})
	require.NoError(t, err)

	x, _ := out.Column("x")
	// Negatives clamp to zero before log1p.
	for i, want := range []float64{0, 0, 1} {
		v, _ := x.Float(i)
		assert.InDelta(t, want, v, 1e-9, "row %d", i)
	}
}

func TestEngine_Transform_LogNeedsNoFit(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	// Log carries no fitted statistics; method and columns suffice.
	params := &FittedParams{Method: MethodLog, Columns: []string{"x"}}
	out, report, err := engine.Transform(ctx,
		numTable("x", []float64{0, math.E - 1}, nil), params)
	require.NoError(t, err)

	x, _ := out.Column("x")
	v, _ := x.Float(0)
	assert.InDelta(t, 0.0, v, 1e-9)
	v, _ = x.Float(1)
	assert.InDelta(t, 1.0, v, 1e-9)

	row := report.FindRow("column", "x")
	require.GreaterOrEqual(t, row, 0)
	note, _ := report.Cell(row, "note")
	assert.Equal(t, "log1p, stateless", note)
}

func TestEngine_FitTransform_YeoJohnson(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	in := []float64{1, 2, 3, 4, 100}
	out, params, _, err := engine.FitTransform(ctx, numTable("x", in, nil),
		Spec{Method: MethodYeoJohnson})
	require.NoError(t, err)

	// Heavy right skew pulls lambda below 1.
	assert.Less(t, params.Params["x"].Lambda, 1.0)

	x, _ := out.Column("x")
	vals := x.NonAbsentFloats()
	assert.InDelta(t, 0.0, stats.Mean(vals), 1e-6)
	assert.InDelta(t, 1.0, stats.PopStdDev(vals), 1e-6)
	assert.True(t, sort.Float64sAreSorted(vals))
}

func TestEngine_Transform_Clip(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	out, _, _, err := engine.FitTransform(ctx,
		numTable("x", []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 1000}, nil),
		Spec{Method: MethodStandard, Clip: true})
	require.NoError(t, err)

	x, _ := out.Column("x")
	for _, v := range x.NonAbsentFloats() {
		assert.GreaterOrEqual(t, v, DefaultClipMin)
		assert.LessOrEqual(t, v, DefaultClipMax)
	}
}

func TestEngine_Transform_PreservesAbsence(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	out, _, _, err := engine.FitTransform(ctx,
		numTable("x", []float64{10, 0, 30}, []bool{false, true, false}),
		Spec{Method: MethodStandard})
	require.NoError(t, err)

	x, _ := out.Column("x")
	assert.True(t, x.IsAbsent(1))
	assert.Equal(t, 1, x.AbsentCount())
}

func TestEngine_Transform_BeforeFitFails(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	_, _, err := engine.Transform(ctx, numTable("x", []float64{1}, nil), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUsage))
}

func TestEngine_Transform_MissingFittedColumnFails(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	params, err := engine.Fit(ctx, numTable("x", []float64{1, 2, 3}, nil),
		Spec{Method: MethodStandard})
	require.NoError(t, err)

	_, _, err = engine.Transform(ctx, numTable("y", []float64{1}, nil), params)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestEngine_Fit_Errors(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)

	_, err := engine.Fit(ctx, numTable("x", []float64{1}, nil), Spec{Method: "zscore"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))

	table := domain.MustNewTable(domain.NewTextColumn("label", []string{"a"}, nil))
	_, err = engine.Fit(ctx, table, Spec{Method: MethodStandard, Columns: []string{"label"}})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))

	_, err = engine.Fit(ctx, numTable("x", []float64{0, 0}, []bool{true, true}),
		Spec{Method: MethodStandard})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = engine.Fit(ctx, numTable("x", []float64{1}, nil),
		Spec{Method: MethodStandard, Clip: true, ClipMin: 2, ClipMax: -2})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestYeoJohnson_KnownValues(t *testing.T) {
	// lambda=1 is the identity shift family.
	assert.InDelta(t, 3.0, yeoJohnson(3, 1), 1e-9)
	assert.InDelta(t, -3.0, yeoJohnson(-3, 1), 1e-9)
	// lambda=0 is log1p on the non-negative branch.
	assert.InDelta(t, math.Log1p(4), yeoJohnson(4, 0), 1e-9)
	// lambda=2 is -log1p on the negative branch.
	assert.InDelta(t, -math.Log1p(4), yeoJohnson(-4, 2), 1e-9)
	// Continuity across the lambda branches.
	assert.InDelta(t, yeoJohnson(4, 1e-13), yeoJohnson(4, 0), 1e-6)
}
