package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tabclean/internal/errors"
	"tabclean/internal/missing"
	"tabclean/internal/pipeline"
	"tabclean/pkg/contracts/domain"
)

const fullConfig = `
logging:
  level: debug
  format: json
export:
  dir: results
pipeline:
  coerce:
    numeric_cols: [amount]
    datetime_cols: [order_date]
    bool_cols: [is_member]
    category_cols: [city]
    category_min_freq: 2
  missing:
    strategy: group_median
    columns: [amount]
    groupby_col: city
  outlier:
    method: iqr
    action: cap
    columns: [amount]
    min_non_null: 5
  normalize:
    method: standard
    columns: [amount]
    clip: true
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse(strings.NewReader(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "results", cfg.Export.Dir)
	require.NotNil(t, cfg.Pipeline.Coerce)
	assert.Equal(t, []string{"amount"}, cfg.Pipeline.Coerce.NumericCols)
	require.NotNil(t, cfg.Pipeline.Missing)
	assert.Equal(t, missing.StrategyGroupMedian, cfg.Pipeline.Missing.Strategy)
	assert.Equal(t, "city", cfg.Pipeline.Missing.GroupByCol)
	require.NotNil(t, cfg.Pipeline.Outlier)
	assert.Equal(t, 5, cfg.Pipeline.Outlier.MinNonNull)
	require.NotNil(t, cfg.Pipeline.Normalize)
	assert.True(t, cfg.Pipeline.Normalize.Clip)

	steps, err := cfg.BuildSteps(nil)
	require.NoError(t, err)
	require.Len(t, steps, 4)
	assert.Equal(t, pipeline.StepIDCoerce, steps[0].ID())
	assert.Equal(t, pipeline.StepIDMissing, steps[1].ID())
	assert.Equal(t, pipeline.StepIDOutlier, steps[2].ID())
	assert.Equal(t, pipeline.StepIDNormalize, steps[3].ID())
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "output", cfg.Export.Dir)

	_, err = cfg.BuildSteps(nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad log level", "logging:\n  level: loud\n"},
		{"bad log format", "logging:\n  format: xml\n"},
		{"unknown key", "piepline:\n  coerce: {}\n"},
		{"bad normalize method is caught later, bad yaml now", "pipeline: [not, a, map]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
		})
	}
}

func TestMissingConfig_ConstantValue(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
pipeline:
  missing:
    strategy: constant
    columns: [amount]
    constant_value: "0"
    constant_kind: numeric
`))
	require.NoError(t, err)

	policy, err := cfg.Pipeline.Missing.toPolicy()
	require.NoError(t, err)
	f, ok := policy.ConstantValue.Float()
	require.True(t, ok)
	assert.Equal(t, 0.0, f)

	// Text is the default kind.
	cfg, err = Parse(strings.NewReader(`
pipeline:
  missing:
    strategy: constant
    constant_value: unknown
`))
	require.NoError(t, err)
	policy, err = cfg.Pipeline.Missing.toPolicy()
	require.NoError(t, err)
	assert.Equal(t, domain.ValueKindText, policy.ConstantValue.Kind())

	// A non-numeric constant under numeric kind fails at build time.
	cfg, err = Parse(strings.NewReader(`
pipeline:
  missing:
    strategy: constant
    constant_value: abc
    constant_kind: numeric
`))
	require.NoError(t, err)
	_, err = cfg.BuildSteps(nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "results", cfg.Export.Dir)

	_, err = Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestLoggingConfig_BuildLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggingConfig{Level: "info", Format: "json"}.BuildLogger(&buf)
	logger.Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	logger = LoggingConfig{Level: "warn", Format: "text"}.BuildLogger(&buf)
	logger.Info("dropped")
	logger.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
