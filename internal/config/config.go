package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"tabclean/internal/coerce"
	apperrors "tabclean/internal/errors"
	"tabclean/internal/missing"
	"tabclean/internal/normalize"
	"tabclean/internal/outlier"
	"tabclean/internal/pipeline"
	"tabclean/pkg/contracts/domain"
)

// Config is the complete pipeline configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Export   ExportConfig   `yaml:"export"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// ExportConfig controls where results land.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// PipelineConfig selects and configures the steps. A nil section means
// the step does not run; order is fixed (coerce, missing, outlier,
// normalize) regardless of YAML order.
type PipelineConfig struct {
	Coerce    *coerce.Spec    `yaml:"coerce"`
	Missing   *MissingConfig  `yaml:"missing"`
	Outlier   *outlier.Policy `yaml:"outlier"`
	Normalize *normalize.Spec `yaml:"normalize"`
}

// MissingConfig mirrors missing.Policy with a YAML-expressible constant
// fill value: the scalar text plus the kind to parse it as.
type MissingConfig struct {
	missing.Policy `yaml:",inline"`

	ConstantText string `yaml:"constant_value"`
	ConstantKind string `yaml:"constant_kind" validate:"omitempty,oneof=numeric text boolean"`
}

// toPolicy resolves the YAML form into an executable policy.
func (m MissingConfig) toPolicy() (missing.Policy, error) {
	p := m.Policy
	if m.ConstantText == "" {
		return p, nil
	}
	switch m.ConstantKind {
	case "numeric":
		f, err := strconv.ParseFloat(m.ConstantText, 64)
		if err != nil {
			return p, apperrors.NewConfigError(
				fmt.Sprintf("constant_value %q is not numeric", m.ConstantText), err)
		}
		p.ConstantValue = domain.NumericValue(f)
	case "boolean":
		b, err := strconv.ParseBool(m.ConstantText)
		if err != nil {
			return p, apperrors.NewConfigError(
				fmt.Sprintf("constant_value %q is not boolean", m.ConstantText), err)
		}
		p.ConstantValue = domain.BooleanValue(b)
	default:
		p.ConstantValue = domain.TextValue(m.ConstantText)
	}
	return p, nil
}

// Default returns the baseline configuration: info-level text logging,
// exports under "output", no steps configured.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Export:  ExportConfig{Dir: "output"},
	}
}

// Load reads, parses and validates a YAML config file.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to open config %s", path), err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads a YAML config from a reader, applying defaults for
// anything unset.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to read config", err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to parse config", err)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "output"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the whole configuration against the validator tags
// declared on the policy types.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError("invalid configuration", err)
	}
	return nil
}

// BuildLogger creates the structured logger the config asks for.
func (l LoggingConfig) BuildLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(l.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// BuildSteps assembles the configured steps in their fixed execution
// order. An empty pipeline section is a configuration error; running
// zero steps is never what anyone means.
func (c *Config) BuildSteps(logger *slog.Logger) ([]pipeline.Step, error) {
	var steps []pipeline.Step
	if c.Pipeline.Coerce != nil {
		steps = append(steps, pipeline.NewCoerceStep(logger, *c.Pipeline.Coerce))
	}
	if c.Pipeline.Missing != nil {
		policy, err := c.Pipeline.Missing.toPolicy()
		if err != nil {
			return nil, err
		}
		steps = append(steps, pipeline.NewMissingStep(logger, policy))
	}
	if c.Pipeline.Outlier != nil {
		steps = append(steps, pipeline.NewOutlierStep(logger, *c.Pipeline.Outlier))
	}
	if c.Pipeline.Normalize != nil {
		steps = append(steps, pipeline.NewNormalizeStep(logger, *c.Pipeline.Normalize))
	}
	if len(steps) == 0 {
		return nil, apperrors.NewConfigError("pipeline configures no steps", nil)
	}
	return steps, nil
}
