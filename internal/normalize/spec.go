package normalize

import (
	"fmt"

	apperrors "tabclean/internal/errors"
	"tabclean/pkg/contracts/domain"
)

// Method selects the scaling function.
type Method string

const (
	MethodStandard   Method = "standard"
	MethodMinMax     Method = "minmax"
	MethodRobust     Method = "robust"
	MethodLog        Method = "log"
	MethodYeoJohnson Method = "yeo_johnson"
)

// Default clip range for scaled output.
const (
	DefaultClipMin = -5.0
	DefaultClipMax = 5.0
)

// Spec configures a fit. Columns left empty means every numeric column.
type Spec struct {
	Method  Method   `yaml:"method" json:"method" validate:"required"`
	Columns []string `yaml:"columns" json:"columns"`

	// Clip bounds transformed output into [ClipMin, ClipMax]. Zero
	// bounds with Clip set mean the (-5, 5) default.
	Clip    bool    `yaml:"clip" json:"clip"`
	ClipMin float64 `yaml:"clip_min" json:"clip_min"`
	ClipMax float64 `yaml:"clip_max" json:"clip_max"`
}

var knownMethods = map[Method]bool{
	MethodStandard: true, MethodMinMax: true, MethodRobust: true,
	MethodLog: true, MethodYeoJohnson: true,
}

// validate resolves the target columns and rejects bad specs before any
// statistics are computed. Every target must be numeric.
func (s Spec) validate(table *domain.Table) ([]string, error) {
	if !knownMethods[s.Method] {
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown method: %q", s.Method), nil)
	}
	if s.Clip {
		if lo, hi := s.clipRange(); lo >= hi {
			return nil, apperrors.NewConfigError(
				fmt.Sprintf("clip range must satisfy min < max, got %g and %g", lo, hi), nil)
		}
	}

	if len(s.Columns) == 0 {
		var numeric []string
		for _, col := range table.Columns() {
			if col.IsNumeric() {
				numeric = append(numeric, col.Name())
			}
		}
		return numeric, nil
	}

	cols, err := table.ValidateColumns(s.Columns)
	if err != nil {
		return nil, apperrors.NewConfigError("spec targets unknown columns", err)
	}
	for _, name := range cols {
		col, _ := table.Column(name)
		if !col.IsNumeric() {
			return nil, apperrors.NewConfigError(
				fmt.Sprintf("column %q is %s, normalization needs numeric", name, col.Type()), nil)
		}
	}
	return cols, nil
}

// clipRange resolves the effective clip bounds.
func (s Spec) clipRange() (float64, float64) {
	if s.ClipMin == 0 && s.ClipMax == 0 {
		return DefaultClipMin, DefaultClipMax
	}
	return s.ClipMin, s.ClipMax
}
