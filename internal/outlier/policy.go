package outlier

import (
	"fmt"

	apperrors "tabclean/internal/errors"
	"tabclean/pkg/contracts/domain"
)

// Method selects how outliers are detected.
type Method string

const (
	MethodIQR        Method = "iqr"
	MethodMAD        Method = "mad"
	MethodPercentile Method = "pct"
)

// Action selects what happens to detected outliers.
type Action string

const (
	ActionCap  Action = "cap"
	ActionFlag Action = "flag"
	ActionDrop Action = "drop"
)

// Conventional detection constants.
const (
	DefaultIQRK       = 1.5
	DefaultMADZ       = 3.5
	DefaultCapLowerQ  = 0.01
	DefaultCapUpperQ  = 0.99
	DefaultMinNonNull = 30

	// madScale relates the MAD to the standard deviation of a normal
	// distribution (1/1.4826).
	madScale = 0.6745
)

// Policy configures one detection-and-treatment pass.
type Policy struct {
	Method Method `yaml:"method" json:"method" validate:"required"`
	Action Action `yaml:"action" json:"action" validate:"required"`

	// Columns to inspect. Empty means every numeric column.
	Columns []string `yaml:"columns" json:"columns"`

	// IQRK is the Tukey fence multiplier. Zero means 1.5.
	IQRK float64 `yaml:"iqr_k" json:"iqr_k" validate:"min=0"`

	// MADZ is the robust z-score cutoff. Zero means 3.5.
	MADZ float64 `yaml:"mad_z" json:"mad_z" validate:"min=0"`

	// CapLowerQ and CapUpperQ are the winsorizing quantiles for the cap
	// action and the detection bounds for the pct method. Zero values
	// mean the 0.01 and 0.99 defaults.
	CapLowerQ float64 `yaml:"cap_lower_q" json:"cap_lower_q" validate:"min=0,max=1"`
	CapUpperQ float64 `yaml:"cap_upper_q" json:"cap_upper_q" validate:"min=0,max=1"`

	// MinNonNull is the smallest present-value count a column needs
	// before detection runs on it. Zero means 30.
	MinNonNull int `yaml:"min_non_null" json:"min_non_null" validate:"min=0"`
}

// DefaultPolicy returns the conventional configuration: IQR fences with
// capping, thresholds at their textbook values.
func DefaultPolicy() Policy {
	return Policy{
		Method:     MethodIQR,
		Action:     ActionCap,
		IQRK:       DefaultIQRK,
		MADZ:       DefaultMADZ,
		CapLowerQ:  DefaultCapLowerQ,
		CapUpperQ:  DefaultCapUpperQ,
		MinNonNull: DefaultMinNonNull,
	}
}

var (
	knownMethods = map[Method]bool{MethodIQR: true, MethodMAD: true, MethodPercentile: true}
	knownActions = map[Action]bool{ActionCap: true, ActionFlag: true, ActionDrop: true}
)

// validate checks the policy against the table before any work starts.
// When Columns is empty it resolves to the table's numeric columns.
func (p Policy) validate(table *domain.Table) ([]string, error) {
	if !knownMethods[p.Method] {
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown method: %q", p.Method), nil)
	}
	if !knownActions[p.Action] {
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown action: %q", p.Action), nil)
	}
	if lo, hi := p.capLowerQ(), p.capUpperQ(); lo >= hi {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("cap quantiles must satisfy lower < upper, got %g and %g", lo, hi), nil)
	}

	if len(p.Columns) == 0 {
		var numeric []string
		for _, col := range table.Columns() {
			if col.IsNumeric() {
				numeric = append(numeric, col.Name())
			}
		}
		return numeric, nil
	}
	cols, err := table.ValidateColumns(p.Columns)
	if err != nil {
		return nil, apperrors.NewConfigError("policy targets unknown columns", err)
	}
	return cols, nil
}

func (p Policy) iqrK() float64 {
	if p.IQRK == 0 {
		return DefaultIQRK
	}
	return p.IQRK
}

func (p Policy) madZ() float64 {
	if p.MADZ == 0 {
		return DefaultMADZ
	}
	return p.MADZ
}

func (p Policy) capLowerQ() float64 {
	if p.CapLowerQ == 0 {
		return DefaultCapLowerQ
	}
	return p.CapLowerQ
}

func (p Policy) capUpperQ() float64 {
	if p.CapUpperQ == 0 {
		return DefaultCapUpperQ
	}
	return p.CapUpperQ
}

func (p Policy) minNonNull() int {
	if p.MinNonNull == 0 {
		return DefaultMinNonNull
	}
	return p.MinNonNull
}
