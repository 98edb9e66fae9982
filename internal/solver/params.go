package solver

import (
	"fmt"
	"math"

	apperrors "github.com/agbru/capplan/internal/errors"
)

// Params configures a capital-planning routine. Zero values in overrides mean
// "keep the routine default"; see Merge.
type Params struct {
	Alpha      float64 `yaml:"alpha" json:"alpha"`             // capital share
	Beta       float64 `yaml:"beta" json:"beta"`               // discount factor
	Delta      float64 `yaml:"delta" json:"delta"`             // depreciation rate
	Phi        float64 `yaml:"phi" json:"phi"`                 // investment adjustment cost
	MaxSavings float64 `yaml:"max_savings" json:"max_savings"` // savings cap before the 1.5 widening

	GridSize      int     `yaml:"grid_size" json:"grid_size"`           // N
	GridLow       float64 `yaml:"grid_low" json:"grid_low"`             // lower bound as a fraction of k_ss
	GridHigh      float64 `yaml:"grid_high" json:"grid_high"`           // upper bound as a fraction of k_ss
	SavingsPoints int     `yaml:"savings_points" json:"savings_points"` // choice grid resolution

	Tolerance     float64 `yaml:"tolerance" json:"tolerance"`
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`

	ShockValues     []float64   `yaml:"shock_values" json:"shock_values"`
	ShockTransition [][]float64 `yaml:"shock_transition" json:"shock_transition"`
}

// Default parameter values.
const (
	DefaultAlpha         = 0.3
	DefaultBeta          = 0.98
	DefaultDelta         = 0.04
	DefaultPhi           = 0.5
	DefaultMaxSavings    = 0.6
	DefaultGridSize      = 100
	DefaultGridLow       = 0.5
	DefaultGridHigh      = 1.5
	DefaultSavingsPoints = 200
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 2000
)

// DefaultParams returns the single-household aggregate-shock calibration.
func DefaultParams() Params {
	return Params{
		Alpha:           DefaultAlpha,
		Beta:            DefaultBeta,
		Delta:           DefaultDelta,
		Phi:             DefaultPhi,
		MaxSavings:      DefaultMaxSavings,
		GridSize:        DefaultGridSize,
		GridLow:         DefaultGridLow,
		GridHigh:        DefaultGridHigh,
		SavingsPoints:   DefaultSavingsPoints,
		Tolerance:       DefaultTolerance,
		MaxIterations:   DefaultMaxIterations,
		ShockValues:     []float64{0.8, 1.2},
		ShockTransition: [][]float64{{0.95, 0.05}, {0.05, 0.95}},
	}
}

// Merge returns a copy of p with every non-zero field of o applied on top.
// The result shares no slices with p or o.
func (p Params) Merge(o Params) Params {
	p.ShockValues = append([]float64(nil), p.ShockValues...)
	p.ShockTransition = cloneRows(p.ShockTransition)
	setF := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	setI := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setF(&p.Alpha, o.Alpha)
	setF(&p.Beta, o.Beta)
	setF(&p.Delta, o.Delta)
	setF(&p.Phi, o.Phi)
	setF(&p.MaxSavings, o.MaxSavings)
	setI(&p.GridSize, o.GridSize)
	setF(&p.GridLow, o.GridLow)
	setF(&p.GridHigh, o.GridHigh)
	setI(&p.SavingsPoints, o.SavingsPoints)
	setF(&p.Tolerance, o.Tolerance)
	setI(&p.MaxIterations, o.MaxIterations)
	if len(o.ShockValues) > 0 {
		p.ShockValues = append([]float64(nil), o.ShockValues...)
	}
	if len(o.ShockTransition) > 0 {
		p.ShockTransition = cloneRows(o.ShockTransition)
	}
	return p
}

func cloneRows(rows [][]float64) [][]float64 {
	if rows == nil {
		return nil
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// stochasticTol bounds how far a transition row may sum from 1.
const stochasticTol = 1e-9

// Validate checks parameter ranges. Every failure wraps ErrInvalidParams and a
// ValidationError naming the field.
func (p Params) Validate() error {
	invalid := func(field, format string, args ...any) error {
		return fmt.Errorf("%w: %w", ErrInvalidParams,
			apperrors.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	switch {
	case !(p.Alpha > 0 && p.Alpha < 1):
		return invalid("alpha", "must be in (0, 1), got %g", p.Alpha)
	case !(p.Beta > 0 && p.Beta < 1):
		return invalid("beta", "must be in (0, 1), got %g", p.Beta)
	case !(p.Delta > 0 && p.Delta <= 1):
		return invalid("delta", "must be in (0, 1], got %g", p.Delta)
	case !(p.Phi > 0):
		return invalid("phi", "must be positive, got %g", p.Phi)
	case !(p.MaxSavings > 0 && p.MaxSavings*1.5 < 1):
		return invalid("max_savings", "must be in (0, 2/3), got %g", p.MaxSavings)
	case p.GridSize < 2:
		return invalid("grid_size", "must be at least 2, got %d", p.GridSize)
	case !(p.GridLow > 0 && p.GridLow < p.GridHigh):
		return invalid("grid_low", "must satisfy 0 < grid_low < grid_high, got %g and %g", p.GridLow, p.GridHigh)
	case p.SavingsPoints < 2:
		return invalid("savings_points", "must be at least 2, got %d", p.SavingsPoints)
	case !(p.Tolerance > 0):
		return invalid("tolerance", "must be positive, got %g", p.Tolerance)
	case p.MaxIterations < 1:
		return invalid("max_iterations", "must be at least 1, got %d", p.MaxIterations)
	case len(p.ShockValues) != PolicyRows:
		return invalid("shock_values", "must have %d states, got %d", PolicyRows, len(p.ShockValues))
	case len(p.ShockTransition) != len(p.ShockValues):
		return invalid("shock_transition", "must have %d rows, got %d", len(p.ShockValues), len(p.ShockTransition))
	}
	for i, z := range p.ShockValues {
		if !(z > 0) {
			return invalid("shock_values", "state %d must be positive, got %g", i, z)
		}
	}
	for i, row := range p.ShockTransition {
		if len(row) != len(p.ShockValues) {
			return invalid("shock_transition", "row %d has %d columns, want %d", i, len(row), len(p.ShockValues))
		}
		sum := 0.0
		for _, q := range row {
			if q < 0 {
				return invalid("shock_transition", "row %d has a negative probability", i)
			}
			sum += q
		}
		if math.Abs(sum-1) > stochasticTol {
			return invalid("shock_transition", "row %d sums to %g, want 1", i, sum)
		}
	}
	return nil
}

// SteadyStateCapital returns the deterministic steady-state capital stock of
// the single-household, single-capital economy.
func (p Params) SteadyStateCapital() float64 {
	base := p.Phi * p.Delta * ((1 - p.Beta*(1-p.Delta)) / (p.Alpha * p.Beta))
	return math.Pow(base, 1/(p.Alpha-2))
}
