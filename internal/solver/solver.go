//go:generate mockgen -source=solver.go -destination=mocks/mock_solver.go -package=mocks

package solver

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/agbru/capplan/internal/errors"
)

// PolicyRows is the number of policy rows a Result must carry.
const PolicyRows = 2

var (
	// ErrShapeMismatch is matched by every grid dimension error.
	ErrShapeMismatch = apperrors.ErrShapeMismatch

	// ErrEmptyGrid is returned when a routine produces an empty state grid.
	ErrEmptyGrid = errors.New("empty state grid")

	// ErrNotConverged is returned when value iteration exhausts its iteration budget.
	ErrNotConverged = errors.New("value iteration did not converge")

	// ErrInvalidParams is matched by every parameter validation failure.
	ErrInvalidParams = errors.New("invalid model parameters")
)

// ProgressCallback receives a normalized progress value in [0, 1].
type ProgressCallback func(progress float64)

// Solver is an iteration routine for one model.
type Solver interface {
	// Name returns a human-readable name for the routine.
	Name() string
	// Defaults returns the parameters the routine uses when no overrides are given.
	Defaults() Params
	// Solve runs the routine. It must honor ctx cancellation and may call
	// progress from any goroutine.
	Solve(ctx context.Context, params Params, progress ProgressCallback) (*Result, error)
}

// Result is the output of an iteration routine.
type Result struct {
	// StateGrid holds the discretized capital levels, length N.
	StateGrid []float64 `json:"state_grid"`
	// PolicyGrid holds PolicyRows rows of length N, one value per state point.
	PolicyGrid [][]float64 `json:"policy_grid"`
	// Iterations is the number of sweeps the routine performed.
	Iterations int `json:"iterations"`
	// Distance is the sup-norm change of the last sweep.
	Distance float64 `json:"distance"`
	// Converged reports whether the stopping rule was met.
	Converged bool `json:"converged"`
}

// Validate checks that the policy grid has PolicyRows rows and that every row
// matches the length of the state grid. It never truncates or pads.
func (r *Result) Validate() error {
	if r == nil {
		return fmt.Errorf("nil result: %w", ErrEmptyGrid)
	}
	n := len(r.StateGrid)
	if n == 0 {
		return ErrEmptyGrid
	}
	if len(r.PolicyGrid) != PolicyRows {
		return &apperrors.ShapeError{What: "policy grid rows", Want: PolicyRows, Got: len(r.PolicyGrid)}
	}
	for i, row := range r.PolicyGrid {
		if len(row) != n {
			return &apperrors.ShapeError{What: fmt.Sprintf("policy row %d", i), Want: n, Got: len(row)}
		}
	}
	return nil
}

// Len returns N, the number of state grid points.
func (r *Result) Len() int { return len(r.StateGrid) }

// Func adapts a plain function to the Solver interface.
type Func struct {
	Label    string
	Params   Params
	SolveFun func(ctx context.Context, params Params, progress ProgressCallback) (*Result, error)
}

// Name returns the label.
func (f Func) Name() string { return f.Label }

// Defaults returns the stored parameters.
func (f Func) Defaults() Params { return f.Params }

// Solve calls the wrapped function.
func (f Func) Solve(ctx context.Context, params Params, progress ProgressCallback) (*Result, error) {
	return f.SolveFun(ctx, params, progress)
}
