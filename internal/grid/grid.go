// Package grid reshapes solver output into the N×3 output matrix
// [state, policy_1, policy_2], one row per state grid point.
package grid

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	apperrors "github.com/agbru/capplan/internal/errors"
	"github.com/agbru/capplan/internal/solver"
)

// Columns names the output grid columns in order.
var Columns = []string{"state", "policy_1", "policy_2"}

// Width is the number of output columns.
const Width = 1 + solver.PolicyRows

// Build transposes the state vector into an N×1 column and the 2×N policy
// table into an N×2 block, then concatenates them column-wise. Mismatched
// dimensions return a *apperrors.ShapeError; nothing is truncated or padded.
func Build(state []float64, policy [][]float64) (*mat.Dense, error) {
	n := len(state)
	if n == 0 {
		return nil, solver.ErrEmptyGrid
	}
	if len(policy) != solver.PolicyRows {
		return nil, &apperrors.ShapeError{What: "policy grid rows", Want: solver.PolicyRows, Got: len(policy)}
	}

	flat := make([]float64, 0, solver.PolicyRows*n)
	for i, row := range policy {
		if len(row) != n {
			return nil, &apperrors.ShapeError{What: fmt.Sprintf("policy row %d", i), Want: n, Got: len(row)}
		}
		flat = append(flat, row...)
	}

	k := mat.NewVecDense(n, append([]float64(nil), state...))
	s := mat.NewDense(solver.PolicyRows, n, flat)

	var out mat.Dense
	if err := augment(&out, k, s.T()); err != nil {
		return nil, err
	}
	return &out, nil
}

// augment wraps mat.Dense.Augment, turning gonum's shape panic into an error.
// Build checks every dimension first, so this only fires if those checks and
// gonum ever disagree.
func augment(dst *mat.Dense, a, b mat.Matrix) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if r != mat.ErrShape {
				panic(r)
			}
			ar, _ := a.Dims()
			br, _ := b.Dims()
			err = &apperrors.ShapeError{What: "policy columns", Want: ar, Got: br}
		}
	}()
	dst.Augment(a, b)
	return nil
}

// Rows copies m into a slice of rows.
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = make([]float64, c)
		for j := range rows[i] {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}
