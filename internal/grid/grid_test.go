package grid

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gonum.org/v1/gonum/mat"

	"github.com/agbru/capplan/internal/solver"
)

func TestBuild_Example(t *testing.T) {
	t.Parallel()
	m, err := Build([]float64{1, 2, 3}, [][]float64{{10, 20, 30}, {40, 50, 60}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := mat.NewDense(3, 3, []float64{
		1, 10, 40,
		2, 20, 50,
		3, 30, 60,
	})
	if !mat.Equal(m, want) {
		t.Errorf("Build() =\n%v\nwant\n%v", mat.Formatted(m), mat.Formatted(want))
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		state   []float64
		policy  [][]float64
		wantErr error
	}{
		{"empty state", nil, [][]float64{{}, {}}, solver.ErrEmptyGrid},
		{"one row", []float64{1, 2}, [][]float64{{1, 2}}, solver.ErrShapeMismatch},
		{"three rows", []float64{1}, [][]float64{{1}, {2}, {3}}, solver.ErrShapeMismatch},
		{"policy shorter than state", []float64{1, 2, 3}, [][]float64{{1, 2}, {3, 4}}, solver.ErrShapeMismatch},
		{"policy longer than state", []float64{1, 2}, [][]float64{{1, 2, 3}, {4, 5, 6}}, solver.ErrShapeMismatch},
		{"ragged rows", []float64{1, 2}, [][]float64{{1, 2}, {3}}, solver.ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := Build(tt.state, tt.policy)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Build() error = %v, want %v", err, tt.wantErr)
			}
			if m != nil {
				t.Error("no grid may be returned on error")
			}
		})
	}
}

func TestBuild_DoesNotAliasInputs(t *testing.T) {
	t.Parallel()
	state := []float64{1, 2}
	policy := [][]float64{{3, 4}, {5, 6}}
	m, err := Build(state, policy)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	state[0], policy[1][1] = 100, 100
	if m.At(0, 0) != 1 || m.At(1, 2) != 6 {
		t.Error("grid must not share memory with its inputs")
	}
}

func TestBuild_SinglePoint(t *testing.T) {
	t.Parallel()
	m, err := Build([]float64{7}, [][]float64{{8}, {9}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := Rows(m); len(got) != 1 || got[0][0] != 7 || got[0][1] != 8 || got[0][2] != 9 {
		t.Errorf("Rows() = %v", got)
	}
}

func TestAugment_ConvertsShapePanic(t *testing.T) {
	t.Parallel()
	var dst mat.Dense
	err := augment(&dst, mat.NewDense(3, 1, nil), mat.NewDense(2, 2, nil))
	if !errors.Is(err, solver.ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}

// TestBuild_PreservesOrder_PropertyBased checks that for any N the output
// grid is N×3 and every column reproduces its source sequence in order.
func TestBuild_PreservesOrder_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("columns equal K, s[0], s[1] in order", prop.ForAll(
		func(k []float64, seed float64) bool {
			n := len(k)
			s0 := make([]float64, n)
			s1 := make([]float64, n)
			for i := range k {
				s0[i] = seed + float64(i)
				s1[i] = seed - float64(i)
			}
			m, err := Build(k, [][]float64{s0, s1})
			if err != nil {
				return false
			}
			r, c := m.Dims()
			if r != n || c != Width {
				return false
			}
			for i := 0; i < n; i++ {
				if m.At(i, 0) != k[i] || m.At(i, 1) != s0[i] || m.At(i, 2) != s1[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-1e6, 1e6)).SuchThat(func(v []float64) bool { return len(v) > 0 }),
		gen.Float64Range(-100, 100),
	))

	properties.Property("mismatched policy length always fails", prop.ForAll(
		func(n, m int) bool {
			if n == m {
				m++
			}
			_, err := Build(make([]float64, n), [][]float64{make([]float64, m), make([]float64, m)})
			return errors.Is(err, solver.ErrShapeMismatch)
		},
		gen.IntRange(1, 64),
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}
