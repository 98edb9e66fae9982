package planner

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/agbru/capplan/internal/solver"
)

// testParams returns a coarse calibration that converges quickly.
func testParams() solver.Params {
	return solver.DefaultParams().Merge(solver.Params{
		GridSize:      41,
		SavingsPoints: 91,
		Tolerance:     1e-4,
	})
}

func TestCapitalPlanner_Converges(t *testing.T) {
	t.Parallel()
	p := testParams()
	res, err := New("test", p).Solve(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !res.Converged || res.Distance >= p.Tolerance {
		t.Errorf("expected convergence, got converged=%v distance=%g", res.Converged, res.Distance)
	}
	if err := res.Validate(); err != nil {
		t.Fatalf("result failed validation: %v", err)
	}
	if res.Len() != p.GridSize {
		t.Errorf("N = %d, want %d", res.Len(), p.GridSize)
	}

	kss := p.SteadyStateCapital()
	if math.Abs(res.StateGrid[0]-p.GridLow*kss) > 1e-9 || math.Abs(res.StateGrid[p.GridSize-1]-p.GridHigh*kss) > 1e-9 {
		t.Errorf("grid spans [%g, %g], want [%g, %g]",
			res.StateGrid[0], res.StateGrid[p.GridSize-1], p.GridLow*kss, p.GridHigh*kss)
	}
	for i := 1; i < len(res.StateGrid); i++ {
		if res.StateGrid[i] <= res.StateGrid[i-1] {
			t.Fatalf("state grid not increasing at %d", i)
		}
	}

	upper := SavingsWidening * p.MaxSavings
	for z, row := range res.PolicyGrid {
		for i, s := range row {
			if s <= 0 || s > upper {
				t.Errorf("policy[%d][%d] = %g outside (0, %g]", z, i, s, upper)
			}
		}
	}
}

func TestCapitalPlanner_DeterministicSteadyState(t *testing.T) {
	t.Parallel()
	p := testParams()
	p.ShockValues = []float64{1, 1}
	p.ShockTransition = [][]float64{{1, 0}, {0, 1}}

	res, err := New("deterministic", p).Solve(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	for i := range res.StateGrid {
		if res.PolicyGrid[0][i] != res.PolicyGrid[1][i] {
			t.Fatalf("identical shock states must share a policy, row differ at %d", i)
		}
	}

	// The middle grid point is k_ss; the rate there replaces depreciation.
	mid := p.GridSize / 2
	kss := p.SteadyStateCapital()
	inv := p.Delta * kss
	want := p.Phi / 2 * inv * inv / math.Pow(kss, p.Alpha)
	if got := res.PolicyGrid[0][mid]; math.Abs(got-want) > 0.03 {
		t.Errorf("steady-state savings rate = %g, want about %g", got, want)
	}
}

func TestCapitalPlanner_HighShockInvestsMoreAtSteadyState(t *testing.T) {
	t.Parallel()
	for _, v := range Variants() {
		t.Run(v.Model, func(t *testing.T) {
			t.Parallel()
			p := v.Solver.Defaults().Merge(solver.Params{GridSize: 41, SavingsPoints: 91, Tolerance: 1e-4})
			res, err := v.Solver.Solve(context.Background(), p, nil)
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}

			mid := p.GridSize / 2
			k := res.StateGrid[mid]
			invest := func(z int) float64 {
				y := p.ShockValues[z] * math.Pow(k, p.Alpha)
				return math.Sqrt(2 / p.Phi * res.PolicyGrid[z][mid] * y)
			}
			low, high := invest(0), invest(1)
			if high < low {
				t.Errorf("investment at k=%g: high shock %g < low shock %g", k, high, low)
			}
		})
	}
}

func TestCapitalPlanner_NotConverged(t *testing.T) {
	t.Parallel()
	p := testParams()
	p.MaxIterations = 3

	res, err := New("short", p).Solve(context.Background(), p, nil)
	if !errors.Is(err, solver.ErrNotConverged) {
		t.Fatalf("err = %v, want ErrNotConverged", err)
	}
	if res == nil || res.Iterations != 3 || res.Converged {
		t.Fatalf("unexpected partial result %+v", res)
	}
}

func TestCapitalPlanner_InvalidParams(t *testing.T) {
	t.Parallel()
	p := testParams()
	p.Beta = 1.2
	if _, err := New("bad", p).Solve(context.Background(), p, nil); !errors.Is(err, solver.ErrInvalidParams) {
		t.Fatalf("err = %v, want ErrInvalidParams", err)
	}
}

func TestCapitalPlanner_Cancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := testParams()
	if _, err := New("canceled", p).Solve(ctx, p, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCapitalPlanner_ReportsProgress(t *testing.T) {
	t.Parallel()
	var (
		mu      sync.Mutex
		updates []float64
	)
	p := testParams()
	_, err := New("progress", p).Solve(context.Background(), p, func(v float64) {
		mu.Lock()
		defer mu.Unlock()
		updates = append(updates, v)
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(updates) == 0 || updates[len(updates)-1] != 1.0 {
		t.Fatalf("expected final progress 1.0, got %v", updates)
	}
	for i := 1; i < len(updates); i++ {
		if updates[i] < updates[i-1] {
			t.Errorf("progress went backwards: %v", updates)
			break
		}
	}
}

func TestVariants(t *testing.T) {
	t.Parallel()
	seen := map[string]bool{}
	for _, v := range Variants() {
		if seen[v.Model] {
			t.Errorf("duplicate variant %q", v.Model)
		}
		seen[v.Model] = true
		if err := v.Solver.Defaults().Validate(); err != nil {
			t.Errorf("%s defaults invalid: %v", v.Model, err)
		}
	}
	if !seen["capital_planner_1hh"] {
		t.Error("missing capital_planner_1hh variant")
	}
}

func TestDefaultsAreCopies(t *testing.T) {
	t.Parallel()
	pl := New("copy", solver.DefaultParams())
	d := pl.Defaults()
	d.ShockValues[0] = 42
	if pl.Defaults().ShockValues[0] == 42 {
		t.Error("Defaults must return an independent copy")
	}
}
