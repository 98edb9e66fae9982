package planner

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/agbru/capplan/internal/solver"
)

// SavingsWidening scales MaxSavings into the upper bound of the savings-rate
// choice grid.
const SavingsWidening = 1.5

// progressEvery is the number of sweeps between progress reports.
const progressEvery = 10

// CapitalPlanner solves the single-household economy by value-function
// iteration.
type CapitalPlanner struct {
	label    string
	defaults solver.Params
}

// New returns a planner with the given display name and default parameters.
func New(label string, defaults solver.Params) *CapitalPlanner {
	return &CapitalPlanner{label: label, defaults: defaults}
}

// Name returns the display name.
func (p *CapitalPlanner) Name() string { return p.label }

// Defaults returns a copy of the default parameters.
func (p *CapitalPlanner) Defaults() solver.Params { return p.defaults.Merge(solver.Params{}) }

// Solve runs value-function iteration until the sup-norm change of the value
// function falls below params.Tolerance. It returns solver.ErrNotConverged,
// together with the partial result, when params.MaxIterations is exhausted.
func (p *CapitalPlanner) Solve(ctx context.Context, params solver.Params, progress solver.ProgressCallback) (*solver.Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = func(float64) {}
	}

	e := newEconomy(params)
	nz := len(params.ShockValues)
	v := make([][]float64, nz)
	next := make([][]float64, nz)
	policy := make([][]float64, nz)
	for z := range v {
		v[z] = e.initialValue(z)
		next[z] = make([]float64, e.n)
		policy[z] = make([]float64, e.n)
	}

	res := &solver.Result{StateGrid: e.capital}
	for iter := 1; iter <= params.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cont, err := e.continuation(v)
		if err != nil {
			return nil, err
		}
		if err := e.sweep(ctx, cont, next, policy); err != nil {
			return nil, err
		}

		dist := 0.0
		for z := range v {
			dist = math.Max(dist, floats.Distance(next[z], v[z], math.Inf(1)))
		}
		v, next = next, v

		res.Iterations = iter
		res.Distance = dist
		if dist < params.Tolerance {
			res.Converged = true
			break
		}
		if iter%progressEvery == 0 {
			progress(float64(iter) / float64(params.MaxIterations))
		}
	}

	res.PolicyGrid = policy
	if !res.Converged {
		return res, fmt.Errorf("%w after %d iterations (distance %g, tolerance %g)",
			solver.ErrNotConverged, res.Iterations, res.Distance, params.Tolerance)
	}
	progress(1.0)
	return res, nil
}

// economy holds the grids and constants shared by every sweep.
type economy struct {
	p       solver.Params
	n       int
	capital []float64
	savings []float64
}

func newEconomy(p solver.Params) *economy {
	kss := p.SteadyStateCapital()
	capital := make([]float64, p.GridSize)
	floats.Span(capital, p.GridLow*kss, p.GridHigh*kss)
	savings := make([]float64, p.SavingsPoints)
	floats.Span(savings, 0, SavingsWidening*p.MaxSavings)
	return &economy{p: p, n: p.GridSize, capital: capital, savings: savings}
}

func (e *economy) output(k, z float64) float64 {
	return z * math.Pow(k, e.p.Alpha)
}

// nextCapital applies the law of motion for savings rate s.
func (e *economy) nextCapital(k, y, s float64) float64 {
	return (1-e.p.Delta)*k + math.Sqrt(2/e.p.Phi*s*y)
}

// initialValue is the value of consuming all output forever at each grid point.
func (e *economy) initialValue(z int) []float64 {
	v := make([]float64, e.n)
	for i, k := range e.capital {
		v[i] = math.Log(e.output(k, e.p.ShockValues[z])) / (1 - e.p.Beta)
	}
	return v
}

// continuation builds, for each current shock state, an interpolant of the
// expected next-period value over the capital grid.
func (e *economy) continuation(v [][]float64) ([]*interp.PiecewiseLinear, error) {
	cont := make([]*interp.PiecewiseLinear, len(v))
	for z, row := range e.p.ShockTransition {
		ev := make([]float64, e.n)
		for zn, prob := range row {
			floats.AddScaled(ev, prob, v[zn])
		}
		pl := &interp.PiecewiseLinear{}
		if err := pl.Fit(e.capital, ev); err != nil {
			return nil, fmt.Errorf("fit continuation value: %w", err)
		}
		cont[z] = pl
	}
	return cont, nil
}

// sweep performs one Bellman update, splitting grid points across workers.
func (e *economy) sweep(ctx context.Context, cont []*interp.PiecewiseLinear, next, policy [][]float64) error {
	g, _ := errgroup.WithContext(ctx)
	workers := runtime.GOMAXPROCS(0)
	chunk := (e.n + workers - 1) / workers
	for lo := 0; lo < e.n; lo += chunk {
		hi := min(lo+chunk, e.n)
		g.Go(func() error {
			for z := range next {
				for i := lo; i < hi; i++ {
					next[z][i], policy[z][i] = e.bellman(e.capital[i], z, cont[z])
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// bellman maximizes the right-hand side of the Bellman equation at (k, z) by
// grid search over savings rates.
func (e *economy) bellman(k float64, z int, cont *interp.PiecewiseLinear) (value, rate float64) {
	y := e.output(k, e.p.ShockValues[z])
	lo, hi := e.capital[0], e.capital[e.n-1]
	value = math.Inf(-1)
	for _, s := range e.savings {
		c := (1 - s) * y
		if c <= 0 {
			continue
		}
		kn := math.Min(math.Max(e.nextCapital(k, y, s), lo), hi)
		candidate := math.Log(c) + e.p.Beta*cont.Predict(kn)
		if candidate > value {
			value, rate = candidate, s
		}
	}
	return value, rate
}
