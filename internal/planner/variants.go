package planner

import "github.com/agbru/capplan/internal/solver"

// Variant pairs a model identifier with its routine.
type Variant struct {
	Model  string
	Solver solver.Solver
}

// Variants returns the built-in model variants.
func Variants() []Variant {
	idtc := solver.DefaultParams()
	idtc.ShockValues = []float64{0.9, 1.1}
	idtc.ShockTransition = [][]float64{{0.9, 0.1}, {0.1, 0.9}}

	return []Variant{
		{Model: "capital_planner_1hh", Solver: New("Capital planner (aggregate shock)", solver.DefaultParams())},
		{Model: "capital_planner_1hh_idtc", Solver: New("Capital planner (idiosyncratic shock)", idtc)},
	}
}
