package model

import "github.com/agbru/capplan/internal/planner"

// NewDefaultRegistry returns a registry holding the built-in planner variants.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, v := range planner.Variants() {
		r.MustRegister(RoutineName(ID(v.Model)), v.Solver)
	}
	return r
}
