// Package solver defines the contract between the driver and the iteration
// routines that solve a capital-planning model: the Solver interface, the
// parameters handed to it, and the typed Result it returns.
//
// A Result is validated at the boundary, immediately after the routine
// returns, so that inconsistent state and policy grids never reach the
// reshaping step.
package solver
