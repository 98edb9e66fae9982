// Package planner implements the built-in iteration routines for the
// single-household capital-planning economy.
//
// Each period the household produces y = z·k^α, saves a fraction s of
// output and consumes the rest. Savings buy new capital through a convex
// technology, i = sqrt(2/φ · s·y), and capital depreciates at rate δ:
//
//	k' = (1-δ)k + i
//
// The productivity shock z follows a two-state Markov chain. The routine
// solves the Bellman equation
//
//	V(k, z) = max_s log((1-s)y) + β Σ_z' P(z, z') V(k', z')
//
// by value-function iteration on a capital grid centred on the
// deterministic steady state, and returns the optimal savings rate for each
// shock state as the two policy rows.
package planner
