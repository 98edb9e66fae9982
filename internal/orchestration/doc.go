// Package orchestration drives model solves: it locates a model's resources,
// resolves its iteration routine, loads parameters, runs the routine,
// validates the result and reshapes it into the output grid. It also runs
// several models concurrently and aggregates their outcomes, decoupled from
// presentation via the ProgressReporter and ResultPresenter interfaces.
package orchestration
