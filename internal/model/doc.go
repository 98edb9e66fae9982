// Package model maps model identifiers to the resources and iteration
// routines that belong to them.
//
// An identifier such as "capital_planner_1hh" yields two derived names by
// the same substitution: the resource directory <base>/capital_planner_1hh
// and the routine name iter_capital_planner_1hh. Routines are resolved
// through a Registry populated at startup; nothing is looked up by
// evaluating names at run time.
package model
