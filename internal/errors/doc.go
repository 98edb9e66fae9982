// Package apperrors defines the process exit codes and the typed errors that
// map onto them: configuration problems, unknown models, grid shape
// mismatches, timeouts and solver failures qualified by model.
//
// Wrapping types implement Unwrap so errors.Is and errors.As see through
// them; ExitCodeFor relies on that to classify wrapped causes.
package apperrors
