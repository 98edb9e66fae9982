// Package format provides formatting helpers shared by the CLI layer:
// durations, ETAs, progress bars and grid values.
package format
