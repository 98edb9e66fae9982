package model

import (
	"path/filepath"
	"strings"

	apperrors "github.com/agbru/capplan/internal/errors"
)

// RoutinePrefix is prepended to a model identifier to form its routine name.
const RoutinePrefix = "iter_"

// DefaultModel is the model run when none is selected.
const DefaultModel ID = "capital_planner_1hh"

// ID names a model variant.
type ID string

// String returns the identifier as a string.
func (id ID) String() string { return string(id) }

// Validate rejects identifiers that cannot be used as a single path element.
func (id ID) Validate() error {
	s := string(id)
	switch {
	case s == "":
		return apperrors.ValidationError{Field: "model", Message: "must not be empty"}
	case s == "." || s == "..":
		return apperrors.ValidationError{Field: "model", Message: "must not be a relative path element"}
	case strings.ContainsAny(s, `/\`):
		return apperrors.ValidationError{Field: "model", Message: "must not contain path separators"}
	case strings.TrimSpace(s) != s:
		return apperrors.ValidationError{Field: "model", Message: "must not have surrounding whitespace"}
	}
	return nil
}

// RoutineName returns the name of the iteration routine for id.
func RoutineName(id ID) string { return RoutinePrefix + string(id) }

// IDFromRoutine strips RoutinePrefix from a routine name. The second result
// is false when the name does not carry the prefix.
func IDFromRoutine(routine string) (ID, bool) {
	rest, ok := strings.CutPrefix(routine, RoutinePrefix)
	if !ok || rest == "" {
		return "", false
	}
	return ID(rest), true
}

// Location describes where a model's resources live and which routine
// solves it.
type Location struct {
	ID      ID
	Path    string
	Routine string
}

// Locate derives the resource path and routine name for id.
func Locate(baseDir string, id ID) (Location, error) {
	if err := id.Validate(); err != nil {
		return Location{}, err
	}
	return Location{
		ID:      id,
		Path:    filepath.Join(baseDir, string(id)),
		Routine: RoutineName(id),
	}, nil
}
