package model

import (
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/agbru/capplan/internal/errors"
	"github.com/agbru/capplan/internal/solver"
)

// Registry maps routine names to solvers.
type Registry struct {
	solvers map[string]solver.Solver
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		solvers: make(map[string]solver.Solver),
	}
}

// Register adds a solver under a routine name. Registering the same name
// twice is an error.
func (r *Registry) Register(routine string, s solver.Solver) error {
	if _, ok := IDFromRoutine(routine); !ok {
		return fmt.Errorf("routine name %q must start with %q", routine, RoutinePrefix)
	}
	if s == nil {
		return fmt.Errorf("routine %q: nil solver", routine)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.solvers[routine]; exists {
		return fmt.Errorf("routine %q already registered", routine)
	}
	r.solvers[routine] = s
	return nil
}

// MustRegister is Register for static registration at startup; it panics on error.
func (r *Registry) MustRegister(routine string, s solver.Solver) {
	if err := r.Register(routine, s); err != nil {
		panic(err)
	}
}

// Lookup returns the solver registered under routine, or an
// *apperrors.UnknownModelError.
func (r *Registry) Lookup(routine string) (solver.Solver, error) {
	r.mu.RLock()
	s, ok := r.solvers[routine]
	r.mu.RUnlock()

	if !ok {
		return nil, &apperrors.UnknownModelError{Routine: routine, Known: r.List()}
	}
	return s, nil
}

// List returns the registered routine names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.solvers))
	for name := range r.solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Models returns the identifiers of every registered model, sorted.
func (r *Registry) Models() []ID {
	routines := r.List()
	ids := make([]ID, 0, len(routines))
	for _, routine := range routines {
		if id, ok := IDFromRoutine(routine); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
