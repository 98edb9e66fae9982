package orchestration

import (
	"github.com/agbru/capplan/internal/config"
	"github.com/agbru/capplan/internal/model"
)

// ResolveModels expands a -model selection into the identifiers to run.
// "all" selects every registered model in sorted order; anything else is a
// single identifier whose validity is checked when it is driven.
func ResolveModels(selection string, registry *model.Registry) []model.ID {
	if selection == config.AllModels {
		if registry == nil {
			return nil
		}
		return registry.Models()
	}
	return []model.ID{model.ID(selection)}
}
