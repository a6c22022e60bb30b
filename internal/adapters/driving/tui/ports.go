// Package tui provides an interactive terminal interface for searching
// disclosure reports. It is a driving adapter over the core services.
package tui

import (
	"errors"

	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
)

// ErrMissingSearchService is returned by NewApp without a search port.
var ErrMissingSearchService = errors.New("tui: search service is required")

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Search is required.
	Search driving.SearchService

	// Companies enables the company browser. Optional.
	Companies driving.CompanyService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
