// Package mcp exposes company disclosure retrieval over the Model Context
// Protocol so that generation agents can call it as a tool.
package mcp

import (
	"errors"

	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
)

// ErrMissingSearchService is returned by NewServer without a search port.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Search runs single-source retrieval. Required.
	Search driving.SearchService

	// Retriever answers hybrid multi-query retrieval. Optional; the
	// hybrid_search tool is only registered when set.
	Retriever driving.Retriever

	// Companies serves the roster and entity resolution. Optional.
	Companies driving.CompanyService

	// Reports serves fragment context around a hit. Optional.
	Reports driving.ReportService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
