// Package messages defines the tea.Msg types passed between TUI views.
package messages

import (
	"time"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// ViewType identifies a top-level view.
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewSearch
	ViewCompanies
)

// String returns the view name.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewCompanies:
		return "companies"
	default:
		return "unknown"
	}
}

// ViewChanged asks the app to switch views.
type ViewChanged struct {
	View ViewType
}

// SearchCompleted carries the outcome of a search.
type SearchCompleted struct {
	Query   string
	Results []domain.RankedFragment
	Elapsed time.Duration
	Err     error
}

// CompaniesLoaded carries the company roster.
type CompaniesLoaded struct {
	Names []string
	Err   error
}

// CompanyResolved carries the outcome of resolving one mention.
type CompanyResolved struct {
	Mention string
	Name    string
	Matched bool
}
