package driven

import (
	"context"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// FragmentStore provides read access to the relational fragment schema
// (fragment -> report -> company).
//
// Noise fragments are excluded from every retrieval. Every failure is
// returned as a *domain.RepositoryError carrying the operation and its
// parameters; callers must not treat an error as "no results".
type FragmentStore interface {
	// SearchByVector returns the fragments nearest to vec, nearest first.
	SearchByVector(ctx context.Context, vec []float32, q VectorQuery) ([]VectorMatch, error)

	// NearestNextFragment returns the first fragment after seq in the same
	// report. Returns domain.ErrNotFound when there is none.
	NearestNextFragment(ctx context.Context, reportID int64, seq int) (*domain.Fragment, error)

	// ContextWindow returns fragments with sequence in [center-window, center+window],
	// excluding the center itself, in ascending order.
	ContextWindow(ctx context.Context, reportID int64, center, window int) ([]domain.Fragment, error)

	// FragmentsByReport returns all fragments of a report in sequence order.
	FragmentsByReport(ctx context.Context, reportID int64) ([]domain.Fragment, error)

	// CompanyNames returns the distinct, non-empty company names.
	CompanyNames(ctx context.Context) ([]string, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VectorQuery restricts a similarity search.
type VectorQuery struct {
	// TopK is the maximum number of matches.
	TopK int

	// Companies restricts matches to these company names. Nil means all companies.
	Companies []string

	// ChunkType restricts matches to one fragment type. Empty means any retrievable type.
	ChunkType domain.ChunkType
}

// VectorMatch is one similarity search hit.
type VectorMatch struct {
	// Fragment is the matched fragment.
	Fragment domain.Fragment

	// CompanyName is the owning company, empty for orphaned reports.
	CompanyName string

	// Distance is the cosine distance in [0, 2].
	Distance float64
}

// Similarity returns 1 - Distance.
func (m VectorMatch) Similarity() float64 {
	return 1 - m.Distance
}

// FragmentWriter loads companies, reports and fragments.
// Loading is bulk and idempotent on natural keys.
type FragmentWriter interface {
	// SaveCompany upserts a company by name and sets its ID.
	SaveCompany(ctx context.Context, company *domain.Company) error

	// SaveReport upserts a report by receipt number and sets its ID.
	SaveReport(ctx context.Context, report *domain.AnalysisReport) error

	// SaveFragments replaces every stored fragment of the report with
	// fragments, setting their ReportID and ID. The swap is atomic:
	// nothing changes if any insert fails, and loading the same report
	// twice leaves one copy.
	SaveFragments(ctx context.Context, reportID int64, fragments []domain.Fragment) error
}
