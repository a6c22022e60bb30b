package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
)

// Ensure FragmentStore implements the interfaces.
var (
	_ driven.FragmentStore  = (*FragmentStore)(nil)
	_ driven.FragmentWriter = (*FragmentStore)(nil)
)

// FragmentStore is an in-memory implementation of driven.FragmentStore
// and driven.FragmentWriter. Similarity is brute-force cosine distance.
type FragmentStore struct {
	mu        sync.RWMutex
	companies map[int64]domain.Company
	reports   map[int64]domain.AnalysisReport
	fragments map[int64][]domain.Fragment // by report, sequence order
	nextID    int64
}

// NewFragmentStore creates a new in-memory fragment store.
func NewFragmentStore() *FragmentStore {
	return &FragmentStore{
		companies: make(map[int64]domain.Company),
		reports:   make(map[int64]domain.AnalysisReport),
		fragments: make(map[int64][]domain.Fragment),
	}
}

func (s *FragmentStore) id() int64 {
	s.nextID++
	return s.nextID
}

// SaveCompany upserts a company by name.
func (s *FragmentStore) SaveCompany(_ context.Context, company *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.companies {
		if c.Name == company.Name {
			company.ID = id
			s.companies[id] = *company
			return nil
		}
	}
	company.ID = s.id()
	s.companies[company.ID] = *company
	return nil
}

// SaveReport upserts a report by receipt number.
func (s *FragmentStore) SaveReport(_ context.Context, report *domain.AnalysisReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.reports {
		if r.ReceiptNo == report.ReceiptNo {
			report.ID = id
			s.reports[id] = *report
			return nil
		}
	}
	report.ID = s.id()
	s.reports[report.ID] = *report
	return nil
}

// SaveFragments replaces the fragments of a report and sets their
// ReportID and ID. Nothing changes if the report is unknown or any
// fragment has an invalid chunk type.
func (s *FragmentStore) SaveFragments(_ context.Context, reportID int64, fragments []domain.Fragment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	params := map[string]any{"report_id": reportID, "count": len(fragments)}
	if _, ok := s.reports[reportID]; !ok {
		return domain.NewRepositoryError("save_fragments", params, domain.ErrNotFound)
	}
	for _, f := range fragments {
		if !f.ChunkType.IsValid() {
			return domain.NewRepositoryError("save_fragments", params,
				domain.NewValidationError("chunk_type", fmt.Sprintf("unknown type %q", f.ChunkType)))
		}
	}

	list := make([]domain.Fragment, len(fragments))
	for i := range fragments {
		fragments[i].ReportID = reportID
		fragments[i].ID = s.id()
		list[i] = fragments[i]
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].SequenceOrder < list[j].SequenceOrder
	})
	s.fragments[reportID] = list
	return nil
}

// companyName returns the company label of a report, empty when unlinked.
func (s *FragmentStore) companyName(reportID int64) string {
	r, ok := s.reports[reportID]
	if !ok || r.CompanyID == nil {
		return ""
	}
	return s.companies[*r.CompanyID].Name
}

// SearchByVector returns fragments nearest to vec by cosine distance.
func (s *FragmentStore) SearchByVector(
	_ context.Context, vec []float32, q driven.VectorQuery,
) ([]driven.VectorMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var allowed map[string]struct{}
	if q.Companies != nil {
		allowed = make(map[string]struct{}, len(q.Companies))
		for _, c := range q.Companies {
			allowed[c] = struct{}{}
		}
	}

	var matches []driven.VectorMatch
	for rid, list := range s.fragments {
		company := s.companyName(rid)
		if allowed != nil {
			if _, ok := allowed[company]; !ok {
				continue
			}
		}
		for _, f := range list {
			if !f.ChunkType.IsRetrievable() || len(f.Embedding) == 0 {
				continue
			}
			if q.ChunkType != "" && f.ChunkType != q.ChunkType {
				continue
			}
			matches = append(matches, driven.VectorMatch{
				Fragment:    f,
				CompanyName: company,
				Distance:    domain.CosineDistance(vec, f.Embedding),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Fragment.ID < matches[j].Fragment.ID
	})
	if q.TopK > 0 && len(matches) > q.TopK {
		matches = matches[:q.TopK]
	}
	return matches, nil
}

// NearestNextFragment returns the first retrievable fragment after seq.
func (s *FragmentStore) NearestNextFragment(_ context.Context, reportID int64, seq int) (*domain.Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.fragments[reportID] {
		if f.SequenceOrder > seq && f.ChunkType.IsRetrievable() {
			return &f, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ContextWindow returns retrievable fragments around center, excluding it.
func (s *FragmentStore) ContextWindow(
	_ context.Context, reportID int64, center, window int,
) ([]domain.Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Fragment
	for _, f := range s.fragments[reportID] {
		if f.SequenceOrder == center || !f.ChunkType.IsRetrievable() {
			continue
		}
		if f.SequenceOrder >= center-window && f.SequenceOrder <= center+window {
			out = append(out, f)
		}
	}
	return out, nil
}

// FragmentsByReport returns all fragments of a report in sequence order.
func (s *FragmentStore) FragmentsByReport(_ context.Context, reportID int64) ([]domain.Fragment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.fragments[reportID]
	out := make([]domain.Fragment, len(list))
	copy(out, list)
	return out, nil
}

// CompanyNames returns the distinct company names, sorted.
func (s *FragmentStore) CompanyNames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{}, len(s.companies))
	names := make([]string, 0, len(s.companies))
	for _, c := range s.companies {
		if _, dup := seen[c.Name]; dup || c.Name == "" {
			continue
		}
		seen[c.Name] = struct{}{}
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Ping always succeeds.
func (s *FragmentStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *FragmentStore) Close() error {
	return nil
}
