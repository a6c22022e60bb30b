package services

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockFragmentStore implements driven.FragmentStore over in-memory fixtures.
type mockFragmentStore struct {
	matches   []driven.VectorMatch
	fragments []domain.Fragment
	companies []string

	// ignoreFilter returns matches regardless of the company filter,
	// simulating loosely labelled rows.
	ignoreFilter bool

	searchErr error
	nextErr   error
	windowErr error
	namesErr  error

	mu         sync.Mutex
	lastQuery  driven.VectorQuery
	searchCall int
	nextCalls  int
}

func (m *mockFragmentStore) SearchByVector(
	_ context.Context, _ []float32, q driven.VectorQuery,
) ([]driven.VectorMatch, error) {
	m.mu.Lock()
	m.lastQuery = q
	m.searchCall++
	m.mu.Unlock()

	if m.searchErr != nil {
		return nil, m.searchErr
	}

	var allowed map[string]bool
	if q.Companies != nil && !m.ignoreFilter {
		allowed = make(map[string]bool, len(q.Companies))
		for _, c := range q.Companies {
			allowed[c] = true
		}
	}

	out := make([]driven.VectorMatch, 0, len(m.matches))
	for _, match := range m.matches {
		if !match.Fragment.ChunkType.IsRetrievable() {
			continue
		}
		if q.ChunkType != "" && match.Fragment.ChunkType != q.ChunkType {
			continue
		}
		if allowed != nil && !allowed[match.CompanyName] {
			continue
		}
		out = append(out, match)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	if q.TopK > 0 && len(out) > q.TopK {
		out = out[:q.TopK]
	}
	return out, nil
}

func (m *mockFragmentStore) NearestNextFragment(
	_ context.Context, reportID int64, seq int,
) (*domain.Fragment, error) {
	m.mu.Lock()
	m.nextCalls++
	m.mu.Unlock()

	if m.nextErr != nil {
		return nil, m.nextErr
	}

	var best *domain.Fragment
	for i := range m.fragments {
		f := &m.fragments[i]
		if f.ReportID != reportID || f.SequenceOrder <= seq || !f.ChunkType.IsRetrievable() {
			continue
		}
		if best == nil || f.SequenceOrder < best.SequenceOrder {
			best = f
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	return best, nil
}

func (m *mockFragmentStore) ContextWindow(
	_ context.Context, reportID int64, center, window int,
) ([]domain.Fragment, error) {
	if m.windowErr != nil {
		return nil, m.windowErr
	}

	var out []domain.Fragment
	for _, f := range m.fragments {
		if f.ReportID != reportID || f.SequenceOrder == center || !f.ChunkType.IsRetrievable() {
			continue
		}
		if f.SequenceOrder < center-window || f.SequenceOrder > center+window {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SequenceOrder < out[j].SequenceOrder
	})
	return out, nil
}

func (m *mockFragmentStore) FragmentsByReport(_ context.Context, reportID int64) ([]domain.Fragment, error) {
	var out []domain.Fragment
	for _, f := range m.fragments {
		if f.ReportID == reportID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFragmentStore) CompanyNames(_ context.Context) ([]string, error) {
	if m.namesErr != nil {
		return nil, m.namesErr
	}
	return m.companies, nil
}

func (m *mockFragmentStore) Ping(_ context.Context) error {
	return nil
}

func (m *mockFragmentStore) Close() error {
	return nil
}

func (m *mockFragmentStore) query() driven.VectorQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuery
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	dims      int
	calls     atomic.Int64
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls.Add(1)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 3
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockAnalyzer implements driven.QueryAnalyzer for testing.
type mockAnalyzer struct {
	analysis *domain.QueryAnalysis
	err      error
}

func (m *mockAnalyzer) Analyze(_ context.Context, _ string) (*domain.QueryAnalysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	// Hand out a copy so Normalize never touches the fixture.
	a := *m.analysis
	a.TargetCompanies = append([]string(nil), m.analysis.TargetCompanies...)
	a.Keywords = append([]string(nil), m.analysis.Keywords...)
	return &a, nil
}

func (m *mockAnalyzer) ModelName() string {
	return "mock-analyzer"
}

func (m *mockAnalyzer) Ping(_ context.Context) error {
	return nil
}

func (m *mockAnalyzer) Close() error {
	return nil
}

// mockReranker implements driven.Reranker for testing.
type mockReranker struct {
	scores []float64
	err    error
	calls  int
	docs   []string
}

func (m *mockReranker) Score(_ context.Context, _ string, documents []string) ([]float64, error) {
	m.calls++
	m.docs = documents
	if m.err != nil {
		return nil, m.err
	}
	return m.scores, nil
}

func (m *mockReranker) ModelName() string {
	return "mock-reranker"
}

func (m *mockReranker) Close() error {
	return nil
}

// mockWebSearch implements driven.WebSearch for testing.
type mockWebSearch struct {
	results map[string][]domain.RankedFragment
	err     error
	closed  bool
	calls   atomic.Int64
	lastK   atomic.Int64
}

func (m *mockWebSearch) Search(
	_ context.Context, query string, k int, excludeURLs []string,
) ([]domain.RankedFragment, error) {
	m.calls.Add(1)
	m.lastK.Store(int64(k))
	if m.err != nil {
		return nil, m.err
	}

	excluded := make(map[string]bool, len(excludeURLs))
	for _, u := range excludeURLs {
		excluded[u] = true
	}

	var out []domain.RankedFragment
	for _, r := range m.results[query] {
		if excluded[r.URL] {
			continue
		}
		out = append(out, r)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func (m *mockWebSearch) UsageAndReset() domain.Usage {
	return domain.Usage{"SerperRM": int(m.calls.Swap(0))}
}

func (m *mockWebSearch) Close() error {
	m.closed = true
	return nil
}

// mockSearcher implements driving.SearchService for testing.
type mockSearcher struct {
	results map[string][]domain.RankedFragment
	errs    map[string]error
	mu      sync.Mutex
	opts    []domain.SearchOptions
}

func (m *mockSearcher) Search(
	_ context.Context, query string, opts domain.SearchOptions,
) ([]domain.RankedFragment, error) {
	m.mu.Lock()
	m.opts = append(m.opts, opts)
	m.mu.Unlock()

	if err := m.errs[query]; err != nil {
		return nil, err
	}
	res := m.results[query]
	if opts.TopK > 0 && len(res) > opts.TopK {
		res = res[:opts.TopK]
	}
	out := make([]domain.RankedFragment, len(res))
	copy(out, res)
	return out, nil
}

// textMatch builds a text VectorMatch fixture.
func textMatch(id, reportID int64, seq int, company, content string, distance float64) driven.VectorMatch {
	return driven.VectorMatch{
		Fragment: domain.Fragment{
			ID:            id,
			ReportID:      reportID,
			ChunkType:     domain.ChunkTypeText,
			SectionPath:   "II. 사업의 내용",
			SequenceOrder: seq,
			RawContent:    content,
		},
		CompanyName: company,
		Distance:    distance,
	}
}

// mockRetriever implements driving.Retriever for testing.
type mockRetriever struct {
	results map[string][]domain.RankedFragment
	err     error
	calls   atomic.Int64
	lastK   atomic.Int64
	closed  bool
}

func (m *mockRetriever) Retrieve(
	_ context.Context, queries []string, _ []string, k int,
) ([]domain.RankedFragment, error) {
	m.calls.Add(int64(len(queries)))
	m.lastK.Store(int64(k))
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.RankedFragment
	for _, q := range queries {
		out = append(out, m.results[q]...)
	}
	return out, nil
}

func (m *mockRetriever) UsageAndReset() domain.Usage {
	return domain.Usage{"PostgresRM": int(m.calls.Swap(0))}
}

func (m *mockRetriever) Close() error {
	m.closed = true
	return nil
}
