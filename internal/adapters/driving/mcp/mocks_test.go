package mcp

import (
	"context"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results  []domain.RankedFragment
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.RankedFragment, error) {
	m.lastOpts = opts
	return m.results, m.err
}

// mockRetriever is a mock implementation of driving.Retriever.
type mockRetriever struct {
	results     []domain.RankedFragment
	err         error
	lastQueries []string
	lastExclude []string
}

func (m *mockRetriever) Retrieve(
	_ context.Context, queries, excludeURLs []string, _ int,
) ([]domain.RankedFragment, error) {
	m.lastQueries = queries
	m.lastExclude = excludeURLs
	return m.results, m.err
}

func (m *mockRetriever) UsageAndReset() domain.Usage {
	return domain.Usage{"HybridRM": len(m.lastQueries)}
}

// mockCompanyService is a mock implementation of driving.CompanyService.
type mockCompanyService struct {
	names         []string
	err           error
	lastThreshold float64
}

func (m *mockCompanyService) List(_ context.Context) ([]string, error) {
	return m.names, m.err
}

func (m *mockCompanyService) Resolve(mention string, threshold float64) (string, bool) {
	m.lastThreshold = threshold
	for _, n := range m.names {
		if n == mention {
			return n, true
		}
	}
	return "", false
}

func (m *mockCompanyService) Refresh(_ context.Context) (int, error) {
	return len(m.names), m.err
}

// mockReportService is a mock implementation of driving.ReportService.
type mockReportService struct {
	fragments  []domain.Fragment
	err        error
	lastReport int64
	lastSeq    int
}

func (m *mockReportService) Context(_ context.Context, reportID int64, seq, _ int) ([]domain.Fragment, error) {
	m.lastReport = reportID
	m.lastSeq = seq
	return m.fragments, m.err
}

func (m *mockReportService) Fragments(_ context.Context, _ int64) ([]domain.Fragment, error) {
	return m.fragments, m.err
}
