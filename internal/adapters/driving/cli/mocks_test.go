package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

type mockSearchService struct {
	results []domain.RankedFragment
	err     error
	query   string
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.RankedFragment, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

type mockRetriever struct {
	results  []domain.RankedFragment
	err      error
	queries  []string
	excludes []string
	k        int
	usage    domain.Usage
}

func (m *mockRetriever) Retrieve(_ context.Context, queries, excludeURLs []string, k int) ([]domain.RankedFragment, error) {
	m.queries = queries
	m.excludes = excludeURLs
	m.k = k
	return m.results, m.err
}

func (m *mockRetriever) UsageAndReset() domain.Usage {
	u := m.usage
	m.usage = nil
	return u
}

type mockCompanyService struct {
	names      []string
	listErr    error
	synonyms   map[string]string
	threshold  float64
	refreshErr error
}

func (m *mockCompanyService) List(context.Context) ([]string, error) {
	return m.names, m.listErr
}

func (m *mockCompanyService) Resolve(mention string, threshold float64) (string, bool) {
	m.threshold = threshold
	name, ok := m.synonyms[mention]
	return name, ok
}

func (m *mockCompanyService) Refresh(context.Context) (int, error) {
	return len(m.names), m.refreshErr
}

type mockReportService struct {
	fragments []domain.Fragment
	err       error
	reportID  int64
	seq       int
	window    int
	all       bool
}

func (m *mockReportService) Context(_ context.Context, reportID int64, seq, window int) ([]domain.Fragment, error) {
	m.reportID, m.seq, m.window = reportID, seq, window
	return m.fragments, m.err
}

func (m *mockReportService) Fragments(_ context.Context, reportID int64) ([]domain.Fragment, error) {
	m.reportID, m.all = reportID, true
	return m.fragments, m.err
}

type mockIngestService struct {
	records []domain.IngestRecord
	failed  map[string]string
	err     error
}

func (m *mockIngestService) Ingest(_ context.Context, records []domain.IngestRecord) (*domain.IngestResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.records = records
	res := &domain.IngestResult{BatchID: "batch-1", Failed: map[string]string{}}
	for _, r := range records {
		if reason, ok := m.failed[r.Report.ReceiptNo]; ok {
			res.Failed[r.Report.ReceiptNo] = reason
			continue
		}
		res.Reports++
		res.Fragments += len(r.Fragments)
	}
	return res, nil
}

type mockSettingsService struct {
	settings    domain.Settings
	validateErr error

	provider domain.AIProvider
	model    string
	apiKey   string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultSettings()}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.Settings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = p, model, apiKey
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetAnalyzerProvider(p domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = p, model, apiKey
	m.settings.Analyzer = domain.AnalyzerSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

type mockValidator struct {
	embeddingErr error
	analyzerErr  error
	rerankerErr  error
}

func (m *mockValidator) ValidateEmbedding(*domain.EmbeddingSettings) error { return m.embeddingErr }

func (m *mockValidator) ValidateAnalyzer(*domain.AnalyzerSettings) error { return m.analyzerErr }

func (m *mockValidator) ValidateReranker(*domain.RerankerSettings) error { return m.rerankerErr }

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	search    *mockSearchService
	retriever *mockRetriever
	companies *mockCompanyService
	reports   *mockReportService
	ingest    *mockIngestService
	settings  *mockSettingsService
	validator *mockValidator
}

// setupTestServices installs fresh mocks and returns a cleanup that
// removes them and resets every flag.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		search: &mockSearchService{results: []domain.RankedFragment{{
			Title:   "II. 사업의 내용",
			URL:     "dart_report_1_chunk_4",
			Content: "[[출처: 삼성전자 사업보고서 (Report ID: 1)]]\n\nDRAM 매출이 증가했다.",
			Score:   0.873,
			Source:  domain.ProvenanceInternal,
		}}},
		retriever: &mockRetriever{},
		companies: &mockCompanyService{},
		reports:   &mockReportService{},
		ingest:    &mockIngestService{},
		settings:  newMockSettingsService(),
		validator: &mockValidator{},
	}
	SetInitializer(nil)
	SetServices(&Services{
		Search:    ts.search,
		Retriever: ts.retriever,
		Companies: ts.companies,
		Reports:   ts.reports,
		Ingest:    ts.ingest,
		Settings:  ts.settings,
		Validator: ts.validator,
	})
	return ts, func() {
		SetServices(&Services{})
		SetInitializer(nil)
		resetFlags()
	}
}

func resetFlags() {
	verbose, configPath = false, ""
	searchLimit, searchJSON, searchNoRerank, searchNoTags = domain.DefaultTopK, false, false, false
	searchWindow, searchCrossEncoder = 0, false
	retrieveK, retrieveExclude, retrieveJSON = 0, nil, false
	companiesJSON, resolveThreshold = false, 0
	contextWindow, contextJSON, contextAll = 2, false, false
	tuiWindow, tuiCrossEncoder = 0, false
}

// execute runs the root command with args and returns everything printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
