package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
	"github.com/leh60245/enterprise-storm/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// MaxTableGap is the largest sequence gap at which a following table is
// attached to a text hit.
const MaxTableGap = 5

const (
	tableHeader   = "\n\n[관련 표 데이터]\n"
	legendNote    = "[참고: 표에 단위/범례 정보가 포함됨]\n"
	contextHeader = "\n\n[주변 문맥]\n"
)

// SearchService runs the single-source retrieval pipeline: analyze the
// question, resolve company mentions, search text fragments by vector,
// attach trailing tables, rerank by company relevance and tag provenance.
type SearchService struct {
	store    driven.FragmentStore
	embedder driven.EmbeddingService
	analyzer driven.QueryAnalyzer
	resolver *EntityResolver
	reranker driven.Reranker
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithReranker wires a cross-encoder for the optional learned rerank pass.
func WithReranker(r driven.Reranker) SearchOption {
	return func(s *SearchService) {
		s.reranker = r
	}
}

// NewSearchService creates a new search service.
// The analyzer is optional (can be nil); without it every query gets the
// default analysis. A nil resolver starts with an empty roster.
func NewSearchService(
	store driven.FragmentStore,
	embedder driven.EmbeddingService,
	analyzer driven.QueryAnalyzer,
	resolver *EntityResolver,
	opts ...SearchOption,
) *SearchService {
	if resolver == nil {
		resolver = NewEntityResolver(nil, nil)
	}
	s := &SearchService{
		store:    store,
		embedder: embedder,
		analyzer: analyzer,
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolver returns the entity resolver used by the service.
func (s *SearchService) Resolver() *EntityResolver {
	return s.resolver
}

// RefreshCompanies reloads the resolver roster from the store.
func (s *SearchService) RefreshCompanies(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, domain.ErrStoreUnavailable
	}
	names, err := s.store.CompanyNames(ctx)
	if err != nil {
		return 0, fmt.Errorf("load company names: %w", err)
	}
	s.resolver.UpdateCompanyList(names)
	logger.Info("Entity resolver initialised with %d companies", len(names))
	return len(names), nil
}

// Search returns ranked fragments for query.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.RankedFragment, error) {
	trace := uuid.NewString()[:8]
	logger.Section("Search Execution")
	logger.Debug("[%s] Query: %q", trace, query)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError("query", "must not be empty")
	}
	if opts.TopK < 0 {
		return nil, domain.NewValidationError("top_k", "must be positive")
	}
	topK := opts.TopK
	if topK == 0 {
		topK = domain.DefaultTopK
	}

	if s.store == nil {
		return nil, fmt.Errorf("search: %w", domain.ErrStoreUnavailable)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("search: %w", domain.ErrEmbeddingUnavailable)
	}

	// 1. Analyze
	analysis := s.analyze(ctx, query)
	logger.Debug("[%s] Analysis: intent=%s, companies=%v, competitor=%t",
		trace, analysis.Intent, analysis.TargetCompanies, analysis.IsCompetitorQuery)

	// 2. Resolve
	companies := s.resolveCompanies(analysis.TargetCompanies)
	logger.Debug("[%s] Resolved companies: %v", trace, companies)

	// 3. Embed
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// 4. Filter strategy
	vq := driven.VectorQuery{
		TopK:      topK,
		Companies: companies,
		ChunkType: domain.ChunkTypeText,
	}
	if analysis.IsCompetitorQuery {
		logger.Debug("[%s] Competitor query: company filter relaxed", trace)
		vq.Companies = nil
		vq.TopK = topK * 2
	}
	if len(vq.Companies) == 0 {
		vq.Companies = nil
	}

	// 5. Retrieve
	matches, err := s.store.SearchByVector(ctx, vec, vq)
	if err != nil {
		logger.Warn("Vector search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("[%s] Vector search: %d hits (pool %d)", trace, len(matches), vq.TopK)

	if len(matches) == 0 {
		return []domain.RankedFragment{}, nil
	}

	// 6. Expand
	results := make([]domain.RankedFragment, 0, len(matches))
	for _, m := range matches {
		content, err := s.expand(ctx, m.Fragment, opts.ContextWindow)
		if err != nil {
			return nil, fmt.Errorf("expand fragment %d: %w", m.Fragment.ID, err)
		}

		r := domain.RankedFragment{
			Content: content,
			Title:   m.Fragment.SectionPath,
			URL:     domain.FragmentURL(m.Fragment.ReportID, m.Fragment.ID),
			Score:   m.Similarity(),
		}
		r.Annotate(m.CompanyName, m.Fragment.ReportID, analysis.Intent, companies)
		results = append(results, r)
	}

	// 7. Rerank
	if !opts.DisableRerank {
		results = heuristicRerank(results, companies, analysis.Intent, analysis.IsCompetitorQuery)
		logger.Debug("[%s] Heuristic rerank: %d survivors", trace, len(results))
	}
	if len(results) > topK {
		results = results[:topK]
	}
	if opts.CrossEncoder && s.reranker != nil {
		s.crossEncode(ctx, query, results)
	}

	// 8. Tag and strip
	for i := range results {
		if !opts.DisableSourceTagging {
			results[i].Content = sourceTag(&results[i]) + results[i].Content
		}
		results[i].Strip()
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// analyze runs the query analyzer, degrading to the default analysis on any failure.
func (s *SearchService) analyze(ctx context.Context, query string) *domain.QueryAnalysis {
	if s.analyzer == nil {
		logger.Debug("Query analyzer not configured, using default analysis")
		return domain.DefaultQueryAnalysis(query)
	}

	analysis, err := s.analyzer.Analyze(ctx, query)
	if err != nil || analysis == nil {
		logger.Warn("Query analysis failed: %v (using default analysis)", err)
		return domain.DefaultQueryAnalysis(query)
	}

	analysis.Normalize()
	return analysis
}

// resolveCompanies maps mentions to canonical names, keeping unresolved
// mentions verbatim. Duplicates are dropped.
func (s *SearchService) resolveCompanies(mentions []string) []string {
	resolved := make([]string, 0, len(mentions))
	seen := make(map[string]struct{}, len(mentions))
	for _, m := range mentions {
		name, ok := s.resolver.Resolve(m)
		if !ok {
			name = strings.TrimSpace(m)
		}
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}
		resolved = append(resolved, name)
	}
	return resolved
}

// expand returns the fragment content with its trailing table attached
// and, when window > 0, the surrounding narrative appended.
func (s *SearchService) expand(ctx context.Context, f domain.Fragment, window int) (string, error) {
	content := f.RawContent

	next, err := s.store.NearestNextFragment(ctx, f.ReportID, f.SequenceOrder)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return "", err
	case next == nil:
	case next.ChunkType == domain.ChunkTypeTable && next.SequenceOrder-f.SequenceOrder <= MaxTableGap:
		content += tableHeader + next.RawContent
		if next.HasMergedLegend() {
			content = legendNote + content
		}
	}

	if window <= 0 {
		return content, nil
	}

	neighbours, err := s.store.ContextWindow(ctx, f.ReportID, f.SequenceOrder, window)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(neighbours))
	for _, n := range neighbours {
		if n.ChunkType == domain.ChunkTypeText && strings.TrimSpace(n.RawContent) != "" {
			parts = append(parts, n.RawContent)
		}
	}
	if len(parts) > 0 {
		content += contextHeader + strings.Join(parts, "\n")
	}
	return content, nil
}

// crossEncode rescores results with the reranker and re-sorts them in place.
// On failure the heuristic order is kept.
func (s *SearchService) crossEncode(ctx context.Context, query string, results []domain.RankedFragment) {
	if len(results) == 0 {
		return
	}

	docs := make([]string, len(results))
	for i := range results {
		docs[i] = results[i].Content
	}

	scores, err := s.reranker.Score(ctx, query, docs)
	if err != nil {
		logger.Warn("Cross-encoder rerank failed: %v (keeping heuristic order)", err)
		return
	}
	if len(scores) != len(results) {
		logger.Warn("Cross-encoder returned %d scores for %d documents (keeping heuristic order)",
			len(scores), len(results))
		return
	}

	for i := range results {
		results[i].Score = scores[i]
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	logger.Debug("Cross-encoder rerank applied with %s", s.reranker.ModelName())
}

// sourceTag returns the provenance marker for an annotated result.
func sourceTag(r *domain.RankedFragment) string {
	company := r.CompanyName()
	if company == "" {
		company = "Unknown"
	}
	return fmt.Sprintf("[[출처: %s 사업보고서 (Report ID: %d)]]\n\n", company, r.ReportID())
}
