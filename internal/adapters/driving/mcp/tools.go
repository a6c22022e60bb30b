package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query         string `json:"query" jsonschema:"question about one or more companies"`
	Limit         int    `json:"limit,omitempty" jsonschema:"maximum number of fragments to return (default 10)"`
	DisableRerank bool   `json:"disable_rerank,omitempty" jsonschema:"skip the company relevance rerank"`
	DisableTags   bool   `json:"disable_tags,omitempty" jsonschema:"do not prefix fragments with their source report"`
	Window        int    `json:"window,omitempty" jsonschema:"append neighbouring text within this many positions"`
}

// HybridSearchInput is the input schema for the hybrid_search tool.
type HybridSearchInput struct {
	Queries     []string `json:"queries" jsonschema:"queries to answer from disclosures and the web"`
	ExcludeURLs []string `json:"exclude_urls,omitempty" jsonschema:"URLs or fragment ids already seen"`
}

// ResolveCompanyInput is the input schema for the resolve_company tool.
type ResolveCompanyInput struct {
	Name      string  `json:"name" jsonschema:"company mention, abbreviation or misspelling"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"fuzzy match cutoff from 0 to 100 (default 65)"`
}

// FragmentsOutput is the output schema for the retrieval tools.
type FragmentsOutput struct {
	Results []FragmentOutput `json:"results"`
	Count   int              `json:"count"`
	Usage   domain.Usage     `json:"usage,omitempty"`
}

// FragmentOutput is one retrieved fragment or web page.
type FragmentOutput struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content"`
	Snippets    []string `json:"snippets,omitempty"`
	Score       float64  `json:"score"`
	Source      string   `json:"source,omitempty"`
}

// ResolveCompanyOutput is the output schema for the resolve_company tool.
type ResolveCompanyOutput struct {
	Query    string `json:"query"`
	Resolved string `json:"resolved,omitempty"`
	Matched  bool   `json:"matched"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search company disclosure reports for fragments relevant to a question",
	}, s.handleSearch)

	if s.ports.Retriever != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "hybrid_search",
			Description: "Answer several queries from disclosure reports and web search, deduplicated by URL",
		}, s.handleHybridSearch)
	}

	if s.ports.Companies != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "resolve_company",
			Description: "Map a company mention to its canonical registered name",
		}, s.handleResolveCompany)
	}
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, FragmentsOutput, error) {
	opts := domain.SearchOptions{
		TopK:                 input.Limit,
		DisableRerank:        input.DisableRerank,
		DisableSourceTagging: input.DisableTags,
		ContextWindow:        input.Window,
	}
	if opts.TopK <= 0 {
		opts.TopK = domain.DefaultTopK
	}

	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, FragmentsOutput{}, err
	}
	return nil, toOutput(results, nil), nil
}

func (s *Server) handleHybridSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HybridSearchInput,
) (*mcp.CallToolResult, FragmentsOutput, error) {
	if len(input.Queries) == 0 {
		return nil, FragmentsOutput{}, errors.New("at least one query is required")
	}

	results, err := s.ports.Retriever.Retrieve(ctx, input.Queries, input.ExcludeURLs, 0)
	if err != nil {
		return nil, FragmentsOutput{}, err
	}
	return nil, toOutput(results, s.ports.Retriever.UsageAndReset()), nil
}

func (s *Server) handleResolveCompany(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ResolveCompanyInput,
) (*mcp.CallToolResult, ResolveCompanyOutput, error) {
	name, ok := s.ports.Companies.Resolve(input.Name, input.Threshold)
	return nil, ResolveCompanyOutput{Query: input.Name, Resolved: name, Matched: ok}, nil
}

func toOutput(results []domain.RankedFragment, usage domain.Usage) FragmentsOutput {
	out := FragmentsOutput{
		Results: make([]FragmentOutput, len(results)),
		Count:   len(results),
		Usage:   usage,
	}
	for i := range results {
		out.Results[i] = FragmentOutput{
			URL:         results[i].URL,
			Title:       results[i].Title,
			Description: results[i].Description,
			Content:     results[i].Content,
			Snippets:    results[i].Snippets,
			Score:       results[i].Score,
			Source:      string(results[i].Source),
		}
	}
	return out
}
