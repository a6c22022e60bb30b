package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// previewRunes caps the excerpt printed under each result.
const previewRunes = 160

var (
	searchLimit        int
	searchJSON         bool
	searchNoRerank     bool
	searchNoTags       bool
	searchWindow       int
	searchCrossEncoder bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search disclosure reports",
	Long: `Searches the fragment store for passages answering the query.

Company mentions are resolved to registered names (synonyms, then fuzzy
matching). Results are reranked by company relevance and tagged with the
report they come from unless disabled.`,
	Example: `  storm search "삼성전자 반도체 부문 매출"
  storm search -n 5 --json "SK하이닉스와 삼성전자 HBM 경쟁"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchNoRerank, "no-rerank", false, "skip the company relevance rerank")
	searchCmd.Flags().BoolVar(&searchNoTags, "no-tags", false, "do not prefix results with their source report")
	searchCmd.Flags().IntVar(&searchWindow, "window", 0, "append text within this many positions of each hit")
	searchCmd.Flags().BoolVar(&searchCrossEncoder, "cross-encoder", false, "rescore results with the configured reranker")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return notConfigured("search")
	}

	opts := domain.SearchOptions{
		TopK:                 searchLimit,
		DisableRerank:        searchNoRerank,
		DisableSourceTagging: searchNoTags,
		ContextWindow:        searchWindow,
		CrossEncoder:         searchCrossEncoder,
	}

	results, err := searchService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}
	printResults(cmd, results)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printResults(cmd *cobra.Command, results []domain.RankedFragment) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		title := r.Title
		if title == "" {
			title = r.URL
		}

		cmd.Printf("  [%d] %s (%.3f)", i+1, title, r.Score)
		if r.Source != "" {
			cmd.Printf(" [%s]", r.Source)
		}
		cmd.Println()
		if r.URL != "" && r.URL != title {
			cmd.Printf("      %s\n", r.URL)
		}
		if preview := excerpt(r.Content, previewRunes); preview != "" {
			cmd.Printf("      %s\n", preview)
		}
		cmd.Println()
	}
}

// excerpt flattens whitespace and cuts s to at most n runes.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
