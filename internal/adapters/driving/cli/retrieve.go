package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

var (
	retrieveK       int
	retrieveExclude []string
	retrieveJSON    bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query...]",
	Short: "Retrieve context for several queries",
	Long: `Answers each query and returns one flat, ordered list.

When web search is configured, every query is answered from the
disclosure store and the web in the configured ratio
(search.internal_k / search.external_k) and duplicate URLs are dropped.
Otherwise only the disclosure store is used.`,
	Example: `  storm retrieve "삼성전자 매출" "삼성전자 영업이익"
  storm retrieve --exclude dart_report_3_chunk_12 "현대차 전기차 전략"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveK, "top-k", "k", 0, "results per query for the disclosure store (0 = default)")
	retrieveCmd.Flags().StringSliceVar(&retrieveExclude, "exclude", nil, "URLs or fragment ids to skip")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retriever == nil {
		return notConfigured("retrieval")
	}

	results, err := retriever.Retrieve(cmd.Context(), args, retrieveExclude, retrieveK)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}
	usage := retriever.UsageAndReset()

	if retrieveJSON {
		return printJSON(cmd, struct {
			Results []domain.RankedFragment `json:"results"`
			Usage   domain.Usage            `json:"usage"`
		}{results, usage})
	}

	printResults(cmd, results)
	cmd.Printf("Usage: %s\n", formatUsage(usage))
	return nil
}

// formatUsage renders counters as "name=n" pairs in name order.
func formatUsage(u domain.Usage) string {
	if len(u) == 0 {
		return "none"
	}
	names := make([]string, 0, len(u))
	for name := range u {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, u[name])
	}
	return strings.Join(parts, " ")
}
