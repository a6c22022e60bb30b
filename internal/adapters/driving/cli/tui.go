package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leh60245/enterprise-storm/internal/adapters/driving/tui"
	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

var (
	tuiWindow       int
	tuiCrossEncoder bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface.

Controls:
  Enter        Search / select
  ↑/k, ↓/j     Move through results
  PgUp, PgDn   Scroll the selected result
  r, t, x      Toggle rerank, source tags, cross-encoder
  /            New search
  Esc          Back
  q, Ctrl+C    Quit`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiWindow, "window", 0, "append text within this many positions of each hit")
	tuiCmd.Flags().BoolVar(&tuiCrossEncoder, "cross-encoder", false, "start with the cross-encoder enabled")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return notConfigured("search")
	}

	app, err := tui.NewApp(&tui.Ports{
		Search:    searchService,
		Companies: companyService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	stop := runWatchers(cmd.Context())
	defer stop()

	app.WithContext(cmd.Context()).WithSearchOptions(domain.SearchOptions{
		TopK:          domain.DefaultTopK,
		ContextWindow: tuiWindow,
		CrossEncoder:  tuiCrossEncoder,
	})
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
