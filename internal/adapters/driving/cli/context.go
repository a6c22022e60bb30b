package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

var (
	contextWindow int
	contextJSON   bool
	contextAll    bool
)

var contextCmd = &cobra.Command{
	Use:   "context [report-id] [seq]",
	Short: "Show the fragments around a position in a report",
	Long: `Prints the retrievable fragments of a report within --window
sequence positions of seq, in document order. With --all the whole
report is printed and seq is omitted. Merged legends are skipped.`,
	Example: `  storm context 42 118
  storm context --window 5 42 118
  storm context --all 42`,
	Args: contextArgs,
	RunE: runContext,
}

func contextArgs(cmd *cobra.Command, args []string) error {
	if contextAll {
		return cobra.ExactArgs(1)(cmd, args)
	}
	if len(args) != 2 {
		return errors.New("requires a report id and a sequence (or --all with a report id)")
	}
	return nil
}

func init() {
	contextCmd.Flags().IntVarP(&contextWindow, "window", "w", 2, "positions on each side")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "output fragments as JSON")
	contextCmd.Flags().BoolVar(&contextAll, "all", false, "print every fragment of the report")
	rootCmd.AddCommand(contextCmd)
}

type fragmentView struct {
	ID            int64  `json:"id"`
	ChunkType     string `json:"chunk_type"`
	SectionPath   string `json:"section_path"`
	SequenceOrder int    `json:"sequence_order"`
	Content       string `json:"content"`
}

func runContext(cmd *cobra.Command, args []string) error {
	if reportService == nil {
		return notConfigured("report")
	}

	reportID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid report id %q: %w", args[0], err)
	}

	var fragments []domain.Fragment
	seq := -1
	if contextAll {
		fragments, err = reportService.Fragments(cmd.Context(), reportID)
		if err != nil {
			return fmt.Errorf("failed to read report: %w", err)
		}
	} else {
		if seq, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid sequence %q: %w", args[1], err)
		}
		fragments, err = reportService.Context(cmd.Context(), reportID, seq, contextWindow)
		if err != nil {
			return fmt.Errorf("failed to read context: %w", err)
		}
	}

	views := make([]fragmentView, len(fragments))
	for i := range fragments {
		views[i] = fragmentView{
			ID:            fragments[i].ID,
			ChunkType:     fragments[i].ChunkType.String(),
			SectionPath:   fragments[i].SectionPath,
			SequenceOrder: fragments[i].SequenceOrder,
			Content:       fragments[i].RawContent,
		}
	}
	if contextJSON {
		return printJSON(cmd, views)
	}

	for _, v := range views {
		marker := " "
		if v.SequenceOrder == seq {
			marker = ">"
		}
		cmd.Printf("%s [%d] %s  %s\n", marker, v.SequenceOrder, v.ChunkType, v.SectionPath)
		cmd.Println(v.Content)
		cmd.Println()
	}
	return nil
}
