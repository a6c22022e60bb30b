package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// maxIngestLine bounds one JSONL record; reports with embedded vectors
// run to several megabytes.
const maxIngestLine = 64 << 20

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.jsonl]",
	Short: "Load prepared reports into the fragment store",
	Long: `Loads one report per line of a JSON Lines file ("-" reads stdin).

Each line holds a company, a report and its ordered fragments:

  {"company": {"name": "삼성전자", "corp_code": "00126380", "stock_code": "005930"},
   "report": {"title": "사업보고서 (2023.12)", "receipt_no": "20240312000736",
              "receipt_date": "20240312"},
   "fragments": [{"chunk_type": "text", "section_path": "II. 사업의 내용",
                  "sequence_order": 1, "raw_content": "..."}]}

Fragments without an "embedding" are embedded with the configured
provider. Reports are upserted by receipt number, so a file can be
loaded again after fixing failed lines.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

type ingestLine struct {
	Company struct {
		Name      string `json:"name"`
		CorpCode  string `json:"corp_code"`
		StockCode string `json:"stock_code"`
		Industry  string `json:"industry"`
	} `json:"company"`
	Report struct {
		Title       string         `json:"title"`
		ReceiptNo   string         `json:"receipt_no"`
		ReceiptDate string         `json:"receipt_date"`
		ReportType  string         `json:"report_type"`
		BasicInfo   map[string]any `json:"basic_info"`
	} `json:"report"`
	Fragments []struct {
		ChunkType     string         `json:"chunk_type"`
		SectionPath   string         `json:"section_path"`
		SequenceOrder int            `json:"sequence_order"`
		RawContent    string         `json:"raw_content"`
		TableMetadata map[string]any `json:"table_metadata"`
		Metadata      map[string]any `json:"metadata"`
		Embedding     []float32      `json:"embedding"`
	} `json:"fragments"`
}

func (l *ingestLine) record() domain.IngestRecord {
	rec := domain.IngestRecord{
		Company: domain.Company{
			Name:      l.Company.Name,
			CorpCode:  l.Company.CorpCode,
			StockCode: l.Company.StockCode,
			Industry:  l.Company.Industry,
		},
		Report: domain.AnalysisReport{
			Title:       l.Report.Title,
			ReceiptNo:   l.Report.ReceiptNo,
			ReceiptDate: l.Report.ReceiptDate,
			ReportType:  l.Report.ReportType,
			BasicInfo:   l.Report.BasicInfo,
		},
		Fragments: make([]domain.Fragment, len(l.Fragments)),
	}
	for i, f := range l.Fragments {
		rec.Fragments[i] = domain.Fragment{
			ChunkType:     domain.ChunkType(f.ChunkType),
			SectionPath:   f.SectionPath,
			SequenceOrder: f.SequenceOrder,
			RawContent:    f.RawContent,
			TableMetadata: f.TableMetadata,
			Metadata:      f.Metadata,
			Embedding:     f.Embedding,
		}
	}
	return rec
}

// readIngestFile parses JSON Lines into records. Blank lines are skipped.
func readIngestFile(r io.Reader) ([]domain.IngestRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), maxIngestLine)

	var records []domain.IngestRecord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var line ingestLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, line.record())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
	}
	return records, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}

	in := cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	records, err := readIngestFile(in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	if len(records) == 0 {
		cmd.Println("Nothing to ingest.")
		return nil
	}

	result, err := ingestService.Ingest(cmd.Context(), records)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Batch %s: %d reports, %d fragments (%d embedded)\n",
		result.BatchID, result.Reports, result.Fragments, result.Embedded)

	if len(result.Failed) == 0 {
		return nil
	}
	keys := make([]string, 0, len(result.Failed))
	for k := range result.Failed {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	cmd.Println("Failed:")
	for _, k := range keys {
		cmd.Printf("  %s: %s\n", k, result.Failed[k])
	}
	return fmt.Errorf("%d of %d reports failed", len(result.Failed), len(records))
}
