package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
	"github.com/leh60245/enterprise-storm/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultEmbedBatchSize is how many fragments are embedded per request.
const DefaultEmbedBatchSize = 32

// IngestService seeds companies, reports and fragments.
// It is a bulk loader for prepared records, not an ingestion pipeline.
type IngestService struct {
	writer    driven.FragmentWriter
	embedder  driven.EmbeddingService
	batchSize int
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithEmbedBatchSize sets how many texts go into one embedding request.
func WithEmbedBatchSize(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewIngestService creates an ingest service. The embedder may be nil
// when every fragment arrives with its vector.
func NewIngestService(writer driven.FragmentWriter, embedder driven.EmbeddingService,
	opts ...IngestOption) *IngestService {
	s := &IngestService{
		writer:    writer,
		embedder:  embedder,
		batchSize: DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest writes every record, embedding fragments that lack a vector.
func (s *IngestService) Ingest(ctx context.Context, records []domain.IngestRecord) (*domain.IngestResult, error) {
	if s.writer == nil {
		return nil, domain.ErrStoreUnavailable
	}

	result := &domain.IngestResult{
		BatchID: uuid.NewString(),
		Failed:  make(map[string]string),
	}
	logger.Section("Ingest")
	logger.Info("[%s] Loading %d reports", result.BatchID[:8], len(records))

	for i := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rec := &records[i]
		key := rec.Report.ReceiptNo
		if key == "" {
			key = fmt.Sprintf("record %d", i+1)
		}

		embedded, err := s.ingestOne(ctx, rec)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logger.Warn("[%s] %s skipped: %v", result.BatchID[:8], key, err)
			result.Failed[key] = err.Error()
			continue
		}

		result.Reports++
		result.Fragments += len(rec.Fragments)
		result.Embedded += embedded
	}

	logger.Info("[%s] Loaded %d reports, %d fragments (%d embedded), %d failed",
		result.BatchID[:8], result.Reports, result.Fragments, result.Embedded, len(result.Failed))
	return result, nil
}

func (s *IngestService) ingestOne(ctx context.Context, rec *domain.IngestRecord) (int, error) {
	if strings.TrimSpace(rec.Report.ReceiptNo) == "" {
		return 0, domain.NewValidationError("receipt_no", "required")
	}
	for _, f := range rec.Fragments {
		if !f.ChunkType.IsValid() {
			return 0, domain.NewValidationError("chunk_type", fmt.Sprintf("unknown type %q", f.ChunkType))
		}
	}

	// 1. Embed before writing anything so a provider failure leaves no partial report.
	embedded, err := s.embedMissing(ctx, rec.Fragments)
	if err != nil {
		return 0, err
	}

	// 2. Company
	if name := strings.TrimSpace(rec.Company.Name); name != "" {
		rec.Company.Name = name
		if err := s.writer.SaveCompany(ctx, &rec.Company); err != nil {
			return 0, err
		}
		id := rec.Company.ID
		rec.Report.CompanyID = &id
	}

	// 3. Report
	if rec.Report.ReportType == "" {
		rec.Report.ReportType = domain.DefaultReportType
	}
	rec.Report.Status = domain.ReportStatusProcessed
	if err := s.writer.SaveReport(ctx, &rec.Report); err != nil {
		return 0, err
	}

	// 4. Fragments replace whatever an earlier load stored for this receipt.
	if err := s.writer.SaveFragments(ctx, rec.Report.ID, rec.Fragments); err != nil {
		return 0, err
	}
	return embedded, nil
}

// embedMissing fills in vectors for retrievable fragments that have none.
// Noise fragments are stored without a vector.
func (s *IngestService) embedMissing(ctx context.Context, fragments []domain.Fragment) (int, error) {
	var pending []int
	for i := range fragments {
		if len(fragments[i].Embedding) == 0 && fragments[i].ChunkType.IsRetrievable() {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}
	if s.embedder == nil {
		return 0, fmt.Errorf("%d fragments need embeddings: %w", len(pending), domain.ErrEmbeddingUnavailable)
	}

	for start := 0; start < len(pending); start += s.batchSize {
		end := min(start+s.batchSize, len(pending))
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for j, idx := range batch {
			texts[j] = fragments[idx].RawContent
		}
		vecs, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed fragments: %w", err)
		}
		if len(vecs) != len(batch) {
			return 0, fmt.Errorf("embed fragments: got %d vectors for %d texts", len(vecs), len(batch))
		}
		for j, idx := range batch {
			fragments[idx].Embedding = vecs[j]
		}
		logger.Debug("Embedded fragments %d-%d of %d", start+1, end, len(pending))
	}
	return len(pending), nil
}
