package driving

import (
	"context"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// ReportService reads report fragments outside of a search.
type ReportService interface {
	// Context returns the retrievable fragments within window positions of
	// seq in the report, the fragment at seq included, in sequence order.
	Context(ctx context.Context, reportID int64, seq, window int) ([]domain.Fragment, error)

	// Fragments returns the retrievable fragments of a report in sequence
	// order; merged noise is never returned.
	Fragments(ctx context.Context, reportID int64) ([]domain.Fragment, error)
}

// IngestService seeds the fragment store from prepared records.
type IngestService interface {
	// Ingest writes every record. A record that fails is reported in the
	// result and does not stop the others; only cancellation aborts the load.
	Ingest(ctx context.Context, records []domain.IngestRecord) (*domain.IngestResult, error)
}
