package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driving"
)

// Ensure ReportService implements the interface.
var _ driving.ReportService = (*ReportService)(nil)

// DefaultContextWindow is the window used when none is given.
const DefaultContextWindow = 2

// ReportService reads fragments of a single report.
type ReportService struct {
	store driven.FragmentStore
}

// NewReportService creates a new report service.
func NewReportService(store driven.FragmentStore) *ReportService {
	return &ReportService{store: store}
}

// Context returns the fragment at seq and its retrievable neighbours.
// Returns domain.ErrNotFound when the window is empty.
func (s *ReportService) Context(ctx context.Context, reportID int64, seq, window int) ([]domain.Fragment, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	if window < 0 {
		return nil, domain.NewValidationError("window", "must not be negative")
	}
	if window == 0 {
		window = DefaultContextWindow
	}

	out, err := s.store.ContextWindow(ctx, reportID, seq, window)
	if err != nil {
		return nil, fmt.Errorf("context window: %w", err)
	}

	center, err := s.store.NearestNextFragment(ctx, reportID, seq-1)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("context center: %w", err)
	case center.SequenceOrder == seq:
		out = append(out, *center)
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].SequenceOrder < out[j].SequenceOrder
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("report %d around sequence %d: %w", reportID, seq, domain.ErrNotFound)
	}
	return out, nil
}

// Fragments returns the retrievable fragments of a report in sequence
// order. Merged noise is dropped.
func (s *ReportService) Fragments(ctx context.Context, reportID int64) ([]domain.Fragment, error) {
	if s.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	all, err := s.store.FragmentsByReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("report fragments: %w", err)
	}
	out := make([]domain.Fragment, 0, len(all))
	for _, f := range all {
		if f.ChunkType.IsRetrievable() {
			out = append(out, f)
		}
	}
	return out, nil
}
