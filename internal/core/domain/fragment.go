package domain

import (
	"fmt"
	"time"
)

// ChunkType classifies a Fragment.
type ChunkType string

// Fragment types.
const (
	// ChunkTypeText is a narrative paragraph.
	ChunkTypeText ChunkType = "text"

	// ChunkTypeTable is a serialised table.
	ChunkTypeTable ChunkType = "table"

	// ChunkTypeNoiseMerged is an ingestion artifact. It is never retrieved.
	ChunkTypeNoiseMerged ChunkType = "noise_merged"
)

// IsValid returns true if the chunk type is recognised.
func (t ChunkType) IsValid() bool {
	switch t {
	case ChunkTypeText, ChunkTypeTable, ChunkTypeNoiseMerged:
		return true
	default:
		return false
	}
}

// IsRetrievable returns false for noise fragments.
func (t ChunkType) IsRetrievable() bool {
	return t != ChunkTypeNoiseMerged
}

// String returns the string representation.
func (t ChunkType) String() string {
	return string(t)
}

// MergedLegendKey is the metadata flag set when a table absorbed its
// unit or legend line during ingestion.
const MergedLegendKey = "has_merged_meta"

// Fragment is the atomic retrievable unit of a report.
// Fragments are created in bulk during ingestion and never mutated.
type Fragment struct {
	// ID is the store-assigned identifier.
	ID int64

	// ReportID is the owning report.
	ReportID int64

	// ChunkType is text, table or noise_merged.
	ChunkType ChunkType

	// SectionPath is the hierarchical section label,
	// e.g. "II. 사업의 내용 > 1. 사업의 개요".
	SectionPath string

	// SequenceOrder defines document order within the report.
	SequenceOrder int

	// RawContent is the text or serialised table.
	RawContent string

	// TableMetadata holds units and captions for table fragments.
	TableMetadata map[string]any

	// Embedding is the content vector. Its dimension must match the
	// embedding service in use.
	Embedding []float32

	// Metadata holds auxiliary flags.
	Metadata map[string]any

	CreatedAt time.Time
}

// HasMergedLegend reports whether the fragment carries a merged unit/legend line.
func (f *Fragment) HasMergedLegend() bool {
	if flag, ok := f.Metadata[MergedLegendKey].(bool); ok {
		return flag
	}
	flag, _ := f.TableMetadata[MergedLegendKey].(bool)
	return flag
}

// FragmentURL returns the stable identifier used for a fragment in results.
func FragmentURL(reportID, fragmentID int64) string {
	return fmt.Sprintf("dart_report_%d_chunk_%d", reportID, fragmentID)
}
