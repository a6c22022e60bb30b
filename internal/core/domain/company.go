package domain

import "time"

// Company is a canonical entry in the company registry.
// Companies are created during ingestion and are read-only for search.
type Company struct {
	// ID is the store-assigned identifier.
	ID int64

	// Name is the canonical display name. Unique across companies.
	Name string

	// CorpCode is the disclosure system corporation code.
	CorpCode string

	// StockCode is the listed ticker, empty for unlisted companies.
	StockCode string

	// Industry is a free-form sector label.
	Industry string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReportStatus is the lifecycle state of an AnalysisReport.
type ReportStatus string

// Report lifecycle states.
const (
	// ReportStatusRawLoaded marks a report whose fragments were loaded but not post-processed.
	ReportStatusRawLoaded ReportStatus = "Raw_Loaded"

	// ReportStatusProcessed marks a report whose fragments are embedded and searchable.
	ReportStatusProcessed ReportStatus = "Processed"

	// ReportStatusFailed marks a report whose ingestion failed.
	ReportStatusFailed ReportStatus = "Failed"
)

// DefaultReportType is the report type assumed when none is given.
const DefaultReportType = "annual"

// AnalysisReport is one ingested source document.
type AnalysisReport struct {
	// ID is the store-assigned identifier.
	ID int64

	// CompanyID is the owning company. Nil for orphaned reports.
	CompanyID *int64

	// Title is the report title as filed.
	Title string

	// ReceiptNo is the external receipt identifier, unique across reports.
	// It is the idempotency key for re-ingestion.
	ReceiptNo string

	// ReceiptDate is the filing date (YYYYMMDD).
	ReceiptDate string

	// ReportType classifies the report (default "annual").
	ReportType string

	// BasicInfo holds summary attributes extracted at ingestion.
	BasicInfo map[string]any

	// Status is the lifecycle state.
	Status ReportStatus

	CreatedAt time.Time
}
