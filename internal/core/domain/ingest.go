package domain

// IngestRecord is one report to seed into the store together with its
// company and fragments.
type IngestRecord struct {
	// Company owns the report. A blank name leaves the report orphaned.
	Company Company

	// Report is upserted by ReceiptNo.
	Report AnalysisReport

	// Fragments are inserted in one transaction. Fragments without an
	// embedding are embedded before insertion.
	Fragments []Fragment
}

// IngestResult summarises a bulk load.
type IngestResult struct {
	// BatchID identifies the load in logs.
	BatchID string

	// Reports is the number of reports written.
	Reports int

	// Fragments is the number of fragments written.
	Fragments int

	// Embedded is how many of those fragments were embedded during the load.
	Embedded int

	// Failed maps receipt numbers to the reason their record was skipped.
	Failed map[string]string
}
