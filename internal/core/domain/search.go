package domain

// DefaultTopK is the number of results returned when none is requested.
const DefaultTopK = 10

// SearchOptions configures a single-source search.
// The zero value reranks and tags results, matching the default pipeline.
type SearchOptions struct {
	// TopK is the maximum number of results (0 = DefaultTopK).
	TopK int

	// DisableRerank skips the heuristic company rerank.
	DisableRerank bool

	// DisableSourceTagging skips the provenance marker prepended to content.
	DisableSourceTagging bool

	// ContextWindow appends neighbouring text fragments within this many
	// sequence positions of each hit (0 = off).
	ContextWindow int

	// CrossEncoder enables the learned rerank pass when a reranker is wired.
	CrossEncoder bool
}

// Provenance says which retriever produced a result.
type Provenance string

// Result provenances.
const (
	ProvenanceInternal Provenance = "internal"
	ProvenanceExternal Provenance = "external"
)

// RankedFragment is a scored search result.
// Only the exported fields cross the search boundary; the pipeline
// trace is stripped before results are returned.
type RankedFragment struct {
	// Content is the fragment text, possibly with an attached table and provenance tag.
	Content string `json:"content"`

	// Title is the section label or page title.
	Title string `json:"title"`

	// URL is the stable identifier of the fragment or web page.
	URL string `json:"url"`

	// Description is a short summary, the title for internal results.
	Description string `json:"description,omitempty"`

	// Snippets are excerpts for display.
	Snippets []string `json:"snippets,omitempty"`

	// Score is the similarity or rerank score.
	Score float64 `json:"score"`

	// Source is set by the retrievers to internal or external.
	Source Provenance `json:"source,omitempty"`

	trace *fragmentTrace
}

// fragmentTrace holds internal-only pipeline state.
type fragmentTrace struct {
	company  string
	reportID int64
	intent   Intent
	matched  []string
}

// Annotate attaches internal-only pipeline state to the result.
func (r *RankedFragment) Annotate(company string, reportID int64, intent Intent, matched []string) {
	r.trace = &fragmentTrace{
		company:  company,
		reportID: reportID,
		intent:   intent,
		matched:  matched,
	}
}

// CompanyName returns the owning company label, empty if unknown or stripped.
func (r *RankedFragment) CompanyName() string {
	if r.trace == nil {
		return ""
	}
	return r.trace.company
}

// ReportID returns the originating report, 0 if unknown or stripped.
func (r *RankedFragment) ReportID() int64 {
	if r.trace == nil {
		return 0
	}
	return r.trace.reportID
}

// Intent returns the intent of the query that produced the result.
func (r *RankedFragment) Intent() Intent {
	if r.trace == nil {
		return ""
	}
	return r.trace.intent
}

// MatchedEntities returns the resolved company names used for the search.
func (r *RankedFragment) MatchedEntities() []string {
	if r.trace == nil {
		return nil
	}
	return r.trace.matched
}

// IsAnnotated reports whether internal-only state is still attached.
func (r *RankedFragment) IsAnnotated() bool {
	return r.trace != nil
}

// Strip removes internal-only state.
func (r *RankedFragment) Strip() {
	r.trace = nil
}

// Usage maps a capability name to the number of queries it served.
type Usage map[string]int

// Merge adds every counter of other into u.
func (u Usage) Merge(other Usage) Usage {
	for k, v := range other {
		u[k] += v
	}
	return u
}
