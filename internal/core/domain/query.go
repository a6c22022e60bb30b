package domain

import "strings"

// Intent classifies what a question is after.
type Intent string

// Query intents.
const (
	// IntentFactoid asks for a single fact about one company.
	IntentFactoid Intent = "factoid"

	// IntentAnalytical asks for reasoning over one company's data.
	IntentAnalytical Intent = "analytical"

	// IntentComparison compares several companies.
	IntentComparison Intent = "comparison"

	// IntentGeneral is everything else, and the fallback.
	IntentGeneral Intent = "general"
)

// IsValid returns true if the intent is recognised.
func (i Intent) IsValid() bool {
	switch i {
	case IntentFactoid, IntentAnalytical, IntentComparison, IntentGeneral:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (i Intent) String() string {
	return string(i)
}

// MaxTargetCompanies caps the company mentions kept from one analysis.
const MaxTargetCompanies = 5

// QueryAnalysis is the structured reading of a free-text question.
// It is produced fresh per query and never persisted.
type QueryAnalysis struct {
	// Intent is the question type.
	Intent Intent `json:"intent"`

	// TargetCompanies are raw company mentions, in order, at most five.
	TargetCompanies []string `json:"target_companies"`

	// IsCompetitorQuery is set when the question compares against competitors.
	IsCompetitorQuery bool `json:"is_competitor_query"`

	// TimePeriod is an optional period such as "2023" or "최근 3년".
	TimePeriod string `json:"time_period,omitempty"`

	// Keywords assist search.
	Keywords []string `json:"keywords"`
}

// DefaultQueryAnalysis is the analysis used when the analyzer fails:
// general intent, no companies, the query itself as the only keyword.
func DefaultQueryAnalysis(query string) *QueryAnalysis {
	return &QueryAnalysis{
		Intent:          IntentGeneral,
		TargetCompanies: []string{},
		Keywords:        []string{query},
	}
}

// Normalize trims blank entries, caps companies at MaxTargetCompanies and
// maps unknown intents to IntentGeneral.
func (q *QueryAnalysis) Normalize() {
	if !q.Intent.IsValid() {
		q.Intent = IntentGeneral
	}

	companies := make([]string, 0, len(q.TargetCompanies))
	for _, c := range q.TargetCompanies {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		companies = append(companies, c)
		if len(companies) == MaxTargetCompanies {
			break
		}
	}
	q.TargetCompanies = companies

	keywords := make([]string, 0, len(q.Keywords))
	for _, k := range q.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	q.Keywords = keywords
}
