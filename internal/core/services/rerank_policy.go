package services

import (
	"sort"
	"strings"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
)

// RerankAction is the heuristic verdict for one search hit.
type RerankAction int

// Heuristic rerank actions.
const (
	// RerankKeep leaves the score unchanged.
	RerankKeep RerankAction = iota

	// RerankBoost multiplies the score by BoostFactor.
	RerankBoost

	// RerankPenalize multiplies the score by PenaltyFactor.
	RerankPenalize

	// RerankDrop removes the hit.
	RerankDrop
)

// Score multipliers applied by the heuristic rerank.
const (
	BoostFactor   = 1.3
	PenaltyFactor = 0.5
)

// unknownCompanyLabel is the label the store gives fragments of unlinked reports.
const unknownCompanyLabel = "unknown company"

// String returns the action name.
func (a RerankAction) String() string {
	switch a {
	case RerankKeep:
		return "keep"
	case RerankBoost:
		return "boost"
	case RerankPenalize:
		return "penalize"
	case RerankDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// Apply returns the adjusted score and whether the hit survives.
func (a RerankAction) Apply(score float64) (float64, bool) {
	switch a {
	case RerankBoost:
		return score * BoostFactor, true
	case RerankPenalize:
		return score * PenaltyFactor, true
	case RerankDrop:
		return score, false
	default:
		return score, true
	}
}

// RerankPolicy is the heuristic decision table:
//
//	matched                      -> boost
//	unmatched, competitor query  -> keep
//	unmatched, factoid           -> drop
//	unmatched, anything else     -> penalize
func RerankPolicy(intent domain.Intent, competitor, matched bool) RerankAction {
	switch {
	case matched:
		return RerankBoost
	case competitor:
		return RerankKeep
	case intent == domain.IntentFactoid:
		return RerankDrop
	default:
		return RerankPenalize
	}
}

// companyMatches reports whether a hit's company label counts as on-target.
// Empty and unknown labels always match. targets must be lower-cased.
func companyMatches(label string, targets []string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || label == unknownCompanyLabel {
		return true
	}
	for _, t := range targets {
		if t != "" && strings.Contains(label, t) {
			return true
		}
	}
	return false
}

// heuristicRerank applies RerankPolicy to every hit and sorts the
// survivors by score, descending. The sort is stable so equal scores
// keep store order. It is a no-op when there are no targets and the
// query is not a competitor query.
func heuristicRerank(
	hits []domain.RankedFragment, companies []string, intent domain.Intent, competitor bool,
) []domain.RankedFragment {
	targets := make([]string, 0, len(companies))
	for _, c := range companies {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			targets = append(targets, c)
		}
	}
	if len(targets) == 0 && !competitor {
		return hits
	}

	kept := make([]domain.RankedFragment, 0, len(hits))
	for _, h := range hits {
		action := RerankPolicy(intent, competitor, companyMatches(h.CompanyName(), targets))
		score, ok := action.Apply(h.Score)
		if !ok {
			continue
		}
		h.Score = score
		kept = append(kept, h)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})
	return kept
}
