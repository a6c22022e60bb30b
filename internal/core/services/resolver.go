package services

import (
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/leh60245/enterprise-storm/internal/logger"
)

// DefaultFuzzyThreshold is the minimum WRatio score for a fuzzy match.
const DefaultFuzzyThreshold = 65

// DefaultSynonyms returns the built-in abbreviation table. Keys are
// already normalised with NormalizeSynonymKey.
func DefaultSynonyms() map[string]string {
	return map[string]string{
		// Conglomerate abbreviations
		"삼전":   "삼성전자",
		"하이닉스": "SK하이닉스",
		"현차":   "현대자동차",
		"기아차":  "기아",
		"엘지전자": "LG전자",
		"엘전":   "LG전자",
		"엘지화학": "LG화학",
		"포스코":  "POSCO홀딩스",
		"한전":   "한국전력",

		// Latin spellings
		"samsung":  "삼성전자",
		"skhynix":  "SK하이닉스",
		"hynix":    "SK하이닉스",
		"lgenergy": "LG에너지솔루션",
		"lgensol":  "LG에너지솔루션",
		"엔솔":       "LG에너지솔루션",
		"naver":    "NAVER",
		"kakao":    "카카오",

		// Financial groups
		"국민은행": "KB금융",
		"신한은행": "신한지주",
		"우리은행": "우리금융지주",
	}
}

// NormalizeSynonymKey strips all whitespace and lower-cases s.
func NormalizeSynonymKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// roster is an immutable snapshot of the known company names.
type roster struct {
	names []string
	set   map[string]struct{}
}

func newRoster(names []string) *roster {
	r := &roster{
		names: make([]string, 0, len(names)),
		set:   make(map[string]struct{}, len(names)),
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := r.set[n]; dup {
			continue
		}
		r.set[n] = struct{}{}
		r.names = append(r.names, n)
	}
	return r
}

// EntityResolver maps free-text company mentions to canonical roster names.
//
// The roster and synonym table are immutable snapshots swapped atomically,
// so readers never observe a partially updated state and never block.
type EntityResolver struct {
	roster   atomic.Pointer[roster]
	synonyms atomic.Pointer[map[string]string]
}

// NewEntityResolver creates a resolver. A nil synonyms map selects DefaultSynonyms.
func NewEntityResolver(synonyms map[string]string, companies []string) *EntityResolver {
	r := &EntityResolver{}
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	r.UpdateSynonyms(synonyms)
	r.UpdateCompanyList(companies)
	return r
}

// UpdateCompanyList replaces the roster wholesale.
func (r *EntityResolver) UpdateCompanyList(names []string) {
	next := newRoster(names)
	r.roster.Store(next)
	logger.Debug("Entity resolver roster updated: %d companies", len(next.names))
}

// UpdateSynonyms replaces the synonym table wholesale. Keys are normalised.
func (r *EntityResolver) UpdateSynonyms(synonyms map[string]string) {
	next := make(map[string]string, len(synonyms))
	for k, v := range synonyms {
		key := NormalizeSynonymKey(k)
		v = strings.TrimSpace(v)
		if key == "" || v == "" {
			continue
		}
		next[key] = v
	}
	r.synonyms.Store(&next)
}

// Companies returns a copy of the current roster.
func (r *EntityResolver) Companies() []string {
	cur := r.roster.Load()
	out := make([]string, len(cur.names))
	copy(out, cur.names)
	return out
}

// Resolve resolves query with DefaultFuzzyThreshold.
func (r *EntityResolver) Resolve(query string) (string, bool) {
	return r.ResolveWithThreshold(query, DefaultFuzzyThreshold)
}

// ResolveWithThreshold returns the canonical roster name for query.
// Exact matches win, then synonyms whose target is in the roster, then
// the best fuzzy match scoring at least threshold. Ties go to the
// earlier roster entry.
func (r *EntityResolver) ResolveWithThreshold(query string, threshold float64) (string, bool) {
	query = strings.TrimSpace(query)
	cur := r.roster.Load()
	if query == "" || len(cur.names) == 0 {
		return "", false
	}

	if _, ok := cur.set[query]; ok {
		logger.Debug("Entity resolution (exact): %q", query)
		return query, true
	}

	synonyms := *r.synonyms.Load()
	if canonical, ok := synonyms[NormalizeSynonymKey(query)]; ok {
		if _, known := cur.set[canonical]; known {
			logger.Debug("Entity resolution (synonym): %q -> %q", query, canonical)
			return canonical, true
		}
	}

	best, bestScore := "", -1.0
	for _, name := range cur.names {
		if score := WRatio(query, name); score > bestScore {
			best, bestScore = name, score
		}
	}

	if bestScore >= threshold {
		logger.Debug("Entity resolution (fuzzy): %q -> %q (score %.2f)", query, best, bestScore)
		return best, true
	}

	logger.Debug("Entity resolution failed: %q (best %.2f below %.0f)", query, bestScore, threshold)
	return "", false
}
