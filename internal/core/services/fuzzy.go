package services

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// indelParams scores with insert/delete cost 1 and substitution cost 2,
// so Similarity is the normalised indel similarity 1 - d/(len(a)+len(b)).
var indelParams = levenshtein.NewParams().InsCost(1).DelCost(1).SubCost(2)

const (
	unbaseScale = 0.95
	// partialScale applies when one side is 1.5x to 8x longer than the other.
	partialScale = 0.9
	// longPartialScale applies when one side is 8x or more longer.
	longPartialScale = 0.6
)

// WRatio scores two strings on a 0-100 scale. It tolerates case, token
// order and partial overlap by taking the best of a plain ratio, a
// sliding partial ratio and token sort/set ratios, each down-weighted
// by how much the comparison had to bend.
func WRatio(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	lenA, lenB := len([]rune(a)), len([]rune(b))
	if lenA == 0 || lenB == 0 {
		return 0
	}

	lenRatio := float64(lenA) / float64(lenB)
	if lenA < lenB {
		lenRatio = float64(lenB) / float64(lenA)
	}

	best := ratio(a, b)
	if lenRatio < 1.5 {
		return max(best, tokenRatio(a, b)*unbaseScale)
	}

	scale := partialScale
	if lenRatio >= 8 {
		scale = longPartialScale
	}

	best = max(best, partialRatio(a, b)*scale)
	return max(best, partialTokenRatio(a, b)*unbaseScale*scale)
}

// ratio is the normalised indel similarity on a 0-100 scale.
func ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return levenshtein.Similarity(a, b, indelParams) * 100
}

// partialRatio is the best ratio of the shorter string against every
// equal-length window of the longer one.
func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	s := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := ratio(s, string(long[i:i+len(short)]))
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// tokenRatio is the better of the token sort and token set ratios.
func tokenRatio(a, b string) float64 {
	return max(ratio(sortedTokens(a), sortedTokens(b)), tokenSetRatio(a, b))
}

// partialTokenRatio is tokenRatio with partial matching. Any shared token scores 100.
func partialTokenRatio(a, b string) float64 {
	sect, _, _ := tokenSets(a, b)
	if len(sect) > 0 {
		return 100
	}
	return partialRatio(sortedTokens(a), sortedTokens(b))
}

// tokenSetRatio compares the shared tokens against each side's full token set.
func tokenSetRatio(a, b string) float64 {
	sect, diffA, diffB := tokenSets(a, b)
	if len(sect) > 0 && (len(diffA) == 0 || len(diffB) == 0) {
		return 100
	}

	s := strings.Join(sect, " ")
	withA := strings.TrimSpace(s + " " + strings.Join(diffA, " "))
	withB := strings.TrimSpace(s + " " + strings.Join(diffB, " "))

	return max(ratio(s, withA), ratio(s, withB), ratio(withA, withB))
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// tokenSets returns the sorted intersection and both sorted differences of the token sets.
func tokenSets(a, b string) (sect, diffA, diffB []string) {
	setA := tokenSet(a)
	setB := tokenSet(b)

	for t := range setA {
		if _, ok := setB[t]; ok {
			sect = append(sect, t)
		} else {
			diffA = append(diffA, t)
		}
	}
	for t := range setB {
		if _, ok := setA[t]; !ok {
			diffB = append(diffB, t)
		}
	}

	sort.Strings(sect)
	sort.Strings(diffA)
	sort.Strings(diffB)
	return sect, diffA, diffB
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}
