// Package analyzer holds the pieces shared by the query analyzer adapters:
// prompt lookup and decoding of the model's JSON answer.
package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/leh60245/enterprise-storm/internal/core/domain"
	"github.com/leh60245/enterprise-storm/internal/core/ports/driven"
)

// Generation parameters used by every analyzer.
const (
	Temperature = 0.0
	MaxTokens   = 300
)

var thinkTags = regexp.MustCompile(`(?s)<think>.*?</think>`)

// SystemPrompt returns the query analysis prompt from store, or the
// built-in prompt when store is nil or fails.
func SystemPrompt(store driven.PromptStore) string {
	if store == nil {
		return driven.DefaultQueryAnalysisPrompt
	}
	prompt, err := store.Load(driven.PromptQueryAnalysis)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return driven.DefaultQueryAnalysisPrompt
	}
	return prompt
}

// wireAnalysis accepts the loose shapes small models produce.
type wireAnalysis struct {
	Intent            string     `json:"intent"`
	TargetCompanies   stringList `json:"target_companies"`
	IsCompetitorQuery looseBool  `json:"is_competitor_query"`
	TimePeriod        any        `json:"time_period"`
	Keywords          stringList `json:"keywords"`
}

// stringList decodes either a JSON array of strings or a single string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var many []any
	if err := json.Unmarshal(data, &many); err == nil {
		out := make([]string, 0, len(many))
		for _, v := range many {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		*l = nil
		return nil //nolint:nilerr // unusable values decode as empty
	}
	if one = strings.TrimSpace(one); one != "" {
		*l = []string{one}
	}
	return nil
}

// looseBool decodes true/false as well as "true"/"yes".
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(strings.Trim(string(data), `" `)) {
	case "true", "yes", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}

// Decode turns raw model output into a normalised analysis. Think blocks,
// code fences and text around the outermost object are discarded, and
// malformed JSON is repaired before decoding.
func Decode(content string) (*domain.QueryAnalysis, error) {
	raw := extractObject(thinkTags.ReplaceAllString(content, ""))
	if raw == "" {
		return nil, errors.New("no JSON object in model output")
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil, fmt.Errorf("repair analysis JSON: %w", err)
	}

	var w wireAnalysis
	if err := json.Unmarshal([]byte(repaired), &w); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}

	qa := &domain.QueryAnalysis{
		Intent:            domain.Intent(strings.ToLower(strings.TrimSpace(w.Intent))),
		TargetCompanies:   w.TargetCompanies,
		IsCompetitorQuery: bool(w.IsCompetitorQuery),
		Keywords:          w.Keywords,
	}
	switch tp := w.TimePeriod.(type) {
	case string:
		qa.TimePeriod = strings.TrimSpace(tp)
	case float64:
		qa.TimePeriod = fmt.Sprintf("%.0f", tp)
	}
	qa.Normalize()
	return qa, nil
}

// extractObject returns the text from the first '{' to the last '}'.
// An unterminated object is returned from its opening brace so the
// repair step can close it.
func extractObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end < start {
		return strings.TrimSpace(s[start:])
	}
	return s[start : end+1]
}
