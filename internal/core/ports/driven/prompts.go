package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptQueryAnalysis is the system prompt of the query analyzer.
	// It has no format placeholders; the question is sent as the user message.
	PromptQueryAnalysis = "query_analysis"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses its built-in prompt.
	SetPromptStore(store PromptStore)
}

// DefaultQueryAnalysisPrompt is the built-in PromptQueryAnalysis text.
//
//nolint:lll // Prompt text is kept unwrapped.
const DefaultQueryAnalysisPrompt = `You analyse questions for a retrieval system over Korean corporate disclosure reports (DART).
Read the user's question and answer with a single JSON object and nothing else:

{
  "intent": "factoid" | "analytical" | "comparison" | "general",
  "target_companies": ["<company>", ...],
  "is_competitor_query": true | false,
  "time_period": "<period or empty string>",
  "keywords": ["<term>", ...]
}

intent:
- factoid: a single fact about one company (a figure, a date, a name).
- analytical: reasoning over one company's business, risks or performance.
- comparison: two or more companies side by side, rankings, market share.
- general: anything else.

target_companies:
- Use the official Korean company name where you know it ("삼전" -> "삼성전자", "Hynix" -> "SK하이닉스").
- For a sector or "competitors of X", list the leading Korean companies you know of.
- At most 5 entries. Concrete company names only, never generic words.
- Return an empty list when no company is meant.

is_competitor_query: true when the question asks about competitors, rivals, rankings or comparisons.

time_period: the year or period the question is about ("2023", "최근 3년"), or "".

keywords: the key terms to search for, in the question's language.`
