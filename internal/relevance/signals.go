package relevance

import (
	"sort"
	"strings"

	"tarmac.news/avdigest/internal/canonical"
)

// SignalVector is the per-item keyword evidence, one sorted deduplicated
// hit list per category. Recomputed every run, never persisted.
type SignalVector struct {
	CoreHits          []string
	CoreTitleHits     []string
	ContextHits       []string
	BrandHits         []string
	CompanyHits       []string
	SemanticHits      []string
	NegativeHits      []string
	ContextTermHits   []string
	LevelHits         []string
	TruckHits         []string
	FastPassTitleHits []string
	CandidateSignals  []string
}

// HasCandidateSignal reports whether the item carries any company, brand,
// context, or semantic evidence. Items without one never reach the scorer.
func (v SignalVector) HasCandidateSignal() bool {
	return len(v.CandidateSignals) > 0
}

// CollectSignals matches the configured keyword categories against the
// item's title and full text (title + body + source name), selecting the
// region-appropriate lists and folding in the per-source overrides.
func CollectSignals(item canonical.Item, rule SourceRule, settings Settings) SignalVector {
	textTitle := strings.ToLower(strings.TrimSpace(item.Title))
	textAll := strings.ToLower(strings.TrimSpace(item.Title) + " " + strings.TrimSpace(item.Content) + " " + strings.TrimSpace(item.SourceName))

	domestic := strings.ToLower(strings.TrimSpace(item.Region)) == "domestic"

	coreWords := settings.CoreForeign
	contextWords := settings.ContextForeign
	brandWords := settings.BrandForeign
	excludeWords := settings.ExcludeForeign
	if domestic {
		coreWords = settings.CoreDomestic
		contextWords = settings.ContextDomestic
		brandWords = settings.BrandDomestic
		excludeWords = settings.ExcludeDomestic
	}

	coreBucket := mergeKeywords(coreWords, rule.IncludeKeywords)
	excludeBucket := mergeKeywords(excludeWords, rule.ExcludeKeywords)

	vector := SignalVector{
		CoreHits:          KeywordHits(textAll, coreBucket),
		CoreTitleHits:     KeywordHits(textTitle, coreBucket),
		ContextHits:       KeywordHits(textAll, contextWords),
		BrandHits:         KeywordHits(textAll, brandWords),
		CompanyHits:       KeywordHits(textAll, settings.CompanyAliases),
		SemanticHits:      KeywordHits(textAll, semanticSignalTerms),
		NegativeHits:      KeywordHits(textAll, excludeBucket),
		ContextTermHits:   KeywordHits(textAll, autonomousContextTerms),
		LevelHits:         KeywordHits(textAll, levelTerms),
		TruckHits:         KeywordHits(textAll, truckTerms),
		FastPassTitleHits: KeywordHits(textTitle, settings.FastPassTitleKeywords),
	}

	vector.CandidateSignals = mergeKeywords(
		mergeKeywords(vector.CompanyHits, vector.BrandHits),
		mergeKeywords(vector.ContextHits, vector.SemanticHits),
	)
	return vector
}

// KeywordHits returns the sorted deduplicated subset of words present as
// literal substrings of text.
func KeywordHits(text string, words []string) []string {
	set := make(map[string]struct{})
	for _, word := range words {
		if word != "" && strings.Contains(text, word) {
			set[word] = struct{}{}
		}
	}
	hits := make([]string, 0, len(set))
	for word := range set {
		hits = append(hits, word)
	}
	sort.Strings(hits)
	return hits
}

func mergeKeywords(a, b []string) []string {
	return NormalizeKeywords(append(append([]string{}, a...), b...))
}
