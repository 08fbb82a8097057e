package relevance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	sourceschema "tarmac.news/avdigest/schema"
)

// Mode selects how strict the per-profile score thresholds are.
type Mode string

const (
	ModeHighPrecision Mode = "high_precision"
	ModeBalanced      Mode = "balanced"
	ModeHighRecall    Mode = "high_recall"
)

// Profile categorizes a source and controls scoring strictness.
type Profile string

const (
	ProfileGeneralMedia  Profile = "general_media"
	ProfileIndustryMedia Profile = "industry_media"
	ProfileNewsroom      Profile = "newsroom"
	ProfileRegulator     Profile = "regulator"
	ProfileResearch      Profile = "research"
)

// thresholdKeySearchAPI is the distinct threshold bucket for aggregated
// search sources, which sit outside the profile taxonomy.
const thresholdKeySearchAPI = "search_api"

var scoreThresholdDefaults = map[Mode]map[string]int{
	ModeHighPrecision: {
		string(ProfileGeneralMedia):  75,
		string(ProfileIndustryMedia): 65,
		string(ProfileNewsroom):      55,
		string(ProfileRegulator):     55,
		string(ProfileResearch):      55,
		thresholdKeySearchAPI:        65,
	},
	ModeBalanced: {
		string(ProfileGeneralMedia):  68,
		string(ProfileIndustryMedia): 58,
		string(ProfileNewsroom):      50,
		string(ProfileRegulator):     50,
		string(ProfileResearch):      50,
		thresholdKeySearchAPI:        58,
	},
	ModeHighRecall: {
		string(ProfileGeneralMedia):  60,
		string(ProfileIndustryMedia): 50,
		string(ProfileNewsroom):      45,
		string(ProfileRegulator):     45,
		string(ProfileResearch):      45,
		thresholdKeySearchAPI:        52,
	},
}

// Settings is the immutable per-run configuration object. It is resolved
// once from the validated sources config and passed explicitly into every
// component, never held as ambient state.
type Settings struct {
	Mode       Mode
	WindowDays int
	Thresholds map[string]int

	CoreDomestic    []string
	CoreForeign     []string
	ContextDomestic []string
	ContextForeign  []string
	BrandDomestic   []string
	BrandForeign    []string
	ExcludeDomestic []string
	ExcludeForeign  []string

	RequireCompanySignalForGeneralMedia bool
	MaxGeneralMediaItemsPerSource       int
	EnableGeneralMediaSourceCap         bool

	PairRequireLevelContext bool
	PairRequireTruckContext bool

	AllowMissingPublished map[Profile]struct{}
	StrictTodayMode       bool
	StrictTodayLocation   *time.Location

	FastPassEnabled                 bool
	FastPassWindowHours             int
	FastPassTitleKeywords           []string
	FastPassRequireCompanyOrContext bool

	CompanyAliases []string
}

// SourceRule is the per-source configuration carried into the gate and the
// signal collector.
type SourceRule struct {
	Profile          Profile
	SourceType       string
	IncludeKeywords  []string
	ExcludeKeywords  []string
	URLAllowPatterns []string
	URLBlockPatterns []string
	MaxAgeHours      int
}

// ResolveSettings turns a validated config into runtime settings. The
// schema already rejected structurally invalid values; this applies
// defaults for absent keys and fails on values only resolvable at runtime
// (the time zone).
func ResolveSettings(cfg *sourceschema.SourcesConfig) (Settings, error) {
	defaults := cfg.Defaults

	mode := Mode(strings.ToLower(strings.TrimSpace(defaults.RelevanceMode)))
	if mode == "" {
		mode = ModeHighPrecision
	}
	base, ok := scoreThresholdDefaults[mode]
	if !ok {
		return Settings{}, fmt.Errorf("invalid relevance_mode: %q", defaults.RelevanceMode)
	}

	thresholds := make(map[string]int, len(base))
	for key, value := range base {
		thresholds[key] = value
	}
	for key, value := range defaults.RelevanceThresholds {
		thresholds[key] = value
	}

	core := defaults.CoreKeywordsDomestic
	if core == nil {
		core = defaults.DomesticKeywords
	}
	coreForeign := defaults.CoreKeywordsForeign
	if coreForeign == nil {
		coreForeign = defaults.ForeignKeywords
	}

	allowMissing := make(map[Profile]struct{})
	for _, raw := range defaults.AllowMissingPublishedProfiles {
		allowMissing[Profile(strings.ToLower(strings.TrimSpace(raw)))] = struct{}{}
	}
	if len(allowMissing) == 0 {
		allowMissing[ProfileRegulator] = struct{}{}
	}

	tzName := strings.TrimSpace(defaults.StrictTodayTimezone)
	if tzName == "" {
		tzName = "Asia/Shanghai"
	}
	location, err := time.LoadLocation(tzName)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid strict_today_timezone %q: %w", tzName, err)
	}

	fastPassZH := defaults.FastPassTitleKeywordsZH
	if fastPassZH == nil {
		fastPassZH = fastPassTitleKeywordsZHDefault
	}
	fastPassEN := defaults.FastPassTitleKeywordsEN
	if fastPassEN == nil {
		fastPassEN = fastPassTitleKeywordsENDefault
	}

	return Settings{
		Mode:       mode,
		WindowDays: intOrDefault(defaults.WindowDays, 10),
		Thresholds: thresholds,

		CoreDomestic:    NormalizeKeywords(core),
		CoreForeign:     NormalizeKeywords(coreForeign),
		ContextDomestic: NormalizeKeywords(defaults.ContextKeywordsDomestic),
		ContextForeign:  NormalizeKeywords(defaults.ContextKeywordsForeign),
		BrandDomestic:   NormalizeKeywords(defaults.BrandKeywordsDomestic),
		BrandForeign:    NormalizeKeywords(defaults.BrandKeywordsForeign),
		ExcludeDomestic: NormalizeKeywords(defaults.ExcludeKeywordsDomestic),
		ExcludeForeign:  NormalizeKeywords(defaults.ExcludeKeywordsForeign),

		RequireCompanySignalForGeneralMedia: boolOrDefault(defaults.RequireCompanySignalForGeneralMedia, true),
		MaxGeneralMediaItemsPerSource:       intOrDefault(defaults.MaxGeneralMediaItemsPerSource, 2),
		EnableGeneralMediaSourceCap:         boolOrDefault(defaults.EnableGeneralMediaSourceCap, false),

		PairRequireLevelContext: boolOrDefault(defaults.KeywordPairRules.RequireLevelWithAutonomousContext, true),
		PairRequireTruckContext: boolOrDefault(defaults.KeywordPairRules.RequireTruckWithAutonomousContext, true),

		AllowMissingPublished: allowMissing,
		StrictTodayMode:       boolOrDefault(defaults.StrictTodayMode, false),
		StrictTodayLocation:   location,

		FastPassEnabled:                 boolOrDefault(defaults.FastPassEnabled, true),
		FastPassWindowHours:             intOrDefault(defaults.FastPassWindowHours, 48),
		FastPassTitleKeywords:           NormalizeKeywords(append(append([]string{}, fastPassZH...), fastPassEN...)),
		FastPassRequireCompanyOrContext: boolOrDefault(defaults.FastPassRequireCompanyOrContext, true),

		CompanyAliases: buildCompanyAliases(cfg.Companies),
	}, nil
}

// ResolveSourceRules indexes the per-source configuration by source id.
func ResolveSourceRules(cfg *sourceschema.SourcesConfig) map[string]SourceRule {
	rules := make(map[string]SourceRule, len(cfg.Sources))
	for _, src := range cfg.Sources {
		id := strings.TrimSpace(src.ID)
		if id == "" {
			continue
		}
		rules[id] = SourceRule{
			Profile:          resolveProfile(src.SourceProfile, src.Category),
			SourceType:       sourceTypeOrDefault(src.SourceType),
			IncludeKeywords:  NormalizeKeywords(src.IncludeKeywords),
			ExcludeKeywords:  NormalizeKeywords(src.ExcludeKeywords),
			URLAllowPatterns: lowerNonEmpty(src.URLAllowPatterns),
			URLBlockPatterns: lowerNonEmpty(src.URLBlockPatterns),
			MaxAgeHours:      src.MaxAgeHours,
		}
	}
	return rules
}

// DefaultSourceRule covers items whose source id is unknown to the config:
// treat them as generic RSS media with no overrides.
func DefaultSourceRule() SourceRule {
	return SourceRule{
		Profile:    ProfileGeneralMedia,
		SourceType: "rss",
	}
}

func resolveProfile(profile, category string) Profile {
	switch Profile(strings.ToLower(strings.TrimSpace(profile))) {
	case ProfileGeneralMedia:
		return ProfileGeneralMedia
	case ProfileIndustryMedia:
		return ProfileIndustryMedia
	case ProfileNewsroom:
		return ProfileNewsroom
	case ProfileRegulator:
		return ProfileRegulator
	case ProfileResearch:
		return ProfileResearch
	}
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "media":
		return ProfileGeneralMedia
	case "newsroom":
		return ProfileNewsroom
	case "regulator":
		return ProfileRegulator
	case "research":
		return ProfileResearch
	}
	return ProfileIndustryMedia
}

func sourceTypeOrDefault(raw string) string {
	sourceType := strings.ToLower(strings.TrimSpace(raw))
	if sourceType == "" {
		return "rss"
	}
	return sourceType
}

// NormalizeKeywords lowercases, trims, drops empties, and returns a sorted
// deduplicated list.
func NormalizeKeywords(words []string) []string {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		text := strings.ToLower(strings.TrimSpace(word))
		if text == "" {
			continue
		}
		set[text] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for word := range set {
		out = append(out, word)
	}
	sort.Strings(out)
	return out
}

// buildCompanyAliases flattens the company directory into a matchable alias
// list. Single-character names are skipped: they match everything.
func buildCompanyAliases(companies []sourceschema.Company) []string {
	set := make(map[string]struct{})
	for _, company := range companies {
		name := strings.ToLower(strings.TrimSpace(company.Name))
		if len([]rune(name)) >= 2 {
			set[name] = struct{}{}
		}
		for _, alias := range company.Aliases {
			text := strings.ToLower(strings.TrimSpace(alias))
			if len([]rune(text)) >= 2 {
				set[text] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for alias := range set {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

func lowerNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		text := strings.ToLower(strings.TrimSpace(value))
		if text == "" {
			continue
		}
		out = append(out, text)
	}
	return out
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func intOrDefault(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}
