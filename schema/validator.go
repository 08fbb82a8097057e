// Package sourceschema admits the sources configuration file. Structurally
// invalid config is a fault and fails the run before any item is processed;
// defaults are applied downstream for absent keys only, never for
// present-but-invalid ones.
package sourceschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed sources.schema.json
var sourcesSchemaJSON string

// SourcesConfig is the typed sources.json document. Optional scalars are
// pointers so resolution can tell "absent" from "present".
type SourcesConfig struct {
	Defaults        Defaults                   `json:"defaults"`
	Companies       []Company                  `json:"companies"`
	Sources         []Source                   `json:"sources"`
	SearchProviders map[string]json.RawMessage `json:"search_providers"`
	QuerySets       map[string]json.RawMessage `json:"query_sets"`
}

type Company struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

type Source struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Region           string   `json:"region"`
	SourceType       string   `json:"source_type"`
	Category         string   `json:"category"`
	SourceProfile    string   `json:"source_profile"`
	SourceCompanyID  string   `json:"source_company_id"`
	IncludeKeywords  []string `json:"include_keywords"`
	ExcludeKeywords  []string `json:"exclude_keywords"`
	URLAllowPatterns []string `json:"url_allow_patterns"`
	URLBlockPatterns []string `json:"url_block_patterns"`
	MaxAgeHours      int      `json:"max_age_hours"`
	RSSURLs          []string `json:"rss_urls"`
	Provider         string   `json:"provider"`
	QuerySet         string   `json:"query_set"`
	EntryURLs        []string `json:"entry_urls"`
	Extractor        string   `json:"extractor"`
}

type PairRules struct {
	RequireLevelWithAutonomousContext *bool `json:"require_level_with_autonomous_context"`
	RequireTruckWithAutonomousContext *bool `json:"require_truck_with_autonomous_context"`
}

type Defaults struct {
	RelevanceMode       string         `json:"relevance_mode"`
	WindowDays          *int           `json:"window_days"`
	RelevanceThresholds map[string]int `json:"relevance_thresholds"`

	CoreKeywordsDomestic    []string `json:"core_keywords_domestic"`
	CoreKeywordsForeign     []string `json:"core_keywords_foreign"`
	DomesticKeywords        []string `json:"domestic_keywords"`
	ForeignKeywords         []string `json:"foreign_keywords"`
	ContextKeywordsDomestic []string `json:"context_keywords_domestic"`
	ContextKeywordsForeign  []string `json:"context_keywords_foreign"`
	BrandKeywordsDomestic   []string `json:"brand_keywords_domestic"`
	BrandKeywordsForeign    []string `json:"brand_keywords_foreign"`
	ExcludeKeywordsDomestic []string `json:"exclude_keywords_domestic"`
	ExcludeKeywordsForeign  []string `json:"exclude_keywords_foreign"`

	KeywordPairRules              PairRules `json:"keyword_pair_rules"`
	AllowMissingPublishedProfiles []string  `json:"allow_missing_published_profiles"`

	StrictTodayMode     *bool  `json:"strict_today_mode"`
	StrictTodayTimezone string `json:"strict_today_timezone"`

	RequireCompanySignalForGeneralMedia *bool `json:"require_company_signal_for_general_media"`
	MaxGeneralMediaItemsPerSource       *int  `json:"max_general_media_items_per_source"`
	EnableGeneralMediaSourceCap         *bool `json:"enable_general_media_source_cap"`

	FastPassEnabled                 *bool    `json:"fast_pass_enabled"`
	FastPassWindowHours             *int     `json:"fast_pass_window_hours"`
	FastPassTitleKeywordsZH         []string `json:"fast_pass_title_keywords_zh"`
	FastPassTitleKeywordsEN         []string `json:"fast_pass_title_keywords_en"`
	FastPassRequireCompanyOrContext *bool    `json:"fast_pass_require_company_or_context"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// LoadFile reads and validates a sources config file.
func LoadFile(path string) (*SourcesConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources config: %w", err)
	}
	cfg, err := ValidateSourcesConfig(raw)
	if err != nil {
		return nil, fmt.Errorf("sources config %s: %w", path, err)
	}
	return cfg, nil
}

// ValidateSourcesConfig validates a raw config document against the embedded
// schema plus the semantic rules the schema cannot express, and returns the
// typed form.
func ValidateSourcesConfig(payload json.RawMessage) (*SourcesConfig, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode config JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize config JSON: %w", err)
	}

	var cfg SourcesConfig
	if err := json.Unmarshal(normalized, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateSemantics(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("sources.schema.json", strings.NewReader(sourcesSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("sources.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("config is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config contains trailing content")
	}

	return value, nil
}

func validateSemantics(cfg *SourcesConfig) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	companyIDs := make(map[string]struct{}, len(cfg.Companies))
	for i, company := range cfg.Companies {
		id := strings.TrimSpace(company.ID)
		if id == "" {
			return fmt.Errorf("companies[%d] id is empty", i)
		}
		if _, exists := companyIDs[id]; exists {
			return fmt.Errorf("duplicate company id: %s", id)
		}
		companyIDs[id] = struct{}{}
	}

	sourceIDs := make(map[string]struct{}, len(cfg.Sources))
	for i, src := range cfg.Sources {
		id := strings.TrimSpace(src.ID)
		if id == "" {
			return fmt.Errorf("sources[%d] id is empty", i)
		}
		if _, exists := sourceIDs[id]; exists {
			return fmt.Errorf("duplicate source id: %s", id)
		}
		sourceIDs[id] = struct{}{}

		if company := strings.TrimSpace(src.SourceCompanyID); company != "" {
			if _, found := companyIDs[company]; !found {
				return fmt.Errorf("sources[%d] source_company_id not found in companies: %s", i, company)
			}
		}

		sourceType := strings.ToLower(strings.TrimSpace(src.SourceType))
		if sourceType == "" {
			sourceType = "rss"
		}
		switch sourceType {
		case "rss":
			if len(src.RSSURLs) == 0 {
				return fmt.Errorf("sources[%d] rss_urls must be a non-empty list", i)
			}
			for _, u := range src.RSSURLs {
				if !isHTTPURL(u) {
					return fmt.Errorf("sources[%d] invalid rss url: %s", i, u)
				}
			}
		case "search_api":
			provider := strings.TrimSpace(src.Provider)
			if _, found := cfg.SearchProviders[provider]; !found {
				return fmt.Errorf("sources[%d] provider not found: %s", i, provider)
			}
			querySet := strings.TrimSpace(src.QuerySet)
			if _, found := cfg.QuerySets[querySet]; !found {
				return fmt.Errorf("sources[%d] query_set not found: %s", i, querySet)
			}
		case "structured_web":
			if len(src.EntryURLs) == 0 {
				return fmt.Errorf("sources[%d] entry_urls must be a non-empty list", i)
			}
			for _, u := range src.EntryURLs {
				if !isHTTPURL(u) {
					return fmt.Errorf("sources[%d] invalid entry url: %s", i, u)
				}
			}
		}
	}

	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
