package sourceschema

import (
	"os"
	"path/filepath"
	"testing"
)

const validConfig = `{
  "defaults": {
    "relevance_mode": "high_precision",
    "window_days": 10,
    "relevance_thresholds": {"general_media": 75},
    "core_keywords_foreign": ["robotaxi"],
    "strict_today_mode": false
  },
  "companies": [
    {"id": "waymo", "name": "Waymo", "aliases": ["Waymo LLC"]}
  ],
  "sources": [
    {
      "id": "rss_waymo",
      "name": "Waymo Blog",
      "region": "foreign",
      "source_type": "rss",
      "source_profile": "newsroom",
      "source_company_id": "waymo",
      "rss_urls": ["https://waymo.test/feed.xml"]
    },
    {
      "id": "search_news",
      "region": "foreign",
      "source_type": "search_api",
      "provider": "newsapi",
      "query_set": "robotaxi_en"
    },
    {
      "id": "gov_press",
      "region": "domestic",
      "source_type": "structured_web",
      "source_profile": "regulator",
      "entry_urls": ["https://gov.test/press"],
      "extractor": "css_selector"
    }
  ],
  "search_providers": {"newsapi": {"endpoint": "https://newsapi.test/v2"}},
  "query_sets": {"robotaxi_en": {"queries": ["robotaxi"]}}
}`

func TestValidateSourcesConfig_Valid(t *testing.T) {
	cfg, err := ValidateSourcesConfig([]byte(validConfig))
	if err != nil {
		t.Fatalf("ValidateSourcesConfig: %v", err)
	}
	if len(cfg.Companies) != 1 || len(cfg.Sources) != 3 {
		t.Fatalf("companies=%d sources=%d", len(cfg.Companies), len(cfg.Sources))
	}
	if cfg.Defaults.WindowDays == nil || *cfg.Defaults.WindowDays != 10 {
		t.Fatalf("window_days = %v", cfg.Defaults.WindowDays)
	}
	if cfg.Defaults.StrictTodayMode == nil || *cfg.Defaults.StrictTodayMode {
		t.Fatalf("strict_today_mode = %v", cfg.Defaults.StrictTodayMode)
	}
}

func TestValidateSourcesConfig_Rejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "sources:"},
		{"trailing content", `{"companies": [], "sources": []} {}`},
		{"missing sources", `{"companies": []}`},
		{"bad relevance mode", `{
			"defaults": {"relevance_mode": "loose"},
			"companies": [], "sources": []
		}`},
		{"threshold out of range", `{
			"defaults": {"relevance_thresholds": {"newsroom": 250}},
			"companies": [], "sources": []
		}`},
		{"unknown threshold key", `{
			"defaults": {"relevance_thresholds": {"blogs": 50}},
			"companies": [], "sources": []
		}`},
		{"unknown defaults key", `{
			"defaults": {"relevance_threshold": 75},
			"companies": [], "sources": []
		}`},
		{"bad region", `{
			"companies": [],
			"sources": [{"id": "a", "region": "emea", "rss_urls": ["https://a.test/f"]}]
		}`},
		{"source missing region", `{
			"companies": [],
			"sources": [{"id": "a", "rss_urls": ["https://a.test/f"]}]
		}`},
		{"rss without urls", `{
			"companies": [],
			"sources": [{"id": "a", "region": "foreign", "source_type": "rss"}]
		}`},
		{"rss with bad url", `{
			"companies": [],
			"sources": [{"id": "a", "region": "foreign", "rss_urls": ["ftp://a.test/f"]}]
		}`},
		{"duplicate source id", `{
			"companies": [],
			"sources": [
				{"id": "a", "region": "foreign", "rss_urls": ["https://a.test/f"]},
				{"id": "a", "region": "foreign", "rss_urls": ["https://b.test/f"]}
			]
		}`},
		{"duplicate company id", `{
			"companies": [
				{"id": "x", "name": "X"},
				{"id": "x", "name": "X2"}
			],
			"sources": []
		}`},
		{"dangling company reference", `{
			"companies": [],
			"sources": [{
				"id": "a", "region": "foreign", "source_company_id": "ghost",
				"rss_urls": ["https://a.test/f"]
			}]
		}`},
		{"search api unknown provider", `{
			"companies": [],
			"sources": [{
				"id": "a", "region": "foreign", "source_type": "search_api",
				"provider": "ghost", "query_set": "qs"
			}],
			"query_sets": {"qs": {}}
		}`},
		{"search api unknown query set", `{
			"companies": [],
			"sources": [{
				"id": "a", "region": "foreign", "source_type": "search_api",
				"provider": "p", "query_set": "ghost"
			}],
			"search_providers": {"p": {}}
		}`},
		{"structured web without entries", `{
			"companies": [],
			"sources": [{"id": "a", "region": "foreign", "source_type": "structured_web"}]
		}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ValidateSourcesConfig([]byte(tc.raw)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.json")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Sources[0].ID != "rss_waymo" {
		t.Fatalf("unexpected first source: %+v", cfg.Sources[0])
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
