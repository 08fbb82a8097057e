package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tarmac.news/avdigest/internal/artifact"
	"tarmac.news/avdigest/internal/canonical"
	"tarmac.news/avdigest/internal/globaltime"
	"tarmac.news/avdigest/internal/relevance"
)

const pipelineSources = `{
  "defaults": {
    "core_keywords_domestic": ["萝卜快跑", "无人驾驶出租车"],
    "context_keywords_domestic": ["自动驾驶"]
  },
  "companies": [
    {"id": "baidu", "name": "百度", "aliases": ["萝卜快跑"]}
  ],
  "sources": [
    {
      "id": "rss_cn",
      "name": "行业快讯",
      "region": "domestic",
      "source_type": "rss",
      "source_profile": "industry_media",
      "rss_urls": ["https://cn.test/feed"]
    }
  ]
}`

func writePipelineEnv(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	sourcesPath := filepath.Join(root, "sources.json")
	if err := os.WriteFile(sourcesPath, []byte(pipelineSources), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AVDIGEST_ARTIFACT_ROOT", filepath.Join(root, "artifacts"))
	t.Setenv("AVDIGEST_SOURCES", sourcesPath)
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("LOG_LEVEL", "error")
	return filepath.Join(root, "artifacts")
}

func rawRecord(link, title, published string) canonical.RawRecord {
	return canonical.RawRecord{
		SourceID:   "rss_cn",
		SourceName: "行业快讯",
		SourceType: "rss",
		Region:     "domestic",
		Payload: canonical.RawPayload{
			Title:     title,
			Content:   title + "的详细报道内容。",
			Link:      link,
			Published: published,
		},
	}
}

func TestPipeline_CanonicalizeFilterDedup(t *testing.T) {
	globaltime.SetMockTime(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	defer globaltime.ResetTime()

	artifactRoot := writePipelineEnv(t)
	const runDate = "2026-08-28"

	raw := []canonical.RawRecord{
		rawRecord("https://cn.test/news/ride?utm_source=rss", "萝卜快跑无人驾驶出租车扩大自动驾驶运营", "2026-08-28T08:00:00+00:00"),
		rawRecord("https://cn.test/news/ride", "萝卜快跑无人驾驶出租车扩大自动驾驶运营范围", "2026-08-28T07:00:00+00:00"),
		rawRecord("https://cn.test/news/phones", "第二季度手机销量增长", "2026-08-28T06:00:00+00:00"),
	}
	rawFile := filepath.Join(artifactRoot, "raw", runDate, "raw_items.jsonl")
	if err := artifact.WriteJSONL(rawFile, raw); err != nil {
		t.Fatal(err)
	}

	if code := runCanonicalize([]string{"-date", runDate}); code != 0 {
		t.Fatalf("canonicalize exit code = %d", code)
	}
	canonicalFile := filepath.Join(artifactRoot, "canonical", runDate, "canonical_items.jsonl")
	items, _, err := artifact.ReadJSONL[canonical.Item](canonicalFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("canonical items = %d, want 2 after link dedup", len(items))
	}

	if code := runFilter([]string{"-date", runDate}); code != 0 {
		t.Fatalf("filter exit code = %d", code)
	}
	kept, _, err := artifact.ReadJSONL[relevance.Record](filepath.Join(artifactRoot, "filtered", runDate, "filtered_items.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	dropped, _, err := artifact.ReadJSONL[relevance.Record](filepath.Join(artifactRoot, "filtered", runDate, "dropped_items.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if len(kept) != 1 || len(dropped) != 1 {
		t.Fatalf("kept=%d dropped=%d", len(kept), len(dropped))
	}
	if dropped[0].DropReason != string(relevance.ReasonCandidateGateMiss) {
		t.Fatalf("drop_reason = %q", dropped[0].DropReason)
	}

	if code := runDedup([]string{"-date", runDate}); code != 0 {
		t.Fatalf("dedup exit code = %d", code)
	}
	final, _, err := artifact.ReadJSONL[relevance.Record](filepath.Join(artifactRoot, "deduped", runDate, "deduped_items.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if len(final) != 1 {
		t.Fatalf("final items = %d, want 1", len(final))
	}

	report, err := artifact.LoadOrInitReport(artifact.ReportPath(filepath.Join(artifactRoot, "reports"), runDate))
	if err != nil {
		t.Fatal(err)
	}
	if got := artifact.IntFromReport(report, "dedupe_l1"); got != 1 {
		t.Errorf("dedupe_l1 = %d, want 1", got)
	}
	if got := artifact.IntFromReport(report, "relevance_kept"); got != 1 {
		t.Errorf("relevance_kept = %d, want 1", got)
	}
	if got := artifact.IntFromReport(report, "total_items_final"); got != 1 {
		t.Errorf("total_items_final = %d, want 1", got)
	}
	stages, ok := report["stage_status"].(map[string]any)
	if !ok {
		t.Fatalf("stage_status = %T", report["stage_status"])
	}
	for _, stage := range []string{"canonicalize", "filter", "dedup"} {
		if stages[stage] != artifact.StatusSuccess {
			t.Errorf("stage %s = %v, want success", stage, stages[stage])
		}
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	if code := Run([]string{"replicate"}); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if code := Run(nil); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if code := Run([]string{"help"}); code != 0 {
		t.Fatalf("help exit code = %d, want 0", code)
	}
}
