package artifact

import (
	"path/filepath"
	"testing"
)

func TestLoadOrInitReport_FreshReport(t *testing.T) {
	path := ReportPath(t.TempDir(), "2026-08-28")

	report, err := LoadOrInitReport(path)
	if err != nil {
		t.Fatalf("LoadOrInitReport: %v", err)
	}
	if report["run_id"] == "" || report["run_id"] == nil {
		t.Fatal("fresh report has no run_id")
	}
	stages, ok := report["stage_status"].(map[string]any)
	if !ok {
		t.Fatalf("stage_status = %T", report["stage_status"])
	}
	for _, stage := range []string{"canonicalize", "filter", "dedup", "archive"} {
		if stages[stage] != StatusPending {
			t.Errorf("stage %s = %v, want pending", stage, stages[stage])
		}
	}

	again, err := LoadOrInitReport(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again["run_id"] != report["run_id"] {
		t.Fatal("run_id changed between loads")
	}
}

func TestMarkStageAndPatch(t *testing.T) {
	path := ReportPath(t.TempDir(), "2026-08-28")

	if err := MarkStage(path, "filter", StatusSuccess, map[string]any{"relevance_kept": 7}); err != nil {
		t.Fatalf("MarkStage: %v", err)
	}
	if err := PatchReport(path, map[string]any{"total_items_final": 5}); err != nil {
		t.Fatalf("PatchReport: %v", err)
	}

	report, err := LoadOrInitReport(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	stages := report["stage_status"].(map[string]any)
	if stages["filter"] != StatusSuccess {
		t.Errorf("filter = %v", stages["filter"])
	}
	if stages["dedup"] != StatusPending {
		t.Errorf("dedup = %v", stages["dedup"])
	}
	if got := IntFromReport(report, "relevance_kept"); got != 7 {
		t.Errorf("relevance_kept = %d", got)
	}
	if got := IntFromReport(report, "total_items_final"); got != 5 {
		t.Errorf("total_items_final = %d", got)
	}
	if got := IntFromReport(report, "absent_key"); got != 0 {
		t.Errorf("absent key = %d, want 0", got)
	}
}

func TestReportPath(t *testing.T) {
	got := ReportPath("/var/artifacts", "2026-08-28")
	want := filepath.Join("/var/artifacts", "2026-08-28", "run_report.json")
	if got != want {
		t.Fatalf("ReportPath = %q, want %q", got, want)
	}
}
