package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"tarmac.news/avdigest/internal/globaltime"
)

// Report is the free-form per-date run report. Stages patch their own keys
// into it as they complete; the rendering/notification collaborators read
// it at the end of the day.
type Report map[string]any

// Stage status values.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusPartial = "partial"
)

var pipelineStages = []string{"canonicalize", "filter", "dedup", "archive"}

// ReportPath locates the run report for a date under the report root.
func ReportPath(root, date string) string {
	return filepath.Join(root, date, "run_report.json")
}

func defaultReport() Report {
	stageStatus := make(map[string]any, len(pipelineStages))
	for _, stage := range pipelineStages {
		stageStatus[stage] = StatusPending
	}
	return Report{
		"run_id":            uuid.NewString(),
		"generated_at_utc":  globaltime.UTC().Format("2006-01-02T15:04:05-07:00"),
		"stage_status":      stageStatus,
		"dedupe_drop_count": 0,
	}
}

// LoadOrInitReport reads the report at path, creating a fresh one on first
// touch.
func LoadOrInitReport(path string) (Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			report := defaultReport()
			if err := SaveReport(path, report); err != nil {
				return nil, err
			}
			return report, nil
		}
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}

	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return report, nil
}

// SaveReport writes the report to path, creating parent directories.
func SaveReport(path string, report Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// MarkStage records a stage status and merges extra keys in one update.
func MarkStage(path, stage, status string, extra map[string]any) error {
	report, err := LoadOrInitReport(path)
	if err != nil {
		return err
	}

	stageStatus, ok := report["stage_status"].(map[string]any)
	if !ok {
		stageStatus = make(map[string]any)
		report["stage_status"] = stageStatus
	}
	stageStatus[stage] = status

	for key, value := range extra {
		report[key] = value
	}
	return SaveReport(path, report)
}

// PatchReport merges extra keys into the report.
func PatchReport(path string, extra map[string]any) error {
	report, err := LoadOrInitReport(path)
	if err != nil {
		return err
	}
	for key, value := range extra {
		report[key] = value
	}
	return SaveReport(path, report)
}

// IntFromReport reads an integer counter out of a loaded report; JSON
// numbers arrive as float64.
func IntFromReport(report Report, key string) int {
	switch v := report[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
