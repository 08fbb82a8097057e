package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tarmac.news/avdigest/internal/artifact"
	"tarmac.news/avdigest/internal/canonical"
	"tarmac.news/avdigest/internal/cli"
	"tarmac.news/avdigest/internal/config"
	"tarmac.news/avdigest/internal/dedup"
	"tarmac.news/avdigest/internal/logging"
	"tarmac.news/avdigest/internal/relevance"
	sourceschema "tarmac.news/avdigest/schema"
)

func runFilter(args []string) int {
	fs := flag.NewFlagSet("filter", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	date := fs.String("date", "", "Run date YYYY-MM-DD (default: today in Asia/Shanghai)")
	inRoot := fs.String("in", "", "Canonical input root (default: <artifact root>/canonical)")
	outRoot := fs.String("out", "", "Filtered output root (default: <artifact root>/filtered)")
	sourcesPath := fs.String("sources", "", "Path to sources config (default: AVDIGEST_SOURCES)")
	reportRoot := fs.String("report", "", "Report root (default: <artifact root>/reports)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	sources := strings.TrimSpace(*sourcesPath)
	if sources == "" {
		sources = cfg.SourcesPath
	}

	// Invalid config fails the run before any item is touched.
	sourcesCfg, err := sourceschema.LoadFile(sources)
	if err != nil {
		logger.Error().Err(err).Str("path", sources).Msg("sources config rejected")
		return 1
	}

	engine, err := relevance.NewEngine(sourcesCfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("engine construction failed")
		return 1
	}

	runDate := strings.TrimSpace(*date)
	if runDate == "" {
		runDate = defaultRunDate()
	}

	inFile := filepath.Join(rootOr(*inRoot, cfg.ArtifactRoot, "canonical"), runDate, "canonical_items.jsonl")
	outDir := filepath.Join(rootOr(*outRoot, cfg.ArtifactRoot, "filtered"), runDate)
	keepFile := filepath.Join(outDir, "filtered_items.jsonl")
	dropFile := filepath.Join(outDir, "dropped_items.jsonl")
	reportFile := artifact.ReportPath(rootOr(*reportRoot, cfg.ArtifactRoot, "reports"), runDate)

	items, skipped, err := artifact.ReadJSONL[canonical.Item](inFile)
	if err != nil {
		logger.Error().Err(err).Str("path", inFile).Msg("read canonical items failed")
		return 1
	}
	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Str("path", inFile).Msg("skipped malformed canonical lines")
	}

	result := engine.Run(dedup.SortRecent(items), runDate)

	if err := artifact.WriteJSONL(keepFile, result.Kept); err != nil {
		logger.Error().Err(err).Str("path", keepFile).Msg("write filtered items failed")
		return 1
	}
	if err := artifact.WriteJSONL(dropFile, result.Dropped); err != nil {
		logger.Error().Err(err).Str("path", dropFile).Msg("write dropped items failed")
		return 1
	}

	stats := result.Stats
	stageStatus := artifact.StatusSuccess
	if stats.Kept == 0 {
		stageStatus = artifact.StatusPartial
	}

	if err := artifact.MarkStage(reportFile, "filter", stageStatus, map[string]any{
		"relevance_total_in":           stats.TotalIn,
		"relevance_kept":               stats.Kept,
		"relevance_dropped":            stats.Dropped,
		"relevance_pass_rate":          stats.PassRate,
		"relevance_precision_mode":     string(engine.Settings().Mode),
		"relevance_drop_by_reason":     stats.DropReasons,
		"relevance_drop_by_reason_zh":  stats.DropReasonsZH,
		"relevance_kept_by_source":     stats.KeptBySource,
		"published_missing_drop_count": stats.DropReasons[string(relevance.ReasonPublishedMissing)],
		"not_today_drop_count":         stats.DropReasons[string(relevance.ReasonNotToday)],
		"source_max_age_drop_count":    stats.DropReasons[string(relevance.ReasonSourceMaxAge)],
		"candidate_gate_drop_count":    stats.DropReasons[string(relevance.ReasonCandidateGateMiss)],
		"fast_pass_kept_count":         stats.FastPassKept,
		"fast_pass_drop_count":         stats.FastPassRejected,
		"stage2_scored_count":          stats.Stage2Scored,
		"stage2_kept_count":            stats.Stage2Kept,
		"filtered_output":              keepFile,
		"dropped_output":               dropFile,
	}); err != nil {
		logger.Error().Err(err).Msg("update run report failed")
		return 1
	}

	logger.Info().
		Str("run_date", runDate).
		Str("output", keepFile).
		Msg("filter complete")
	return 0
}
