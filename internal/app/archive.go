package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tarmac.news/avdigest/internal/artifact"
	"tarmac.news/avdigest/internal/cli"
	"tarmac.news/avdigest/internal/config"
	"tarmac.news/avdigest/internal/logging"
	"tarmac.news/avdigest/internal/relevance"
	"tarmac.news/avdigest/internal/store"
)

func runArchive(args []string) int {
	fs := flag.NewFlagSet("archive", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	date := fs.String("date", "", "Run date YYYY-MM-DD (default: today in Asia/Shanghai)")
	inRoot := fs.String("in", "", "Filtered input root (default: <artifact root>/filtered)")
	reportRoot := fs.String("report", "", "Report root (default: <artifact root>/reports)")
	timeout := fs.Duration("timeout", 60*time.Second, "Database operation timeout")

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

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Error().Msg("DATABASE_URL is required for archive")
		return 1
	}

	runDate := strings.TrimSpace(*date)
	if runDate == "" {
		runDate = defaultRunDate()
	}

	inDir := filepath.Join(rootOr(*inRoot, cfg.ArtifactRoot, "filtered"), runDate)
	keepFile := filepath.Join(inDir, "filtered_items.jsonl")
	dropFile := filepath.Join(inDir, "dropped_items.jsonl")
	reportFile := artifact.ReportPath(rootOr(*reportRoot, cfg.ArtifactRoot, "reports"), runDate)

	kept, _, err := artifact.ReadJSONL[relevance.Record](keepFile)
	if err != nil {
		logger.Error().Err(err).Str("path", keepFile).Msg("read filtered items failed")
		return 1
	}
	dropped, _, err := artifact.ReadJSONL[relevance.Record](dropFile)
	if err != nil {
		logger.Error().Err(err).Str("path", dropFile).Msg("read dropped items failed")
		return 1
	}
	if len(kept) == 0 && len(dropped) == 0 {
		logger.Warn().Str("run_date", runDate).Msg("nothing to archive")
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	archive, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error().Err(err).Msg("open archive failed")
		return 1
	}
	defer archive.Close()

	records := append(append([]relevance.Record{}, kept...), dropped...)
	archived, err := archive.ArchiveDecisions(ctx, runDate, records, cfg.ArchiveBatchSize)
	if err != nil {
		logger.Error().Err(err).Msg("archive decisions failed")
		return 1
	}

	report, err := artifact.LoadOrInitReport(reportFile)
	if err != nil {
		logger.Error().Err(err).Msg("load run report failed")
		return 1
	}

	stats := relevance.Stats{
		TotalIn:      artifact.IntFromReport(report, "relevance_total_in"),
		Kept:         artifact.IntFromReport(report, "relevance_kept"),
		Dropped:      artifact.IntFromReport(report, "relevance_dropped"),
		FastPassKept: artifact.IntFromReport(report, "fast_pass_kept_count"),
		Stage2Scored: artifact.IntFromReport(report, "stage2_scored_count"),
		Stage2Kept:   artifact.IntFromReport(report, "stage2_kept_count"),
		DropReasons:  make(map[string]int),
		KeptBySource: make(map[string]int),
	}
	if stats.TotalIn > 0 {
		stats.PassRate = float64(stats.Kept) / float64(stats.TotalIn) * 100
	}
	for _, record := range kept {
		stats.KeptBySource[record.SourceID]++
	}
	for _, record := range dropped {
		stats.DropReasons[record.DropReason]++
	}

	mode, _ := report["relevance_precision_mode"].(string)
	if err := archive.SaveRunStats(ctx, runDate, mode, stats); err != nil {
		logger.Error().Err(err).Msg("save run stats failed")
		return 1
	}

	if err := artifact.MarkStage(reportFile, "archive", artifact.StatusSuccess, map[string]any{
		"archived_decisions": archived,
	}); err != nil {
		logger.Error().Err(err).Msg("update run report failed")
		return 1
	}

	logger.Info().
		Str("run_date", runDate).
		Int("archived", archived).
		Msg("archive complete")
	return 0
}
