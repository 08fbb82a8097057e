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
)

func runCanonicalize(args []string) int {
	fs := flag.NewFlagSet("canonicalize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	date := fs.String("date", "", "Run date YYYY-MM-DD (default: today in Asia/Shanghai)")
	inRoot := fs.String("in", "", "Raw input root (default: <artifact root>/raw)")
	outRoot := fs.String("out", "", "Canonical output root (default: <artifact root>/canonical)")
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

	runDate := strings.TrimSpace(*date)
	if runDate == "" {
		runDate = defaultRunDate()
	}

	inFile := filepath.Join(rootOr(*inRoot, cfg.ArtifactRoot, "raw"), runDate, "raw_items.jsonl")
	outFile := filepath.Join(rootOr(*outRoot, cfg.ArtifactRoot, "canonical"), runDate, "canonical_items.jsonl")
	reportFile := artifact.ReportPath(rootOr(*reportRoot, cfg.ArtifactRoot, "reports"), runDate)

	rows, skipped, err := artifact.ReadJSONL[canonical.RawRecord](inFile)
	if err != nil {
		logger.Error().Err(err).Str("path", inFile).Msg("read raw items failed")
		return 1
	}
	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Str("path", inFile).Msg("skipped malformed raw lines")
	}

	items := make([]canonical.Item, 0, len(rows))
	rejected := 0
	for _, row := range rows {
		item, err := canonical.FromRaw(row)
		if err != nil {
			rejected++
			logger.Debug().Err(err).Str("source_id", row.SourceID).Msg("raw record rejected")
			continue
		}
		items = append(items, item)
	}

	sorted := dedup.SortRecent(items)
	byURL, droppedL1 := dedup.ByURL(sorted)
	byTitle, droppedL2 := dedup.ByTitle(byURL)

	if err := artifact.WriteJSONL(outFile, byTitle); err != nil {
		logger.Error().Err(err).Str("path", outFile).Msg("write canonical items failed")
		return 1
	}

	bySource := make(map[string]int, len(byTitle))
	for _, item := range byTitle {
		bySource[item.SourceID]++
	}

	report, err := artifact.LoadOrInitReport(reportFile)
	if err != nil {
		logger.Error().Err(err).Msg("load run report failed")
		return 1
	}
	dedupeTotal := artifact.IntFromReport(report, "dedupe_drop_count") + droppedL1 + droppedL2

	if err := artifact.MarkStage(reportFile, "canonicalize", artifact.StatusSuccess, map[string]any{
		"total_items_canonical": len(byTitle),
		"canonicalize_rejected": rejected,
		"dedupe_drop_count":     dedupeTotal,
		"dedupe_l1":             droppedL1,
		"dedupe_l2":             droppedL2,
		"canonical_output":      outFile,
		"canonical_by_source":   bySource,
	}); err != nil {
		logger.Error().Err(err).Msg("update run report failed")
		return 1
	}

	logger.Info().
		Str("run_date", runDate).
		Int("raw", len(rows)).
		Int("canonical", len(byTitle)).
		Int("rejected", rejected).
		Int("dedupe_l1", droppedL1).
		Int("dedupe_l2", droppedL2).
		Str("output", outFile).
		Msg("canonicalize complete")
	return 0
}

func rootOr(flagValue, artifactRoot, sub string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	return filepath.Join(artifactRoot, sub)
}
