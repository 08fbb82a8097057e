package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tarmac.news/avdigest/internal/artifact"
	"tarmac.news/avdigest/internal/cli"
	"tarmac.news/avdigest/internal/config"
	"tarmac.news/avdigest/internal/dedup"
	"tarmac.news/avdigest/internal/logging"
	"tarmac.news/avdigest/internal/relevance"
)

// tier3BodyPrefix is how much of the body joins the title in the TF-IDF
// document; enough to separate stories, short enough that boilerplate
// footers do not dominate the vector.
const tier3BodyPrefix = 500

func runDedup(args []string) int {
	fs := flag.NewFlagSet("dedup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	date := fs.String("date", "", "Run date YYYY-MM-DD (default: today in Asia/Shanghai)")
	inRoot := fs.String("in", "", "Filtered input root (default: <artifact root>/filtered)")
	outRoot := fs.String("out", "", "Deduped output root (default: <artifact root>/deduped)")
	reportRoot := fs.String("report", "", "Report root (default: <artifact root>/reports)")
	threshold := fs.Float64("threshold", dedup.DefaultSimilarityThreshold, "Cosine similarity at or above which items are near-duplicates")

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

	if *threshold <= 0 || *threshold > 1 {
		logger.Error().Float64("threshold", *threshold).Msg("threshold must be in (0, 1]")
		return 1
	}

	runDate := strings.TrimSpace(*date)
	if runDate == "" {
		runDate = defaultRunDate()
	}

	inFile := filepath.Join(rootOr(*inRoot, cfg.ArtifactRoot, "filtered"), runDate, "filtered_items.jsonl")
	outFile := filepath.Join(rootOr(*outRoot, cfg.ArtifactRoot, "deduped"), runDate, "deduped_items.jsonl")
	reportFile := artifact.ReportPath(rootOr(*reportRoot, cfg.ArtifactRoot, "reports"), runDate)

	records, skipped, err := artifact.ReadJSONL[relevance.Record](inFile)
	if err != nil {
		logger.Error().Err(err).Str("path", inFile).Msg("read filtered items failed")
		return 1
	}
	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Str("path", inFile).Msg("skipped malformed filtered lines")
	}

	// Most-recent-first, so the newest telling of a story is the one kept.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PublishedAtUTC > records[j].PublishedAtUTC
	})

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Title + " " + firstRunes(record.Content, tier3BodyPrefix)
	}

	selected, droppedL3 := dedup.BySimilarity(texts, *threshold)
	deduped := make([]relevance.Record, 0, len(selected))
	for _, idx := range selected {
		deduped = append(deduped, records[idx])
	}

	if err := artifact.WriteJSONL(outFile, deduped); err != nil {
		logger.Error().Err(err).Str("path", outFile).Msg("write deduped items failed")
		return 1
	}

	report, err := artifact.LoadOrInitReport(reportFile)
	if err != nil {
		logger.Error().Err(err).Msg("load run report failed")
		return 1
	}
	dedupeTotal := artifact.IntFromReport(report, "dedupe_drop_count") + droppedL3

	if err := artifact.MarkStage(reportFile, "dedup", artifact.StatusSuccess, map[string]any{
		"dedupe_drop_count": dedupeTotal,
		"dedupe_l3":         droppedL3,
		"total_items_final": len(deduped),
		"deduped_output":    outFile,
	}); err != nil {
		logger.Error().Err(err).Msg("update run report failed")
		return 1
	}

	logger.Info().
		Str("run_date", runDate).
		Int("filtered", len(records)).
		Int("final", len(deduped)).
		Int("dedupe_l3", droppedL3).
		Str("output", outFile).
		Msg("dedup complete")
	return 0
}

func firstRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
