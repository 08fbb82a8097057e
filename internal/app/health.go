package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"tarmac.news/avdigest/internal/cli"
	"tarmac.news/avdigest/internal/config"
	"tarmac.news/avdigest/internal/logging"
	"tarmac.news/avdigest/internal/store"
	sourceschema "tarmac.news/avdigest/schema"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Second, "Database ping timeout")

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

	if _, err := sourceschema.LoadFile(cfg.SourcesPath); err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	if info, err := os.Stat(cfg.ArtifactRoot); err != nil || !info.IsDir() {
		logger.Error().Str("path", cfg.ArtifactRoot).Msg("artifact root is not a directory")
		fmt.Fprintf(os.Stderr, "Health check failed: artifact root %s is not a directory\n", cfg.ArtifactRoot)
		return 1
	}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()

		archive, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Error().Err(err).Msg("health check failed")
			fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
			return 1
		}
		defer archive.Close()

		if err := archive.Ping(ctx); err != nil {
			logger.Error().Err(err).Msg("health check failed")
			fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
			return 1
		}
		logger.Info().Dur("timeout", *timeout).Msg("archive database health check passed")
	}

	fmt.Println("ok: configuration and artifact roots healthy")
	return 0
}
