package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	SourcesPath  string `envconfig:"AVDIGEST_SOURCES" default:"./sources.json"`
	ArtifactRoot string `envconfig:"AVDIGEST_ARTIFACT_ROOT" default:"./artifacts"`

	// DatabaseURL enables the archive subcommand; empty means the run is
	// file-only and nothing is persisted beyond the artifact tree.
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`

	ArchiveBatchSize int `envconfig:"AVDIGEST_ARCHIVE_BATCH_SIZE" default:"200"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.SourcesPath) == "" {
		return fmt.Errorf("AVDIGEST_SOURCES is required")
	}
	if strings.TrimSpace(c.ArtifactRoot) == "" {
		return fmt.Errorf("AVDIGEST_ARTIFACT_ROOT is required")
	}
	if c.ArchiveBatchSize < 1 {
		return fmt.Errorf("AVDIGEST_ARCHIVE_BATCH_SIZE must be >= 1")
	}
	return nil
}
