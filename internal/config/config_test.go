package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"AVDIGEST_SOURCES", "AVDIGEST_ARTIFACT_ROOT", "AVDIGEST_ARCHIVE_BATCH_SIZE", "DATABASE_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SourcesPath != "./sources.json" {
		t.Errorf("SourcesPath = %q", cfg.SourcesPath)
	}
	if cfg.ArtifactRoot != "./artifacts" {
		t.Errorf("ArtifactRoot = %q", cfg.ArtifactRoot)
	}
	if cfg.ArchiveBatchSize != 200 {
		t.Errorf("ArchiveBatchSize = %d", cfg.ArchiveBatchSize)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AVDIGEST_SOURCES", "/etc/avdigest/sources.json")
	t.Setenv("AVDIGEST_ARTIFACT_ROOT", "/var/lib/avdigest")
	t.Setenv("AVDIGEST_ARCHIVE_BATCH_SIZE", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SourcesPath != "/etc/avdigest/sources.json" || cfg.ArtifactRoot != "/var/lib/avdigest" {
		t.Fatalf("overrides lost: %+v", cfg)
	}
	if cfg.ArchiveBatchSize != 50 {
		t.Fatalf("ArchiveBatchSize = %d", cfg.ArchiveBatchSize)
	}
}

func TestValidate_BatchSize(t *testing.T) {
	cfg := Config{SourcesPath: "s.json", ArtifactRoot: "a", ArchiveBatchSize: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for batch size < 1")
	}
}
