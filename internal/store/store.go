// Package store archives classification outcomes to Postgres. The pipeline
// itself is file-based and stateless; the archive is an optional sink for
// longer-horizon reporting, enabled by DATABASE_URL.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"tarmac.news/avdigest/internal/relevance"
)

// Decision is one archived item verdict. ItemID plus RunDate is the natural
// key: re-archiving a date overwrites that date's rows instead of
// duplicating them.
type Decision struct {
	ID        uint   `gorm:"primaryKey"`
	ItemID    string `gorm:"size:64;uniqueIndex:idx_decisions_item_run,priority:1;not null"`
	RunDate   string `gorm:"size:10;uniqueIndex:idx_decisions_item_run,priority:2;index;not null"`
	SourceID  string `gorm:"size:128;index"`
	Region    string `gorm:"size:16"`
	Title     string
	Link      string
	Language  string `gorm:"size:8"`
	Kept      bool   `gorm:"index"`
	Stage     string `gorm:"size:16"`
	Reason    string `gorm:"size:64;index"`
	Profile   string `gorm:"size:32"`
	Score     int
	Breakdown string `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RunStat is the archived aggregate for one run date.
type RunStat struct {
	ID           uint   `gorm:"primaryKey"`
	RunDate      string `gorm:"size:10;uniqueIndex;not null"`
	Mode         string `gorm:"size:32"`
	TotalIn      int
	Kept         int
	Dropped      int
	PassRate     float64
	FastPassKept int
	Stage2Scored int
	Stage2Kept   int
	DropReasons  string `gorm:"type:jsonb"`
	KeptBySource string `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store wraps the archive database handle.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the archive tables.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}
	if err := db.AutoMigrate(&Decision{}, &RunStat{}); err != nil {
		return nil, fmt.Errorf("migrate archive schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Ping verifies connectivity within the context deadline.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap archive database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping archive database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ArchiveDecisions upserts the run's records in batches and returns the
// number archived.
func (s *Store) ArchiveDecisions(ctx context.Context, runDate string, records []relevance.Record, batchSize int) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if batchSize < 1 {
		batchSize = 200
	}

	rows := make([]Decision, 0, len(records))
	for _, record := range records {
		breakdown, err := json.Marshal(record.ScoreBreakdown)
		if err != nil {
			return 0, fmt.Errorf("marshal breakdown for item %s: %w", record.ID, err)
		}
		rows = append(rows, Decision{
			ItemID:    record.ID,
			RunDate:   runDate,
			SourceID:  record.SourceID,
			Region:    record.Region,
			Title:     record.Title,
			Link:      record.Link,
			Language:  record.Language,
			Kept:      record.DropReason == "",
			Stage:     record.RelevanceStage,
			Reason:    record.RelevanceReason,
			Profile:   record.RelevanceProfile,
			Score:     record.RelevanceScore,
			Breakdown: string(breakdown),
		})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "item_id"}, {Name: "run_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"kept", "stage", "reason", "profile", "score", "breakdown", "updated_at",
			}),
		}).
		CreateInBatches(rows, batchSize).Error
	if err != nil {
		return 0, fmt.Errorf("archive decisions for %s: %w", runDate, err)
	}
	return len(rows), nil
}

// SaveRunStats upserts the aggregate row for a run date.
func (s *Store) SaveRunStats(ctx context.Context, runDate string, mode string, stats relevance.Stats) error {
	dropReasons, err := json.Marshal(stats.DropReasons)
	if err != nil {
		return fmt.Errorf("marshal drop reasons: %w", err)
	}
	keptBySource, err := json.Marshal(stats.KeptBySource)
	if err != nil {
		return fmt.Errorf("marshal kept by source: %w", err)
	}

	row := RunStat{
		RunDate:      runDate,
		Mode:         mode,
		TotalIn:      stats.TotalIn,
		Kept:         stats.Kept,
		Dropped:      stats.Dropped,
		PassRate:     stats.PassRate,
		FastPassKept: stats.FastPassKept,
		Stage2Scored: stats.Stage2Scored,
		Stage2Kept:   stats.Stage2Kept,
		DropReasons:  string(dropReasons),
		KeptBySource: string(keptBySource),
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "run_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mode", "total_in", "kept", "dropped", "pass_rate",
				"fast_pass_kept", "stage2_scored", "stage2_kept",
				"drop_reasons", "kept_by_source", "updated_at",
			}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save run stats for %s: %w", runDate, err)
	}
	return nil
}
