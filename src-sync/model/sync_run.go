package model

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// One row per sync run: enough to audit when the schedule last changed and
// how noisy the feed was. History only; the schedule itself never reads it.
type SyncRun struct {
	bun.BaseModel `bun:"table:sync_runs"`

	ID         string `bun:"id,pk"`                 // required
	StartedAt  int64  `bun:"started_at,notnull"`    // required, unix seconds
	DurationMs int64  `bun:"duration_ms"`
	FeedURL    string `bun:"feed_url"`
	FeedHash   string `bun:"feed_hash"`

	EventCount      int `bun:"event_count"`
	OccurrenceCount int `bun:"occurrence_count"`
	UpcomingCount   int `bun:"upcoming_count"`
	WarningCount    int `bun:"warning_count"`

	OutputPath string `bun:"output_path"`
}

func (r *SyncRun) Insert(ctx context.Context, db bun.IDB) error {
	if db == nil {
		return fmt.Errorf("(*SyncRun).Insert: db is nil")
	}

	// validate
	switch {
	case r.ID == "":
		return fmt.Errorf("(*SyncRun).Insert: run id is blank")
	case r.StartedAt == 0:
		return fmt.Errorf("(*SyncRun).Insert: started at is blank")
	}

	if _, err := db.NewInsert().
		Model(r).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*SyncRun).Insert: can't insert run: %w", err)
	}

	return nil
}
