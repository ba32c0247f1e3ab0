// Package store persists scan runs for later review. It is a pure
// collaborator: it receives annotated results after evaluation and
// holds no decision logic.
package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"options-scout/internal/models"
)

// Run describes one persisted scan.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Provider   string
	Candidates int
}

// RunStore persists and retrieves scan snapshots.
type RunStore interface {
	SaveRun(ctx context.Context, run Run, results []models.AnnotatedResult) error
	GetRun(ctx context.Context, runID string) (*Run, []models.AnnotatedResult, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// NewRunID generates a sortable, collision-resistant run identifier.
func NewRunID(now time.Time) string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("run-%s-%s", now.UTC().Format("20060102-150405"), hex.EncodeToString(suffix))
}
