// Package recorder persists a history of report runs.
package recorder

import (
	"time"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

// RunRecord summarises one completed batch run.
type RunRecord struct {
	GeneratedAt  time.Time
	DocumentPath string
	SectionCount int
	SkippedCount int
}

// Recorder stores run history. Implementations must be safe for concurrent
// use.
type Recorder interface {
	RecordRun(run RunRecord, results []model.InstrumentResult) error
	Close() error
}

// NoopRecorder discards everything. Used when no database is configured.
type NoopRecorder struct{}

// NewNoopRecorder creates a recorder that drops all records.
func NewNoopRecorder() NoopRecorder { return NoopRecorder{} }

func (NoopRecorder) RecordRun(RunRecord, []model.InstrumentResult) error { return nil }
func (NoopRecorder) Close() error                                       { return nil }
