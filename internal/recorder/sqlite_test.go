package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

func TestRecordRun(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	defer r.Close()

	run := RunRecord{
		GeneratedAt:  time.Now(),
		DocumentPath: "/tmp/run/spongecake_2026-08-28.pdf",
		SectionCount: 2,
		SkippedCount: 1,
	}
	results := []model.InstrumentResult{
		{Symbol: "AAA", Status: model.ResultSuccess},
		{Symbol: "BBB", Status: model.ResultSkipped, Reason: "no price data"},
		{Symbol: "CCC", Status: model.ResultSuccess},
	}
	if err := r.RecordRun(run, results); err != nil {
		t.Fatalf("record run: %v", err)
	}

	var runCount, resultCount int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM report_runs").Scan(&runCount); err != nil {
		t.Fatal(err)
	}
	if runCount != 1 {
		t.Errorf("report_runs rows = %d, want 1", runCount)
	}
	if err := r.db.QueryRow("SELECT COUNT(*) FROM instrument_results").Scan(&resultCount); err != nil {
		t.Fatal(err)
	}
	if resultCount != 3 {
		t.Errorf("instrument_results rows = %d, want 3", resultCount)
	}

	var reason string
	if err := r.db.QueryRow("SELECT reason FROM instrument_results WHERE symbol = 'BBB'").Scan(&reason); err != nil {
		t.Fatal(err)
	}
	if reason != "no price data" {
		t.Errorf("skip reason = %q", reason)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	for i := 0; i < 2; i++ {
		r, err := NewSQLiteRecorder(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		r.Close()
	}
}
