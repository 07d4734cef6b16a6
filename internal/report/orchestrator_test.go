package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/fundamentals"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

// fakeCollector returns canned series per symbol and records call order.
type fakeCollector struct {
	series map[string]*model.PriceSeries
	errs   map[string]error
	calls  []string
}

func (f *fakeCollector) Collect(symbol string) (*model.PriceSeries, error) {
	f.calls = append(f.calls, symbol)
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	if s, ok := f.series[symbol]; ok {
		return s, nil
	}
	return &model.PriceSeries{Symbol: symbol}, nil
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(_ *model.PriceSeries, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	// Not a real PNG; the orchestrator only persists the bytes.
	return []byte("png-bytes"), nil
}

func seriesWithBars(symbol string, n int) *model.PriceSeries {
	s := &model.PriceSeries{Symbol: symbol}
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		s.Bars = append(s.Bars, model.OHLCV{Time: start.AddDate(0, 0, i), Close: 100 + float64(i), Volume: 1000})
	}
	return s
}

func TestRun_SkipsAndOrdering(t *testing.T) {
	watch := []model.WatchlistEntry{
		{Symbol: "AAA", DisplayName: "Alpha"},
		{Symbol: "BBB", DisplayName: "Beta"},
		{Symbol: "CCC", DisplayName: "Gamma"},
	}
	col := &fakeCollector{
		series: map[string]*model.PriceSeries{
			"AAA": seriesWithBars("AAA", 200),
			"CCC": seriesWithBars("CCC", 200),
		},
		errs: map[string]error{},
	}
	orch := NewOrchestrator(col, &fundamentals.MockSource{Price: 269.4}, &fakeRenderer{}, t.TempDir())

	doc, results, err := orch.Run(watch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.RemoveAll(doc.WorkDir)

	// BBB has no bars so it is skipped; AAA and CCC keep watchlist order.
	if len(doc.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Symbol != "AAA" || doc.Sections[1].Symbol != "CCC" {
		t.Errorf("sections out of order: %s, %s", doc.Sections[0].Symbol, doc.Sections[1].Symbol)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[1].Status != model.ResultSkipped || results[1].Reason != "no price data" {
		t.Errorf("BBB result = %+v", results[1])
	}
	if results[0].Status != model.ResultSuccess || results[2].Status != model.ResultSuccess {
		t.Error("AAA and CCC should both succeed")
	}

	// Chart artefacts land in the working directory with the symbol and
	// run date in the name.
	wantName := "AAA_" + doc.GeneratedAt.Format("2006_01_02") + ".png"
	if filepath.Base(doc.Sections[0].ChartPath) != wantName {
		t.Errorf("chart file = %q, want %q", filepath.Base(doc.Sections[0].ChartPath), wantName)
	}
	if _, err := os.Stat(doc.Sections[0].ChartPath); err != nil {
		t.Errorf("chart file not written: %v", err)
	}
	if !strings.HasSuffix(doc.WorkDir, "_scautoreport") {
		t.Errorf("workdir = %q", doc.WorkDir)
	}
}

func TestRun_FundamentalsFailureSkips(t *testing.T) {
	watch := []model.WatchlistEntry{{Symbol: "AAA", DisplayName: "Alpha"}}
	col := &fakeCollector{
		series: map[string]*model.PriceSeries{"AAA": seriesWithBars("AAA", 200)},
		errs:   map[string]error{},
	}
	src := &fundamentals.MockSource{Err: errors.New("status 503")}
	orch := NewOrchestrator(col, src, &fakeRenderer{}, t.TempDir())

	doc, results, err := orch.Run(watch)
	if err != nil {
		t.Fatalf("fundamentals failure must not abort the run: %v", err)
	}
	defer os.RemoveAll(doc.WorkDir)

	if len(doc.Sections) != 0 {
		t.Errorf("expected no sections, got %d", len(doc.Sections))
	}
	if len(results) != 1 || results[0].Status != model.ResultSkipped {
		t.Fatalf("results = %+v", results)
	}
	if !strings.Contains(results[0].Reason, "fundamentals") {
		t.Errorf("reason = %q", results[0].Reason)
	}
	// The working directory exists even for an all-skip run.
	if _, err := os.Stat(doc.WorkDir); err != nil {
		t.Errorf("workdir missing: %v", err)
	}
}

func TestRun_CollectErrorSkips(t *testing.T) {
	watch := []model.WatchlistEntry{{Symbol: "AAA", DisplayName: "Alpha"}}
	col := &fakeCollector{errs: map[string]error{"AAA": errors.New("connection refused")}}
	orch := NewOrchestrator(col, &fundamentals.MockSource{Price: 1}, &fakeRenderer{}, t.TempDir())

	doc, results, err := orch.Run(watch)
	if err != nil {
		t.Fatalf("fetch failure must not abort the run: %v", err)
	}
	defer os.RemoveAll(doc.WorkDir)

	if len(results) != 1 || results[0].Status != model.ResultSkipped {
		t.Fatalf("results = %+v", results)
	}
	if !strings.Contains(results[0].Reason, "price fetch failed") {
		t.Errorf("reason = %q", results[0].Reason)
	}
}

func TestRun_RenderFailureAborts(t *testing.T) {
	watch := []model.WatchlistEntry{{Symbol: "AAA", DisplayName: "Alpha"}}
	col := &fakeCollector{series: map[string]*model.PriceSeries{"AAA": seriesWithBars("AAA", 200)}}
	orch := NewOrchestrator(col, &fundamentals.MockSource{Price: 1}, &fakeRenderer{err: errors.New("render blew up")}, t.TempDir())

	if _, _, err := orch.Run(watch); err == nil {
		t.Fatal("render failure must abort the run")
	}
}

func TestRun_WorkingDirectoryFailure(t *testing.T) {
	watch := []model.WatchlistEntry{{Symbol: "AAA", DisplayName: "Alpha"}}
	col := &fakeCollector{}
	orch := NewOrchestrator(col, &fundamentals.MockSource{Price: 1}, &fakeRenderer{}, filepath.Join(t.TempDir(), "does", "not", "exist"))

	_, _, err := orch.Run(watch)
	if !errors.Is(err, ErrWorkingDirectory) {
		t.Fatalf("expected ErrWorkingDirectory, got %v", err)
	}
	if len(col.calls) != 0 {
		t.Error("no instrument should be collected when the workdir cannot be created")
	}
}
