package report

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/fundamentals"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

// ErrWorkingDirectory is returned when the per-run working directory cannot
// be created. Nothing can be produced without it, so the whole run aborts.
var ErrWorkingDirectory = errors.New("report: cannot create working directory")

// TechnicalsCollector supplies the price series with indicator columns for
// one watchlist symbol.
type TechnicalsCollector interface {
	Collect(symbol string) (*model.PriceSeries, error)
}

// ChartRenderer turns a price series into a PNG.
type ChartRenderer interface {
	Render(series *model.PriceSeries, title string) ([]byte, error)
}

// Orchestrator runs the per-instrument pipeline across a watchlist and
// assembles the ordered report document. Per-instrument data problems skip
// that instrument; structural problems abort the run.
type Orchestrator struct {
	Collector    TechnicalsCollector
	Fundamentals fundamentals.Source
	Renderer     ChartRenderer
	TmpBase      string
}

// NewOrchestrator wires a batch run. tmpBase defaults to the system temp
// directory.
func NewOrchestrator(col TechnicalsCollector, src fundamentals.Source, renderer ChartRenderer, tmpBase string) *Orchestrator {
	if tmpBase == "" {
		tmpBase = os.TempDir()
	}
	return &Orchestrator{
		Collector:    col,
		Fundamentals: src,
		Renderer:     renderer,
		TmpBase:      tmpBase,
	}
}

// Run processes every watchlist entry in order and returns the document plus
// a per-instrument result ledger. The document contains sections only for
// instruments that succeeded, in watchlist order.
func (o *Orchestrator) Run(watchlist []model.WatchlistEntry) (*model.ReportDocument, []model.InstrumentResult, error) {
	now := time.Now()
	workDir := filepath.Join(o.TmpBase, uuid.NewString()+"_scautoreport")
	if err := os.Mkdir(workDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrWorkingDirectory, err)
	}
	log.Printf("[INFO] Report run started, %d instruments, workdir %s", len(watchlist), workDir)

	doc := &model.ReportDocument{GeneratedAt: now, WorkDir: workDir}
	results := make([]model.InstrumentResult, 0, len(watchlist))

	for _, entry := range watchlist {
		section, skipReason, err := o.processInstrument(entry, workDir, now)
		if err != nil {
			return nil, nil, err
		}
		if skipReason != "" {
			log.Printf("[WARN] Skipping %s: %s", entry.Symbol, skipReason)
			results = append(results, model.InstrumentResult{
				Symbol: entry.Symbol,
				Status: model.ResultSkipped,
				Reason: skipReason,
			})
			continue
		}
		doc.Sections = append(doc.Sections, *section)
		results = append(results, model.InstrumentResult{
			Symbol:  entry.Symbol,
			Status:  model.ResultSuccess,
			Section: section,
		})
	}

	log.Printf("[INFO] Report run finished, %d sections, %d skipped",
		len(doc.Sections), len(results)-len(doc.Sections))
	return doc, results, nil
}

// processInstrument runs the fetch/compute/render/build pipeline for one
// entry. A non-empty skip reason means the instrument is dropped from the
// document; an error aborts the whole run.
func (o *Orchestrator) processInstrument(entry model.WatchlistEntry, workDir string, now time.Time) (*model.ReportSection, string, error) {
	series, err := o.Collector.Collect(entry.Symbol)
	if err != nil {
		return nil, fmt.Sprintf("price fetch failed: %v", err), nil
	}
	if series.Empty() {
		return nil, "no price data", nil
	}

	snap, err := fundamentals.Snapshot(o.Fundamentals, entry.Symbol)
	if err != nil {
		return nil, fmt.Sprintf("fundamentals fetch failed: %v", err), nil
	}

	chartTitle := fmt.Sprintf("%s (%s)", entry.DisplayName, entry.Symbol)
	png, err := o.Renderer.Render(series, chartTitle)
	if err != nil {
		return nil, "", fmt.Errorf("render chart for %s: %w", entry.Symbol, err)
	}

	chartPath := filepath.Join(workDir, fmt.Sprintf("%s_%s.png", entry.Symbol, now.Format("2006_01_02")))
	if err := os.WriteFile(chartPath, png, 0o644); err != nil {
		return nil, "", fmt.Errorf("write chart for %s: %w", entry.Symbol, err)
	}

	section, err := BuildSection(entry, snap, chartPath)
	if err != nil {
		return nil, "", err
	}
	return &section, "", nil
}
