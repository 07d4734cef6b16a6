package model

import "time"

// WatchlistEntry is one instrument on the watchlist. Slice order is display
// order in the final report.
type WatchlistEntry struct {
	Symbol      string
	DisplayName string
}

// RatioRow is one row of the fixed six-row calculations table.
type RatioRow struct {
	Label string
	Value *float64
}

// ReportSection is the rendered output for one instrument. Immutable once
// built.
type ReportSection struct {
	Symbol    string
	Title     string
	ChartPath string
	Ratios    []RatioRow
	Income    StatementTable
	Balance   StatementTable
	Summary   StatementTable
}

// ReportDocument is the ordered collection of sections handed to assembly
// and delivery. Sections appear in watchlist order; skipped instruments are
// simply absent.
type ReportDocument struct {
	GeneratedAt time.Time
	WorkDir     string
	Sections    []ReportSection
}

// ResultStatus classifies a per-instrument outcome.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "SUCCESS"
	ResultSkipped ResultStatus = "SKIPPED"
)

// InstrumentResult is the per-instrument outcome of a batch run. A skipped
// instrument carries the reason and no section.
type InstrumentResult struct {
	Symbol  string
	Status  ResultStatus
	Reason  string
	Section *ReportSection
}
