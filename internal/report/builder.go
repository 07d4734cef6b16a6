package report

import (
	"errors"
	"fmt"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

// ErrMissingFundamentals is returned when a section is requested without a
// fundamentals snapshot.
var ErrMissingFundamentals = errors.New("report: fundamentals snapshot required")

// ratioLabels is the fixed presentation order of the calculations table.
// Every section carries all six rows; unavailable values stay nil.
var ratioLabels = []string{
	"CURRENT RATIO",
	"ROCE",
	"EARNINGS YIELD % (TTM)",
	"NAV (£m)",
	"NAV PER SHARE (£)",
	"NAV PER SHARE AS % OF PRICE",
}

// BuildSection combines the chart artefact and the fundamentals snapshot
// into one instrument section.
func BuildSection(entry model.WatchlistEntry, snap *model.FundamentalsSnapshot, chartPath string) (model.ReportSection, error) {
	if snap == nil {
		return model.ReportSection{}, ErrMissingFundamentals
	}

	values := []*float64{
		snap.Ratios.CurrentRatio,
		snap.Ratios.ROCEPct,
		snap.Ratios.EarningsYieldPctTTM,
		snap.Ratios.NAV,
		snap.Ratios.NAVPerShare,
		snap.Ratios.NAVPerShareAsPctOfPrice,
	}
	rows := make([]model.RatioRow, len(ratioLabels))
	for i, label := range ratioLabels {
		rows[i] = model.RatioRow{Label: label, Value: values[i]}
	}

	return model.ReportSection{
		Symbol:    entry.Symbol,
		Title:     fmt.Sprintf("%s - %s (%.2f)", entry.Symbol, entry.DisplayName, snap.CurrentPrice),
		ChartPath: chartPath,
		Ratios:    rows,
		Income:    snap.Income,
		Balance:   snap.Balance,
		Summary:   snap.Summary,
	}, nil
}
