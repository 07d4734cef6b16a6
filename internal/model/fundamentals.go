package model

// Ratios holds the six calculated line items shown in every report section.
// A nil field means the value was unavailable from the source; the row is
// still rendered so the table shape is constant across instruments.
type Ratios struct {
	CurrentRatio            *float64
	ROCEPct                 *float64
	EarningsYieldPctTTM     *float64
	NAV                     *float64
	NAVPerShare             *float64
	NAVPerShareAsPctOfPrice *float64
}

// StatementTable is a free-form financial statement table as published by
// the fundamentals source.
type StatementTable struct {
	Title  string
	Header []string
	Rows   [][]string
}

// FundamentalsSnapshot is everything the fundamentals source knows about one
// instrument at fetch time.
type FundamentalsSnapshot struct {
	Symbol       string
	CurrentPrice float64
	Ratios       Ratios
	Income       StatementTable
	Balance      StatementTable
	Summary      StatementTable
}
