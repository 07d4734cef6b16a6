package model

import (
	"time"
)

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds daily price data for one instrument plus derived
// indicator columns. The columns are aligned one-to-one with Bars; entries
// are NaN until enough history exists to compute them.
type PriceSeries struct {
	Symbol      string
	Bars        []OHLCV
	MACD        []float64
	MACDSignal  []float64
	StochasticK []float64
	StochasticD []float64
	FetchedAt   time.Time
}

// Empty reports whether the series has no bars.
func (s *PriceSeries) Empty() bool {
	return s == nil || len(s.Bars) == 0
}

// Closes returns the close column.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Times returns the timestamp column.
func (s *PriceSeries) Times() []time.Time {
	times := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		times[i] = b.Time
	}
	return times
}

// TrimBefore drops all bars (and aligned indicator values) with a timestamp
// at or before cutoff. Applied after indicator computation so that values
// near the start of the kept window benefit from the longer fetched history.
func (s *PriceSeries) TrimBefore(cutoff time.Time) {
	start := 0
	for start < len(s.Bars) && !s.Bars[start].Time.After(cutoff) {
		start++
	}
	s.Bars = s.Bars[start:]
	s.MACD = trimColumn(s.MACD, start)
	s.MACDSignal = trimColumn(s.MACDSignal, start)
	s.StochasticK = trimColumn(s.StochasticK, start)
	s.StochasticD = trimColumn(s.StochasticD, start)
}

func trimColumn(col []float64, start int) []float64 {
	if col == nil || start > len(col) {
		return nil
	}
	return col[start:]
}
