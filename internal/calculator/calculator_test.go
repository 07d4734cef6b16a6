package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

func risingSeries(n int) *model.PriceSeries {
	bars := make([]model.OHLCV, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		c := 100.0 + float64(i)
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 10000,
		}
	}
	return &model.PriceSeries{Symbol: "TEST", Bars: bars}
}

func flatSeries(n int) *model.PriceSeries {
	bars := make([]model.OHLCV, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: 50, High: 50, Low: 50, Close: 50, Volume: 100}
	}
	return &model.PriceSeries{Symbol: "FLAT", Bars: bars}
}

func TestSetMACD_LeadingValuesUnavailable(t *testing.T) {
	s := risingSeries(60)
	SetMACD(s)

	if len(s.MACD) != 60 || len(s.MACDSignal) != 60 {
		t.Fatalf("columns not aligned with bars: macd=%d signal=%d", len(s.MACD), len(s.MACDSignal))
	}
	// MACD needs the slow EMA(26): defined from index 25.
	for i := 0; i < 25; i++ {
		if !math.IsNaN(s.MACD[i]) {
			t.Fatalf("MACD[%d] should be NaN, got %f", i, s.MACD[i])
		}
	}
	if math.IsNaN(s.MACD[25]) {
		t.Error("MACD[25] should be defined")
	}
	// Signal needs 9 MACD values on top: defined from index 33.
	for i := 0; i < 33; i++ {
		if !math.IsNaN(s.MACDSignal[i]) {
			t.Fatalf("MACDSignal[%d] should be NaN, got %f", i, s.MACDSignal[i])
		}
	}
	if math.IsNaN(s.MACDSignal[33]) {
		t.Error("MACDSignal[33] should be defined")
	}
}

func TestSetMACD_RisingMarketPositive(t *testing.T) {
	s := risingSeries(80)
	SetMACD(s)
	last := s.MACD[len(s.MACD)-1]
	if math.IsNaN(last) || last <= 0 {
		t.Errorf("expected positive MACD in a steadily rising market, got %f", last)
	}
}

func TestSetMACD_Idempotent(t *testing.T) {
	s := risingSeries(80)
	SetMACD(s)
	first := append([]float64(nil), s.MACD...)
	firstSig := append([]float64(nil), s.MACDSignal...)

	SetMACD(s)
	if len(s.MACD) != len(first) || len(s.MACDSignal) != len(firstSig) {
		t.Fatal("re-applying MACD changed column lengths")
	}
	for i := range first {
		if !sameValue(first[i], s.MACD[i]) || !sameValue(firstSig[i], s.MACDSignal[i]) {
			t.Fatalf("re-applying MACD drifted at index %d", i)
		}
	}
}

func TestSetStochasticOscillator_Bounds(t *testing.T) {
	s := risingSeries(60)
	SetStochasticOscillator(s)

	if len(s.StochasticK) != 60 || len(s.StochasticD) != 60 {
		t.Fatalf("columns not aligned with bars")
	}
	for i := 0; i < 13; i++ {
		if !math.IsNaN(s.StochasticK[i]) {
			t.Fatalf("StochasticK[%d] should be NaN, got %f", i, s.StochasticK[i])
		}
	}
	for i := 13; i < 60; i++ {
		if s.StochasticK[i] < 0 || s.StochasticK[i] > 100 {
			t.Fatalf("StochasticK[%d] out of bounds: %f", i, s.StochasticK[i])
		}
	}
	// Rising by 1/day with +-1 bar range: %K = 14/15*100.
	want := 14.0 / 15.0 * 100.0
	got := s.StochasticK[30]
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("StochasticK = %f, want %f", got, want)
	}
	// %D needs 3 %K values: defined from index 15.
	if !math.IsNaN(s.StochasticD[14]) {
		t.Error("StochasticD[14] should be NaN")
	}
	if math.IsNaN(s.StochasticD[15]) {
		t.Error("StochasticD[15] should be defined")
	}
}

func TestSetStochasticOscillator_FlatRangeNeutral(t *testing.T) {
	s := flatSeries(30)
	SetStochasticOscillator(s)
	if got := s.StochasticK[20]; got != 50.0 {
		t.Errorf("flat range should give neutral 50, got %f", got)
	}
}

func TestSetStochasticOscillator_Idempotent(t *testing.T) {
	s := risingSeries(40)
	SetStochasticOscillator(s)
	first := append([]float64(nil), s.StochasticK...)

	SetStochasticOscillator(s)
	for i := range first {
		if !sameValue(first[i], s.StochasticK[i]) {
			t.Fatalf("re-applying stochastic drifted at index %d", i)
		}
	}
}

func sameValue(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
