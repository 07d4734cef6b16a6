package collector

import (
	"fmt"
	"strings"
	"time"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/calculator"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ string, days int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return GenerateMockBars(m.Price, days), nil
}

func (m *MockFetcher) FetchCurrentPrice(_ string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Price, nil
}

// GenerateMockBars produces a gently trending synthetic daily series ending today.
func GenerateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector assembles per-instrument technicals: it fetches daily price
// history and augments it with MACD and stochastic oscillator columns.
type Collector struct {
	Fetcher      Fetcher
	MarketSuffix string
	LookbackDays int
	FetchDays    int
}

// NewCollector creates a new Collector. fetchDays should exceed lookbackDays
// so indicators near the start of the kept window have history to warm up on.
func NewCollector(fetcher Fetcher, marketSuffix string, lookbackDays, fetchDays int) *Collector {
	return &Collector{
		Fetcher:      fetcher,
		MarketSuffix: marketSuffix,
		LookbackDays: lookbackDays,
		FetchDays:    fetchDays,
	}
}

// Collect fetches price history for one symbol and computes its indicators.
// The trailing lookback cutoff is applied after indicator computation. An
// instrument with no available data yields an empty series and no error.
func (c *Collector) Collect(symbol string) (*model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchDailyBars(c.QualifiedSymbol(symbol), c.FetchDays)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", symbol, err)
	}

	series := &model.PriceSeries{
		Symbol:    symbol,
		Bars:      bars,
		FetchedAt: time.Now(),
	}
	if series.Empty() {
		return series, nil
	}

	calculator.SetMACD(series)
	calculator.SetStochasticOscillator(series)
	series.TrimBefore(time.Now().AddDate(0, 0, -c.LookbackDays))
	return series, nil
}

// QualifiedSymbol appends the configured market suffix (e.g. SBRY -> SBRY.L)
// unless the symbol already carries one.
func (c *Collector) QualifiedSymbol(symbol string) string {
	if c.MarketSuffix == "" || strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + "." + c.MarketSuffix
}
