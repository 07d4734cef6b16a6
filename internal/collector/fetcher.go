package collector

import "github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"

// Fetcher defines the interface for fetching price history. An instrument
// with no available data yields an empty bar slice, not an error; errors are
// reserved for transport failures.
type Fetcher interface {
	FetchDailyBars(symbol string, days int) ([]model.OHLCV, error)
	FetchCurrentPrice(symbol string) (float64, error)
	Name() string
}
