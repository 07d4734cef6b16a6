package calculator

import (
	"math"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

// MACD parameters (standard 12/26/9).
const (
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
)

// SetMACD computes the MACD line (EMA12 - EMA26) and its 9-period signal
// line and attaches them to the series. Leading entries are NaN until enough
// history exists. Recomputes from the bars on every call, so re-applying is
// idempotent.
func SetMACD(s *model.PriceSeries) {
	closes := s.Closes()
	fast := ema(closes, macdFastPeriod)
	slow := ema(closes, macdSlowPeriod)

	macd := nanSlice(len(closes))
	for i := range closes {
		if !math.IsNaN(fast[i]) && !math.IsNaN(slow[i]) {
			macd[i] = fast[i] - slow[i]
		}
	}

	s.MACD = macd
	s.MACDSignal = ema(macd, macdSignalPeriod)
}
