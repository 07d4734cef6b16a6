package calculator

import (
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

// Stochastic oscillator parameters (standard 14/3).
const (
	stochasticKPeriod = 14
	stochasticDPeriod = 3
)

// SetStochasticOscillator computes %K over the trailing 14-bar high/low
// range and %D as its 3-period simple average, attaching both to the series.
// Leading entries are NaN until enough history exists. A flat 14-bar range
// yields a neutral 50. Recomputes from the bars on every call, so
// re-applying is idempotent.
func SetStochasticOscillator(s *model.PriceSeries) {
	n := len(s.Bars)
	k := nanSlice(n)

	for i := stochasticKPeriod - 1; i < n; i++ {
		hh := s.Bars[i-stochasticKPeriod+1].High
		ll := s.Bars[i-stochasticKPeriod+1].Low
		for j := i - stochasticKPeriod + 2; j <= i; j++ {
			if s.Bars[j].High > hh {
				hh = s.Bars[j].High
			}
			if s.Bars[j].Low < ll {
				ll = s.Bars[j].Low
			}
		}
		if hh == ll {
			k[i] = 50.0
			continue
		}
		k[i] = (s.Bars[i].Close - ll) / (hh - ll) * 100.0
	}

	s.StochasticK = k
	s.StochasticD = sma(k, stochasticDPeriod)
}
