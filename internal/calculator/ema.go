package calculator

import "math"

// sma computes the simple moving average of values[i-period+1 .. i] for each
// index, NaN while fewer than period values (or period NaN-free values) are
// available.
func sma(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	first := firstValid(values)
	if first < 0 {
		return out
	}
	for i := first + period - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// ema computes the exponential moving average, seeded with the simple
// average of the first period valid values. Leading entries (and any leading
// NaN run in the input) stay NaN.
func ema(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	first := firstValid(values)
	if first < 0 || first+period > len(values) {
		return out
	}

	seed := 0.0
	for i := first; i < first+period; i++ {
		seed += values[i]
	}
	seed /= float64(period)

	k := 2.0 / (float64(period) + 1.0)
	out[first+period-1] = seed
	prev := seed
	for i := first + period; i < len(values); i++ {
		prev = values[i]*k + prev*(1.0-k)
		out[i] = prev
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func firstValid(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}
