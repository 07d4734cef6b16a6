package chart

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/calculator"
	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

func buildSeries(n int) *model.PriceSeries {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	s := &model.PriceSeries{Symbol: "SBRY.L"}
	for i := 0; i < n; i++ {
		price := 200.0 + float64(i) + 5.0*math.Sin(float64(i)/4.0)
		s.Bars = append(s.Bars, model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   price - 1,
			High:   price + 2,
			Low:    price - 2,
			Close:  price,
			Volume: 1000000 + float64(i*1000),
		})
	}
	calculator.SetMACD(s)
	calculator.SetStochasticOscillator(s)
	return s
}

func TestRender_EmptySeries(t *testing.T) {
	r := NewRenderer()
	if _, err := r.Render(&model.PriceSeries{Symbol: "SBRY.L"}, "Sainsbury (SBRY)"); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRender_StackedDimensions(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render(buildSeries(60), "Sainsbury (SBRY)")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	if got := img.Bounds().Dx(); got != r.PanelWidth {
		t.Errorf("width = %d, want %d", got, r.PanelWidth)
	}
	if got := img.Bounds().Dy(); got != 3*r.PanelHeight {
		t.Errorf("height = %d, want %d", got, 3*r.PanelHeight)
	}
}

func TestRender_ShortSeriesStillRenders(t *testing.T) {
	// Fewer bars than the MACD slow period: indicator columns are all
	// unavailable but the chart must still produce three panels.
	r := NewRenderer()
	out, err := r.Render(buildSeries(10), "Sainsbury (SBRY)")
	if err != nil {
		t.Fatalf("render failed on short series: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
}

func TestRender_SingleBarSeries(t *testing.T) {
	// One bar collapses the time domain to a single point. The renderer must
	// widen the x-axis rather than fail, so a thin newly-listed symbol still
	// gets its three panels instead of poisoning the whole batch.
	r := NewRenderer()
	out, err := r.Render(buildSeries(1), "Sainsbury (SBRY)")
	if err != nil {
		t.Fatalf("render failed on single-bar series: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	if got := img.Bounds().Dy(); got != 3*r.PanelHeight {
		t.Errorf("height = %d, want %d", got, 3*r.PanelHeight)
	}
}

func TestStochasticPanel_AxisPinned(t *testing.T) {
	r := NewRenderer()
	s := buildSeries(60)
	panel := r.stochasticPanel(s, "Sainsbury (SBRY)")

	rng, ok := panel.YAxis.Range.(*chart.ContinuousRange)
	if !ok {
		t.Fatal("stochastic y-axis range is not fixed")
	}
	if rng.Min != 0 || rng.Max != 100 {
		t.Errorf("stochastic range = [%f,%f], want [0,100]", rng.Min, rng.Max)
	}
}
