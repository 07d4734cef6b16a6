package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

// ErrInsufficientData is returned when a series has no timestamps to derive
// a time-axis domain from.
var ErrInsufficientData = errors.New("chart: series has no data points")

// Fixed visual constants. Presentation only; they never depend on the data.
const (
	defaultPanelWidth  = 1250
	defaultPanelHeight = 320
	defaultStrokeWidth = 2.0

	stochasticLower = 20.0
	stochasticUpper = 80.0
)

var (
	closeColor  = drawing.ColorBlack
	volumeColor = drawing.Color{R: 128, G: 128, B: 128, A: 255}
	fastColor   = drawing.ColorBlue
	slowColor   = drawing.ColorRed
	refColor    = drawing.Color{R: 128, G: 128, B: 128, A: 255}
	bandColor   = drawing.Color{R: 255, G: 192, B: 203, A: 90}
	histColor   = drawing.Color{R: 255, G: 0, B: 0, A: 160}
)

// Renderer draws the three-panel technicals chart (price/volume, stochastic
// oscillator, MACD) for one instrument as a single PNG.
type Renderer struct {
	PanelWidth  int
	PanelHeight int
	StrokeWidth float64
}

// NewRenderer creates a Renderer with the default panel geometry.
func NewRenderer() *Renderer {
	return &Renderer{
		PanelWidth:  defaultPanelWidth,
		PanelHeight: defaultPanelHeight,
		StrokeWidth: defaultStrokeWidth,
	}
}

// Render produces the stacked three-panel chart. The caller owns persistence
// of the returned PNG bytes.
func (r *Renderer) Render(series *model.PriceSeries, title string) ([]byte, error) {
	if series.Empty() {
		return nil, ErrInsufficientData
	}

	panels := []chart.Chart{
		r.pricePanel(series, title),
		r.stochasticPanel(series, title),
		r.macdPanel(series, title),
	}

	images := make([]image.Image, len(panels))
	for i := range panels {
		var buf bytes.Buffer
		if err := panels[i].Render(chart.PNG, &buf); err != nil {
			return nil, fmt.Errorf("render panel %d: %w", i+1, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return nil, fmt.Errorf("decode panel %d: %w", i+1, err)
		}
		images[i] = img
	}

	return stackVertically(images)
}

// pricePanel plots the close price as a line with trade volume bars on a
// secondary axis. Volume ticks use plain notation, never scientific.
func (r *Renderer) pricePanel(series *model.PriceSeries, title string) chart.Chart {
	times := series.Times()
	volumes := make([]float64, len(series.Bars))
	for i, b := range series.Bars {
		volumes[i] = b.Volume
	}

	return chart.Chart{
		Title:  title + " Price / Volume",
		Width:  r.PanelWidth,
		Height: r.PanelHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Range:          timeRange(times),
		},
		YAxisSecondary: chart.YAxis{
			ValueFormatter: plainFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Close",
				Style:   chart.Style{StrokeColor: closeColor, StrokeWidth: r.StrokeWidth},
				XValues: times,
				YValues: series.Closes(),
			},
			chart.HistogramSeries{
				Name:  "Volume",
				YAxis: chart.YAxisSecondary,
				Style: chart.Style{StrokeColor: volumeColor, FillColor: volumeColor},
				InnerSeries: chart.TimeSeries{
					XValues: times,
					YValues: volumes,
				},
			},
		},
	}
}

// stochasticPanel plots %K and %D with dashed reference lines at 80 and 20
// and a shaded band between them. The y-axis is pinned to [0,100] whatever
// the input values are.
func (r *Renderer) stochasticPanel(series *model.PriceSeries, title string) chart.Chart {
	times := series.Times()
	domain := []time.Time{times[0], times[len(times)-1]}

	seriesList := []chart.Series{
		refLine(domain, stochasticUpper, r.StrokeWidth),
		refLine(domain, stochasticLower, r.StrokeWidth),
	}
	if kTimes, kVals := validPoints(times, series.StochasticK); len(kVals) > 0 {
		seriesList = append(seriesList, chart.TimeSeries{
			Name:    "%K",
			Style:   chart.Style{StrokeColor: fastColor, StrokeWidth: r.StrokeWidth},
			XValues: kTimes,
			YValues: kVals,
		})
	}
	if dTimes, dVals := validPoints(times, series.StochasticD); len(dVals) > 0 {
		seriesList = append(seriesList, chart.TimeSeries{
			Name:    "%D",
			Style:   chart.Style{StrokeColor: slowColor, StrokeWidth: r.StrokeWidth},
			XValues: dTimes,
			YValues: dVals,
		})
	}

	return chart.Chart{
		Title:  title + " Stochastic",
		Width:  r.PanelWidth,
		Height: r.PanelHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Range:          timeRange(times),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series:   seriesList,
		Elements: []chart.Renderable{overboughtOversoldBand(stochasticLower, stochasticUpper)},
	}
}

// macdPanel plots the MACD and signal lines with a histogram of their
// difference overlaid on the same axis.
func (r *Renderer) macdPanel(series *model.PriceSeries, title string) chart.Chart {
	times := series.Times()
	domain := []time.Time{times[0], times[len(times)-1]}

	seriesList := []chart.Series{refLine(domain, 0, r.StrokeWidth)}

	macdTimes, macdVals := validPoints(times, series.MACD)
	if len(macdVals) > 0 {
		seriesList = append(seriesList, chart.TimeSeries{
			Name:    "MACD",
			Style:   chart.Style{StrokeColor: fastColor, StrokeWidth: r.StrokeWidth},
			XValues: macdTimes,
			YValues: macdVals,
		})
	}
	if sigTimes, sigVals := validPoints(times, series.MACDSignal); len(sigVals) > 0 {
		seriesList = append(seriesList, chart.TimeSeries{
			Name:    "Signal",
			Style:   chart.Style{StrokeColor: slowColor, StrokeWidth: r.StrokeWidth},
			XValues: sigTimes,
			YValues: sigVals,
		})
	}
	if hTimes, hVals := histogramPoints(series); len(hVals) > 0 {
		seriesList = append(seriesList, chart.HistogramSeries{
			Name:  "MACD - Signal",
			Style: chart.Style{StrokeColor: histColor, FillColor: histColor},
			InnerSeries: chart.TimeSeries{
				XValues: hTimes,
				YValues: hVals,
			},
		})
	}

	var yRange chart.Range
	if len(macdVals) == 0 {
		// Too little history for MACD: pin a neutral range so the zero line
		// still renders and the report keeps its three panels.
		yRange = &chart.ContinuousRange{Min: -1, Max: 1}
	}

	return chart.Chart{
		Title:  title + " MACD",
		Width:  r.PanelWidth,
		Height: r.PanelHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Range:          timeRange(times),
		},
		YAxis: chart.YAxis{
			Range: yRange,
		},
		Series: seriesList,
	}
}

// timeRange widens a degenerate single-timestamp domain by a day either
// side; go-chart rejects a zero x-range delta, so a one-bar series would
// otherwise fail to render.
func timeRange(times []time.Time) chart.Range {
	if !times[0].Equal(times[len(times)-1]) {
		return nil
	}
	return &chart.ContinuousRange{
		Min: chart.TimeToFloat64(times[0].AddDate(0, 0, -1)),
		Max: chart.TimeToFloat64(times[0].AddDate(0, 0, 1)),
	}
}

// refLine builds a dashed horizontal reference line spanning the domain.
func refLine(domain []time.Time, value, strokeWidth float64) chart.TimeSeries {
	return chart.TimeSeries{
		Style: chart.Style{
			StrokeColor:     refColor,
			StrokeWidth:     strokeWidth,
			StrokeDashArray: []float64{5.0, 5.0},
		},
		XValues: domain,
		YValues: []float64{value, value},
	}
}

// overboughtOversoldBand shades the region between the two reference values.
// The y-axis is pinned to [0,100], so the pixel mapping is a straight
// proportion of the canvas height.
func overboughtOversoldBand(lower, upper float64) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, _ chart.Style) {
		yUpper := canvasBox.Bottom - int(upper/100.0*float64(canvasBox.Height()))
		yLower := canvasBox.Bottom - int(lower/100.0*float64(canvasBox.Height()))
		r.SetFillColor(bandColor)
		r.MoveTo(canvasBox.Left, yUpper)
		r.LineTo(canvasBox.Right, yUpper)
		r.LineTo(canvasBox.Right, yLower)
		r.LineTo(canvasBox.Left, yLower)
		r.Close()
		r.Fill()
	}
}

// validPoints filters out leading not-yet-available indicator values.
func validPoints(times []time.Time, vals []float64) ([]time.Time, []float64) {
	if len(vals) != len(times) {
		return nil, nil
	}
	var outT []time.Time
	var outV []float64
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		outT = append(outT, times[i])
		outV = append(outV, v)
	}
	return outT, outV
}

func histogramPoints(series *model.PriceSeries) ([]time.Time, []float64) {
	times := series.Times()
	if len(series.MACD) != len(times) || len(series.MACDSignal) != len(times) {
		return nil, nil
	}
	var outT []time.Time
	var outV []float64
	for i := range times {
		if math.IsNaN(series.MACD[i]) || math.IsNaN(series.MACDSignal[i]) {
			continue
		}
		outT = append(outT, times[i])
		outV = append(outV, series.MACD[i]-series.MACDSignal[i])
	}
	return outT, outV
}

// plainFormatter prints axis values in plain notation, never scientific.
func plainFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return ""
}

// stackVertically composes the rendered panels into one image, top to
// bottom, on a white background.
func stackVertically(images []image.Image) ([]byte, error) {
	width, height := 0, 0
	for _, img := range images {
		if w := img.Bounds().Dx(); w > width {
			width = w
		}
		height += img.Bounds().Dy()
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	y := 0
	for _, img := range images {
		b := img.Bounds()
		draw.Draw(out, image.Rect(0, y, b.Dx(), y+b.Dy()), img, b.Min, draw.Over)
		y += b.Dy()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
