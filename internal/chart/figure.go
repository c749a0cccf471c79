// Package chart derives Plotly figures and the trade ticket panel from
// viewer state. Everything here is a pure function of its inputs.
package chart

import (
	"fmt"

	"github.com/newthinker/protrade/internal/core"
)

// Figure is a Plotly figure: traces, layout and config.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
	Config Config  `json:"config"`
}

// Trace is a single candlestick series.
type Trace struct {
	Type  string    `json:"type"`
	Name  string    `json:"name,omitempty"`
	X     []string  `json:"x"`
	Open  []float64 `json:"open"`
	High  []float64 `json:"high"`
	Low   []float64 `json:"low"`
	Close []float64 `json:"close"`
}

type Layout struct {
	Title  string  `json:"title"`
	Height int     `json:"height"`
	XAxis  Axis    `json:"xaxis"`
	Margin Margin  `json:"margin"`
	Shapes []Shape `json:"shapes"`
}

type Axis struct {
	RangeSlider RangeSlider `json:"rangeslider"`
}

type RangeSlider struct {
	Visible bool `json:"visible"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

type Config struct {
	DisplayModeBar bool `json:"displayModeBar"`
	Responsive     bool `json:"responsive"`
}

// Options tunes figure construction.
type Options struct {
	// TraceName labels the candlestick trace; empty leaves it unnamed.
	TraceName string
	// Report adds support, resistance and stop overlays when non-nil.
	Report *core.StrategyReport
}

// XAxis returns the display timestamps of candles in order.
func XAxis(candles []core.Candle) []string {
	x := make([]string, len(candles))
	for i, c := range candles {
		x[i] = c.Timestamp.Display()
	}
	return x
}

// Candlestick builds the OHLC trace with every series aligned by index.
func Candlestick(candles []core.Candle, name string) Trace {
	t := Trace{
		Type:  "candlestick",
		Name:  name,
		X:     XAxis(candles),
		Open:  make([]float64, len(candles)),
		High:  make([]float64, len(candles)),
		Low:   make([]float64, len(candles)),
		Close: make([]float64, len(candles)),
	}
	for i, c := range candles {
		t.Open[i] = c.Open
		t.High[i] = c.High
		t.Low[i] = c.Low
		t.Close[i] = c.Close
	}
	return t
}

// Title formats the chart title, e.g. "SPY (30m)".
func Title(symbol string, tf core.Timeframe) string {
	return fmt.Sprintf("%s (%s)", symbol, tf)
}

// Build assembles the full figure.
func Build(symbol string, tf core.Timeframe, candles []core.Candle, opts Options) Figure {
	return Figure{
		Data: []Trace{Candlestick(candles, opts.TraceName)},
		Layout: Layout{
			Title:  Title(symbol, tf),
			Height: 650,
			XAxis:  Axis{RangeSlider: RangeSlider{Visible: false}},
			Margin: Margin{L: 50, R: 20, T: 50, B: 40},
			Shapes: Overlays(opts.Report),
		},
		Config: Config{DisplayModeBar: true, Responsive: true},
	}
}
