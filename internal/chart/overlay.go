package chart

import "github.com/newthinker/protrade/internal/core"

// Line dash styles.
const (
	DashLevel = "dash"
	DashStop  = "dot"
)

// Overlay kinds.
const (
	OverlaySupport    = "support"
	OverlayResistance = "resistance"
	OverlayStop       = "stop"
)

// Shape is a horizontal reference line spanning the whole plot width.
type Shape struct {
	Type string    `json:"type"`
	Name string    `json:"name"`
	XRef string    `json:"xref"`
	X0   float64   `json:"x0"`
	X1   float64   `json:"x1"`
	YRef string    `json:"yref"`
	Y0   float64   `json:"y0"`
	Y1   float64   `json:"y1"`
	Line ShapeLine `json:"line"`
}

type ShapeLine struct {
	Dash  string `json:"dash"`
	Width int    `json:"width"`
}

func horizontal(name string, y float64, dash string) Shape {
	return Shape{
		Type: "line",
		Name: name,
		XRef: "paper",
		X0:   0,
		X1:   1,
		YRef: "y",
		Y0:   y,
		Y1:   y,
		Line: ShapeLine{Dash: dash, Width: 2},
	}
}

// Overlays returns support, resistance and stop lines for a report, in
// that order, skipping levels that are absent. The stop line appears only
// for spread tickets. A nil report has no overlays.
func Overlays(r *core.StrategyReport) []Shape {
	shapes := []Shape{}
	if r == nil {
		return shapes
	}

	if r.Support != nil {
		shapes = append(shapes, horizontal(OverlaySupport, *r.Support, DashLevel))
	}
	if r.Resistance != nil {
		shapes = append(shapes, horizontal(OverlayResistance, *r.Resistance, DashLevel))
	}
	if spread, ok := r.Ticket.(*core.SpreadTicket); ok {
		shapes = append(shapes, horizontal(OverlayStop, spread.StopLevel, DashStop))
	}

	return shapes
}
