// Package ux renders viewer output for the terminal.
package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/newthinker/protrade/internal/chart"
	"github.com/newthinker/protrade/internal/viewer"
)

var (
	colorAccent = lipgloss.Color("#20B9B4")
	colorMuted  = lipgloss.Color("#6B7C85")
	colorError  = lipgloss.Color("#E74C3C")
	colorWait   = lipgloss.Color("#F4D03F")
)

// Styles used by the renderers.
var Styles = struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Ticket   lipgloss.Style
	WaitBox  lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	TimeCell lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Muted:    lipgloss.NewStyle().Foreground(colorMuted),
	Error:    lipgloss.NewStyle().Foreground(colorError),
	Label:    lipgloss.NewStyle().Foreground(colorMuted),
	Value:    lipgloss.NewStyle().Bold(true),
	Ticket:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1),
	WaitBox:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorWait).Padding(0, 1),
	Header:   lipgloss.NewStyle().Bold(true).Width(12).Align(lipgloss.Right),
	Cell:     lipgloss.NewStyle().Width(12).Align(lipgloss.Right),
	TimeCell: lipgloss.NewStyle().Width(26),
}

// RenderPanel draws the trade ticket box. A nil panel renders nothing.
func RenderPanel(p *chart.Panel) string {
	if p == nil {
		return ""
	}

	lines := []string{Styles.Title.Render(p.Title)}
	if p.IsWait() {
		lines = append(lines, p.Reason)
	} else {
		cols := make([]string, 0, len(p.Fields))
		for _, f := range p.Fields {
			cols = append(cols, lipgloss.JoinVertical(lipgloss.Left,
				Styles.Label.Render(f.Label),
				Styles.Value.Render(f.Value),
			))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, spaced(cols)...))
	}
	lines = append(lines, Styles.Muted.Render(p.Summary))

	box := Styles.Ticket
	if p.IsWait() {
		box = Styles.WaitBox
	}
	return box.Render(strings.Join(lines, "\n"))
}

func spaced(cols []string) []string {
	out := make([]string, 0, 2*len(cols))
	for i, c := range cols {
		if i > 0 {
			out = append(out, "   ")
		}
		out = append(out, c)
	}
	return out
}

// RenderCandles draws the last max rows of the candlestick trace as a
// table. max <= 0 draws every row.
func RenderCandles(tr chart.Trace, max int) string {
	if len(tr.X) == 0 {
		return Styles.Muted.Render("no candles")
	}

	start := 0
	if max > 0 && len(tr.X) > max {
		start = len(tr.X) - max
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		Styles.TimeCell.Bold(true).Render("time"),
		Styles.Header.Render("open"),
		Styles.Header.Render("high"),
		Styles.Header.Render("low"),
		Styles.Header.Render("close"),
	))
	for i := start; i < len(tr.X); i++ {
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			Styles.TimeCell.Render(tr.X[i]),
			Styles.Cell.Render(chart.FormatNumber(tr.Open[i])),
			Styles.Cell.Render(chart.FormatNumber(tr.High[i])),
			Styles.Cell.Render(chart.FormatNumber(tr.Low[i])),
			Styles.Cell.Render(chart.FormatNumber(tr.Close[i])),
		))
	}
	return b.String()
}

// RenderOverlays lists the reference lines drawn on the chart.
func RenderOverlays(shapes []chart.Shape) string {
	if len(shapes) == 0 {
		return ""
	}
	parts := make([]string, len(shapes))
	for i, s := range shapes {
		parts[i] = fmt.Sprintf("%s %s (%s)", Styles.Label.Render(s.Name), chart.FormatNumber(s.Y0), s.Line.Dash)
	}
	return strings.Join(parts, "  ")
}

// WriteView prints a full view: title, error, ticket, overlays and the
// most recent rows candles.
func WriteView(w io.Writer, v viewer.View, rows int) error {
	var sections []string
	sections = append(sections, Styles.Title.Render(v.Figure.Layout.Title))

	if v.State.Error != "" {
		sections = append(sections, Styles.Error.Render(v.State.Error))
	}
	if panel := RenderPanel(v.Panel); panel != "" {
		sections = append(sections, panel)
	}
	if overlays := RenderOverlays(v.Figure.Layout.Shapes); overlays != "" {
		sections = append(sections, overlays)
	}
	if len(v.Figure.Data) > 0 {
		sections = append(sections, RenderCandles(v.Figure.Data[0], rows))
	}

	_, err := fmt.Fprintln(w, strings.Join(sections, "\n\n"))
	return err
}
