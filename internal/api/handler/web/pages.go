package web

import (
	"errors"
	"net/http"

	"github.com/newthinker/protrade/internal/api/query"
	"github.com/newthinker/protrade/internal/chart"
	"github.com/newthinker/protrade/internal/core"
	"github.com/newthinker/protrade/internal/viewer"
)

// PageData holds data for the chart and strategy page templates
type PageData struct {
	Title      string
	Path       string
	Kind       viewer.Kind
	Symbol     string
	Timeframe  core.Timeframe
	Timeframes []core.Timeframe
	Status     viewer.Status
	Error      string
	Fields     map[string]string
	Panel      *chart.Panel
	Figure     chart.Figure
	Candles    int
}

// Strategy renders the strategy viewer page at /.
func (h *Handler) Strategy(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, viewer.KindStrategy, "strategy.html", "Strategy Viewer", "/")
}

// Chart renders the candle viewer page at /chart.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, viewer.KindCandles, "chart.html", "Candle Viewer", "/chart")
}

// page mounts a fresh viewer for the request and renders its view. Invalid
// input renders the form with the validation message and an empty chart.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, kind viewer.Kind, page, title, path string) {
	q, err := query.Parse(r, h.defaultSymbol, h.defaultTF)
	if err != nil {
		tf := q.TF()
		if !tf.IsValid() {
			tf = h.defaultTF
		}
		view := viewer.Derive(kind, viewer.State{
			Symbol:    q.Symbol,
			Timeframe: tf,
			Candles:   []core.Candle{},
			Error:     err.Error(),
			Status:    viewer.StatusError,
		})

		data := newPageData(title, path, view)
		var qerr *query.Error
		if errors.As(err, &qerr) {
			data.Error = "Invalid input: " + qerr.Error()
			data.Fields = qerr.Fields
		}
		h.render(w, http.StatusBadRequest, page, data)
		return
	}

	v := h.factory.New(kind, q.Symbol, q.TF())
	v.Mount(r.Context())

	h.render(w, http.StatusOK, page, newPageData(title, path, v.View()))
}

func newPageData(title, path string, view viewer.View) PageData {
	return PageData{
		Title:      title,
		Path:       path,
		Kind:       view.Kind,
		Symbol:     view.State.Symbol,
		Timeframe:  view.State.Timeframe,
		Timeframes: core.Timeframes,
		Status:     view.State.Status,
		Error:      view.State.Error,
		Panel:      view.Panel,
		Figure:     view.Figure,
		Candles:    len(view.State.Candles),
	}
}
