package api

import (
	"net/http"

	"github.com/newthinker/protrade/internal/api/query"
	"github.com/newthinker/protrade/internal/api/response"
	"github.com/newthinker/protrade/internal/core"
	"github.com/newthinker/protrade/internal/viewer"
)

// ViewHandler serves the derived chart views as JSON.
type ViewHandler struct {
	factory       *viewer.Factory
	defaultSymbol string
	defaultTF     core.Timeframe
}

// NewViewHandler creates a view handler. Requests without symbol or tf use
// the given defaults.
func NewViewHandler(factory *viewer.Factory, defaultSymbol string, defaultTF core.Timeframe) *ViewHandler {
	return &ViewHandler{
		factory:       factory,
		defaultSymbol: defaultSymbol,
		defaultTF:     defaultTF,
	}
}

// Candles handles GET /api/v1/view/candles
func (h *ViewHandler) Candles(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, viewer.KindCandles)
}

// Strategy handles GET /api/v1/view/strategy
func (h *ViewHandler) Strategy(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, viewer.KindStrategy)
}

// serve mounts a fresh viewer and returns its view. An upstream failure is
// not an HTTP error: the view rendered and carries the message in state.
func (h *ViewHandler) serve(w http.ResponseWriter, r *http.Request, kind viewer.Kind) {
	q, err := query.Parse(r, h.defaultSymbol, h.defaultTF)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	v := h.factory.New(kind, q.Symbol, q.TF())
	v.Mount(r.Context())

	response.JSON(w, http.StatusOK, v.View())
}
