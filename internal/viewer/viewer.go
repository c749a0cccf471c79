// Package viewer holds the state of one chart page: the symbol and
// timeframe inputs, the loaded candles and strategy report, and the
// loading/error status. A Viewer is built either as a candle viewer or as
// a strategy viewer; both share the load cycle and chart derivation.
//
// Reloads are sequence numbered. Starting a reload cancels the one in
// flight, and a load that settles after being superseded is discarded
// without touching state, so the view always reflects the latest request.
package viewer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/protrade/internal/chart"
	"github.com/newthinker/protrade/internal/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Kind names the two viewer flavours.
type Kind string

const (
	KindCandles  Kind = "candles"
	KindStrategy Kind = "strategy"
)

// Status is the load state machine: Idle → Loading → Success | Error.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Defaults used when no inputs are supplied.
const (
	DefaultSymbol    = "SPY"
	DefaultTimeframe = core.Timeframe30m
)

// CandleSource fetches candles for a symbol and timeframe.
type CandleSource interface {
	FetchCandles(ctx context.Context, symbol string, tf core.Timeframe) ([]core.Candle, error)
}

// StrategySource fetches the strategy report for a symbol and timeframe.
type StrategySource interface {
	FetchStrategy(ctx context.Context, symbol string, tf core.Timeframe) (*core.StrategyReport, error)
}

// Recorder receives load outcomes. *metrics.Registry satisfies it.
type Recorder interface {
	ObserveLoad(viewer, outcome string)
	ObserveStaleLoad(viewer string)
}

// State is a copy of the view state. Slices and the report are shared
// with the viewer and must be treated as read-only.
type State struct {
	Symbol    string               `json:"symbol"`
	Timeframe core.Timeframe       `json:"tf"`
	Candles   []core.Candle        `json:"candles"`
	Strategy  *core.StrategyReport `json:"strategy"`
	Loading   bool                 `json:"loading"`
	Error     string               `json:"error,omitempty"`
	Status    Status               `json:"status"`
}

// View is the state together with everything derived from it.
type View struct {
	Kind   Kind         `json:"kind"`
	State  State        `json:"state"`
	Figure chart.Figure `json:"figure"`
	Panel  *chart.Panel `json:"panel"`
}

// Viewer owns the state of one page instance.
type Viewer struct {
	kind     Kind
	candles  CandleSource
	strategy StrategySource
	logger   *zap.Logger
	recorder Recorder

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(v *Viewer) { v.logger = l }
}

// WithRecorder sets the load outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(v *Viewer) { v.recorder = r }
}

// WithInputs sets the initial symbol and timeframe. An invalid timeframe
// keeps the default.
func WithInputs(symbol string, tf core.Timeframe) Option {
	return func(v *Viewer) {
		v.state.Symbol = normalizeSymbol(symbol)
		if tf.IsValid() {
			v.state.Timeframe = tf
		}
	}
}

// NewCandleViewer creates a viewer that loads candles only.
func NewCandleViewer(candles CandleSource, opts ...Option) *Viewer {
	return newViewer(KindCandles, candles, nil, opts)
}

// NewStrategyViewer creates a viewer that loads candles and the strategy
// report together and draws the report's overlays and ticket.
func NewStrategyViewer(candles CandleSource, strategy StrategySource, opts ...Option) *Viewer {
	return newViewer(KindStrategy, candles, strategy, opts)
}

func newViewer(kind Kind, candles CandleSource, strategy StrategySource, opts []Option) *Viewer {
	v := &Viewer{
		kind:     kind,
		candles:  candles,
		strategy: strategy,
		logger:   zap.NewNop(),
		state: State{
			Symbol:    DefaultSymbol,
			Timeframe: DefaultTimeframe,
			Candles:   []core.Candle{},
			Status:    StatusIdle,
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With(zap.String("viewer", string(kind)))
	return v
}

// Kind reports which flavour this viewer is.
func (v *Viewer) Kind() Kind {
	return v.kind
}

// SetSymbol updates the symbol input, upper-casing it. It takes effect on
// the next reload.
func (v *Viewer) SetSymbol(symbol string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Symbol = normalizeSymbol(symbol)
}

// SetTimeframe updates the timeframe input. It takes effect on the next
// reload.
func (v *Viewer) SetTimeframe(tf core.Timeframe) error {
	if _, err := core.ParseTimeframe(string(tf)); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Timeframe = tf
	return nil
}

// Mount performs the initial load a page does when it is first shown.
func (v *Viewer) Mount(ctx context.Context) State {
	return v.Reload(ctx)
}

// Reload fetches fresh data for the current inputs and returns the state
// after this load. If a newer reload superseded this one, the returned
// state is the current one and this load's result is discarded.
func (v *Viewer) Reload(ctx context.Context) State {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	v.seq++
	seq := v.seq
	loadCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel

	symbol, tf := v.state.Symbol, v.state.Timeframe
	v.state.Loading = true
	v.state.Status = StatusLoading
	v.state.Error = ""
	v.mu.Unlock()

	start := time.Now()
	res := v.load(loadCtx, symbol, tf)
	cancel()

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.seq {
		v.logger.Debug("discarding superseded load",
			zap.Uint64("seq", seq),
			zap.Uint64("current", v.seq),
			zap.String("symbol", symbol),
		)
		if v.recorder != nil {
			v.recorder.ObserveStaleLoad(string(v.kind))
		}
		return v.state
	}
	v.cancel = nil
	v.apply(res)

	if res.err != nil {
		v.logger.Warn("load failed",
			zap.String("symbol", symbol),
			zap.String("tf", string(tf)),
			zap.Error(res.err),
		)
	} else {
		v.logger.Debug("load complete",
			zap.String("symbol", symbol),
			zap.String("tf", string(tf)),
			zap.Int("candles", len(res.candles)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	if v.recorder != nil {
		v.recorder.ObserveLoad(string(v.kind), string(v.state.Status))
	}

	return v.state
}

// State returns a copy of the current view state.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// View returns the current state with its derived chart and panel.
func (v *Viewer) View() View {
	st := v.State()
	return Derive(v.kind, st)
}

// Derive computes the figure and panel for a state. It never mutates st.
func Derive(kind Kind, st State) View {
	opts := chart.Options{}
	var panel *chart.Panel
	if kind == KindStrategy {
		opts.TraceName = "Price"
		opts.Report = st.Strategy
		panel = chart.TicketPanel(st.Strategy)
	}

	return View{
		Kind:   kind,
		State:  st,
		Figure: chart.Build(st.Symbol, st.Timeframe, st.Candles, opts),
		Panel:  panel,
	}
}

// apply writes a settled load into state. Caller holds v.mu.
func (v *Viewer) apply(res loadResult) {
	v.state.Loading = false

	if res.err != nil {
		v.state.Status = StatusError
		v.state.Error = v.message(res.err)
		v.state.Candles = []core.Candle{}
		v.state.Strategy = nil
		return
	}

	v.state.Status = StatusSuccess
	v.state.Error = ""
	v.state.Candles = res.candles
	if v.state.Candles == nil {
		v.state.Candles = []core.Candle{}
	}
	v.state.Strategy = res.report
}

type loadResult struct {
	candles []core.Candle
	report  *core.StrategyReport
	err     error
}

func (v *Viewer) load(ctx context.Context, symbol string, tf core.Timeframe) loadResult {
	if v.strategy == nil {
		candles, err := v.candles.FetchCandles(ctx, symbol, tf)
		if err != nil {
			return loadResult{err: &sourceError{source: sourceCandles, err: err}}
		}
		return loadResult{candles: candles}
	}

	var res loadResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		candles, err := v.candles.FetchCandles(gctx, symbol, tf)
		if err != nil {
			return &sourceError{source: sourceCandles, err: err}
		}
		res.candles = candles
		return nil
	})
	g.Go(func() error {
		report, err := v.strategy.FetchStrategy(gctx, symbol, tf)
		if err != nil {
			return &sourceError{source: sourceStrategy, err: err}
		}
		res.report = report
		return nil
	})

	if err := g.Wait(); err != nil {
		return loadResult{err: err}
	}
	return res
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
