package viewer

import (
	"github.com/newthinker/protrade/internal/core"
	"go.uber.org/zap"
)

// Factory builds fresh viewers that share sources, logger and recorder.
// Each page request or command gets its own Viewer; nothing is shared
// between them except the sources.
type Factory struct {
	Candles  CandleSource
	Strategy StrategySource
	Logger   *zap.Logger
	Recorder Recorder
}

// New returns a viewer of the given kind with the given inputs. A strategy
// viewer requires a StrategySource; without one New falls back to a
// candle viewer.
func (f *Factory) New(kind Kind, symbol string, tf core.Timeframe) *Viewer {
	opts := []Option{WithInputs(symbol, tf)}
	if f.Logger != nil {
		opts = append(opts, WithLogger(f.Logger))
	}
	if f.Recorder != nil {
		opts = append(opts, WithRecorder(f.Recorder))
	}

	if kind == KindStrategy && f.Strategy != nil {
		return NewStrategyViewer(f.Candles, f.Strategy, opts...)
	}
	return NewCandleViewer(f.Candles, opts...)
}
