package viewer_test

import (
	"context"
	"testing"

	"github.com/newthinker/protrade/internal/core"
	"github.com/newthinker/protrade/internal/viewer"
	"github.com/stretchr/testify/assert"
)

func TestFactory_New(t *testing.T) {
	rec := &countingRecorder{}
	f := &viewer.Factory{
		Candles: candlesFunc(func(ctx context.Context, symbol string, tf core.Timeframe) ([]core.Candle, error) {
			return someCandles(2), nil
		}),
		Strategy: strategyFunc(func(ctx context.Context, symbol string, tf core.Timeframe) (*core.StrategyReport, error) {
			return &core.StrategyReport{Symbol: symbol, Timeframe: string(tf), Ticket: &core.WaitTicket{Reason: "wait"}}, nil
		}),
		Recorder: rec,
	}

	v := f.New(viewer.KindStrategy, "qqq", core.Timeframe1d)
	assert.Equal(t, viewer.KindStrategy, v.Kind())

	st := v.Mount(context.Background())
	assert.Equal(t, "QQQ", st.Symbol)
	assert.Equal(t, core.Timeframe1d, st.Timeframe)
	assert.NotNil(t, st.Strategy)
	assert.Equal(t, []string{"success"}, rec.outcomes)
}

func TestFactory_NewWithoutStrategySource(t *testing.T) {
	f := &viewer.Factory{Candles: candlesFunc(nil)}

	v := f.New(viewer.KindStrategy, "SPY", core.Timeframe30m)
	assert.Equal(t, viewer.KindCandles, v.Kind())
}
