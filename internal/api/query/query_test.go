package query

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/protrade/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)

	v, err := Parse(r, "SPY", core.Timeframe30m)
	require.NoError(t, err)
	assert.Equal(t, "SPY", v.Symbol)
	assert.Equal(t, core.Timeframe30m, v.TF())
}

func TestParse_Normalizes(t *testing.T) {
	r := httptest.NewRequest("GET", "/?symbol=%20brk.b%20&tf=1d", nil)

	v, err := Parse(r, "SPY", core.Timeframe30m)
	require.NoError(t, err)
	assert.Equal(t, "BRK.B", v.Symbol)
	assert.Equal(t, core.Timeframe1d, v.TF())
}

func TestParse_FreeTextSymbols(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"/?symbol=$SPX&tf=30m", "$SPX"},
		{"/?symbol=%24spx.x", "$SPX.X"},
		{"/?symbol=brk%20b", "BRK B"},
		{"/?symbol=es%3Df", "ES=F"},
		{"/?symbol=%5Espx", "^SPX"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.query, nil)

			v, err := Parse(r, "SPY", core.Timeframe30m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Symbol)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"empty symbol", "/?symbol=", "symbol"},
		{"long symbol", "/?symbol=ABCDEFGHIJKLMNOPQ", "symbol"},
		{"control characters", "/?symbol=SP%0AY", "symbol"},
		{"bad timeframe", "/?tf=5m", "tf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.query, nil)

			_, err := Parse(r, "SPY", core.Timeframe30m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrInvalidQuery))

			var qerr *Error
			require.True(t, errors.As(err, &qerr))
			assert.Contains(t, qerr.Fields, tt.field)
		})
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Fields: map[string]string{"tf": "must be one of 30m 1d", "symbol": "is required"}}
	assert.Equal(t, "symbol is required; tf must be one of 30m 1d", err.Error())
}
