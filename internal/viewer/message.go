package viewer

import (
	"errors"
	"fmt"

	"github.com/newthinker/protrade/internal/core"
)

type source string

const (
	sourceCandles  source = "Candles"
	sourceStrategy source = "Strategy"
)

// sourceError remembers which request of a load failed.
type sourceError struct {
	source source
	err    error
}

func (e *sourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.source, e.err)
}

func (e *sourceError) Unwrap() error {
	return e.err
}

// statusCoder is implemented by errors that carry a backend HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// Fallback messages when an error has no text of its own.
const (
	fallbackCandles  = "Failed to load candles"
	fallbackStrategy = "Failed to load data"
)

// message turns a load error into the single line shown to the user.
// Status errors read "API error: 500" on the candle viewer and
// "Candles API error: 500" / "Strategy API error: 500" on the strategy
// viewer. Other errors show their underlying cause.
func (v *Viewer) message(err error) string {
	fallback := fallbackCandles
	prefix := ""
	if v.kind == KindStrategy {
		fallback = fallbackStrategy
		var se *sourceError
		if errors.As(err, &se) {
			prefix = string(se.source) + " "
		}
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		return fmt.Sprintf("%sAPI error: %d", prefix, sc.HTTPStatus())
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		if coreErr.Cause != nil && coreErr.Cause.Error() != "" {
			return coreErr.Cause.Error()
		}
		return coreErr.Message
	}

	var se *sourceError
	if errors.As(err, &se) {
		err = se.err
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
