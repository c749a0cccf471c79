package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Timeframe is the candle bucket size accepted by the backend.
type Timeframe string

const (
	Timeframe30m Timeframe = "30m"
	Timeframe1d  Timeframe = "1d"
)

// Timeframes lists the accepted timeframes in display order.
var Timeframes = []Timeframe{Timeframe30m, Timeframe1d}

// IsValid reports whether tf is one of the accepted timeframes.
func (tf Timeframe) IsValid() bool {
	return tf == Timeframe30m || tf == Timeframe1d
}

// ParseTimeframe converts a raw query value into a Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if !tf.IsValid() {
		return "", WrapError(ErrInvalidTimeframe, fmt.Errorf("got %q", s))
	}
	return tf, nil
}

// TimestampKind discriminates the two wire shapes of a candle timestamp.
type TimestampKind int

const (
	TimestampText TimestampKind = iota
	TimestampEpochMillis
)

// ISOLayout matches the UTC millisecond format browsers produce for dates.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// Timestamp holds a candle time exactly as the backend sent it: either
// free text or epoch milliseconds.
type Timestamp struct {
	kind   TimestampKind
	text   string
	millis int64
}

// TextTimestamp wraps a string timestamp.
func TextTimestamp(s string) Timestamp {
	return Timestamp{kind: TimestampText, text: s}
}

// EpochMillis wraps an epoch millisecond timestamp.
func EpochMillis(ms int64) Timestamp {
	return Timestamp{kind: TimestampEpochMillis, millis: ms}
}

// Kind returns which wire shape the timestamp arrived in.
func (t Timestamp) Kind() TimestampKind {
	return t.kind
}

// Millis returns the epoch milliseconds and true for numeric timestamps.
func (t Timestamp) Millis() (int64, bool) {
	return t.millis, t.kind == TimestampEpochMillis
}

// Text returns the raw string and true for text timestamps.
func (t Timestamp) Text() (string, bool) {
	return t.text, t.kind == TimestampText
}

// Display normalizes the timestamp for charting. Epoch milliseconds become
// an ISO-8601 UTC string; text passes through unchanged.
func (t Timestamp) Display() string {
	if t.kind == TimestampEpochMillis {
		return time.UnixMilli(t.millis).UTC().Format(ISOLayout)
	}
	return t.text
}

// String implements fmt.Stringer.
func (t Timestamp) String() string {
	return t.Display()
}

// MarshalJSON writes the timestamp back in its original shape.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.kind == TimestampEpochMillis {
		return []byte(strconv.FormatInt(t.millis, 10)), nil
	}
	return json.Marshal(t.text)
}

// UnmarshalJSON accepts a JSON string or a JSON number.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty timestamp")
	}

	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding text timestamp: %w", err)
		}
		*t = TextTimestamp(s)
		return nil
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decoding numeric timestamp: %w", err)
		}
		if ms, err := n.Int64(); err == nil {
			*t = EpochMillis(ms)
			return nil
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("decoding numeric timestamp: %w", err)
		}
		// Fractional milliseconds are truncated toward zero.
		*t = EpochMillis(int64(f))
		return nil
	default:
		return fmt.Errorf("timestamp must be a string or number, got %s", data)
	}
}

// Candle is one OHLCV bar as returned by the backend.
type Candle struct {
	Timestamp Timestamp `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}
