package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TicketMode is the discriminant of a trade ticket.
type TicketMode string

const (
	ModeBullishBOS TicketMode = "BULLISH_BOS"
	ModeBearishBOS TicketMode = "BEARISH_BOS"
	ModeWait       TicketMode = "WAIT"
)

// SpreadAction is the credit spread a non-WAIT ticket recommends.
type SpreadAction string

const (
	ActionSellPutSpread  SpreadAction = "SELL_PUT_SPREAD"
	ActionSellCallSpread SpreadAction = "SELL_CALL_SPREAD"
)

// TradeTicket is either a *SpreadTicket or a *WaitTicket. Callers switch
// on the concrete type before touching strike or stop fields.
type TradeTicket interface {
	Mode() TicketMode
	isTradeTicket()
}

// SpreadTicket recommends selling a credit spread after a break of structure.
type SpreadTicket struct {
	Signal      TicketMode
	Action      SpreadAction
	ShortStrike float64
	LongStrike  float64
	StopLevel   float64
}

func (t *SpreadTicket) Mode() TicketMode { return t.Signal }
func (*SpreadTicket) isTradeTicket()     {}

// WaitTicket tells the trader to stand aside.
type WaitTicket struct {
	Reason string
}

func (*WaitTicket) Mode() TicketMode { return ModeWait }
func (*WaitTicket) isTradeTicket()   {}

// expectedAction pairs each break-of-structure mode with its spread.
var expectedAction = map[TicketMode]SpreadAction{
	ModeBullishBOS: ActionSellPutSpread,
	ModeBearishBOS: ActionSellCallSpread,
}

type ticketWire struct {
	Mode        TicketMode   `json:"mode"`
	Action      SpreadAction `json:"action,omitempty"`
	ShortStrike *float64     `json:"short_strike,omitempty"`
	LongStrike  *float64     `json:"long_strike,omitempty"`
	StopLevel   *float64     `json:"stop_level,omitempty"`
	Reason      string       `json:"reason,omitempty"`
}

// DecodeTicket parses the wire form of a ticket. A null or empty input
// yields a nil ticket.
func DecodeTicket(data []byte) (TradeTicket, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var w ticketWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, WrapError(ErrMalformedPayload, fmt.Errorf("decoding ticket: %w", err))
	}

	switch w.Mode {
	case ModeWait:
		return &WaitTicket{Reason: w.Reason}, nil
	case ModeBullishBOS, ModeBearishBOS:
		if want := expectedAction[w.Mode]; w.Action != want {
			return nil, WrapError(ErrMalformedPayload,
				fmt.Errorf("ticket mode %s requires action %s, got %q", w.Mode, want, w.Action))
		}
		if w.ShortStrike == nil || w.LongStrike == nil || w.StopLevel == nil {
			return nil, WrapError(ErrMalformedPayload,
				fmt.Errorf("ticket mode %s missing strike or stop fields", w.Mode))
		}
		return &SpreadTicket{
			Signal:      w.Mode,
			Action:      w.Action,
			ShortStrike: *w.ShortStrike,
			LongStrike:  *w.LongStrike,
			StopLevel:   *w.StopLevel,
		}, nil
	default:
		return nil, WrapError(ErrMalformedPayload, fmt.Errorf("unknown ticket mode %q", w.Mode))
	}
}

// EncodeTicket produces the wire form of a ticket.
func EncodeTicket(t TradeTicket) ([]byte, error) {
	switch v := t.(type) {
	case nil:
		return []byte("null"), nil
	case *WaitTicket:
		return json.Marshal(struct {
			Mode   TicketMode `json:"mode"`
			Reason string     `json:"reason"`
		}{ModeWait, v.Reason})
	case *SpreadTicket:
		return json.Marshal(ticketWire{
			Mode:        v.Signal,
			Action:      v.Action,
			ShortStrike: &v.ShortStrike,
			LongStrike:  &v.LongStrike,
			StopLevel:   &v.StopLevel,
		})
	default:
		return nil, fmt.Errorf("unsupported ticket type %T", t)
	}
}

// StrategyReport is the backend's strategy output for one symbol and
// timeframe.
type StrategyReport struct {
	Symbol     string
	Timeframe  string
	LastClose  float64
	ATR14      *float64
	Support    *float64
	Resistance *float64
	Ticket     TradeTicket
}

type strategyReportWire struct {
	Symbol     string          `json:"symbol"`
	Timeframe  string          `json:"tf"`
	LastClose  float64         `json:"last_close"`
	ATR14      *float64        `json:"atr14"`
	Support    *float64        `json:"support"`
	Resistance *float64        `json:"resistance"`
	Ticket     json.RawMessage `json:"ticket"`
}

// UnmarshalJSON decodes the report and its ticket variant.
func (r *StrategyReport) UnmarshalJSON(data []byte) error {
	var w strategyReportWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	ticket, err := DecodeTicket(w.Ticket)
	if err != nil {
		return err
	}

	*r = StrategyReport{
		Symbol:     w.Symbol,
		Timeframe:  w.Timeframe,
		LastClose:  w.LastClose,
		ATR14:      w.ATR14,
		Support:    w.Support,
		Resistance: w.Resistance,
		Ticket:     ticket,
	}
	return nil
}

// MarshalJSON encodes the report in the backend's wire shape.
func (r StrategyReport) MarshalJSON() ([]byte, error) {
	ticket, err := EncodeTicket(r.Ticket)
	if err != nil {
		return nil, err
	}
	return json.Marshal(strategyReportWire{
		Symbol:     r.Symbol,
		Timeframe:  r.Timeframe,
		LastClose:  r.LastClose,
		ATR14:      r.ATR14,
		Support:    r.Support,
		Resistance: r.Resistance,
		Ticket:     ticket,
	})
}
