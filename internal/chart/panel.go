package chart

import (
	"fmt"
	"strconv"

	"github.com/newthinker/protrade/internal/core"
)

// Placeholder stands in for a level the backend could not compute.
const Placeholder = "n/a"

// Panel titles for spread tickets.
const (
	TitleCallSpread = "SELL 1DTE CALL CREDIT SPREAD"
	TitlePutSpread  = "SELL 1DTE PUT CREDIT SPREAD"
	TitleWait       = "WAIT"
)

// Field is one labelled value of a spread ticket.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Panel is the rendered trade ticket. Wait panels carry Reason and no
// Fields; spread panels carry Fields and no Reason.
type Panel struct {
	Mode    core.TicketMode `json:"mode"`
	Title   string          `json:"title"`
	Reason  string          `json:"reason,omitempty"`
	Fields  []Field         `json:"fields,omitempty"`
	Summary string          `json:"summary"`
}

// IsWait reports whether the panel tells the trader to stand aside.
func (p *Panel) IsWait() bool {
	return p.Mode == core.ModeWait
}

// FormatNumber renders a number the way it arrived on the wire: no
// trailing zeros, no exponent for ordinary prices.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatLevel(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return FormatNumber(*v)
}

// Summary renders "Support: x | Resistance: y | ATR14: z".
func Summary(r *core.StrategyReport) string {
	return fmt.Sprintf("Support: %s | Resistance: %s | ATR14: %s",
		formatLevel(r.Support), formatLevel(r.Resistance), formatLevel(r.ATR14))
}

// SpreadTitle names the spread direction of an action.
func SpreadTitle(a core.SpreadAction) string {
	if a == core.ActionSellCallSpread {
		return TitleCallSpread
	}
	return TitlePutSpread
}

// TicketPanel renders the ticket of r. It returns nil when there is no
// report or the report has no ticket.
func TicketPanel(r *core.StrategyReport) *Panel {
	if r == nil || r.Ticket == nil {
		return nil
	}

	switch t := r.Ticket.(type) {
	case *core.WaitTicket:
		return &Panel{
			Mode:    core.ModeWait,
			Title:   TitleWait,
			Reason:  t.Reason,
			Summary: Summary(r),
		}
	case *core.SpreadTicket:
		return &Panel{
			Mode:  t.Signal,
			Title: SpreadTitle(t.Action),
			Fields: []Field{
				{Label: "Mode", Value: string(t.Signal)},
				{Label: "Short Strike", Value: FormatNumber(t.ShortStrike)},
				{Label: "Long Strike", Value: FormatNumber(t.LongStrike)},
				{Label: "Stop Level", Value: FormatNumber(t.StopLevel)},
			},
			Summary: Summary(r),
		}
	default:
		return nil
	}
}
