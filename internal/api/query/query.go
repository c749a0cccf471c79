// Package query parses and validates the symbol/timeframe inputs shared by
// the view pages and the JSON view endpoints.
package query

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/newthinker/protrade/internal/core"
)

// MaxSymbolLen bounds the symbol input.
const MaxSymbolLen = 16

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("nocontrol", validateNoControl)
}

// validateNoControl accepts any symbol text without control characters.
// Symbols are free text for the backend ($SPX, BRK B, ES=F); the client
// URL-encodes them.
func validateNoControl(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsControl) < 0
}

// View is the validated input of a view request.
type View struct {
	Symbol    string `validate:"required,max=16,nocontrol"`
	Timeframe string `validate:"required,oneof=30m 1d"`
}

// TF returns the validated timeframe.
func (v View) TF() core.Timeframe {
	return core.Timeframe(v.Timeframe)
}

// Error lists the rejected inputs by query parameter name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + e.Fields[k]
	}
	return strings.Join(parts, "; ")
}

// FieldMessages implements response.FieldError.
func (e *Error) FieldMessages() map[string]string {
	return e.Fields
}

// Parse reads symbol and tf from the request. Absent parameters take the
// defaults; present ones are normalized and validated. The returned error
// is core.ErrInvalidQuery wrapping an *Error.
func Parse(r *http.Request, defaultSymbol string, defaultTF core.Timeframe) (View, error) {
	q := r.URL.Query()

	v := View{Symbol: defaultSymbol, Timeframe: string(defaultTF)}
	if q.Has("symbol") {
		v.Symbol = q.Get("symbol")
	}
	if q.Has("tf") {
		v.Timeframe = q.Get("tf")
	}
	v.Symbol = strings.ToUpper(strings.TrimSpace(v.Symbol))
	v.Timeframe = strings.TrimSpace(v.Timeframe)

	if err := validate.Struct(v); err != nil {
		return v, core.WrapError(core.ErrInvalidQuery, toError(err))
	}
	return v, nil
}

func toError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[paramName(fe.Field())] = describe(fe)
	}
	return out
}

func paramName(field string) string {
	if field == "Timeframe" {
		return "tf"
	}
	return strings.ToLower(field)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of " + fe.Param()
	case "nocontrol":
		return "must not contain control characters"
	default:
		return "is invalid"
	}
}
