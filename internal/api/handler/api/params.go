// internal/api/handler/api/params.go
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/newthinker/tradelens/internal/core"
	"github.com/newthinker/tradelens/internal/period"
	"github.com/newthinker/tradelens/internal/service"
)

// queryParams are the filters shared by every stats view.
type queryParams struct {
	Period    string `validate:"omitempty,max=32"`
	From      string `validate:"omitempty,datetime=2006-01-02"`
	To        string `validate:"omitempty,datetime=2006-01-02"`
	Category  string `validate:"omitempty,oneof=total stock crypto"`
	TradeType string `validate:"omitempty,oneof=stock crypto"`
}

type limitParams struct {
	Limit int `validate:"gte=0,lte=100"`
}

type monthParams struct {
	Year  int `validate:"gte=1900,lte=9999"`
	Month int `validate:"gte=1,lte=12"`
}

func invalid(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s: failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		err = errors.New(strings.Join(parts, "; "))
	}
	return core.WrapError(core.ErrInvalidQuery, err)
}

// parseQuery reads the user path value and the filter query string.
func parseQuery(r *http.Request, v *validator.Validate, fallback period.Kind) (service.Query, error) {
	q := r.URL.Query()
	p := queryParams{
		Period:    q.Get("period"),
		From:      q.Get("from"),
		To:        q.Get("to"),
		Category:  strings.ToLower(q.Get("category")),
		TradeType: strings.ToLower(q.Get("trade_type")),
	}
	if err := v.Struct(p); err != nil {
		return service.Query{}, invalid(err)
	}

	if p.Period == "" && p.From == "" && p.To == "" {
		p.Period = string(fallback)
	}
	per, err := period.Parse(p.Period, p.From, p.To)
	if err != nil {
		return service.Query{}, err
	}

	category, _ := core.ParseCategory(p.Category)
	return service.Query{
		UserID:    r.PathValue("user"),
		Period:    per,
		Category:  category,
		TradeType: core.AssetType(p.TradeType),
	}, nil
}

// intParam parses an optional integer query value.
func intParam(r *http.Request, name string, fallback int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, core.WrapError(core.ErrInvalidQuery, fmt.Errorf("%s must be an integer, got %q", name, s))
	}
	return n, nil
}
