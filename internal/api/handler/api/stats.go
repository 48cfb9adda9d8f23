// internal/api/handler/api/stats.go
package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/newthinker/tradelens/internal/api/response"
	"github.com/newthinker/tradelens/internal/period"
	"github.com/newthinker/tradelens/internal/service"
)

// StatsHandler serves the analytics views.
type StatsHandler struct {
	svc           *service.Service
	validate      *validator.Validate
	defaultPeriod period.Kind
}

// NewStatsHandler creates a stats handler. An empty default period selects
// this month.
func NewStatsHandler(svc *service.Service, defaultPeriod period.Kind) *StatsHandler {
	if defaultPeriod == "" {
		defaultPeriod = period.Default
	}
	return &StatsHandler{
		svc:           svc,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		defaultPeriod: defaultPeriod,
	}
}

func (h *StatsHandler) query(w http.ResponseWriter, r *http.Request) (service.Query, bool) {
	q, err := parseQuery(r, h.validate, h.defaultPeriod)
	if err != nil {
		response.Fail(w, err)
		return q, false
	}
	return q, true
}

// Stats returns the headline statistics.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	view, err := h.svc.Stats(r.Context(), q)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"user":     q.UserID,
		"period":   q.Period.String(),
		"category": q.Category,
		"range":    view.Range,
		"stats":    view.Stats,
	})
}

// Daily returns the daily P&L series.
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	points, err := h.svc.Daily(r.Context(), q)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.List(w, points)
}

// Calendar returns the month's calendar days and summary. Year and month
// default to the current month.
func (h *StatsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	today := h.svc.Resolve(period.Of(period.ThisMonth)).End
	year, err := intParam(r, "year", today.Year())
	if err != nil {
		response.Fail(w, err)
		return
	}
	month, err := intParam(r, "month", int(today.Month()))
	if err != nil {
		response.Fail(w, err)
		return
	}
	if err := h.validate.Struct(monthParams{Year: year, Month: month}); err != nil {
		response.Fail(w, invalid(err))
		return
	}

	view, err := h.svc.Calendar(r.Context(), q, year, time.Month(month))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, view)
}

// Symbols returns the most traded symbols.
func (h *StatsHandler) Symbols(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	limit, err := intParam(r, "limit", 0)
	if err != nil {
		response.Fail(w, err)
		return
	}
	if err := h.validate.Struct(limitParams{Limit: limit}); err != nil {
		response.Fail(w, invalid(err))
		return
	}

	symbols, err := h.svc.TopSymbols(r.Context(), q, limit)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.List(w, symbols)
}

// Weekdays returns P&L per weekday.
func (h *StatsHandler) Weekdays(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}

	buckets, err := h.svc.Weekdays(r.Context(), q)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.List(w, buckets)
}
