package service

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/tradelens/internal/analytics"
	"github.com/newthinker/tradelens/internal/core"
	"github.com/newthinker/tradelens/internal/storage/trade"
)

// StatsView is the stats payload together with the range it covers.
type StatsView struct {
	Range analytics.DateRange   `json:"range"`
	Stats analytics.StatsResult `json:"stats"`
}

// Stats returns the headline statistics for the query.
func (s *Service) Stats(ctx context.Context, q Query) (StatsView, error) {
	e, r, err := s.prepared(ctx, "stats", q)
	if err != nil {
		return StatsView{}, err
	}
	return StatsView{Range: r, Stats: e.stats}, nil
}

// Report returns stats plus the daily series.
func (s *Service) Report(ctx context.Context, q Query) (analytics.Report, error) {
	e, _, err := s.prepared(ctx, "report", q)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.Report{Stats: e.stats, Daily: analytics.DailySeries(e.trades)}, nil
}

// Daily returns the daily P&L series with cumulative P&L.
func (s *Service) Daily(ctx context.Context, q Query) ([]analytics.DailyPoint, error) {
	e, _, err := s.prepared(ctx, "daily", q)
	if err != nil {
		return nil, err
	}
	return analytics.DailySeries(e.trades), nil
}

// CalendarView is one month of calendar days with its summary.
type CalendarView struct {
	Year    int                     `json:"year"`
	Month   int                     `json:"month"`
	Days    []analytics.CalendarDay `json:"days"`
	Summary analytics.MonthStats    `json:"summary"`
}

// Calendar returns the month grid for the user. The query's period is
// ignored in favour of the month.
func (s *Service) Calendar(ctx context.Context, q Query, year int, month time.Month) (CalendarView, error) {
	if err := trade.ValidateUserID(q.UserID); err != nil {
		return CalendarView{}, err
	}
	if month < time.January || month > time.December {
		return CalendarView{}, core.WrapError(core.ErrInvalidQuery, fmt.Errorf("month %d out of range", month))
	}

	r := analytics.DateRange{
		Start: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC),
	}
	e, err := s.preparedRange(ctx, "calendar", q, r)
	if err != nil {
		return CalendarView{}, err
	}

	return CalendarView{
		Year:    year,
		Month:   int(month),
		Days:    analytics.CalendarMonth(e.trades, year, month),
		Summary: analytics.MonthSummary(e.trades, year, month),
	}, nil
}

// TopSymbols returns the most traded symbols. limit <= 0 uses the
// configured default.
func (s *Service) TopSymbols(ctx context.Context, q Query, limit int) ([]analytics.SymbolCount, error) {
	e, _, err := s.prepared(ctx, "symbols", q)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.topSymbols
	}
	return analytics.TopSymbols(e.trades, limit), nil
}

// Weekdays returns P&L per weekday of exit date.
func (s *Service) Weekdays(ctx context.Context, q Query) ([]analytics.WeekdayBucket, error) {
	e, _, err := s.prepared(ctx, "weekdays", q)
	if err != nil {
		return nil, err
	}
	return analytics.WeekdayBreakdown(e.trades), nil
}

// Users lists the users with stored trades.
func (s *Service) Users(ctx context.Context) ([]string, error) {
	return s.repo.Users(ctx)
}
