package analytics

import (
	"slices"
	"time"
)

// DailyPoint is one day of the P&L line chart
type DailyPoint struct {
	Date       string  `json:"date"`
	PnL        float64 `json:"pnl"`
	Trades     int     `json:"trades"`
	Cumulative float64 `json:"cumulative_pnl"`
}

// CalendarDay summarizes one exit day for the calendar view, with the
// full trade detail for click-through.
type CalendarDay struct {
	DailyPoint
	Symbols []string          `json:"symbols"`
	Entries []ClassifiedTrade `json:"trades"`
}

// groupByDay buckets closed trades by exit day in ascending date order and
// computes the running cumulative P&L. each, when set, sees every trade with
// the index of its day.
func groupByDay(trades []ClassifiedTrade, each func(day int, t ClassifiedTrade)) []DailyPoint {
	points := make([]DailyPoint, 0)
	index := make(map[string]int)

	// Chronological input makes days come out in ascending order.
	for _, t := range SortChronological(trades) {
		key := t.DayKey()
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(points)
			index[key] = i
			points = append(points, DailyPoint{Date: key})
		}
		points[i].PnL += t.ProfitLoss
		points[i].Trades++
		if each != nil {
			each(i, t)
		}
	}

	var running float64
	for i := range points {
		running += points[i].PnL
		points[i].Cumulative = running
	}
	return points
}

// Calendar groups trades by exit day in ascending date order and computes
// the running cumulative P&L. Open trades are skipped.
func Calendar(trades []ClassifiedTrade) []CalendarDay {
	days := make([]CalendarDay, 0)
	points := groupByDay(trades, func(i int, t ClassifiedTrade) {
		if i == len(days) {
			days = append(days, CalendarDay{Symbols: []string{}})
		}
		day := &days[i]
		day.Entries = append(day.Entries, t)
		if !slices.Contains(day.Symbols, t.Record.Symbol) {
			day.Symbols = append(day.Symbols, t.Record.Symbol)
		}
	})
	for i := range days {
		days[i].DailyPoint = points[i]
	}
	return days
}

// DailySeries returns per-day P&L, trade count and cumulative P&L without
// the per-day trade detail.
func DailySeries(trades []ClassifiedTrade) []DailyPoint {
	return groupByDay(trades, nil)
}

// CalendarMonth returns calendar days for trades exiting in the given month.
// Cumulative P&L restarts at the first day of the month.
func CalendarMonth(trades []ClassifiedTrade, year int, month time.Month) []CalendarDay {
	return Calendar(inMonth(trades, year, month))
}

func inMonth(trades []ClassifiedTrade, year int, month time.Month) []ClassifiedTrade {
	out := make([]ClassifiedTrade, 0, len(trades))
	for _, t := range trades {
		if !t.Closed() {
			continue
		}
		if y, m, _ := t.ExitDate.Date(); y == year && m == month {
			out = append(out, t)
		}
	}
	return out
}
