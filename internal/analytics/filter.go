package analytics

import (
	"time"

	"github.com/newthinker/tradelens/internal/core"
)

// DateRange is an inclusive window of calendar days. A zero bound is open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the calendar day of t lies within the range.
// Bounds are compared by their calendar day in their own location.
func (r DateRange) Contains(t time.Time) bool {
	day := Day(t)
	if !r.Start.IsZero() && day.Before(Day(r.Start)) {
		return false
	}
	if !r.End.IsZero() && day.After(Day(r.End)) {
		return false
	}
	return true
}

// Criteria selects the trades a query aggregates over
type Criteria struct {
	Range     DateRange
	Category  core.Category
	TradeType core.AssetType // Optional, empty matches all
}

// Filter keeps closed trades whose exit date falls in the range and whose
// asset type matches the category and trade type. Entry dates are never
// consulted.
func Filter(trades []Trade, c Criteria) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if !t.Closed() {
			continue
		}
		if !c.Range.Contains(t.ExitDate) {
			continue
		}
		if !c.Category.Matches(t.Record.AssetType) {
			continue
		}
		if c.TradeType != "" && t.Record.AssetType != c.TradeType {
			continue
		}
		out = append(out, t)
	}
	return out
}
