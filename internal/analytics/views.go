package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/newthinker/tradelens/internal/core"
)

// SymbolCount is one slice of the top-assets chart
type SymbolCount struct {
	Symbol    string         `json:"symbol"`
	AssetType core.AssetType `json:"asset_type"`
	Trades    int            `json:"trades"`
	PnL       float64        `json:"pnl"`
}

// TopSymbols ranks symbols by trade count, ties broken by symbol name.
// The asset type is taken from the first trade seen. n <= 0 returns all.
func TopSymbols(trades []ClassifiedTrade, n int) []SymbolCount {
	index := make(map[string]int)
	counts := make([]SymbolCount, 0)
	for _, t := range SortChronological(trades) {
		i, ok := index[t.Record.Symbol]
		if !ok {
			i = len(counts)
			index[t.Record.Symbol] = i
			counts = append(counts, SymbolCount{Symbol: t.Record.Symbol, AssetType: t.Record.AssetType})
		}
		counts[i].Trades++
		counts[i].PnL += t.ProfitLoss
	}

	slices.SortFunc(counts, func(a, b SymbolCount) int {
		if c := cmp.Compare(b.Trades, a.Trades); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})

	if n > 0 && n < len(counts) {
		counts = counts[:n]
	}
	return counts
}

// WeekdayBucket aggregates trades by the weekday of their exit date
type WeekdayBucket struct {
	Weekday string  `json:"weekday"`
	Trades  int     `json:"trades"`
	PnL     float64 `json:"pnl"`
	Winners int     `json:"winners"`
	Losers  int     `json:"losers"`
}

var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekdayBreakdown returns all seven weekdays, Monday first
func WeekdayBreakdown(trades []ClassifiedTrade) []WeekdayBucket {
	buckets := make([]WeekdayBucket, len(weekOrder))
	pos := make(map[time.Weekday]int, len(weekOrder))
	for i, d := range weekOrder {
		buckets[i].Weekday = d.String()
		pos[d] = i
	}

	for _, t := range SortChronological(trades) {
		if !t.Closed() {
			continue
		}
		b := &buckets[pos[t.ExitDate.Weekday()]]
		b.Trades++
		b.PnL += t.ProfitLoss
		switch t.Outcome {
		case OutcomeWinner:
			b.Winners++
		case OutcomeLoser:
			b.Losers++
		}
	}
	return buckets
}

// MonthStats is the header summary of a calendar month
type MonthStats struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	TotalTrades   int     `json:"total_trades"`
	TotalPnL      float64 `json:"total_pnl"`
	WinRate       float64 `json:"win_rate"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
}

// MonthSummary aggregates the trades exiting in one calendar month
func MonthSummary(trades []ClassifiedTrade, year int, month time.Month) MonthStats {
	selected := SortChronological(inMonth(trades, year, month))
	agg := Aggregate(selected)
	rs := Ratios(selected, agg)
	return MonthStats{
		Year:          year,
		Month:         int(month),
		TotalTrades:   agg.Count,
		TotalPnL:      agg.TotalPnL,
		WinRate:       rs.WinRate,
		WinningTrades: agg.Winners,
		LosingTrades:  agg.Losers,
	}
}
