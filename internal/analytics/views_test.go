package analytics

import (
	"testing"

	"github.com/newthinker/tradelens/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSymbol(r core.TradeRecord, symbol string, asset core.AssetType) core.TradeRecord {
	r.Symbol = symbol
	r.AssetType = asset
	return r
}

func TestTopSymbols(t *testing.T) {
	trades := classified(
		withSymbol(pnlTrade("1", 10, "2024-03-01"), "BTC", core.AssetCrypto),
		withSymbol(pnlTrade("2", -5, "2024-03-02"), "BTC", core.AssetCrypto),
		withSymbol(pnlTrade("3", 3, "2024-03-03"), "NVDA", core.AssetStock),
		withSymbol(pnlTrade("4", 1, "2024-03-04"), "AAPL", core.AssetStock),
		withSymbol(pnlTrade("5", 2, "2024-03-05"), "BTC", core.AssetCrypto),
	)

	top := TopSymbols(trades, 2)
	require.Len(t, top, 2)
	assert.Equal(t, SymbolCount{Symbol: "BTC", AssetType: core.AssetCrypto, Trades: 3, PnL: 7}, top[0])
	assert.Equal(t, "AAPL", top[1].Symbol)

	assert.Len(t, TopSymbols(trades, 0), 3)
	assert.Empty(t, TopSymbols(nil, 7))
}

func TestWeekdayBreakdown(t *testing.T) {
	trades := classified(
		pnlTrade("1", 10, "2024-03-04"), // Monday
		pnlTrade("2", -4, "2024-03-04"), // Monday
		pnlTrade("3", 2, "2024-03-08"),  // Friday
		pnlTrade("4", 2, "2024-03-10"),  // Sunday
	)

	buckets := WeekdayBreakdown(trades)
	require.Len(t, buckets, 7)

	assert.Equal(t, WeekdayBucket{Weekday: "Monday", Trades: 2, PnL: 6, Winners: 1, Losers: 1}, buckets[0])
	assert.Equal(t, "Friday", buckets[4].Weekday)
	assert.Equal(t, 1, buckets[4].Trades)
	assert.Equal(t, "Sunday", buckets[6].Weekday)
	assert.Equal(t, 1, buckets[6].Trades)
	assert.Zero(t, buckets[1].Trades)
}

func TestMonthSummary(t *testing.T) {
	trades := classified(
		pnlTrade("1", 10, "2024-03-04"),
		pnlTrade("2", -4, "2024-03-05"),
		pnlTrade("3", 0, "2024-03-06"),
		pnlTrade("4", 7, "2024-04-01"),
	)

	s := MonthSummary(trades, 2024, 3)
	assert.Equal(t, 2024, s.Year)
	assert.Equal(t, 3, s.Month)
	assert.Equal(t, 3, s.TotalTrades)
	assert.InDelta(t, 6.0, s.TotalPnL, 1e-9)
	assert.Equal(t, 1, s.WinningTrades)
	assert.Equal(t, 1, s.LosingTrades)
	assert.InDelta(t, 1.0/3, s.WinRate, 1e-9)
}

func TestMonthSummary_Empty(t *testing.T) {
	s := MonthSummary(nil, 2024, 1)
	assert.Equal(t, MonthStats{Year: 2024, Month: 1}, s)
}
