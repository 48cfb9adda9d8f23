package analytics

import (
	"fmt"
	"testing"

	"github.com/newthinker/tradelens/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailySeries_Cumulative(t *testing.T) {
	trades := classified(
		pnlTrade("3", 5, "2024-03-03"),
		pnlTrade("1", 10, "2024-03-01"),
		pnlTrade("2", -4, "2024-03-01"),
		pnlTrade("4", -20, "2024-03-02"),
	)

	points := DailySeries(trades)
	require.Len(t, points, 3)

	assert.Equal(t, DailyPoint{Date: "2024-03-01", PnL: 6, Trades: 2, Cumulative: 6}, points[0])
	assert.Equal(t, DailyPoint{Date: "2024-03-02", PnL: -20, Trades: 1, Cumulative: -14}, points[1])
	assert.Equal(t, DailyPoint{Date: "2024-03-03", PnL: 5, Trades: 1, Cumulative: -9}, points[2])
}

func TestDailySeries_Empty(t *testing.T) {
	points := DailySeries(nil)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestDailySeries_MatchesCalendarWithoutDetail(t *testing.T) {
	records := make([]core.TradeRecord, 0, 60)
	for i := range 60 {
		exit := fmt.Sprintf("2024-03-%02d", i%30+1)
		records = append(records, pnlTrade(fmt.Sprint(i), float64(i%7-3), exit))
	}
	trades := classified(records...)

	days := Calendar(trades)
	points := DailySeries(trades)
	require.Len(t, points, len(days))
	for i := range days {
		assert.Equal(t, days[i].DailyPoint, points[i])
	}

	calendarAllocs := testing.AllocsPerRun(20, func() { Calendar(trades) })
	dailyAllocs := testing.AllocsPerRun(20, func() { DailySeries(trades) })
	assert.Less(t, dailyAllocs, calendarAllocs, "daily series should not collect per-day trades and symbols")
}

func TestCalendar_KeepsSymbolsAndDetail(t *testing.T) {
	a := pnlTrade("1", 10, "2024-03-01")
	a.Notes = "opening range"
	a.Link = "https://example.com/1"
	b := pnlTrade("2", 3, "2024-03-01")
	b.Symbol = "NVDA"
	c := pnlTrade("3", 1, "2024-03-01")

	days := Calendar(classified(a, b, c))
	require.Len(t, days, 1)

	d := days[0]
	assert.Equal(t, []string{"AAPL", "NVDA"}, d.Symbols)
	require.Len(t, d.Entries, 3)
	assert.Equal(t, "opening range", d.Entries[0].Record.Notes)
	assert.Equal(t, "https://example.com/1", d.Entries[0].Record.Link)
	assert.Equal(t, OutcomeWinner, d.Entries[0].Outcome)
	assert.Equal(t, 14.0, d.PnL)
}

func TestCalendar_SkipsOpenTrades(t *testing.T) {
	days := Calendar(classified(pnlTrade("1", 1, ""), pnlTrade("2", 1, "2024-03-02")))

	require.Len(t, days, 1)
	assert.Equal(t, "2024-03-02", days[0].Date)
}

func TestCalendarMonth(t *testing.T) {
	trades := classified(
		pnlTrade("1", 10, "2024-02-28"),
		pnlTrade("2", 5, "2024-03-01"),
		pnlTrade("3", 7, "2024-03-15"),
		pnlTrade("4", 1, "2025-03-15"),
	)

	days := CalendarMonth(trades, 2024, 3)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-01", days[0].Date)
	assert.Equal(t, 5.0, days[0].Cumulative)
	assert.Equal(t, 12.0, days[1].Cumulative)
}

func TestCalendar_CryptoSymbol(t *testing.T) {
	btc := pnlTrade("1", 100, "2024-03-01")
	btc.Symbol = "BTC"
	btc.AssetType = core.AssetCrypto

	days := Calendar(classified(btc))
	require.Len(t, days, 1)
	assert.Equal(t, core.AssetCrypto, days[0].Entries[0].Record.AssetType)
}
