package analytics

import (
	"github.com/newthinker/tradelens/internal/core"
)

// Report is the output of one engine query
type Report struct {
	Stats StatsResult  `json:"stats"`
	Daily []DailyPoint `json:"daily"`
}

// Prepare runs the normalize, filter and classify stages and returns the
// selected trades in canonical chronological order. Aggregating over a fixed
// order makes every result independent of the input order.
func Prepare(records []core.TradeRecord, c Criteria) []ClassifiedTrade {
	return SortChronological(ClassifyAll(Filter(NormalizeAll(records), c)))
}

// Summarize computes the stats for already prepared trades
func Summarize(trades []ClassifiedTrade) StatsResult {
	agg := Aggregate(trades)
	rs := Ratios(trades, agg)
	maxWins, maxLosses := Streaks(trades)

	return StatsResult{
		TotalTrades:          agg.Count,
		WinningTrades:        agg.Winners,
		LosingTrades:         agg.Losers,
		BreakEvenTrades:      agg.Breakeven,
		MaxConsecutiveWins:   maxWins,
		MaxConsecutiveLosses: maxLosses,

		TotalPnL:        finite(agg.TotalPnL),
		AvgPnL:          finite(agg.AvgPnL),
		AvgWinningTrade: finite(agg.AvgWinningTrade),
		AvgLosingTrade:  finite(agg.AvgLosingTrade),
		LargestProfit:   finite(agg.LargestProfit),
		LargestLoss:     finite(agg.LargestLoss),

		WinRate:            rs.WinRate,
		ProfitFactor:       rs.ProfitFactor,
		Sortino:            rs.Sortino,
		Sharpe:             rs.Sharpe,
		RiskRewardRatio:    rs.RiskRewardRatio,
		AvgRiskRewardRatio: rs.AvgRiskRewardRatio,
		AvgRMultiple:       rs.AvgRMultiple,

		AvgHoldTime:        finite(agg.AvgHoldTime),
		AvgWinningHoldTime: finite(agg.AvgWinningHoldTime),
		AvgLosingHoldTime:  finite(agg.AvgLosingHoldTime),
	}
}

// Compute runs the whole pipeline: stats plus the daily P&L series
func Compute(records []core.TradeRecord, c Criteria) Report {
	trades := Prepare(records, c)
	return Report{
		Stats: Summarize(trades),
		Daily: DailySeries(trades),
	}
}

// ComputeStats runs the pipeline and returns only the stats
func ComputeStats(records []core.TradeRecord, c Criteria) StatsResult {
	return Summarize(Prepare(records, c))
}
