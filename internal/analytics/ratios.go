package analytics

import (
	"math"
)

const (
	// AnnualRiskFreeRate is the yearly risk-free baseline for Sharpe
	AnnualRiskFreeRate = 0.03
	// TradingDaysPerYear converts the annual rate to a per-trade rate
	TradingDaysPerYear = 252
)

// RatioSet holds the derived performance ratios
type RatioSet struct {
	WinRate            float64
	ProfitFactor       float64
	RiskRewardRatio    float64
	AvgRiskRewardRatio float64
	AvgRMultiple       float64
	Sortino            float64
	Sharpe             float64
}

// Ratios derives win rate, profit factor, risk/reward, R-multiple, Sortino
// and Sharpe.
// Degenerate inputs yield 0, never NaN or Inf.
func Ratios(trades []ClassifiedTrade, agg Aggregates) RatioSet {
	if agg.Count == 0 {
		return RatioSet{}
	}

	rs := RatioSet{
		WinRate:      float64(agg.Winners) / float64(agg.Count),
		ProfitFactor: profitFactor(agg.WinAmount, agg.LossAmount),
		AvgRMultiple: avgRMultiple(trades),
		Sortino:      sortino(trades, agg.AvgPnL),
		Sharpe:       sharpe(trades),
	}
	if agg.AvgWinningTrade != 0 && agg.AvgLosingTrade != 0 {
		rs.RiskRewardRatio = math.Abs(agg.AvgWinningTrade / agg.AvgLosingTrade)
	}
	// The dashboard reports both fields from the same average win over
	// average loss.
	rs.AvgRiskRewardRatio = rs.RiskRewardRatio

	rs.WinRate = finite(rs.WinRate)
	rs.ProfitFactor = finite(rs.ProfitFactor)
	rs.RiskRewardRatio = finite(rs.RiskRewardRatio)
	rs.AvgRiskRewardRatio = finite(rs.AvgRiskRewardRatio)
	rs.AvgRMultiple = finite(rs.AvgRMultiple)
	rs.Sortino = finite(rs.Sortino)
	rs.Sharpe = finite(rs.Sharpe)
	return rs
}

// profitFactor returns gross wins over gross losses. Without losses the raw
// win total is reported instead of infinity.
func profitFactor(winAmount, lossAmount float64) float64 {
	if lossAmount == 0 {
		return winAmount
	}
	return winAmount / lossAmount
}

// sortino divides the average P&L by the root mean square of losing P&L
func sortino(trades []ClassifiedTrade, avgPnL float64) float64 {
	var sumSq float64
	var n int
	for _, t := range trades {
		if t.IsLoss() {
			sumSq += t.ProfitLoss * t.ProfitLoss
			n++
		}
	}
	if n == 0 {
		return 0
	}
	downside := math.Sqrt(sumSq / float64(n))
	if downside == 0 {
		return 0
	}
	return avgPnL / downside
}

// sharpe computes the per-trade Sharpe ratio of returns on entry value
// against a daily risk-free rate, using the sample standard deviation.
func sharpe(trades []ClassifiedTrade) float64 {
	if len(trades) < 2 {
		return 0
	}

	returns := make([]float64, len(trades))
	var sum float64
	for i, t := range trades {
		if v := t.EntryValue(); v > 0 {
			returns[i] = t.ProfitLoss / v
		}
		sum += returns[i]
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)-1))
	if stdDev == 0 {
		return 0
	}

	riskFree := AnnualRiskFreeRate / TradingDaysPerYear
	return (mean - riskFree) / stdDev
}

// avgRMultiple averages per-trade R-multiples: |P&L| over the capital put
// at risk (entry value times risk percent). Trades without a risk percent
// are skipped.
func avgRMultiple(trades []ClassifiedTrade) float64 {
	var sum float64
	var n int
	for _, t := range trades {
		if t.RiskPercent <= 0 {
			continue
		}
		risk := t.EntryValue() * t.RiskPercent / 100
		if risk <= 0 {
			continue
		}
		sum += math.Abs(t.ProfitLoss) / risk
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
