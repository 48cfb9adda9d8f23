package analytics

// Aggregates holds sums, counts, averages and extrema over classified trades
type Aggregates struct {
	Count     int
	Winners   int
	Losers    int
	Breakeven int

	TotalPnL   float64
	AvgPnL     float64
	WinAmount  float64 // Sum of winning P&L
	LossAmount float64 // Absolute sum of losing P&L

	AvgWinningTrade float64
	AvgLosingTrade  float64 // Signed, <= 0
	LargestProfit   float64
	LargestLoss     float64 // Signed, <= 0

	AvgHoldTime        float64
	AvgWinningHoldTime float64
	AvgLosingHoldTime  float64
}

// Aggregate computes totals over classified trades. Empty input yields zeros.
func Aggregate(trades []ClassifiedTrade) Aggregates {
	var a Aggregates
	if len(trades) == 0 {
		return a
	}

	var lossSum float64
	var holdAll, holdWin, holdLoss int
	for _, t := range trades {
		a.Count++
		a.TotalPnL += t.ProfitLoss
		holdAll += t.HoldTimeDays

		switch t.Outcome {
		case OutcomeWinner:
			a.Winners++
			a.WinAmount += t.ProfitLoss
			holdWin += t.HoldTimeDays
			if a.Winners == 1 || t.ProfitLoss > a.LargestProfit {
				a.LargestProfit = t.ProfitLoss
			}
		case OutcomeLoser:
			a.Losers++
			lossSum += t.ProfitLoss
			holdLoss += t.HoldTimeDays
			if a.Losers == 1 || t.ProfitLoss < a.LargestLoss {
				a.LargestLoss = t.ProfitLoss
			}
		default:
			a.Breakeven++
		}
	}

	a.LossAmount = -lossSum
	a.AvgPnL = a.TotalPnL / float64(a.Count)
	a.AvgHoldTime = float64(holdAll) / float64(a.Count)

	if a.Winners > 0 {
		a.AvgWinningTrade = a.WinAmount / float64(a.Winners)
		a.AvgWinningHoldTime = float64(holdWin) / float64(a.Winners)
	}
	if a.Losers > 0 {
		a.AvgLosingTrade = lossSum / float64(a.Losers)
		a.AvgLosingHoldTime = float64(holdLoss) / float64(a.Losers)
	}

	return a
}
