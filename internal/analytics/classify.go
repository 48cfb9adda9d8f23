package analytics

// Classify tags a trade as winner, loser or breakeven using BreakevenEpsilon
func Classify(t Trade) ClassifiedTrade {
	outcome := OutcomeBreakeven
	switch {
	case t.ProfitLoss > BreakevenEpsilon:
		outcome = OutcomeWinner
	case t.ProfitLoss < -BreakevenEpsilon:
		outcome = OutcomeLoser
	}
	return ClassifiedTrade{Trade: t, Outcome: outcome}
}

// ClassifyAll classifies every trade, preserving order
func ClassifyAll(trades []Trade) []ClassifiedTrade {
	out := make([]ClassifiedTrade, 0, len(trades))
	for _, t := range trades {
		out = append(out, Classify(t))
	}
	return out
}
