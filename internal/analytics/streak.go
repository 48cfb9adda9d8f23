package analytics

import (
	"cmp"
	"slices"
	"strings"
)

// compareTrades orders trades by exit date, then entry date, then record ID.
// Trades equal on all three keep their input order under a stable sort.
func compareTrades(a, b Trade) int {
	if c := a.ExitDate.Compare(b.ExitDate); c != 0 {
		return c
	}
	if c := a.EntryDate.Compare(b.EntryDate); c != 0 {
		return c
	}
	return cmp.Compare(strings.TrimSpace(a.Record.ID), strings.TrimSpace(b.Record.ID))
}

// SortChronological returns a copy of trades in canonical exit-date order
func SortChronological(trades []ClassifiedTrade) []ClassifiedTrade {
	sorted := slices.Clone(trades)
	slices.SortStableFunc(sorted, func(a, b ClassifiedTrade) int {
		return compareTrades(a.Trade, b.Trade)
	})
	return sorted
}

// Streaks returns the longest runs of consecutive winners and losers in
// exit-date order. A breakeven trade ends both runs.
func Streaks(trades []ClassifiedTrade) (maxWins, maxLosses int) {
	var wins, losses int
	for _, t := range SortChronological(trades) {
		switch t.Outcome {
		case OutcomeWinner:
			wins++
			losses = 0
		case OutcomeLoser:
			losses++
			wins = 0
		default:
			wins = 0
			losses = 0
		}
		maxWins = max(maxWins, wins)
		maxLosses = max(maxLosses, losses)
	}
	return maxWins, maxLosses
}
