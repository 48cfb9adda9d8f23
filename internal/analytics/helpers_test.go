package analytics

import (
	"github.com/newthinker/tradelens/internal/core"
)

// rec builds a closed stock trade with numeric fields
func rec(id string, dir core.Direction, entry, exit, qty float64, entryDate, exitDate string) core.TradeRecord {
	return core.TradeRecord{
		ID:         id,
		Symbol:     "AAPL",
		AssetType:  core.AssetStock,
		Direction:  dir,
		EntryDate:  entryDate,
		ExitDate:   exitDate,
		EntryPrice: core.Number(entry),
		ExitPrice:  core.Number(exit),
		Quantity:   core.Number(qty),
	}
}

// pnlTrade builds a long trade with the given P&L on a $100 entry, qty 1
func pnlTrade(id string, pnl float64, exitDate string) core.TradeRecord {
	return rec(id, core.DirectionLong, 100, 100+pnl, 1, "2024-03-01", exitDate)
}

func classified(records ...core.TradeRecord) []ClassifiedTrade {
	return ClassifyAll(NormalizeAll(records))
}
