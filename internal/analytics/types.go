package analytics

import (
	"time"

	"github.com/newthinker/tradelens/internal/core"
)

// BreakevenEpsilon is the P&L magnitude at or below which a trade counts as
// breakeven. Every consumer of a classification uses this value.
const BreakevenEpsilon = 0.01

// DateLayout is the calendar-day key format used for buckets and filters.
const DateLayout = "2006-01-02"

// Trade is a normalized trade record with numeric fields and signed P&L
type Trade struct {
	Record       core.TradeRecord `json:"record"`
	EntryDate    time.Time        `json:"entry_date"`
	ExitDate     time.Time        `json:"exit_date"`
	EntryPrice   float64          `json:"entry_price"`
	ExitPrice    float64          `json:"exit_price"`
	Quantity     float64          `json:"quantity"`
	RiskPercent  float64          `json:"risk_percent"`
	ProfitLoss   float64          `json:"profit_loss"`
	HoldTimeDays int              `json:"hold_time_days"`
}

// Closed returns true if the trade has a usable exit date
func (t Trade) Closed() bool {
	return !t.ExitDate.IsZero()
}

// EntryValue is the capital committed at entry
func (t Trade) EntryValue() float64 {
	return t.EntryPrice * t.Quantity
}

// DayKey returns the exit date as YYYY-MM-DD, or "" for open trades
func (t Trade) DayKey() string {
	if !t.Closed() {
		return ""
	}
	return t.ExitDate.Format(DateLayout)
}

// Outcome classifies a trade result
type Outcome string

const (
	OutcomeWinner    Outcome = "winner"
	OutcomeLoser     Outcome = "loser"
	OutcomeBreakeven Outcome = "breakeven"
)

// ClassifiedTrade is a normalized trade tagged with its outcome
type ClassifiedTrade struct {
	Trade
	Outcome Outcome `json:"outcome"`
}

// IsWin returns true if the trade was a winner
func (t ClassifiedTrade) IsWin() bool {
	return t.Outcome == OutcomeWinner
}

// IsLoss returns true if the trade was a loser
func (t ClassifiedTrade) IsLoss() bool {
	return t.Outcome == OutcomeLoser
}

// StatsResult holds every dashboard metric for one filtered query.
// All fields are finite, and zero for an empty trade set.
type StatsResult struct {
	TotalTrades          int `json:"total_trades"`
	WinningTrades        int `json:"winning_trades"`
	LosingTrades         int `json:"losing_trades"`
	BreakEvenTrades      int `json:"break_even_trades"`
	MaxConsecutiveWins   int `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int `json:"max_consecutive_losses"`

	TotalPnL        float64 `json:"total_pnl"`
	AvgPnL          float64 `json:"avg_pnl"`
	AvgWinningTrade float64 `json:"avg_winning_trade"`
	AvgLosingTrade  float64 `json:"avg_losing_trade"` // Negative or zero
	LargestProfit   float64 `json:"largest_profit"`
	LargestLoss     float64 `json:"largest_loss"` // Negative or zero

	WinRate            float64 `json:"win_rate"` // Fraction in [0, 1]
	ProfitFactor       float64 `json:"profit_factor"`
	Sortino            float64 `json:"sortino"`
	Sharpe             float64 `json:"sharpe"`
	RiskRewardRatio    float64 `json:"risk_reward_ratio"`
	AvgRiskRewardRatio float64 `json:"avg_risk_reward_ratio"`
	AvgRMultiple       float64 `json:"avg_r_multiple"` // Over trades with a risk percent

	AvgHoldTime        float64 `json:"avg_hold_time"` // Days
	AvgWinningHoldTime float64 `json:"avg_winning_hold_time"`
	AvgLosingHoldTime  float64 `json:"avg_losing_hold_time"`
}
