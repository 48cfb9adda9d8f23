package analytics

import (
	"math"
	"testing"

	"github.com/newthinker/tradelens/internal/core"
	"github.com/stretchr/testify/assert"
)

func ratiosOf(trades []ClassifiedTrade) RatioSet {
	return Ratios(trades, Aggregate(trades))
}

func TestRatios_Empty(t *testing.T) {
	assert.Equal(t, RatioSet{}, ratiosOf(nil))
}

func TestRatios_AllLosersProfitFactorZero(t *testing.T) {
	rs := ratiosOf(classified(pnlTrade("1", -50, "2024-03-01")))

	assert.Equal(t, 0.0, rs.ProfitFactor)
	assert.Equal(t, 0.0, rs.WinRate)
	assert.Equal(t, 0.0, rs.RiskRewardRatio)
	assert.False(t, math.IsNaN(rs.Sortino))
}

func TestRatios_NoLossesProfitFactorIsWinTotal(t *testing.T) {
	rs := ratiosOf(classified(pnlTrade("1", 30, "2024-03-01"), pnlTrade("2", 20, "2024-03-02")))

	assert.Equal(t, 50.0, rs.ProfitFactor)
	assert.Equal(t, 1.0, rs.WinRate)
	assert.Equal(t, 0.0, rs.Sortino)
}

func TestRatios_ProfitFactorAndRiskReward(t *testing.T) {
	trades := classified(
		pnlTrade("1", 30, "2024-03-01"),
		pnlTrade("2", 10, "2024-03-02"),
		pnlTrade("3", -10, "2024-03-03"),
		pnlTrade("4", -10, "2024-03-04"),
	)

	rs := ratiosOf(trades)
	assert.InDelta(t, 2.0, rs.ProfitFactor, 1e-9)
	assert.InDelta(t, 2.0, rs.RiskRewardRatio, 1e-9)
	assert.InDelta(t, 0.5, rs.WinRate, 1e-9)
}

func TestRatios_Sortino(t *testing.T) {
	trades := classified(
		pnlTrade("1", 40, "2024-03-01"),
		pnlTrade("2", -10, "2024-03-02"),
		pnlTrade("3", -20, "2024-03-03"),
	)

	avg := 10.0 / 3
	downside := math.Sqrt((100.0 + 400.0) / 2)
	assert.InDelta(t, avg/downside, ratiosOf(trades).Sortino, 1e-9)
}

func TestRatios_Sharpe(t *testing.T) {
	trades := classified(
		pnlTrade("1", 10, "2024-03-01"),
		pnlTrade("2", -5, "2024-03-02"),
	)

	mean := (0.10 - 0.05) / 2
	stdDev := math.Sqrt((math.Pow(0.10-mean, 2) + math.Pow(-0.05-mean, 2)) / 1)
	want := (mean - 0.03/252) / stdDev

	assert.InDelta(t, want, ratiosOf(trades).Sharpe, 1e-9)
}

func TestRatios_SharpeDegenerate(t *testing.T) {
	single := classified(pnlTrade("1", 10, "2024-03-01"))
	assert.Equal(t, 0.0, ratiosOf(single).Sharpe)

	identical := classified(pnlTrade("1", 10, "2024-03-01"), pnlTrade("2", 10, "2024-03-02"))
	assert.Equal(t, 0.0, ratiosOf(identical).Sharpe)
}

func TestRatios_SharpeZeroEntryValue(t *testing.T) {
	free := rec("1", core.DirectionLong, 0, 10, 1, "2024-03-01", "2024-03-02")
	trades := classified(free, pnlTrade("2", 10, "2024-03-03"))

	// Returns are 0 and 0.1; the zero-value trade contributes a zero return.
	mean := 0.05
	stdDev := math.Sqrt(2 * 0.05 * 0.05)
	assert.InDelta(t, (mean-0.03/252)/stdDev, ratiosOf(trades).Sharpe, 1e-9)
}

func TestRatios_AvgRiskRewardMatchesAverageWinOverLoss(t *testing.T) {
	trades := classified(
		pnlTrade("1", 30, "2024-03-01"),
		pnlTrade("2", -10, "2024-03-02"),
	)

	rs := ratiosOf(trades)
	assert.InDelta(t, 3.0, rs.RiskRewardRatio, 1e-9)
	assert.InDelta(t, 3.0, rs.AvgRiskRewardRatio, 1e-9)
	assert.Equal(t, 0.0, rs.AvgRMultiple, "no trade carries a risk percent")

	onlyWins := ratiosOf(classified(pnlTrade("1", 30, "2024-03-01")))
	assert.Equal(t, 0.0, onlyWins.AvgRiskRewardRatio)
}

func TestRatios_AvgRMultiple(t *testing.T) {
	win := rec("1", core.DirectionLong, 100, 104, 10, "2024-03-01", "2024-03-02")
	win.RiskPercent = "2"
	loss := rec("2", core.DirectionLong, 100, 99, 10, "2024-03-01", "2024-03-03")
	loss.RiskPercent = "2"
	unrisked := pnlTrade("3", 50, "2024-03-04")

	rs := ratiosOf(classified(win, loss, unrisked))
	assert.InDelta(t, (2.0+0.5)/2, rs.AvgRMultiple, 1e-9)
}

func TestRatios_WinRateBounds(t *testing.T) {
	cases := [][]ClassifiedTrade{
		classified(pnlTrade("1", 1, "2024-03-01")),
		classified(pnlTrade("1", -1, "2024-03-01")),
		classified(pnlTrade("1", 0, "2024-03-01"), pnlTrade("2", 3, "2024-03-01")),
	}
	for _, trades := range cases {
		wr := ratiosOf(trades).WinRate
		assert.GreaterOrEqual(t, wr, 0.0)
		assert.LessOrEqual(t, wr, 1.0)
	}
}

func TestFinite(t *testing.T) {
	assert.Equal(t, 0.0, finite(math.NaN()))
	assert.Equal(t, 0.0, finite(math.Inf(1)))
	assert.Equal(t, 0.0, finite(math.Inf(-1)))
	assert.Equal(t, 1.5, finite(1.5))
}
