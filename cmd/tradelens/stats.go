package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/newthinker/tradelens/internal/analytics"
	"github.com/newthinker/tradelens/internal/core"
	"github.com/newthinker/tradelens/internal/period"
	"github.com/newthinker/tradelens/internal/tradefile"
)

var statsOpts struct {
	file      string
	period    string
	from      string
	to        string
	category  string
	tradeType string
	timezone  string
	top       int
	json      bool
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute performance stats from a trade file",
	Long: `Compute performance stats straight from a JSON, YAML or CSV trade file
without starting the server or touching any storage.`,
	Example: `  tradelens stats -f trades.csv --period last-90-days
  tradelens stats -f trades.json --from 2024-01-01 --to 2024-03-31 --category crypto --json`,
	RunE: runStats,
}

func init() {
	f := statsCmd.Flags()
	f.StringVarP(&statsOpts.file, "file", "f", "", "trade file (.json, .yaml, .yml or .csv)")
	f.StringVarP(&statsOpts.period, "period", "p", "", "named period (this-month, last-7-days, last-month, last-90-days, year-to-date, all-time)")
	f.StringVar(&statsOpts.from, "from", "", "custom range start, YYYY-MM-DD")
	f.StringVar(&statsOpts.to, "to", "", "custom range end, YYYY-MM-DD")
	f.StringVar(&statsOpts.category, "category", "total", "asset category: total, stock or crypto")
	f.StringVar(&statsOpts.tradeType, "trade-type", "", "restrict to one asset type: stock or crypto")
	f.StringVar(&statsOpts.timezone, "timezone", "", "time zone used to resolve the period (defaults to analytics.timezone)")
	f.IntVar(&statsOpts.top, "top", 0, "top symbols to list (defaults to analytics.top_symbols)")
	f.BoolVar(&statsOpts.json, "json", false, "print the report as JSON")
	_ = statsCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(statsCmd)
}

type statsOutput struct {
	Period     string                  `json:"period"`
	Range      analytics.DateRange     `json:"range"`
	Stats      analytics.StatsResult   `json:"stats"`
	Daily      []analytics.DailyPoint  `json:"daily"`
	TopSymbols []analytics.SymbolCount `json:"top_symbols"`
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	tz := statsOpts.timezone
	if tz == "" {
		tz = cfg.Analytics.Timezone
	}
	loc := time.UTC
	if tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
	}

	name := statsOpts.period
	if name == "" && statsOpts.from == "" && statsOpts.to == "" {
		name = cfg.Analytics.DefaultPeriod
	}
	per, err := period.Parse(name, statsOpts.from, statsOpts.to)
	if err != nil {
		return err
	}

	category, ok := core.ParseCategory(statsOpts.category)
	if !ok {
		return core.WrapError(core.ErrInvalidQuery, fmt.Errorf("unknown category %q", statsOpts.category))
	}
	tradeType := core.AssetType(strings.ToLower(statsOpts.tradeType))
	if tradeType != "" && !tradeType.IsValid() {
		return core.WrapError(core.ErrInvalidQuery, fmt.Errorf("unknown trade type %q", statsOpts.tradeType))
	}

	records, err := tradefile.Load(statsOpts.file)
	if err != nil {
		return err
	}

	top := statsOpts.top
	if top <= 0 {
		top = cfg.Analytics.TopSymbols
	}

	r := per.Resolve(time.Now().In(loc))
	trades := analytics.Prepare(records, analytics.Criteria{
		Range:     r,
		Category:  category,
		TradeType: tradeType,
	})
	out := statsOutput{
		Period:     per.String(),
		Range:      r,
		Stats:      analytics.Summarize(trades),
		Daily:      analytics.DailySeries(trades),
		TopSymbols: analytics.TopSymbols(trades, top),
	}

	if statsOpts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printStats(cmd.OutOrStdout(), len(records), out)
	return nil
}

func printStats(w io.Writer, loaded int, out statsOutput) {
	s := out.Stats
	fmt.Fprintf(w, "Period: %s (%s to %s)\n", out.Period, dayOrOpen(out.Range.Start), dayOrOpen(out.Range.End))
	fmt.Fprintf(w, "Trades: %s closed of %s loaded\n\n", humanize.Comma(int64(s.TotalTrades)), humanize.Comma(int64(loaded)))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(label, value string) { fmt.Fprintf(tw, "  %s\t%s\n", label, value) }

	row("Total P&L", money(s.TotalPnL))
	row("Avg P&L", money(s.AvgPnL))
	row("Win rate", fmt.Sprintf("%.2f%%", s.WinRate*100))
	row("Winners / losers / break-even", fmt.Sprintf("%d / %d / %d", s.WinningTrades, s.LosingTrades, s.BreakEvenTrades))
	row("Avg winner", money(s.AvgWinningTrade))
	row("Avg loser", money(s.AvgLosingTrade))
	row("Largest profit", money(s.LargestProfit))
	row("Largest loss", money(s.LargestLoss))
	row("Max consecutive wins", humanize.Comma(int64(s.MaxConsecutiveWins)))
	row("Max consecutive losses", humanize.Comma(int64(s.MaxConsecutiveLosses)))
	row("Profit factor", ratio(s.ProfitFactor))
	row("Risk/reward", ratio(s.RiskRewardRatio))
	row("Avg risk/reward", ratio(s.AvgRiskRewardRatio))
	row("Avg R-multiple", ratio(s.AvgRMultiple))
	row("Sortino", ratio(s.Sortino))
	row("Sharpe", ratio(s.Sharpe))
	row("Avg hold", holdDays(s.AvgHoldTime))
	row("Avg winning hold", holdDays(s.AvgWinningHoldTime))
	row("Avg losing hold", holdDays(s.AvgLosingHoldTime))
	tw.Flush()

	if len(out.TopSymbols) == 0 {
		return
	}
	fmt.Fprintln(w, "\nTop symbols:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, sc := range out.TopSymbols {
		fmt.Fprintf(tw, "  %s\t%s\t%s trades\t%s\n", sc.Symbol, sc.AssetType, humanize.Comma(int64(sc.Trades)), money(sc.PnL))
	}
	tw.Flush()
}

func money(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

func ratio(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func holdDays(v float64) string {
	return humanize.CommafWithDigits(v, 1) + " days"
}

func dayOrOpen(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return t.Format(analytics.DateLayout)
}
