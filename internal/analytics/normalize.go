package analytics

import (
	"math"
	"strings"
	"time"

	"github.com/newthinker/tradelens/internal/core"
	"github.com/shopspring/decimal"
)

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Normalize converts a raw record into a numeric trade. It never fails:
// unparsable or non-finite numbers become 0 before P&L is computed, and
// unparsable dates stay zero.
func Normalize(r core.TradeRecord) Trade {
	entry := parseDecimal(r.EntryPrice)
	exit := parseDecimal(r.ExitPrice)
	qty := parseDecimal(r.Quantity)

	// Anything that is not long is priced as a short, as the journal always has.
	var pnl decimal.Decimal
	if r.Direction == core.DirectionLong {
		pnl = exit.Sub(entry).Mul(qty)
	} else {
		pnl = entry.Sub(exit).Mul(qty)
	}

	t := Trade{
		Record:      r,
		EntryDate:   parseDate(r.EntryDate),
		ExitDate:    parseDate(r.ExitDate),
		EntryPrice:  toFloat(entry),
		ExitPrice:   toFloat(exit),
		Quantity:    toFloat(qty),
		RiskPercent: toFloat(parseDecimal(r.RiskPercent)),
		ProfitLoss:  toFloat(pnl),
	}
	if !t.EntryDate.IsZero() && !t.ExitDate.IsZero() {
		t.HoldTimeDays = int(t.ExitDate.Sub(t.EntryDate).Hours() / 24)
	}
	return t
}

// NormalizeAll normalizes every record, preserving input order
func NormalizeAll(records []core.TradeRecord) []Trade {
	out := make([]Trade, 0, len(records))
	for _, r := range records {
		out = append(out, Normalize(r))
	}
	return out
}

// Decimal magnitudes beyond these overflow or underflow a float64.
const (
	maxMagnitude = 309
	minMagnitude = -324
)

// ParseNumber parses a raw number the way the normalizer does. ok is false
// when the value is empty, malformed or too large for a float64. Values too
// small for a float64 parse as zero.
func ParseNumber(n core.RawNumber) (d decimal.Decimal, ok bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if d.IsZero() {
		return decimal.Zero, true
	}

	// The exponent is not bounded by the input length and arithmetic on it
	// scales with its size, so range-check before any Sub or Mul.
	magnitude := int64(d.Exponent()) + int64(d.NumDigits())
	if magnitude > maxMagnitude {
		return decimal.Zero, false
	}
	if magnitude < minMagnitude {
		return decimal.Zero, true
	}
	if f, _ := d.Float64(); math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return d, true
}

// parseDecimal is ParseNumber with every failure mapped to zero, so P&L is
// always computed from the same operands the trade reports.
func parseDecimal(n core.RawNumber) decimal.Decimal {
	d, _ := ParseNumber(n)
	return d
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseDate returns the calendar day of s at UTC midnight, or the zero time.
// Timestamps keep the day as written in their own offset.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t)
		}
	}
	return time.Time{}
}

// ParseDay parses a trade date the way the normalizer does. The zero time
// means the value is empty or unparsable.
func ParseDay(s string) time.Time {
	return parseDate(s)
}

// Day truncates t to its calendar day, expressed at UTC midnight
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
