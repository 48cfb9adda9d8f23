// Package period resolves dashboard period selections to concrete date ranges.
package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/tradelens/internal/analytics"
	"github.com/newthinker/tradelens/internal/core"
)

// Kind identifies a period selection
type Kind string

const (
	ThisMonth  Kind = "this-month"
	OneWeek    Kind = "last-7-days"
	LastMonth  Kind = "last-month"
	Last90Days Kind = "last-90-days"
	YearToDate Kind = "year-to-date"
	AllTime    Kind = "all-time"
	Custom     Kind = "custom"
)

// Default is the period used when none is selected
const Default = ThisMonth

var aliases = map[string]Kind{
	"this-month":   ThisMonth,
	"thismonth":    ThisMonth,
	"last-7-days":  OneWeek,
	"one-week":     OneWeek,
	"oneweek":      OneWeek,
	"1w":           OneWeek,
	"last-month":   LastMonth,
	"lastmonth":    LastMonth,
	"last-90-days": Last90Days,
	"last90days":   Last90Days,
	"year-to-date": YearToDate,
	"ytd":          YearToDate,
	"all-time":     AllTime,
	"allstats":     AllTime,
	"all":          AllTime,
	"custom":       Custom,
}

// Period is a closed selection: one of the named kinds, or Custom with
// explicit bounds.
type Period struct {
	Kind  Kind
	Start time.Time // Custom only
	End   time.Time // Custom only
}

// Of returns a named period
func Of(kind Kind) Period {
	return Period{Kind: kind}
}

// Between returns a custom period. Reversed bounds are swapped.
func Between(start, end time.Time) Period {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		start, end = end, start
	}
	return Period{Kind: Custom, Start: start, End: end}
}

// ParseKind accepts the dashboard names in kebab, snake or camel case.
// An empty name selects Default.
func ParseKind(name string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Default, nil
	}
	key = strings.ReplaceAll(key, "_", "-")
	if k, ok := aliases[key]; ok {
		return k, nil
	}
	return "", core.WrapError(core.ErrInvalidQuery, fmt.Errorf("unknown period %q", name))
}

// Parse builds a period from a name and optional YYYY-MM-DD bounds.
// Supplying bounds with an empty name selects Custom.
func Parse(name, from, to string) (Period, error) {
	if name == "" && (from != "" || to != "") {
		name = string(Custom)
	}
	kind, err := ParseKind(name)
	if err != nil {
		return Period{}, err
	}
	if kind != Custom {
		return Of(kind), nil
	}

	start, err := parseBound(from)
	if err != nil {
		return Period{}, err
	}
	end, err := parseBound(to)
	if err != nil {
		return Period{}, err
	}
	return Between(start, end), nil
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(analytics.DateLayout, s)
	if err != nil {
		return time.Time{}, core.WrapError(core.ErrInvalidQuery,
			fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err))
	}
	return t, nil
}

// Resolve turns the period into a concrete range relative to now. Days are
// taken in now's location. AllTime has an open start.
func (p Period) Resolve(now time.Time) analytics.DateRange {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch p.Kind {
	case OneWeek:
		return analytics.DateRange{Start: today.AddDate(0, 0, -7), End: today}
	case LastMonth:
		return analytics.DateRange{
			Start: time.Date(y, m-1, 1, 0, 0, 0, 0, loc),
			End:   time.Date(y, m, 0, 0, 0, 0, 0, loc),
		}
	case Last90Days:
		return analytics.DateRange{Start: today.AddDate(0, 0, -90), End: today}
	case YearToDate:
		return analytics.DateRange{Start: time.Date(y, time.January, 1, 0, 0, 0, 0, loc), End: today}
	case AllTime:
		return analytics.DateRange{End: today}
	case Custom:
		return analytics.DateRange{Start: p.Start, End: p.End}
	default:
		return analytics.DateRange{Start: time.Date(y, m, 1, 0, 0, 0, 0, loc), End: today}
	}
}

// String renders the period for logs and cache keys
func (p Period) String() string {
	if p.Kind != Custom {
		return string(p.Kind)
	}
	return fmt.Sprintf("custom:%s..%s", formatDay(p.Start), formatDay(p.End))
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(analytics.DateLayout)
}
