// internal/storage/trade/interface.go
package trade

import (
	"context"
	"fmt"
	"strings"

	"github.com/newthinker/tradelens/internal/analytics"
	"github.com/newthinker/tradelens/internal/core"
)

// Repository defines the interface for trade record persistence.
type Repository interface {
	// LoadTrades returns the user's records. Records whose exit date falls
	// outside a bounded filter range may be left out; the analytics filter
	// still applies the exact range afterwards.
	LoadTrades(ctx context.Context, userID string, filter Filter) ([]core.TradeRecord, error)

	// SaveTrades upserts records by ID and bumps the user's version.
	SaveTrades(ctx context.Context, userID string, records []core.TradeRecord) error

	// DeleteTrade removes one record and bumps the user's version.
	DeleteTrade(ctx context.Context, userID, id string) error

	// Users lists every user that has stored trades, sorted.
	Users(ctx context.Context) ([]string, error)

	// Version changes whenever the user's records change. Unknown users are at 0.
	Version(ctx context.Context, userID string) (int64, error)
}

// Filter narrows LoadTrades by exit date.
type Filter struct {
	Range analytics.DateRange
}

// keep reports whether a record may be returned for the filter. Records with
// an unparsable exit date only pass an unbounded filter.
func (f Filter) keep(r core.TradeRecord) bool {
	if f.Range.Start.IsZero() && f.Range.End.IsZero() {
		return true
	}
	exit := analytics.ParseDay(r.ExitDate)
	if exit.IsZero() {
		return false
	}
	return f.Range.Contains(exit)
}

// ValidateUserID rejects IDs that cannot name a storage document.
func ValidateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" || userID == "." || userID == ".." ||
		strings.ContainsAny(userID, `/\`) {
		return core.WrapError(core.ErrInvalidQuery, fmt.Errorf("invalid user id %q", userID))
	}
	return nil
}

// prepare checks records before a save and stamps the owning user.
func prepare(userID string, records []core.TradeRecord) ([]core.TradeRecord, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	out := make([]core.TradeRecord, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, core.WrapError(core.ErrInvalidTrade, fmt.Errorf("record %d has no id", i))
		}
		r.UserID = userID
		out[i] = r
	}
	return out, nil
}
