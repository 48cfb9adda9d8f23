// internal/storage/trade/contract_test.go
package trade

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/tradelens/internal/analytics"
	"github.com/newthinker/tradelens/internal/core"
)

func record(id, exit string) core.TradeRecord {
	return core.TradeRecord{
		ID:          id,
		Symbol:      "AAPL",
		AssetType:   core.AssetStock,
		Direction:   core.DirectionLong,
		EntryDate:   "2024-01-01",
		ExitDate:    exit,
		EntryPrice:  "100",
		ExitPrice:   "110.5",
		Quantity:    "10",
		RiskPercent: "2",
		Tags:        []string{"swing"},
	}
}

func ids(records []core.TradeRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// runRepositoryContract exercises the behavior every Repository shares.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.LoadTrades(ctx, "nobody", Filter{})
		assert.ErrorIs(t, err, core.ErrTradesNotFound)

		version, err := repo.Version(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, int64(0), version)
	})

	t.Run("save and load round trip", func(t *testing.T) {
		repo := newRepo(t)

		in := record("t1", "2024-01-05")
		require.NoError(t, repo.SaveTrades(ctx, "alice", []core.TradeRecord{in}))

		got, err := repo.LoadTrades(ctx, "alice", Filter{})
		require.NoError(t, err)
		require.Len(t, got, 1)

		assert.Equal(t, "alice", got[0].UserID)
		assert.Equal(t, in.Symbol, got[0].Symbol)
		assert.Equal(t, in.EntryPrice, got[0].EntryPrice)
		assert.Equal(t, in.ExitPrice, got[0].ExitPrice)
		assert.Equal(t, in.Quantity, got[0].Quantity)
		assert.Equal(t, in.RiskPercent, got[0].RiskPercent)
		assert.Equal(t, in.Tags, got[0].Tags)
	})

	t.Run("upsert by id", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.SaveTrades(ctx, "alice", []core.TradeRecord{
			record("t1", "2024-01-05"),
			record("t2", "2024-01-06"),
		}))

		changed := record("t1", "2024-01-05")
		changed.ExitPrice = "90"
		require.NoError(t, repo.SaveTrades(ctx, "alice", []core.TradeRecord{changed}))

		got, err := repo.LoadTrades(ctx, "alice", Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"t1", "t2"}, ids(got))
		assert.Equal(t, core.RawNumber("90"), got[0].ExitPrice)
	})

	t.Run("filter by exit date", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.SaveTrades(ctx, "alice", []core.TradeRecord{
			record("jan", "2024-01-15"),
			record("feb", "2024-02-15"),
			record("open", ""),
		}))

		feb := Filter{Range: analytics.DateRange{
			Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		}}
		got, err := repo.LoadTrades(ctx, "alice", feb)
		require.NoError(t, err)
		assert.Equal(t, []string{"feb"}, ids(got))

		all, err := repo.LoadTrades(ctx, "alice", Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("version changes on write", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.SaveTrades(ctx, "alice", []core.TradeRecord{record("t1", "2024-01-05")}))
		v1, err := repo.Version(ctx, "alice")
		require.NoError(t, err)

		require.NoError(t, repo.SaveTrades(ctx, "alice", []core.TradeRecord{record("t2", "2024-01-06")}))
		v2, err := repo.Version(ctx, "alice")
		require.NoError(t, err)
		assert.NotEqual(t, v1, v2)

		require.NoError(t, repo.DeleteTrade(ctx, "alice", "t1"))
		v3, err := repo.Version(ctx, "alice")
		require.NoError(t, err)
		assert.NotEqual(t, v2, v3)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.SaveTrades(ctx, "alice", []core.TradeRecord{
			record("t1", "2024-01-05"),
			record("t2", "2024-01-06"),
		}))
		require.NoError(t, repo.DeleteTrade(ctx, "alice", "t1"))

		got, err := repo.LoadTrades(ctx, "alice", Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"t2"}, ids(got))

		err = repo.DeleteTrade(ctx, "alice", "t1")
		assert.ErrorIs(t, err, core.ErrTradesNotFound)
	})

	t.Run("users", func(t *testing.T) {
		repo := newRepo(t)

		require.NoError(t, repo.SaveTrades(ctx, "bob", []core.TradeRecord{record("t1", "2024-01-05")}))
		require.NoError(t, repo.SaveTrades(ctx, "alice", []core.TradeRecord{record("t1", "2024-01-05")}))

		users, err := repo.Users(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, users)
	})

	t.Run("rejects records without id", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.SaveTrades(ctx, "alice", []core.TradeRecord{record("", "2024-01-05")})
		assert.ErrorIs(t, err, core.ErrInvalidTrade)
	})

	t.Run("rejects unsafe user ids", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.SaveTrades(ctx, "../etc", []core.TradeRecord{record("t1", "2024-01-05")})
		assert.ErrorIs(t, err, core.ErrInvalidQuery)
	})
}
