// internal/storage/trade/memory_test.go
package trade

import (
	"context"
	"testing"

	"github.com/newthinker/tradelens/internal/core"
)

func TestMemoryStore_ImplementsRepository(t *testing.T) {
	var _ Repository = (*MemoryStore)(nil)
}

func TestMemoryStore_Contract(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) Repository {
		return NewMemoryStore()
	})
}

func TestMemoryStore_LoadReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.SaveTrades(ctx, "alice", []core.TradeRecord{record("t1", "2024-01-05")})

	got, _ := store.LoadTrades(ctx, "alice", Filter{})
	got[0].Tags[0] = "mutated"

	again, _ := store.LoadTrades(ctx, "alice", Filter{})
	if again[0].Tags[0] != "swing" {
		t.Errorf("stored tags changed through a loaded copy: %v", again[0].Tags)
	}
}

func TestMemoryStore_EmptyBatchRegistersUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.SaveTrades(ctx, "alice", nil); err != nil {
		t.Fatalf("SaveTrades: %v", err)
	}

	got, err := store.LoadTrades(ctx, "alice", Filter{})
	if err != nil {
		t.Fatalf("LoadTrades: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no trades, got %d", len(got))
	}
}
