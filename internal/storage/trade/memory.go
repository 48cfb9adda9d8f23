// internal/storage/trade/memory.go
package trade

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/newthinker/tradelens/internal/core"
)

type userTrades struct {
	order   []string
	byID    map[string]core.TradeRecord
	version int64
}

// MemoryStore is an in-memory trade repository.
type MemoryStore struct {
	users map[string]*userTrades
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*userTrades)}
}

// LoadTrades returns the user's records in insertion order.
func (m *MemoryStore) LoadTrades(ctx context.Context, userID string, filter Filter) ([]core.TradeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, core.WrapError(core.ErrTradesNotFound, fmt.Errorf("user %s", userID))
	}

	result := make([]core.TradeRecord, 0, len(u.order))
	for _, id := range u.order {
		r := u.byID[id]
		if filter.keep(r) {
			result = append(result, cloneRecord(r))
		}
	}
	return result, nil
}

// SaveTrades upserts records. An empty batch still registers the user.
func (m *MemoryStore) SaveTrades(ctx context.Context, userID string, records []core.TradeRecord) error {
	prepared, err := prepare(userID, records)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		u = &userTrades{byID: make(map[string]core.TradeRecord)}
		m.users[userID] = u
	}
	for _, r := range prepared {
		if _, exists := u.byID[r.ID]; !exists {
			u.order = append(u.order, r.ID)
		}
		u.byID[r.ID] = cloneRecord(r)
	}
	u.version++
	return nil
}

// DeleteTrade removes a record by ID.
func (m *MemoryStore) DeleteTrade(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return core.WrapError(core.ErrTradesNotFound, fmt.Errorf("user %s", userID))
	}
	if _, exists := u.byID[id]; !exists {
		return core.WrapError(core.ErrTradesNotFound, fmt.Errorf("trade %s", id))
	}

	delete(u.byID, id)
	for i, existing := range u.order {
		if existing == id {
			u.order = append(u.order[:i], u.order[i+1:]...)
			break
		}
	}
	u.version++
	return nil
}

// Users returns the known user IDs, sorted.
func (m *MemoryStore) Users(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]string, 0, len(m.users))
	for id := range m.users {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

// Version returns the user's change counter.
func (m *MemoryStore) Version(ctx context.Context, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if u, ok := m.users[userID]; ok {
		return u.version, nil
	}
	return 0, nil
}

func cloneRecord(r core.TradeRecord) core.TradeRecord {
	if r.Tags != nil {
		r.Tags = append([]string(nil), r.Tags...)
	}
	return r
}
