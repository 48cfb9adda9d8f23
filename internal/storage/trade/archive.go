// internal/storage/trade/archive.go
package trade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/newthinker/tradelens/internal/core"
	"github.com/newthinker/tradelens/internal/storage/archive"
)

const archiveDir = "trades"

// document is the JSON layout of one user's trade file.
type document struct {
	Version int64              `json:"version"`
	Trades  []core.TradeRecord `json:"trades"`
}

// ArchiveStore keeps one JSON document per user on blob storage.
type ArchiveStore struct {
	storage archive.Storage
	mu      sync.Mutex
}

// NewArchiveStore creates a repository on top of the given storage.
func NewArchiveStore(storage archive.Storage) *ArchiveStore {
	return &ArchiveStore{storage: storage}
}

func documentPath(userID string) string {
	return path.Join(archiveDir, userID+".json")
}

func (a *ArchiveStore) read(ctx context.Context, userID string) (*document, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	data, err := a.storage.Read(ctx, documentPath(userID))
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return nil, core.WrapError(core.ErrTradesNotFound, fmt.Errorf("user %s", userID))
		}
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("decode %s: %w", documentPath(userID), err))
	}
	return &doc, nil
}

func (a *ArchiveStore) write(ctx context.Context, userID string, doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	if err := a.storage.Write(ctx, documentPath(userID), data); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

// LoadTrades reads the user's document and applies the filter.
func (a *ArchiveStore) LoadTrades(ctx context.Context, userID string, filter Filter) ([]core.TradeRecord, error) {
	doc, err := a.read(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]core.TradeRecord, 0, len(doc.Trades))
	for _, r := range doc.Trades {
		if filter.keep(r) {
			result = append(result, r)
		}
	}
	return result, nil
}

// SaveTrades merges the records into the user's document.
func (a *ArchiveStore) SaveTrades(ctx context.Context, userID string, records []core.TradeRecord) error {
	prepared, err := prepare(userID, records)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	doc, err := a.read(ctx, userID)
	if errors.Is(err, core.ErrTradesNotFound) {
		doc = &document{}
	} else if err != nil {
		return err
	}

	index := make(map[string]int, len(doc.Trades))
	for i, r := range doc.Trades {
		index[r.ID] = i
	}
	for _, r := range prepared {
		if i, ok := index[r.ID]; ok {
			doc.Trades[i] = r
			continue
		}
		index[r.ID] = len(doc.Trades)
		doc.Trades = append(doc.Trades, r)
	}
	doc.Version++

	return a.write(ctx, userID, doc)
}

// DeleteTrade removes one record from the user's document.
func (a *ArchiveStore) DeleteTrade(ctx context.Context, userID, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc, err := a.read(ctx, userID)
	if err != nil {
		return err
	}

	for i, r := range doc.Trades {
		if r.ID == id {
			doc.Trades = append(doc.Trades[:i], doc.Trades[i+1:]...)
			doc.Version++
			return a.write(ctx, userID, doc)
		}
	}
	return core.WrapError(core.ErrTradesNotFound, fmt.Errorf("trade %s", id))
}

// Users lists the users that have a trade document.
func (a *ArchiveStore) Users(ctx context.Context) ([]string, error) {
	paths, err := a.storage.List(ctx, archiveDir)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}

	users := make([]string, 0, len(paths))
	for _, p := range paths {
		dir, file := path.Split(p)
		if strings.Trim(dir, "/") != archiveDir || !strings.HasSuffix(file, ".json") {
			continue
		}
		users = append(users, strings.TrimSuffix(file, ".json"))
	}
	sort.Strings(users)
	return users, nil
}

// Version returns the version stored in the user's document.
func (a *ArchiveStore) Version(ctx context.Context, userID string) (int64, error) {
	doc, err := a.read(ctx, userID)
	if errors.Is(err, core.ErrTradesNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Version, nil
}
