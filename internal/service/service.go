// Package service runs analytics queries against stored trades and memoizes
// the prepared trade sets.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"

	"github.com/newthinker/tradelens/internal/analytics"
	"github.com/newthinker/tradelens/internal/core"
	"github.com/newthinker/tradelens/internal/logger"
	"github.com/newthinker/tradelens/internal/metrics"
	"github.com/newthinker/tradelens/internal/period"
	"github.com/newthinker/tradelens/internal/storage/trade"
)

// DefaultTopSymbols is the symbol count used when a query does not set one.
const DefaultTopSymbols = 7

// Query selects the trades a view aggregates over.
type Query struct {
	UserID    string
	Period    period.Period
	Category  core.Category
	TradeType core.AssetType
}

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Location   *time.Location
	CacheSize  int // 0 disables memoization
	TopSymbols int
	Metrics    *metrics.Registry
	Logger     *zap.Logger
	Now        func() time.Time
}

// Service answers analytics queries for stored users.
type Service struct {
	repo       trade.Repository
	loc        *time.Location
	now        func() time.Time
	topSymbols int
	metrics    *metrics.Registry
	log        *zap.Logger
	validate   *validator.Validate

	mu    sync.Mutex
	cache *lru.Cache
}

// entry is one memoized prepared trade set.
type entry struct {
	trades []analytics.ClassifiedTrade
	stats  analytics.StatsResult
}

// New creates a service over the repository.
func New(repo trade.Repository, opts Options) *Service {
	s := &Service{
		repo:       repo,
		loc:        opts.Location,
		now:        opts.Now,
		topSymbols: opts.TopSymbols,
		metrics:    opts.Metrics,
		log:        logger.OrNop(opts.Logger),
		validate:   newValidator(),
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.topSymbols <= 0 {
		s.topSymbols = DefaultTopSymbols
	}
	if opts.CacheSize > 0 {
		s.cache = lru.New(opts.CacheSize)
	}
	return s
}

// Location returns the zone periods are resolved in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Resolve turns the query's period into a concrete date range as of now.
func (s *Service) Resolve(p period.Period) analytics.DateRange {
	return p.Resolve(s.now().In(s.loc))
}

func cacheKey(userID string, r analytics.DateRange, c analytics.Criteria, version int64) string {
	return strings.Join([]string{
		userID,
		dayKey(r.Start),
		dayKey(r.End),
		string(c.Category),
		string(c.TradeType),
		strconv.FormatInt(version, 10),
	}, "|")
}

func dayKey(t time.Time) string {
	if t.IsZero() {
		return "*"
	}
	return t.Format(analytics.DateLayout)
}

// prepared returns the classified, canonically ordered trades for a query,
// from the memo when the user's version has not changed.
func (s *Service) prepared(ctx context.Context, view string, q Query) (*entry, analytics.DateRange, error) {
	if err := trade.ValidateUserID(q.UserID); err != nil {
		return nil, analytics.DateRange{}, err
	}
	r := s.Resolve(q.Period)
	e, err := s.preparedRange(ctx, view, q, r)
	return e, r, err
}

func (s *Service) preparedRange(ctx context.Context, view string, q Query, r analytics.DateRange) (*entry, error) {
	criteria := analytics.Criteria{Range: r, Category: q.Category, TradeType: q.TradeType}

	version, err := s.repo.Version(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	key := cacheKey(q.UserID, r, criteria, version)

	if e, ok := s.lookup(key); ok {
		s.recordQuery(view, true)
		return e, nil
	}
	s.recordQuery(view, false)

	start := time.Now()
	records, err := s.repo.LoadTrades(ctx, q.UserID, trade.Filter{Range: r})
	if errors.Is(err, core.ErrTradesNotFound) {
		records = nil
	} else if err != nil {
		return nil, err
	}

	trades := analytics.Prepare(records, criteria)
	e := &entry{trades: trades, stats: analytics.Summarize(trades)}
	elapsed := time.Since(start)

	s.store(key, e)
	if s.metrics != nil {
		s.metrics.RecordCompute(view, elapsed.Seconds())
	}
	s.log.Debug("computed analytics",
		zap.String("view", view),
		zap.String("user", q.UserID),
		zap.String("key", key),
		zap.Int("records", len(records)),
		zap.Int("selected", len(trades)),
		zap.Duration("elapsed", elapsed),
	)
	return e, nil
}

func (s *Service) lookup(key string) (*entry, bool) {
	if s.cache == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

func (s *Service) store(key string, e *entry) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Add(key, e)
	if s.metrics != nil {
		s.metrics.SetCacheEntries(s.cache.Len())
	}
}

func (s *Service) recordQuery(view string, hit bool) {
	if s.metrics != nil {
		s.metrics.RecordQuery(view, hit)
	}
}

// CacheLen returns the number of memoized trade sets.
func (s *Service) CacheLen() int {
	if s.cache == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
