// internal/storage/trade/postgres.go
package trade

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newthinker/tradelens/internal/analytics"
	"github.com/newthinker/tradelens/internal/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a Postgres connection pool and verifies it with a ping.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Migrate applies the embedded SQL files in lexical order. Every migration
// is idempotent.
func Migrate(ctx context.Context, pool *Pool) error {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		data, err := fs.ReadFile(migrationsFS, "migrations/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

// PostgresStore implements Repository on PostgreSQL.
type PostgresStore struct {
	pool *Pool
}

// NewPostgresStore creates a store on an open pool.
func NewPostgresStore(pool *Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const selectTrades = `
	SELECT id, user_id, symbol, asset_type, direction, entry_date, exit_date,
		entry_price, exit_price, quantity, risk_percent, notes, tags, link
	FROM trades
	WHERE user_id = $1
		AND ($2::date IS NULL OR exit_day >= $2)
		AND ($3::date IS NULL OR exit_day <= $3)
	ORDER BY seq
`

// LoadTrades returns the user's records in insertion order.
func (p *PostgresStore) LoadTrades(ctx context.Context, userID string, filter Filter) ([]core.TradeRecord, error) {
	rows, err := p.pool.Query(ctx, selectTrades, userID, dayArg(filter.Range.Start), dayArg(filter.Range.End))
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("query trades: %w", err))
	}
	defer rows.Close()

	var result []core.TradeRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("iterate trades: %w", err))
	}

	if len(result) == 0 {
		known, err := p.known(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !known {
			return nil, core.WrapError(core.ErrTradesNotFound, fmt.Errorf("user %s", userID))
		}
		return []core.TradeRecord{}, nil
	}
	return result, nil
}

const upsertTrade = `
	INSERT INTO trades (
		user_id, id, symbol, asset_type, direction, entry_date, exit_date, exit_day,
		entry_price, exit_price, quantity, risk_percent, notes, tags, link
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (user_id, id) DO UPDATE SET
		symbol = EXCLUDED.symbol,
		asset_type = EXCLUDED.asset_type,
		direction = EXCLUDED.direction,
		entry_date = EXCLUDED.entry_date,
		exit_date = EXCLUDED.exit_date,
		exit_day = EXCLUDED.exit_day,
		entry_price = EXCLUDED.entry_price,
		exit_price = EXCLUDED.exit_price,
		quantity = EXCLUDED.quantity,
		risk_percent = EXCLUDED.risk_percent,
		notes = EXCLUDED.notes,
		tags = EXCLUDED.tags,
		link = EXCLUDED.link,
		updated_at = now()
`

const bumpVersion = `
	INSERT INTO trade_versions (user_id, version) VALUES ($1, 1)
	ON CONFLICT (user_id) DO UPDATE SET
		version = trade_versions.version + 1,
		updated_at = now()
`

// SaveTrades upserts the batch atomically.
func (p *PostgresStore) SaveTrades(ctx context.Context, userID string, records []core.TradeRecord) error {
	prepared, err := prepare(userID, records)
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	for _, r := range prepared {
		_, err := tx.Exec(ctx, upsertTrade,
			r.UserID,
			r.ID,
			r.Symbol,
			string(r.AssetType),
			string(r.Direction),
			r.EntryDate,
			r.ExitDate,
			dayArg(analytics.ParseDay(r.ExitDate)),
			string(r.EntryPrice),
			string(r.ExitPrice),
			string(r.Quantity),
			string(r.RiskPercent),
			r.Notes,
			r.Tags,
			r.Link,
		)
		if err != nil {
			return core.WrapError(core.ErrStorageFailed, fmt.Errorf("upsert trade %s: %w", r.ID, err))
		}
	}

	if _, err := tx.Exec(ctx, bumpVersion, userID); err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("bump version: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// DeleteTrade removes one record and bumps the version in the same transaction.
func (p *PostgresStore) DeleteTrade(ctx context.Context, userID, id string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM trades WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("delete trade: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return core.WrapError(core.ErrTradesNotFound, fmt.Errorf("trade %s", id))
	}

	if _, err := tx.Exec(ctx, bumpVersion, userID); err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("bump version: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// Users lists users with a version row, sorted.
func (p *PostgresStore) Users(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT user_id FROM trade_versions ORDER BY user_id`)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("query users: %w", err))
	}

	users, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("collect users: %w", err))
	}
	return users, nil
}

// Version returns the user's change counter, 0 when unknown.
func (p *PostgresStore) Version(ctx context.Context, userID string) (int64, error) {
	var version int64
	err := p.pool.QueryRow(ctx, `SELECT version FROM trade_versions WHERE user_id = $1`, userID).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, core.WrapError(core.ErrStorageFailed, fmt.Errorf("query version: %w", err))
	}
	return version, nil
}

func (p *PostgresStore) known(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM trade_versions WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, core.WrapError(core.ErrStorageFailed, fmt.Errorf("query user: %w", err))
	}
	return exists, nil
}

func scanRecord(rows pgx.Rows) (core.TradeRecord, error) {
	var (
		r                                   core.TradeRecord
		assetType, direction                string
		entryPrice, exitPrice, qty, riskPct string
	)
	err := rows.Scan(
		&r.ID,
		&r.UserID,
		&r.Symbol,
		&assetType,
		&direction,
		&r.EntryDate,
		&r.ExitDate,
		&entryPrice,
		&exitPrice,
		&qty,
		&riskPct,
		&r.Notes,
		&r.Tags,
		&r.Link,
	)
	if err != nil {
		return r, fmt.Errorf("scan trade: %w", err)
	}
	r.AssetType = core.AssetType(assetType)
	r.Direction = core.Direction(direction)
	r.EntryPrice = core.RawNumber(entryPrice)
	r.ExitPrice = core.RawNumber(exitPrice)
	r.Quantity = core.RawNumber(qty)
	r.RiskPercent = core.RawNumber(riskPct)
	return r, nil
}

// dayArg passes a zero day as SQL NULL.
func dayArg(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return analytics.Day(t)
}
