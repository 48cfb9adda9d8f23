package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/newthinker/tradelens/internal/config"
	"github.com/newthinker/tradelens/internal/logger"
	"github.com/newthinker/tradelens/internal/storage/archive"
	"github.com/newthinker/tradelens/internal/storage/trade"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(debug || cfg.Log.Development, cfg.Log.Level)
}

// openArchive builds the blob storage used for trade documents and snapshots.
func openArchive(cfg config.ArchiveStorageConfig) (archive.Storage, error) {
	switch cfg.Type {
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return archive.NewLocalFS(cfg.Path)
	}
}

// openRepository builds the configured trade repository. The returned
// close function releases any connection pool.
func openRepository(ctx context.Context, cfg *config.Config, store archive.Storage, log *zap.Logger) (trade.Repository, func(), error) {
	switch cfg.Storage.Trades.Type {
	case "postgres":
		pool, err := trade.NewPool(ctx, cfg.Storage.Trades.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := trade.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrating trades schema: %w", err)
		}
		log.Info("using postgres trade repository")
		return trade.NewPostgresStore(pool), pool.Close, nil
	case "archive":
		log.Info("using archive trade repository", zap.String("archive", cfg.Storage.Archive.Type))
		return trade.NewArchiveStore(store), func() {}, nil
	default:
		log.Info("using in-memory trade repository")
		return trade.NewMemoryStore(), func() {}, nil
	}
}
