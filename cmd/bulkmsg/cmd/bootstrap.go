package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/bulkmsg/internal/core/config"
	"github.com/solatis/bulkmsg/internal/core/db"
	"github.com/solatis/bulkmsg/internal/core/logging"
	"github.com/solatis/bulkmsg/internal/customers"
	"github.com/solatis/bulkmsg/internal/lists"
)

// setup loads configuration with the command's flags applied and builds
// the logger.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// feedSource picks the configured feed. URL wins over Path.
func feedSource(cfg config.FeedConfig) (customers.Source, error) {
	switch {
	case cfg.URL != "":
		return customers.NewHTTPSource(customers.HTTPSourceConfig{
			URL:     cfg.URL,
			Timeout: cfg.Timeout,
			Retries: cfg.Retries,
		}), nil
	case cfg.Path != "":
		return customers.FileSource{Path: cfg.Path}, nil
	default:
		return nil, fmt.Errorf("no customer feed configured (set feed.url or feed.path)")
	}
}

// openSlot connects the configured list slot backend. The returned close
// function releases the connection.
func openSlot(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (lists.Slot, func(), error) {
	switch cfg.Backend {
	case config.BackendDB:
		database, err := db.Open(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		n, err := db.MigrateUp(ctx, database)
		if err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		if n > 0 {
			logger.Info("applied migrations", zap.Int("count", n))
		}
		queries, err := db.LoadQueries(database)
		if err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("failed to load queries: %w", err)
		}
		return lists.NewSQLSlot(queries, cfg.SlotKey), func() { database.Close() }, nil

	case config.BackendRedis:
		client, err := db.NewRedisClient(ctx, db.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: cfg.RedisPoolSize,
		})
		if err != nil {
			return nil, nil, err
		}
		return lists.NewRedisSlot(client, cfg.SlotKey), func() { client.Close() }, nil

	default:
		return &lists.MemorySlot{}, func() {}, nil
	}
}
