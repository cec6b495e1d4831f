package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/mselser95/finsight/internal/holdings"
	"github.com/mselser95/finsight/internal/insights"
	"go.uber.org/zap"
)

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Logger          *zap.Logger
}

// OpenPostgres connects to PostgreSQL and verifies the connection.
func OpenPostgres(ctx context.Context, cfg *PostgresConfig) (*sqlx.DB, error) {
	if cfg == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("config with logger is required")
	}

	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.Int("max-open-conns", cfg.MaxOpenConns))

	return db, nil
}

// track starts timing a store operation. Call the result with the
// operation's named error on return: defer track("op")(&err).
func track(op string) func(err *error) {
	start := time.Now()
	return func(err *error) {
		QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if err != nil && *err != nil && !isNotFound(*err) {
			QueryErrorsTotal.WithLabelValues(op).Inc()
		}
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, insights.ErrEntryNotFound) || errors.Is(err, holdings.ErrNotFound)
}
