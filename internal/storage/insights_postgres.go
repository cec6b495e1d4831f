package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mselser95/finsight/internal/insights"
	"go.uber.org/zap"
)

// PostgresInsightsStore implements insights.Store on the stock_insights_cache table.
type PostgresInsightsStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresInsightsStore creates an insights cache store on db.
func NewPostgresInsightsStore(db *sqlx.DB, logger *zap.Logger) *PostgresInsightsStore {
	return &PostgresInsightsStore{
		db:     db,
		logger: logger,
	}
}

type insightsRow struct {
	ID        uuid.UUID `db:"id"`
	Ticker    string    `db:"ticker"`
	Insights  []byte    `db:"insights"`
	CreatedAt time.Time `db:"created_at"`
}

// Latest returns the most recent entry for ticker regardless of age.
func (p *PostgresInsightsStore) Latest(ctx context.Context, ticker string) (entry *insights.CacheEntry, err error) {
	defer track("insights_latest")(&err)

	query := `
		SELECT id, ticker, insights, created_at
		FROM stock_insights_cache
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var row insightsRow
	err = p.db.GetContext(ctx, &row, query, ticker)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, insights.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest entry: %w", err)
	}

	var doc insights.Document
	err = json.Unmarshal(row.Insights, &doc)
	if err != nil {
		return nil, fmt.Errorf("decode insights for %s: %w", row.Ticker, err)
	}

	return &insights.CacheEntry{
		ID:        row.ID,
		Ticker:    row.Ticker,
		Insights:  doc,
		CreatedAt: row.CreatedAt,
	}, nil
}

// Save inserts a new entry.
func (p *PostgresInsightsStore) Save(ctx context.Context, entry *insights.CacheEntry) (err error) {
	defer track("insights_save")(&err)

	payload, err := json.Marshal(entry.Insights)
	if err != nil {
		return fmt.Errorf("encode insights: %w", err)
	}

	query := `
		INSERT INTO stock_insights_cache (id, ticker, insights, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err = p.db.ExecContext(ctx, query, entry.ID, entry.Ticker, payload, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert insights entry: %w", err)
	}

	p.logger.Debug("insights-entry-stored",
		zap.String("ticker", entry.Ticker),
		zap.String("entry-id", entry.ID.String()),
		zap.Int("bytes", len(payload)))

	return nil
}

// DeleteExcept removes every entry for ticker other than keepID.
func (p *PostgresInsightsStore) DeleteExcept(ctx context.Context, ticker string, keepID uuid.UUID) (int64, error) {
	return p.exec(ctx, "insights_delete_except",
		`DELETE FROM stock_insights_cache WHERE ticker = $1 AND id <> $2`, ticker, keepID)
}

// DeleteByTicker removes every entry for ticker.
func (p *PostgresInsightsStore) DeleteByTicker(ctx context.Context, ticker string) (int64, error) {
	return p.exec(ctx, "insights_delete_ticker",
		`DELETE FROM stock_insights_cache WHERE ticker = $1`, ticker)
}

// DeleteAll removes every entry.
func (p *PostgresInsightsStore) DeleteAll(ctx context.Context) (int64, error) {
	return p.exec(ctx, "insights_delete_all", `DELETE FROM stock_insights_cache`)
}

// PurgeOlderThan removes entries created at or before cutoff.
func (p *PostgresInsightsStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return p.exec(ctx, "insights_purge",
		`DELETE FROM stock_insights_cache WHERE created_at <= $1`, cutoff)
}

// List returns every entry's ticker and creation time, newest first.
func (p *PostgresInsightsStore) List(ctx context.Context) (entries []insights.EntrySummary, err error) {
	defer track("insights_list")(&err)

	query := `
		SELECT ticker, created_at
		FROM stock_insights_cache
		ORDER BY created_at DESC
	`

	entries = []insights.EntrySummary{}
	err = p.db.SelectContext(ctx, &entries, query)
	if err != nil {
		return nil, fmt.Errorf("list insights entries: %w", err)
	}
	return entries, nil
}

// Ping checks the database connection.
func (p *PostgresInsightsStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection.
func (p *PostgresInsightsStore) Close() error {
	p.logger.Info("closing-postgres-insights-store")
	return p.db.Close()
}

func (p *PostgresInsightsStore) exec(ctx context.Context, op, query string, args ...any) (deleted int64, err error) {
	defer track(op)(&err)

	result, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	deleted, err = result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return deleted, nil
}
