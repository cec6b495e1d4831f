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
	"github.com/mselser95/finsight/internal/holdings"
	"github.com/mselser95/finsight/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PostgresHoldingsStore implements holdings.Store on the holdings table.
type PostgresHoldingsStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresHoldingsStore creates a holdings store on db.
func NewPostgresHoldingsStore(db *sqlx.DB, logger *zap.Logger) *PostgresHoldingsStore {
	return &PostgresHoldingsStore{
		db:     db,
		logger: logger,
	}
}

const holdingColumns = `id, user_id, ticker, quantity, purchase_price, purchase_date, notes, metadata, created_at, updated_at`

type holdingRow struct {
	ID            uuid.UUID       `db:"id"`
	UserID        string          `db:"user_id"`
	Ticker        string          `db:"ticker"`
	Quantity      decimal.Decimal `db:"quantity"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
	PurchaseDate  time.Time       `db:"purchase_date"`
	Notes         string          `db:"notes"`
	Metadata      []byte          `db:"metadata"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r *holdingRow) toHolding() (*holdings.Holding, error) {
	h := &holdings.Holding{
		ID:            r.ID,
		UserID:        r.UserID,
		Ticker:        r.Ticker,
		Quantity:      r.Quantity,
		PurchasePrice: r.PurchasePrice,
		PurchaseDate:  r.PurchaseDate,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	if len(r.Metadata) > 0 {
		var meta types.StockMetadata
		err := json.Unmarshal(r.Metadata, &meta)
		if err != nil {
			return nil, fmt.Errorf("decode metadata for holding %s: %w", r.ID, err)
		}
		h.Metadata = &meta
	}

	return h, nil
}

// Create inserts a new holding.
func (p *PostgresHoldingsStore) Create(ctx context.Context, h *holdings.Holding) (err error) {
	defer track("holdings_create")(&err)

	var metadata any
	if h.Metadata != nil {
		payload, err := json.Marshal(h.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		metadata = payload
	}

	query := `
		INSERT INTO holdings (` + holdingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = p.db.ExecContext(ctx, query,
		h.ID,
		h.UserID,
		h.Ticker,
		h.Quantity,
		h.PurchasePrice,
		h.PurchaseDate,
		h.Notes,
		metadata,
		h.CreatedAt,
		h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert holding: %w", err)
	}

	p.logger.Debug("holding-stored",
		zap.String("holding-id", h.ID.String()),
		zap.String("ticker", h.Ticker))

	return nil
}

// ListByUser returns the user's holdings, newest purchase first.
func (p *PostgresHoldingsStore) ListByUser(ctx context.Context, userID string) (list []holdings.Holding, err error) {
	defer track("holdings_list")(&err)

	query := `
		SELECT ` + holdingColumns + `
		FROM holdings
		WHERE user_id = $1
		ORDER BY purchase_date DESC, created_at DESC
	`

	var rows []holdingRow
	err = p.db.SelectContext(ctx, &rows, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select holdings: %w", err)
	}

	list = make([]holdings.Holding, 0, len(rows))
	for i := range rows {
		h, err := rows[i].toHolding()
		if err != nil {
			return nil, err
		}
		list = append(list, *h)
	}
	return list, nil
}

// Get returns one of the user's holdings.
func (p *PostgresHoldingsStore) Get(ctx context.Context, userID string, id uuid.UUID) (h *holdings.Holding, err error) {
	defer track("holdings_get")(&err)

	query := `
		SELECT ` + holdingColumns + `
		FROM holdings
		WHERE id = $1 AND user_id = $2
	`

	var row holdingRow
	err = p.db.GetContext(ctx, &row, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, holdings.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select holding: %w", err)
	}
	return row.toHolding()
}

// Delete removes one of the user's holdings.
func (p *PostgresHoldingsStore) Delete(ctx context.Context, userID string, id uuid.UUID) (err error) {
	defer track("holdings_delete")(&err)

	result, err := p.db.ExecContext(ctx, `DELETE FROM holdings WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete holding rows affected: %w", err)
	}
	if n == 0 {
		return holdings.ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (p *PostgresHoldingsStore) Close() error {
	p.logger.Info("closing-postgres-holdings-store")
	return p.db.Close()
}
