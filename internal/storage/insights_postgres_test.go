package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mselser95/finsight/internal/insights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "postgres"), mock
}

// jsonArg matches a JSON payload argument by decoded value.
type jsonArg struct {
	want map[string]any
}

func (a jsonArg) Match(v driver.Value) bool {
	b, ok := v.([]byte)
	if !ok {
		return false
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		return false
	}
	return assert.ObjectsAreEqual(a.want, got)
}

func TestPostgresInsightsStore_Latest(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresInsightsStore(db, zap.NewNop())

	id := uuid.New()
	created := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "ticker", "insights", "created_at"}).
		AddRow(id.String(), "AAPL", []byte(`{"overview":{"sector":"Technology"},"investment_analysis":{}}`), created)

	mock.ExpectQuery(`SELECT id, ticker, insights, created_at\s+FROM stock_insights_cache\s+WHERE ticker = \$1\s+ORDER BY created_at DESC\s+LIMIT 1`).
		WithArgs("AAPL").
		WillReturnRows(rows)

	entry, err := store.Latest(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, id, entry.ID)
	assert.Equal(t, "AAPL", entry.Ticker)
	assert.Equal(t, created, entry.CreatedAt)
	assert.Equal(t, "Technology", entry.Insights["overview"].(map[string]any)["sector"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsightsStore_LatestNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresInsightsStore(db, zap.NewNop())

	mock.ExpectQuery(`SELECT .+\s+FROM stock_insights_cache`).
		WithArgs("ZZZZ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "ticker", "insights", "created_at"}))

	entry, err := store.Latest(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, insights.ErrEntryNotFound)
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsightsStore_LatestErrors(t *testing.T) {
	t.Run("query error", func(t *testing.T) {
		db, mock := newMockDB(t)
		store := NewPostgresInsightsStore(db, zap.NewNop())

		mock.ExpectQuery(`SELECT .+\s+FROM stock_insights_cache`).
			WillReturnError(errors.New("connection reset"))

		_, err := store.Latest(context.Background(), "AAPL")
		require.Error(t, err)
		assert.NotErrorIs(t, err, insights.ErrEntryNotFound)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		db, mock := newMockDB(t)
		store := NewPostgresInsightsStore(db, zap.NewNop())

		mock.ExpectQuery(`SELECT .+\s+FROM stock_insights_cache`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "ticker", "insights", "created_at"}).
				AddRow(uuid.NewString(), "AAPL", []byte(`{not json`), time.Now()))

		_, err := store.Latest(context.Background(), "AAPL")
		assert.Error(t, err)
	})
}

func TestPostgresInsightsStore_Save(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresInsightsStore(db, zap.NewNop())

	entry := &insights.CacheEntry{
		ID:        uuid.New(),
		Ticker:    "AAPL",
		Insights:  insights.Document{"overview": map[string]any{"sector": "Technology"}},
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO stock_insights_cache").
		WithArgs(entry.ID, "AAPL", jsonArg{want: map[string]any{"overview": map[string]any{"sector": "Technology"}}}, entry.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsightsStore_SaveError(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresInsightsStore(db, zap.NewNop())

	mock.ExpectExec("INSERT INTO stock_insights_cache").
		WillReturnError(errors.New("disk full"))

	err := store.Save(context.Background(), &insights.CacheEntry{ID: uuid.New(), Ticker: "AAPL", Insights: insights.Document{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPostgresInsightsStore_Deletes(t *testing.T) {
	keep := uuid.New()
	cutoff := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		query string
		args  []driver.Value
		call  func(s *PostgresInsightsStore) (int64, error)
	}{
		{
			name:  "delete except",
			query: `DELETE FROM stock_insights_cache WHERE ticker = \$1 AND id <> \$2`,
			args:  []driver.Value{"AAPL", keep},
			call: func(s *PostgresInsightsStore) (int64, error) {
				return s.DeleteExcept(context.Background(), "AAPL", keep)
			},
		},
		{
			name:  "delete ticker",
			query: `DELETE FROM stock_insights_cache WHERE ticker = \$1`,
			args:  []driver.Value{"AAPL"},
			call: func(s *PostgresInsightsStore) (int64, error) {
				return s.DeleteByTicker(context.Background(), "AAPL")
			},
		},
		{
			name:  "delete all",
			query: `DELETE FROM stock_insights_cache`,
			args:  nil,
			call: func(s *PostgresInsightsStore) (int64, error) {
				return s.DeleteAll(context.Background())
			},
		},
		{
			name:  "purge",
			query: `DELETE FROM stock_insights_cache WHERE created_at <= \$1`,
			args:  []driver.Value{cutoff},
			call: func(s *PostgresInsightsStore) (int64, error) {
				return s.PurgeOlderThan(context.Background(), cutoff)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			store := NewPostgresInsightsStore(db, zap.NewNop())

			exp := mock.ExpectExec(tt.query)
			if tt.args != nil {
				exp = exp.WithArgs(tt.args...)
			}
			exp.WillReturnResult(sqlmock.NewResult(0, 3))

			deleted, err := tt.call(store)
			require.NoError(t, err)
			assert.Equal(t, int64(3), deleted)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresInsightsStore_DeleteError(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresInsightsStore(db, zap.NewNop())

	mock.ExpectExec("DELETE FROM stock_insights_cache").WillReturnError(errors.New("locked"))

	deleted, err := store.DeleteAll(context.Background())
	require.Error(t, err)
	assert.Zero(t, deleted)
}

func TestPostgresInsightsStore_List(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresInsightsStore(db, zap.NewNop())

	newer := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	mock.ExpectQuery(`SELECT ticker, created_at\s+FROM stock_insights_cache\s+ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"ticker", "created_at"}).
			AddRow("MSFT", newer).
			AddRow("AAPL", older))

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []insights.EntrySummary{
		{Ticker: "MSFT", CreatedAt: newer},
		{Ticker: "AAPL", CreatedAt: older},
	}, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsightsStore_ListEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresInsightsStore(db, zap.NewNop())

	mock.ExpectQuery("SELECT ticker, created_at").
		WillReturnRows(sqlmock.NewRows([]string{"ticker", "created_at"}))

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestPostgresInsightsStore_Close(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostgresInsightsStore(db, zap.NewNop())

	mock.ExpectClose()
	require.NoError(t, store.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
