package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mselser95/finsight/internal/testutil"
	"github.com/mselser95/finsight/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	c, err := NewClient(&ClientConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
		Logger:  zap.NewNop(),
	})
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return c
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)

	_, err = NewClient(&ClientConfig{})
	assert.Error(t, err, "logger is required")

	c, err := NewClient(&ClientConfig{Logger: zap.NewNop()})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, "yahoo-finance15.p.rapidapi.com", c.apiHost)
}

func TestClient_Fetch(t *testing.T) {
	api := testutil.NewMockQuoteAPI(map[string]map[string]map[string]any{
		"AAPL": testutil.QuoteModules("Apple Inc.", 211.27, 3.2e12),
	})
	defer api.Close()

	c := newTestClient(t, api.URL)

	meta, err := c.Fetch(context.Background(), " aapl ")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", meta.Ticker)
	assert.Equal(t, "Apple Inc.", meta.CompanyName)
	assert.Equal(t, "Technology", meta.Sector)
	assert.Equal(t, "Software", meta.Industry)
	assert.Equal(t, "USD", meta.Currency)
	assert.Equal(t, "NasdaqGS", meta.Exchange)
	assert.Equal(t, "buy", meta.RecommendationKey)
	require.NotNil(t, meta.CurrentPrice)
	assert.InDelta(t, 211.27, *meta.CurrentPrice, 1e-9)
	require.NotNil(t, meta.MarketCap)
	assert.InDelta(t, 3.2e12, *meta.MarketCap, 1)
	assert.Equal(t, types.MarketCapLarge, meta.MarketCapCategory)
	assert.Nil(t, meta.PERatio)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), meta.FetchedAt)
	assert.Equal(t, 3, api.Requests())
}

func TestClient_FetchSendsRapidAPIHeaders(t *testing.T) {
	var gotKey, gotHost string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-RapidAPI-Key")
		gotHost = r.Header.Get("X-RapidAPI-Host")
		w.Write([]byte(`{"body": {"regularMarketPrice": {"raw": 10}}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.apiHost = "yahoo-finance15.p.rapidapi.com"

	_, err := c.Fetch(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "yahoo-finance15.p.rapidapi.com", gotHost)
}

func TestClient_FetchMarketCapFallsBackToShares(t *testing.T) {
	api := testutil.NewMockQuoteAPI(map[string]map[string]map[string]any{
		"TINY": {
			"price": {
				"sharesOutstanding":  map[string]any{"raw": 1_000_000.0},
				"regularMarketPrice": map[string]any{"raw": 50.0},
				"shortName":          "Tiny Co",
			},
		},
	})
	defer api.Close()

	c := newTestClient(t, api.URL)

	meta, err := c.Fetch(context.Background(), "TINY")
	require.NoError(t, err)

	require.NotNil(t, meta.MarketCap)
	assert.InDelta(t, 50_000_000, *meta.MarketCap, 1e-6)
	assert.Equal(t, types.MarketCapMicro, meta.MarketCapCategory)
	assert.Equal(t, "Tiny Co", meta.CompanyName, "falls back to the price module name")
	assert.Equal(t, "USD", meta.Currency)
	require.NotNil(t, meta.CurrentPrice)
	assert.InDelta(t, 50.0, *meta.CurrentPrice, 1e-9)
}

func TestClient_FetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, wantErr: ErrTickerNotFound},
		{name: "server error", status: http.StatusInternalServerError, wantErr: ErrProviderUnavailable},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: ErrProviderUnavailable},
		{name: "null body", status: http.StatusOK, body: `{"body": null}`, wantErr: ErrTickerNotFound},
		{name: "garbage", status: http.StatusOK, body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newTestClient(t, server.URL)

			meta, err := c.Fetch(context.Background(), "ZZZZ")
			require.Error(t, err)
			assert.Nil(t, meta)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestClient_FetchEmptyTicker(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := c.Fetch(context.Background(), "  ")
	assert.Error(t, err)
}

func TestResolveMarketCap(t *testing.T) {
	f := func(v float64) *rawValue { return &rawValue{Raw: &v} }

	tests := []struct {
		name      string
		financial financialData
		price     priceData
		want      *float64
	}{
		{name: "none", want: nil},
		{
			name:      "financial wins",
			financial: financialData{MarketCap: f(5e9)},
			price:     priceData{MarketCap: f(6e9)},
			want:      f(5e9).Raw,
		},
		{name: "price", price: priceData{MarketCap: f(6e9)}, want: f(6e9).Raw},
		{
			name:  "zero market cap falls back to shares",
			price: priceData{MarketCap: f(0), SharesOutstanding: f(10), RegularMarketPrice: f(3)},
			want:  f(30).Raw,
		},
		{name: "shares without price", price: priceData{SharesOutstanding: f(10)}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveMarketCap(&tt.financial, &tt.price)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}
