package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/finsight/pkg/types"
	"go.uber.org/zap"
)

// DefaultBaseURL is the RapidAPI Yahoo Finance markets endpoint.
const DefaultBaseURL = "https://yahoo-finance15.p.rapidapi.com/api/v1/markets/stock"

// Quote modules read for one ticker.
const (
	moduleFinancialData = "financial-data"
	moduleAssetProfile  = "asset-profile"
	modulePrice         = "price"
)

var (
	// ErrTickerNotFound is returned when the provider has no quote for a ticker.
	ErrTickerNotFound = errors.New("ticker not found")

	// ErrProviderUnavailable is returned for transport failures and unexpected statuses.
	ErrProviderUnavailable = errors.New("metadata provider unavailable")
)

// Provider fetches metadata for a ticker.
type Provider interface {
	Fetch(ctx context.Context, ticker string) (*types.StockMetadata, error)
}

// Client fetches stock metadata from the RapidAPI Yahoo Finance modules endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	apiHost    string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// ClientConfig holds metadata client configuration.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	APIHost string // defaults to the host of BaseURL
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates a new metadata client.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	apiHost := cfg.APIHost
	if apiHost == "" {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		apiHost = parsed.Host
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if cfg.APIKey == "" {
		cfg.Logger.Warn("metadata-api-key-missing")
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		apiHost:    apiHost,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
		now:        time.Now,
	}, nil
}

// rawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} number wrapper.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v *rawValue) value() *float64 {
	if v == nil || v.Raw == nil || *v.Raw == 0 {
		return nil
	}
	out := *v.Raw
	return &out
}

type financialData struct {
	CurrentPrice      *rawValue `json:"currentPrice"`
	TargetMeanPrice   *rawValue `json:"targetMeanPrice"`
	RecommendationKey string    `json:"recommendationKey"`
	FinancialCurrency string    `json:"financialCurrency"`
	ProfitMargins     *rawValue `json:"profitMargins"`
	ReturnOnEquity    *rawValue `json:"returnOnEquity"`
	RevenueGrowth     *rawValue `json:"revenueGrowth"`
	EarningsGrowth    *rawValue `json:"earningsGrowth"`
	MarketCap         *rawValue `json:"marketCap"`
}

type assetProfile struct {
	LongName  string `json:"longName"`
	ShortName string `json:"shortName"`
	Sector    string `json:"sector"`
	Industry  string `json:"industry"`
}

type priceData struct {
	MarketCap          *rawValue `json:"marketCap"`
	SharesOutstanding  *rawValue `json:"sharesOutstanding"`
	RegularMarketPrice *rawValue `json:"regularMarketPrice"`
	TrailingPE         *rawValue `json:"trailingPE"`
	ExchangeName       string    `json:"exchangeName"`
	Exchange           string    `json:"exchange"`
	Currency           string    `json:"currency"`
	LongName           string    `json:"longName"`
	ShortName          string    `json:"shortName"`
}

// Fetch reads the financial-data, asset-profile and price modules for ticker
// and merges them. The price module is required; the other two only enrich.
func (c *Client) Fetch(ctx context.Context, ticker string) (*types.StockMetadata, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker cannot be empty")
	}

	start := time.Now()
	defer func() {
		FetchDuration.Observe(time.Since(start).Seconds())
	}()

	var price priceData
	err := c.fetchModule(ctx, ticker, modulePrice, &price)
	if err != nil {
		FetchErrorsTotal.WithLabelValues(modulePrice).Inc()
		return nil, err
	}

	var financial financialData
	err = c.fetchModule(ctx, ticker, moduleFinancialData, &financial)
	if err != nil {
		FetchErrorsTotal.WithLabelValues(moduleFinancialData).Inc()
		c.logger.Warn("metadata-module-unavailable",
			zap.String("ticker", ticker),
			zap.String("module", moduleFinancialData),
			zap.Error(err))
	}

	var profile assetProfile
	err = c.fetchModule(ctx, ticker, moduleAssetProfile, &profile)
	if err != nil {
		FetchErrorsTotal.WithLabelValues(moduleAssetProfile).Inc()
		c.logger.Warn("metadata-module-unavailable",
			zap.String("ticker", ticker),
			zap.String("module", moduleAssetProfile),
			zap.Error(err))
	}

	meta := merge(ticker, &financial, &profile, &price)
	meta.FetchedAt = c.now()

	c.logger.Debug("metadata-fetched",
		zap.String("ticker", ticker),
		zap.String("market-cap-category", meta.MarketCapCategory))

	return meta, nil
}

func (c *Client) fetchModule(ctx context.Context, ticker, module string, dst any) error {
	query := url.Values{}
	query.Set("symbol", ticker)
	query.Set("module", module)
	endpoint := fmt.Sprintf("%s/modules?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrProviderUnavailable, module, ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s %s: status %d", ErrProviderUnavailable, module, ticker, resp.StatusCode)
	}

	var envelope struct {
		Body json.RawMessage `json:"body"`
	}
	err = json.NewDecoder(resp.Body).Decode(&envelope)
	if err != nil {
		return fmt.Errorf("decode %s response: %w", module, err)
	}
	if len(envelope.Body) == 0 || string(envelope.Body) == "null" {
		return fmt.Errorf("%w: %s has no %s data", ErrTickerNotFound, ticker, module)
	}

	err = json.Unmarshal(envelope.Body, dst)
	if err != nil {
		return fmt.Errorf("decode %s body: %w", module, err)
	}

	return nil
}

func merge(ticker string, financial *financialData, profile *assetProfile, price *priceData) *types.StockMetadata {
	marketCap := resolveMarketCap(financial, price)

	currentPrice := financial.CurrentPrice.value()
	if currentPrice == nil {
		currentPrice = price.RegularMarketPrice.value()
	}

	return &types.StockMetadata{
		Ticker:            ticker,
		CompanyName:       firstNonEmpty(profile.LongName, profile.ShortName, price.LongName, price.ShortName, ticker),
		Sector:            profile.Sector,
		Industry:          profile.Industry,
		MarketCap:         marketCap,
		MarketCapCategory: types.CategorizeMarketCap(marketCap),
		Currency:          firstNonEmpty(financial.FinancialCurrency, price.Currency, "USD"),
		Exchange:          firstNonEmpty(price.ExchangeName, price.Exchange),
		CurrentPrice:      currentPrice,
		TargetMeanPrice:   financial.TargetMeanPrice.value(),
		RecommendationKey: financial.RecommendationKey,
		PERatio:           price.TrailingPE.value(),
		ProfitMargins:     financial.ProfitMargins.value(),
		ReturnOnEquity:    financial.ReturnOnEquity.value(),
		RevenueGrowth:     financial.RevenueGrowth.value(),
		EarningsGrowth:    financial.EarningsGrowth.value(),
	}
}

// resolveMarketCap prefers a reported market cap and falls back to
// shares outstanding times the regular market price.
func resolveMarketCap(financial *financialData, price *priceData) *float64 {
	if v := financial.MarketCap.value(); v != nil {
		return v
	}
	if v := price.MarketCap.value(); v != nil {
		return v
	}

	shares := price.SharesOutstanding.value()
	last := price.RegularMarketPrice.value()
	if shares != nil && last != nil {
		v := *shares * *last
		return &v
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
