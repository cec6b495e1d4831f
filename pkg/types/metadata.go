package types

import "time"

// Market capitalization categories.
const (
	MarketCapLarge   = "Large Cap"
	MarketCapMid     = "Mid Cap"
	MarketCapSmall   = "Small Cap"
	MarketCapMicro   = "Micro Cap"
	MarketCapUnknown = "Unknown"
)

const (
	largeCapThreshold = 10_000_000_000
	midCapThreshold   = 2_000_000_000
	smallCapThreshold = 300_000_000
)

// StockMetadata is company and quote data attached to a holding.
// Fields the provider did not report are nil.
type StockMetadata struct {
	Ticker            string    `json:"ticker"`
	CompanyName       string    `json:"companyName"`
	Sector            string    `json:"sector,omitempty"`
	Industry          string    `json:"industry,omitempty"`
	MarketCap         *float64  `json:"marketCap"`
	MarketCapCategory string    `json:"marketCapCategory"`
	Currency          string    `json:"currency"`
	Exchange          string    `json:"exchange,omitempty"`
	CurrentPrice      *float64  `json:"currentPrice"`
	TargetMeanPrice   *float64  `json:"targetMeanPrice,omitempty"`
	RecommendationKey string    `json:"recommendationKey,omitempty"`
	PERatio           *float64  `json:"peRatio,omitempty"`
	ProfitMargins     *float64  `json:"profitMargins,omitempty"`
	ReturnOnEquity    *float64  `json:"returnOnEquity,omitempty"`
	RevenueGrowth     *float64  `json:"revenueGrowth,omitempty"`
	EarningsGrowth    *float64  `json:"earningsGrowth,omitempty"`
	FetchedAt         time.Time `json:"fetchedAt"`
}

// CategorizeMarketCap buckets a market capitalization in dollars.
func CategorizeMarketCap(marketCap *float64) string {
	if marketCap == nil || *marketCap <= 0 {
		return MarketCapUnknown
	}

	switch v := *marketCap; {
	case v >= largeCapThreshold:
		return MarketCapLarge
	case v >= midCapThreshold:
		return MarketCapMid
	case v >= smallCapThreshold:
		return MarketCapSmall
	default:
		return MarketCapMicro
	}
}

// HasPrice reports whether a usable current price is present.
func (m *StockMetadata) HasPrice() bool {
	return m != nil && m.CurrentPrice != nil && *m.CurrentPrice > 0
}
