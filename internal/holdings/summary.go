package holdings

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mselser95/finsight/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var hundred = decimal.NewFromInt(100)

// Position aggregates every holding of one ticker.
type Position struct {
	Ticker            string          `json:"ticker"`
	CompanyName       string          `json:"companyName,omitempty"`
	MarketCapCategory string          `json:"marketCapCategory,omitempty"`
	Lots              int             `json:"lots"`
	Quantity          decimal.Decimal `json:"quantity"`
	AverageCost       decimal.Decimal `json:"averageCost"`
	CostBasis         decimal.Decimal `json:"costBasis"`
	CurrentPrice      decimal.Decimal `json:"currentPrice"`
	MarketValue       decimal.Decimal `json:"marketValue"`
	Gain              decimal.Decimal `json:"gain"`
	GainPercent       decimal.Decimal `json:"gainPercent"`
	Priced            bool            `json:"priced"`
}

// Summary is the valuation of a user's portfolio.
type Summary struct {
	UserID        string          `json:"userId"`
	Positions     []Position      `json:"positions"`
	HoldingsCount int             `json:"holdingsCount"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalGain     decimal.Decimal `json:"totalGain"`
	GainPercent   decimal.Decimal `json:"gainPercent"`
	Unpriced      []string        `json:"unpriced,omitempty"`
	GeneratedAt   time.Time       `json:"generatedAt"`
}

// Summary values the user's holdings at current metadata prices.
//
// Metadata is looked up once per distinct ticker with bounded concurrency.
// A ticker without a usable price is valued at cost and reported in Unpriced;
// only cancellation of ctx fails the summary.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	start := time.Now()
	defer func() {
		SummaryDuration.Observe(time.Since(start).Seconds())
	}()

	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}

	positions := aggregate(list)

	prices, err := s.lookupPrices(ctx, positions)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		UserID:        userID,
		Positions:     make([]Position, 0, len(positions)),
		HoldingsCount: len(list),
		TotalCost:     decimal.Zero,
		TotalValue:    decimal.Zero,
		GeneratedAt:   s.now(),
	}

	for _, p := range positions {
		value(p, prices[p.Ticker])
		if !p.Priced {
			summary.Unpriced = append(summary.Unpriced, p.Ticker)
		}
		summary.TotalCost = summary.TotalCost.Add(p.CostBasis)
		summary.TotalValue = summary.TotalValue.Add(p.MarketValue)
		summary.Positions = append(summary.Positions, *p)
	}

	summary.TotalGain = summary.TotalValue.Sub(summary.TotalCost)
	summary.GainPercent = percent(summary.TotalGain, summary.TotalCost)

	s.logger.Debug("portfolio-summary-computed",
		zap.String("user-id", userID),
		zap.Int("positions", len(summary.Positions)),
		zap.Int("unpriced", len(summary.Unpriced)))

	return summary, nil
}

// aggregate groups holdings by ticker, sorted by ticker.
func aggregate(list []Holding) []*Position {
	byTicker := make(map[string]*Position)
	for i := range list {
		h := &list[i]
		p, ok := byTicker[h.Ticker]
		if !ok {
			p = &Position{Ticker: h.Ticker, Quantity: decimal.Zero, CostBasis: decimal.Zero}
			byTicker[h.Ticker] = p
		}
		p.Lots++
		p.Quantity = p.Quantity.Add(h.Quantity)
		p.CostBasis = p.CostBasis.Add(h.CostBasis())
	}

	positions := make([]*Position, 0, len(byTicker))
	for _, p := range byTicker {
		if p.Quantity.IsPositive() {
			p.AverageCost = p.CostBasis.Div(p.Quantity).Round(4)
		}
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Ticker < positions[j].Ticker })

	return positions
}

func (s *Service) lookupPrices(ctx context.Context, positions []*Position) (map[string]*types.StockMetadata, error) {
	prices := make(map[string]*types.StockMetadata, len(positions))
	if s.metadata == nil || len(positions) == 0 {
		return prices, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, p := range positions {
		ticker := p.Ticker
		g.Go(func() error {
			meta, err := s.metadata.Fetch(gctx, ticker)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("portfolio-price-unavailable",
					zap.String("ticker", ticker),
					zap.Error(err))
				return nil
			}

			mu.Lock()
			prices[ticker] = meta
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("lookup prices: %w", err)
	}
	return prices, nil
}

// value fills the market fields of p. Without a price the position is held at cost.
func value(p *Position, meta *types.StockMetadata) {
	if meta != nil {
		p.CompanyName = meta.CompanyName
		p.MarketCapCategory = meta.MarketCapCategory
	}

	if !meta.HasPrice() {
		p.Priced = false
		p.CurrentPrice = p.AverageCost
		p.MarketValue = p.CostBasis
		p.Gain = decimal.Zero
		p.GainPercent = decimal.Zero
		return
	}

	p.Priced = true
	p.CurrentPrice = decimal.NewFromFloat(*meta.CurrentPrice)
	p.MarketValue = p.Quantity.Mul(p.CurrentPrice).Round(2)
	p.Gain = p.MarketValue.Sub(p.CostBasis)
	p.GainPercent = percent(p.Gain, p.CostBasis)
}

func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}
