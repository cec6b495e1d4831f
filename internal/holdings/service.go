package holdings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSummaryConcurrency bounds concurrent metadata lookups in Summary.
const DefaultSummaryConcurrency = 4

// Service implements holding management and portfolio valuation.
type Service struct {
	store       Store
	metadata    MetadataProvider
	logger      *zap.Logger
	concurrency int
	now         func() time.Time
}

// Config holds service configuration.
type Config struct {
	Store       Store
	Metadata    MetadataProvider // optional; without it holdings are not enriched or priced
	Logger      *zap.Logger
	Concurrency int
	Now         func() time.Time
}

// NewService creates a new holdings service.
func NewService(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = DefaultSummaryConcurrency
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		store:       cfg.Store,
		metadata:    cfg.Metadata,
		logger:      cfg.Logger,
		concurrency: concurrency,
		now:         now,
	}, nil
}

// Create validates req and stores a new holding for userID.
// Metadata enrichment is best effort: a lookup failure is logged and the
// holding is stored without metadata.
func (s *Service) Create(ctx context.Context, userID string, req *CreateRequest) (*Holding, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	err := req.Validate()
	if err != nil {
		return nil, err
	}

	now := s.now()
	purchaseDate := now
	if req.PurchaseDate != nil && !req.PurchaseDate.IsZero() {
		purchaseDate = *req.PurchaseDate
	}

	h := &Holding{
		ID:            uuid.New(),
		UserID:        userID,
		Ticker:        strings.ToUpper(strings.TrimSpace(req.Ticker)),
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
		PurchaseDate:  purchaseDate,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if s.metadata != nil {
		meta, err := s.metadata.Fetch(ctx, h.Ticker)
		if err != nil {
			MetadataEnrichFailuresTotal.Inc()
			s.logger.Warn("holding-metadata-unavailable",
				zap.String("ticker", h.Ticker),
				zap.Error(err))
		} else {
			h.Metadata = meta
		}
	}

	err = s.store.Create(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("create holding: %w", err)
	}

	HoldingsCreatedTotal.Inc()
	s.logger.Info("holding-created",
		zap.String("user-id", userID),
		zap.String("holding-id", h.ID.String()),
		zap.String("ticker", h.Ticker),
		zap.String("quantity", h.Quantity.String()))

	return h, nil
}

// List returns the user's holdings.
func (s *Service) List(ctx context.Context, userID string) ([]Holding, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	return list, nil
}

// Get returns one of the user's holdings.
func (s *Service) Get(ctx context.Context, userID string, id uuid.UUID) (*Holding, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.store.Get(ctx, userID, id)
}

// Delete removes one of the user's holdings.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if userID == "" {
		return ErrUserRequired
	}

	err := s.store.Delete(ctx, userID, id)
	if err != nil {
		return err
	}

	s.logger.Info("holding-deleted",
		zap.String("user-id", userID),
		zap.String("holding-id", id.String()))
	return nil
}
