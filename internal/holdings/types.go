package holdings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/finsight/pkg/types"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a holding does not exist for the user.
	ErrNotFound = errors.New("holding not found")

	// ErrInvalidHolding is returned when a create request fails validation.
	ErrInvalidHolding = errors.New("invalid holding")

	// ErrUserRequired is returned when an operation has no user to act for.
	ErrUserRequired = errors.New("user id is required")
)

//nolint:gochecknoglobals // validation bounds
var (
	MinQuantity      = decimal.NewFromInt(1)
	MinPurchasePrice = decimal.RequireFromString("0.01")
)

// Holding is one purchase lot of a stock owned by a user.
type Holding struct {
	ID            uuid.UUID            `json:"id"`
	UserID        string               `json:"userId"`
	Ticker        string               `json:"ticker"`
	Quantity      decimal.Decimal      `json:"quantity"`
	PurchasePrice decimal.Decimal      `json:"purchasePrice"`
	PurchaseDate  time.Time            `json:"purchaseDate"`
	Notes         string               `json:"notes"`
	Metadata      *types.StockMetadata `json:"metadata,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// CostBasis returns quantity times purchase price.
func (h *Holding) CostBasis() decimal.Decimal {
	return h.Quantity.Mul(h.PurchasePrice)
}

// CreateRequest is the input for adding a holding.
type CreateRequest struct {
	Ticker        string          `json:"ticker"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	PurchaseDate  *time.Time      `json:"purchaseDate,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// Validate checks the request and returns an error wrapping ErrInvalidHolding.
func (r *CreateRequest) Validate() error {
	var problems []string

	if strings.TrimSpace(r.Ticker) == "" {
		problems = append(problems, "ticker is required")
	}
	if r.Quantity.LessThan(MinQuantity) {
		problems = append(problems, "quantity must be at least 1")
	}
	if r.PurchasePrice.LessThan(MinPurchasePrice) {
		problems = append(problems, "purchase price must be at least 0.01")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidationError lists every problem found in a create request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return ErrInvalidHolding.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Unwrap makes errors.Is(err, ErrInvalidHolding) hold.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidHolding
}

// Store persists holdings. Every read and delete is scoped to a user.
type Store interface {
	// Create persists a new holding.
	Create(ctx context.Context, h *Holding) error

	// ListByUser returns the user's holdings, newest purchase first.
	ListByUser(ctx context.Context, userID string) ([]Holding, error)

	// Get returns one holding. Returns ErrNotFound if it does not exist for userID.
	Get(ctx context.Context, userID string, id uuid.UUID) (*Holding, error)

	// Delete removes one holding. Returns ErrNotFound if it does not exist for userID.
	Delete(ctx context.Context, userID string, id uuid.UUID) error

	// Close releases the store's resources.
	Close() error
}

// MetadataProvider looks up company metadata and prices.
type MetadataProvider interface {
	Fetch(ctx context.Context, ticker string) (*types.StockMetadata, error)
}
