// internal/repository/card_repo.go
package repository

import (
	"context"

	"cardvault/internal/domain"
)

// CardRepository defines the interface for saved-card data operations.
// Every method takes a DBExecutor so callers decide whether the operation
// runs on the pool or inside a transaction.
type CardRepository interface {
	// CreateCard inserts a new card record and fills in its store-assigned ID.
	CreateCard(ctx context.Context, q DBExecutor, card *domain.CardRecord) error
	// GetCardByID retrieves a card by ID scoped to its owner.
	// Returns util.ErrNotFound when the ID does not resolve for that owner.
	GetCardByID(ctx context.Context, q DBExecutor, ownerID string, cardID int64) (*domain.CardRecord, error)
	// ListCardsByOwner returns the owner's cards ordered primary-first,
	// then by creation order.
	ListCardsByOwner(ctx context.Context, q DBExecutor, ownerID string) ([]domain.CardRecord, error)
	// CountCardsByOwner returns how many cards the owner has saved.
	CountCardsByOwner(ctx context.Context, q DBExecutor, ownerID string) (int64, error)
	// ClearPrimary unsets is_primary on all of the owner's cards except the
	// given one. Affecting zero rows is not an error.
	ClearPrimary(ctx context.Context, q DBExecutor, ownerID string, exceptCardID int64) error
	// MarkPrimary sets is_primary on a single card scoped to its owner.
	MarkPrimary(ctx context.Context, q DBExecutor, ownerID string, cardID int64) error
	// DeleteCard removes a card scoped to its owner.
	DeleteCard(ctx context.Context, q DBExecutor, ownerID string, cardID int64) error
}
