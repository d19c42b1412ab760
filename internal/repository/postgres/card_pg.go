// internal/repository/postgres/card_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"cardvault/internal/domain"
	"cardvault/internal/repository"
	"cardvault/internal/util"
)

// CardRepository implements repository.CardRepository for PostgreSQL.
type CardRepository struct {
	// Stateless; methods receive a DBExecutor per call.
}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(db *sqlx.DB) repository.CardRepository {
	return &CardRepository{}
}

// CreateCard inserts a new card record using the provided DBExecutor.
func (r *CardRepository) CreateCard(ctx context.Context, q repository.DBExecutor, card *domain.CardRecord) error {
	query := `INSERT INTO cards (owner_id, gateway_token, issuer, bank_name, last4, expiry_month, expiry_year, holder_name, card_type, is_primary, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		card.OwnerID, card.GatewayToken, card.Issuer, card.BankName, card.Last4,
		card.ExpiryMonth, card.ExpiryYear, card.HolderName, card.CardType,
		card.IsPrimary, card.CreatedAt,
	).Scan(&card.ID)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// GetCardByID retrieves a card by ID scoped to its owner using the provided DBExecutor.
func (r *CardRepository) GetCardByID(ctx context.Context, q repository.DBExecutor, ownerID string, cardID int64) (*domain.CardRecord, error) {
	var card domain.CardRecord
	query := `SELECT id, owner_id, gateway_token, issuer, bank_name, last4, expiry_month, expiry_year, holder_name, card_type, is_primary, created_at
              FROM cards WHERE id = $1 AND owner_id = $2`
	err := q.GetContext(ctx, &card, query, cardID, ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card by ID %d: %w", cardID, err)
	}
	return &card, nil
}

// ListCardsByOwner returns the owner's cards, primary first, then oldest first.
func (r *CardRepository) ListCardsByOwner(ctx context.Context, q repository.DBExecutor, ownerID string) ([]domain.CardRecord, error) {
	cards := []domain.CardRecord{}
	query := `SELECT id, owner_id, gateway_token, issuer, bank_name, last4, expiry_month, expiry_year, holder_name, card_type, is_primary, created_at
              FROM cards WHERE owner_id = $1
              ORDER BY is_primary DESC, created_at ASC, id ASC`
	if err := q.SelectContext(ctx, &cards, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list cards for owner %s: %w", ownerID, err)
	}
	return cards, nil
}

// CountCardsByOwner returns how many cards the owner has saved.
func (r *CardRepository) CountCardsByOwner(ctx context.Context, q repository.DBExecutor, ownerID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM cards WHERE owner_id = $1`
	if err := q.GetContext(ctx, &count, query, ownerID); err != nil {
		return 0, fmt.Errorf("failed to count cards for owner %s: %w", ownerID, err)
	}
	return count, nil
}

// ClearPrimary unsets is_primary on all of the owner's cards except the given one.
func (r *CardRepository) ClearPrimary(ctx context.Context, q repository.DBExecutor, ownerID string, exceptCardID int64) error {
	query := `UPDATE cards SET is_primary = FALSE WHERE owner_id = $1 AND id <> $2 AND is_primary = TRUE`
	if _, err := q.ExecContext(ctx, query, ownerID, exceptCardID); err != nil {
		return fmt.Errorf("failed to clear primary flag for owner %s: %w", ownerID, err)
	}
	return nil
}

// MarkPrimary sets is_primary on a single card scoped to its owner.
func (r *CardRepository) MarkPrimary(ctx context.Context, q repository.DBExecutor, ownerID string, cardID int64) error {
	query := `UPDATE cards SET is_primary = TRUE WHERE owner_id = $1 AND id = $2`
	result, err := q.ExecContext(ctx, query, ownerID, cardID)
	if err != nil {
		return fmt.Errorf("failed to mark card %d primary: %w", cardID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after marking card %d primary: %w", cardID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// DeleteCard removes a card scoped to its owner.
func (r *CardRepository) DeleteCard(ctx context.Context, q repository.DBExecutor, ownerID string, cardID int64) error {
	query := `DELETE FROM cards WHERE owner_id = $1 AND id = $2`
	result, err := q.ExecContext(ctx, query, ownerID, cardID)
	if err != nil {
		return fmt.Errorf("failed to delete card %d: %w", cardID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after deleting card %d: %w", cardID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
