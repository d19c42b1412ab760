// internal/service/card_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cardvault/internal/domain"
	"cardvault/internal/gateway"
	"cardvault/internal/repository"
	"cardvault/internal/util"
	"cardvault/pkg/db"
)

// CardService defines the interface for the saved-card vault.
//
// The vault owns the per-owner card set and its primary-card rules: at most
// one primary per owner, the first saved card becomes primary, and the
// primary (or only) card cannot be deleted out from under the set.
type CardService interface {
	ListCards(ctx context.Context, ownerID string) ([]domain.CardRecord, error)
	AddCard(ctx context.Context, ownerID string, input domain.CardInput) (*domain.CardRecord, error)
	SetPrimary(ctx context.Context, ownerID string, cardID int64) error
	DeleteCard(ctx context.Context, ownerID string, cardID int64) error
	// ResolveCard is the read path used by the payment orchestrator to reach
	// a card's gateway token. It never mutates.
	ResolveCard(ctx context.Context, ownerID string, cardID int64) (*domain.CardRecord, error)
}

// cardService implements the CardService interface.
type cardService struct {
	dbBeginner db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	cardRepo   repository.CardRepository
	tokenizer  gateway.TokenizationGateway
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
	logger     *slog.Logger
}

// NewCardService creates a new instance of CardService.
func NewCardService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	cardRepo repository.CardRepository,
	tokenizer gateway.TokenizationGateway,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	logger *slog.Logger,
) CardService {
	return &cardService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		cardRepo:   cardRepo,
		tokenizer:  tokenizer,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
		logger:     logger,
	}
}

// ListCards returns all of the owner's saved cards, primary first.
func (s *cardService) ListCards(ctx context.Context, ownerID string) ([]domain.CardRecord, error) {
	if ownerID == "" {
		return nil, util.ErrNotAuthenticated
	}
	cards, err := s.cardRepo.ListCardsByOwner(ctx, s.dbExecutor, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// AddCard tokenizes a raw card and persists its non-sensitive metadata.
// The raw PAN and CVV leave the process exactly once, in the Tokenize call,
// and the CVV is dropped afterwards regardless of outcome.
func (s *cardService) AddCard(ctx context.Context, ownerID string, input domain.CardInput) (*domain.CardRecord, error) {
	if ownerID == "" {
		return nil, util.ErrNotAuthenticated
	}
	if err := input.Validate(time.Now().UTC()); err != nil {
		return nil, err
	}

	res, err := s.tokenizer.Tokenize(ctx, input)
	input.CVV = ""
	if err != nil {
		return nil, fmt.Errorf("add card: %w: %v", util.ErrTokenizationFailed, err)
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", util.ErrTokenizationFailed, res.Message)
	}

	count, err := s.cardRepo.CountCardsByOwner(ctx, s.dbExecutor, ownerID)
	if err != nil {
		return nil, fmt.Errorf("add card: failed to count cards for owner %s: %w", ownerID, err)
	}

	// The count/insert pair is not serialized per owner: two concurrent first
	// adds for a brand-new owner can both observe zero cards and both become
	// primary. Accepted narrow race, not guarded here.
	card := domain.NewCardRecord(ownerID, input, res.Token, res.Issuer, res.BankName, count == 0)
	if err := s.cardRepo.CreateCard(ctx, s.dbExecutor, card); err != nil {
		// The gateway token now has no local record. There is no compensating
		// revocation here; log enough for manual reconciliation.
		s.logger.Warn("card insert failed after successful tokenization, gateway token orphaned",
			"owner_id", ownerID, "gateway_token", res.Token)
		return nil, fmt.Errorf("add card: %w: %v", util.ErrStoreWrite, err)
	}

	return card, nil
}

// SetPrimary makes the given card the owner's single primary card. The flip
// of the old and new primary flags happens in one transaction so partial
// states are never observable.
func (s *cardService) SetPrimary(ctx context.Context, ownerID string, cardID int64) error {
	if ownerID == "" {
		return util.ErrNotAuthenticated
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("set primary: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("set primary: transaction controller does not implement DBExecutor")
	}

	card, err := s.cardRepo.GetCardByID(ctx, txExecutor, ownerID, cardID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return util.ErrCardNotFound
		}
		return fmt.Errorf("set primary: failed to get card %d: %w", cardID, err)
	}
	if card.IsPrimary {
		// Already primary; nothing to flip.
		return nil
	}

	if err := s.cardRepo.ClearPrimary(ctx, txExecutor, ownerID, cardID); err != nil {
		return fmt.Errorf("set primary: failed to clear previous primary: %w", err)
	}
	if err := s.cardRepo.MarkPrimary(ctx, txExecutor, ownerID, cardID); err != nil {
		return fmt.Errorf("set primary: failed to mark card %d primary: %w", cardID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("set primary: failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteCard removes a non-primary card. The ownership and primary checks run
// in the same transaction as the delete itself, so a racing primary flip
// cannot leave a non-empty set with zero primaries.
func (s *cardService) DeleteCard(ctx context.Context, ownerID string, cardID int64) error {
	if ownerID == "" {
		return util.ErrNotAuthenticated
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("delete card: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("delete card: transaction controller does not implement DBExecutor")
	}

	card, err := s.cardRepo.GetCardByID(ctx, txExecutor, ownerID, cardID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return util.ErrCardNotFound
		}
		return fmt.Errorf("delete card: failed to get card %d: %w", cardID, err)
	}

	count, err := s.cardRepo.CountCardsByOwner(ctx, txExecutor, ownerID)
	if err != nil {
		return fmt.Errorf("delete card: failed to count cards for owner %s: %w", ownerID, err)
	}
	if count <= 1 {
		return util.ErrCannotDeleteOnlyCard
	}
	if card.IsPrimary {
		return util.ErrCannotDeletePrimary
	}

	if err := s.cardRepo.DeleteCard(ctx, txExecutor, ownerID, cardID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return util.ErrCardNotFound
		}
		return fmt.Errorf("delete card: failed to delete card %d: %w", cardID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("delete card: failed to commit transaction: %w", err)
	}

	// Best-effort token revocation after the local delete lands. A stale
	// token at the gateway is lower risk than an undeletable card.
	if err := s.tokenizer.RevokeToken(ctx, card.GatewayToken); err != nil {
		s.logger.Warn("gateway token revocation failed", "owner_id", ownerID, "card_id", cardID, "error", err)
	}

	return nil
}

// ResolveCard retrieves a single card scoped to its owner.
func (s *cardService) ResolveCard(ctx context.Context, ownerID string, cardID int64) (*domain.CardRecord, error) {
	if ownerID == "" {
		return nil, util.ErrNotAuthenticated
	}
	card, err := s.cardRepo.GetCardByID(ctx, s.dbExecutor, ownerID, cardID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrCardNotFound
		}
		return nil, fmt.Errorf("resolve card: failed to get card %d: %w", cardID, err)
	}
	return card, nil
}
