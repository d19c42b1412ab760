// internal/service/payment_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"cardvault/internal/domain"
	"cardvault/internal/gateway"
	"cardvault/internal/util"
)

// PaymentService orchestrates a single charge attempt against a saved card.
// It resolves the card through the vault's read path, submits the charge, and
// classifies the outcome. It never selects an alternate instrument and never
// retries; RetryWithDifferentMethod on the outcome is advisory to the caller.
type PaymentService interface {
	ChargeCard(ctx context.Context, ownerID string, cardID int64, amount decimal.Decimal, purpose string) (*domain.PaymentOutcome, error)
}

// paymentService implements the PaymentService interface.
type paymentService struct {
	cards   CardService
	charger gateway.ChargeGateway
	logger  *slog.Logger
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(cards CardService, charger gateway.ChargeGateway, logger *slog.Logger) PaymentService {
	return &paymentService{
		cards:   cards,
		charger: charger,
		logger:  logger,
	}
}

// ChargeCard attempts to charge the given amount to a saved card.
func (s *paymentService) ChargeCard(ctx context.Context, ownerID string, cardID int64, amount decimal.Decimal, purpose string) (*domain.PaymentOutcome, error) {
	if ownerID == "" {
		return nil, util.ErrNotAuthenticated
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", util.ErrInvalidInput)
	}

	card, err := s.cards.ResolveCard(ctx, ownerID, cardID)
	if err != nil {
		// ErrCardNotFound propagates unchanged.
		return nil, err
	}

	res, err := s.charger.Charge(ctx, card.GatewayToken, amount, purpose)
	if err != nil {
		// Transport-level failure: the gateway could not be reached, which is
		// indistinguishable from it being down.
		s.logger.Warn("charge submission failed", "owner_id", ownerID, "card_id", cardID, "error", err)
		return &domain.PaymentOutcome{
			Success:                  false,
			Message:                  "payment gateway unavailable",
			RetryWithDifferentMethod: true,
		}, nil
	}

	switch res.Outcome {
	case domain.ChargeApproved:
		return &domain.PaymentOutcome{
			Success:       true,
			TransactionID: res.TransactionID,
			Message:       res.Message,
		}, nil
	case domain.ChargeDeclinedRetryable:
		return &domain.PaymentOutcome{
			Success:                  false,
			Message:                  res.Message,
			RetryWithDifferentMethod: true,
		}, nil
	case domain.ChargeDeclinedFatal:
		return &domain.PaymentOutcome{
			Success:                  false,
			Message:                  res.Message,
			RetryWithDifferentMethod: false,
		}, nil
	case domain.ChargeUnavailable:
		return &domain.PaymentOutcome{
			Success:                  false,
			Message:                  res.Message,
			RetryWithDifferentMethod: true,
		}, nil
	default:
		s.logger.Warn("unknown charge outcome, treating as unavailable", "outcome", res.Outcome)
		return &domain.PaymentOutcome{
			Success:                  false,
			Message:                  res.Message,
			RetryWithDifferentMethod: true,
		}, nil
	}
}
