// internal/api/handler/payment.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"cardvault/internal/gateway"
	"cardvault/internal/service"
	"cardvault/internal/util"
)

// PaymentHandler handles HTTP requests for charge attempts. It is the layer
// that decides what to do with a retry-with-different-method signal: when the
// caller opts in, it falls back to a wallet debit.
type PaymentHandler struct {
	payments service.PaymentService
	wallet   gateway.WalletDebitor
	logger   *slog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments service.PaymentService, wallet gateway.WalletDebitor, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		wallet:   wallet,
		logger:   logger,
	}
}

// ChargeRequest represents the request body for charging a saved card.
type ChargeRequest struct {
	CardID           int64           `json:"card_id"`
	Amount           decimal.Decimal `json:"amount"`
	Purpose          string          `json:"purpose"`
	FallbackToWallet bool            `json:"fallback_to_wallet"`
}

// ChargeResponse reports the card attempt and, when the wallet fallback ran,
// which instrument ultimately paid.
type ChargeResponse struct {
	Success                  bool   `json:"success"`
	PaidWith                 string `json:"paid_with,omitempty"`
	TransactionID            string `json:"transaction_id,omitempty"`
	Message                  string `json:"message"`
	RetryWithDifferentMethod bool   `json:"retry_with_different_method"`
}

// ChargeCard handles a charge attempt against a saved card.
// POST /payments/charge
func (h *PaymentHandler) ChargeCard(w http.ResponseWriter, r *http.Request) {
	var req ChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	owner := ownerID(r)
	outcome, err := h.payments.ChargeCard(r.Context(), owner, req.CardID, req.Amount, req.Purpose)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	if outcome.Success {
		respondWithJSON(w, h.logger, http.StatusOK, ChargeResponse{
			Success:       true,
			PaidWith:      "card",
			TransactionID: outcome.TransactionID,
			Message:       outcome.Message,
		})
		return
	}

	if outcome.RetryWithDifferentMethod && req.FallbackToWallet {
		debit, err := h.wallet.DebitWallet(r.Context(), owner, req.Amount, "card charge fallback: "+req.Purpose)
		if err == nil && debit.Success {
			respondWithJSON(w, h.logger, http.StatusOK, ChargeResponse{
				Success:       true,
				PaidWith:      "wallet",
				TransactionID: debit.TransactionID,
				Message:       debit.Message,
			})
			return
		}
		if err != nil {
			h.logger.Warn("wallet fallback debit failed", "owner_id", owner, "error", err)
		}
	}

	respondWithJSON(w, h.logger, http.StatusPaymentRequired, ChargeResponse{
		Success:                  false,
		Message:                  outcome.Message,
		RetryWithDifferentMethod: outcome.RetryWithDifferentMethod,
	})
}
