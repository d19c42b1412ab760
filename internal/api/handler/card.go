// internal/api/handler/card.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"cardvault/internal/domain"
	"cardvault/internal/service"
	"cardvault/internal/util"
)

// DefaultTimeout bounds each request's total handling time.
const DefaultTimeout = 30 * time.Second

// OwnerHeader carries the resolved user identity. Session resolution happens
// upstream; every service call receives the owner explicitly.
const OwnerHeader = "X-Owner-ID"

// CardHandler handles HTTP requests for the saved-card vault.
type CardHandler struct {
	service service.CardService
	logger  *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(svc service.CardService, logger *slog.Logger) *CardHandler {
	return &CardHandler{
		service: svc,
		logger:  logger,
	}
}

// Helper function to send JSON responses.
func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrNotAuthenticated):
		statusCode = http.StatusUnauthorized
		message = "Not authenticated"
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrCardNotFound), util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Card not found"
	case util.IsError(err, util.ErrCannotDeletePrimary):
		statusCode = http.StatusConflict
		message = "Cannot delete the primary card: set another card as primary first"
	case util.IsError(err, util.ErrCannotDeleteOnlyCard):
		statusCode = http.StatusConflict
		message = "Cannot delete your only saved card"
	case util.IsError(err, util.ErrTokenizationFailed):
		statusCode = http.StatusUnprocessableEntity
		message = "The card could not be verified with the payment provider"
	case util.IsError(err, util.ErrStoreWrite):
		statusCode = http.StatusServiceUnavailable
		message = "Temporary storage error, please retry"
	case util.IsError(err, util.ErrGatewayUnavailable):
		statusCode = http.StatusBadGateway
		message = "Payment gateway unavailable"
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(w, logger, statusCode, map[string]string{"error": message})
}

// ownerID extracts the owner identity from the request.
func ownerID(r *http.Request) string {
	return r.Header.Get(OwnerHeader)
}

// cardView decorates a stored card with a read-time expiry flag for the UI.
type cardView struct {
	domain.CardRecord
	Expired bool `json:"expired"`
}

// ListCards handles listing the owner's saved cards, primary first.
// GET /cards
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.ListCards(r.Context(), ownerID(r))
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	now := time.Now().UTC()
	views := make([]cardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, cardView{CardRecord: c, Expired: c.Expired(now)})
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{"cards": views})
}

// AddCardRequest represents the request body for saving a card.
// The CVV is forwarded to the tokenization gateway once and discarded.
type AddCardRequest struct {
	Number      string `json:"number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVV         string `json:"cvv"`
	HolderName  string `json:"holder_name"`
	CardType    string `json:"card_type"`
}

// AddCard handles tokenizing and saving a new card.
// POST /cards
func (h *CardHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req AddCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	input := domain.CardInput{
		Number:      req.Number,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CVV:         req.CVV,
		HolderName:  req.HolderName,
		CardType:    domain.CardType(req.CardType),
	}

	card, err := h.service.AddCard(r.Context(), ownerID(r), input)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, card)
}

// SetPrimary handles making a card the owner's primary instrument.
// PUT /cards/{cardID}/primary
func (h *CardHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.ParseInt(chi.URLParam(r, "cardID"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	if err := h.service.SetPrimary(r.Context(), ownerID(r), cardID); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Primary card updated"})
}

// DeleteCard handles removing a saved card.
// DELETE /cards/{cardID}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.ParseInt(chi.URLParam(r, "cardID"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	if err := h.service.DeleteCard(r.Context(), ownerID(r), cardID); err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Card deleted"})
}
