// internal/gateway/http.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cardvault/internal/domain"
)

// Client talks to the payments gateway over JSON/HTTP. It implements both
// TokenizationGateway and ChargeGateway, since the provider exposes both on
// one endpoint behind one API key.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a payments gateway client.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type tokenizeRequest struct {
	Number      string `json:"number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVV         string `json:"cvv"`
	HolderName  string `json:"holder_name,omitempty"`
}

type tokenizeResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	Issuer   string `json:"issuer"`
	BankName string `json:"bank_name"`
	Message  string `json:"message"`
}

// Tokenize submits raw card data to the gateway and returns the issued token
// with issuer metadata. The request body carries PAN/CVV and must never be
// logged.
func (c *Client) Tokenize(ctx context.Context, in domain.CardInput) (*TokenizeResult, error) {
	req := tokenizeRequest{
		Number:      in.Number,
		ExpiryMonth: in.ExpiryMonth,
		ExpiryYear:  in.ExpiryYear,
		CVV:         in.CVV,
		HolderName:  in.HolderName,
	}

	var resp tokenizeResponse
	status, err := c.postJSON(ctx, "/v1/tokens", req, &resp, nil)
	if err != nil {
		return nil, fmt.Errorf("tokenize request failed: %w", err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("tokenize: unexpected status code: %d", status)
	}

	return &TokenizeResult{
		Success:  resp.Success,
		Token:    resp.Token,
		Issuer:   resp.Issuer,
		BankName: resp.BankName,
		Message:  resp.Message,
	}, nil
}

// RevokeToken asks the gateway to retire a token. Failures are returned to
// the caller, who treats them as non-fatal.
func (c *Client) RevokeToken(ctx context.Context, token string) error {
	url := fmt.Sprintf("%s/v1/tokens/%s", c.baseURL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("revoke token: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("revoke token: unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

type chargeRequest struct {
	Token   string          `json:"token"`
	Amount  decimal.Decimal `json:"amount"`
	Purpose string          `json:"purpose"`
}

type chargeResponse struct {
	OutcomeCode   string `json:"outcome_code"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// Charge submits a charge against a token. Each submission carries a fresh
// idempotency key so a transport-level replay cannot double-charge.
func (c *Client) Charge(ctx context.Context, token string, amount decimal.Decimal, purpose string) (*ChargeResult, error) {
	req := chargeRequest{Token: token, Amount: amount, Purpose: purpose}
	headers := map[string]string{"Idempotency-Key": uuid.NewString()}

	var resp chargeResponse
	status, err := c.postJSON(ctx, "/v1/charges", req, &resp, headers)
	if err != nil {
		return nil, fmt.Errorf("charge request failed: %w", err)
	}
	if status >= http.StatusInternalServerError {
		// Provider-side failure; the charge may or may not have landed, so
		// report unavailable rather than guessing a decline.
		return &ChargeResult{Outcome: domain.ChargeUnavailable, Message: fmt.Sprintf("gateway returned status %d", status)}, nil
	}

	switch domain.ChargeOutcomeCode(resp.OutcomeCode) {
	case domain.ChargeApproved, domain.ChargeDeclinedRetryable, domain.ChargeDeclinedFatal, domain.ChargeUnavailable:
		return &ChargeResult{
			Outcome:       domain.ChargeOutcomeCode(resp.OutcomeCode),
			TransactionID: resp.TransactionID,
			Message:       resp.Message,
		}, nil
	default:
		c.logger.Warn("gateway returned unknown charge outcome code", "outcome_code", resp.OutcomeCode)
		return &ChargeResult{Outcome: domain.ChargeUnavailable, Message: resp.Message}, nil
	}
}

// postJSON posts a JSON payload and decodes the JSON response into dest.
// It returns the HTTP status code so callers can classify non-2xx replies.
func (c *Client) postJSON(ctx context.Context, path string, payload, dest any, headers map[string]string) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, dest); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// WalletClient talks to the wallet service's debit endpoint.
type WalletClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewWalletClient creates a wallet-debit client.
func NewWalletClient(baseURL string, logger *slog.Logger) *WalletClient {
	return &WalletClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type debitRequest struct {
	OwnerID string          `json:"owner_id"`
	Amount  decimal.Decimal `json:"amount"`
	Note    string          `json:"note,omitempty"`
}

type debitResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// DebitWallet debits the owner's wallet balance.
func (w *WalletClient) DebitWallet(ctx context.Context, ownerID string, amount decimal.Decimal, note string) (*DebitResult, error) {
	body, err := json.Marshal(debitRequest{OwnerID: ownerID, Amount: amount, Note: note})
	if err != nil {
		return nil, fmt.Errorf("debit wallet: failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v1/debits", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("debit wallet: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("debit wallet: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("debit wallet: unexpected status code: %d", resp.StatusCode)
	}

	var out debitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("debit wallet: failed to decode response: %w", err)
	}

	return &DebitResult{
		Success:       out.Success,
		TransactionID: out.TransactionID,
		Message:       out.Message,
	}, nil
}
