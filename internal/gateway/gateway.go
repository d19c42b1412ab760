// internal/gateway/gateway.go
package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"cardvault/internal/domain"
)

// TokenizeResult is the gateway's answer to a tokenization request.
type TokenizeResult struct {
	Success  bool
	Token    string
	Issuer   string
	BankName string
	Message  string
}

// TokenizationGateway exchanges raw card data for an opaque token.
// This is the only boundary raw PAN/CVV ever cross.
type TokenizationGateway interface {
	Tokenize(ctx context.Context, in domain.CardInput) (*TokenizeResult, error)
	// RevokeToken is best-effort; callers log and swallow failures.
	RevokeToken(ctx context.Context, token string) error
}

// ChargeResult is the gateway's answer to a charge submission.
type ChargeResult struct {
	Outcome       domain.ChargeOutcomeCode
	TransactionID string
	Message       string
}

// ChargeGateway submits a charge against a previously issued token.
type ChargeGateway interface {
	Charge(ctx context.Context, token string, amount decimal.Decimal, purpose string) (*ChargeResult, error)
}

// DebitResult is the wallet collaborator's answer to a debit request.
type DebitResult struct {
	Success       bool
	TransactionID string
	Message       string
}

// WalletDebitor is the fallback payment collaborator. It is invoked only by
// the layer above the payment orchestrator, never by the orchestrator itself.
type WalletDebitor interface {
	DebitWallet(ctx context.Context, ownerID string, amount decimal.Decimal, note string) (*DebitResult, error)
}
