// internal/domain/payment.go
package domain

// ChargeOutcomeCode classifies the gateway's response to a charge attempt.
type ChargeOutcomeCode string

const (
	ChargeApproved          ChargeOutcomeCode = "approved"
	ChargeDeclinedRetryable ChargeOutcomeCode = "declined_retryable"
	ChargeDeclinedFatal     ChargeOutcomeCode = "declined_fatal"
	ChargeUnavailable       ChargeOutcomeCode = "unavailable"
)

// PaymentOutcome is the result of a single charge attempt.
// RetryWithDifferentMethod advises the caller to try another instrument
// (another card, or a wallet debit); the attempt itself is never retried
// internally.
type PaymentOutcome struct {
	Success                  bool   `json:"success"`
	TransactionID            string `json:"transaction_id,omitempty"`
	Message                  string `json:"message"`
	RetryWithDifferentMethod bool   `json:"retry_with_different_method"`
}
