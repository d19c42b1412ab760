// internal/domain/card.go
package domain

import (
	"fmt"
	"time"

	"cardvault/internal/util"
)

// CardType classifies a saved card.
type CardType string

const (
	CardTypeCredit CardType = "CREDIT"
	CardTypeDebit  CardType = "DEBIT"
)

// CardRecord is the persisted, non-sensitive view of a tokenized card.
// The gateway token stands in for the PAN; the raw PAN and CVV never
// appear here.
type CardRecord struct {
	ID           int64     `db:"id" json:"id"`                     // Primary key, BIGSERIAL in DB
	OwnerID      string    `db:"owner_id" json:"owner_id"`         // Owning user, immutable
	GatewayToken string    `db:"gateway_token" json:"-"`           // Opaque gateway reference, never serialized outward
	Issuer       string    `db:"issuer" json:"issuer,omitempty"`   // Display metadata, gateway-supplied
	BankName     string    `db:"bank_name" json:"bank_name,omitempty"`
	Last4        string    `db:"last4" json:"last4"`               // Last four PAN digits, display only
	ExpiryMonth  int       `db:"expiry_month" json:"expiry_month"` // 1-12
	ExpiryYear   int       `db:"expiry_year" json:"expiry_year"`   // Four-digit
	HolderName   string    `db:"holder_name" json:"holder_name,omitempty"`
	CardType     CardType  `db:"card_type" json:"card_type"`
	IsPrimary    bool      `db:"is_primary" json:"is_primary"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"` // Server-assigned, immutable
}

// Expired reports whether the card's expiry month has fully elapsed at the
// given moment. Display aid only; the gateway is the authority on whether a
// token still charges.
func (c *CardRecord) Expired(now time.Time) bool {
	endOfExpiryMonth := time.Date(c.ExpiryYear, time.Month(c.ExpiryMonth), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return !now.Before(endOfExpiryMonth)
}

// CardInput carries raw card data on its way to the tokenization gateway.
// It is never persisted and must never be logged.
type CardInput struct {
	Number      string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
	HolderName  string
	CardType    CardType
}

// Validate checks the raw card data before any external call is made.
// All failures wrap util.ErrInvalidInput.
func (in *CardInput) Validate(now time.Time) error {
	if !luhnValid(in.Number) {
		return fmt.Errorf("%w: card number failed checksum", util.ErrInvalidInput)
	}
	if in.ExpiryMonth < 1 || in.ExpiryMonth > 12 {
		return fmt.Errorf("%w: expiry month must be between 1 and 12", util.ErrInvalidInput)
	}
	if in.ExpiryYear < 1000 || in.ExpiryYear > 9999 {
		return fmt.Errorf("%w: expiry year must be four digits", util.ErrInvalidInput)
	}
	endOfExpiryMonth := time.Date(in.ExpiryYear, time.Month(in.ExpiryMonth), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	if !now.Before(endOfExpiryMonth) {
		return fmt.Errorf("%w: card expiry date is in the past", util.ErrInvalidInput)
	}
	if !allDigits(in.CVV) || len(in.CVV) < 3 || len(in.CVV) > 4 {
		return fmt.Errorf("%w: CVV must be 3 or 4 digits", util.ErrInvalidInput)
	}
	if in.CardType != CardTypeCredit && in.CardType != CardTypeDebit {
		return fmt.Errorf("%w: card type must be CREDIT or DEBIT", util.ErrInvalidInput)
	}
	return nil
}

// Last4 returns the last four digits of the card number for display storage.
// Call only after Validate has accepted the input.
func (in *CardInput) Last4() string {
	if len(in.Number) < 4 {
		return in.Number
	}
	return in.Number[len(in.Number)-4:]
}

// NewCardRecord builds a CardRecord field-by-field from validated input and
// a successful tokenization result. The PAN and CVV are deliberately not
// copied anywhere.
func NewCardRecord(ownerID string, in CardInput, token, issuer, bankName string, primary bool) *CardRecord {
	return &CardRecord{
		OwnerID:      ownerID,
		GatewayToken: token,
		Issuer:       issuer,
		BankName:     bankName,
		Last4:        in.Last4(),
		ExpiryMonth:  in.ExpiryMonth,
		ExpiryYear:   in.ExpiryYear,
		HolderName:   in.HolderName,
		CardType:     in.CardType,
		IsPrimary:    primary,
		CreatedAt:    time.Now().UTC(),
	}
}

// luhnValid runs the standard Luhn checksum over a candidate card number.
func luhnValid(number string) bool {
	if len(number) < 12 || len(number) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		ch := number[i]
		if ch < '0' || ch > '9' {
			return false
		}
		d := int(ch - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
