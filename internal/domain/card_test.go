// internal/domain/card_test.go
package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cardvault/internal/util"
)

// Fixed clock so expiry checks do not depend on when the tests run.
var testNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func validInput() CardInput {
	return CardInput{
		Number:      "4111111111111111",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		CVV:         "123",
		HolderName:  "A Holder",
		CardType:    CardTypeCredit,
	}
}

func TestCardInputValidate(t *testing.T) {
	t.Run("ValidInput", func(t *testing.T) {
		in := validInput()
		assert.NoError(t, in.Validate(testNow))
	})

	t.Run("FailedChecksum", func(t *testing.T) {
		in := validInput()
		in.Number = "4111111111111112"
		err := in.Validate(testNow)
		assert.ErrorIs(t, err, util.ErrInvalidInput)
	})

	t.Run("NonDigitNumber", func(t *testing.T) {
		in := validInput()
		in.Number = "4111x11111111111"
		assert.ErrorIs(t, in.Validate(testNow), util.ErrInvalidInput)
	})

	t.Run("NumberTooShort", func(t *testing.T) {
		in := validInput()
		in.Number = "41111111"
		assert.ErrorIs(t, in.Validate(testNow), util.ErrInvalidInput)
	})

	t.Run("MonthOutOfRange", func(t *testing.T) {
		for _, month := range []int{0, 13, -1} {
			in := validInput()
			in.ExpiryMonth = month
			assert.ErrorIs(t, in.Validate(testNow), util.ErrInvalidInput)
		}
	})

	t.Run("ExpiryInThePast", func(t *testing.T) {
		in := validInput()
		in.ExpiryMonth = 5
		in.ExpiryYear = 2026
		assert.ErrorIs(t, in.Validate(testNow), util.ErrInvalidInput)
	})

	t.Run("ExpiryInCurrentMonthStillValid", func(t *testing.T) {
		// A card expiring 06/2026 remains usable through the end of June.
		in := validInput()
		in.ExpiryMonth = 6
		in.ExpiryYear = 2026
		assert.NoError(t, in.Validate(testNow))
	})

	t.Run("CVVWrongLength", func(t *testing.T) {
		for _, cvv := range []string{"", "12", "12345"} {
			in := validInput()
			in.CVV = cvv
			assert.ErrorIs(t, in.Validate(testNow), util.ErrInvalidInput)
		}
	})

	t.Run("CVVNonNumeric", func(t *testing.T) {
		in := validInput()
		in.CVV = "12a"
		assert.ErrorIs(t, in.Validate(testNow), util.ErrInvalidInput)
	})

	t.Run("FourDigitCVV", func(t *testing.T) {
		in := validInput()
		in.CVV = "1234"
		assert.NoError(t, in.Validate(testNow))
	})

	t.Run("UnknownCardType", func(t *testing.T) {
		in := validInput()
		in.CardType = CardType("PREPAID")
		assert.ErrorIs(t, in.Validate(testNow), util.ErrInvalidInput)
	})

	t.Run("DebitCardType", func(t *testing.T) {
		in := validInput()
		in.CardType = CardTypeDebit
		assert.NoError(t, in.Validate(testNow))
	})
}

func TestCardInputLast4(t *testing.T) {
	in := validInput()
	assert.Equal(t, "1111", in.Last4())
}

func TestNewCardRecordCarriesNoSensitiveData(t *testing.T) {
	in := validInput()
	card := NewCardRecord("user-1", in, "tok_abc", "VISA", "Test Bank", true)

	assert.Equal(t, "user-1", card.OwnerID)
	assert.Equal(t, "tok_abc", card.GatewayToken)
	assert.Equal(t, "1111", card.Last4)
	assert.Equal(t, "VISA", card.Issuer)
	assert.True(t, card.IsPrimary)
	assert.False(t, card.CreatedAt.IsZero())

	// The record has no field holding the PAN or CVV; the only digits kept
	// from the number are the last four.
	assert.NotContains(t, card.GatewayToken, in.Number)
	assert.NotEqual(t, in.Number, card.Last4)
}

func TestCardRecordExpired(t *testing.T) {
	card := CardRecord{ExpiryMonth: 6, ExpiryYear: 2026}
	assert.False(t, card.Expired(testNow))

	past := CardRecord{ExpiryMonth: 5, ExpiryYear: 2026}
	assert.True(t, past.Expired(testNow))

	future := CardRecord{ExpiryMonth: 12, ExpiryYear: 2030}
	assert.False(t, future.Expired(testNow))
}
