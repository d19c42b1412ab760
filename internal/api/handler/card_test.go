// internal/api/handler/card_test.go
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cardvault/internal/domain"
	"cardvault/internal/util"
)

// mockCardService is a mock implementation of service.CardService.
type mockCardService struct {
	mock.Mock
}

func (m *mockCardService) ListCards(ctx context.Context, ownerID string) ([]domain.CardRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CardRecord), args.Error(1)
}

func (m *mockCardService) AddCard(ctx context.Context, ownerID string, input domain.CardInput) (*domain.CardRecord, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardRecord), args.Error(1)
}

func (m *mockCardService) SetPrimary(ctx context.Context, ownerID string, cardID int64) error {
	args := m.Called(ctx, ownerID, cardID)
	return args.Error(0)
}

func (m *mockCardService) DeleteCard(ctx context.Context, ownerID string, cardID int64) error {
	args := m.Called(ctx, ownerID, cardID)
	return args.Error(0)
}

func (m *mockCardService) ResolveCard(ctx context.Context, ownerID string, cardID int64) (*domain.CardRecord, error) {
	args := m.Called(ctx, ownerID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardRecord), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// cardTestRouter mounts the card routes the same way the real router does.
func cardTestRouter(svc *mockCardService) http.Handler {
	h := NewCardHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Route("/cards", func(r chi.Router) {
		r.Get("/", h.ListCards)
		r.Post("/", h.AddCard)
		r.Put("/{cardID}/primary", h.SetPrimary)
		r.Delete("/{cardID}", h.DeleteCard)
	})
	return r
}

func TestListCardsHandler(t *testing.T) {
	t.Run("MissingOwnerHeaderIsUnauthorized", func(t *testing.T) {
		svc := new(mockCardService)
		svc.On("ListCards", mock.Anything, "").Return(nil, util.ErrNotAuthenticated).Once()

		req := httptest.NewRequest(http.MethodGet, "/cards/", nil)
		rec := httptest.NewRecorder()
		cardTestRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ReturnsCardsWithExpiryFlag", func(t *testing.T) {
		svc := new(mockCardService)
		svc.On("ListCards", mock.Anything, "user-1").Return([]domain.CardRecord{
			{ID: 1, OwnerID: "user-1", Last4: "1111", ExpiryMonth: 12, ExpiryYear: 2030, IsPrimary: true},
			{ID: 2, OwnerID: "user-1", Last4: "2222", ExpiryMonth: 1, ExpiryYear: 2020},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/cards/", nil)
		req.Header.Set(OwnerHeader, "user-1")
		rec := httptest.NewRecorder()
		cardTestRouter(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Cards []struct {
				ID        int64  `json:"id"`
				Last4     string `json:"last4"`
				IsPrimary bool   `json:"is_primary"`
				Expired   bool   `json:"expired"`
			} `json:"cards"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Cards, 2)
		assert.True(t, body.Cards[0].IsPrimary)
		assert.False(t, body.Cards[0].Expired)
		assert.True(t, body.Cards[1].Expired)

		// The gateway token never leaves the service boundary.
		assert.NotContains(t, rec.Body.String(), "gateway_token")
	})
}

func TestAddCardHandler(t *testing.T) {
	t.Run("CreatesCard", func(t *testing.T) {
		svc := new(mockCardService)
		svc.On("AddCard", mock.Anything, "user-1", mock.MatchedBy(func(in domain.CardInput) bool {
			return in.Number == "4111111111111111" && in.CVV == "123" && in.CardType == domain.CardTypeCredit
		})).Return(&domain.CardRecord{ID: 1, OwnerID: "user-1", Last4: "1111", IsPrimary: true}, nil).Once()

		payload := `{"number":"4111111111111111","expiry_month":12,"expiry_year":2030,"cvv":"123","holder_name":"A Holder","card_type":"CREDIT"}`
		req := httptest.NewRequest(http.MethodPost, "/cards/", strings.NewReader(payload))
		req.Header.Set(OwnerHeader, "user-1")
		rec := httptest.NewRecorder()
		cardTestRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"last4":"1111"`)
		svc.AssertExpectations(t)
	})

	t.Run("InvalidInputIsBadRequest", func(t *testing.T) {
		svc := new(mockCardService)
		svc.On("AddCard", mock.Anything, "user-1", mock.Anything).Return(nil, util.ErrInvalidInput).Once()

		req := httptest.NewRequest(http.MethodPost, "/cards/", strings.NewReader(`{"number":"123"}`))
		req.Header.Set(OwnerHeader, "user-1")
		rec := httptest.NewRecorder()
		cardTestRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("TokenizationFailureIsUnprocessable", func(t *testing.T) {
		svc := new(mockCardService)
		svc.On("AddCard", mock.Anything, "user-1", mock.Anything).Return(nil, util.ErrTokenizationFailed).Once()

		payload := `{"number":"4111111111111111","expiry_month":12,"expiry_year":2030,"cvv":"123","card_type":"CREDIT"}`
		req := httptest.NewRequest(http.MethodPost, "/cards/", strings.NewReader(payload))
		req.Header.Set(OwnerHeader, "user-1")
		rec := httptest.NewRecorder()
		cardTestRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestDeleteCardHandler(t *testing.T) {
	t.Run("PrimaryDeleteIsConflict", func(t *testing.T) {
		svc := new(mockCardService)
		svc.On("DeleteCard", mock.Anything, "user-1", int64(1)).Return(util.ErrCannotDeletePrimary).Once()

		req := httptest.NewRequest(http.MethodDelete, "/cards/1", nil)
		req.Header.Set(OwnerHeader, "user-1")
		rec := httptest.NewRecorder()
		cardTestRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "set another card as primary first")
	})

	t.Run("OnlyCardDeleteIsConflict", func(t *testing.T) {
		svc := new(mockCardService)
		svc.On("DeleteCard", mock.Anything, "user-1", int64(1)).Return(util.ErrCannotDeleteOnlyCard).Once()

		req := httptest.NewRequest(http.MethodDelete, "/cards/1", nil)
		req.Header.Set(OwnerHeader, "user-1")
		rec := httptest.NewRecorder()
		cardTestRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("UnknownCardIsNotFound", func(t *testing.T) {
		svc := new(mockCardService)
		svc.On("DeleteCard", mock.Anything, "user-1", int64(42)).Return(util.ErrCardNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/cards/42", nil)
		req.Header.Set(OwnerHeader, "user-1")
		rec := httptest.NewRecorder()
		cardTestRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("NonNumericIDIsBadRequest", func(t *testing.T) {
		svc := new(mockCardService)

		req := httptest.NewRequest(http.MethodDelete, "/cards/abc", nil)
		req.Header.Set(OwnerHeader, "user-1")
		rec := httptest.NewRecorder()
		cardTestRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "DeleteCard", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSetPrimaryHandler(t *testing.T) {
	svc := new(mockCardService)
	svc.On("SetPrimary", mock.Anything, "user-1", int64(2)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/cards/2/primary", nil)
	req.Header.Set(OwnerHeader, "user-1")
	rec := httptest.NewRecorder()
	cardTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
