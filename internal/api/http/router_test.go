package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	api "rentdesk-backend/internal/api/http"
	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/security"
	"rentdesk-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "http-test-secret"

type fixture struct {
	booking *MockBookingService
	items   *MockItemService
	clients *MockClientService
	router  http.Handler
	token   string
}

func newFixture(t *testing.T, ping func(ctx context.Context) error) *fixture {
	tm := security.NewTokenManager(testSecret)
	token, err := tm.GenerateAccessToken("op-1", "desk@example.com", nil, time.Hour)
	require.NoError(t, err)

	f := &fixture{
		booking: new(MockBookingService),
		items:   new(MockItemService),
		clients: new(MockClientService),
		token:   token,
	}
	h := api.NewHandler(api.Services{
		Booking: f.booking,
		Items:   f.items,
		Clients: f.clients,
	}, tm, ping)
	f.router = h.Routes()
	return f
}

func (f *fixture) do(method, path, body string, auth bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_Auth(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("MissingToken", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/v1/rentals", "", false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		f.booking.AssertNotCalled(t, "ListRentals", mock.Anything)
	})

	t.Run("PublicCatalog", func(t *testing.T) {
		f.items.On("ListPublicCatalog", mock.Anything).Return(nil, nil).Once()

		rec := f.do(http.MethodGet, "/api/v1/catalog", "", false)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestHealthCheck(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		f := newFixture(t, func(ctx context.Context) error { return nil })
		rec := f.do(http.MethodGet, "/healthz", "", false)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("DatabaseDown", func(t *testing.T) {
		f := newFixture(t, func(ctx context.Context) error { return errors.New("refused") })
		rec := f.do(http.MethodGet, "/healthz", "", false)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestCommitRental(t *testing.T) {
	body := `{"item_ids":["X"],"client_id":"c1","start_date":"2024-01-01T10:00:00Z","end_date":"2024-01-03T10:00:00Z","rent_amount_cents":1500}`
	want := service.RentalInput{
		ItemIDs:         []string{"X"},
		ClientID:        "c1",
		Start:           time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		End:             time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC),
		RentAmountCents: 1500,
	}

	t.Run("Created", func(t *testing.T) {
		f := newFixture(t, nil)
		f.booking.On("CommitRental", mock.Anything, mock.MatchedBy(func(in service.RentalInput) bool {
			return in.ClientID == want.ClientID && in.Start.Equal(want.Start) && in.End.Equal(want.End) &&
				in.RentAmountCents == want.RentAmountCents && len(in.ItemIDs) == 1
		})).Return(&domain.Rental{ID: "r1", ReceiptNo: "RNT-20240101-110000", Days: 2}, nil)

		rec := f.do(http.MethodPost, "/api/v1/rentals", body, true)
		require.Equal(t, http.StatusCreated, rec.Code)

		var got domain.Rental
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "r1", got.ID)
		assert.Equal(t, int32(2), got.Days)
	})

	t.Run("ConflictListsItems", func(t *testing.T) {
		f := newFixture(t, nil)
		f.booking.On("CommitRental", mock.Anything, mock.Anything).Return(nil, &domain.ConflictError{ItemIDs: []string{"X"}})

		rec := f.do(http.MethodPost, "/api/v1/rentals", body, true)
		assert.Equal(t, http.StatusConflict, rec.Code)

		var got struct {
			Error   string   `json:"error"`
			ItemIDs []string `json:"item_ids"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, []string{"X"}, got.ItemIDs)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		f := newFixture(t, nil)
		rec := f.do(http.MethodPost, "/api/v1/rentals", `{"item_ids":`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"NotFound", domain.ErrNotFound, http.StatusNotFound},
		{"Validation", &domain.ValidationError{Field: "item_ids", Reason: "is required"}, http.StatusBadRequest},
		{"InvalidRange", &domain.InvalidRangeError{}, http.StatusBadRequest},
		{"Store", &domain.StoreError{Op: "rentals.get", Err: errors.New("boom")}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.booking.On("GetRental", mock.Anything, "r1").Return(nil, tc.err)

			rec := f.do(http.MethodGet, "/api/v1/rentals/r1", "", true)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestDeleteClient_HasRentals(t *testing.T) {
	f := newFixture(t, nil)
	f.clients.On("DeleteClient", mock.Anything, "c1").Return(domain.ErrClientHasRentals)

	rec := f.do(http.MethodDelete, "/api/v1/clients/c1", "", true)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFindAvailableItems(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("BadTimestamp", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/v1/availability?start=yesterday&end=2024-01-03T10:00:00Z", "", true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)
		f.booking.On("FindAvailableItems", mock.Anything, mock.MatchedBy(start.Equal), mock.MatchedBy(end.Equal)).
			Return([]domain.Item{{ID: "Y", Name: "Tripod", Status: domain.ItemStatusWorking}}, nil)

		rec := f.do(http.MethodGet, "/api/v1/availability?start=2024-01-01T10:00:00Z&end=2024-01-03T10:00:00Z", "", true)
		require.Equal(t, http.StatusOK, rec.Code)

		var items []domain.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		require.Len(t, items, 1)
		assert.Equal(t, "Y", items[0].ID)
	})
}

func TestCompleteAndReturnRental(t *testing.T) {
	f := newFixture(t, nil)
	f.booking.On("CompleteRental", mock.Anything, "r1", "all good").Return(nil)
	f.booking.On("CompleteRental", mock.Anything, "r2", "").Return(nil)
	f.booking.On("ReturnRental", mock.Anything, "r1", []string{"X"}).Return(nil)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/v1/rentals/r1/complete", `{"notes":"all good"}`, true).Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/v1/rentals/r2/complete", "", true).Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/v1/rentals/r1/return", `{"item_ids":["X"]}`, true).Code)
	f.booking.AssertExpectations(t)
}

func TestCompleteRental_UnknownLengthBody(t *testing.T) {
	f := newFixture(t, nil)
	f.booking.On("CompleteRental", mock.Anything, "r1", "").Return(nil)
	f.booking.On("CompleteRental", mock.Anything, "r2", "late").Return(nil)

	send := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Body = io.NopCloser(strings.NewReader(body))
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		req.Header.Set("Authorization", "Bearer "+f.token)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send("/api/v1/rentals/r1/complete", "").Code)
	assert.Equal(t, http.StatusNoContent, send("/api/v1/rentals/r2/complete", `{"notes":"late"}`).Code)
	assert.Equal(t, http.StatusBadRequest, send("/api/v1/rentals/r3/complete", `{"notes":`).Code)
	f.booking.AssertExpectations(t)
	f.booking.AssertNotCalled(t, "CompleteRental", mock.Anything, "r3", mock.Anything)
}

func TestUpdateItemStatus(t *testing.T) {
	f := newFixture(t, nil)
	f.items.On("UpdateItemStatus", mock.Anything, "X", domain.ItemStatusDamage).
		Return(&domain.Item{ID: "X", Status: domain.ItemStatusDamage}, nil)

	rec := f.do(http.MethodPatch, "/api/v1/items/X/status", `{"status":"damage"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"damage"`)
}
