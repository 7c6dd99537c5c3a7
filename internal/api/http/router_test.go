package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rentacar-backend/internal/config"
	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/security"
	"rentacar-backend/internal/service"
	"rentacar-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	handler http.Handler
	tokens  security.TokenManager
	rentals *MockRentalService
	auth    *MockAuthService
	users   *MockUserService
	docs    *MockDocumentService
	objects *MockObjectStorageService
}

func newTestAPI(t *testing.T, rl config.RateLimitConfig, mockStorage *storage.MockStorageService) *testAPI {
	t.Helper()
	api := &testAPI{
		tokens:  security.NewTokenManager("test-secret", time.Hour, 24*time.Hour),
		rentals: new(MockRentalService),
		auth:    new(MockAuthService),
		users:   new(MockUserService),
		docs:    new(MockDocumentService),
		objects: new(MockObjectStorageService),
	}
	api.handler = NewRouter(&Services{
		Rental:        api.rentals,
		Auth:          api.auth,
		User:          api.users,
		Document:      api.docs,
		ObjectStorage: api.objects,
	}, RouterOptions{
		Tokens:         api.tokens,
		RateLimit:      rl,
		MaxUploadBytes: 1 << 20,
		MockStorage:    mockStorage,
	})
	return api
}

func (api *testAPI) token(t *testing.T, userID int32, role string) string {
	t.Helper()
	tok, err := api.tokens.GenerateAccessToken(userID, "u@example.com", role)
	require.NoError(t, err)
	return tok
}

func (api *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "10.0.0.1:5555"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	return rec
}

func day(s string) time.Time {
	t, _ := time.Parse(domain.DateLayout, s)
	return t
}

func TestRouter_PublicAndUnknownRoutes(t *testing.T) {
	api := newTestAPI(t, config.RateLimitConfig{}, nil)

	rec := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Authentication(t *testing.T) {
	api := newTestAPI(t, config.RateLimitConfig{}, nil)

	rec := api.do(http.MethodGet, "/api/v1/rent/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/rent/1", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	refresh, err := api.tokens.GenerateRefreshToken(3, "u@example.com", "user")
	require.NoError(t, err)
	rec = api.do(http.MethodGet, "/api/v1/rent/1", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "refresh tokens are not accepted as access tokens")

	rec = api.do(http.MethodGet, "/api/v1/rent/requests", api.token(t, 3, "user"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	api.rentals.On("ListRentRequests", mock.Anything).Return([]domain.Rental{}, nil)
	rec = api.do(http.MethodGet, "/api/v1/rent/requests", api.token(t, 9, "admin"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRentHandler_Create(t *testing.T) {
	api := newTestAPI(t, config.RateLimitConfig{}, nil)
	renter := api.token(t, 3, "user")

	in := service.RentalInput{
		CarID: 7, UserID: 3,
		StartingDate: day("2025-03-01"), DueDate: day("2025-03-03"),
	}
	api.rentals.On("CreateRental", mock.Anything, in).Return(&domain.Rental{
		ID: 1, CarID: 7, UserID: 3, PricePerDayCents: 4500,
		StartingDate: in.StartingDate, DueDate: in.DueDate,
	}, nil).Once()

	rec := api.do(http.MethodPost, "/api/v1/rent", renter, map[string]any{
		"car_id": 7, "starting_date": "2025-03-01", "due_date": "2025-03-03",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got rentalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.RentalStatusPending, got.Status)
	assert.Equal(t, "2025-03-01", got.StartingDate)
	assert.Equal(t, int64(13500), got.EstimatedCostCent)

	t.Run("Conflict", func(t *testing.T) {
		api.rentals.On("CreateRental", mock.Anything, mock.Anything).Return(nil, service.ErrDateRangeConflict).Once()
		rec := api.do(http.MethodPost, "/api/v1/rent", renter, map[string]any{
			"car_id": 7, "starting_date": "2025-03-02", "due_date": "2025-03-04",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), service.ErrDateRangeConflict.Error())
	})

	t.Run("Bad date", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/v1/rent", renter, map[string]any{
			"car_id": 7, "starting_date": "03/01/2025", "due_date": "2025-03-04",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Renter cannot book for someone else", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/v1/rent", renter, map[string]any{
			"car_id": 7, "user_id": 4, "starting_date": "2025-03-02", "due_date": "2025-03-04",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRentHandler_AdmitUsesCaller(t *testing.T) {
	api := newTestAPI(t, config.RateLimitConfig{}, nil)
	accepted := time.Now()
	api.rentals.On("AdmitRentRequest", mock.Anything, int32(1), int32(9)).Return(&domain.Rental{
		ID: 1, AcceptedDate: &accepted, StartingDate: day("2025-03-01"), DueDate: day("2025-03-03"),
	}, nil).Once()
	api.rentals.On("AdmitRentRequest", mock.Anything, int32(2), int32(9)).Return(nil, service.ErrRentalNotFound).Once()

	rec := api.do(http.MethodPatch, "/api/v1/rent/requests/1/admit", api.token(t, 9, "admin"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"accepted"`)

	rec = api.do(http.MethodPatch, "/api/v1/rent/requests/2/admit", api.token(t, 9, "admin"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	api.rentals.AssertExpectations(t)
}

func TestRentHandler_QueriesAndErrors(t *testing.T) {
	api := newTestAPI(t, config.RateLimitConfig{}, nil)
	renter := api.token(t, 3, "user")

	admin := api.token(t, 9, "admin")

	api.rentals.On("FindRentsByStatus", mock.Anything, "bogus").Return(nil, service.ErrInvalidStatus)
	rec := api.do(http.MethodGet, "/api/v1/rent/status/bogus", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	api.rentals.On("GetUnavailableDates", mock.Anything, int32(7)).Return([]domain.DateRange{
		{Start: day("2025-03-01"), End: day("2025-03-03")},
	}, nil)
	rec = api.do(http.MethodGet, "/api/v1/cars/7/unavailable-dates", renter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"start":"2025-03-01","end":"2025-03-03"}]`, rec.Body.String())

	api.rentals.On("FindOne", mock.Anything, int32(5)).Return(nil, errors.New("connection reset"))
	rec = api.do(http.MethodGet, "/api/v1/rent/5", renter, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")

	api.rentals.On("FindOne", mock.Anything, int32(1)).Return(&domain.Rental{ID: 1, UserID: 3, StartingDate: day("2025-03-01"), DueDate: day("2025-03-03")}, nil)
	api.rentals.On("ExtendRental", mock.Anything, int32(1), day("2025-03-05")).Return(&domain.Rental{ID: 1, StartingDate: day("2025-03-01"), DueDate: day("2025-03-05")}, nil)
	rec = api.do(http.MethodPatch, "/api/v1/rent/1/extend", renter, map[string]string{"due_date": "2025-03-05"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"due_date":"2025-03-05"`)

	api.rentals.On("RemoveRental", mock.Anything, int32(1)).Return(nil)
	rec = api.do(http.MethodDelete, "/api/v1/rent/1", admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	api.rentals.On("ExportRentHistory", mock.Anything, mock.Anything).Return(nil)
	rec = api.do(http.MethodGet, "/api/v1/rent/history/export", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "rent-history.xlsx")
}

func TestRentHandler_UpdatePassesOnlySuppliedFields(t *testing.T) {
	api := newTestAPI(t, config.RateLimitConfig{}, nil)
	due := day("2025-03-09")
	api.rentals.On("FindOne", mock.Anything, int32(1)).Return(&domain.Rental{ID: 1, UserID: 3, StartingDate: day("2025-03-01"), DueDate: day("2025-03-03")}, nil)
	api.rentals.On("UpdateRental", mock.Anything, int32(1), mock.MatchedBy(func(u service.RentalUpdate) bool {
		return u.DueDate != nil && u.DueDate.Equal(due) && u.StartingDate == nil && u.CarID == nil
	})).Return(&domain.Rental{ID: 1, StartingDate: day("2025-03-01"), DueDate: due}, nil).Once()

	rec := api.do(http.MethodPatch, "/api/v1/rent/1", api.token(t, 3, "user"), map[string]string{"due_date": "2025-03-09"})
	assert.Equal(t, http.StatusOK, rec.Code)
	api.rentals.AssertExpectations(t)

	rec = api.do(http.MethodPatch, "/api/v1/rent/1", api.token(t, 3, "user"), map[string]string{"colour": "red"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")
}

func TestAuthRoutes_RateLimited(t *testing.T) {
	api := newTestAPI(t, config.RateLimitConfig{RPS: 0.001, Burst: 2}, nil)
	api.auth.On("Login", mock.Anything, "jane@example.com", "bad").Return(nil, "", "", service.ErrInvalidCredentials)

	body := map[string]string{"email": "jane@example.com", "password": "bad"}
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, api.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
}

func TestAuthRoutes_ChangePasswordUsesTokenEmail(t *testing.T) {
	api := newTestAPI(t, config.RateLimitConfig{}, nil)
	api.auth.On("ChangePassword", mock.Anything, "u@example.com", "Old!Pass1", "N3w!Password").Return(nil).Once()

	rec := api.do(http.MethodPost, "/api/v1/auth/change-password", api.token(t, 3, "user"), map[string]string{
		"current_password": "Old!Pass1", "new_password": "N3w!Password",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	api.auth.AssertExpectations(t)
}

func TestUserRoutes_SelfOrAdmin(t *testing.T) {
	api := newTestAPI(t, config.RateLimitConfig{}, nil)
	api.users.On("GetUser", mock.Anything, int32(3)).Return(&domain.User{ID: 3, FirstName: "Jane", Email: "jane@example.com"}, nil)

	rec := api.do(http.MethodGet, "/api/v1/users/3", api.token(t, 3, "user"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = api.do(http.MethodGet, "/api/v1/users/3", api.token(t, 4, "user"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/api/v1/users/3", api.token(t, 9, "admin"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMockStorageRoutes(t *testing.T) {
	store, err := storage.NewMockStorageService("http://localhost:8080", t.TempDir())
	require.NoError(t, err)
	api := newTestAPI(t, config.RateLimitConfig{}, store)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/upload/tok?key=cars/front.png", strings.NewReader("png-bytes"))
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/download/tok?key=cars/front.png", nil)
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	req = httptest.NewRequest(http.MethodPut, "/api/v1/upload/tok?key=../escape.txt", strings.NewReader("x"))
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		service.ErrRenterWrongRole:                        http.StatusBadRequest,
		service.ErrRentalNotApplicable:                    http.StatusBadRequest,
		service.ErrDateRangeConflict:                      http.StatusConflict,
		service.ErrCarNotFound:                            http.StatusNotFound,
		service.ErrInvalidCredentials:                     http.StatusUnauthorized,
		security.ErrWeakPassword:                          http.StatusBadRequest,
		errors.New("boom"):                                http.StatusInternalServerError,
		badRequest("missing %s", "field"):                 http.StatusBadRequest,
		fmt.Errorf("load: %w", service.ErrRentalNotFound): http.StatusNotFound,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}

func TestStorageHandler_TypeAllowed(t *testing.T) {
	open := NewStorageHandler(nil, nil, 1<<20, nil)
	assert.True(t, open.typeAllowed("application/zip"))

	h := NewStorageHandler(nil, nil, 1<<20, []string{"image/jpeg", "application/pdf"})
	assert.True(t, h.typeAllowed("image/jpeg"))
	assert.True(t, h.typeAllowed("Application/PDF; charset=binary"))
	assert.False(t, h.typeAllowed("text/html"))
}

func TestRentHandler_OwnerChecks(t *testing.T) {
	api := newTestAPI(t, config.RateLimitConfig{}, nil)
	owner := api.token(t, 3, "user")
	other := api.token(t, 5, "user")
	admin := api.token(t, 9, "admin")

	owned := &domain.Rental{ID: 42, CarID: 7, UserID: 3, PricePerDayCents: 4500, StartingDate: day("2025-03-01"), DueDate: day("2025-03-03")}
	api.rentals.On("FindOne", mock.Anything, int32(42)).Return(owned, nil)

	t.Run("Other renters see nothing", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/rent/42", other, nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodPatch, "/api/v1/rent/42", other, map[string]string{"due_date": "2025-03-04"}).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodPatch, "/api/v1/rent/42/extend", other, map[string]string{"due_date": "2025-03-04"}).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodPatch, "/api/v1/rent/42/cancel", other, nil).Code)
		assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/api/v1/rent/42", other, nil).Code)

		api.rentals.AssertNotCalled(t, "UpdateRental", mock.Anything, mock.Anything, mock.Anything)
		api.rentals.AssertNotCalled(t, "ExtendRental", mock.Anything, mock.Anything, mock.Anything)
		api.rentals.AssertNotCalled(t, "CancelRental", mock.Anything, mock.Anything)
		api.rentals.AssertNotCalled(t, "RemoveRental", mock.Anything, mock.Anything)
	})

	t.Run("Renter cannot reassign or reprice", func(t *testing.T) {
		for _, body := range []map[string]any{
			{"user_id": 5, "price_per_day_cents": 1},
			{"user_id": 5},
			{"price_per_day_cents": 1},
			{"admin_id": 9},
		} {
			rec := api.do(http.MethodPatch, "/api/v1/rent/42", other, body)
			assert.Equal(t, http.StatusForbidden, rec.Code, body)
			rec = api.do(http.MethodPatch, "/api/v1/rent/42", owner, body)
			assert.Equal(t, http.StatusForbidden, rec.Code, body)
		}
		api.rentals.AssertNotCalled(t, "UpdateRental", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Owner cancels own rental", func(t *testing.T) {
		cancelled := *owned
		cancelled.Rejected = true
		api.rentals.On("CancelRental", mock.Anything, int32(42)).Return(&cancelled, nil).Once()

		rec := api.do(http.MethodPatch, "/api/v1/rent/42/cancel", owner, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"rejected"`)
	})

	t.Run("Admin may reprice", func(t *testing.T) {
		api.rentals.On("UpdateRental", mock.Anything, int32(42), mock.MatchedBy(func(u service.RentalUpdate) bool {
			return u.PricePerDayCents != nil && *u.PricePerDayCents == 4000
		})).Return(owned, nil).Once()

		rec := api.do(http.MethodPatch, "/api/v1/rent/42", admin, map[string]any{"price_per_day_cents": 4000})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Per-user lists", func(t *testing.T) {
		api.rentals.On("FindByUser", mock.Anything, int32(3)).Return([]domain.Rental{*owned}, nil)
		api.rentals.On("GetUserRentHistory", mock.Anything, int32(3)).Return([]domain.Rental{*owned}, nil)

		assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/rent/user/3", other, nil).Code)
		assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/rent/user/3/history", other, nil).Code)
		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/rent/user/3", owner, nil).Code)
		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/rent/user/3/history", admin, nil).Code)
	})

	t.Run("Cross-user lists are admin only", func(t *testing.T) {
		for _, path := range []string{"/api/v1/rent", "/api/v1/rent/status/pending", "/api/v1/rent/active", "/api/v1/rent/car/7"} {
			assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, path, owner, nil).Code, path)
		}
	})
}

func TestStorageHandler_PresignedURLScopedToOwner(t *testing.T) {
	api := newTestAPI(t, config.RateLimitConfig{}, nil)
	owner := api.token(t, 3, "user")
	other := api.token(t, 5, "user")
	admin := api.token(t, 9, "admin")

	docKey := "documents/license-1700000000.pdf"
	api.docs.On("ListUserDocuments", mock.Anything, int32(3)).Return([]domain.Document{{ID: 1, UserID: 3, Src: docKey}}, nil)
	api.docs.On("ListUserDocuments", mock.Anything, int32(5)).Return([]domain.Document{}, nil)
	api.objects.On("PresignedURL", mock.Anything, docKey).Return(&service.UploadedObject{Key: docKey, URL: "https://s3/" + docKey}, nil)
	api.objects.On("PresignedURL", mock.Anything, "cars/front.jpg").Return(&service.UploadedObject{Key: "cars/front.jpg"}, nil)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/s3/url?key="+docKey, owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/s3/url?key="+docKey, other, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/s3/url?key="+docKey, admin, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/s3/url?key=cars/front.jpg", other, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/v1/s3/url?key=cars/../"+docKey, other, nil).Code)

	api.objects.AssertNumberOfCalls(t, "PresignedURL", 3)
}
