package wallet

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"novelhub/internal/auth"
	"novelhub/internal/novel"
	"novelhub/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret"
	chapterUUID = "0b9e5a3c-8f21-4c6a-b0d4-7e2a1f9c3b22"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Purchase(ctx context.Context, userID, chapterID string) (*PurchaseResult, error) {
	args := m.Called(ctx, userID, chapterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PurchaseResult), args.Error(1)
}

func (m *MockService) AddCoins(ctx context.Context, userID string, amount int64) (*AddCoinsResult, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AddCoinsResult), args.Error(1)
}

func (m *MockService) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Transaction), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	r := gin.New()
	users := r.Group("/users", auth.AuthMiddleware(testSecret))
	users.POST("/purchase/:chapterId", h.Purchase)
	users.POST("/add-coins", h.AddCoins)
	users.GET("/transactions", h.ListTransactions)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateAccessToken("u1", "ann@example.com", user.RoleUser, testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Purchase(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Purchase", mock.Anything, "u1", chapterUUID).
			Return(&PurchaseResult{Success: true, Coins: 90, AmountCharged: 10, PurchasedChapters: []string{chapterUUID}}, nil)

		w := do(t, setupRouter(svc), http.MethodPost, "/users/purchase/"+chapterUUID, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"coins":90,"amount_charged":10,"purchased_chapters":["`+chapterUUID+`"]}`, w.Body.String())
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"insufficient coins", ErrInsufficientFunds, http.StatusBadRequest, `{"msg":"Insufficient coins"}`},
		{"chapter missing", novel.ErrChapterNotFound, http.StatusNotFound, `{"msg":"Chapter not found"}`},
		{"novel missing", novel.ErrNovelNotFound, http.StatusNotFound, `{"msg":"Novel not found"}`},
		{"user missing", user.ErrUserNotFound, http.StatusNotFound, `{"msg":"User not found"}`},
		{"storage", assert.AnError, http.StatusInternalServerError, `{"msg":"Purchase failed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Purchase", mock.Anything, "u1", chapterUUID).Return(nil, tt.err)

			w := do(t, setupRouter(svc), http.MethodPost, "/users/purchase/"+chapterUUID, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupRouter(new(MockService)).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users/purchase/"+chapterUUID, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed chapter id", func(t *testing.T) {
		svc := new(MockService)
		w := do(t, setupRouter(svc), http.MethodPost, "/users/purchase/42", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Purchase", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_AddCoins(t *testing.T) {
	svc := new(MockService)
	svc.On("AddCoins", mock.Anything, "u1", int64(250)).Return(&AddCoinsResult{Coins: 250}, nil)
	r := setupRouter(svc)

	w := do(t, r, http.MethodPost, "/users/add-coins", `{"amount":250}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"coins":250`)

	for _, body := range []string{`{"amount":0}`, `{"amount":-5}`, `{"amount":100001}`, `{}`, `nope`} {
		w := do(t, r, http.MethodPost, "/users/add-coins", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	svc.AssertNumberOfCalls(t, "AddCoins", 1)
}

func TestHandler_ListTransactions(t *testing.T) {
	svc := new(MockService)
	svc.On("ListTransactions", mock.Anything, "u1", defaultHistoryLimit, 0).Return([]Transaction{{ID: "t1"}}, nil)
	svc.On("ListTransactions", mock.Anything, "u1", maxHistoryLimit, 10).Return([]Transaction{}, nil)
	r := setupRouter(svc)

	w := do(t, r, http.MethodGet, "/users/transactions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"t1"`)

	w = do(t, r, http.MethodGet, "/users/transactions?limit=1000&offset=10", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = do(t, r, http.MethodGet, "/users/transactions?offset=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
