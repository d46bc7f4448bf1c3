package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"novelhub/internal/auth"
	"novelhub/internal/entitlement"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockService) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockService) GetByID(ctx context.Context, userID string) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*User), args.Error(2)
}

func (m *MockService) LookupRequester(ctx context.Context, userID string) (entitlement.Requester, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entitlement.Requester), args.Error(1)
}

func (m *MockService) EnsureAdmin(ctx context.Context, email, password string) (*User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.RefreshToken)
	r.GET("/me", auth.AuthMiddleware("test-secret"), h.GetMe)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*MockService)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"name":"Ann","email":"ann@example.com","password":"password123"}`,
			setup: func(m *MockService) {
				m.On("Register", mock.Anything, RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "password123"}).
					Return(&User{ID: "u1", Email: "ann@example.com", PurchasedChapters: []string{}}, "at", "rt", nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "short password",
			body:       `{"name":"Ann","email":"ann@example.com","password":"short"}`,
			setup:      func(*MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad email",
			body:       `{"name":"Ann","email":"nope","password":"password123"}`,
			setup:      func(*MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			body: `{"name":"Ann","email":"ann@example.com","password":"password123"}`,
			setup: func(m *MockService) {
				m.On("Register", mock.Anything, mock.Anything).Return(nil, "", "", ErrEmailExists)
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setup(svc)

			w := postJSON(setupRouter(svc), "/auth/register", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Login(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, LoginRequest{Email: "ann@example.com", Password: "password123"}).
		Return(&User{ID: "u1", Coins: 12}, "at", "rt", nil)
	svc.On("Login", mock.Anything, LoginRequest{Email: "ann@example.com", Password: "wrong"}).
		Return(nil, "", "", ErrInvalidCredentials)
	r := setupRouter(svc)

	w := postJSON(r, "/auth/login", `{"email":"ann@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "at", resp.AccessToken)
	assert.Equal(t, int64(12), resp.User.Coins)
	assert.NotContains(t, w.Body.String(), "password_hash")

	w = postJSON(r, "/auth/login", `{"email":"ann@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"msg":"Invalid email or password"}`, w.Body.String())
}

func TestHandler_RefreshToken(t *testing.T) {
	svc := new(MockService)
	svc.On("RefreshToken", mock.Anything, "good").Return("new-at", &User{ID: "u1"}, nil)
	svc.On("RefreshToken", mock.Anything, "bad").Return("", nil, ErrInvalidRefresh)
	svc.On("RefreshToken", mock.Anything, "orphan").Return("", nil, ErrUserNotFound)
	r := setupRouter(svc)

	w := postJSON(r, "/auth/refresh", `{"refresh_token":"good"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "new-at")

	assert.Equal(t, http.StatusUnauthorized, postJSON(r, "/auth/refresh", `{"refresh_token":"bad"}`).Code)
	assert.Equal(t, http.StatusNotFound, postJSON(r, "/auth/refresh", `{"refresh_token":"orphan"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(r, "/auth/refresh", `{}`).Code)
}

func TestHandler_GetMe(t *testing.T) {
	token, err := auth.GenerateAccessToken("u1", "ann@example.com", RoleUser, "test-secret")
	require.NoError(t, err)

	t.Run("returns balance and owned chapters", func(t *testing.T) {
		svc := new(MockService)
		svc.On("GetByID", mock.Anything, "u1").Return(&User{ID: "u1", Coins: 70, PurchasedChapters: []string{"c1"}}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		setupRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"coins":70`)
		assert.Contains(t, w.Body.String(), `"purchased_chapters":["c1"]`)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := new(MockService)
		svc.On("GetByID", mock.Anything, "u1").Return(nil, errors.New("timeout"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("no token", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupRouter(new(MockService)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
