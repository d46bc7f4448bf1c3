package user

import (
	"errors"
	"net/http"

	"novelhub/internal/api"
	"novelhub/internal/auth"
	"novelhub/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// Register godoc
// @Summary      Register new user
// @Description  Creates a reader account and returns access & refresh tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      user.RegisterRequest  true  "User registration data"
// @Success      201      {object}  user.LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	u, accessToken, refreshToken, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			api.Fail(c, http.StatusConflict, "Email already registered")
			return
		}
		logger.WithError(err).Error("register failed")
		api.Fail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *u,
	})
}

// Login godoc
// @Summary      Login user
// @Description  Authenticates user by email and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      user.LoginRequest  true  "User credentials"
// @Success      200      {object}  user.LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	u, accessToken, refreshToken, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.Fail(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		logger.WithError(err).Error("login failed")
		api.Fail(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *u,
	})
}

// GetMe godoc
// @Summary      Get current user
// @Description  Returns the authenticated user with coin balance and purchased chapters.
// @Tags         user
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  user.User
// @Failure      401  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	u, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			api.Fail(c, http.StatusNotFound, "User not found")
			return
		}
		logger.WithError(err).Error("load current user failed")
		api.Fail(c, http.StatusInternalServerError, "Failed to load user")
		return
	}

	c.JSON(http.StatusOK, u)
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Returns a new access token using a valid refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      user.RefreshRequest  true  "Refresh token payload"
// @Success      200      {object}  user.RefreshResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	accessToken, u, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			api.Fail(c, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrInvalidRefresh):
			api.Fail(c, http.StatusUnauthorized, "Invalid or expired refresh token")
		default:
			logger.WithError(err).Error("refresh failed")
			api.Fail(c, http.StatusInternalServerError, "Failed to refresh token")
		}
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{
		AccessToken: accessToken,
		User:        *u,
	})
}
