package wallet

import (
	"errors"
	"net/http"

	"novelhub/internal/api"
	"novelhub/internal/auth"
	"novelhub/internal/entitlement"
	"novelhub/internal/logger"
	"novelhub/internal/novel"
	"novelhub/internal/user"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Purchase a chapter
// @Description  Debits the effective price and unlocks the chapter. Buying an owned or free chapter succeeds without a charge.
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Param        chapterId path string true "Chapter ID"
// @Success      200 {object} wallet.PurchaseResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      429 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /users/purchase/{chapterId} [post]
func (h *Handler) Purchase(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	chapterID, ok := api.PathID(c, "chapterId", "chapter")
	if !ok {
		return
	}

	res, err := h.service.Purchase(c.Request.Context(), userID, chapterID)
	if err != nil {
		h.fail(c, err, "Purchase failed")
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary      Add coins
// @Description  Mocked top-up: credits the wallet without a payment provider.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body wallet.AddCoinsRequest true "Top-up amount"
// @Success      200 {object} wallet.AddCoinsResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /users/add-coins [post]
func (h *Handler) AddCoins(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	var req AddCoinsRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	res, err := h.service.AddCoins(c.Request.Context(), userID, req.Amount)
	if err != nil {
		h.fail(c, err, "Failed to add coins")
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary      Transaction history
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query int false "Page size" default(50)
// @Param        offset query int false "Offset"
// @Success      200 {array} wallet.Transaction
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /users/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Unauthorized(c)
		return
	}

	limit, offset, ok := api.Page(c, defaultHistoryLimit, maxHistoryLimit)
	if !ok {
		return
	}

	txs, err := h.service.ListTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.fail(c, err, "Failed to load transactions")
		return
	}

	c.JSON(http.StatusOK, txs)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		api.Fail(c, http.StatusBadRequest, "Insufficient coins")
	case errors.Is(err, ErrInvalidAmount):
		api.Fail(c, http.StatusBadRequest, ErrInvalidAmount.Error())
	case errors.Is(err, entitlement.ErrInvalidInput):
		api.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, novel.ErrChapterNotFound):
		api.Fail(c, http.StatusNotFound, "Chapter not found")
	case errors.Is(err, novel.ErrNovelNotFound):
		api.Fail(c, http.StatusNotFound, "Novel not found")
	case errors.Is(err, user.ErrUserNotFound):
		api.Fail(c, http.StatusNotFound, "User not found")
	default:
		logger.WithError(err).WithField("path", c.FullPath()).Error(msg)
		api.Fail(c, http.StatusInternalServerError, msg)
	}
}
