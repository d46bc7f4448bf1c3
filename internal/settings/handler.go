package settings

import (
	"net/http"

	"novelhub/internal/api"
	"novelhub/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Public site settings
// @Tags         settings
// @Produce      json
// @Success      200 {object} settings.PublicSettings
// @Failure      500 {object} api.ErrorResponse
// @Router       /settings [get]
func (h *Handler) GetPublic(c *gin.Context) {
	s, err := h.service.Current(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("load settings failed")
		api.Fail(c, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	c.JSON(http.StatusOK, PublicSettings{EnablePayments: s.EnablePayments})
}

// @Summary      Site settings
// @Tags         admin,settings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} settings.SiteSettings
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/settings [get]
func (h *Handler) Get(c *gin.Context) {
	s, err := h.service.Fresh(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("load settings failed")
		api.Fail(c, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	c.JSON(http.StatusOK, s)
}

// @Summary      Update site settings
// @Tags         admin,settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body settings.UpdateRequest true "Settings payload"
// @Success      200 {object} settings.SiteSettings
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/settings [put]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	s, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		logger.WithError(err).Error("update settings failed")
		api.Fail(c, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	c.JSON(http.StatusOK, s)
}
