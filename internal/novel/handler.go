package novel

import (
	"errors"
	"net/http"

	"novelhub/internal/api"
	"novelhub/internal/auth"
	"novelhub/internal/entitlement"
	"novelhub/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      List novels
// @Tags         novels
// @Produce      json
// @Param        limit  query int false "Page size" default(20)
// @Param        offset query int false "Offset"
// @Success      200 {array} novel.Novel
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /novels [get]
func (h *Handler) ListNovels(c *gin.Context) {
	limit, offset, ok := api.Page(c, defaultPageSize, maxPageSize)
	if !ok {
		return
	}

	novels, err := h.service.ListNovels(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err, "Failed to fetch novels")
		return
	}

	c.JSON(http.StatusOK, novels)
}

// @Summary      Get a novel
// @Tags         novels
// @Produce      json
// @Param        id path string true "Novel ID"
// @Success      200 {object} novel.Novel
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /novels/{id} [get]
func (h *Handler) GetNovel(c *gin.Context) {
	id, ok := api.PathID(c, "id", "novel")
	if !ok {
		return
	}

	n, err := h.service.GetNovel(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to fetch novel")
		return
	}

	c.JSON(http.StatusOK, n)
}

// @Summary      Table of contents
// @Description  Chapters of a novel with the lock state for the caller. Content is never included.
// @Tags         novels
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Novel ID"
// @Success      200 {array} novel.TOCEntry
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /novels/{id}/chapters [get]
func (h *Handler) ListChapters(c *gin.Context) {
	id, ok := api.PathID(c, "id", "novel")
	if !ok {
		return
	}

	userID, _ := auth.GetUserID(c)
	entries, err := h.service.TableOfContents(c.Request.Context(), id, userID)
	if err != nil {
		h.fail(c, err, "Failed to fetch chapters")
		return
	}

	c.JSON(http.StatusOK, entries)
}

// @Summary      Read a chapter
// @Description  Returns the chapter with its lock state. Content is omitted while locked.
// @Tags         chapters
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Chapter ID"
// @Success      200 {object} novel.ChapterView
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /chapters/{id} [get]
func (h *Handler) GetChapter(c *gin.Context) {
	id, ok := api.PathID(c, "id", "chapter")
	if !ok {
		return
	}

	userID, _ := auth.GetUserID(c)
	view, err := h.service.ReadChapter(c.Request.Context(), id, userID)
	if err != nil {
		h.fail(c, err, "Failed to fetch chapter")
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary      Create a novel
// @Tags         admin,novels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body novel.CreateNovelRequest true "Novel payload"
// @Success      201 {object} novel.Novel
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/novels [post]
func (h *Handler) CreateNovel(c *gin.Context) {
	var req CreateNovelRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	n, err := h.service.CreateNovel(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Failed to create novel")
		return
	}

	c.JSON(http.StatusCreated, n)
}

// @Summary      Replace a novel
// @Tags         admin,novels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Novel ID"
// @Param        request body novel.UpdateNovelRequest true "Novel payload"
// @Success      200 {object} novel.Novel
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/novels/{id} [put]
func (h *Handler) UpdateNovel(c *gin.Context) {
	id, ok := api.PathID(c, "id", "novel")
	if !ok {
		return
	}

	var req UpdateNovelRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	n, err := h.service.UpdateNovel(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "Failed to update novel")
		return
	}

	c.JSON(http.StatusOK, n)
}

// @Summary      Add a chapter
// @Tags         admin,chapters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Novel ID"
// @Param        request body novel.CreateChapterRequest true "Chapter payload"
// @Success      201 {object} novel.Chapter
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/novels/{id}/chapters [post]
func (h *Handler) CreateChapter(c *gin.Context) {
	novelID, ok := api.PathID(c, "id", "novel")
	if !ok {
		return
	}

	var req CreateChapterRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	ch, err := h.service.CreateChapter(c.Request.Context(), novelID, req)
	if err != nil {
		h.fail(c, err, "Failed to create chapter")
		return
	}

	c.JSON(http.StatusCreated, ch)
}

// @Summary      Replace a chapter
// @Tags         admin,chapters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Chapter ID"
// @Param        request body novel.UpdateChapterRequest true "Chapter payload"
// @Success      200 {object} novel.Chapter
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/chapters/{id} [put]
func (h *Handler) UpdateChapter(c *gin.Context) {
	id, ok := api.PathID(c, "id", "chapter")
	if !ok {
		return
	}

	var req UpdateChapterRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	ch, err := h.service.UpdateChapter(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "Failed to update chapter")
		return
	}

	c.JSON(http.StatusOK, ch)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrNovelNotFound):
		api.Fail(c, http.StatusNotFound, "Novel not found")
	case errors.Is(err, ErrChapterNotFound):
		api.Fail(c, http.StatusNotFound, "Chapter not found")
	case errors.Is(err, ErrChapterNumberTaken):
		api.Fail(c, http.StatusConflict, "Chapter number already exists")
	case errors.Is(err, entitlement.ErrInvalidInput):
		api.Fail(c, http.StatusBadRequest, err.Error())
	default:
		logger.WithError(err).WithField("path", c.FullPath()).Error(msg)
		api.Fail(c, http.StatusInternalServerError, msg)
	}
}
