package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PathID reads a UUID path parameter. On failure it writes a 400 and returns false.
func PathID(c *gin.Context, name, label string) (string, bool) {
	id := c.Param(name)
	if err := uuid.Validate(id); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid "+label+" ID")
		return "", false
	}
	return id, true
}

// Page reads limit/offset query parameters. limit defaults to def and is capped at max.
func Page(c *gin.Context, def, max int) (limit, offset int, ok bool) {
	limit, offset = def, 0

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			Fail(c, http.StatusBadRequest, "limit must be a positive integer")
			return 0, 0, false
		}
		limit = n
	}
	if limit > max {
		limit = max
	}

	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			Fail(c, http.StatusBadRequest, "offset must be a non-negative integer")
			return 0, 0, false
		}
		offset = n
	}

	return limit, offset, true
}
