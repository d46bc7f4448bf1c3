package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Msg string `json:"msg" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// Fail writes an ErrorResponse with the given status.
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Msg: msg})
}

func Unauthorized(c *gin.Context) {
	Fail(c, http.StatusUnauthorized, "User not authenticated")
}
