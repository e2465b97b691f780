package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultUserID is the single-user deployment's user. Multi-tenancy is
// carried in the schema but not on the wire.
const DefaultUserID = uint(1)

// GetUserID returns the acting user for a request.
func GetUserID(c *gin.Context) uint {
	return DefaultUserID
}

// ErrorResponse is the standard error payload for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a standard success payload with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

func respondInternalError(c *gin.Context, err error) {
	log.Printf("internal error: %v", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
