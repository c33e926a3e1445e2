package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-booker/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error sends a JSON error response.
// AppErrors (including wrapped ones) keep their status code and message,
// anything else becomes 500 Internal Server Error.
func Error(c *gin.Context, err error) {
	c.JSON(apperror.StatusCode(err), ErrorResponse{Error: apperror.Message(err, "internal server error")})
}

// BadRequest sends a 400 response for input that failed binding.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
