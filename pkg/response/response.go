package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes data as a JSON body.
func OK(c *gin.Context, status int, data any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, data)
}

// Error writes a plain-text error body. Clients read the status code and a short message, never internals.
func Error(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	if message == "" {
		message = http.StatusText(status)
	}
	c.String(status, message)
}

// Abort writes a plain-text error and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	Error(c, status, message)
	c.Abort()
}

// Success is the body of operations that return no resource.
type Success struct {
	Success bool `json:"success"`
}
