// Package response writes the uniform {success, data|error} envelope.
package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"aecofarm-backend/internal/platform/apperr"
	"aecofarm-backend/internal/platform/requestid"
)

type Envelope struct {
	Success bool             `json:"success"`
	Data    any              `json:"data,omitempty"`
	Error   *apperr.APIError `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func OK(c *gin.Context, data any) {
	Success(c, http.StatusOK, data)
}

// Failure converts err to an APIError and writes it with the mapped status.
func Failure(c *gin.Context, err error) {
	api := apperr.From(err)
	status := apperr.ToHTTPStatus(api)
	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR] %s %s request_id=%s: %v", c.Request.Method, c.FullPath(), requestid.Get(c), err)
	}
	c.JSON(status, Envelope{Success: false, Error: api})
}

// Abort is Failure for middleware: the handler chain stops after writing.
func Abort(c *gin.Context, err error) {
	Failure(c, err)
	c.Abort()
}
