package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billing/backend/internal/interfaces/http/dto"
)

// BodyLimit caps the request body at maxBytes. Declared lengths over the
// cap are rejected up front; chunked bodies are capped by a MaxBytesReader
// so handlers fail mid-read instead of buffering unbounded input.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
			))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
