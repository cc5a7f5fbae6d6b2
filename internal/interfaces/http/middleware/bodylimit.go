package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/backoffice/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects request bodies larger than maxBytes. Requests with a
// Content-Length over the limit are refused outright; chunked bodies are
// capped by MaxBytesReader so oversized reads fail inside the handler.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Request body too large", c.GetString(RequestIDKey)))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
