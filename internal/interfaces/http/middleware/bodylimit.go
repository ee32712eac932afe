package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects bodies larger than maxBytes. Declared lengths are refused
// up front; chunked bodies fail while being read.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeRequestTooLarge, dto.MsgTooLarge))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
