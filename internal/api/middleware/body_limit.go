package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marina-guard/backend/pkg/response"
)

const defaultMaxBodyBytes int64 = 1 << 20

// BodyLimit caps request bodies at maxBytes, 1 MiB when unset. Declared
// lengths are refused up front; chunked bodies fail at read time and the
// handler's bind reports 413.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.TooLarge(c, maxBytes)
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
