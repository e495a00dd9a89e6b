package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey           = "request_id"
	defaultRequestIDHeader = "X-Request-ID"
	requestIDMaxLen        = 64
)

// RequestID correlates a request with its log lines. An inbound id on header
// is kept when it is short and made of token characters, otherwise a uuid is
// minted. The id is echoed on the same header.
func RequestID(header string) gin.HandlerFunc {
	if header == "" {
		header = defaultRequestIDHeader
	}
	return func(c *gin.Context) {
		rid := c.GetHeader(header)
		if !validRequestID(rid) {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header(header, rid)

		c.Next()
	}
}

// GetRequestID id assigned by RequestID, empty outside it
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// ids end up in log fields and response headers
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > requestIDMaxLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		ch := rid[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.', ch == ':':
		default:
			return false
		}
	}
	return true
}
