package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"marina-guard/backend/config"
	"marina-guard/backend/pkg/response"
)

// CORS answers cross-origin requests from the configured origins. A lone "*"
// admits any origin. Preflights from other origins are refused with 403 so the
// browser reports a policy failure instead of a bare network error.
func CORS(cfg config.CORSConfig, requestIDHeader string) gin.HandlerFunc {
	if requestIDHeader == "" {
		requestIDHeader = defaultRequestIDHeader
	}

	anyOrigin := false
	allowed := make(map[string]bool, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			anyOrigin = true
			continue
		}
		allowed[strings.ToLower(o)] = true
	}

	allowHeaders := strings.Join([]string{"Content-Type", "Authorization", requestIDHeader}, ", ")
	// downloads and rate-limit hints must be readable from the dashboard
	exposeHeaders := strings.Join([]string{
		"Content-Disposition", requestIDHeader,
		"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After",
	}, ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		c.Writer.Header().Add("Vary", "Origin")

		ok := anyOrigin || allowed[strings.ToLower(origin)]
		preflight := c.Request.Method == http.MethodOptions &&
			c.GetHeader("Access-Control-Request-Method") != ""

		if !ok {
			if preflight {
				response.Forbidden(c, 10003, "Origin not allowed")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if anyOrigin && !cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Origin", "*")
		} else {
			c.Header("Access-Control-Allow-Origin", origin)
		}
		if cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Expose-Headers", exposeHeaders)

		if preflight {
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", allowHeaders)
			if maxAge != "" {
				c.Header("Access-Control-Max-Age", maxAge)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
