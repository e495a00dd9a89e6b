package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marina-guard/backend/internal/model"
	"marina-guard/backend/pkg/jwt"
	"marina-guard/backend/pkg/response"
)

// Blacklist revoked access token ids
type Blacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

const blacklistCheckTimeout = 500 * time.Millisecond

// JWTAuth validates the Bearer access token and injects the caller.
// A nil blacklist skips revocation checks; a blacklist error fails open.
func JWTAuth(jwtMgr *jwt.Manager, blacklist Blacklist, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "Missing Authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, 10002, "Authorization header must be Bearer <token>")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token is invalid or expired")
			c.Abort()
			return
		}
		if claims.TokenType != jwt.TokenAccess {
			response.Unauthorized(c, 10002, "Token type is invalid")
			c.Abort()
			return
		}

		if blacklist != nil && claims.ID != "" {
			ctx, cancel := context.WithTimeout(c.Request.Context(), blacklistCheckTimeout)
			revoked, err := blacklist.IsBlacklisted(ctx, claims.ID)
			cancel()
			if err != nil {
				logger.Warn("blacklist check failed", zap.Error(err))
			} else if revoked {
				response.Unauthorized(c, 10002, "Token has been revoked")
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireRole rejects callers whose token role ranks below min. Services
// re-check against the stored role.
func RequireRole(min model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, 10002, "Unauthorized")
			c.Abort()
			return
		}

		s, _ := role.(string)
		if !model.Role(s).AtLeast(min) {
			response.Forbidden(c, 10003, "You do not have permission to perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}
