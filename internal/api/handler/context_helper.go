package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"marina-guard/backend/pkg/jwt"
	"marina-guard/backend/pkg/response"
	"marina-guard/backend/pkg/validation"
)

// context keys set by middleware.JWTAuth
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxClaims = "claims"
)

// MustGetUserID reads the caller id injected by the JWT middleware.
// On false the 401 response has already been written.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "Unauthorized")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "Unauthorized")
		return "", false
	}
	return s, true
}

// MustGetClaims reads the parsed access token claims.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(CtxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "Unauthorized")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "Unauthorized")
		return nil, false
	}
	return claims, true
}

// bindJSON binds and validates the body, writing a 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(c, tooLarge.Limit)
			return false
		}
		response.BadRequest(c, 10001, validation.Message(err))
		return false
	}
	return true
}

// bindOptionalJSON like bindJSON but accepts an empty body
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, req)
}

// bindQuery binds and validates the query string, writing a 400 on failure
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.BadRequest(c, 10001, validation.Message(err))
		return false
	}
	return true
}

// sendFile writes a download response
func sendFile(c *gin.Context, data []byte, filename, contentType string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}
