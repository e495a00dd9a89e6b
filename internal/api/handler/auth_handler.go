package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/service"
	"marina-guard/backend/pkg/response"
)

const refreshCookieName = "refresh_token"

// CookieConfig refresh token cookie settings
type CookieConfig struct {
	Path     string
	Secure   bool
	MaxAge   time.Duration
	SameSite http.SameSite
}

func defaultCookieConfig() *CookieConfig {
	return &CookieConfig{
		Path:     "/api/v1/auth",
		MaxAge:   7 * 24 * time.Hour,
		SameSite: http.SameSiteStrictMode,
	}
}

// AuthHandler authentication endpoints
type AuthHandler struct {
	authSvc service.AuthService
	cookie  *CookieConfig
}

// NewAuthHandler creates an AuthHandler; nil cookie uses defaults
func NewAuthHandler(authSvc service.AuthService, cookie *CookieConfig) *AuthHandler {
	if cookie == nil {
		cookie = defaultCookieConfig()
	}
	return &AuthHandler{authSvc: authSvc, cookie: cookie}
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// RefreshToken POST /api/v1/auth/refresh
// The token comes from the JSON body or the refresh_token cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token := h.refreshTokenFrom(c)
	if token == "" {
		response.BadRequest(c, 10001, "refresh_token is required")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), token)
	if err != nil {
		h.clearRefreshCookie(c)
		response.FromError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.OK(c, result)
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims, h.refreshTokenFrom(c)); err != nil {
		response.FromError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	response.OK(c, nil)
}

// GetCurrentUser GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, user)
}

// ChangePassword PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// refreshTokenFrom body first, then cookie. An empty or non-JSON body is fine.
func (h *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	var req dto.RefreshTokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
			return req.RefreshToken
		}
	}
	if v, err := c.Cookie(refreshCookieName); err == nil {
		return v
	}
	return ""
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(h.cookie.SameSite)
	c.SetCookie(refreshCookieName, token, int(h.cookie.MaxAge.Seconds()), h.cookie.Path, "", h.cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(h.cookie.SameSite)
	c.SetCookie(refreshCookieName, "", -1, h.cookie.Path, "", h.cookie.Secure, true)
}
