package handler

import (
	"net/http"
	"net/url"
	"strings"

	"invoice-dashboard-backend/internal/auth"
	"invoice-dashboard-backend/internal/services/authentication"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service  *authentication.Service
	sessions *auth.SessionManager
	cookie   CookieConfig
	home     string
}

func NewAuthHandler(s *authentication.Service, sessions *auth.SessionManager, cookie CookieConfig, home string) *AuthHandler {
	return &AuthHandler{service: s, sessions: sessions, cookie: cookie, home: home}
}

type loginForm struct {
	auth.Credentials
	RedirectTo string `form:"redirectTo"`
	PrevState  string `form:"prevState"`
}

// Home is the public landing page.
func (h *AuthHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":   "Acme",
		"message": "Welcome to Acme.",
		"login":   "/login",
	})
}

// LoginPage describes the login form; callbackUrl is echoed back so the
// client can submit it as redirectTo.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":       "Login",
		"fields":      []string{"email", "password"},
		"callbackUrl": c.Query("callbackUrl"),
	})
}

// Login runs the credential action. On success the session cookie is set
// and the browser is sent on; otherwise the form gets the message back.
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := h.service.Authenticate(c.Request.Context(), form.PrevState, form.Credentials)
	if err != nil {
		httpLogger().ErrorContext(c.Request.Context(), "authentication failed",
			"operation", "login",
			"outcome", "failure",
			"request_id", c.GetString(ctxKeyRequestID),
			"error", err.Error(),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if result.Session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"errorMessage": result.Message})
		return
	}

	h.cookie.set(c, result.Session)
	c.Redirect(http.StatusSeeOther, safeRedirect(form.RedirectTo, h.home))
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if s, ok := currentSession(c); ok {
		if err := h.sessions.Revoke(c.Request.Context(), s); err != nil {
			httpLogger().ErrorContext(c.Request.Context(), "session revoke failed",
				"operation", "logout",
				"outcome", "failure",
				"request_id", c.GetString(ctxKeyRequestID),
				"error", err.Error(),
			)
		}
	}
	h.cookie.clear(c)
	c.Redirect(http.StatusSeeOther, "/")
}

// safeRedirect only follows local absolute paths. Targets carrying
// control bytes are refused.
func safeRedirect(target, fallback string) string {
	if strings.ContainsFunc(target, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return fallback
	}
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	return target
}
