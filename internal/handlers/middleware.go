package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"invoice-dashboard-backend/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxKeyRequestID = "request_id"
	ctxKeySession   = "session"
)

func httpLogger() *slog.Logger {
	return slog.Default().With("module", "http")
}

// RequestID propagates X-Request-Id, generating one when the client sent none.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)
		c.Set(ctxKeyRequestID, reqID)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		outcome := "success"
		if status >= 400 {
			outcome = "failure"
		}
		fields := []any{
			"operation", "http_request",
			"outcome", outcome,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(ctxKeyRequestID),
		}
		ctx := c.Request.Context()
		switch {
		case status >= 500:
			httpLogger().ErrorContext(ctx, "http request completed", fields...)
		case status >= 400:
			httpLogger().WarnContext(ctx, "http request completed", fields...)
		default:
			httpLogger().InfoContext(ctx, "http request completed", fields...)
		}
	}
}

// LoadSession resolves the session cookie into the request. A bad, expired
// or revoked cookie is cleared and the request continues anonymously.
func LoadSession(sessions *auth.SessionManager, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cookie.Name)
		if err != nil || raw == "" {
			c.Next()
			return
		}
		s, err := sessions.Parse(c.Request.Context(), raw)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrRevoked) {
				httpLogger().ErrorContext(c.Request.Context(), "session lookup failed",
					"operation", "load_session",
					"outcome", "failure",
					"request_id", c.GetString(ctxKeyRequestID),
					"error", err.Error(),
				)
			}
			cookie.clear(c)
			c.Next()
			return
		}
		c.Set(ctxKeySession, s)
		c.Next()
	}
}

// Gate applies the authorization decision to every page request behind it.
func Gate(gate auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, authenticated := currentSession(c)
		decision := gate.Authorize(authenticated, c.Request.URL.Path)
		switch decision.Verdict {
		case auth.Deny:
			target := gate.LoginPath + "?" + url.Values{"callbackUrl": {c.Request.URL.RequestURI()}}.Encode()
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
		case auth.Redirect:
			c.Redirect(http.StatusSeeOther, decision.Target)
			c.Abort()
		default:
			c.Next()
		}
	}
}

func currentSession(c *gin.Context) (*auth.Session, bool) {
	v, ok := c.Get(ctxKeySession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*auth.Session)
	return s, ok && s != nil
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

func (cc CookieConfig) set(c *gin.Context, s *auth.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cc.Name, s.Token, maxAge, "/", "", cc.Secure, true)
}

func (cc CookieConfig) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cc.Name, "", -1, "/", "", cc.Secure, true)
}
