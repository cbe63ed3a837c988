package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"study-assistant/internal/shared/auth"
	"study-assistant/internal/shared/server/respond"
)

// AuthCookieName is the cookie carrying the session token.
const AuthCookieName = "auth-token"

const (
	identityKey = "identity"
	userIDKey   = "userId"
)

// TokenVerifier resolves a raw session token to an identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Auth resolves the caller identity from a Bearer token or the session cookie.
// Requests under a public prefix proceed without identity, and a stale or
// malformed credential there is ignored.
func Auth(verifier TokenVerifier, publicPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		public := isPublic(c.Request.URL.Path, publicPrefixes)

		token, presented, ok := tokenFromRequest(c)
		if !ok {
			if public {
				c.Next()
				return
			}
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		if !presented {
			if public {
				c.Next()
				return
			}
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "You must be logged in.", nil)
			return
		}

		id, err := verifier.Verify(token)
		if err != nil {
			if public {
				c.Next()
				return
			}
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(identityKey, id)
		c.Set(userIDKey, id.UserID)
		c.Next()
	}
}

// tokenFromRequest prefers the Authorization header over the cookie.
// ok is false when the header is present but malformed.
func tokenFromRequest(c *gin.Context) (token string, presented bool, ok bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", true, false
		}
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if token == "" {
			return "", true, false
		}
		return token, true, true
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie), true, true
	}
	return "", false, true
}

func isPublic(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// IdentityFromContext returns the identity set by Auth.
func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	if c == nil {
		return auth.Identity{}, false
	}
	val, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := val.(auth.Identity)
	if !ok || id.UserID == "" {
		return auth.Identity{}, false
	}
	return id, true
}

// RequireIdentity fetches the identity or writes a 401 and reports false.
func RequireIdentity(c *gin.Context) (auth.Identity, bool) {
	id, ok := IdentityFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "You must be logged in.", nil)
		return auth.Identity{}, false
	}
	return id, true
}
