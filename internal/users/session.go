package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-assistant/internal/shared/auth"
	"study-assistant/internal/shared/server/middleware"
)

// Sessions issues and clears the auth-token cookie.
type Sessions struct {
	Issuer *auth.TokenIssuer
	Secure bool
}

// Start signs a token for user and sets it as an HttpOnly cookie.
func (s Sessions) Start(c *gin.Context, user User) (string, error) {
	token, err := s.Issuer.Sign(user.Identity())
	if err != nil {
		return "", err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, token, int(s.Issuer.TTL().Seconds()), "/", "", s.Secure, true)
	return token, nil
}

// End expires the cookie.
func (s Sessions) End(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", s.Secure, true)
}
