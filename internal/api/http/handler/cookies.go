package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vidtube/account-server/internal/service"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// CookieSettings controls the token cookie attributes. Both cookies are
// httpOnly; Secure is configurable for local development only.
type CookieSettings struct {
	Domain     string
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s CookieSettings) set(c *gin.Context, pair service.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, pair.AccessToken, int(s.AccessTTL.Seconds()), "/", s.Domain, s.Secure, true)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken, int(s.RefreshTTL.Seconds()), "/", s.Domain, s.Secure, true)
}

func (s CookieSettings) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", s.Domain, s.Secure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", s.Domain, s.Secure, true)
}
