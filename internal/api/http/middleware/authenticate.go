package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vidtube/account-server/internal/logger"
	"github.com/vidtube/account-server/internal/model"
)

const (
	accessTokenCookie = "accessToken"
	currentUserKey    = "currentUser"
)

// TokenParser verifies access tokens.
type TokenParser interface {
	ParseAccessToken(token string) (model.AccessClaims, error)
}

// UserGetter loads the account behind a verified token.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

// Auth guards routes that require a verified caller identity.
type Auth struct {
	tokens TokenParser
	users  UserGetter
	logger *logger.Logger
}

func NewAuth(tokens TokenParser, users UserGetter, logger *logger.Logger) *Auth {
	return &Auth{
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// Require rejects the request with 401 unless a valid access token is
// presented via the accessToken cookie or an Authorization bearer header.
func (a *Auth) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.resolve(c)
		if err != nil {
			a.logger.Debug("auth middleware: request rejected",
				"path", c.Request.URL.Path,
				"error", err.Error())
			abortUnauthorized(c)
			return
		}

		c.Set(currentUserKey, user.Public())
		c.Next()
	}
}

// Optional resolves the caller identity when a token is presented but lets
// anonymous requests through. An invalid token is treated as anonymous.
func (a *Auth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := a.resolve(c); err == nil {
			c.Set(currentUserKey, user.Public())
		}
		c.Next()
	}
}

func (a *Auth) resolve(c *gin.Context) (model.User, error) {
	token := extractToken(c)
	if token == "" {
		return model.User{}, model.ErrUnauthorized
	}

	claims, err := a.tokens.ParseAccessToken(token)
	if err != nil {
		return model.User{}, err
	}

	user, err := a.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return model.User{}, model.ErrInvalidToken
	}
	return user, nil
}

func extractToken(c *gin.Context) string {
	if token, err := c.Cookie(accessTokenCookie); err == nil && token != "" {
		return token
	}

	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"statusCode": http.StatusUnauthorized,
		"message":    "unauthorized request",
		"success":    false,
	})
}

// CurrentUser returns the authenticated caller stored by Require or
// Optional.
func CurrentUser(c *gin.Context) (model.PublicUser, bool) {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return model.PublicUser{}, false
	}
	user, ok := value.(model.PublicUser)
	return user, ok
}
