package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vidtube/account-server/internal/model"
)

// Claims represents JWT claims with token type and identity fields.
// Refresh tokens carry only the user ID; access tokens embed the full
// identity so protected requests are authorized statelessly.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	TokenType string    `json:"typ"`
}

// JWT implements model.TokenManager backed by symmetric HMAC with
// separate secrets for access and refresh tokens.
type JWT struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWT creates a token manager with the provided secrets and expiries.
func NewJWT(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWT {
	return &JWT{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// GenerateAccessToken creates a short-lived access token embedding the
// user's public identity claims.
func (j *JWT) GenerateAccessToken(user model.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		TokenType: typeAccess,
	})

	tokenString, err := token.SignedString([]byte(j.accessSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken creates a long-lived refresh token carrying only
// the user ID.
func (j *JWT) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
		},
		UserID:    userID,
		TokenType: typeRefresh,
	})

	tokenString, err := token.SignedString([]byte(j.refreshSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, nil
}

// ParseAccessToken validates an access token against the access secret and
// extracts the identity claims.
func (j *JWT) ParseAccessToken(tokenString string) (model.AccessClaims, error) {
	claims, err := j.parse(tokenString, j.accessSecret, typeAccess)
	if err != nil {
		return model.AccessClaims{}, err
	}

	return model.AccessClaims{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		FullName: claims.FullName,
	}, nil
}

// ParseRefreshToken validates a refresh token against the refresh secret
// and extracts the user ID.
func (j *JWT) ParseRefreshToken(tokenString string) (uuid.UUID, error) {
	claims, err := j.parse(tokenString, j.refreshSecret, typeRefresh)
	if err != nil {
		return uuid.Nil, err
	}

	return claims.UserID, nil
}

func (j *JWT) parse(tokenString, secret, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", model.ErrTokenExpired, model.ErrInvalidToken)
		}
		return nil, fmt.Errorf("failed to parse token: %w", model.ErrInvalidToken)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is invalid: %w", model.ErrInvalidToken)
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("token type mismatch %q: %w", claims.TokenType, model.ErrInvalidToken)
	}
	return claims, nil
}
