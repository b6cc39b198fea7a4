package model

import "github.com/google/uuid"

// AccessClaims is the identity payload embedded in access tokens.
type AccessClaims struct {
	UserID   uuid.UUID
	Username string
	Email    string
	FullName string
}

// TokenManager generates and validates access/refresh tokens.
// Access and refresh tokens are signed with distinct secrets and are
// never cross-accepted.
type TokenManager interface {
	GenerateAccessToken(user User) (string, error)
	GenerateRefreshToken(userID uuid.UUID) (string, error)
	ParseAccessToken(token string) (AccessClaims, error)
	ParseRefreshToken(token string) (uuid.UUID, error)
}
