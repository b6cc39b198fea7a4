package model

import "errors"

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenMismatch = errors.New("refresh token mismatch")
)
