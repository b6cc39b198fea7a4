package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/account-server/internal/model"
)

func newTestJWT() *JWT {
	return NewJWT("access-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)
}

func testUser() model.User {
	return model.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "a@x.com",
		FullName: "Alice A",
	}
}

func TestJWT_AccessToken_Roundtrip(t *testing.T) {
	j := newTestJWT()
	u := testUser()

	access, err := j.GenerateAccessToken(u)
	require.NoError(t, err)

	claims, err := j.ParseAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID)
	require.Equal(t, u.Username, claims.Username)
	require.Equal(t, u.Email, claims.Email)
	require.Equal(t, u.FullName, claims.FullName)
}

func TestJWT_RefreshToken_Roundtrip(t *testing.T) {
	j := newTestJWT()
	u := testUser()

	refresh, err := j.GenerateRefreshToken(u.ID)
	require.NoError(t, err)

	got, err := j.ParseRefreshToken(refresh)
	require.NoError(t, err)
	require.Equal(t, u.ID, got)
}

func TestJWT_TokenType_Mismatch(t *testing.T) {
	j := NewJWT("same-secret", "same-secret", time.Minute, time.Minute)
	u := testUser()

	access, err := j.GenerateAccessToken(u)
	require.NoError(t, err)

	// Even with identical secrets the typ claim keeps the kinds apart.
	_, err = j.ParseRefreshToken(access)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestJWT_CrossSecret_Rejected(t *testing.T) {
	j := newTestJWT()
	u := testUser()

	access, err := j.GenerateAccessToken(u)
	require.NoError(t, err)
	refresh, err := j.GenerateRefreshToken(u.ID)
	require.NoError(t, err)

	_, err = j.ParseRefreshToken(access)
	require.ErrorIs(t, err, model.ErrInvalidToken)
	_, err = j.ParseAccessToken(refresh)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestJWT_Expired(t *testing.T) {
	j := NewJWT("access-secret", "refresh-secret", -time.Minute, -time.Minute)
	u := testUser()

	access, err := j.GenerateAccessToken(u)
	require.NoError(t, err)
	_, err = j.ParseAccessToken(access)
	require.ErrorIs(t, err, model.ErrInvalidToken)
	require.ErrorIs(t, err, model.ErrTokenExpired)

	refresh, err := j.GenerateRefreshToken(u.ID)
	require.NoError(t, err)
	_, err = j.ParseRefreshToken(refresh)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestJWT_Corrupted(t *testing.T) {
	j := newTestJWT()

	_, err := j.ParseAccessToken("not-a-token")
	require.ErrorIs(t, err, model.ErrInvalidToken)

	u := testUser()
	access, err := j.GenerateAccessToken(u)
	require.NoError(t, err)
	_, err = j.ParseAccessToken(access + "tampered")
	require.ErrorIs(t, err, model.ErrInvalidToken)
}
