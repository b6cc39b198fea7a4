package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/account-server/internal/mocks"
	"github.com/vidtube/account-server/internal/model"
	"github.com/vidtube/account-server/internal/testutil"
)

func newSessionWithMocks() (*Session, *mocks.UserStore, *mocks.TokenManager, *mocks.Hasher) {
	store := &mocks.UserStore{}
	manager := &mocks.TokenManager{}
	hasher := &mocks.Hasher{}
	svc := NewSession(store, manager, hasher, testutil.MakeNoopLogger())
	return svc, store, manager, hasher
}

func storedUser(refresh *string) model.User {
	return model.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "a@x.com",
		FullName:     "Alice A",
		PasswordHash: "hashed",
		RefreshToken: refresh,
	}
}

func TestSession_Login_Success(t *testing.T) {
	ctx := context.Background()
	svc, store, manager, hasher := newSessionWithMocks()
	user := storedUser(nil)

	store.On("GetByUsername", ctx, "alice").Return(user, nil).Once()
	hasher.On("Compare", "pw1", "hashed").Return(true).Once()
	manager.On("GenerateAccessToken", user).Return("access", nil).Once()
	manager.On("GenerateRefreshToken", user.ID).Return("refresh", nil).Once()
	store.On("UpdateRefreshToken", ctx, user.ID, mock.Anything).Return(nil).Once()

	pair, public, err := svc.Login(ctx, "Alice ", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "access", pair.AccessToken)
	assert.Equal(t, "refresh", pair.RefreshToken)
	assert.Equal(t, user.ID, public.ID)
	store.AssertExpectations(t)
}

func TestSession_Login_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newSessionWithMocks()

	store.On("GetByUsername", ctx, "ghost").Return(model.User{}, model.ErrNotFound).Once()

	_, _, err := svc.Login(ctx, "ghost", "pw")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}

func TestSession_Login_BadPassword(t *testing.T) {
	ctx := context.Background()
	svc, store, _, hasher := newSessionWithMocks()
	user := storedUser(nil)

	store.On("GetByUsername", ctx, "alice").Return(user, nil).Once()
	hasher.On("Compare", "wrong", "hashed").Return(false).Once()

	_, _, err := svc.Login(ctx, "alice", "wrong")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestSession_Login_PersistFailure_NoTokensReturned(t *testing.T) {
	ctx := context.Background()
	svc, store, manager, hasher := newSessionWithMocks()
	user := storedUser(nil)

	store.On("GetByUsername", ctx, "alice").Return(user, nil).Once()
	hasher.On("Compare", "pw1", "hashed").Return(true).Once()
	manager.On("GenerateAccessToken", user).Return("access", nil).Once()
	manager.On("GenerateRefreshToken", user.ID).Return("refresh", nil).Once()
	store.On("UpdateRefreshToken", ctx, user.ID, mock.Anything).Return(assert.AnError).Once()

	pair, _, err := svc.Login(ctx, "alice", "pw1")
	require.Error(t, err)
	assert.Empty(t, pair.AccessToken)
	assert.Empty(t, pair.RefreshToken)
}

func TestSession_Logout_ClearsSlot(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newSessionWithMocks()
	userID := uuid.New()

	store.On("UpdateRefreshToken", ctx, userID, (*string)(nil)).Return(nil).Once()

	require.NoError(t, svc.Logout(ctx, userID))
	store.AssertExpectations(t)
}

func TestSession_Rotate_Success(t *testing.T) {
	ctx := context.Background()
	svc, store, manager, _ := newSessionWithMocks()
	current := "refresh-old"
	user := storedUser(&current)

	manager.On("ParseRefreshToken", current).Return(user.ID, nil).Once()
	store.On("GetByID", ctx, user.ID).Return(user, nil).Once()
	manager.On("GenerateAccessToken", user).Return("access-new", nil).Once()
	manager.On("GenerateRefreshToken", user.ID).Return("refresh-new", nil).Once()
	store.On("CompareAndSwapRefreshToken", ctx, user.ID, current, "refresh-new").Return(nil).Once()

	pair, err := svc.Rotate(ctx, current)
	require.NoError(t, err)
	assert.Equal(t, "access-new", pair.AccessToken)
	assert.Equal(t, "refresh-new", pair.RefreshToken)
	assert.NotEqual(t, current, pair.RefreshToken)
	store.AssertExpectations(t)
}

func TestSession_Rotate_MissingToken(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newSessionWithMocks()

	_, err := svc.Rotate(ctx, "")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestSession_Rotate_InvalidToken(t *testing.T) {
	ctx := context.Background()
	svc, _, manager, _ := newSessionWithMocks()

	manager.On("ParseRefreshToken", "garbage").Return(uuid.Nil, model.ErrInvalidToken).Once()

	_, err := svc.Rotate(ctx, "garbage")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestSession_Rotate_UserGone(t *testing.T) {
	ctx := context.Background()
	svc, store, manager, _ := newSessionWithMocks()
	userID := uuid.New()

	manager.On("ParseRefreshToken", "refresh").Return(userID, nil).Once()
	store.On("GetByID", ctx, userID).Return(model.User{}, model.ErrNotFound).Once()

	_, err := svc.Rotate(ctx, "refresh")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestSession_Rotate_SupersededToken(t *testing.T) {
	ctx := context.Background()
	svc, store, manager, _ := newSessionWithMocks()
	current := "refresh-current"
	user := storedUser(&current)

	manager.On("ParseRefreshToken", "refresh-superseded").Return(user.ID, nil).Once()
	store.On("GetByID", ctx, user.ID).Return(user, nil).Once()

	_, err := svc.Rotate(ctx, "refresh-superseded")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestSession_Rotate_AfterLogout(t *testing.T) {
	ctx := context.Background()
	svc, store, manager, _ := newSessionWithMocks()
	user := storedUser(nil)

	manager.On("ParseRefreshToken", "refresh-old").Return(user.ID, nil).Once()
	store.On("GetByID", ctx, user.ID).Return(user, nil).Once()

	_, err := svc.Rotate(ctx, "refresh-old")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestSession_Rotate_LostSwapRace(t *testing.T) {
	ctx := context.Background()
	svc, store, manager, _ := newSessionWithMocks()
	current := "refresh-old"
	user := storedUser(&current)

	manager.On("ParseRefreshToken", current).Return(user.ID, nil).Once()
	store.On("GetByID", ctx, user.ID).Return(user, nil).Once()
	manager.On("GenerateAccessToken", user).Return("access-new", nil).Once()
	manager.On("GenerateRefreshToken", user.ID).Return("refresh-new", nil).Once()
	store.On("CompareAndSwapRefreshToken", ctx, user.ID, current, "refresh-new").Return(model.ErrNotFound).Once()

	_, err := svc.Rotate(ctx, current)
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestSession_ChangePassword_Success(t *testing.T) {
	ctx := context.Background()
	svc, store, _, hasher := newSessionWithMocks()
	user := storedUser(nil)

	store.On("GetByID", ctx, user.ID).Return(user, nil).Once()
	hasher.On("Compare", "old-pw", "hashed").Return(true).Once()
	hasher.On("Hash", "new-pw").Return("new-hash", nil).Once()
	store.On("UpdatePasswordHash", ctx, user.ID, "new-hash").Return(nil).Once()

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "old-pw", "new-pw"))
	store.AssertExpectations(t)
}

func TestSession_ChangePassword_WrongOldPassword(t *testing.T) {
	ctx := context.Background()
	svc, store, _, hasher := newSessionWithMocks()
	user := storedUser(nil)

	store.On("GetByID", ctx, user.ID).Return(user, nil).Once()
	hasher.On("Compare", "wrong", "hashed").Return(false).Once()

	err := svc.ChangePassword(ctx, user.ID, "wrong", "new-pw")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)

	// Stored hash untouched.
	store.AssertNotCalled(t, "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_ChangePassword_EmptyNew(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newSessionWithMocks()

	err := svc.ChangePassword(ctx, uuid.New(), "old", "")
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
}
