package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vidtube/account-server/internal/api/http/middleware"
	"github.com/vidtube/account-server/internal/logger"
	"github.com/vidtube/account-server/internal/model"
	"github.com/vidtube/account-server/internal/service"
)

// SessionService defines login, logout, token rotation and password change.
type SessionService interface {
	Login(ctx context.Context, username, password string) (service.TokenPair, model.PublicUser, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Rotate(ctx context.Context, presented string) (service.TokenPair, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
}

// AccountService defines registration, profile and channel operations.
type AccountService interface {
	Register(ctx context.Context, input service.RegisterInput) (model.PublicUser, error)
	UpdateDetails(ctx context.Context, userID uuid.UUID, fullName, email string) (model.PublicUser, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (model.PublicUser, error)
	UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (model.PublicUser, error)
	GetChannelProfile(ctx context.Context, username string, viewerID uuid.UUID) (model.ChannelProfile, error)
	RecordWatch(ctx context.Context, userID, videoID uuid.UUID) error
	GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]model.WatchEntry, error)
}

// User handles the HTTP endpoints for accounts and sessions.
type User struct {
	sessions SessionService
	accounts AccountService
	cookies  CookieSettings
	tempDir  string
	logger   *logger.Logger
}

// NewUser creates a new User handler. tempDir is where multipart files are
// staged before upload; empty means the OS default.
func NewUser(
	sessions SessionService,
	accounts AccountService,
	cookies CookieSettings,
	tempDir string,
	logger *logger.Logger,
) *User {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &User{
		sessions: sessions,
		accounts: accounts,
		cookies:  cookies,
		tempDir:  tempDir,
		logger:   logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateDetailsRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type loginResponse struct {
	User         model.PublicUser `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

// Register handles POST /register (multipart form).
func (h *User) Register(c *gin.Context) {
	input := service.RegisterInput{
		FullName: c.PostForm("fullName"),
		Email:    c.PostForm("email"),
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}

	avatarPath, cleanupAvatar, err := h.stageFile(c, "avatar")
	if err != nil {
		respond(c, http.StatusBadRequest, nil, "avatar file is required")
		return
	}
	defer cleanupAvatar()
	input.AvatarPath = avatarPath

	// Cover image is optional; stage it only when present.
	if coverPath, cleanupCover, err := h.stageFile(c, "coverImage"); err == nil {
		defer cleanupCover()
		input.CoverImagePath = coverPath
	}

	user, err := h.accounts.Register(c.Request.Context(), input)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, user, "user registered successfully")
}

// Login handles POST /login. On success two httpOnly cookies are set and
// the token pair is echoed in the body for non-browser clients.
func (h *User) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, nil, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		respond(c, http.StatusBadRequest, nil, "username is required")
		return
	}
	if req.Password == "" {
		respond(c, http.StatusBadRequest, nil, "password is required")
		return
	}

	pair, user, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.cookies.set(c, pair)
	respond(c, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "user logged in successfully")
}

// Logout handles POST /logout (authenticated).
func (h *User) Logout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), user.ID); err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.cookies.clear(c)
	respond(c, http.StatusOK, nil, "user logged out")
}

// Refresh handles POST /refresh-token. The refresh token comes from the
// cookie or, failing that, the request body.
func (h *User) Refresh(c *gin.Context) {
	presented, _ := c.Cookie(refreshTokenCookie)
	if presented == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := h.sessions.Rotate(c.Request.Context(), presented)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	h.cookies.set(c, pair)
	respond(c, http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "access token refreshed")
}

// ChangePassword handles POST /change-password (authenticated).
func (h *User) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, nil, "invalid request payload")
		return
	}

	if err := h.sessions.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		handleError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, nil, "password changed successfully")
}

// CurrentUser handles GET /current-user (authenticated).
func (h *User) CurrentUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	respond(c, http.StatusOK, user, "current user fetched successfully")
}

// UpdateAccount handles PATCH /update-account (authenticated).
func (h *User) UpdateAccount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	var req updateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, nil, "invalid request payload")
		return
	}

	updated, err := h.accounts.UpdateDetails(c.Request.Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, updated, "account details updated")
}

// UpdateAvatar handles PATCH /avatar (authenticated, multipart).
func (h *User) UpdateAvatar(c *gin.Context) {
	h.updateMedia(c, "avatar", h.accounts.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /cover-image (authenticated, multipart).
func (h *User) UpdateCoverImage(c *gin.Context) {
	h.updateMedia(c, "coverImage", h.accounts.UpdateCoverImage)
}

func (h *User) updateMedia(
	c *gin.Context,
	field string,
	update func(context.Context, uuid.UUID, string) (model.PublicUser, error),
) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	path, cleanup, err := h.stageFile(c, field)
	if err != nil {
		respond(c, http.StatusBadRequest, nil, fmt.Sprintf("%s file is required", field))
		return
	}
	defer cleanup()

	updated, err := update(c.Request.Context(), user.ID, path)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, updated, fmt.Sprintf("%s updated successfully", field))
}

// ChannelProfile handles GET /c/:username. Authentication is optional; a
// valid access token only affects the isSubscribed flag.
func (h *User) ChannelProfile(c *gin.Context) {
	viewerID := uuid.Nil
	if user, ok := middleware.CurrentUser(c); ok {
		viewerID = user.ID
	}

	profile, err := h.accounts.GetChannelProfile(c.Request.Context(), c.Param("username"), viewerID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, profile, "channel profile fetched successfully")
}

// RecordWatch handles POST /history/:videoId (authenticated).
func (h *User) RecordWatch(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		respond(c, http.StatusBadRequest, nil, "invalid video id")
		return
	}

	if err := h.accounts.RecordWatch(c.Request.Context(), user.ID, videoID); err != nil {
		handleError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, nil, "watch history recorded")
}

// WatchHistory handles GET /history (authenticated).
func (h *User) WatchHistory(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respond(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	entries, err := h.accounts.GetWatchHistory(c.Request.Context(), user.ID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, entries, "watch history fetched successfully")
}

// stageFile writes a multipart file to the staging directory. The returned
// cleanup removes the staged file and runs regardless of upload outcome.
func (h *User) stageFile(c *gin.Context, field string) (string, func(), error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s file: %w", field, err)
	}

	dst := filepath.Join(h.tempDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", nil, fmt.Errorf("failed to stage %s file: %w", field, err)
	}

	cleanup := func() {
		if err := os.Remove(dst); err != nil {
			h.logger.Debug("User handler: failed to remove staged file",
				"path", dst,
				"error", err.Error())
		}
	}
	return dst, cleanup, nil
}
