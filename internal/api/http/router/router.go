package router

import (
	"github.com/gin-gonic/gin"

	"github.com/vidtube/account-server/internal/api/http/handler"
	"github.com/vidtube/account-server/internal/api/http/middleware"
	"github.com/vidtube/account-server/internal/logger"
)

// Router wires the account endpoints, middleware and handlers into a gin
// engine.
type Router struct {
	sessions handler.SessionService
	accounts handler.AccountService
	tokens   middleware.TokenParser
	users    middleware.UserGetter
	cookies  handler.CookieSettings
	tempDir  string
	maxBytes int64
	logger   *logger.Logger
}

// New creates a new Router instance. maxBytes caps the in-memory part of
// multipart parsing.
func New(
	sessions handler.SessionService,
	accounts handler.AccountService,
	tokens middleware.TokenParser,
	users middleware.UserGetter,
	cookies handler.CookieSettings,
	tempDir string,
	maxBytes int64,
	logger *logger.Logger,
) *Router {
	return &Router{
		sessions: sessions,
		accounts: accounts,
		tokens:   tokens,
		users:    users,
		cookies:  cookies,
		tempDir:  tempDir,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Register builds the gin engine with logging, auth middleware and all
// account routes.
func (r *Router) Register() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	if r.maxBytes > 0 {
		engine.MaxMultipartMemory = r.maxBytes
	}
	engine.Use(gin.Recovery())
	engine.Use(middleware.NewLogging(r.logger).Handle())

	auth := middleware.NewAuth(r.tokens, r.users, r.logger)
	users := handler.NewUser(r.sessions, r.accounts, r.cookies, r.tempDir, r.logger)

	api := engine.Group("/api/v1/users")
	{
		api.POST("/register", users.Register)
		api.POST("/login", users.Login)
		api.POST("/refresh-token", users.Refresh)

		api.GET("/c/:username", auth.Optional(), users.ChannelProfile)

		protected := api.Group("", auth.Require())
		{
			protected.POST("/logout", users.Logout)
			protected.POST("/change-password", users.ChangePassword)
			protected.GET("/current-user", users.CurrentUser)
			protected.PATCH("/update-account", users.UpdateAccount)
			protected.PATCH("/avatar", users.UpdateAvatar)
			protected.PATCH("/cover-image", users.UpdateCoverImage)
			protected.GET("/history", users.WatchHistory)
			protected.POST("/history/:videoId", users.RecordWatch)
		}
	}

	return engine
}
