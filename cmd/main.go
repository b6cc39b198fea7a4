package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/account-server/internal/api/http/handler"
	"github.com/vidtube/account-server/internal/api/http/router"
	httpServer "github.com/vidtube/account-server/internal/api/http/server"
	"github.com/vidtube/account-server/internal/config"
	"github.com/vidtube/account-server/internal/logger"
	"github.com/vidtube/account-server/internal/model"
	"github.com/vidtube/account-server/internal/password"
	"github.com/vidtube/account-server/internal/repository/postgres"
	"github.com/vidtube/account-server/internal/server"
	"github.com/vidtube/account-server/internal/service"
	storage "github.com/vidtube/account-server/internal/storage/minio"
	"github.com/vidtube/account-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	hasher := password.NewBcrypt(bcrypt.DefaultCost)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	sessionService := service.NewSession(userRepo, tokenManager, hasher, logger)
	accountService := service.NewAccount(userRepo, storageClient, hasher, logger)

	cookies := handler.CookieSettings{
		Domain:     cfg.Cookie.Domain,
		Secure:     cfg.Cookie.Secure,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}

	srv := registerHTTPServer(sessionService, accountService, tokenManager, userRepo, cookies, cfg, logger)

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerHTTPServer(
	sessionService *service.Session,
	accountService *service.Account,
	tokenManager model.TokenManager,
	userRepo *postgres.UserRepository,
	cookies handler.CookieSettings,
	cfg *config.Config,
	logger *logger.Logger,
) *httpServer.HTTPServer {
	r := router.New(
		sessionService,
		accountService,
		tokenManager,
		userRepo,
		cookies,
		cfg.Upload.TempDir,
		cfg.Upload.MaxSizeBytes,
		logger,
	)
	engine := r.Register()

	return httpServer.NewHTTPServer(engine, fmt.Sprintf(":%s", cfg.HTTP.Port))
}
