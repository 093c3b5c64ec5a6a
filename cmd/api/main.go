package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uniexp/uniexp-admin-backend/api/routes"
	"github.com/uniexp/uniexp-admin-backend/internal/config"
	"github.com/uniexp/uniexp-admin-backend/internal/handlers"
	mongorepo "github.com/uniexp/uniexp-admin-backend/internal/repositories/mongodb"
	"github.com/uniexp/uniexp-admin-backend/internal/services"
	"github.com/uniexp/uniexp-admin-backend/pkg/imagecodec"
	"github.com/uniexp/uniexp-admin-backend/pkg/jwt"
	mongodb "github.com/uniexp/uniexp-admin-backend/pkg/mongodb"
	"golang.org/x/exp/slog"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	if cfg.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	store := services.Store{
		Events: mongorepo.NewEventRepository(db),
		Images: mongorepo.NewEventImagesRepository(db),
		Quests: mongorepo.NewQuestRepository(db),
	}
	merchandiseRepo := mongorepo.NewMerchandiseRepository(db)
	adminRepo := mongorepo.NewAdminUserRepository(db)

	codec, err := newCodec(cfg)
	if err != nil {
		return err
	}
	tokens, err := jwt.NewTokenService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)
	if err != nil {
		return err
	}

	authService := services.NewAuthService(adminRepo, tokens)
	draftService := services.NewDraftService(store, codec, cfg.Images.PosterMaxBytes)
	eventService := services.NewEventService(store)
	merchandiseService := services.NewMerchandiseService(merchandiseRepo, codec, cfg.Images.MerchandiseMaxBytes)

	handlerDeps := routes.HandlerDependencies{
		AuthHandler:        handlers.NewAuthHandler(authService),
		QuestHandler:       handlers.NewQuestHandler(),
		DraftHandler:       handlers.NewDraftHandler(draftService),
		EventHandler:       handlers.NewEventHandler(eventService),
		MerchandiseHandler: handlers.NewMerchandiseHandler(merchandiseService),
	}
	router := routes.SetupRouter(cfg, handlerDeps, authService)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port, "imageProvider", cfg.Images.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		draftService.CloseAll()
		return err
	case <-quit:
	}
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	draftService.CloseAll()

	slog.Info("Server exiting")
	return nil
}

func newCodec(cfg *config.Config) (imagecodec.Codec, error) {
	if cfg.Images.Provider == "cloudinary" {
		return imagecodec.NewCloudinaryCodec(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	}
	return imagecodec.NewInlineCodec(), nil
}
