// @title Piazza API
// @version 1.0
// @description Time-limited topic posts with likes, dislikes and comments.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"piazza/bootstrap"
	"piazza/config"
	"piazza/database"
	"piazza/internal/auth"
	"piazza/internal/logger"
	"piazza/internal/repository"
	"piazza/internal/routes"
	"piazza/internal/services"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		users services.UserRepository
		posts services.PostRepository
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store, data is lost on exit")
		users = repository.NewMemoryUserRepository()
		posts = repository.NewMemoryPostRepository()
	default:
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		defer database.DisconnectMongo(client)

		// One account per username; topic listings stay indexed
		idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = bootstrap.EnsureIndexes(idxCtx, db)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("ensure indexes failed")
		}
		users = repository.NewUserRepository(db)
		posts = repository.NewPostRepository(db)
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	app := routes.NewApp(routes.Deps{
		Config:       cfg,
		Auth:         services.NewAuthService(users, tokens, time.Now),
		Posts:        services.NewPostService(posts, time.Now),
		Interactions: services.NewInteractionService(posts, time.Now),
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	// RUN SERVER
	log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}
