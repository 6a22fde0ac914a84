package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medibook/booking-api/config"
	healthHandler "github.com/medibook/booking-api/internal/handler/health"
	itemHandler "github.com/medibook/booking-api/internal/handler/item"
	"github.com/medibook/booking-api/internal/repository/postgres"
	"github.com/medibook/booking-api/internal/router"
	itemService "github.com/medibook/booking-api/internal/service/item"
	"github.com/medibook/booking-api/pkg/logger"
)

const defaultPort = 8002

func main() {
	log.Logger = logger.NewLogger(nil).Zerolog()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	itemRepo := postgres.NewItemRepository(db)
	itemSvc := itemService.NewService(itemRepo)

	healthH := healthHandler.NewHandler(db, "items")
	itemH := itemHandler.NewHandler(itemSvc)

	r := router.New(router.DefaultConfig())
	r.SetupItemsService(healthH, itemH)

	cfg.Server.Port = servicePort()
	serve(r, cfg.Server)
}

func servicePort() int {
	if raw := os.Getenv("PORT"); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil {
			return port
		}
	}
	return defaultPort
}

func serve(r *router.Router, cfg config.ServerConfig) {
	srv := router.NewServer(r.Engine(), cfg)

	go func() {
		log.Info().Int("port", cfg.Port).Msg("starting items service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
