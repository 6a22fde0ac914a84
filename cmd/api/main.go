package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medibook/booking-api/config"
	"github.com/medibook/booking-api/internal/email"
	"github.com/medibook/booking-api/internal/gateway"
	appointmentHandler "github.com/medibook/booking-api/internal/handler/appointment"
	authHandler "github.com/medibook/booking-api/internal/handler/auth"
	healthHandler "github.com/medibook/booking-api/internal/handler/health"
	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/repository/postgres"
	"github.com/medibook/booking-api/internal/router"
	authService "github.com/medibook/booking-api/internal/service/auth"
	bookingService "github.com/medibook/booking-api/internal/service/booking"
	"github.com/medibook/booking-api/pkg/auth"
	"github.com/medibook/booking-api/pkg/cache"
	"github.com/medibook/booking-api/pkg/logger"
	"github.com/medibook/booking-api/pkg/metrics"
)

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

	ctx := context.Background()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}
	if err := postgres.Seed(ctx, db, cfg.Seed.FirstSuperuser, cfg.Seed.FirstSuperuserPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}

	readCache := newCache(cfg.Redis)
	defer readCache.Close()

	m := metrics.NewMetrics("medibook", "api")

	// Repositories
	hospitalRepo := postgres.NewHospitalRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	slotRepo := postgres.NewTimeSlotRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db, m)
	userRepo := postgres.NewUserRepository(db)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authSvc := authService.NewService(userRepo, jwtSvc)
	mailer := email.NewService(cfg.SMTP)
	bookingSvc := bookingService.NewService(hospitalRepo, doctorRepo, slotRepo, appointmentRepo, readCache, mailer, m)

	// Handlers
	authMW := middleware.NewAuthMiddleware(jwtSvc)
	healthH := healthHandler.NewHandler(db, "api")
	authH := authHandler.NewHandler(authSvc)
	bookingH := appointmentHandler.NewHandler(bookingSvc, m)
	proxy := gateway.NewProxy(m)

	r := router.New(router.DefaultConfig())
	r.SetupAPI(healthH, authH, authMW, bookingH, proxy, cfg.Gateway)

	serve(r, cfg.Server)
}

func newCache(cfg config.RedisConfig) *cache.Cache {
	if cfg.URL == "" {
		return nil
	}
	c, err := cache.New(cache.Config{
		URL:          cfg.URL,
		TTL:          cfg.TTL,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdle,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, continuing without cache")
		return nil
	}
	return c
}

func serve(r *router.Router, cfg config.ServerConfig) {
	srv := router.NewServer(r.Engine(), cfg)

	go func() {
		log.Info().Int("port", cfg.Port).Msg("starting api server")
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
