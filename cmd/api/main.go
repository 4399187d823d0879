package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medibook/medibook-api/config"
	"github.com/medibook/medibook-api/internal/handler"
	appointmentHandler "github.com/medibook/medibook-api/internal/handler/appointment"
	authHandler "github.com/medibook/medibook-api/internal/handler/auth"
	doctorHandler "github.com/medibook/medibook-api/internal/handler/doctor"
	"github.com/medibook/medibook-api/internal/middleware"
	"github.com/medibook/medibook-api/internal/repository/postgres"
	"github.com/medibook/medibook-api/internal/router"
	appointmentService "github.com/medibook/medibook-api/internal/service/appointment"
	authService "github.com/medibook/medibook-api/internal/service/auth"
	bookingService "github.com/medibook/medibook-api/internal/service/booking"
	doctorService "github.com/medibook/medibook-api/internal/service/doctor"
	"github.com/medibook/medibook-api/internal/service/notification"
	"github.com/medibook/medibook-api/pkg/auth"
	"github.com/medibook/medibook-api/pkg/logger"
	"github.com/medibook/medibook-api/pkg/messaging/redis"
	"github.com/medibook/medibook-api/pkg/metrics"
	"github.com/medibook/medibook-api/pkg/validator"
	"github.com/medibook/medibook-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	slotRepo := postgres.NewTimeSlotRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})

	appMetrics := metrics.NewMetrics("medibook")
	notifSvc := notification.NewEmailService(cfg.SMTP)

	authSvc := authService.NewService(userRepo, profileRepo, doctorRepo, tokenRepo, jwtSvc, cfg.JWT, cfg.Google)
	doctorSvc := doctorService.NewService(doctorRepo, slotRepo, doctorService.SlotStrategy(cfg.Demo.SlotStrategy))
	bookingSvc := bookingService.NewService(appointmentRepo, slotRepo, userRepo, notifSvc, appMetrics, appLogger)
	appointmentSvc := appointmentService.NewService(appointmentRepo, userRepo, notifSvc, appMetrics, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	validate := validator.NewValidator()
	healthH := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc, validate)
	doctorH := doctorHandler.NewHandler(doctorSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, bookingSvc, validate)

	r := router.NewRouter(authMiddleware, authH, doctorH, appointmentH, healthH, appMetrics, router.Config{
		RateLimit: middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		},
		CORSConfig: middleware.DefaultCORSConfig(),
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outbox drain runs in-process; the standalone worker binary covers
	// deployments that scale it separately.
	if cfg.Redis.URL != "" {
		broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.Redis.URL}, appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()

		processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.MaxRetries,
		}, appLogger, appMetrics)
		go processor.Start(ctx)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
