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

	"github.com/idib19/glamstore-sub001/internal/config"
	"github.com/idib19/glamstore-sub001/internal/handler"
	appointmentHandler "github.com/idib19/glamstore-sub001/internal/handler/appointment"
	authHandler "github.com/idib19/glamstore-sub001/internal/handler/auth"
	availabilityHandler "github.com/idib19/glamstore-sub001/internal/handler/availability"
	customerHandler "github.com/idib19/glamstore-sub001/internal/handler/customer"
	prometheusHandler "github.com/idib19/glamstore-sub001/internal/handler/prometheus"
	servicecatalogHandler "github.com/idib19/glamstore-sub001/internal/handler/servicecatalog"
	"github.com/idib19/glamstore-sub001/internal/middleware"
	"github.com/idib19/glamstore-sub001/internal/repository/postgres"
	"github.com/idib19/glamstore-sub001/internal/router"
	"github.com/idib19/glamstore-sub001/internal/scheduling"
	authService "github.com/idib19/glamstore-sub001/internal/service/auth"
	bookingService "github.com/idib19/glamstore-sub001/internal/service/booking"
	catalogService "github.com/idib19/glamstore-sub001/internal/service/catalog"
	customerService "github.com/idib19/glamstore-sub001/internal/service/customer"
	notificationService "github.com/idib19/glamstore-sub001/internal/service/notification"
	"github.com/idib19/glamstore-sub001/pkg/auth"
	"github.com/idib19/glamstore-sub001/pkg/logger"
	"github.com/idib19/glamstore-sub001/pkg/metrics"
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

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Business calendar; a bad hours config is fatal at startup.
	calendar, err := scheduling.NewCalendar(cfg.BusinessHours)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid business hours configuration")
	}

	appMetrics := metrics.NewMetrics("glamstore", "api")

	// Services
	catalogSvc := catalogService.NewService(serviceRepo)
	customerSvc := customerService.NewService(customerRepo)
	notificationSvc := notificationService.NewService(outboxRepo, appLogger)
	engine := scheduling.NewEngine(calendar, appointmentRepo, catalogSvc,
		cfg.Booking.LockWait, appMetrics, appLogger)
	bookingSvc := bookingService.NewService(engine, appointmentRepo,
		catalogSvc, customerSvc, notificationSvc)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authSvc := authService.NewService(cfg.Admin, jwtSvc)

	// Handlers
	h := handler.NewHandler()
	promH := prometheusHandler.New()
	authH := authHandler.NewHandler(authSvc)
	availabilityH := availabilityHandler.NewHandler(bookingSvc)
	appointmentH := appointmentHandler.NewHandler(bookingSvc, calendar)
	servicecatalogH := servicecatalogHandler.NewHandler(catalogSvc)
	customerH := customerHandler.NewHandler(customerSvc)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		authMiddleware,
		h,
		promH,
		authH,
		availabilityH,
		appointmentH,
		servicecatalogH,
		customerH,
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimitRPS:     cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst:   cfg.RateLimit.Burst,
			CORS:             middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
