package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/idib19/glamstore-sub001/internal/config"
	"github.com/idib19/glamstore-sub001/internal/email"
	"github.com/idib19/glamstore-sub001/internal/model"
	"github.com/idib19/glamstore-sub001/internal/repository/postgres"
	"github.com/idib19/glamstore-sub001/internal/scheduling"
	catalogService "github.com/idib19/glamstore-sub001/internal/service/catalog"
	sweeper "github.com/idib19/glamstore-sub001/internal/worker"
	"github.com/idib19/glamstore-sub001/pkg/logger"
	"github.com/idib19/glamstore-sub001/pkg/messaging"
	redisbroker "github.com/idib19/glamstore-sub001/pkg/messaging/redis"
	"github.com/idib19/glamstore-sub001/pkg/metrics"
	"github.com/idib19/glamstore-sub001/pkg/worker"
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

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)

	calendar, err := scheduling.NewCalendar(cfg.BusinessHours)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid business hours configuration")
	}

	appMetrics := metrics.NewMetrics("glamstore", "worker")

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, appLogger, appMetrics)

	catalogSvc := catalogService.NewService(serviceRepo)
	engine := scheduling.NewEngine(calendar, appointmentRepo,
		catalogSvc, cfg.Booking.LockWait, appMetrics, appLogger)
	noShowSweeper := sweeper.NewSweeper(appointmentRepo, engine, sweeper.SweeperConfig{
		Interval:    cfg.Sweeper.Interval,
		NoShowGrace: cfg.Sweeper.NoShowGrace,
	}, appLogger)

	emailSvc := email.NewSMTPService(cfg.SMTP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		noShowSweeper.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		consumeBookingEvents(ctx, broker, emailSvc, appLogger)
	}()

	setupHealthCheck(appLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")

	cancel()
	wg.Wait()
	log.Info().Msg("worker exited")
}

// consumeBookingEvents delivers booking emails from the broker channels.
// Delivery is at-least-once; a duplicate email is acceptable.
func consumeBookingEvents(ctx context.Context, broker messaging.Broker, emailSvc email.Service, appLogger *logger.Logger) {
	channels := []string{
		model.EventBookingConfirmed,
		model.EventBookingCancelled,
		model.EventBookingUpdated,
	}

	var wg sync.WaitGroup
	for _, channel := range channels {
		msgs, err := broker.Subscribe(ctx, channel)
		if err != nil {
			appLogger.Error(err, "failed to subscribe", "channel", channel)
			continue
		}

		wg.Add(1)
		go func(channel string, msgs <-chan []byte) {
			defer wg.Done()
			for payload := range msgs {
				handleBookingEvent(ctx, channel, payload, emailSvc, appLogger)
			}
		}(channel, msgs)
	}
	wg.Wait()
}

func handleBookingEvent(ctx context.Context, channel string, payload []byte, emailSvc email.Service, appLogger *logger.Logger) {
	var event model.BookingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		appLogger.Error(err, "failed to decode booking event", "channel", channel)
		return
	}

	var err error
	switch channel {
	case model.EventBookingConfirmed:
		err = emailSvc.SendBookingConfirmation(ctx, event.CustomerEmail,
			event.CustomerName, event.ServiceName, event.Date, event.Start)
	case model.EventBookingCancelled:
		err = emailSvc.SendBookingCancellation(ctx, event.CustomerEmail,
			event.CustomerName, event.ServiceName, event.Date, event.Start)
	case model.EventBookingUpdated:
		err = emailSvc.SendBookingUpdate(ctx, event.CustomerEmail,
			event.CustomerName, event.ServiceName, event.Date, event.Start)
	}
	if err != nil {
		appLogger.Error(err, "failed to send booking email",
			"channel", channel,
			"appointment_id", event.AppointmentID.String())
	}
}

func setupHealthCheck(appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.Error(err, "Health check server failed")
			os.Exit(1)
		}
	}()
}
