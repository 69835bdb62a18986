package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/petfans/petfans-api/internal/config"
	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/internal/notifier"
	"github.com/petfans/petfans-api/internal/repository/postgres"
	reminderService "github.com/petfans/petfans-api/internal/service/reminder"
	"github.com/petfans/petfans-api/pkg/logger"
	"github.com/petfans/petfans-api/pkg/messaging/redis"
	"github.com/petfans/petfans-api/pkg/metrics"
	"github.com/petfans/petfans-api/pkg/worker"
)

// reminderd delivers due vaccine reminders and drains the event outbox.
// With --once it performs a single dispatch pass and exits, which is
// what the container cron job runs.
func main() {
	dryRun := flag.Bool("dry-run", false, "resolve due reminders without sending or marking anything")
	methodFlag := flag.String("method", "", "restrict dispatch to one method (email, sms, push)")
	once := flag.Bool("once", false, "run a single dispatch pass and exit")
	metricsAddr := flag.String("metrics-addr", ":9091", "listen address for prometheus metrics")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	reminderRepo := postgres.NewReminderRepository(db)
	vaccinationRepo := postgres.NewVaccinationRepository(db)
	petRepo := postgres.NewPetRepository(db)
	userRepo := postgres.NewUserRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	emailChannel, err := notifier.NewEmailChannel(notifier.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Timeout:  time.Duration(cfg.SMTP.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure email channel")
	}
	n := notifier.New()
	n.Register(model.MethodEmail, emailChannel)
	n.Register(model.MethodSMS, notifier.NewStubChannel(model.MethodSMS))
	n.Register(model.MethodPush, notifier.NewStubChannel(model.MethodPush))

	m := metrics.NewMetrics("petfans", "reminderd")

	dispatcher := worker.NewDispatcher(
		reminderRepo, vaccinationRepo, petRepo, userRepo, n,
		worker.DispatcherConfig{PollInterval: time.Duration(cfg.Reminder.PollSeconds) * time.Second},
		appLogger, m,
	)

	opts := worker.Options{DryRun: *dryRun}
	if *methodFlag != "" {
		method := model.NotificationMethod(*methodFlag)
		opts.Method = &method
	}

	if *once {
		report, err := dispatcher.Run(context.Background(), time.Now(), opts)
		if err != nil {
			log.Fatal().Err(err).Msg("dispatch failed")
		}
		appLogger.Info("dispatch finished",
			"total", report.Total, "sent", report.Sent, "failed", report.Failed, "dry_run", *dryRun)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, err := redis.NewBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &appLogger.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		PollInterval: time.Duration(cfg.Outbox.PollSeconds) * time.Second,
		MaxRetries:   cfg.Outbox.MaxRetries,
	}, appLogger, m)
	go processor.Start(ctx)

	reminderSvc := reminderService.NewService(reminderRepo, vaccinationRepo, petRepo)
	consumer := worker.NewEventConsumer(broker, reminderSvc, appLogger)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			appLogger.Error(err, "event consumer stopped")
		}
	}()

	// Scheduled dispatch runs on top of the poll loop, so a daily batch
	// lands at a predictable hour even if the poller was down.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Reminder.Schedule, func() {
		report, err := dispatcher.Run(ctx, time.Now(), opts)
		if err != nil {
			appLogger.Error(err, "scheduled dispatch failed")
			return
		}
		appLogger.Info("scheduled dispatch finished",
			"total", report.Total, "sent", report.Sent, "failed", report.Failed)
	}); err != nil {
		log.Fatal().Err(err).Msg("invalid reminder schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	go dispatcher.Start(ctx)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
			appLogger.Error(err, "metrics server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down reminderd")
	cancel()
}
