package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/petfans/petfans-api/internal/config"
	authHandler "github.com/petfans/petfans-api/internal/handler/auth"
	healthHandler "github.com/petfans/petfans-api/internal/handler/health"
	petHandler "github.com/petfans/petfans-api/internal/handler/pet"
	reminderHandler "github.com/petfans/petfans-api/internal/handler/reminder"
	speciesHandler "github.com/petfans/petfans-api/internal/handler/species"
	userHandler "github.com/petfans/petfans-api/internal/handler/user"
	vaccinationHandler "github.com/petfans/petfans-api/internal/handler/vaccination"
	"github.com/petfans/petfans-api/internal/middleware"
	"github.com/petfans/petfans-api/internal/model"
	"github.com/petfans/petfans-api/internal/notifier"
	"github.com/petfans/petfans-api/internal/repository/postgres"
	"github.com/petfans/petfans-api/internal/router"
	authService "github.com/petfans/petfans-api/internal/service/auth"
	petService "github.com/petfans/petfans-api/internal/service/pet"
	reminderService "github.com/petfans/petfans-api/internal/service/reminder"
	speciesService "github.com/petfans/petfans-api/internal/service/species"
	userService "github.com/petfans/petfans-api/internal/service/user"
	vaccinationService "github.com/petfans/petfans-api/internal/service/vaccination"
	"github.com/petfans/petfans-api/pkg/auth"
	"github.com/petfans/petfans-api/pkg/logger"
)

func main() {
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

	// Repositories
	speciesRepo := postgres.NewSpeciesRepository(db)
	petRepo := postgres.NewPetRepository(db)
	userRepo := postgres.NewUserRepository(db)
	loginCodeRepo := postgres.NewLoginCodeRepository(db)
	vaccinationRepo := postgres.NewVaccinationRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Notification channels
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

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})

	// Services
	reminderSvc := reminderService.NewService(reminderRepo, vaccinationRepo, petRepo)
	vaccinationSvc := vaccinationService.NewService(vaccinationRepo, petRepo, reminderSvc, outboxRepo)
	petSvc := petService.NewService(petRepo, vaccinationRepo, userRepo)
	speciesSvc := speciesService.NewService(speciesRepo)
	userSvc := userService.NewService(userRepo)
	authSvc := authService.NewService(userRepo, loginCodeRepo, jwtSvc, n)

	r := router.New(
		appLogger,
		middleware.NewAuthMiddleware(jwtSvc),
		healthHandler.NewHandler(db),
		authHandler.NewHandler(authSvc),
		[]router.Handler{
			speciesHandler.NewHandler(speciesSvc),
			petHandler.NewHandler(petSvc),
			vaccinationHandler.NewHandler(vaccinationSvc, petSvc),
			reminderHandler.NewHandler(reminderSvc),
			userHandler.NewHandler(userSvc),
		},
		router.Config{CORS: middleware.DefaultCORSConfig()},
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		appLogger.Info("starting api server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down api server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error(err, "forced shutdown")
	}
}
