package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"explorewithme/config"
	"explorewithme/internal/adapters/email"
	"explorewithme/internal/adapters/stats"
	"explorewithme/internal/clock"
	delivery "explorewithme/internal/delivery/http"
	"explorewithme/internal/delivery/http/controllers"
	"explorewithme/internal/repository/postgres"
	"explorewithme/internal/services"
	"explorewithme/migrations"
)

const (
	serviceTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// @title Explore With Me API
// @version 1.0
// @description Event publication and participation admission service.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(startupCtx); err != nil {
		logger.Error("ping database", "error", err)
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, db); err != nil {
		logger.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	txm := postgres.NewTxManager(db)
	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewParticipationRequestRepository(db)
	userRepo := postgres.NewUserRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	compilationRepo := postgres.NewCompilationRepository(db)
	commentRepo := postgres.NewCommentRepository(db)

	statsClient := stats.NewHTTPClient(cfg.StatsServerURL, &http.Client{Timeout: 3 * time.Second})

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		logger.Error("create mailer", "error", err)
		os.Exit(1)
	}

	clk := clock.NewSystem()
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	eventSvc := services.NewEventService(txm, eventRepo, categoryRepo, userRepo, statsClient, emailSvc, clk, logger, serviceTimeout)
	participationSvc := services.NewParticipationService(txm, eventRepo, requestRepo, userRepo, clk, logger, serviceTimeout)
	userSvc := services.NewUserService(userRepo, serviceTimeout)
	categorySvc := services.NewCategoryService(categoryRepo, eventRepo, serviceTimeout)
	compilationSvc := services.NewCompilationService(compilationRepo, serviceTimeout)
	commentSvc := services.NewCommentService(commentRepo, eventRepo, userRepo, clk, serviceTimeout)

	router := delivery.NewRouter(logger, delivery.Controllers{
		Events:       controllers.NewEventController(logger, eventSvc),
		Requests:     controllers.NewRequestController(logger, participationSvc),
		Users:        controllers.NewUserController(logger, userSvc),
		Categories:   controllers.NewCategoryController(logger, categorySvc),
		Compilations: controllers.NewCompilationController(logger, compilationSvc),
		Comments:     controllers.NewCommentController(logger, commentSvc),
	}, cfg.CORSOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	logger.Info("api listening", "port", cfg.Port, "env", cfg.Environment)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
