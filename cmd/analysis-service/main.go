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
	"github.com/preuniversitario/assessment-analysis-service/internal/cache"
	"github.com/preuniversitario/assessment-analysis-service/internal/config"
	"github.com/preuniversitario/assessment-analysis-service/internal/email"
	"github.com/preuniversitario/assessment-analysis-service/internal/handlers"
	"github.com/preuniversitario/assessment-analysis-service/internal/ledger"
	"github.com/preuniversitario/assessment-analysis-service/internal/repositories/postgres"
	"github.com/preuniversitario/assessment-analysis-service/internal/services"
	"github.com/preuniversitario/assessment-analysis-service/internal/utils"
	"github.com/preuniversitario/assessment-analysis-service/internal/validator"
	"github.com/preuniversitario/assessment-analysis-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	repo := postgres.NewRepository(db)
	defer repo.Close()

	var cacheService cache.CacheService
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("redis unavailable, running without cache", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, slogger)
		defer redisClient.Close()
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	deliveryLedger, err := ledger.NewCSVLedger(cfg.LedgerPath, slogger)
	if err != nil {
		logger.Error("failed to open delivery ledger", "error", err)
		os.Exit(1)
	}

	var sender email.Sender
	if cfg.EmailProvider == "sendgrid" {
		sender = email.NewSendgridSender(cfg.SendgridAPIKey, cfg.FromName, cfg.FromEmail, slogger)
	} else {
		sender = email.NewConsoleSender()
	}

	v := validator.New()
	analysisService := services.NewAnalysisService(repo, cacheService, publisher, v, slogger)
	bankService := services.NewBankService(slogger)
	reportService := services.NewReportService(cfg.TemplatePath, deliveryLedger, sender, publisher, slogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(analysisService, bankService, reportService, v, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}
