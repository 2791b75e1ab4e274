package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/medcamp/camp-system/config"
	"github.com/medcamp/camp-system/db"
	"github.com/medcamp/camp-system/handlers"
	"github.com/medcamp/camp-system/live"
	"github.com/medcamp/camp-system/middleware"
	"github.com/medcamp/camp-system/payment"
	"github.com/medcamp/camp-system/repositories"
	api "github.com/medcamp/camp-system/routes"
	"github.com/medcamp/camp-system/services"
	"github.com/medcamp/camp-system/storage"
	_ "github.com/lib/pq"
)

const schedulerInterval = 10 * time.Minute // Как часто пересчитываются статусы лагерей

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация платёжного шлюза
	stripeGateway, err := payment.NewStripeGateway(payment.StripeGatewayConfig{
		SecretKey: cfg.StripeSecretKey,
	})
	if err != nil {
		logger.Error("failed to initialize Stripe gateway", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Stripe gateway initialized")

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	campRepo := repositories.NewPostgresCampRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	feedbackRepo := repositories.NewPostgresFeedbackRepository(dbConn)
	paymentRepo := repositories.NewPostgresPaymentRepository(dbConn)
	logger.Info("Repositories initialized")

	// Почтовый сервис: без SMTP-конфигурации работает как no-op
	emailService := services.NewEmailService(services.EmailConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUsername,
		Pass: cfg.SMTPPassword,
		From: cfg.SMTPFrom,
	})
	if emailService.Enabled() {
		logger.Info("email service enabled", slog.String("host", cfg.SMTPHost))
	} else {
		logger.Info("email service disabled, no SMTP configuration")
	}

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, cloudflareUploader)
	campService := services.NewCampService(campRepo, cloudflareUploader)
	registrationService := services.NewRegistrationService(
		dbConn, // для транзакций заявка+счётчик
		registrationRepo,
		campRepo,
		paymentRepo,
		emailService,
		wsHub,
		logger,
	)
	feedbackService := services.NewFeedbackService(feedbackRepo, registrationRepo)
	paymentService := services.NewPaymentService(stripeGateway, paymentRepo, cfg.PaymentCurrency)
	dashboardService := services.NewDashboardService(campRepo, registrationRepo, paymentRepo, feedbackRepo)
	logger.Info("Services initialized")

	// Планировщик автоматического обновления статусов лагерей по датам
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("camp status scheduler started", slog.Duration("interval", schedulerInterval))

		refresh := func() {
			updated, err := campService.RefreshStatuses(context.Background(), time.Now())
			if err != nil {
				logger.Error("scheduler: camp status refresh failed", slog.Any("error", err))
				return
			}
			if updated > 0 {
				logger.Info("scheduler: camp statuses refreshed", slog.Int64("updated", updated))
			}
		}

		// Один прогон сразу на старте, дальше по тикеру
		refresh()
		for range ticker.C {
			refresh()
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, emailService, cfg.JWTSecretKey, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	campHandler := handlers.NewCampHandler(campService, logger)
	registrationHandler := handlers.NewRegistrationHandler(registrationService, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService, logger)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, logger)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.CORSAllowedOrigins,
		authenticator,
		authHandler,
		userHandler,
		campHandler,
		registrationHandler,
		paymentHandler,
		feedbackHandler,
		dashboardHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
