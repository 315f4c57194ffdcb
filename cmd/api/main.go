package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/formgate/formgate-api/internal/config"
	"github.com/formgate/formgate-api/internal/formlog"
	"github.com/formgate/formgate-api/internal/handler"
	"github.com/formgate/formgate-api/internal/middleware"
	"github.com/formgate/formgate-api/internal/router"
	"github.com/formgate/formgate-api/internal/service"
	"github.com/formgate/formgate-api/internal/utils"
	"github.com/formgate/formgate-api/pkg/mailer"
	"github.com/formgate/formgate-api/pkg/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := cfg.Validate(validate); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	telegramClient, err := telegram.New(telegram.Config{
		Enabled:          cfg.TelegramEnabled,
		Token:            cfg.TelegramToken,
		ChatID:           cfg.TelegramChatID,
		TopicID:          cfg.TelegramTopicID,
		ParseMode:        cfg.TelegramParseMode,
		MaxMessageLength: cfg.TelegramMaxMessageLen,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create telegram client: %v", err)
	}

	mailClient := mailer.New(mailer.Config{
		Enabled:  cfg.EmailEnabled,
		Host:     cfg.EmailHost,
		Port:     cfg.EmailPort,
		Username: cfg.EmailUsername,
		Password: cfg.EmailPassword,
		From:     cfg.EmailFrom,
		To:       cfg.EmailTo,
		UseTLS:   cfg.EmailUseTLS,
		UseSSL:   cfg.EmailUseSSL,
		Timeout:  cfg.EmailTimeout,
	}, logger)

	formatter := service.NewFormatter(cfg)
	formLog := formlog.NewWriter(cfg.FormLogsDir, cfg.SaveFormData, logger)

	chatDispatcher := service.NewTelegramDispatcher(telegramClient, cfg.TelegramTimeout, logger)
	mailDispatcher := service.NewEmailDispatcher(mailClient, logger)

	relayService := service.NewRelayService(formatter, chatDispatcher, mailDispatcher, formLog, cfg.EmailSubjectTpl, logger)
	submitHandler := handler.NewSubmitHandler(relayService, cfg, logger)

	app := fiber.New(fiber.Config{
		AppName:      "FormGate API",
		ServerHeader: "FormGate API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}
			return utils.SendError(c, code, err.Error())
		},
	})

	middleware.Register(app, cfg, middleware.Options{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{SubmitHandler: submitHandler})

	logger.Info().
		Str("address", cfg.HTTPAddress()).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("starting server")
	logger.Info().
		Bool("telegram", telegramClient.Enabled()).
		Bool("email", mailClient.Enabled()).
		Bool("form_log", formLog.Enabled()).
		Msg("notification channels configured")

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func newLogger(cfg config.Config) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(cfg.ZerologLevel()).With().Timestamp().Logger()
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
