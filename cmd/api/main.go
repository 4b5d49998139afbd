package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/bursar/internal/attendance"
	"github.com/MrJamesThe3rd/bursar/internal/auth"
	"github.com/MrJamesThe3rd/bursar/internal/config"
	"github.com/MrJamesThe3rd/bursar/internal/events"
	"github.com/MrJamesThe3rd/bursar/internal/export"
	"github.com/MrJamesThe3rd/bursar/internal/fee"
	bursarHttp "github.com/MrJamesThe3rd/bursar/internal/http"
	attendanceHandler "github.com/MrJamesThe3rd/bursar/internal/http/attendance"
	feeHandler "github.com/MrJamesThe3rd/bursar/internal/http/fee"
	"github.com/MrJamesThe3rd/bursar/internal/importer"
	"github.com/MrJamesThe3rd/bursar/internal/logging"
	"github.com/MrJamesThe3rd/bursar/internal/money"
	"github.com/MrJamesThe3rd/bursar/internal/notify"
	"github.com/MrJamesThe3rd/bursar/internal/storage"
	"github.com/MrJamesThe3rd/bursar/internal/student"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)

	if err := run(cfg); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close(context.Background())

	formatter, err := money.NewFormatter(cfg.Currency)
	if err != nil {
		return err
	}

	studentService := student.NewService(stores.Students)

	// The fee service and the inline event handler depend on each other, so
	// the publisher is bound once both exist.
	publisher := &deferredPublisher{}

	var (
		feeService        = fee.NewService(stores.Fees, studentService, publisher)
		attendanceService = attendance.NewService(stores.Attendance, studentService)
		importService     = importer.NewService()
		exportService     = export.NewService(feeService, studentService)
	)

	if cfg.QueueEnabled() {
		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		publisher.Publisher = events.NewAsynqPublisher(client, cfg.Worker.MaxRetry)
		zap.L().Info("publishing events to redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		var receipts events.ReceiptSender
		if cfg.MailEnabled() {
			receipts = notify.NewMailer(smtpConfig(cfg), formatter)
		}

		publisher.Publisher = events.NewInlinePublisher(events.NewHandler(feeService, studentService, receipts))
		zap.L().Info("handling events inline")
	}

	var (
		feeH        = feeHandler.NewHandler(feeService, studentService, importService, exportService)
		attendanceH = attendanceHandler.NewHandler(attendanceService)
	)

	router := bursarHttp.New(bursarHttp.Options{
		CORSOrigins:        cfg.Server.CORSOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		Timeout:            cfg.Server.Timeout,
	}, auth.NewVerifier(cfg.Auth.JWTSecret), feeH, attendanceH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		zap.L().Info("starting server", zap.String("app", cfg.App.Name), zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		zap.L().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// deferredPublisher forwards to a publisher chosen after the fee service is built.
type deferredPublisher struct {
	fee.Publisher
}

func smtpConfig(cfg *config.Config) notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
}
