package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/bursar/internal/config"
	"github.com/MrJamesThe3rd/bursar/internal/events"
	"github.com/MrJamesThe3rd/bursar/internal/fee"
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

	if err := run(cfg, logger); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if !cfg.QueueEnabled() {
		return errors.New("REDIS_ADDR is required to run the worker")
	}

	ctx := context.Background()

	stores, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close(ctx)

	formatter, err := money.NewFormatter(cfg.Currency)
	if err != nil {
		return err
	}

	// The worker never publishes; collecting payments is the API's job.
	studentService := student.NewService(stores.Students)
	feeService := fee.NewService(stores.Fees, studentService, nil)

	var receipts events.ReceiptSender
	if cfg.MailEnabled() {
		receipts = notify.NewMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, formatter)
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues:      map[string]int{events.Queue: 1},
			Logger:      logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(events.TypePaymentCollected, events.NewHandler(feeService, studentService, receipts))

	zap.L().Info("starting worker",
		zap.String("queue", events.Queue),
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.Bool("receipts", receipts != nil),
	)

	// Run blocks until SIGTERM or SIGINT.
	return srv.Run(mux)
}
