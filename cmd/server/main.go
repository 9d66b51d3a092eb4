package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Spok95/school-healthcheck/internal/campaign"
	"github.com/Spok95/school-healthcheck/internal/config"
	"github.com/Spok95/school-healthcheck/internal/db"
	"github.com/Spok95/school-healthcheck/internal/httpapi"
	"github.com/Spok95/school-healthcheck/internal/jobs"
	"github.com/Spok95/school-healthcheck/internal/logging"
	"github.com/Spok95/school-healthcheck/internal/notify"
	"github.com/Spok95/school-healthcheck/internal/observability"
)

func main() {
	// Загрузка переменных окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Конфигурация: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Логгер: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "school-healthcheck")
	if err != nil {
		lg.Sugar.Warnw("Sentry не инициализирован", "err", err)
	}
	defer flush()

	database := db.MustOpen(cfg.DatabaseURL)
	defer func() { _ = database.Close() }()

	if err := db.Migrate(context.Background(), database); err != nil {
		lg.Sugar.Fatalw("миграция не удалась", "err", err)
	}

	store := db.NewStore(database)

	if cfg.SeedDemo {
		if err := db.SeedDemoRoster(context.Background(), database); err != nil {
			lg.Sugar.Fatalw("демо-реестр не создан", "err", err)
		}
	}

	notifier, closeNotifier, err := buildNotifier(cfg)
	if err != nil {
		lg.Sugar.Fatalw("канал уведомлений не запущен", "channel", cfg.NotifyChannel, "err", err)
	}
	defer closeNotifier()

	svc := campaign.New(store, store, notifier, cfg.Location, lg.Sugar)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := httpapi.Start(ctx, cfg.HTTPAddr, svc, store, database, lg.Sugar)
	lg.Sugar.Infow("сервис запущен", "addr", cfg.HTTPAddr, "notify_channel", cfg.NotifyChannel)

	runner := jobs.New(ctx)
	runner.Every(time.Minute, "exam_reminders", jobs.ExamReminders(store, notifier))

	<-ctx.Done()
	lg.Sugar.Infow("остановка по сигналу")
	// дожидаемся graceful shutdown HTTP-сервера
	api.Wait()
}

func buildNotifier(cfg *config.Config) (campaign.Notifier, func(), error) {
	switch cfg.NotifyChannel {
	case "amqp":
		a, err := notify.NewAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return nil, nil, err
		}
		return a, a.Close, nil
	default:
		t, err := notify.NewTelegram(cfg.BotToken)
		if err != nil {
			return nil, nil, err
		}
		return t, func() {}, nil
	}
}
