package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL   string
	HTTPAddr      string
	Location      *time.Location
	LogLevel      string
	Env           string // dev|prod
	SentryDSN     string
	NotifyChannel string // telegram|amqp
	BotToken      string // обязателен при NOTIFY_CHANNEL=telegram
	AMQPURL       string // обязателен при NOTIFY_CHANNEL=amqp
	AMQPQueue     string
	SeedDemo      bool // наполнить реестр тестовыми классами/учениками
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Moscow")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	cfg := &Config{
		DatabaseURL:   mustEnv("DATABASE_URL"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		Location:      loc,
		LogLevel:      getenv("LOG_LEVEL", "info"),
		Env:           getenv("ENV", "dev"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		NotifyChannel: strings.ToLower(getenv("NOTIFY_CHANNEL", "telegram")),
		BotToken:      os.Getenv("BOT_TOKEN"),
		AMQPURL:       os.Getenv("AMQP_URL"),
		AMQPQueue:     getenv("AMQP_QUEUE", "healthcheck_notifications"),
		SeedDemo:      getenv("SEED_DEMO", "0") == "1",
	}

	switch cfg.NotifyChannel {
	case "telegram":
		if cfg.BotToken == "" {
			return nil, fmt.Errorf("NOTIFY_CHANNEL=telegram требует BOT_TOKEN")
		}
	case "amqp":
		if cfg.AMQPURL == "" {
			return nil, fmt.Errorf("NOTIFY_CHANNEL=amqp требует AMQP_URL")
		}
	default:
		return nil, fmt.Errorf("неизвестный NOTIFY_CHANNEL %q", cfg.NotifyChannel)
	}

	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
