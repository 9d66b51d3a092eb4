package notify

import (
	"context"
	"strings"

	"github.com/Spok95/school-healthcheck/internal/observability"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram доставляет уведомления родителям через школьного бота.
type Telegram struct {
	bot *tgbotapi.BotAPI
}

func NewTelegram(token string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: bot}, nil
}

func (t *Telegram) Deliver(ctx context.Context, chatID int64, text string) error {
	// Bot API не принимает контекст — хотя бы не начинаем отправку
	// после дедлайна.
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	_, err := t.bot.Send(tgbotapi.NewMessage(chatID, text))
	if isSystemErr(err) {
		observability.CaptureErr(err)
	}
	return err
}

// Считаем системными: 5xx, 429, timeout. 400-ки и типичные телеграм-валидации в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if strings.Contains(s, "429") || strings.Contains(s, "502") || strings.Contains(s, "503") || strings.Contains(s, "timeout") {
		return true
	}
	return false
}
