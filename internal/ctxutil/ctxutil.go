package ctxutil

import (
	"context"
	"time"
)

// приватные ключи, чтобы исключить коллизии
type key int

const (
	keyCampaignID key = iota
	keyStudentID
	keyOpName
)

// WithCampaignID /CampaignID — прокидываем id кампании в контекст
func WithCampaignID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, keyCampaignID, id)
}

func CampaignID(ctx context.Context) (int64, bool) {
	v := ctx.Value(keyCampaignID)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// WithStudentID /StudentID — прокидываем id ученика (если есть)
func WithStudentID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, keyStudentID, id)
}

func StudentID(ctx context.Context) (int64, bool) {
	v := ctx.Value(keyStudentID)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// WithOp /Op — имя операции (для логов/трейса)
func WithOp(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyOpName, name)
}

func Op(ctx context.Context) (string, bool) {
	v := ctx.Value(keyOpName)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Таймауты: для БД и для внешнего канала уведомлений.
// Пока константы; при желании позже сделаем из ENV/конфига.
var (
	DefaultDBTimeout     = 5 * time.Second
	DefaultNotifyTimeout = 10 * time.Second
)

// WithTimeout — удобная обёртка над context.WithTimeout.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		// на всякий случай: если d<=0 — без таймаута
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

// WithDBTimeout — стандартный таймаут для БД.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withBounded(parent, DefaultDBTimeout)
}

// WithNotifyTimeout — таймаут доставки одного уведомления.
// Внешний канал не должен подвешивать вызывающего.
func WithNotifyTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withBounded(parent, DefaultNotifyTimeout)
}

func withBounded(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		// если у родителя осталось меньше d — берём остаток
		remain := time.Until(dl)
		if remain < d {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, d)
}
