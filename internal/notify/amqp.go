package notify

import (
	"context"
	"encoding/json"

	"github.com/streadway/amqp"

	"github.com/Spok95/school-healthcheck/internal/ctxutil"
)

// AMQP публикует уведомления в очередь брокера; их забирает внешний
// SMS-шлюз. chat_id здесь — идентификатор контакта родителя у шлюза.
type AMQP struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewAMQP(url, queue string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &AMQP{conn: conn, ch: ch, queue: queue}, nil
}

func (a *AMQP) Deliver(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	payload := map[string]any{"contact": chatID, "text": text}
	if id, ok := ctxutil.CampaignID(ctx); ok {
		payload["campaign_id"] = id
	}
	if id, ok := ctxutil.StudentID(ctx); ok {
		payload["student_id"] = id
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return a.ch.Publish("", a.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (a *AMQP) Close() {
	_ = a.ch.Close()
	_ = a.conn.Close()
}
