package jobs

import (
	"context"

	"github.com/Spok95/school-healthcheck/internal/ctxutil"
	"github.com/Spok95/school-healthcheck/internal/db"
	"github.com/Spok95/school-healthcheck/internal/notify"
	"github.com/Spok95/school-healthcheck/internal/observability"
)

// Notifier — канал доставки; тот же, что у рассылки согласий.
type Notifier interface {
	Deliver(ctx context.Context, chatID int64, text string) error
}

const reminderBatch = 100

// ExamReminders шлёт родителям подтверждённых форм напоминание за
// сутки до начала осмотра. Отметка reminder_sent ставится только по
// доставленным, недоставленные попадут в следующий тик.
func ExamReminders(store *db.Store, n Notifier) Job {
	return func(ctx context.Context) error {
		forms, err := store.DueReminderForms(ctx, reminderBatch)
		if err != nil {
			observability.CaptureErr(err)
			return err
		}
		if len(forms) == 0 {
			return nil
		}

		done := make([]int64, 0, len(forms))
		for _, f := range forms {
			text := notify.Render(notify.ReminderTemplate, notify.MessageData{
				StudentName:  f.StudentName,
				CampaignName: f.CampaignName,
				Location:     f.Location,
				TimeSlot:     f.TimeSlot,
				StartDate:    f.StartDate,
			})
			nctx, cancel := ctxutil.WithNotifyTimeout(ctx)
			err := n.Deliver(nctx, f.ParentChatID, text)
			cancel()
			if err != nil {
				observability.CaptureErr(err)
				continue
			}
			done = append(done, f.FormID)
		}

		if len(done) > 0 {
			if err := store.MarkReminded(ctx, done); err != nil {
				observability.CaptureErr(err)
				return err
			}
		}
		return nil
	}
}
