package campaign

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Spok95/school-healthcheck/internal/ctxutil"
	"github.com/Spok95/school-healthcheck/internal/metrics"
	"github.com/Spok95/school-healthcheck/internal/models"
	"github.com/Spok95/school-healthcheck/internal/notify"
)

// Сколько уведомлений шлём параллельно. Телеграм начинает отдавать 429
// примерно с 30 сообщений в секунду, 8 воркеров держат нас заметно ниже.
const dispatchConcurrency = 8

type DispatchResult struct {
	FormsGenerated      int `json:"forms_generated"`
	NotificationsSent   int `json:"notifications_sent"`
	NotificationsFailed int `json:"notifications_failed"`
}

// Dispatch — двухфазная рассылка форм согласия.
//
// Фаза 1 заводит форму каждому подходящему ученику (повторные вызовы
// пропускают уже существующие). Фаза 2 доставляет уведомления по всем
// формам без отметки отправки и ставит отметку только после успешной
// доставки. Обе фазы идемпотентны, поэтому рассылку можно безопасно
// перезапускать после частичного сбоя.
func (s *Service) Dispatch(ctx context.Context, campaignID int64, message string) (*DispatchResult, error) {
	unlock := s.campaignLocks.lock(campaignKey(campaignID))
	defer unlock()

	c, err := s.getCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CampaignApproved && c.Status != models.CampaignInProgress {
		return nil, &PreconditionError{Missing: []Condition{CondCampaignApproved}}
	}
	if message == "" {
		message = notify.DefaultConsentTemplate
	}

	res := &DispatchResult{}

	// Фаза 1: формы. Любой сбой здесь — реестра или хранилища —
	// прерывает рассылку до начала доставки, иначе часть учеников
	// останется без формы и без уведомления.
	eligible, err := s.eligibleFor(ctx, c)
	if err != nil {
		return nil, &DispatchFailedError{Phase: PhaseForms, Err: err}
	}
	for _, st := range eligible {
		created, err := s.store.CreateForm(ctx, campaignID, st.Student.ID)
		if err != nil {
			return nil, &DispatchFailedError{Phase: PhaseForms, Err: err}
		}
		if created {
			res.FormsGenerated++
		}
	}

	// Фаза 2: доставка. Отказ отдельного получателя не валит рассылку,
	// его форма останется без sent_at и попадёт в следующий прогон.
	pending, err := s.store.UnsentForms(ctx, campaignID)
	if err != nil {
		return nil, &DispatchFailedError{Phase: PhaseNotifications, Err: err}
	}

	var sent, failed int64
	sem := make(chan struct{}, dispatchConcurrency)
	var wg sync.WaitGroup
	for _, r := range pending {
		wg.Add(1)
		sem <- struct{}{}
		go func(r models.FormRecipient) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.deliverForm(ctx, c, r, message); err != nil {
				atomic.AddInt64(&failed, 1)
				metrics.NotificationsFailed.Inc()
				s.log.Warnw("уведомление не доставлено",
					"campaign_id", campaignID, "form_id", r.FormID, "err", err)
				return
			}
			atomic.AddInt64(&sent, 1)
			metrics.NotificationsSent.Inc()
		}(r)
	}
	wg.Wait()

	res.NotificationsSent = int(sent)
	res.NotificationsFailed = int(failed)
	s.log.Infow("рассылка завершена",
		"campaign_id", campaignID,
		"forms_generated", res.FormsGenerated,
		"sent", res.NotificationsSent,
		"failed", res.NotificationsFailed)
	return res, nil
}

func (s *Service) deliverForm(ctx context.Context, c *models.Campaign, r models.FormRecipient, template string) error {
	text := notify.Render(template, notify.MessageData{
		StudentName:  r.StudentName,
		CampaignName: c.Name,
		Location:     c.Location,
		TimeSlot:     timeSlot(c),
		StartDate:    c.StartDate,
	})

	// id кампании и ученика едут в контексте — каналу доставки они
	// нужны для корреляции на стороне шлюза
	nctx := ctxutil.WithCampaignID(ctx, c.ID)
	nctx = ctxutil.WithStudentID(nctx, r.StudentID)
	nctx, cancel := ctxutil.WithNotifyTimeout(nctx)
	defer cancel()
	if err := s.notifier.Deliver(nctx, r.ParentChatID, text); err != nil {
		return err
	}
	// Отметка строго после доставки: упавший здесь процесс оставит форму
	// «не отправленной», и перезапуск дошлёт её ещё раз. Дубль сообщения
	// дешевле потерянного.
	if _, err := s.store.MarkFormSent(ctx, r.FormID, time.Now().In(s.loc)); err != nil {
		return err
	}
	return nil
}

func timeSlot(c *models.Campaign) string {
	if c.TimeSlot == nil {
		return ""
	}
	return *c.TimeSlot
}
