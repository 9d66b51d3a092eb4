package campaign

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Spok95/school-healthcheck/internal/metrics"
	"github.com/Spok95/school-healthcheck/internal/models"
)

// Create заводит кампанию в статусе PENDING. Критерий отбора обязателен:
// без возрастного диапазона и без списка классов кампания не имеет смысла.
func (s *Service) Create(ctx context.Context, c *models.Campaign) error {
	if c.Name == "" {
		return fmt.Errorf("%w: пустое название", ErrInvalidCampaign)
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: не выбраны категории осмотра", ErrInvalidCampaign)
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: дата окончания раньше даты начала", ErrInvalidCampaign)
	}
	if c.MinAge != nil && c.MaxAge != nil && *c.MinAge > *c.MaxAge {
		return fmt.Errorf("%w: min_age больше max_age", ErrInvalidCampaign)
	}
	if !c.HasAgeRange() && len(c.TargetClasses) == 0 {
		return ErrEligibilityCriteriaMissing
	}

	c.Status = models.CampaignPending
	if err := s.store.CreateCampaign(ctx, c); err != nil {
		return storageErr(err)
	}
	s.log.Infow("кампания создана", "campaign_id", c.ID, "name", c.Name)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Campaign, *models.CampaignStats, error) {
	c, err := s.getCampaign(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	st, err := s.store.CampaignStats(ctx, id)
	if err != nil {
		return nil, nil, storageErr(err)
	}
	return c, st, nil
}

func (s *Service) List(ctx context.Context, page, pageSize int, status string) ([]models.Campaign, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	out, total, err := s.store.ListCampaigns(ctx, (page-1)*pageSize, pageSize, status)
	if err != nil {
		return nil, 0, storageErr(err)
	}
	return out, total, nil
}

// Approve: PENDING → APPROVED. Отбор учеников здесь не считаем —
// он ленивый, по первому запросу.
func (s *Service) Approve(ctx context.Context, id int64) (*models.Campaign, error) {
	return s.transition(ctx, id, models.CampaignPending, models.CampaignApproved)
}

// Reject: PENDING → REJECTED.
func (s *Service) Reject(ctx context.Context, id int64) (*models.Campaign, error) {
	return s.transition(ctx, id, models.CampaignPending, models.CampaignRejected)
}

// Cancel: PENDING → CANCELED. Для согласованной кампании отмена
// не реализована — формы уже могли уйти родителям.
func (s *Service) Cancel(ctx context.Context, id int64) (*models.Campaign, error) {
	unlock := s.campaignLocks.lock(campaignKey(id))
	defer unlock()

	c, err := s.getCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CampaignPending {
		if c.Status == models.CampaignApproved || c.Status == models.CampaignInProgress {
			return nil, ErrCancelUnsupported
		}
		return nil, &InvalidTransitionError{From: c.Status, To: models.CampaignCanceled}
	}
	return s.swap(ctx, id, models.CampaignPending, models.CampaignCanceled)
}

// Complete: IN_PROGRESS → COMPLETED, без дополнительных условий.
func (s *Service) Complete(ctx context.Context, id int64) (*models.Campaign, error) {
	return s.transition(ctx, id, models.CampaignInProgress, models.CampaignCompleted)
}

// Start: APPROVED → IN_PROGRESS. Трёхстороннее И: уведомления ушли,
// слот назначен, календарь дошёл до даты начала. Каждое условие
// проверяется и сообщается отдельно — это разные человеческие
// предпосылки, а не один флажок.
func (s *Service) Start(ctx context.Context, id int64) (*models.Campaign, error) {
	unlock := s.campaignLocks.lock(campaignKey(id))
	defer unlock()

	c, err := s.getCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CampaignApproved {
		return nil, &InvalidTransitionError{From: c.Status, To: models.CampaignInProgress}
	}

	var missing []Condition

	sent, err := s.store.AnyFormSent(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if !sent {
		missing = append(missing, CondNotificationsSent)
	}
	if c.TimeSlot == nil || *c.TimeSlot == "" {
		missing = append(missing, CondScheduled)
	}
	if !dateReached(time.Now().In(s.loc), c.StartDate) {
		missing = append(missing, CondStartDateReached)
	}
	if len(missing) > 0 {
		return nil, &PreconditionError{Missing: missing}
	}

	return s.swap(ctx, id, models.CampaignApproved, models.CampaignInProgress)
}

func (s *Service) transition(ctx context.Context, id int64, from, to models.CampaignStatus) (*models.Campaign, error) {
	unlock := s.campaignLocks.lock(campaignKey(id))
	defer unlock()

	c, err := s.getCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != from {
		return nil, &InvalidTransitionError{From: c.Status, To: to}
	}
	return s.swap(ctx, id, from, to)
}

// swap — CAS в хранилище; проигрыш гонки трактуем как недопустимый переход.
func (s *Service) swap(ctx context.Context, id int64, from, to models.CampaignStatus) (*models.Campaign, error) {
	ok, err := s.store.SwapCampaignStatus(ctx, id, from, to)
	if err != nil {
		return nil, storageErr(err)
	}
	if !ok {
		cur, err := s.getCampaign(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidTransitionError{From: cur.Status, To: to}
	}
	metrics.CampaignTransitions.WithLabelValues(string(to)).Inc()
	s.log.Infow("переход кампании", "campaign_id", id, "from", from, "to", to)
	return s.getCampaign(ctx, id)
}

func campaignKey(id int64) string { return strconv.FormatInt(id, 10) }

// dateReached — наступила ли календарная дата start (сравнение по дням
// в таймзоне школы).
func dateReached(now, start time.Time) bool {
	ny, nm, nd := now.Date()
	sy, sm, sd := start.Date()
	if ny != sy {
		return ny > sy
	}
	if nm != sm {
		return nm > sm
	}
	return nd >= sd
}
