package campaign

import (
	"context"
	"time"

	"github.com/Spok95/school-healthcheck/internal/models"
	"go.uber.org/zap"
)

// Store — хранилище кампаний, форм и результатов. Реализуется
// internal/db; уникальные ограничения по (campaign_id, student_id)
// для форм и результатов обязательны.
type Store interface {
	CreateCampaign(ctx context.Context, c *models.Campaign) error
	GetCampaign(ctx context.Context, id int64) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, offset, limit int, status string) ([]models.Campaign, int, error)
	SwapCampaignStatus(ctx context.Context, id int64, from, to models.CampaignStatus) (bool, error)
	UpdateCampaignSchedule(ctx context.Context, id int64, slot string, targetCount int, notes string) error
	CampaignStats(ctx context.Context, id int64) (*models.CampaignStats, error)

	CreateForm(ctx context.Context, campaignID, studentID int64) (bool, error)
	GetForm(ctx context.Context, id int64) (*models.HealthCheckForm, error)
	ListForms(ctx context.Context, campaignID int64) ([]models.HealthCheckForm, error)
	UnsentForms(ctx context.Context, campaignID int64) ([]models.FormRecipient, error)
	MarkFormSent(ctx context.Context, formID int64, at time.Time) (bool, error)
	AnyFormSent(ctx context.Context, campaignID int64) (bool, error)
	SetFormResponse(ctx context.Context, formID int64, status models.ConsentStatus) error

	InsertResult(ctx context.Context, rec *models.ResultRecord) (bool, error)
	HasResult(ctx context.Context, campaignID, studentID int64) (bool, error)
	ListResults(ctx context.Context, campaignID int64) ([]models.ResultRecord, error)
}

// Roster — реестр учеников. Ядро его только читает.
type Roster interface {
	ListStudents(ctx context.Context, classNames []string) ([]models.Student, error)
}

// Notifier — канал доставки уведомления родителю.
type Notifier interface {
	Deliver(ctx context.Context, chatID int64, text string) error
}

// Service — оркестратор кампаний: жизненный цикл, отбор учеников,
// рассылка согласий, расписание и запись результатов.
type Service struct {
	store    Store
	roster   Roster
	notifier Notifier
	loc      *time.Location
	log      *zap.SugaredLogger

	campaignLocks *KeyLimiter // переходы и рассылка по кампании
	resultLocks   *KeyLimiter // запись результата по паре (кампания, ученик)
}

func New(store Store, roster Roster, notifier Notifier, loc *time.Location, log *zap.SugaredLogger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:         store,
		roster:        roster,
		notifier:      notifier,
		loc:           loc,
		log:           log,
		campaignLocks: NewKeyLimiter(),
		resultLocks:   NewKeyLimiter(),
	}
}

func (s *Service) getCampaign(ctx context.Context, id int64) (*models.Campaign, error) {
	c, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}
