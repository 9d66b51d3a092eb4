package campaign

import (
	"context"

	"github.com/Spok95/school-healthcheck/internal/models"
)

type ScheduleInput struct {
	TimeSlot    string `json:"time_slot"`
	TargetCount *int   `json:"target_count,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Schedule назначает кампании слот осмотра. Доступно только для
// согласованной кампании: до согласования расписание преждевременно,
// после старта — поздно. Если ожидаемое число участников не задано,
// берём число подтверждённых согласий на текущий момент.
func (s *Service) Schedule(ctx context.Context, campaignID int64, in ScheduleInput) (*models.Campaign, error) {
	unlock := s.campaignLocks.lock(campaignKey(campaignID))
	defer unlock()

	c, err := s.getCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CampaignApproved {
		return nil, &PreconditionError{Missing: []Condition{CondCampaignApproved}}
	}
	if in.TimeSlot == "" {
		return nil, &PreconditionError{Missing: []Condition{CondScheduled}}
	}

	count := in.TargetCount
	if count == nil {
		confirmed, err := s.confirmedCount(ctx, campaignID)
		if err != nil {
			return nil, err
		}
		count = &confirmed
	}

	if err := s.store.UpdateCampaignSchedule(ctx, campaignID, in.TimeSlot, *count, in.Notes); err != nil {
		return nil, storageErr(err)
	}
	s.log.Infow("кампания запланирована",
		"campaign_id", campaignID, "time_slot", in.TimeSlot, "target_count", *count)
	return s.getCampaign(ctx, campaignID)
}

func (s *Service) confirmedCount(ctx context.Context, campaignID int64) (int, error) {
	forms, err := s.store.ListForms(ctx, campaignID)
	if err != nil {
		return 0, storageErr(err)
	}
	n := 0
	for i := range forms {
		if forms[i].Consent() == models.ConsentConfirmed {
			n++
		}
	}
	return n, nil
}
