package campaign

import (
	"context"
	"time"

	"github.com/Spok95/school-healthcheck/internal/models"
)

// EligibleStudents — базовый отбор: классы кампании (пусто = вся школа)
// пересекаются с возрастным диапазоном. Возраст считается полными
// годами на момент запроса, не на момент создания кампании, поэтому
// состав может меняться со временем — это ожидаемо.
func (s *Service) EligibleStudents(ctx context.Context, campaignID int64) ([]models.EligibleStudent, error) {
	c, err := s.getCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return s.eligibleFor(ctx, c)
}

func (s *Service) eligibleFor(ctx context.Context, c *models.Campaign) ([]models.EligibleStudent, error) {
	students, err := s.roster.ListStudents(ctx, c.TargetClasses)
	if err != nil {
		return nil, rosterErr(err)
	}

	now := time.Now().In(s.loc)
	out := make([]models.EligibleStudent, 0, len(students))
	for _, st := range students {
		age := ageAt(st.BirthDate, now)
		if c.MinAge != nil && age < *c.MinAge {
			continue
		}
		if c.MaxAge != nil && age > *c.MaxAge {
			continue
		}
		out = append(out, models.EligibleStudent{
			Student: st,
			Age:     age,
			Consent: models.ConsentNoForm,
		})
	}
	return out, nil
}

// EligibleStudentsWithStatus — отбор плюс статус формы согласия.
// На этих данных операторские экраны решают, кому ещё не отправлено.
func (s *Service) EligibleStudentsWithStatus(ctx context.Context, campaignID int64) ([]models.EligibleStudent, error) {
	c, err := s.getCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	base, err := s.eligibleFor(ctx, c)
	if err != nil {
		return nil, err
	}

	forms, err := s.store.ListForms(ctx, campaignID)
	if err != nil {
		return nil, storageErr(err)
	}
	byStudent := make(map[int64]*models.HealthCheckForm, len(forms))
	for i := range forms {
		byStudent[forms[i].StudentID] = &forms[i]
	}

	for i := range base {
		f, ok := byStudent[base[i].Student.ID]
		if !ok {
			continue // формы ещё нет
		}
		base[i].FormID = &f.ID
		base[i].FormSent = f.SentAt
		base[i].Responded = f.RespondedAt
		base[i].Consent = f.Consent()
	}
	return base, nil
}

// ageAt — полные годы между датой рождения и at.
func ageAt(birth, at time.Time) int {
	years := at.Year() - birth.Year()
	// день рождения в этом году ещё не наступил
	if at.Month() < birth.Month() ||
		(at.Month() == birth.Month() && at.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}
