package campaign

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Spok95/school-healthcheck/internal/models"
)

type RecordInput struct {
	StudentID int64                                 `json:"student_id"`
	Height    *float64                              `json:"height,omitempty"`
	Weight    *float64                              `json:"weight,omitempty"`
	Examiner  string                                `json:"examiner"`
	Measures  map[string]models.CategoryMeasurement `json:"measures"`
}

// RecordResult фиксирует итог осмотра одного ученика: по одному
// классифицированному пункту на каждую категорию кампании. Повторная
// запись для той же пары (кампания, ученик) отклоняется — итог осмотра
// неизменяем, защита держится на уникальном индексе в базе, мьютекс
// лишь срезает очевидные гонки до обращения к хранилищу.
func (s *Service) RecordResult(ctx context.Context, campaignID int64, in RecordInput) (*models.ResultRecord, error) {
	c, err := s.getCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != models.CampaignInProgress {
		return nil, &PreconditionError{Missing: []Condition{CondCampaignInProgress}}
	}
	if in.StudentID == 0 {
		return nil, fmt.Errorf("%w: не указан ученик", ErrInvalidCampaign)
	}
	if empty(c.Categories, in.Measures) {
		return nil, ErrEmptySubmission
	}

	unlock := s.resultLocks.lock(resultKey(campaignID, in.StudentID))
	defer unlock()

	exists, err := s.store.HasResult(ctx, campaignID, in.StudentID)
	if err != nil {
		return nil, storageErr(err)
	}
	if exists {
		return nil, ErrDuplicateResult
	}

	now := time.Now().In(s.loc)
	rec := &models.ResultRecord{
		CampaignID: campaignID,
		StudentID:  in.StudentID,
		Height:     in.Height,
		Weight:     in.Weight,
		Examiner:   in.Examiner,
	}
	for _, cat := range c.Categories {
		m := in.Measures[cat]
		rec.Items = append(rec.Items, models.CategoryResult{
			Category:   cat,
			Status:     Classify(cat, m),
			Notes:      m.Notes,
			ExaminedAt: now,
		})
	}

	inserted, err := s.store.InsertResult(ctx, rec)
	if err != nil {
		return nil, storageErr(err)
	}
	if !inserted {
		// второй медик успел раньше между HasResult и вставкой
		return nil, ErrDuplicateResult
	}
	s.log.Infow("результат осмотра записан",
		"campaign_id", campaignID, "student_id", in.StudentID)
	return rec, nil
}

// GetResults — все записанные итоги кампании.
func (s *Service) GetResults(ctx context.Context, campaignID int64) ([]models.ResultRecord, error) {
	if _, err := s.getCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	out, err := s.store.ListResults(ctx, campaignID)
	if err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

// empty — по всем категориям кампании нет ни одного замера.
func empty(categories []string, measures map[string]models.CategoryMeasurement) bool {
	for _, cat := range categories {
		if m, ok := measures[cat]; ok && !m.Empty() {
			return false
		}
	}
	return true
}

func resultKey(campaignID, studentID int64) string {
	return strconv.FormatInt(campaignID, 10) + ":" + strconv.FormatInt(studentID, 10)
}
