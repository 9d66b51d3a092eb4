package campaign

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/school-healthcheck/internal/models"
)

// RespondToForm сохраняет ответ родителя по форме согласия.
// Допустимы только confirmed и declined; повторный ответ перезаписывает
// предыдущий — родители передумывают, и последняя версия важнее первой.
func (s *Service) RespondToForm(ctx context.Context, formID int64, status models.ConsentStatus) error {
	if status != models.ConsentConfirmed && status != models.ConsentDeclined {
		return fmt.Errorf("%w: недопустимый ответ %q", ErrInvalidCampaign, status)
	}

	f, err := s.store.GetForm(ctx, formID)
	if err != nil {
		return storageErr(err)
	}
	if f == nil {
		return ErrNotFound
	}

	if err := s.store.SetFormResponse(ctx, formID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return storageErr(err)
	}
	s.log.Infow("ответ по форме согласия",
		"form_id", formID, "campaign_id", f.CampaignID, "status", status)
	return nil
}
