package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Spok95/school-healthcheck/internal/ctxutil"
	"github.com/Spok95/school-healthcheck/internal/models"
	"github.com/lib/pq"
)

func (s *Store) CreateCampaign(ctx context.Context, c *models.Campaign) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	return s.DB.QueryRowContext(ctx, `
		INSERT INTO campaigns
			(name, description, location, start_date, end_date, min_age, max_age,
			 target_classes, categories, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`,
		c.Name, c.Description, c.Location, c.StartDate, c.EndDate, c.MinAge, c.MaxAge,
		pq.Array(c.TargetClasses), pq.Array(c.Categories), string(c.Status), c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt)
}

const campaignColumns = `
	id, name, description, location, start_date, end_date, min_age, max_age,
	target_classes, categories, status, time_slot, target_count, schedule_notes,
	created_by, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*models.Campaign, error) {
	var c models.Campaign
	var classes, cats pq.StringArray
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Location, &c.StartDate, &c.EndDate,
		&c.MinAge, &c.MaxAge, &classes, &cats, &c.Status, &c.TimeSlot,
		&c.TargetCount, &c.ScheduleNotes, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.TargetClasses = classes
	c.Categories = cats
	return &c, nil
}

func (s *Store) GetCampaign(ctx context.Context, id int64) (*models.Campaign, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := s.DB.QueryRowContext(ctx, `SELECT`+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// ListCampaigns — постраничный список, фильтр по статусу опционален.
func (s *Store) ListCampaigns(ctx context.Context, offset, limit int, status string) ([]models.Campaign, int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	q := `SELECT` + campaignColumns + ` FROM campaigns WHERE 1=1`
	args := []any{}
	idx := 1
	if status != "" {
		q += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, status)
		idx++
	}
	q += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.Campaign, 0, limit)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQ := `SELECT COUNT(*) FROM campaigns`
	countArgs := []any{}
	if status != "" {
		countQ += ` WHERE status = $1`
		countArgs = append(countArgs, status)
	}
	var total int
	if err := s.DB.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// SwapCampaignStatus — атомарный переход статуса: обновляем только если
// текущий статус совпал с ожидаемым. false — кто-то успел раньше или
// статус не тот.
func (s *Store) SwapCampaignStatus(ctx context.Context, id int64, from, to models.CampaignStatus) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `
		UPDATE campaigns
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// UpdateCampaignSchedule — перезаписывает слот; историю не храним.
func (s *Store) UpdateCampaignSchedule(ctx context.Context, id int64, slot string, targetCount int, notes string) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.DB.ExecContext(ctx, `
		UPDATE campaigns
		SET time_slot = $1, target_count = $2, schedule_notes = $3, updated_at = now()
		WHERE id = $4
	`, slot, targetCount, notes, id)
	return err
}

func (s *Store) CampaignStats(ctx context.Context, id int64) (*models.CampaignStats, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var st models.CampaignStats
	err := s.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE sent_at IS NOT NULL),
			COUNT(*) FILTER (WHERE consent_status = 'confirmed'),
			COUNT(*) FILTER (WHERE consent_status = 'declined')
		FROM health_check_forms
		WHERE campaign_id = $1
	`, id).Scan(&st.FormsTotal, &st.FormsSent, &st.FormsConfirmed, &st.FormsDeclined)
	if err != nil {
		return nil, err
	}
	err = s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM health_check_results WHERE campaign_id = $1`, id,
	).Scan(&st.ResultsTotal)
	if err != nil {
		return nil, err
	}
	return &st, nil
}
