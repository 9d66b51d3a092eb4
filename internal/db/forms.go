package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/school-healthcheck/internal/ctxutil"
	"github.com/Spok95/school-healthcheck/internal/models"
	"github.com/lib/pq"
)

// CreateForm — идемпотентная вставка формы согласия. Конфликт по
// (campaign_id, student_id) игнорируется; false — форма уже была.
func (s *Store) CreateForm(ctx context.Context, campaignID, studentID int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO health_check_forms (campaign_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (campaign_id, student_id) DO NOTHING
	`, campaignID, studentID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

const formColumns = `
	id, campaign_id, student_id, sent_at, consent_status, responded_at, reminder_sent, created_at`

func scanForm(row interface{ Scan(...any) error }) (*models.HealthCheckForm, error) {
	var f models.HealthCheckForm
	var status sql.NullString
	err := row.Scan(&f.ID, &f.CampaignID, &f.StudentID, &f.SentAt, &status,
		&f.RespondedAt, &f.ReminderSent, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	if status.Valid {
		cs := models.ConsentStatus(status.String)
		f.ConsentStatus = &cs
	}
	return &f, nil
}

func (s *Store) GetForm(ctx context.Context, id int64) (*models.HealthCheckForm, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := s.DB.QueryRowContext(ctx, `SELECT`+formColumns+` FROM health_check_forms WHERE id = $1`, id)
	f, err := scanForm(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

func (s *Store) ListForms(ctx context.Context, campaignID int64) ([]models.HealthCheckForm, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx,
		`SELECT`+formColumns+` FROM health_check_forms WHERE campaign_id = $1`, campaignID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.HealthCheckForm
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// UnsentForms — формы без отметки отправки, вместе с данными ученика
// для рендера уведомления.
func (s *Store) UnsentForms(ctx context.Context, campaignID int64) ([]models.FormRecipient, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `
		SELECT f.id, f.student_id, u.name, u.parent_chat_id
		FROM health_check_forms f
		JOIN students u ON u.id = f.student_id
		WHERE f.campaign_id = $1 AND f.sent_at IS NULL
		ORDER BY f.id
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.FormRecipient
	for rows.Next() {
		var r models.FormRecipient
		if err := rows.Scan(&r.FormID, &r.StudentID, &r.StudentName, &r.ParentChatID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkFormSent — атомарная отметка: ставим sent_at, только если его ещё нет.
func (s *Store) MarkFormSent(ctx context.Context, formID int64, at time.Time) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `
		UPDATE health_check_forms
		SET sent_at = $1
		WHERE id = $2 AND sent_at IS NULL
	`, at, formID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// AnyFormSent — признак «уведомления отправлены»: существует хотя бы
// одна форма кампании с sent_at. Выводится из данных, флага нет.
func (s *Store) AnyFormSent(ctx context.Context, campaignID int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var ok bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM health_check_forms
			WHERE campaign_id = $1 AND sent_at IS NOT NULL
		)
	`, campaignID).Scan(&ok)
	return ok, err
}

// SetFormResponse фиксирует ответ родителя на форму согласия.
func (s *Store) SetFormResponse(ctx context.Context, formID int64, status models.ConsentStatus) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := s.DB.ExecContext(ctx, `
		UPDATE health_check_forms
		SET consent_status = $1, responded_at = now()
		WHERE id = $2
	`, string(status), formID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DueReminderForms — подтверждённые формы кампаний, стартующих в
// ближайшие сутки, по которым напоминание ещё не отправлялось.
func (s *Store) DueReminderForms(ctx context.Context, batch int) ([]models.ReminderForm, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `
		SELECT f.id, u.name, u.parent_chat_id, c.name, c.location, c.start_date, COALESCE(c.time_slot, '')
		FROM health_check_forms f
		JOIN students u ON u.id = f.student_id
		JOIN campaigns c ON c.id = f.campaign_id
		WHERE f.consent_status = 'confirmed'
		  AND NOT f.reminder_sent
		  AND c.status IN ('approved', 'in_progress')
		  AND c.start_date >= now()::date
		  AND c.start_date < now()::date + 2
		ORDER BY c.start_date
		LIMIT $1
	`, batch)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.ReminderForm
	for rows.Next() {
		var r models.ReminderForm
		if err := rows.Scan(&r.FormID, &r.StudentName, &r.ParentChatID,
			&r.CampaignName, &r.Location, &r.StartDate, &r.TimeSlot); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkReminded — пометить, что напоминания отправлены.
func (s *Store) MarkReminded(ctx context.Context, ids []int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := s.DB.ExecContext(ctx, `
		UPDATE health_check_forms
		SET reminder_sent = TRUE
		WHERE id = ANY($1)
	`, pq.Array(ids))
	return err
}
