package db

import (
	"context"
	"database/sql"

	"github.com/Spok95/school-healthcheck/internal/ctxutil"
	"github.com/Spok95/school-healthcheck/internal/models"
)

// InsertResult — единственная точка записи результатов осмотра.
// Вставка и проверка дубликата атомарны: конфликт по
// (campaign_id, student_id) означает, что запись уже есть — false,
// ничего не пишем (в том числе позиции по категориям).
func (s *Store) InsertResult(ctx context.Context, rec *models.ResultRecord) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO health_check_results (campaign_id, student_id, height, weight, examiner)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (campaign_id, student_id) DO NOTHING
		RETURNING id, created_at
	`, rec.CampaignID, rec.StudentID, rec.Height, rec.Weight, rec.Examiner).
		Scan(&rec.ID, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO health_check_result_items (result_id, category, status, notes, examined_at)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return false, err
	}
	defer func() { _ = stmt.Close() }()

	for i := range rec.Items {
		it := &rec.Items[i]
		it.ResultID = rec.ID
		if _, err := stmt.ExecContext(ctx, rec.ID, it.Category, string(it.Status), it.Notes, it.ExaminedAt); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) HasResult(ctx context.Context, campaignID, studentID int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var ok bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM health_check_results
			WHERE campaign_id = $1 AND student_id = $2
		)
	`, campaignID, studentID).Scan(&ok)
	return ok, err
}

func (s *Store) ListResults(ctx context.Context, campaignID int64) ([]models.ResultRecord, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, campaign_id, student_id, height, weight, examiner, created_at
		FROM health_check_results
		WHERE campaign_id = $1
		ORDER BY id
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.ResultRecord
	byID := map[int64]int{}
	for rows.Next() {
		var r models.ResultRecord
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.StudentID, &r.Height, &r.Weight, &r.Examiner, &r.CreatedAt); err != nil {
			return nil, err
		}
		byID[r.ID] = len(out)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	itemRows, err := s.DB.QueryContext(ctx, `
		SELECT i.id, i.result_id, i.category, i.status, i.notes, i.examined_at
		FROM health_check_result_items i
		JOIN health_check_results r ON r.id = i.result_id
		WHERE r.campaign_id = $1
		ORDER BY i.result_id, i.category
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var it models.CategoryResult
		if err := itemRows.Scan(&it.ID, &it.ResultID, &it.Category, &it.Status, &it.Notes, &it.ExaminedAt); err != nil {
			return nil, err
		}
		if idx, ok := byID[it.ResultID]; ok {
			out[idx].Items = append(out[idx].Items, it)
		}
	}
	return out, itemRows.Err()
}
