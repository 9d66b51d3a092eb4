package db

import (
	"context"

	"github.com/Spok95/school-healthcheck/internal/ctxutil"
	"github.com/Spok95/school-healthcheck/internal/models"
	"github.com/lib/pq"
)

// ListStudents — реестр учеников с фильтром по именам классов.
// Пустой список классов означает всю школу. Возрастной фильтр ядро
// накладывает само: возраст считается на момент запроса, не в SQL.
func (s *Store) ListStudents(ctx context.Context, classNames []string) ([]models.Student, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	q := `
		SELECT u.id, u.name, u.class_id, c.name, u.birth_date, u.parent_chat_id, u.is_active
		FROM students u
		JOIN classes c ON c.id = u.class_id
		WHERE u.is_active = TRUE
	`
	args := []any{}
	if len(classNames) > 0 {
		q += ` AND c.name = ANY($1)`
		args = append(args, pq.Array(classNames))
	}
	q += ` ORDER BY c.name, u.name`

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Student
	for rows.Next() {
		var st models.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.ClassID, &st.ClassName,
			&st.BirthDate, &st.ParentChatID, &st.IsActive); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// ListClassNames — все имена классов; нужен ядру для проверки
// «пустой список = вся школа» в операторских представлениях.
func (s *Store) ListClassNames(ctx context.Context) ([]string, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `SELECT name FROM classes ORDER BY number, letter`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
