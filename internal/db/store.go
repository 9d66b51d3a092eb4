package db

import "database/sql"

// Store — доступ ядра кампаний к Postgres. Уникальные ограничения
// схемы (campaign_id, student_id) — источник истины для идемпотентности,
// внутрипроцессные замки поверх них лишь оптимизация.
type Store struct {
	DB *sql.DB
}

func NewStore(database *sql.DB) *Store {
	return &Store{DB: database}
}
