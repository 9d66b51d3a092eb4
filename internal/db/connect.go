package db

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func MustOpen(dsn string) *sql.DB {
	database, err := sql.Open("pgx", dsn)
	if err != nil {
		panic(err)
	}
	if err := database.Ping(); err != nil {
		panic(err)
	}
	return database
}
