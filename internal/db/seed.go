package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// SeedDemoRoster наполняет пустой реестр тестовыми классами (1А–11Д)
// и учениками. Повторный запуск ничего не делает.
func SeedDemoRoster(ctx context.Context, database *sql.DB) error {
	var count int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM classes`).Scan(&count); err != nil {
		return fmt.Errorf("проверка таблицы classes: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Println("🧪 Наполнение реестра тестовыми классами и учениками...")

	classLetters := []string{"А", "Б", "В", "Г", "Д"}
	now := time.Now()
	parentChat := int64(2000000001)

	for grade := 1; grade <= 11; grade++ {
		for _, letter := range classLetters {
			var classID int64
			err := database.QueryRowContext(ctx, `
				INSERT INTO classes (number, letter, name)
				VALUES ($1, $2, $3)
				ON CONFLICT (number, letter) DO NOTHING
				RETURNING id
			`, grade, letter, fmt.Sprintf("%d%s", grade, letter)).Scan(&classID)
			if err != nil {
				return fmt.Errorf("insert class %d%s: %w", grade, letter, err)
			}

			// возраст примерно соответствует параллели: 1 класс ≈ 7 лет
			birthYear := now.Year() - (grade + 6)
			for i := 1; i <= 10; i++ {
				name := fmt.Sprintf("Ученик %d%s %d", grade, letter, i)
				birth := time.Date(birthYear, time.Month(1+(i-1)%12), 1+(i*2)%27, 0, 0, 0, 0, time.UTC)
				_, err := database.ExecContext(ctx, `
					INSERT INTO students (name, class_id, birth_date, parent_chat_id)
					VALUES ($1, $2, $3, $4)
				`, name, classID, birth, parentChat)
				if err != nil {
					return fmt.Errorf("insert student %s: %w", name, err)
				}
				parentChat++
			}
		}
	}

	log.Println("✅ Реестр заполнен.")
	return nil
}
