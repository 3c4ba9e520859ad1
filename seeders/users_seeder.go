package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gearguard/pkg/utils"
)

func seedUsers(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'users'...")

	hash, err := utils.HashPassword(defaultPassword)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (id, email, password_hash, full_name, role)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (email) DO NOTHING`

	for _, u := range usersData {
		tag, err := db.Exec(ctx, query, uuid.NewString(), u.Email, hash, u.FullName, string(u.Role))
		if err != nil {
			return fmt.Errorf("не удалось создать пользователя '%s': %w", u.Email, err)
		}
		if tag.RowsAffected() == 0 {
			log.Printf("    - Пользователь %s уже существует. Пропускаем.", u.Email)
		}
	}
	return nil
}
