package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func seedTeams(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблиц 'maintenance_teams' и 'team_members'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	usersByEmail, err := mapIDsByColumn(ctx, tx, "users", "email")
	if err != nil {
		return fmt.Errorf("ошибка получения ID пользователей: %w", err)
	}

	for _, t := range teamsData {
		teamID, err := findIDByColumn(ctx, tx, "maintenance_teams", "name", t.Name)
		if errors.Is(err, pgx.ErrNoRows) {
			teamID = uuid.NewString()
			_, err = tx.Exec(ctx,
				`INSERT INTO maintenance_teams (id, name, specialization, description, color) VALUES ($1, $2, $3, $4, $5)`,
				teamID, t.Name, t.Specialization, t.Description, t.Color)
		}
		if err != nil {
			return fmt.Errorf("команда '%s': %w", t.Name, err)
		}

		for email, role := range t.Members {
			userID, ok := usersByEmail[email]
			if !ok {
				log.Printf("ПРЕДУПРЕЖДЕНИЕ: пользователь '%s' не найден, пропускаем участника команды '%s'.", email, t.Name)
				continue
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO team_members (team_id, user_id, role) VALUES ($1, $2, $3) ON CONFLICT (team_id, user_id) DO NOTHING`,
				teamID, userID, string(role)); err != nil {
				return fmt.Errorf("участник '%s' команды '%s': %w", email, t.Name, err)
			}
		}
	}

	return tx.Commit(ctx)
}

// --- Вспомогательные функции ---

func findIDByColumn(ctx context.Context, tx pgx.Tx, table, column, value string) (string, error) {
	var id string
	query := fmt.Sprintf("SELECT id::text FROM %s WHERE %s = $1", table, column)
	err := tx.QueryRow(ctx, query, value).Scan(&id)
	return id, err
}

func mapIDsByColumn(ctx context.Context, tx pgx.Tx, table, column string) (map[string]string, error) {
	rows, err := tx.Query(ctx, fmt.Sprintf("SELECT %s, id::text FROM %s", column, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, id string
		if err := rows.Scan(&key, &id); err != nil {
			return nil, err
		}
		result[key] = id
	}
	return result, rows.Err()
}
