package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gearguard/pkg/utils"
)

func seedEquipment(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'equipment'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	teamsByName, err := mapIDsByColumn(ctx, tx, "maintenance_teams", "name")
	if err != nil {
		return fmt.Errorf("ошибка получения ID команд: %w", err)
	}

	query := `INSERT INTO equipment (id, name, serial_number, category, department, employee, location,
			      purchase_date, warranty_expiry, maintenance_team_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  ON CONFLICT (serial_number) DO NOTHING`

	for _, e := range equipmentData {
		var teamID *string
		if id, ok := teamsByName[e.TeamName]; ok {
			teamID = &id
		} else {
			log.Printf("ПРЕДУПРЕЖДЕНИЕ: команда '%s' не найдена, '%s' будет без команды.", e.TeamName, e.Name)
		}

		purchase, err := utils.ParseDate(e.PurchaseDate)
		if err != nil {
			return fmt.Errorf("дата покупки '%s': %w", e.Name, err)
		}
		warranty, err := utils.ParseDate(e.WarrantyExpiry)
		if err != nil {
			return fmt.Errorf("гарантия '%s': %w", e.Name, err)
		}

		if _, err := tx.Exec(ctx, query, uuid.NewString(), e.Name, e.SerialNumber, e.Category, e.Department,
			utils.NilIfEmpty(e.Employee), e.Location, purchase, warranty, teamID); err != nil {
			return fmt.Errorf("ошибка при вставке оборудования '%s': %w", e.Name, err)
		}
	}

	return tx.Commit(ctx)
}
