package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedUsers создаёт демо-пользователей всех ролей.
func SeedUsers(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения пользователей...")
	if err := seedUsers(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения пользователей: %v", err)
	}
	log.Println("✅ Пользователи созданы!")
}

// SeedTeams создаёт команды обслуживания и их состав. Участники команд
// ищутся по email, поэтому пользователей нужно создать раньше.
func SeedTeams(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения команд...")
	if err := seedTeams(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения команд: %v", err)
	}
	log.Println("✅ Команды созданы!")
}

func SeedEquipment(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения оборудования...")
	if err := seedEquipment(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения оборудования: %v", err)
	}
	log.Println("✅ Оборудование создано!")
}
