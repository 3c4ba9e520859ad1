package main

import (
	"flag"
	"log"

	"gearguard/pkg/config"
	"gearguard/pkg/database/postgresql"
	"gearguard/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runUsers := flag.Bool("users", false, "Создать демо-пользователей (admin, manager, technicians)")
	runTeams := flag.Bool("teams", false, "Создать команды обслуживания и их состав")
	runEquipment := flag.Bool("equipment", false, "Создать демо-оборудование")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -users -teams -equipment)")

	flag.Parse()

	if !*runUsers && !*runTeams && !*runEquipment && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -users")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	if err := postgresql.Migrate(cfg.Postgres.DSN); err != nil {
		log.Fatalf("❌ Ошибка миграций: %v", err)
	}

	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbPool.Close()

	log.Println("======================================================")

	// порядок важен: команды ссылаются на пользователей, оборудование на команды
	if *runAll || *runUsers {
		seeders.SeedUsers(dbPool)
		log.Println("======================================================")
	}
	if *runAll || *runTeams {
		seeders.SeedTeams(dbPool)
		log.Println("======================================================")
	}
	if *runAll || *runEquipment {
		seeders.SeedEquipment(dbPool)
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
