package main

import (
	"log"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/database"
	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	log.Println("applying migrations from migrations/ directory")

	migrations := &migrate.FileMigrationSource{
		Dir: "migrations",
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get database connection: %v", err)
	}

	n, err := migrate.Exec(sqlDB, "postgres", migrations, migrate.Up)
	if err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	log.Printf("applied %d migration(s)", n)
}
