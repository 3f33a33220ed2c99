package main

import (
	"database/sql"
	"fmt"
	"log"

	"lexlib/internal/config"
	"lexlib/internal/repository/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	if cfg.Environment == "prod" {
		log.Fatal("refusing to drop tables in prod")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	// Dependents first
	tables := postgres.NewTableNames(cfg.TablePrefix).All()
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", tables[i])); err != nil {
			log.Fatalf("Failed to drop %s: %v", tables[i], err)
		}
	}

	fmt.Printf("All tables dropped successfully (prefix: %s)\n", cfg.TablePrefix)
}
