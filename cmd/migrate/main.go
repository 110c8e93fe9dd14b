package main

import (
	"flag"
	"log"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/johnquangdev/call-insights/internal/infrastructure/database"
	"github.com/johnquangdev/call-insights/pkg/config"
)

func main() {
	down := flag.Bool("down", false, "roll back migrations instead of applying them")
	dir := flag.String("dir", database.MigrationsDir, "directory containing migration files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	direction := migrate.Up
	if *down {
		direction = migrate.Down
	}

	log.Printf("🔄 Applying migrations from %s/ directory...", *dir)

	n, err := database.Migrate(db, *dir, direction)
	if err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	log.Printf("✅ Successfully applied %d migration(s)!\n", n)
}
