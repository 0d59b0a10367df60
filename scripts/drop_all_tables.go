package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	// Read environment to determine table prefix
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}
	if env == "prod" {
		log.Fatal("Refusing to drop tables in prod")
	}
	prefix := env + "_"

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	// Drop all tables with environment-specific prefix, children first
	dropSQL := fmt.Sprintf(`
		DROP TABLE IF EXISTS %smessages CASCADE;
		DROP TABLE IF EXISTS %schats CASCADE;
		DROP TABLE IF EXISTS %sasset_permissions CASCADE;
		DROP TABLE IF EXISTS %suser_favorites CASCADE;
		DROP TABLE IF EXISTS %smetric_assets CASCADE;
		DROP TABLE IF EXISTS %sdashboard_assets CASCADE;
		DROP TABLE IF EXISTS %susers CASCADE;
		DROP TABLE IF EXISTS %sorganizations CASCADE;
	`, prefix, prefix, prefix, prefix, prefix, prefix, prefix, prefix)

	if _, err := db.Exec(dropSQL); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	log.Printf("Dropped all %s* tables", prefix)
}
