package main

import (
	"context"
	"flag"
	"log"
	"time"

	"quarry/internal/config"
	"quarry/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: cannot run --drop-tables in production environment")
	}

	log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	if err := seedDevData(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to seed data: %v", err)
	}

	log.Println("Seeding complete")
}

// Fixed ids so reruns are idempotent and the frontend dev setup can
// hardcode them.
const (
	seedOrgID    = "00000000-0000-0000-0000-00000000000a"
	seedUserID   = "00000000-0000-0000-0000-00000000000b"
	seedMetricID = "00000000-0000-0000-0000-00000000000c"
	seedDashID   = "00000000-0000-0000-0000-00000000000d"
)

func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	order := []string{
		tables.Messages,
		tables.Chats,
		tables.AssetPermissions,
		tables.UserFavorites,
		tables.MetricAssets,
		tables.DashboardAssets,
		tables.Users,
		tables.Organizations,
	}
	for _, table := range order {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Organizations + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			domain TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Users + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email TEXT NOT NULL UNIQUE,
			name TEXT,
			avatar_url TEXT,
			organization_id UUID REFERENCES ` + tables.Organizations + `(id),
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.MetricAssets + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			description TEXT,
			content JSONB NOT NULL DEFAULT '{}'::jsonb,
			organization_id UUID NOT NULL REFERENCES ` + tables.Organizations + `(id),
			created_by UUID NOT NULL REFERENCES ` + tables.Users + `(id),
			version_number INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.DashboardAssets + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			description TEXT,
			content JSONB NOT NULL DEFAULT '{}'::jsonb,
			organization_id UUID NOT NULL REFERENCES ` + tables.Organizations + `(id),
			created_by UUID NOT NULL REFERENCES ` + tables.Users + `(id),
			version_number INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Chats + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title TEXT NOT NULL,
			organization_id UUID NOT NULL REFERENCES ` + tables.Organizations + `(id),
			created_by UUID NOT NULL REFERENCES ` + tables.Users + `(id),
			publicly_accessible BOOLEAN NOT NULL DEFAULT FALSE,
			public_expiry_date TIMESTAMPTZ,
			publicly_enabled_by UUID,
			most_recent_file_id UUID,
			most_recent_file_type TEXT,
			most_recent_version_number INTEGER,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Messages + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			chat_id UUID NOT NULL REFERENCES ` + tables.Chats + `(id) ON DELETE CASCADE,
			created_by UUID NOT NULL REFERENCES ` + tables.Users + `(id),
			request_message TEXT,
			response_messages JSONB NOT NULL DEFAULT '[]'::jsonb,
			reasoning_messages JSONB NOT NULL DEFAULT '[]'::jsonb,
			final_reasoning_message TEXT,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			feedback TEXT,
			post_processing_message JSONB,
			trigger_run_id TEXT,
			title TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_created
			ON ` + tables.Messages + ` (chat_id, created_at DESC)
			WHERE deleted_at IS NULL`,
		`CREATE TABLE IF NOT EXISTS ` + tables.AssetPermissions + ` (
			asset_id UUID NOT NULL,
			asset_type TEXT NOT NULL,
			user_id UUID NOT NULL REFERENCES ` + tables.Users + `(id),
			role TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (asset_id, asset_type, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.UserFavorites + ` (
			user_id UUID NOT NULL REFERENCES ` + tables.Users + `(id),
			asset_id UUID NOT NULL,
			asset_type TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (user_id, asset_id, asset_type)
		)`,
	}

	for _, statement := range statements {
		if _, err := pool.Exec(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

func seedDevData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	now := time.Now()

	if _, err := pool.Exec(ctx, `
		INSERT INTO `+tables.Organizations+` (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO NOTHING
	`, seedOrgID, "Quarry Dev", now); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO `+tables.Users+` (id, email, name, organization_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO NOTHING
	`, seedUserID, "dev@quarry.local", "Dev User", seedOrgID, now); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO `+tables.MetricAssets+` (id, name, description, content, organization_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO NOTHING
	`, seedMetricID, "Monthly Revenue", "Total revenue by month",
		map[string]any{"sql": "SELECT date_trunc('month', created_at) AS month, sum(amount) FROM orders GROUP BY 1"},
		seedOrgID, seedUserID, now); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO `+tables.DashboardAssets+` (id, name, description, content, organization_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO NOTHING
	`, seedDashID, "Sales Overview", "Revenue and pipeline at a glance",
		map[string]any{"rows": []any{map[string]any{"metric_ids": []any{seedMetricID}}}},
		seedOrgID, seedUserID, now); err != nil {
		return err
	}

	log.Printf("Seeded org %s, user %s, metric %s, dashboard %s", seedOrgID, seedUserID, seedMetricID, seedDashID)
	return nil
}
