// Command seed prepares a database for the API: it creates the schema and
// the configured admin account, then exits.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/geocoder89/profilehub/internal/config"
	"github.com/geocoder89/profilehub/internal/db"
	"github.com/geocoder89/profilehub/internal/observability"
	"github.com/geocoder89/profilehub/internal/repo/postgres"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if cfg.DBURL == "" {
		log.Error("DB_URL or DB_HOST is required")
		os.Exit(1)
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, only the schema will be created")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.ConnectWithRetry(ctx, log, cfg.DBURL, 2, 5)
	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}
	log.Info("schema ready")

	created, err := db.EnsureAdminUser(ctx, postgres.NewUsersRepo(pool, nil), cfg)
	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	if created {
		log.Info("admin user created", "email", cfg.AdminEmail)
	} else {
		log.Info("admin user unchanged")
	}
}
