// Command seed inserts a starter account for each role so a fresh
// environment has an admin to manage it. Existing emails are skipped.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/commerce-auth/internal/config"
	"github.com/utafrali/commerce-auth/internal/domain"
	"github.com/utafrali/commerce-auth/internal/password"
	"github.com/utafrali/commerce-auth/pkg/database"
	"github.com/utafrali/commerce-auth/pkg/logger"
)

type seedAccount struct {
	name     string
	email    string
	password string
	role     string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("commerce-auth-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgCfg := cfg.PostgresConfig()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	hasher := password.NewHasher(cfg.BcryptCost)

	accounts := []seedAccount{
		{name: "Platform Admin", email: "admin@commerce.local", password: "admin123", role: domain.RoleAdmin},
		{name: "Demo Vendor", email: "vendor@commerce.local", password: "vendor123", role: domain.RoleVendor},
		{name: "Demo Customer", email: "customer@commerce.local", password: "customer123", role: domain.RoleCustomer},
	}

	for _, acc := range accounts {
		hash, err := hasher.Hash(acc.password)
		if err != nil {
			log.Error("failed to hash password", slog.String("email", acc.email), slog.String("error", err.Error()))
			os.Exit(1)
		}

		now := time.Now().UTC()
		ct, err := pool.Exec(ctx, `
			INSERT INTO users (id, name, email, password_hash, role, is_verified, is_banned, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, FALSE, $6, $6)
			ON CONFLICT (email) DO NOTHING`,
			uuid.New().String(), acc.name, acc.email, hash, acc.role, now,
		)
		if err != nil {
			log.Error("failed to seed account", slog.String("email", acc.email), slog.String("error", err.Error()))
			os.Exit(1)
		}

		if ct.RowsAffected() == 0 {
			log.Info("account already exists, skipping", slog.String("email", acc.email))
			continue
		}
		log.Info("seeded account", slog.String("email", acc.email), slog.String("role", acc.role))
	}

	log.Info("seeding complete")
}
