package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohamedhany/eshop-api/internal/config"
	"github.com/mohamedhany/eshop-api/internal/domain/user"
	"github.com/mohamedhany/eshop-api/internal/repo/postgres"
)

// SeedAdmin creates the bootstrap admin account on first start. A second
// run is a no-op; no ADMIN_EMAIL means no seeding.
func SeedAdmin(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, log *slog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	users := postgres.NewUsersRepo(pool)

	_, err := users.Create(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, user.RoleAdmin)

	if errors.Is(err, postgres.ErrEmailTaken) {
		return nil
	}

	if err != nil {
		return err
	}

	log.InfoContext(ctx, "admin_seeded", "email", cfg.AdminEmail)

	return nil
}
