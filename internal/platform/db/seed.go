package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ams/internal/domain/auth"
	"ams/internal/platform/config"
)

// Seed provisions the bootstrap administrator and, optionally, a starter
// holiday calendar for the current year. Safe to run on every boot.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := seedAdmin(ctx, pool, cfg); err != nil {
		return err
	}
	if cfg.SeedHolidays {
		if err := seedHolidays(ctx, pool); err != nil {
			return err
		}
	}
	return nil
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE role = $1", auth.RoleAdministrator).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := cfg.SeedAdminPassword
	if password == "" {
		password = "ChangeMe123!"
		slog.Warn("seeding admin with default password, change it immediately")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, first_name, last_name, employee_no, role, is_active)
    VALUES ($1,$2,'System','Administrator','EMP0001',$3,true)
    ON CONFLICT (email) DO NOTHING
  `, cfg.SeedAdminEmail, hash, auth.RoleAdministrator)
	if err != nil {
		return err
	}
	slog.Info("seeded administrator", "email", cfg.SeedAdminEmail)
	return nil
}

func seedHolidays(ctx context.Context, pool *pgxpool.Pool) error {
	year := time.Now().Year()
	holidays := []struct {
		month time.Month
		day   int
		name  string
	}{
		{time.January, 1, "New Year's Day"},
		{time.May, 1, "Labour Day"},
		{time.December, 25, "Christmas Day"},
	}
	for _, h := range holidays {
		date := time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC)
		_, err := pool.Exec(ctx, `
      INSERT INTO public_holidays (date, name, description, year, is_active)
      VALUES ($1,$2,'',$3,true)
      ON CONFLICT DO NOTHING
    `, date, h.name, year)
		if err != nil {
			return err
		}
	}
	return nil
}
