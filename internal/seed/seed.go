package seed

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultFilamentName = "PLA (Generic)"
	defaultTariffName   = "Standard tariff"
	defaultShippingName = "Local pickup"
	defaultCurrency     = "EUR"

	// defaultPrintsPerMonth only seeds the proration divisor; shops are
	// expected to replace it with their own volume.
	defaultPrintsPerMonth       = 100
	defaultPrintingHoursPerYear = 1000
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	steps := []func(context.Context, *sql.Tx, *Stats) error{
		func(ctx context.Context, tx *sql.Tx, stats *Stats) error {
			return seedAdmin(ctx, tx, cfg.AdminEmail, cfg.AdminPassword, stats)
		},
		ensureSettings,
		ensureFilament,
		ensureTariff,
		ensureShipping,
	}
	for _, step := range steps {
		if err := step(ctx, tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureSettings(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check settings existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO settings (
			id,
			hourly_labor_rate,
			default_markup_percent,
			vat_enabled,
			vat_percent,
			currency,
			prints_per_month,
			printing_hours_per_year
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
	`, 0, 50, false, 21, defaultCurrency, defaultPrintsPerMonth, defaultPrintingHoursPerYear); err != nil {
		return fmt.Errorf("insert settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureFilament(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM filaments WHERE name = ? LIMIT 1)`, defaultFilamentName).Scan(&exists); err != nil {
		return fmt.Errorf("check default filament existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO filaments (name, material, color, spool_cost, spool_weight_grams, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, defaultFilamentName, "PLA", "", 20, 1000, true); err != nil {
		return fmt.Errorf("insert default filament: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureTariff(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM electricity_tariffs WHERE name = ? LIMIT 1)`, defaultTariffName).Scan(&exists); err != nil {
		return fmt.Errorf("check default tariff existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO electricity_tariffs (name, price_per_kwh, active)
		VALUES (?, ?, ?)
	`, defaultTariffName, 0.15, true); err != nil {
		return fmt.Errorf("insert default tariff: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureShipping(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM shipping_options WHERE name = ? LIMIT 1)`, defaultShippingName).Scan(&exists); err != nil {
		return fmt.Errorf("check default shipping option existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO shipping_options (name, cost, active)
		VALUES (?, ?, ?)
	`, defaultShippingName, 0, true); err != nil {
		return fmt.Errorf("insert default shipping option: %w", err)
	}
	stats.Inserts++
	return nil
}
