package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/printshop/internal/db"
	"github.com/Simplici0/printshop/internal/migrations"
)

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	cfg := Config{
		AdminEmail:    "admin@printshop.test",
		AdminPassword: "12345",
	}

	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database, cfg)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 5 {
				t.Fatalf("expected 5 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM users WHERE email = ?`, "admin@printshop.test", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM settings WHERE id = 1`, nil, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM filaments WHERE name = ?`, "PLA (Generic)", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM electricity_tariffs WHERE name = ?`, "Standard tariff", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM shipping_options WHERE name = ? AND cost = ?`, []any{"Local pickup", 0}, 1)

	var hash string
	if err := database.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, "admin@printshop.test").Scan(&hash); err != nil {
		t.Fatalf("query admin hash: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("12345")); err != nil {
		t.Fatalf("expected admin hash to match password: %v", err)
	}

	var divisor float64
	if err := database.QueryRow(`SELECT prints_per_month FROM settings WHERE id = 1`).Scan(&divisor); err != nil {
		t.Fatalf("query settings: %v", err)
	}
	if divisor != 100 {
		t.Fatalf("expected default prints_per_month 100, got %v", divisor)
	}
}

func TestRunSkipsAdminWithoutCredentials(t *testing.T) {
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "seed-noadmin.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	stats, err := Run(ctx, database, Config{})
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Inserts != 4 {
		t.Fatalf("expected 4 inserts without admin, got %d", stats.Inserts)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM users`, nil, 0)
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
