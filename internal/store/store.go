// Package store provides the SQLite-backed cost basis registry and print
// snapshot persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/printshop/internal/costbasis"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

var _ costbasis.Registry = (*SQLiteStore)(nil)

// SQLiteStore implements costbasis.Registry and print persistence on SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New wraps an open database. Migrations must already have run.
func New(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// DB returns the underlying database handle.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UserPasswordHash returns the stored password hash for email.
func (s *SQLiteStore) UserPasswordHash(ctx context.Context, email string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE email = ?`, email).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query user credentials: %w", err)
	}
	return hash, nil
}

func checkAffected(result sql.Result, what string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("query %s: %w", what, err)
}
