package favorites

import (
	"context"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrations holds the schema of the postgres backend, applied with database.RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations that holds the scripts.
const MigrationsDir = "migrations"

// PostgresStore keeps one row per favorite; the (user_id, course) pair is unique.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open connection whose schema is migrated.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	listSQL = `SELECT year, sem, course FROM favorites WHERE user_id = $1 ORDER BY id`
	addSQL  = `INSERT INTO favorites (user_id, year, sem, course) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, course) DO NOTHING`
	removeSQL = `DELETE FROM favorites WHERE user_id = $1 AND course = $2`
)

// List returns the user's favorites in insertion order.
func (s *PostgresStore) List(ctx context.Context, userID string) ([]Favorite, error) {
	var favs []Favorite
	if err := s.db.SelectContext(ctx, &favs, listSQL, userID); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favs, nil
}

// Add inserts fav unless the course is already stored for the user.
func (s *PostgresStore) Add(ctx context.Context, userID string, fav Favorite) error {
	if _, err := s.db.ExecContext(ctx, addSQL, userID, fav.Year, fav.Semester, fav.Course); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// Remove deletes the course for the user.
func (s *PostgresStore) Remove(ctx context.Context, userID, course string) error {
	if _, err := s.db.ExecContext(ctx, removeSQL, userID, course); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
