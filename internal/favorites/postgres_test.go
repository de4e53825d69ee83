package favorites

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/coursebot/core/config"
	"github.com/m3rciful/coursebot/core/database"
)

// Runs only against a live server: set DB_HOST, DB_PORT, DB_USER, DB_PASSWORD and DB_NAME.
func TestPostgresStore(t *testing.T) {
	host := os.Getenv("DB_HOST")
	if host == "" {
		t.Skip("DB_HOST not set")
	}
	cfg := coreconfig.DatabaseConfig{
		Host:           host,
		Port:           envOr("DB_PORT", "5432"),
		User:           os.Getenv("DB_USER"),
		Password:       os.Getenv("DB_PASSWORD"),
		Name:           os.Getenv("DB_NAME"),
		SSLMode:        envOr("DB_SSLMODE", "disable"),
		MaxConnections: 2,
	}
	ctx := context.Background()
	require.NoError(t, database.RunMigrations(ctx, cfg, Migrations, MigrationsDir))
	db, err := database.Connect(ctx, cfg)
	require.NoError(t, err)
	store := NewPostgresStore(db)
	defer store.Close()

	uid := "test-" + t.Name()
	_, err = db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1`, uid)
	require.NoError(t, err)

	require.NoError(t, store.Add(ctx, uid, Favorite{Year: "1", Semester: "1", Course: "Signals"}))
	require.NoError(t, store.Add(ctx, uid, Favorite{Year: "2", Semester: "2", Course: "Signals"}))
	favs, err := store.List(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, []Favorite{{Year: "1", Semester: "1", Course: "Signals"}}, favs)

	added, err := Toggle(ctx, store, uid, Favorite{Year: "1", Semester: "1", Course: "Signals"})
	require.NoError(t, err)
	assert.False(t, added)
	favs, err = store.List(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
