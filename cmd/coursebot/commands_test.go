package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/coursebot/internal/favorites"
)

const testCatalog = "../../internal/catalog/testdata/catalog.json"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "coursebot dev")
}

func TestCatalogCheck(t *testing.T) {
	out, err := execute(t, "catalog", "check", "--catalog", testCatalog)
	require.NoError(t, err)
	assert.Contains(t, out, "years=2 semesters=3 courses=5 files=6")
}

func TestCatalogCheckFromConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("catalog:\n  path: "+testCatalog+"\n"), 0o644))

	out, err := execute(t, "--config", cfg, "catalog", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "courses=5")
}

func TestCatalogCheckMissing(t *testing.T) {
	_, err := execute(t, "catalog", "check", "--catalog", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	out, err := execute(t, "search", "--catalog", testCatalog, "signals")
	require.NoError(t, err)
	assert.Contains(t, out, "📘 Signals\t2/1/Signals")

	_, err = execute(t, "search", "--catalog", testCatalog, "ab")
	assert.Error(t, err)

	out, err = execute(t, "search", "--catalog", testCatalog, "zzz-nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "no matches")
}

func TestFavoritesImportIntoBadger(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "users.json")
	require.NoError(t, os.WriteFile(legacy, []byte(
		`{"42":{"favorites":[{"year":"1","sem":"2","course":"Physics"}]}}`), 0o644))

	badgerDir := filepath.Join(dir, "favs")
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"favorites:\n  backend: badger\n  badger_dir: "+badgerDir+"\n"), 0o644))

	out, err := execute(t, "--config", cfg, "favorites", "import", "--from", legacy)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 favorites of 1 users into badger")

	store, err := favorites.OpenBadger(badgerDir)
	require.NoError(t, err)
	defer store.Close()
	favs, err := store.List(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "Physics", favs[0].Course)
}

func TestFavoritesImportSameFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("favorites:\n  path: users.json\n"), 0o644))
	_, err := execute(t, "--config", cfg, "favorites", "import", "--from", "users.json")
	assert.ErrorContains(t, err, "same file")
}
