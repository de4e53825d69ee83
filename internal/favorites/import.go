package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/m3rciful/coursebot/core/logger"
)

// Source enumerates all stored favorites, e.g. a legacy users.json FileStore.
type Source interface {
	All(ctx context.Context) (map[string][]Favorite, error)
}

// ImportStats reports what Import copied.
type ImportStats struct {
	Users     int
	Favorites int
}

// Import copies every favorite of src into dst. Entries dst already has are kept as they are.
func Import(ctx context.Context, src Source, dst Repository) (ImportStats, error) {
	var st ImportStats
	all, err := src.All(ctx)
	if err != nil {
		return st, fmt.Errorf("read source: %w", err)
	}
	users := make([]string, 0, len(all))
	for uid := range all {
		users = append(users, uid)
	}
	sort.Strings(users)

	for _, uid := range users {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		for _, fav := range all[uid] {
			if err := dst.Add(ctx, uid, fav); err != nil {
				return st, fmt.Errorf("import user %s: %w", uid, err)
			}
			st.Favorites++
		}
		st.Users++
	}
	logger.Favorites.Info("favorites imported",
		slog.String("event", "favorites.import"),
		slog.Int("users", st.Users),
		slog.Int("count", st.Favorites),
	)
	return st, nil
}
