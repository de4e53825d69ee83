// Package favorites stores the courses each user bookmarked.
package favorites

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/coursebot/core/logger"
)

// Favorite bookmarks a course together with the location it was added from.
type Favorite struct {
	Year     string `json:"year" db:"year"`
	Semester string `json:"sem" db:"sem"`
	Course   string `json:"course" db:"course"`
}

// Repository persists favorites per user. Course names identify entries: Add ignores a course
// that is already present and Remove drops every entry with that name.
type Repository interface {
	List(ctx context.Context, userID string) ([]Favorite, error)
	Add(ctx context.Context, userID string, fav Favorite) error
	Remove(ctx context.Context, userID, course string) error
}

// IsFavorite reports whether course is among the user's favorites.
func IsFavorite(ctx context.Context, repo Repository, userID, course string) (bool, error) {
	favs, err := repo.List(ctx, userID)
	if err != nil {
		return false, err
	}
	return contains(favs, course), nil
}

// Toggle removes fav.Course when present, otherwise adds fav. It reports whether the course
// is a favorite afterwards.
func Toggle(ctx context.Context, repo Repository, userID string, fav Favorite) (bool, error) {
	present, err := IsFavorite(ctx, repo, userID, fav.Course)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	if present {
		if err := repo.Remove(ctx, userID, fav.Course); err != nil {
			return true, fmt.Errorf("remove favorite: %w", err)
		}
	} else if err := repo.Add(ctx, userID, fav); err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	logger.Favorites.Debug("favorite toggled",
		slog.String("event", "favorites.toggle"),
		slog.String("user_id", userID),
		slog.String("course", fav.Course),
		slog.Bool("added", !present),
	)
	return !present, nil
}

func contains(favs []Favorite, course string) bool {
	for _, f := range favs {
		if f.Course == course {
			return true
		}
	}
	return false
}

func without(favs []Favorite, course string) []Favorite {
	out := make([]Favorite, 0, len(favs))
	for _, f := range favs {
		if f.Course != course {
			out = append(out, f)
		}
	}
	return out
}
