package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/m3rciful/coursebot/core/logger"
)

// userRecord is the per-user value of the favorites document.
type userRecord struct {
	Favorites []Favorite `json:"favorites"`
}

// document is the whole favorites file: user id -> record.
type document map[string]*userRecord

// FileStore keeps all users in one JSON document that is read whole and rewritten whole on
// every change. Writes are serialized and land atomically via a temp file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// List returns the user's favorites in insertion order.
func (s *FileStore) List(_ context.Context, userID string) ([]Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.read()
	if rec, ok := doc[userID]; ok && rec != nil {
		return append([]Favorite(nil), rec.Favorites...), nil
	}
	return nil, nil
}

// Add appends fav unless the user already has that course.
func (s *FileStore) Add(_ context.Context, userID string, fav Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.read()
	rec := doc[userID]
	if rec == nil {
		rec = &userRecord{Favorites: []Favorite{}}
		doc[userID] = rec
	}
	if contains(rec.Favorites, fav.Course) {
		return nil
	}
	rec.Favorites = append(rec.Favorites, fav)
	return s.write(doc)
}

// Remove drops every entry of course for the user. Unknown users are left untouched.
func (s *FileStore) Remove(_ context.Context, userID, course string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.read()
	rec, ok := doc[userID]
	if !ok || rec == nil {
		return nil
	}
	rec.Favorites = without(rec.Favorites, course)
	return s.write(doc)
}

// All returns every user's favorites.
func (s *FileStore) All(_ context.Context) (map[string][]Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]Favorite)
	for uid, rec := range s.read() {
		if rec != nil {
			out[uid] = rec.Favorites
		}
	}
	return out, nil
}

// read loads the document; a missing or unreadable file reads as empty.
func (s *FileStore) read() document {
	doc := make(document)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Favorites.Warn("favorites file unreadable",
				slog.String("event", "favorites.read"),
				slog.String("path", s.path),
				slog.String("err", err.Error()),
			)
		}
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Favorites.Warn("favorites file corrupt, treating as empty",
			slog.String("event", "favorites.read"),
			slog.String("path", s.path),
			slog.String("err", err.Error()),
		)
		return make(document)
	}
	return doc
}

func (s *FileStore) write(doc document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write favorites: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write favorites: %w", err)
	}
	return nil
}
