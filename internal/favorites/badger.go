package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/m3rciful/coursebot/core/logger"
)

const badgerKeyPrefix = "fav/"

// BadgerStore keeps one record per user in an embedded badger database, so changes for
// different users never rewrite each other.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the database in dir. An empty dir opens an in-memory database.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", dir, err)
	}
	logger.Favorites.Info("badger store opened",
		slog.String("event", "favorites.open"),
		slog.String("backend", "badger"),
		slog.String("path", dir),
	)
	return &BadgerStore{db: db}, nil
}

func badgerKey(userID string) []byte {
	return []byte(badgerKeyPrefix + userID)
}

func getRecord(txn *badger.Txn, userID string) ([]Favorite, error) {
	item, err := txn.Get(badgerKey(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec userRecord
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.Favorites, nil
}

func putRecord(txn *badger.Txn, userID string, favs []Favorite) error {
	if favs == nil {
		favs = []Favorite{}
	}
	val, err := json.Marshal(userRecord{Favorites: favs})
	if err != nil {
		return err
	}
	return txn.Set(badgerKey(userID), val)
}

// List returns the user's favorites in insertion order.
func (s *BadgerStore) List(_ context.Context, userID string) ([]Favorite, error) {
	var favs []Favorite
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		favs, err = getRecord(txn, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favs, nil
}

// Add appends fav unless the user already has that course.
func (s *BadgerStore) Add(_ context.Context, userID string, fav Favorite) error {
	return s.update(func(txn *badger.Txn) error {
		favs, err := getRecord(txn, userID)
		if err != nil {
			return err
		}
		if contains(favs, fav.Course) {
			return nil
		}
		return putRecord(txn, userID, append(favs, fav))
	})
}

// Remove drops every entry of course for the user.
func (s *BadgerStore) Remove(_ context.Context, userID, course string) error {
	return s.update(func(txn *badger.Txn) error {
		favs, err := getRecord(txn, userID)
		if err != nil || favs == nil {
			return err
		}
		return putRecord(txn, userID, without(favs, course))
	})
}

// update retries fn when a concurrent transaction touched the same user.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("update favorites: %w", err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
