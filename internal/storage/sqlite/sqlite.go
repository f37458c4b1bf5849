// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface, for tests and single-node deployments. Push
// subscriptions are served by an in-process hub that re-queries and fans
// out full snapshots after every write.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/syncdays/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu           sync.Mutex
	groupWatches map[*storage.GroupWatch]string // watch -> userID
	dayWatches   map[*storage.DayWatch]string   // watch -> groupID
	closed       bool
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver. Foreign keys go through the
	// DSN so every pooled connection enforces them, not just the one
	// that would run a PRAGMA statement.
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{
		db:           db,
		groupWatches: make(map[*storage.GroupWatch]string),
		dayWatches:   make(map[*storage.DayWatch]string),
	}, nil
}

// Close finishes every open watch and closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	groupWatches := s.groupWatches
	dayWatches := s.dayWatches
	s.groupWatches = make(map[*storage.GroupWatch]string)
	s.dayWatches = make(map[*storage.DayWatch]string)
	s.mu.Unlock()

	for w := range groupWatches {
		w.Finish(nil)
	}
	for w := range dayWatches {
		w.Finish(nil)
	}
	return s.db.Close()
}

// wrap converts driver errors into the store error taxonomy. Not-found
// conditions are detected by the callers before this point.
func wrap(op string, err error) error {
	return &storage.UnavailableError{Op: op, Err: err}
}

// notifyGroupWatches pushes a fresh snapshot to every group watcher.
// Group membership can change on any group write, so all watchers are
// refreshed rather than tracking which users a write affects.
func (s *SQLiteStore) notifyGroupWatches() {
	s.mu.Lock()
	watches := make(map[*storage.GroupWatch]string, len(s.groupWatches))
	for w, userID := range s.groupWatches {
		watches[w] = userID
	}
	s.mu.Unlock()

	for w, userID := range watches {
		groups, err := s.ListGroupsByMember(context.Background(), userID)
		if err != nil {
			slog.Warn("group watch refresh failed", "user_id", userID, "error", err)
			continue
		}
		w.Send(groups)
	}
}

// notifyDayWatches pushes a fresh day snapshot to every watcher of the
// given group.
func (s *SQLiteStore) notifyDayWatches(groupID string) {
	s.mu.Lock()
	var watches []*storage.DayWatch
	for w, g := range s.dayWatches {
		if g == groupID {
			watches = append(watches, w)
		}
	}
	s.mu.Unlock()

	if len(watches) == 0 {
		return
	}
	days, err := s.ListDays(context.Background(), groupID)
	if err != nil {
		slog.Warn("day watch refresh failed", "group_id", groupID, "error", err)
		return
	}
	for _, w := range watches {
		w.Send(days)
	}
}

// WatchGroups subscribes to the groups containing userID. The current
// set is delivered immediately; later deliveries follow every group
// write.
func (s *SQLiteStore) WatchGroups(ctx context.Context, userID string) (*storage.GroupWatch, error) {
	groups, err := s.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	w := storage.NewGroupWatch()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		w.Finish(nil)
		return w, nil
	}
	s.groupWatches[w] = userID
	s.mu.Unlock()

	w.Send(groups)

	go func() {
		select {
		case <-ctx.Done():
			w.Unsubscribe()
		case <-w.Done():
		}
		s.mu.Lock()
		_, registered := s.groupWatches[w]
		delete(s.groupWatches, w)
		s.mu.Unlock()
		if registered {
			w.Finish(nil)
		}
	}()

	return w, nil
}

// WatchDays subscribes to all day records of a group, with the current
// mapping delivered immediately.
func (s *SQLiteStore) WatchDays(ctx context.Context, groupID string) (*storage.DayWatch, error) {
	days, err := s.ListDays(ctx, groupID)
	if err != nil {
		return nil, err
	}

	w := storage.NewDayWatch()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		w.Finish(nil)
		return w, nil
	}
	s.dayWatches[w] = groupID
	s.mu.Unlock()

	w.Send(days)

	go func() {
		select {
		case <-ctx.Done():
			w.Unsubscribe()
		case <-w.Done():
		}
		s.mu.Lock()
		_, registered := s.dayWatches[w]
		delete(s.dayWatches, w)
		s.mu.Unlock()
		if registered {
			w.Finish(nil)
		}
	}()

	return w, nil
}
