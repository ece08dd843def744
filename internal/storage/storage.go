// Package storage opens the repositories named by a DATABASE_URL. A
// postgres:// URL uses the migrated postgres schema; bolt://<path> uses a
// single bbolt file.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	bbolt "go.etcd.io/bbolt"

	"github.com/Kerhoff/wedding/internal/config"
	"github.com/Kerhoff/wedding/internal/repository"
	"github.com/Kerhoff/wedding/internal/repository/bolt"
	"github.com/Kerhoff/wedding/internal/repository/postgres"
)

const (
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
)

// ErrUnsupported is returned for operations a backend cannot perform.
var ErrUnsupported = errors.New("storage: operation not supported by backend")

// Store bundles the repositories of one backend.
type Store struct {
	Backend string
	Guests  repository.GuestAdminRepository
	Stories repository.StoryRepository

	db   *config.Database
	kvdb *bbolt.DB
}

// Open connects to the backend named by databaseURL.
func Open(ctx context.Context, databaseURL string, logger *logrus.Logger) (*Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		db, err := config.NewDatabase(ctx, databaseURL, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Backend: BackendPostgres,
			Guests:  postgres.NewGuestRepository(db.DB),
			Stories: postgres.NewStoryRepository(db.DB),
			db:      db,
		}, nil

	case strings.HasPrefix(databaseURL, "bolt://"):
		path := strings.TrimPrefix(databaseURL, "bolt://")
		if path == "" {
			return nil, fmt.Errorf("storage: bolt url needs a file path")
		}
		kvdb, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
		}
		guests, err := bolt.NewGuestStore(kvdb)
		if err != nil {
			kvdb.Close()
			return nil, fmt.Errorf("failed to init guest store: %w", err)
		}
		stories, err := bolt.NewStoryStore(kvdb)
		if err != nil {
			kvdb.Close()
			return nil, fmt.Errorf("failed to init story store: %w", err)
		}
		logger.WithField("path", path).Info("Bolt database opened")
		return &Store{
			Backend: BackendBolt,
			Guests:  guests,
			Stories: stories,
			kvdb:    kvdb,
		}, nil

	default:
		return nil, fmt.Errorf("storage: unsupported database url scheme in %q", redact(databaseURL))
	}
}

// Migrate brings the schema up to date. Bolt buckets are created on open.
func (s *Store) Migrate(migrationsPath string) error {
	if s.db == nil {
		return nil
	}
	return s.db.Migrate(migrationsPath)
}

// MigrateDown rolls back the postgres schema.
func (s *Store) MigrateDown(migrationsPath string, steps int) error {
	if s.db == nil {
		return fmt.Errorf("%s: %w", s.Backend, ErrUnsupported)
	}
	return s.db.MigrateDown(migrationsPath, steps)
}

// Ping checks the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.db != nil {
		return s.db.PingContext(ctx)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	if s.kvdb != nil {
		return s.kvdb.Close()
	}
	return nil
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(databaseURL string) string {
	if i := strings.Index(databaseURL, "://"); i >= 0 {
		return databaseURL[:i] + "://..."
	}
	return "..."
}
