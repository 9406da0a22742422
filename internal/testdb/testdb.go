// Package testdb opens migrated in-memory stores for tests.
package testdb

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"notes-service/internal/store"
	"notes-service/pkg/config"
	"notes-service/pkg/database"
	"notes-service/pkg/password"
	"notes-service/prometheus"

	"gorm.io/gorm/logger"
)

// SeedPassword is the password of every seeded test user
const SeedPassword = "password"

var counter atomic.Int64

// Open creates a migrated store backed by a private in-memory sqlite database.
// The returned func closes it.
func Open(metrics *prometheus.Metrics) (*store.Store, func(), error) {
	name := fmt.Sprintf("notes_test_%d", counter.Add(1))
	return open(&config.DBConfig{
		Driver:       "sqlite",
		Path:         fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	}, metrics)
}

func open(cfg *config.DBConfig, metrics *prometheus.Metrics) (*store.Store, func(), error) {
	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	s := store.New(db, metrics)
	if err := s.Migrate(context.Background()); err != nil {
		closeFn()
		return nil, nil, err
	}
	return s, closeFn, nil
}

func seed(s *store.Store, closeFn func()) (*store.Store, func(), error) {
	if _, err := s.Seed(context.Background(), password.FakeInsecureHasher{}, SeedPassword); err != nil {
		closeFn()
		return nil, nil, err
	}
	return s, closeFn, nil
}

// OpenSeeded is Open followed by seeding the sample tenants and users
func OpenSeeded(metrics *prometheus.Metrics) (*store.Store, func(), error) {
	s, closeFn, err := Open(metrics)
	if err != nil {
		return nil, nil, err
	}
	return seed(s, closeFn)
}

// New returns a seeded store closed when t finishes
func New(t testing.TB) *store.Store {
	t.Helper()
	s, closeFn, err := OpenSeeded(nil)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(closeFn)
	return s
}

// NewFile returns a seeded store on a sqlite file under t.TempDir(), pooled
// like the default service configuration so connections really run in parallel
func NewFile(t testing.TB) *store.Store {
	t.Helper()
	cfg := config.DBConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "notes.db"),
		MaxIdleConns: 10,
		MaxOpenConns: 100,
		LogLevel:     logger.Silent,
	}
	s, closeFn, err := open(&cfg, nil)
	if err == nil {
		s, closeFn, err = seed(s, closeFn)
	}
	if err != nil {
		t.Fatalf("failed to open file test store: %v", err)
	}
	t.Cleanup(closeFn)
	return s
}
