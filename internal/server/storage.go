package server

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"expensetracker/internal/config"
	"expensetracker/internal/database"
	"expensetracker/internal/logger"
	"expensetracker/internal/repository"
)

// Storage bundles the repositories of one backend with its lifecycle hooks.
type Storage struct {
	Driver   string
	Users    repository.UserRepository
	Expenses repository.ExpenseRepository

	ping  func(ctx context.Context) error
	close func() error
}

// OpenStorage opens and migrates the backend named by cfg.StorageDriver.
func OpenStorage(cfg *config.Config) (*Storage, error) {
	if cfg.StorageDriver == config.DriverJSON {
		store, err := repository.OpenFileStore(cfg.JSONStorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open json store: %w", err)
		}
		logger.Get().Infow("Using JSON file storage", "path", cfg.JSONStorePath)
		return NewFileStorage(store), nil
	}

	manager, err := database.NewManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := manager.Migrate(); err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	s := NewGormStorage(cfg.StorageDriver, manager.DB())
	s.ping = manager.Ping
	s.close = manager.Close
	return s, nil
}

// NewGormStorage wraps an already migrated gorm connection.
func NewGormStorage(driver string, db *gorm.DB) *Storage {
	return &Storage{
		Driver:   driver,
		Users:    repository.NewGormUserRepository(db),
		Expenses: repository.NewGormExpenseRepository(db),
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func() error { return nil },
	}
}

// NewFileStorage wraps a JSON file store.
func NewFileStorage(store *repository.FileStore) *Storage {
	return &Storage{
		Driver:   config.DriverJSON,
		Users:    store.Users(),
		Expenses: store.Expenses(),
		ping:     func(context.Context) error { return nil },
		close:    func() error { return nil },
	}
}

// Ping reports whether the backend is reachable.
func (s *Storage) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close releases the backend.
func (s *Storage) Close() error { return s.close() }
