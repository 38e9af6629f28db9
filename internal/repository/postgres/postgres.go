package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hr-onboarding-backend/internal/config"
	"hr-onboarding-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	*TxManager
	repository.UserRepository
	repository.OnboardingRepository
	repository.DocumentRepository
	repository.RegistrationTokenRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                          db,
		TxManager:                   NewTxManager(db),
		UserRepository:              NewUserRepository(db),
		OnboardingRepository:        NewOnboardingRepository(db),
		DocumentRepository:          NewDocumentRepository(db),
		RegistrationTokenRepository: NewRegistrationTokenRepository(db),
		NotificationRepository:      NewNotificationRepository(db),
	}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// DB exposes the underlying pool for health checks and migrations.
func (s *Store) DB() *sql.DB {
	return s.db
}
