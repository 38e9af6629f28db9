package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hr-onboarding-backend/internal/config"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/repository/postgres"
	"hr-onboarding-backend/internal/security"
	"hr-onboarding-backend/internal/service"
	"hr-onboarding-backend/internal/storage"
)

// App is the fully wired backend shared by the API server and the cron runner.
type App struct {
	Config       *config.Config
	DB           *sql.DB
	Store        *postgres.Store
	Tokens       security.TokenManager
	Storage      storage.DocumentStorage
	MockStorage  *storage.MockStorageService
	Dispatcher   *service.Dispatcher
	Auth         service.AuthService
	User         service.UserService
	Onboarding   service.OnboardingService
	Document     service.DocumentService
	VisaOverview service.VisaOverviewService
	Notification service.NotificationService
	Invitation   service.InvitationService
}

// Build connects to the database, applies migrations when enabled and constructs every service.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.Debug("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	db, err := postgres.Open(ctx, cfg.Database, cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, err
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("Database migrations applied")
	}

	docStorage, mockStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Document storage ready", "type", cfg.Storage.Type)

	email, err := service.NewEmailSender(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize email sender: %w", err)
	}
	logger.Info("Email sender ready", "provider", cfg.Email.Provider)

	store := postgres.NewStore(db)
	tokens := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)
	dispatcher := service.NewDispatcher(store.NotificationRepository, store.UserRepository, email, 0)

	return &App{
		Config:       cfg,
		DB:           db,
		Store:        store,
		Tokens:       tokens,
		Storage:      docStorage,
		MockStorage:  mockStorage,
		Dispatcher:   dispatcher,
		Auth:         service.NewAuthService(store.TxManager, store.UserRepository, store.RegistrationTokenRepository, tokens),
		User:         service.NewUserService(store.UserRepository),
		Onboarding:   service.NewOnboardingService(store.TxManager, store.OnboardingRepository, store.DocumentRepository, store.UserRepository, dispatcher),
		Document:     service.NewDocumentService(store.TxManager, store.DocumentRepository, store.OnboardingRepository, store.UserRepository, docStorage, dispatcher, cfg.Storage),
		VisaOverview: service.NewVisaOverviewService(store.UserRepository, store.OnboardingRepository, store.DocumentRepository),
		Notification: service.NewNotificationService(store.NotificationRepository),
		Invitation:   service.NewInvitationService(store.TxManager, store.RegistrationTokenRepository, store.UserRepository, email, cfg.Invitation),
	}, nil
}

// Close drains in-flight notifications and releases the database pool.
func (a *App) Close() {
	a.Dispatcher.Wait()
	if err := a.DB.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	}
}
