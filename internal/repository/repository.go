package repository

import (
	"context"
	"time"

	"hr-onboarding-backend/internal/domain"
)

// TxManager runs fn inside one database transaction. Repositories called with
// the context passed to fn join that transaction. Nested calls reuse it.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Update writes profile and work authorization fields.
	Update(ctx context.Context, user *domain.User) error
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	Search(ctx context.Context, query string) ([]domain.User, error)
}

type OnboardingRepository interface {
	// CreateIfAbsent inserts app with its history unless the user already has
	// one. It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, app *domain.OnboardingApplication) (bool, error)
	GetByID(ctx context.Context, id int32) (*domain.OnboardingApplication, error)
	GetByUserID(ctx context.Context, userID int32) (*domain.OnboardingApplication, error)
	// Update saves app only if the stored version still equals expectedVersion,
	// otherwise it fails with domain.ErrOptimisticLockConflict.
	Update(ctx context.Context, app *domain.OnboardingApplication, expectedVersion int32) error
	AppendHistory(ctx context.Context, applicationID int32, entry domain.HistoryEntry) error
	// List returns applications without history, optionally filtered by status.
	List(ctx context.Context, status *domain.ApplicationStatus) ([]domain.OnboardingApplication, error)
}

type DocumentRepository interface {
	EnsureBaseline(ctx context.Context, userID int32, types []domain.DocumentType) error
	// Upsert writes the active document for (UserID, Type), creating it if needed.
	Upsert(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id int32) (*domain.Document, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.Document, error)
	ListByCategory(ctx context.Context, category domain.DocumentCategory) ([]domain.Document, error)
	// UpdateReview saves a review decision only while the document is still pending.
	UpdateReview(ctx context.Context, doc *domain.Document) error
	SoftDelete(ctx context.Context, id int32, at time.Time) error
}

type RegistrationTokenRepository interface {
	// ExpireActiveForEmail serializes on the email and expires every active token for it.
	ExpireActiveForEmail(ctx context.Context, email string, now time.Time) error
	Create(ctx context.Context, token *domain.RegistrationToken) error
	GetByHash(ctx context.Context, tokenHash string) (*domain.RegistrationToken, error)
	MarkUsed(ctx context.Context, id, userID int32, now time.Time) error
	List(ctx context.Context) ([]domain.InvitationRecord, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
