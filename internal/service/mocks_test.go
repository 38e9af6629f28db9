package service

import (
	"context"
	"sync"
	"time"

	"hr-onboarding-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// fakeTx runs fn inline; rollback is observed through the mocks not being called further.
type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserRepo) Search(ctx context.Context, query string) ([]domain.User, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockOnboardingRepo
type MockOnboardingRepo struct {
	mock.Mock
}

func (m *MockOnboardingRepo) CreateIfAbsent(ctx context.Context, app *domain.OnboardingApplication) (bool, error) {
	args := m.Called(ctx, app)
	return args.Bool(0), args.Error(1)
}
func (m *MockOnboardingRepo) GetByID(ctx context.Context, id int32) (*domain.OnboardingApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingApplication), args.Error(1)
}
func (m *MockOnboardingRepo) GetByUserID(ctx context.Context, userID int32) (*domain.OnboardingApplication, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingApplication), args.Error(1)
}
func (m *MockOnboardingRepo) Update(ctx context.Context, app *domain.OnboardingApplication, expectedVersion int32) error {
	args := m.Called(ctx, app, expectedVersion)
	return args.Error(0)
}
func (m *MockOnboardingRepo) AppendHistory(ctx context.Context, applicationID int32, entry domain.HistoryEntry) error {
	args := m.Called(ctx, applicationID, entry)
	return args.Error(0)
}
func (m *MockOnboardingRepo) List(ctx context.Context, status *domain.ApplicationStatus) ([]domain.OnboardingApplication, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.OnboardingApplication), args.Error(1)
}

// MockDocumentRepo
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) EnsureBaseline(ctx context.Context, userID int32, types []domain.DocumentType) error {
	args := m.Called(ctx, userID, types)
	return args.Error(0)
}
func (m *MockDocumentRepo) Upsert(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}
func (m *MockDocumentRepo) GetByID(ctx context.Context, id int32) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}
func (m *MockDocumentRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Document, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Document), args.Error(1)
}
func (m *MockDocumentRepo) ListByCategory(ctx context.Context, category domain.DocumentCategory) ([]domain.Document, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]domain.Document), args.Error(1)
}
func (m *MockDocumentRepo) UpdateReview(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}
func (m *MockDocumentRepo) SoftDelete(ctx context.Context, id int32, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockTokenRepo
type MockTokenRepo struct {
	mock.Mock
}

func (m *MockTokenRepo) ExpireActiveForEmail(ctx context.Context, email string, now time.Time) error {
	args := m.Called(ctx, email, now)
	return args.Error(0)
}
func (m *MockTokenRepo) Create(ctx context.Context, token *domain.RegistrationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
func (m *MockTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*domain.RegistrationToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistrationToken), args.Error(1)
}
func (m *MockTokenRepo) MarkUsed(ctx context.Context, id, userID int32, now time.Time) error {
	args := m.Called(ctx, id, userID, now)
	return args.Error(0)
}
func (m *MockTokenRepo) List(ctx context.Context) ([]domain.InvitationRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.InvitationRecord), args.Error(1)
}
func (m *MockTokenRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *MockStorage) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockEmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to, toName, subject, body string) error {
	args := m.Called(ctx, to, toName, subject, body)
	return args.Error(0)
}

// recordingSink captures emitted notifications synchronously.
type recordingSink struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func (r *recordingSink) Emit(ctx context.Context, n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingSink) emitted() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.notes...)
}

var (
	testNow    = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	hrCaller   = domain.Caller{UserID: 1, Role: domain.RoleHR}
	empCaller  = domain.Caller{UserID: 7, Role: domain.RoleEmployee}
	fixedClock = func() time.Time { return testNow }
)

func validForm() domain.FormData {
	return domain.FormDataFrom(map[string]any{
		domain.FieldFirstName:    "Ada",
		domain.FieldLastName:     "Lovelace",
		domain.FieldSSN:          "123-45-6789",
		domain.FieldDateOfBirth:  "1990-12-10",
		domain.FieldWorkAuthType: "opt",
		domain.FieldVisaStart:    "2025-01-01",
		domain.FieldVisaEnd:      "2026-01-01",
	})
}
