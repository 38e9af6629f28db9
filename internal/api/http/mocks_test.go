package http

import (
	"context"
	"time"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) ValidateRegistrationToken(ctx context.Context, rawToken string) (*domain.RegistrationToken, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistrationToken), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, rawToken, username, password string) (*domain.User, *service.TokenPair, error) {
	args := m.Called(ctx, rawToken, username, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(*service.TokenPair), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, login, password string) (*domain.User, *service.TokenPair, error) {
	args := m.Called(ctx, login, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(*service.TokenPair), args.Error(2)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

type MockOnboardingService struct{ mock.Mock }

func (m *MockOnboardingService) GetOrCreate(ctx context.Context, caller domain.Caller, employeeID int32) (*domain.OnboardingApplication, error) {
	args := m.Called(ctx, caller, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingApplication), args.Error(1)
}

func (m *MockOnboardingService) Submit(ctx context.Context, caller domain.Caller, form domain.FormData, expectedVersion int32) (*domain.OnboardingApplication, error) {
	args := m.Called(ctx, caller, form, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingApplication), args.Error(1)
}

func (m *MockOnboardingService) Review(ctx context.Context, caller domain.Caller, applicationID int32, decision domain.ApplicationStatus, feedback string) (*domain.OnboardingApplication, error) {
	args := m.Called(ctx, caller, applicationID, decision, feedback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingApplication), args.Error(1)
}

func (m *MockOnboardingService) ListForHR(ctx context.Context, caller domain.Caller) (*service.ApplicationGroups, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ApplicationGroups), args.Error(1)
}

func (m *MockOnboardingService) GetForHR(ctx context.Context, caller domain.Caller, applicationID int32) (*service.ApplicationDetail, error) {
	args := m.Called(ctx, caller, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ApplicationDetail), args.Error(1)
}

type MockDocumentService struct{ mock.Mock }

func (m *MockDocumentService) CanUpload(ctx context.Context, caller domain.Caller, employeeID int32, docType domain.DocumentType) error {
	args := m.Called(ctx, caller, employeeID, docType)
	return args.Error(0)
}

func (m *MockDocumentService) RequestUpload(ctx context.Context, caller domain.Caller, docType domain.DocumentType, fileName, contentType string) (*service.UploadTicket, error) {
	args := m.Called(ctx, caller, docType, fileName, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadTicket), args.Error(1)
}

func (m *MockDocumentService) CompleteUpload(ctx context.Context, caller domain.Caller, docType domain.DocumentType, fileName, key string) (*domain.Document, error) {
	args := m.Called(ctx, caller, docType, fileName, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ReviewDocument(ctx context.Context, caller domain.Caller, documentID int32, decision domain.DocumentStatus, feedback string) (*domain.Document, error) {
	args := m.Called(ctx, caller, documentID, decision, feedback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, caller domain.Caller, employeeID int32) ([]domain.Document, error) {
	args := m.Called(ctx, caller, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, caller domain.Caller, documentID int32) (string, time.Time, error) {
	args := m.Called(ctx, caller, documentID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, caller domain.Caller, documentID int32) error {
	args := m.Called(ctx, caller, documentID)
	return args.Error(0)
}

func (m *MockDocumentService) NotifyNextStep(ctx context.Context, caller domain.Caller, employeeID int32) (domain.DocumentType, error) {
	args := m.Called(ctx, caller, employeeID)
	return args.Get(0).(domain.DocumentType), args.Error(1)
}

type MockVisaOverviewService struct{ mock.Mock }

func (m *MockVisaOverviewService) GetVisaOverview(ctx context.Context, caller domain.Caller) (*domain.VisaOverview, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VisaOverview), args.Error(1)
}

type MockNotificationService struct{ mock.Mock }

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

type MockInvitationService struct{ mock.Mock }

func (m *MockInvitationService) CreateInvitation(ctx context.Context, caller domain.Caller, email, name string) (*service.Invitation, error) {
	args := m.Called(ctx, caller, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Invitation), args.Error(1)
}

func (m *MockInvitationService) ListInvitations(ctx context.Context, caller domain.Caller) ([]domain.InvitationRecord, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvitationRecord), args.Error(1)
}

func (m *MockInvitationService) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserService struct{ mock.Mock }

func (m *MockUserService) GetProfile(ctx context.Context, caller domain.Caller, userID int32) (*domain.User, error) {
	args := m.Called(ctx, caller, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, caller domain.Caller, userID int32, patch domain.Patch) (*domain.User, error) {
	args := m.Called(ctx, caller, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ListEmployees(ctx context.Context, caller domain.Caller, query string) ([]domain.User, error) {
	args := m.Called(ctx, caller, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}
