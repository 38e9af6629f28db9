package service

import (
	"context"
	"time"

	"hr-onboarding-backend/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type OnboardingService interface {
	// GetOrCreate returns the employee's application, creating it and the
	// baseline documents on first access.
	GetOrCreate(ctx context.Context, caller domain.Caller, employeeID int32) (*domain.OnboardingApplication, error)
	Submit(ctx context.Context, caller domain.Caller, form domain.FormData, expectedVersion int32) (*domain.OnboardingApplication, error)
	Review(ctx context.Context, caller domain.Caller, applicationID int32, decision domain.ApplicationStatus, feedback string) (*domain.OnboardingApplication, error)
	ListForHR(ctx context.Context, caller domain.Caller) (*ApplicationGroups, error)
	GetForHR(ctx context.Context, caller domain.Caller, applicationID int32) (*ApplicationDetail, error)
}

type DocumentService interface {
	CanUpload(ctx context.Context, caller domain.Caller, employeeID int32, docType domain.DocumentType) error
	RequestUpload(ctx context.Context, caller domain.Caller, docType domain.DocumentType, fileName, contentType string) (*UploadTicket, error)
	CompleteUpload(ctx context.Context, caller domain.Caller, docType domain.DocumentType, fileName, key string) (*domain.Document, error)
	ReviewDocument(ctx context.Context, caller domain.Caller, documentID int32, decision domain.DocumentStatus, feedback string) (*domain.Document, error)
	ListDocuments(ctx context.Context, caller domain.Caller, employeeID int32) ([]domain.Document, error)
	DownloadURL(ctx context.Context, caller domain.Caller, documentID int32) (string, time.Time, error)
	DeleteDocument(ctx context.Context, caller domain.Caller, documentID int32) error
	// NotifyNextStep reminds the employee to upload the visa document their pipeline is waiting on.
	NotifyNextStep(ctx context.Context, caller domain.Caller, employeeID int32) (domain.DocumentType, error)
}

type VisaOverviewService interface {
	GetVisaOverview(ctx context.Context, caller domain.Caller) (*domain.VisaOverview, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type InvitationService interface {
	CreateInvitation(ctx context.Context, caller domain.Caller, email, name string) (*Invitation, error)
	ListInvitations(ctx context.Context, caller domain.Caller) ([]domain.InvitationRecord, error)
	PurgeExpired(ctx context.Context, retention time.Duration) (int64, error)
}

type AuthService interface {
	ValidateRegistrationToken(ctx context.Context, rawToken string) (*domain.RegistrationToken, error)
	Register(ctx context.Context, rawToken, username, password string) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, login, password string) (*domain.User, *TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type UserService interface {
	GetProfile(ctx context.Context, caller domain.Caller, userID int32) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller domain.Caller, userID int32, patch domain.Patch) (*domain.User, error)
	ListEmployees(ctx context.Context, caller domain.Caller, query string) ([]domain.User, error)
}

// NotificationSink receives notifications after the state change they describe has committed.
type NotificationSink interface {
	Emit(ctx context.Context, n domain.Notification)
}

// EmailSender delivers one plain-text message.
type EmailSender interface {
	Send(ctx context.Context, to, toName, subject, body string) error
}

type ApplicationSummary struct {
	Application  domain.OnboardingApplication `json:"application"`
	Username     string                       `json:"username"`
	Email        string                       `json:"email"`
	EmployeeName string                       `json:"employee_name"`
}

type ApplicationGroups struct {
	Pending  []ApplicationSummary `json:"pending"`
	Approved []ApplicationSummary `json:"approved"`
	Rejected []ApplicationSummary `json:"rejected"`
}

type ApplicationDetail struct {
	Application *domain.OnboardingApplication `json:"application"`
	Employee    *domain.User                  `json:"employee"`
	Documents   []domain.Document             `json:"documents"`
}

type UploadTicket struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Invitation is a freshly issued registration token. RawToken is only ever
// available here; the store keeps its hash.
type Invitation struct {
	Token    domain.RegistrationToken `json:"token"`
	RawToken string                   `json:"-"`
	Link     string                   `json:"link"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

var tracer = otel.Tracer("hr-onboarding-backend/internal/service")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span before ending it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
