package http

import (
	"context"
	"net/http"
	"time"

	"hr-onboarding-backend/internal/config"
	"hr-onboarding-backend/internal/security"
	"hr-onboarding-backend/internal/service"
	"hr-onboarding-backend/internal/storage"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth          service.AuthService
	User          service.UserService
	Onboarding    service.OnboardingService
	Document      service.DocumentService
	VisaOverview  service.VisaOverviewService
	Notification  service.NotificationService
	Invitation    service.InvitationService
	HealthChecker HealthChecker
}

// HealthChecker is satisfied by *sql.DB.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterOptions configures optional routes.
type RouterOptions struct {
	// MockStorage enables the local upload/download endpoints behind mock presigned URLs.
	MockStorage  *storage.MockStorageService
	MaxFileBytes int64
}

// NewRouter registers every API route under /api/v1. Route names key the security level table.
func NewRouter(svcs Services, tm security.TokenManager, opts RouterOptions) *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(LoggingMiddleware, NewAuthMiddleware(tm).Handler)

	authH := NewAuthHandler(svcs.Auth)
	userH := NewUserHandler(svcs.User)
	onboardingH := NewOnboardingHandler(svcs.Onboarding)
	documentH := NewDocumentHandler(svcs.Document)
	hrH := NewHRHandler(svcs.VisaOverview, svcs.Invitation)
	noteH := NewNotificationHandler(svcs.Notification)

	api.HandleFunc("/health", healthHandler(svcs.HealthChecker)).Methods(http.MethodGet).Name(config.RouteHealth)

	api.HandleFunc("/auth/login", authH.Login).Methods(http.MethodPost).Name(config.RouteLogin)
	api.HandleFunc("/auth/refresh", authH.Refresh).Methods(http.MethodPost).Name(config.RouteRefresh)
	api.HandleFunc("/auth/registration-token", authH.ValidateRegistrationToken).Methods(http.MethodGet).Name(config.RouteValidateToken)
	api.HandleFunc("/auth/register", authH.Register).Methods(http.MethodPost).Name(config.RouteRegister)

	api.HandleFunc("/me", userH.Me).Methods(http.MethodGet).Name(config.RouteMe)
	api.HandleFunc("/me/profile", userH.UpdateProfile).Methods(http.MethodPatch).Name(config.RouteUpdateProfile)

	api.HandleFunc("/onboarding", onboardingH.GetMine).Methods(http.MethodGet).Name(config.RouteMyOnboarding)
	api.HandleFunc("/onboarding", onboardingH.Submit).Methods(http.MethodPut).Name(config.RouteSubmitOnboarding)

	api.HandleFunc("/documents", documentH.ListMine).Methods(http.MethodGet).Name(config.RouteMyDocuments)
	api.HandleFunc("/documents", documentH.CompleteUpload).Methods(http.MethodPost).Name(config.RouteCompleteUpload)
	api.HandleFunc("/documents/can-upload", documentH.CanUpload).Methods(http.MethodGet).Name(config.RouteCanUpload)
	api.HandleFunc("/documents/upload-url", documentH.RequestUpload).Methods(http.MethodPost).Name(config.RouteRequestUpload)
	api.HandleFunc("/documents/{id:[0-9]+}/download-url", documentH.DownloadURL).Methods(http.MethodGet).Name(config.RouteDownloadURL)
	api.HandleFunc("/documents/{id:[0-9]+}", documentH.Delete).Methods(http.MethodDelete).Name(config.RouteDeleteDocument)

	api.HandleFunc("/notifications", noteH.List).Methods(http.MethodGet).Name(config.RouteNotifications)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", noteH.MarkRead).Methods(http.MethodPost).Name(config.RouteMarkNotification)

	api.HandleFunc("/hr/applications", onboardingH.List).Methods(http.MethodGet).Name(config.RouteHRApplications)
	api.HandleFunc("/hr/applications/{id:[0-9]+}", onboardingH.Get).Methods(http.MethodGet).Name(config.RouteHRApplication)
	api.HandleFunc("/hr/applications/{id:[0-9]+}/review", onboardingH.Review).Methods(http.MethodPost).Name(config.RouteHRReviewApplication)
	api.HandleFunc("/hr/documents/{id:[0-9]+}/review", documentH.Review).Methods(http.MethodPost).Name(config.RouteHRReviewDocument)
	api.HandleFunc("/hr/visa-overview", hrH.VisaOverview).Methods(http.MethodGet).Name(config.RouteHRVisaOverview)
	api.HandleFunc("/hr/employees", userH.ListEmployees).Methods(http.MethodGet).Name(config.RouteHREmployees)
	api.HandleFunc("/hr/employees/{id:[0-9]+}/documents", documentH.ListForEmployee).Methods(http.MethodGet).Name(config.RouteHREmployeeDocuments)
	api.HandleFunc("/hr/employees/{id:[0-9]+}/onboarding", onboardingH.GetForEmployee).Methods(http.MethodGet).Name(config.RouteHREmployeeOnboard)
	api.HandleFunc("/hr/employees/{id:[0-9]+}/notify", documentH.NotifyNextStep).Methods(http.MethodPost).Name(config.RouteHRNotifyNextStep)
	api.HandleFunc("/hr/invitations", hrH.CreateInvitation).Methods(http.MethodPost).Name(config.RouteHRCreateInvitation)
	api.HandleFunc("/hr/invitations", hrH.ListInvitations).Methods(http.MethodGet).Name(config.RouteHRInvitations)

	if opts.MockStorage != nil {
		storageH := NewStorageHandler(opts.MockStorage, opts.MaxFileBytes)
		api.HandleFunc("/upload/{token}", storageH.HandleUpload).Methods(http.MethodPut).Name(config.RouteStorageUpload)
		api.HandleFunc("/download", storageH.HandleDownload).Methods(http.MethodGet).Name(config.RouteStorageDownload)
	}

	return router
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// NewServer wraps handler with request tracing and returns an http.Server bound to addr.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(handler, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
