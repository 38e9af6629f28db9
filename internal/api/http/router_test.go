package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/security"
	"hr-onboarding-backend/internal/service"
	"hr-onboarding-backend/internal/storage"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router      *mux.Router
	tm          security.TokenManager
	auth        *MockAuthService
	users       *MockUserService
	onboarding  *MockOnboardingService
	documents   *MockDocumentService
	overview    *MockVisaOverviewService
	notes       *MockNotificationService
	invitations *MockInvitationService
	mockStorage *storage.MockStorageService
}

var (
	employee = domain.Caller{UserID: 7, Role: domain.RoleEmployee}
	hr       = domain.Caller{UserID: 1, Role: domain.RoleHR}
)

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store, err := storage.NewMockStorageService("", t.TempDir())
	require.NoError(t, err)

	a := &testAPI{
		tm:          security.NewTokenManager("test-secret", 15*time.Minute, time.Hour),
		auth:        new(MockAuthService),
		users:       new(MockUserService),
		onboarding:  new(MockOnboardingService),
		documents:   new(MockDocumentService),
		overview:    new(MockVisaOverviewService),
		notes:       new(MockNotificationService),
		invitations: new(MockInvitationService),
		mockStorage: store,
	}
	a.router = NewRouter(Services{
		Auth:         a.auth,
		User:         a.users,
		Onboarding:   a.onboarding,
		Document:     a.documents,
		VisaOverview: a.overview,
		Notification: a.notes,
		Invitation:   a.invitations,
	}, a.tm, RouterOptions{MockStorage: store, MaxFileBytes: 1024})
	return a
}

func (a *testAPI) accessToken(t *testing.T, c domain.Caller) string {
	t.Helper()
	tok, err := a.tm.GenerateAccessToken(c.UserID, "user@example.com", c.Role)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("PublicRouteNeedsNoToken", func(t *testing.T) {
		a := newTestAPI(t)
		rec := a.do(t, http.MethodGet, "/api/v1/health", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MissingToken", func(t *testing.T) {
		a := newTestAPI(t)
		rec := a.do(t, http.MethodGet, "/api/v1/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		a := newTestAPI(t)
		rec := a.do(t, http.MethodGet, "/api/v1/me", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("RefreshTokenOnAccessRoute", func(t *testing.T) {
		a := newTestAPI(t)
		refresh, err := a.tm.GenerateRefreshToken(7, "ada@example.com", domain.RoleEmployee)
		require.NoError(t, err)
		rec := a.do(t, http.MethodGet, "/api/v1/me", refresh, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("EmployeeOnHRRoute", func(t *testing.T) {
		a := newTestAPI(t)
		rec := a.do(t, http.MethodGet, "/api/v1/hr/visa-overview", a.accessToken(t, employee), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		a.overview.AssertNotCalled(t, "GetVisaOverview", mock.Anything, mock.Anything)
	})

	t.Run("CallerReachesService", func(t *testing.T) {
		a := newTestAPI(t)
		a.users.On("GetProfile", mock.Anything, employee, int32(7)).Return(&domain.User{ID: 7, Username: "ada"}, nil)

		rec := a.do(t, http.MethodGet, "/api/v1/me", a.accessToken(t, employee), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var user domain.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, "ada", user.Username)
		a.users.AssertExpectations(t)
	})
}

func TestAuthHandler(t *testing.T) {
	t.Run("Login", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Login", mock.Anything, "ada", "s3cret-pass").
			Return(&domain.User{ID: 7}, &service.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil)

		rec := a.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Login: "ada", Password: "s3cret-pass"})
		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "a", body["access_token"])
		assert.Equal(t, "r", body["refresh_token"])
	})

	t.Run("BadCredentials", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Login", mock.Anything, "ada", "wrong").Return(nil, nil, service.ErrInvalidCredentials)
		rec := a.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Login: "ada", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("RefreshPassesRawToken", func(t *testing.T) {
		a := newTestAPI(t)
		refresh, err := a.tm.GenerateRefreshToken(7, "ada@example.com", domain.RoleEmployee)
		require.NoError(t, err)
		a.auth.On("RefreshToken", mock.Anything, refresh).Return(&service.TokenPair{AccessToken: "a2"}, nil)

		rec := a.do(t, http.MethodPost, "/api/v1/auth/refresh", refresh, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		a.auth.AssertExpectations(t)
	})

	t.Run("RegisterWithUsedToken", func(t *testing.T) {
		a := newTestAPI(t)
		a.auth.On("Register", mock.Anything, "tok", "ada", "s3cret-pass").Return(nil, nil, domain.ErrTokenInvalid)
		rec := a.do(t, http.MethodPost, "/api/v1/auth/register", "", registerRequest{Token: "tok", Username: "ada", Password: "s3cret-pass"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOnboardingHandler_Submit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		a := newTestAPI(t)
		a.onboarding.On("Submit", mock.Anything, employee, mock.MatchedBy(func(f domain.FormData) bool {
			return f.String(domain.FieldFirstName) == "Ada"
		}), int32(2)).Return(&domain.OnboardingApplication{ID: 3, Status: domain.ApplicationStatusPending, Version: 3}, nil)

		rec := a.do(t, http.MethodPut, "/api/v1/onboarding", a.accessToken(t, employee), map[string]any{
			"expected_version": 2,
			"form_data":        map[string]any{"firstName": "Ada"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		a.onboarding.AssertExpectations(t)
	})

	t.Run("VersionConflict", func(t *testing.T) {
		a := newTestAPI(t)
		a.onboarding.On("Submit", mock.Anything, employee, mock.Anything, int32(1)).Return(nil, domain.ErrOptimisticLockConflict)

		rec := a.do(t, http.MethodPut, "/api/v1/onboarding", a.accessToken(t, employee), map[string]any{
			"expected_version": 1,
			"form_data":        map[string]any{},
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "version_conflict", decodeError(t, rec).Code)
	})

	t.Run("MissingVersion", func(t *testing.T) {
		a := newTestAPI(t)
		rec := a.do(t, http.MethodPut, "/api/v1/onboarding", a.accessToken(t, employee), map[string]any{
			"form_data": map[string]any{},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "expected_version", decodeError(t, rec).Field)
		a.onboarding.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOnboardingHandler_Review(t *testing.T) {
	a := newTestAPI(t)
	a.onboarding.On("Review", mock.Anything, hr, int32(3), domain.ApplicationStatusRejected, "Missing SSN").
		Return(&domain.OnboardingApplication{ID: 3, Status: domain.ApplicationStatusRejected}, nil)
	a.onboarding.On("Review", mock.Anything, hr, int32(4), domain.ApplicationStatusApproved, "").
		Return(nil, domain.ErrAlreadyFinalized)

	rec := a.do(t, http.MethodPost, "/api/v1/hr/applications/3/review", a.accessToken(t, hr), reviewRequest{Decision: "rejected", Feedback: "Missing SSN"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/hr/applications/4/review", a.accessToken(t, hr), reviewRequest{Decision: "approved"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_finalized", decodeError(t, rec).Code)
}

func TestDocumentHandler_CanUpload(t *testing.T) {
	a := newTestAPI(t)
	a.documents.On("CanUpload", mock.Anything, employee, int32(7), domain.DocumentOPTEAD).
		Return(&domain.OutOfOrderError{Requested: domain.DocumentOPTEAD, Required: domain.DocumentOPTReceipt})
	a.documents.On("CanUpload", mock.Anything, employee, int32(7), domain.DocumentOPTReceipt).Return(nil)
	a.documents.On("CanUpload", mock.Anything, employee, int32(7), domain.DocumentType("passport")).
		Return(domain.NewValidationError("type", "unknown document type"))

	var resp canUploadResponse
	rec := a.do(t, http.MethodGet, "/api/v1/documents/can-upload?type=opt_ead", a.accessToken(t, employee), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Allowed)
	assert.Contains(t, resp.Reason, "opt_receipt")

	rec = a.do(t, http.MethodGet, "/api/v1/documents/can-upload?type=opt_receipt", a.accessToken(t, employee), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)

	rec = a.do(t, http.MethodGet, "/api/v1/documents/can-upload?type=passport", a.accessToken(t, employee), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Delete(t *testing.T) {
	a := newTestAPI(t)
	a.documents.On("DeleteDocument", mock.Anything, employee, int32(11)).Return(nil)
	a.documents.On("DeleteDocument", mock.Anything, employee, int32(12)).
		Return(&domain.TransitionError{Subject: "document", From: "approved", To: "deleted"})

	rec := a.do(t, http.MethodDelete, "/api/v1/documents/11", a.accessToken(t, employee), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodDelete, "/api/v1/documents/12", a.accessToken(t, employee), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNotificationHandler_List(t *testing.T) {
	a := newTestAPI(t)
	a.notes.On("GetNotifications", mock.Anything, int32(7), int32(2), int32(5)).
		Return([]domain.Notification{{ID: 1}}, int32(6), nil)

	rec := a.do(t, http.MethodGet, "/api/v1/notifications?page=2&page_size=5", a.accessToken(t, employee), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp notificationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int32(6), resp.TotalCount)

	rec = a.do(t, http.MethodGet, "/api/v1/notifications?page=x", a.accessToken(t, employee), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHRHandler_CreateInvitation(t *testing.T) {
	a := newTestAPI(t)
	a.invitations.On("CreateInvitation", mock.Anything, hr, "new@example.com", "New Hire").Return(&service.Invitation{
		Token:    domain.RegistrationToken{ID: 9, Email: "new@example.com"},
		RawToken: "secret",
		Link:     "https://hr.example.com/register?token=secret",
	}, nil)

	rec := a.do(t, http.MethodPost, "/api/v1/hr/invitations", a.accessToken(t, hr), createInvitationRequest{Email: "new@example.com", Name: "New Hire"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "register?token=secret")
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.NewValidationError("f", "bad"), http.StatusBadRequest},
		{&domain.TransitionError{Subject: "application", From: "approved", To: "pending"}, http.StatusConflict},
		{domain.ErrOptimisticLockConflict, http.StatusConflict},
		{&domain.OutOfOrderError{Requested: domain.DocumentI20, Required: domain.DocumentI983}, http.StatusConflict},
		{domain.ErrAlreadyFinalized, http.StatusConflict},
		{domain.ErrDuplicate, http.StatusConflict},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrTokenInvalid, http.StatusUnauthorized},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := statusFor(tc.err)
		assert.Equal(t, tc.want, got, tc.err.Error())
	}
}
