package service

import (
	"context"
	"testing"

	"hr-onboarding-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type onboardingFixture struct {
	tx       *fakeTx
	appRepo  *MockOnboardingRepo
	docRepo  *MockDocumentRepo
	userRepo *MockUserRepo
	sink     *recordingSink
	svc      *onboardingService
}

func newOnboardingFixture() *onboardingFixture {
	f := &onboardingFixture{
		tx:       &fakeTx{},
		appRepo:  new(MockOnboardingRepo),
		docRepo:  new(MockDocumentRepo),
		userRepo: new(MockUserRepo),
		sink:     &recordingSink{},
	}
	f.svc = NewOnboardingService(f.tx, f.appRepo, f.docRepo, f.userRepo, f.sink).(*onboardingService)
	f.svc.now = fixedClock
	return f
}

func TestOnboardingService_GetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newOnboardingFixture()
		app := domain.NewOnboardingApplication(7, testNow)
		app.ID = 3
		f.userRepo.On("GetByID", mock.Anything, int32(7)).Return(&domain.User{ID: 7}, nil)
		f.appRepo.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(a *domain.OnboardingApplication) bool {
			return a.UserID == 7 && a.Version == 0 && len(a.History) == 1 &&
				a.History[0].Action == domain.HistoryActionStarted
		})).Return(true, nil)
		f.docRepo.On("EnsureBaseline", mock.Anything, int32(7), domain.BaselineDocumentTypes).Return(nil)
		f.appRepo.On("GetByUserID", mock.Anything, int32(7)).Return(app, nil)

		got, err := f.svc.GetOrCreate(ctx, empCaller, 7)
		require.NoError(t, err)
		assert.Equal(t, app, got)
		assert.Equal(t, 1, f.tx.calls)
		f.appRepo.AssertExpectations(t)
		f.docRepo.AssertExpectations(t)
	})

	t.Run("Existing", func(t *testing.T) {
		f := newOnboardingFixture()
		app := domain.NewOnboardingApplication(7, testNow)
		app.Status = domain.ApplicationStatusPending
		f.userRepo.On("GetByID", mock.Anything, int32(7)).Return(&domain.User{ID: 7}, nil)
		f.appRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, nil)
		f.docRepo.On("EnsureBaseline", mock.Anything, int32(7), mock.Anything).Return(nil)
		f.appRepo.On("GetByUserID", mock.Anything, int32(7)).Return(app, nil)

		got, err := f.svc.GetOrCreate(ctx, hrCaller, 7)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusPending, got.Status)
	})

	t.Run("Forbidden", func(t *testing.T) {
		f := newOnboardingFixture()
		_, err := f.svc.GetOrCreate(ctx, domain.Caller{UserID: 8, Role: domain.RoleEmployee}, 7)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		f.appRepo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	})

	t.Run("UnknownEmployee", func(t *testing.T) {
		f := newOnboardingFixture()
		f.userRepo.On("GetByID", mock.Anything, int32(99)).Return(nil, domain.ErrNotFound)
		_, err := f.svc.GetOrCreate(ctx, hrCaller, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestOnboardingService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newOnboardingFixture()
		app := domain.NewOnboardingApplication(7, testNow)
		app.ID = 3
		f.appRepo.On("GetByUserID", mock.Anything, int32(7)).Return(app, nil)
		f.appRepo.On("Update", mock.Anything, app, int32(0)).Return(nil)
		f.appRepo.On("AppendHistory", mock.Anything, int32(3), mock.MatchedBy(func(e domain.HistoryEntry) bool {
			return e.Status == domain.ApplicationStatusPending && e.Action == domain.HistoryActionSubmission
		})).Return(nil)

		got, err := f.svc.Submit(ctx, empCaller, validForm(), 0)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusPending, got.Status)
		assert.Equal(t, int32(1), got.Version)
		assert.Equal(t, "Ada", got.FormData.String(domain.FieldFirstName))
		assert.Equal(t, domain.ApplicationStatusPending, got.LastHistory().Status)
		f.appRepo.AssertExpectations(t)
	})

	t.Run("InvalidForm", func(t *testing.T) {
		f := newOnboardingFixture()
		form := validForm()
		delete(form.Fields, domain.FieldLastName)

		_, err := f.svc.Submit(ctx, empCaller, form, 0)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, 0, f.tx.calls)
	})

	t.Run("StaleVersion", func(t *testing.T) {
		f := newOnboardingFixture()
		app := domain.NewOnboardingApplication(7, testNow)
		app.Version = 2
		app.Status = domain.ApplicationStatusRejected
		f.appRepo.On("GetByUserID", mock.Anything, int32(7)).Return(app, nil)

		_, err := f.svc.Submit(ctx, empCaller, validForm(), 1)
		assert.ErrorIs(t, err, domain.ErrOptimisticLockConflict)
		f.appRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentWriterWins", func(t *testing.T) {
		f := newOnboardingFixture()
		app := domain.NewOnboardingApplication(7, testNow)
		f.appRepo.On("GetByUserID", mock.Anything, int32(7)).Return(app, nil)
		f.appRepo.On("Update", mock.Anything, mock.Anything, int32(0)).Return(domain.ErrOptimisticLockConflict)

		_, err := f.svc.Submit(ctx, empCaller, validForm(), 0)
		assert.ErrorIs(t, err, domain.ErrOptimisticLockConflict)
		f.appRepo.AssertNotCalled(t, "AppendHistory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AlreadyPending", func(t *testing.T) {
		f := newOnboardingFixture()
		app := domain.NewOnboardingApplication(7, testNow)
		app.Status = domain.ApplicationStatusPending
		f.appRepo.On("GetByUserID", mock.Anything, int32(7)).Return(app, nil)

		_, err := f.svc.Submit(ctx, empCaller, validForm(), 0)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func pendingApplication() *domain.OnboardingApplication {
	app := domain.NewOnboardingApplication(7, testNow)
	app.ID = 3
	if err := app.Submit(validForm(), 0, testNow); err != nil {
		panic(err)
	}
	return app
}

func TestOnboardingService_Review(t *testing.T) {
	ctx := context.Background()

	t.Run("ApprovePromotesProfile", func(t *testing.T) {
		f := newOnboardingFixture()
		app := pendingApplication()
		user := &domain.User{ID: 7, Username: "ada", Email: "ada@example.com"}
		f.appRepo.On("GetByID", mock.Anything, int32(3)).Return(app, nil)
		f.appRepo.On("Update", mock.Anything, app, int32(1)).Return(nil)
		f.appRepo.On("AppendHistory", mock.Anything, int32(3), mock.MatchedBy(func(e domain.HistoryEntry) bool {
			return e.Status == domain.ApplicationStatusApproved && e.Action == "HR Review: approved"
		})).Return(nil)
		f.userRepo.On("GetByID", mock.Anything, int32(7)).Return(user, nil)
		f.userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Profile.FirstName == "Ada" && u.WorkAuthorization.AuthType == domain.WorkAuthOPT &&
				u.WorkAuthorization.EndDate != nil
		})).Return(nil)

		got, err := f.svc.Review(ctx, hrCaller, 3, domain.ApplicationStatusApproved, "")
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusApproved, got.Status)
		assert.Equal(t, int32(2), got.Version)
		require.NotNil(t, got.ReviewedBy)
		assert.Equal(t, int32(1), *got.ReviewedBy)

		notes := f.sink.emitted()
		require.Len(t, notes, 1)
		assert.Equal(t, domain.NotificationOnboardingApproved, notes[0].Kind)
		assert.Equal(t, int32(7), notes[0].UserID)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("RejectKeepsProfile", func(t *testing.T) {
		f := newOnboardingFixture()
		app := pendingApplication()
		f.appRepo.On("GetByID", mock.Anything, int32(3)).Return(app, nil)
		f.appRepo.On("Update", mock.Anything, app, int32(1)).Return(nil)
		f.appRepo.On("AppendHistory", mock.Anything, int32(3), mock.Anything).Return(nil)

		got, err := f.svc.Review(ctx, hrCaller, 3, domain.ApplicationStatusRejected, "Missing SSN card")
		require.NoError(t, err)
		assert.Equal(t, "Missing SSN card", got.HRFeedback)
		f.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

		notes := f.sink.emitted()
		require.Len(t, notes, 1)
		assert.Equal(t, domain.NotificationOnboardingRejected, notes[0].Kind)
		assert.Equal(t, "Missing SSN card", notes[0].Message)
	})

	t.Run("EmployeeForbidden", func(t *testing.T) {
		f := newOnboardingFixture()
		_, err := f.svc.Review(ctx, empCaller, 3, domain.ApplicationStatusApproved, "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Empty(t, f.sink.emitted())
	})

	t.Run("AlreadyApproved", func(t *testing.T) {
		f := newOnboardingFixture()
		app := pendingApplication()
		app.Status = domain.ApplicationStatusApproved
		f.appRepo.On("GetByID", mock.Anything, int32(3)).Return(app, nil)

		_, err := f.svc.Review(ctx, hrCaller, 3, domain.ApplicationStatusRejected, "")
		assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
		assert.Empty(t, f.sink.emitted())
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newOnboardingFixture()
		f.appRepo.On("GetByID", mock.Anything, int32(404)).Return(nil, domain.ErrNotFound)

		_, err := f.svc.Review(ctx, hrCaller, 404, domain.ApplicationStatusApproved, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("PromotionFailureEmitsNothing", func(t *testing.T) {
		f := newOnboardingFixture()
		app := pendingApplication()
		f.appRepo.On("GetByID", mock.Anything, int32(3)).Return(app, nil)
		f.appRepo.On("Update", mock.Anything, app, int32(1)).Return(nil)
		f.appRepo.On("AppendHistory", mock.Anything, int32(3), mock.Anything).Return(nil)
		f.userRepo.On("GetByID", mock.Anything, int32(7)).Return(&domain.User{ID: 7}, nil)
		f.userRepo.On("Update", mock.Anything, mock.Anything).Return(assert.AnError)

		_, err := f.svc.Review(ctx, hrCaller, 3, domain.ApplicationStatusApproved, "")
		assert.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, f.sink.emitted())
	})
}

func TestOnboardingService_ListForHR(t *testing.T) {
	f := newOnboardingFixture()
	pending := *pendingApplication()
	rejected := *pendingApplication()
	rejected.UserID = 8
	rejected.Status = domain.ApplicationStatusRejected
	fresh := *domain.NewOnboardingApplication(9, testNow)

	f.appRepo.On("List", mock.Anything, (*domain.ApplicationStatus)(nil)).
		Return([]domain.OnboardingApplication{pending, rejected, fresh}, nil)
	f.userRepo.On("ListByRole", mock.Anything, domain.RoleEmployee).Return([]domain.User{
		{ID: 7, Username: "ada", Email: "ada@example.com", Profile: domain.Profile{FirstName: "Ada", LastName: "Lovelace"}},
		{ID: 8, Username: "bob", Email: "bob@example.com"},
	}, nil)

	groups, err := f.svc.ListForHR(context.Background(), hrCaller)
	require.NoError(t, err)
	require.Len(t, groups.Pending, 1)
	assert.Equal(t, "Ada Lovelace", groups.Pending[0].EmployeeName)
	require.Len(t, groups.Rejected, 1)
	assert.Equal(t, "bob", groups.Rejected[0].EmployeeName)
	assert.Empty(t, groups.Approved)

	_, err = f.svc.ListForHR(context.Background(), empCaller)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
