package service

import (
	"context"
	"testing"
	"time"

	"hr-onboarding-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestVisaOverviewService_GetVisaOverview(t *testing.T) {
	userRepo := new(MockUserRepo)
	appRepo := new(MockOnboardingRepo)
	docRepo := new(MockDocumentRepo)
	svc := NewVisaOverviewService(userRepo, appRepo, docRepo).(*visaOverviewService)
	svc.now = fixedClock

	end := time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC)
	opt := domain.WorkAuthorization{AuthType: domain.WorkAuthOPT, EndDate: &end}
	userRepo.On("ListByRole", mock.Anything, domain.RoleEmployee).Return([]domain.User{
		{ID: 9, Username: "done", WorkAuthorization: opt},
		{ID: 7, Username: "ada", WorkAuthorization: opt},
		{ID: 8, Username: "citizen", WorkAuthorization: domain.WorkAuthorization{AuthType: domain.WorkAuthCitizen}},
		{ID: 10, Username: "new", WorkAuthorization: opt},
	}, nil)
	appRepo.On("List", mock.Anything, (*domain.ApplicationStatus)(nil)).Return([]domain.OnboardingApplication{
		{ID: 1, UserID: 7, Status: domain.ApplicationStatusApproved},
		{ID: 2, UserID: 8, Status: domain.ApplicationStatusApproved},
		{ID: 3, UserID: 9, Status: domain.ApplicationStatusApproved},
	}, nil)

	var done []domain.Document
	for i, step := range domain.VisaFlow {
		d := visaDoc(int32(100+i), step, domain.DocumentStatusApproved)
		d.UserID = 9
		done = append(done, d)
	}
	docRepo.On("ListByCategory", mock.Anything, domain.DocumentCategoryVisa).Return(append([]domain.Document{
		visaDoc(20, domain.DocumentOPTReceipt, domain.DocumentStatusPending),
	}, done...), nil)

	overview, err := svc.GetVisaOverview(context.Background(), hrCaller)
	require.NoError(t, err)
	require.Len(t, overview.All, 3)
	assert.Equal(t, int32(7), overview.All[0].EmployeeID)
	assert.Equal(t, "OPT Receipt Pending Approval", overview.All[0].CurrentStep)
	assert.Equal(t, domain.ActionReview, overview.All[0].ActionType)
	require.NotNil(t, overview.All[0].DaysRemaining)
	assert.Equal(t, 30, *overview.All[0].DaysRemaining)

	assert.Equal(t, int32(9), overview.All[1].EmployeeID)
	assert.Equal(t, domain.StepAllApproved, overview.All[1].CurrentStep)
	assert.Len(t, overview.All[1].ApprovedDocuments, 4)

	assert.Equal(t, int32(10), overview.All[2].EmployeeID)
	assert.Equal(t, domain.StepOnboardingNotApproved, overview.All[2].CurrentStep)

	require.Len(t, overview.InProgress, 2)
	assert.Equal(t, int32(7), overview.InProgress[0].EmployeeID)
	assert.Equal(t, int32(10), overview.InProgress[1].EmployeeID)

	_, err = svc.GetVisaOverview(context.Background(), empCaller)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
