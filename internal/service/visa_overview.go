package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/repository"
)

type visaOverviewService struct {
	userRepo repository.UserRepository
	appRepo  repository.OnboardingRepository
	docRepo  repository.DocumentRepository
	now      func() time.Time
}

func NewVisaOverviewService(
	userRepo repository.UserRepository,
	appRepo repository.OnboardingRepository,
	docRepo repository.DocumentRepository,
) VisaOverviewService {
	return &visaOverviewService{
		userRepo: userRepo,
		appRepo:  appRepo,
		docRepo:  docRepo,
		now:      time.Now,
	}
}

func (s *visaOverviewService) GetVisaOverview(ctx context.Context, caller domain.Caller) (overview *domain.VisaOverview, err error) {
	ctx, span := startSpan(ctx, "VisaOverviewService.GetVisaOverview")
	defer func() { endSpan(span, err) }()

	if err := caller.RequireHR(); err != nil {
		return nil, err
	}
	inputs, err := collectOverviewInputs(ctx, s.userRepo, s.appRepo, s.docRepo)
	if err != nil {
		return nil, err
	}
	result := domain.BuildVisaOverview(inputs, s.now())
	return &result, nil
}

// collectOverviewInputs gathers every employee with the applications and
// visa documents the projector reads, ordered by employee ID.
func collectOverviewInputs(ctx context.Context, userRepo repository.UserRepository, appRepo repository.OnboardingRepository, docRepo repository.DocumentRepository) ([]domain.OverviewInput, error) {
	employees, err := userRepo.ListByRole(ctx, domain.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	apps, err := appRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	docs, err := docRepo.ListByCategory(ctx, domain.DocumentCategoryVisa)
	if err != nil {
		return nil, fmt.Errorf("failed to list visa documents: %w", err)
	}

	appsByUser := make(map[int32]domain.OnboardingApplication, len(apps))
	for _, app := range apps {
		appsByUser[app.UserID] = app
	}
	docsByUser := make(map[int32][]domain.Document)
	for _, d := range docs {
		docsByUser[d.UserID] = append(docsByUser[d.UserID], d)
	}

	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })
	inputs := make([]domain.OverviewInput, 0, len(employees))
	for _, u := range employees {
		in := domain.OverviewInput{
			User:              u,
			ApplicationStatus: domain.ApplicationStatusNeverSubmitted,
			Documents:         docsByUser[u.ID],
		}
		if app, ok := appsByUser[u.ID]; ok {
			in.ApplicationID = app.ID
			in.ApplicationStatus = app.Status
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// loadOverviewInput builds the projector input for a single employee.
func loadOverviewInput(ctx context.Context, userRepo repository.UserRepository, appRepo repository.OnboardingRepository, docRepo repository.DocumentRepository, employeeID int32) (*domain.OverviewInput, error) {
	user, err := userRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	in := &domain.OverviewInput{User: *user, ApplicationStatus: domain.ApplicationStatusNeverSubmitted}

	app, err := appRepo.GetByUserID(ctx, employeeID)
	switch {
	case err == nil:
		in.ApplicationID = app.ID
		in.ApplicationStatus = app.Status
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	in.Documents, err = docRepo.ListByUser(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return in, nil
}
