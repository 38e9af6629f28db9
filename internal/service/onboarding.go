package service

import (
	"context"
	"fmt"
	"time"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type onboardingService struct {
	tx       repository.TxManager
	appRepo  repository.OnboardingRepository
	docRepo  repository.DocumentRepository
	userRepo repository.UserRepository
	sink     NotificationSink
	now      func() time.Time
}

func NewOnboardingService(
	tx repository.TxManager,
	appRepo repository.OnboardingRepository,
	docRepo repository.DocumentRepository,
	userRepo repository.UserRepository,
	sink NotificationSink,
) OnboardingService {
	return &onboardingService{
		tx:       tx,
		appRepo:  appRepo,
		docRepo:  docRepo,
		userRepo: userRepo,
		sink:     sink,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *onboardingService) GetOrCreate(ctx context.Context, caller domain.Caller, employeeID int32) (app *domain.OnboardingApplication, err error) {
	ctx, span := startSpan(ctx, "OnboardingService.GetOrCreate", attribute.Int("employee.id", int(employeeID)))
	defer func() { endSpan(span, err) }()

	if err := caller.RequireSelfOrHR(employeeID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, employeeID); err != nil {
		return nil, fmt.Errorf("failed to load employee %d: %w", employeeID, err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.appRepo.CreateIfAbsent(ctx, domain.NewOnboardingApplication(employeeID, s.now()))
		if err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}
		if created {
			logger.Info("Started onboarding", "employeeID", employeeID)
		}
		if err := s.docRepo.EnsureBaseline(ctx, employeeID, domain.BaselineDocumentTypes); err != nil {
			return fmt.Errorf("failed to seed baseline documents: %w", err)
		}
		app, err = s.appRepo.GetByUserID(ctx, employeeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (s *onboardingService) Submit(ctx context.Context, caller domain.Caller, form domain.FormData, expectedVersion int32) (app *domain.OnboardingApplication, err error) {
	ctx, span := startSpan(ctx, "OnboardingService.Submit",
		attribute.Int("employee.id", int(caller.UserID)), attribute.Int("expected_version", int(expectedVersion)))
	defer func() { endSpan(span, err) }()

	logger.EnterMethod("onboardingService.Submit", "userID", caller.UserID, "expectedVersion", expectedVersion)
	if err := form.Validate(); err != nil {
		logger.ExitMethodWithError("onboardingService.Submit", err, "userID", caller.UserID)
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		app, err = s.appRepo.GetByUserID(ctx, caller.UserID)
		if err != nil {
			return err
		}
		loaded := app.Version
		if err := app.Submit(form, expectedVersion, s.now()); err != nil {
			return err
		}
		if err := s.appRepo.Update(ctx, app, loaded); err != nil {
			return err
		}
		return s.appRepo.AppendHistory(ctx, app.ID, app.LastHistory())
	})
	if err != nil {
		logger.ExitMethodWithError("onboardingService.Submit", err, "userID", caller.UserID)
		return nil, err
	}

	logger.ExitMethod("onboardingService.Submit", "applicationID", app.ID, "version", app.Version)
	return app, nil
}

func (s *onboardingService) Review(ctx context.Context, caller domain.Caller, applicationID int32, decision domain.ApplicationStatus, feedback string) (app *domain.OnboardingApplication, err error) {
	ctx, span := startSpan(ctx, "OnboardingService.Review",
		attribute.Int("application.id", int(applicationID)), attribute.String("decision", string(decision)))
	defer func() { endSpan(span, err) }()

	logger.EnterMethod("onboardingService.Review", "reviewerID", caller.UserID, "applicationID", applicationID, "decision", decision)
	if err := caller.RequireHR(); err != nil {
		logger.ExitMethodWithError("onboardingService.Review", err, "applicationID", applicationID)
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		app, err = s.appRepo.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		loaded := app.Version
		if err := app.Review(decision, feedback, caller.UserID, s.now()); err != nil {
			return err
		}
		if err := s.appRepo.Update(ctx, app, loaded); err != nil {
			return err
		}
		if err := s.appRepo.AppendHistory(ctx, app.ID, app.LastHistory()); err != nil {
			return err
		}
		if app.Status != domain.ApplicationStatusApproved {
			return nil
		}

		user, err := s.userRepo.GetByID(ctx, app.UserID)
		if err != nil {
			return fmt.Errorf("failed to load employee %d: %w", app.UserID, err)
		}
		user.Promote(app.FormData)
		if err := s.userRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to promote profile: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("onboardingService.Review", err, "applicationID", applicationID)
		return nil, err
	}

	s.sink.Emit(ctx, domain.OnboardingDecisionNotification(app))
	logger.ExitMethod("onboardingService.Review", "applicationID", app.ID, "status", app.Status)
	return app, nil
}

func (s *onboardingService) ListForHR(ctx context.Context, caller domain.Caller) (*ApplicationGroups, error) {
	if err := caller.RequireHR(); err != nil {
		return nil, err
	}

	apps, err := s.appRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	employees, err := s.userRepo.ListByRole(ctx, domain.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	byID := make(map[int32]*domain.User, len(employees))
	for i := range employees {
		byID[employees[i].ID] = &employees[i]
	}

	groups := &ApplicationGroups{
		Pending:  []ApplicationSummary{},
		Approved: []ApplicationSummary{},
		Rejected: []ApplicationSummary{},
	}
	for _, app := range apps {
		summary := ApplicationSummary{Application: app}
		if u, ok := byID[app.UserID]; ok {
			summary.Username = u.Username
			summary.Email = u.Email
			summary.EmployeeName = u.DisplayName()
		}
		switch app.Status {
		case domain.ApplicationStatusPending:
			groups.Pending = append(groups.Pending, summary)
		case domain.ApplicationStatusApproved:
			groups.Approved = append(groups.Approved, summary)
		case domain.ApplicationStatusRejected:
			groups.Rejected = append(groups.Rejected, summary)
		}
	}
	return groups, nil
}

func (s *onboardingService) GetForHR(ctx context.Context, caller domain.Caller, applicationID int32) (*ApplicationDetail, error) {
	if err := caller.RequireHR(); err != nil {
		return nil, err
	}

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, app.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee %d: %w", app.UserID, err)
	}
	docs, err := s.docRepo.ListByUser(ctx, app.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return &ApplicationDetail{Application: app, Employee: user, Documents: docs}, nil
}
