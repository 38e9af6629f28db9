package jobs

import (
	"context"
	"fmt"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/logger"
)

func (jr *JobRunner) sendVisaReminders(ctx context.Context) error {
	overview, err := jr.services.VisaOverview.GetVisaOverview(ctx, systemCaller)
	if err != nil {
		return fmt.Errorf("failed to build visa overview: %w", err)
	}

	count, failed := 0, 0
	for _, row := range overview.InProgress {
		if row.ActionType != domain.ActionNotify || row.NextDocumentType == "" {
			continue
		}
		note := domain.VisaUploadRequiredNotification(row.EmployeeID, row.NextDocumentType)
		if err := jr.services.Notifier.Deliver(ctx, &note); err != nil {
			failed++
			logger.Error("Failed to send visa reminder",
				"employee_id", row.EmployeeID,
				"document_type", row.NextDocumentType,
				"error", err)
			continue
		}
		count++
		logger.Debug("Sent visa reminder", "employee_id", row.EmployeeID, "document_type", row.NextDocumentType)
	}

	logger.Info("Visa reminders sent", "sent", count, "failed", failed)
	return nil
}

func (jr *JobRunner) warnExpiringAuthorizations(ctx context.Context) error {
	employees, err := jr.services.User.ListEmployees(ctx, systemCaller, "")
	if err != nil {
		return fmt.Errorf("failed to list employees: %w", err)
	}

	milestones := make(map[int]bool, len(jr.config.Visa.ExpiryWarningDays))
	for _, d := range jr.config.Visa.ExpiryWarningDays {
		milestones[d] = true
	}

	now := jr.now()
	count := 0
	for _, u := range employees {
		end := u.WorkAuthorization.EndDate
		days := domain.DaysRemaining(end, now)
		if days == nil || !milestones[*days] {
			continue
		}
		note := domain.AuthorizationExpiringNotification(u.ID, *days, *end)
		if err := jr.services.Notifier.Deliver(ctx, &note); err != nil {
			logger.Error("Failed to send expiry warning", "employee_id", u.ID, "days_remaining", *days, "error", err)
			continue
		}
		count++
	}

	logger.Info("Work authorization expiry warnings sent", "sent", count)
	return nil
}
