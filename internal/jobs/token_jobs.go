package jobs

import (
	"context"
	"fmt"
	"time"

	"hr-onboarding-backend/internal/logger"
)

func (jr *JobRunner) purgeRegistrationTokens(ctx context.Context) error {
	retention := time.Duration(jr.config.Invitation.RetentionDays) * 24 * time.Hour
	n, err := jr.services.Invitation.PurgeExpired(ctx, retention)
	if err != nil {
		return fmt.Errorf("failed to purge registration tokens: %w", err)
	}
	logger.Info("Purged expired registration tokens", "deleted", n, "retention_days", jr.config.Invitation.RetentionDays)
	return nil
}
