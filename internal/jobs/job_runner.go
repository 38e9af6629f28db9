package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"hr-onboarding-backend/internal/config"
	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/service"
)

// Job names accepted by RunOnce.
const (
	JobSendVisaReminders          = "send-visa-reminders"
	JobWarnExpiringAuthorizations = "warn-expiring-authorizations"
	JobPurgeRegistrationTokens    = "purge-registration-tokens"
)

// systemCaller is the identity scheduled jobs act under.
var systemCaller = domain.Caller{UserID: 0, Role: domain.RoleHR}

// Deliverer sends one notification synchronously.
type Deliverer interface {
	Deliver(ctx context.Context, n *domain.Notification) error
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	VisaOverview service.VisaOverviewService
	User         service.UserService
	Invitation   service.InvitationService
	Notifier     Deliverer
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

func (jr *JobRunner) registry() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		JobSendVisaReminders:          jr.sendVisaReminders,
		JobWarnExpiringAuthorizations: jr.warnExpiringAuthorizations,
		JobPurgeRegistrationTokens:    jr.purgeRegistrationTokens,
	}
}

// Names lists the jobs RunOnce accepts.
func (jr *JobRunner) Names() []string {
	names := make([]string, 0, 3)
	for name := range jr.registry() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunOnce runs the named job immediately and reports its error.
func (jr *JobRunner) RunOnce(ctx context.Context, name string) error {
	job, ok := jr.registry()[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	logger.Info("Starting job", "job", name)
	if err := job(ctx); err != nil {
		logger.Error("Job failed", "job", name, "error", err)
		return err
	}
	logger.Info("Job completed", "job", name)
	return nil
}

// runWithRecovery wraps scheduled job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	if err := jobFunc(context.Background()); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return
	}
	logger.Info("Job completed", "job", jobName)
}

// SendVisaReminders reminds every employee whose visa pipeline waits on an upload
func (jr *JobRunner) SendVisaReminders() {
	jr.runWithRecovery(JobSendVisaReminders, jr.sendVisaReminders)
}

// WarnExpiringAuthorizations warns employees whose work authorization hits a warning milestone today
func (jr *JobRunner) WarnExpiringAuthorizations() {
	jr.runWithRecovery(JobWarnExpiringAuthorizations, jr.warnExpiringAuthorizations)
}

// PurgeRegistrationTokens removes unused invitations long past expiry
func (jr *JobRunner) PurgeRegistrationTokens() {
	jr.runWithRecovery(JobPurgeRegistrationTokens, jr.purgeRegistrationTokens)
}
