package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/repository"
)

const defaultPageSize = 20

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = defaultPageSize
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}

// Dispatcher persists notifications and emails them to the recipient.
// Emit is fire-and-forget: delivery runs detached from the caller's
// cancellation and failures are only logged.
type Dispatcher struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	email    EmailSender
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(noteRepo repository.NotificationRepository, userRepo repository.UserRepository, email EmailSender, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{noteRepo: noteRepo, userRepo: userRepo, email: email, timeout: timeout}
}

func (d *Dispatcher) Emit(ctx context.Context, n domain.Notification) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Notification dispatch panicked", "userID", n.UserID, "kind", n.Kind, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		if err := d.Deliver(ctx, &n); err != nil {
			logger.Warn("Failed to deliver notification", "userID", n.UserID, "kind", n.Kind, "error", err)
		}
	}()
}

// Deliver stores n and then emails it. A stored notification whose email
// fails is still reported as an error.
func (d *Dispatcher) Deliver(ctx context.Context, n *domain.Notification) error {
	if err := d.noteRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}
	if d.email == nil {
		return nil
	}

	user, err := d.userRepo.GetByID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("failed to load recipient %d: %w", n.UserID, err)
	}
	body := fmt.Sprintf("Hello %s,\n\n%s\n\nBest regards,\nHuman Resources", user.DisplayName(), n.Message)
	if err := d.email.Send(ctx, user.Email, user.DisplayName(), n.Title, body); err != nil {
		return fmt.Errorf("failed to email notification %d: %w", n.ID, err)
	}
	return nil
}

// Wait blocks until every in-flight Emit has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
