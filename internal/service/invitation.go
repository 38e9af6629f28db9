package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"hr-onboarding-backend/internal/config"
	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/repository"
)

const tokenLength = 32

type invitationService struct {
	tx        repository.TxManager
	tokenRepo repository.RegistrationTokenRepository
	userRepo  repository.UserRepository
	email     EmailSender
	cfg       config.InvitationConfig
	now       func() time.Time
}

func NewInvitationService(
	tx repository.TxManager,
	tokenRepo repository.RegistrationTokenRepository,
	userRepo repository.UserRepository,
	email EmailSender,
	cfg config.InvitationConfig,
) InvitationService {
	return &invitationService{
		tx:        tx,
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
		email:     email,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// generateToken returns a random hex secret and the SHA-256 hash stored for it.
func generateToken() (string, string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	plaintext := hex.EncodeToString(b)
	return plaintext, hashToken(plaintext), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.NewValidationError("email", "is not a valid address")
	}
	return email, nil
}

func (s *invitationService) CreateInvitation(ctx context.Context, caller domain.Caller, email, name string) (*Invitation, error) {
	logger.EnterMethod("invitationService.CreateInvitation", "hrID", caller.UserID, "email", email)
	if err := caller.RequireHR(); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user with email %s already exists: %w", email, domain.ErrDuplicate)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	raw, hash, err := generateToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	token := &domain.RegistrationToken{
		Email:     email,
		Name:      name,
		TokenHash: hash,
		ExpiresAt: now.Add(time.Duration(s.cfg.TokenExpiryMinutes) * time.Minute),
		CreatedBy: caller.UserID,
		CreatedAt: now,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tokenRepo.ExpireActiveForEmail(ctx, email, now); err != nil {
			return fmt.Errorf("failed to expire previous invitations: %w", err)
		}
		return s.tokenRepo.Create(ctx, token)
	})
	if err != nil {
		logger.ExitMethodWithError("invitationService.CreateInvitation", err, "email", email)
		return nil, err
	}

	inv := &Invitation{
		Token:    *token,
		RawToken: raw,
		Link: fmt.Sprintf("%s/register?token=%s&email=%s",
			strings.TrimRight(s.cfg.FrontendURL, "/"), raw, url.QueryEscape(email)),
	}

	body := fmt.Sprintf("Hello %s,\n\nYou have been invited to complete your employee onboarding.\n\n"+
		"Create your account here:\n%s\n\nThis link expires at %s.\n\nBest regards,\nHuman Resources",
		name, inv.Link, token.ExpiresAt.Format(time.RFC1123))
	if err := s.email.Send(ctx, email, name, "Your onboarding invitation", body); err != nil {
		logger.Warn("Failed to send invitation email", "email", email, "error", err)
	}

	logger.ExitMethod("invitationService.CreateInvitation", "tokenID", token.ID)
	return inv, nil
}

func (s *invitationService) ListInvitations(ctx context.Context, caller domain.Caller) ([]domain.InvitationRecord, error) {
	if err := caller.RequireHR(); err != nil {
		return nil, err
	}
	records, err := s.tokenRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	now := s.now()
	for i := range records {
		rec := &records[i]
		rec.Status = rec.RegistrationToken.Status(now)
		rec.OnboardingSubmitted = rec.OnboardingStatus != "" && rec.OnboardingStatus != domain.ApplicationStatusNeverSubmitted
	}
	return records, nil
}

// PurgeExpired deletes unused tokens that expired more than retention ago.
func (s *invitationService) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	return s.tokenRepo.DeleteExpiredBefore(ctx, s.now().Add(-retention))
}
