package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/repository"
	"hr-onboarding-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", domain.ErrUnauthenticated)

const minPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,50}$`)

type authService struct {
	tx        repository.TxManager
	userRepo  repository.UserRepository
	tokenRepo repository.RegistrationTokenRepository
	tokens    security.TokenManager
	now       func() time.Time
}

func NewAuthService(
	tx repository.TxManager,
	userRepo repository.UserRepository,
	tokenRepo repository.RegistrationTokenRepository,
	tokens security.TokenManager,
) AuthService {
	return &authService{
		tx:        tx,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tokens:    tokens,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *authService) ValidateRegistrationToken(ctx context.Context, rawToken string) (*domain.RegistrationToken, error) {
	if rawToken == "" {
		return nil, domain.ErrTokenInvalid
	}
	token, err := s.tokenRepo.GetByHash(ctx, hashToken(rawToken))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	if status := token.Status(s.now()); status != domain.InvitationStatusActive {
		return nil, fmt.Errorf("registration token is %s: %w", status, domain.ErrTokenInvalid)
	}
	return token, nil
}

func (s *authService) Register(ctx context.Context, rawToken, username, password string) (*domain.User, *TokenPair, error) {
	logger.EnterMethod("authService.Register", "username", username)
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, nil, domain.NewValidationError("username", "must be 3-50 letters, digits, dots, dashes or underscores")
	}
	if len(password) < minPasswordLength {
		return nil, nil, domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *domain.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		token, err := s.ValidateRegistrationToken(ctx, rawToken)
		if err != nil {
			return err
		}
		if err := s.ensureAvailable(ctx, username, token.Email); err != nil {
			return err
		}

		first, last, _ := strings.Cut(strings.TrimSpace(token.Name), " ")
		user = &domain.User{
			Username:     username,
			Email:        token.Email,
			PasswordHash: string(hash),
			Role:         domain.RoleEmployee,
			Profile:      domain.Profile{FirstName: first, LastName: strings.TrimSpace(last)},
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.tokenRepo.MarkUsed(ctx, token.ID, user.ID, s.now())
	})
	if err != nil {
		logger.ExitMethodWithError("authService.Register", err, "username", username)
		return nil, nil, err
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	logger.ExitMethod("authService.Register", "userID", user.ID)
	return user, pair, nil
}

func (s *authService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return fmt.Errorf("username %s is taken: %w", username, domain.ErrDuplicate)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("email %s is already registered: %w", email, domain.ErrDuplicate)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *authService) Login(ctx context.Context, login, password string) (*domain.User, *TokenPair, error) {
	login = strings.TrimSpace(login)
	var (
		user *domain.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(login))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, login)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("User logged in", "userID", user.ID, "role", user.Role)
	return user, pair, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrUnauthenticated)
	}
	if claims.Type != security.TokenTypeRefresh {
		return nil, fmt.Errorf("%v: %w", security.ErrWrongTokenType, domain.ErrUnauthenticated)
	}
	// Re-read the user so role changes take effect on refresh.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("user %d no longer exists: %w", claims.UserID, domain.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) issue(user *domain.User) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
