package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"hr-onboarding-backend/internal/config"
	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/security"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
)

type callerKey struct{}

// WithCaller stores the authenticated caller on ctx.
func WithCaller(ctx context.Context, c domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext returns the caller placed by the auth middleware.
func CallerFromContext(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(domain.Caller)
	return c, ok
}

type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

// Handler authenticates and authorizes requests by the security level of the matched route.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var routeName string
		if route := mux.CurrentRoute(r); route != nil {
			routeName = route.GetName()
		}
		level := config.GetSecurityLevel(routeName)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			writeError(w, r, fmt.Errorf("authorization token is not provided: %w", domain.ErrUnauthenticated))
			return
		}

		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			writeError(w, r, fmt.Errorf("invalid token: %v: %w", err, domain.ErrUnauthenticated))
			return
		}

		if err := checkSecurityLevel(level, claims); err != nil {
			writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), claims.Caller())))
	})
}

func checkSecurityLevel(level config.SecurityLevel, claims *security.UserClaims) error {
	switch level {
	case config.SecurityRefresh:
		if claims.Type != security.TokenTypeRefresh {
			return fmt.Errorf("refresh token required: %w", domain.ErrForbidden)
		}
	case config.SecurityAccess:
		if claims.Type != security.TokenTypeAccess {
			return fmt.Errorf("access token required: %w", domain.ErrForbidden)
		}
	case config.SecurityHR:
		if claims.Type != security.TokenTypeAccess {
			return fmt.Errorf("access token required: %w", domain.ErrForbidden)
		}
		if claims.Role != domain.RoleHR {
			return fmt.Errorf("hr role required: %w", domain.ErrForbidden)
		}
	}
	return nil
}

func bearerToken(r *http.Request) (string, bool) {
	token := r.Header.Get("Authorization")
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// LoggingMiddleware logs one line per request with the route, status and latency.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var routeName string
		if route := mux.CurrentRoute(r); route != nil {
			routeName = route.GetName()
		}
		m := httpsnoop.CaptureMetrics(next, w, r)
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", routeName,
			"status", m.Code,
			"bytes", m.Written,
			"duration_ms", m.Duration.Milliseconds(),
		}
		if m.Code >= http.StatusInternalServerError {
			logger.ErrorContext(r.Context(), "HTTP request", args...)
			return
		}
		logger.Debug("HTTP request", args...)
	})
}

func mustCaller(r *http.Request) (domain.Caller, error) {
	c, ok := CallerFromContext(r.Context())
	if !ok {
		return domain.Caller{}, fmt.Errorf("no caller on request: %w", domain.ErrUnauthenticated)
	}
	return c, nil
}
