package http

import (
	"net/http"
	"strings"
	"time"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type registerRequest struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User *domain.User `json:"user"`
	*service.TokenPair
}

type registrationTokenResponse struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Login) == "" || req.Password == "" {
		writeError(w, r, domain.NewValidationError("login", "login and password are required"))
		return
	}
	user, pair, err := h.authSvc.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, TokenPair: pair})
}

// Refresh exchanges the refresh token in the Authorization header for a new pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)
	pair, err := h.authSvc.RefreshToken(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) ValidateRegistrationToken(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		writeError(w, r, domain.NewValidationError("token", "is required"))
		return
	}
	tok, err := h.authSvc.ValidateRegistrationToken(r.Context(), raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, registrationTokenResponse{Email: tok.Email, Name: tok.Name, ExpiresAt: tok.ExpiresAt})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Token == "" {
		writeError(w, r, domain.NewValidationError("token", "is required"))
		return
	}
	user, pair, err := h.authSvc.Register(r.Context(), req.Token, req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: user, TokenPair: pair})
}
