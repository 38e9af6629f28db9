package http

import (
	"net/http"

	"hr-onboarding-backend/internal/service"
)

// HRHandler serves the HR-only views that are not tied to a single application or document.
type HRHandler struct {
	overviewSvc   service.VisaOverviewService
	invitationSvc service.InvitationService
}

func NewHRHandler(overviewSvc service.VisaOverviewService, invitationSvc service.InvitationService) *HRHandler {
	return &HRHandler{overviewSvc: overviewSvc, invitationSvc: invitationSvc}
}

type createInvitationRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *HRHandler) VisaOverview(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	overview, err := h.overviewSvc.GetVisaOverview(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *HRHandler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createInvitationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := h.invitationSvc.CreateInvitation(r.Context(), caller, req.Email, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *HRHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	records, err := h.invitationSvc.ListInvitations(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invitations": records})
}
