package http

import (
	"net/http"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/service"
)

type OnboardingHandler struct {
	onboardingSvc service.OnboardingService
}

func NewOnboardingHandler(onboardingSvc service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingSvc: onboardingSvc}
}

type submitOnboardingRequest struct {
	ExpectedVersion *int32           `json:"expected_version"`
	FormData        *domain.FormData `json:"form_data"`
}

type reviewRequest struct {
	Decision string `json:"decision"`
	Feedback string `json:"feedback"`
}

func (h *OnboardingHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.onboardingSvc.GetOrCreate(r.Context(), caller, caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *OnboardingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req submitOnboardingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ExpectedVersion == nil {
		writeError(w, r, domain.NewValidationError("expected_version", "is required"))
		return
	}
	if req.FormData == nil {
		writeError(w, r, domain.NewValidationError("form_data", "is required"))
		return
	}
	app, err := h.onboardingSvc.Submit(r.Context(), caller, *req.FormData, *req.ExpectedVersion)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// GetForEmployee lets HR open an employee's application, creating it if the employee never has.
func (h *OnboardingHandler) GetForEmployee(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	employeeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.onboardingSvc.GetOrCreate(r.Context(), caller, employeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *OnboardingHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	groups, err := h.onboardingSvc.ListForHR(r.Context(), caller)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := h.onboardingSvc.GetForHR(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *OnboardingHandler) Review(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.onboardingSvc.Review(r.Context(), caller, id, domain.ApplicationStatus(req.Decision), req.Feedback)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
