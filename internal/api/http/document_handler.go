package http

import (
	"errors"
	"net/http"
	"time"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/service"
)

type DocumentHandler struct {
	documentSvc service.DocumentService
}

func NewDocumentHandler(documentSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentSvc: documentSvc}
}

type requestUploadRequest struct {
	Type        string `json:"type"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

type completeUploadRequest struct {
	Type     string `json:"type"`
	FileName string `json:"file_name"`
	Key      string `json:"key"`
}

type canUploadResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

type downloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *DocumentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	docs, err := h.documentSvc.ListDocuments(r.Context(), caller, caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// CanUpload answers whether the caller may upload the given type right now.
// Ordering and finality refusals are reported in the body rather than as errors.
func (h *DocumentHandler) CanUpload(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	docType := domain.DocumentType(r.URL.Query().Get("type"))
	err = h.documentSvc.CanUpload(r.Context(), caller, caller.UserID, docType)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, canUploadResponse{Allowed: true})
	case errors.Is(err, domain.ErrOutOfOrder), errors.Is(err, domain.ErrAlreadyFinalized), errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusOK, canUploadResponse{Allowed: false, Reason: err.Error()})
	default:
		writeError(w, r, err)
	}
}

func (h *DocumentHandler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req requestUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ticket, err := h.documentSvc.RequestUpload(r.Context(), caller, domain.DocumentType(req.Type), req.FileName, req.ContentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *DocumentHandler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req completeUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := h.documentSvc.CompleteUpload(r.Context(), caller, domain.DocumentType(req.Type), req.FileName, req.Key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
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
	url, expiresAt, err := h.documentSvc.DownloadURL(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, downloadURLResponse{URL: url, ExpiresAt: expiresAt})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.documentSvc.DeleteDocument(r.Context(), caller, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) Review(w http.ResponseWriter, r *http.Request) {
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
	doc, err := h.documentSvc.ReviewDocument(r.Context(), caller, id, domain.DocumentStatus(req.Decision), req.Feedback)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) ListForEmployee(w http.ResponseWriter, r *http.Request) {
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
	docs, err := h.documentSvc.ListDocuments(r.Context(), caller, employeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *DocumentHandler) NotifyNextStep(w http.ResponseWriter, r *http.Request) {
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
	next, err := h.documentSvc.NotifyNextStep(r.Context(), caller, employeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"document_type": next})
}
