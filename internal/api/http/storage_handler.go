package http

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/storage"

	"github.com/gorilla/mux"
)

// StorageHandler serves the presigned-style URLs issued by mock storage.
type StorageHandler struct {
	mockStorage *storage.MockStorageService
	maxBytes    int64
}

// NewStorageHandler creates a new upload/download handler
func NewStorageHandler(mockStorage *storage.MockStorageService, maxBytes int64) *StorageHandler {
	return &StorageHandler{
		mockStorage: mockStorage,
		maxBytes:    maxBytes,
	}
}

// HandleUpload handles HTTP PUT requests to mock presigned upload URLs
func (h *StorageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, r, domain.NewValidationError("key", "is required"))
		return
	}

	if err := h.mockStorage.ConsumeUploadGrant(token, key, r.Header.Get("Content-Type")); err != nil {
		writeError(w, r, fmt.Errorf("upload rejected: %v: %w", err, domain.ErrForbidden))
		return
	}

	if h.maxBytes > 0 && r.ContentLength > h.maxBytes {
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	if err := h.mockStorage.SaveFile(key, r.Body, h.maxBytes); err != nil {
		logger.Error("Failed to save uploaded document", "key", key, "error", err)
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	// Mimic an object store response
	w.Header().Set("ETag", `"mock-etag-success"`)
	w.WriteHeader(http.StatusOK)
}

// HandleDownload streams a stored document. Employees may only read their own keys.
func (h *StorageHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	caller, err := mustCaller(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, r, domain.NewValidationError("key", "is required"))
		return
	}
	if !caller.IsHR() && !strings.HasPrefix(key, fmt.Sprintf("documents/%d/", caller.UserID)) {
		writeError(w, r, fmt.Errorf("key outside caller's documents: %w", domain.ErrForbidden))
		return
	}

	file, err := h.mockStorage.ReadFile(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")

	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Document download interrupted", "key", key, "error", err)
	}
}
