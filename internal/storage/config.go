package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"hr-onboarding-backend/internal/config"

	"github.com/google/uuid"
)

// New builds the configured backend. The mock backend is also returned
// separately so the HTTP server can mount its upload and download routes.
func New(ctx context.Context, cfg config.StorageConfig) (DocumentStorage, *MockStorageService, error) {
	switch cfg.Type {
	case "firebase":
		fs, err := NewFirebaseStorageService(ctx, cfg.Bucket, cfg.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil
	case "mock", "":
		ms, err := NewMockStorageService(cfg.BaseURL, cfg.UploadDir)
		if err != nil {
			return nil, nil, err
		}
		return ms, ms, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// DocumentKey builds a unique object key for a new upload, keeping the file extension.
func DocumentKey(userID int32, docType, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("documents/%d/%s/%s%s", userID, docType, uuid.New().String(), ext)
}

// KeyBelongsTo reports whether key was issued under the user's document prefix.
func KeyBelongsTo(key string, userID int32, docType string) bool {
	return strings.HasPrefix(key, fmt.Sprintf("documents/%d/%s/", userID, docType)) && !strings.Contains(key, "..")
}
