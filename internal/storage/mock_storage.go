package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"hr-onboarding-backend/internal/logger"

	"github.com/google/uuid"
)

type uploadGrant struct {
	key         string
	contentType string
	expiresAt   time.Time
}

// MockStorageService keeps documents on the local filesystem and serves
// presigned-style URLs through the API server itself. Upload tokens are
// single use and bound to one key.
type MockStorageService struct {
	baseURL string
	rootDir string

	mu     sync.Mutex
	grants map[string]uploadGrant
	now    func() time.Time
}

// NewMockStorageService creates the document directory under uploadsDir
func NewMockStorageService(baseURL, uploadsDir string) (*MockStorageService, error) {
	rootDir := filepath.Join(uploadsDir, "documents")
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create documents directory: %w", err)
	}
	return &MockStorageService{
		baseURL: strings.TrimRight(baseURL, "/"),
		rootDir: rootDir,
		grants:  make(map[string]uploadGrant),
		now:     time.Now,
	}, nil
}

func (m *MockStorageService) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	if _, err := m.path(key); err != nil {
		return "", err
	}
	token := uuid.New().String()

	m.mu.Lock()
	m.grants[token] = uploadGrant{key: key, contentType: contentType, expiresAt: m.now().Add(expiresIn)}
	m.mu.Unlock()

	return fmt.Sprintf("%s/api/v1/upload/%s?key=%s", m.baseURL, token, url.QueryEscape(key)), nil
}

func (m *MockStorageService) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if _, err := m.path(key); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/v1/download?key=%s", m.baseURL, url.QueryEscape(key)), nil
}

// ConsumeUploadGrant validates and burns an upload token issued for key.
func (m *MockStorageService) ConsumeUploadGrant(token, key, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.grants[token]
	if !ok {
		return fmt.Errorf("unknown upload token")
	}
	delete(m.grants, token)
	if m.now().After(g.expiresAt) {
		return fmt.Errorf("upload token expired")
	}
	if g.key != key {
		return fmt.Errorf("upload token issued for a different key")
	}
	if g.contentType != "" && !strings.EqualFold(g.contentType, contentType) {
		return fmt.Errorf("content type %q does not match %q", contentType, g.contentType)
	}
	return nil
}

func (m *MockStorageService) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := m.path(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (m *MockStorageService) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := m.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SaveFile writes an uploaded body, capped at maxBytes when positive.
func (m *MockStorageService) SaveFile(key string, reader io.Reader, maxBytes int64) error {
	fullPath, err := m.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if maxBytes > 0 {
		reader = io.LimitReader(reader, maxBytes+1)
	}
	n, err := io.Copy(file, reader)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if maxBytes > 0 && n > maxBytes {
		file.Close()
		os.Remove(fullPath)
		return fmt.Errorf("file exceeds %d bytes", maxBytes)
	}
	logger.Debug("Stored document", "key", key, "bytes", n)
	return nil
}

// ReadFile opens a stored document for streaming.
func (m *MockStorageService) ReadFile(key string) (io.ReadCloser, error) {
	fullPath, err := m.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// path maps a key into rootDir, refusing anything that escapes it.
func (m *MockStorageService) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || filepath.IsAbs(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(m.rootDir, filepath.FromSlash(key)), nil
}
