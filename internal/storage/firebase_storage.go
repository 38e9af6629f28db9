package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"hr-onboarding-backend/internal/logger"
)

// FirebaseStorageService stores documents in the project's Cloud Storage bucket.
type FirebaseStorageService struct {
	bucket *gcs.BucketHandle
}

// NewFirebaseStorageService initializes a Firebase app for bucket. An empty
// credentialsFile falls back to application default credentials.
func NewFirebaseStorageService(ctx context.Context, bucket, credentialsFile string) (*FirebaseStorageService, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucket}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	handle, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucket, err)
	}
	return &FirebaseStorageService{bucket: handle}, nil
}

func (f *FirebaseStorageService) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	logger.ExternalServiceCall("firebase-storage", "SignedURL", "method", "PUT", "key", key)
	u, err := f.bucket.SignedURL(key, &gcs.SignedURLOptions{
		Scheme:      gcs.SigningSchemeV4,
		Method:      "PUT",
		ContentType: contentType,
		Expires:     time.Now().Add(expiresIn),
	})
	logger.ExternalServiceResult("firebase-storage", "SignedURL", err, "key", key)
	return u, err
}

func (f *FirebaseStorageService) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	logger.ExternalServiceCall("firebase-storage", "SignedURL", "method", "GET", "key", key)
	u, err := f.bucket.SignedURL(key, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expiresIn),
	})
	logger.ExternalServiceResult("firebase-storage", "SignedURL", err, "key", key)
	return u, err
}

func (f *FirebaseStorageService) FileExists(ctx context.Context, key string) (bool, int64, error) {
	attrs, err := f.bucket.Object(key).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, attrs.Size, nil
}

func (f *FirebaseStorageService) DeleteFile(ctx context.Context, key string) error {
	err := f.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
