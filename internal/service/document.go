package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hr-onboarding-backend/internal/config"
	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/repository"
	"hr-onboarding-backend/internal/storage"

	"go.opentelemetry.io/otel/attribute"
)

type documentService struct {
	tx        repository.TxManager
	docRepo   repository.DocumentRepository
	appRepo   repository.OnboardingRepository
	userRepo  repository.UserRepository
	store     storage.DocumentStorage
	sink      NotificationSink
	urlExpiry time.Duration
	maxBytes  int64
	allowed   map[string]bool
	now       func() time.Time
}

func NewDocumentService(
	tx repository.TxManager,
	docRepo repository.DocumentRepository,
	appRepo repository.OnboardingRepository,
	userRepo repository.UserRepository,
	store storage.DocumentStorage,
	sink NotificationSink,
	cfg config.StorageConfig,
) DocumentService {
	allowed := make(map[string]bool, len(cfg.AllowedContentTypes))
	for _, ct := range cfg.AllowedContentTypes {
		allowed[strings.ToLower(ct)] = true
	}
	return &documentService{
		tx:        tx,
		docRepo:   docRepo,
		appRepo:   appRepo,
		userRepo:  userRepo,
		store:     store,
		sink:      sink,
		urlExpiry: time.Duration(cfg.URLExpiryMinutes) * time.Minute,
		maxBytes:  cfg.MaxFileSize * 1024 * 1024,
		allowed:   allowed,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *documentService) CanUpload(ctx context.Context, caller domain.Caller, employeeID int32, docType domain.DocumentType) error {
	if err := caller.RequireSelfOrHR(employeeID); err != nil {
		return err
	}
	docs, err := s.docRepo.ListByUser(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	return domain.CanUpload(docType, docs)
}

func (s *documentService) RequestUpload(ctx context.Context, caller domain.Caller, docType domain.DocumentType, fileName, contentType string) (*UploadTicket, error) {
	logger.EnterMethod("documentService.RequestUpload", "userID", caller.UserID, "type", docType)
	if strings.TrimSpace(fileName) == "" {
		return nil, domain.NewValidationError("file_name", "is required")
	}
	if len(s.allowed) > 0 && !s.allowed[strings.ToLower(contentType)] {
		return nil, domain.NewValidationError("content_type", fmt.Sprintf("%q is not allowed", contentType))
	}
	if err := s.CanUpload(ctx, caller, caller.UserID, docType); err != nil {
		logger.ExitMethodWithError("documentService.RequestUpload", err, "userID", caller.UserID, "type", docType)
		return nil, err
	}

	key := storage.DocumentKey(caller.UserID, string(docType), fileName)
	uploadURL, err := s.store.GeneratePresignedUploadURL(ctx, key, contentType, s.urlExpiry)
	if err != nil {
		logger.ExitMethodWithError("documentService.RequestUpload", err, "key", key)
		return nil, fmt.Errorf("failed to generate upload url: %w", err)
	}

	logger.ExitMethod("documentService.RequestUpload", "key", key)
	return &UploadTicket{Key: key, UploadURL: uploadURL, ExpiresAt: s.now().Add(s.urlExpiry)}, nil
}

func (s *documentService) CompleteUpload(ctx context.Context, caller domain.Caller, docType domain.DocumentType, fileName, key string) (doc *domain.Document, err error) {
	ctx, span := startSpan(ctx, "DocumentService.CompleteUpload",
		attribute.Int("employee.id", int(caller.UserID)), attribute.String("document.type", string(docType)))
	defer func() { endSpan(span, err) }()

	logger.EnterMethod("documentService.CompleteUpload", "userID", caller.UserID, "type", docType, "key", key)
	if !storage.KeyBelongsTo(key, caller.UserID, string(docType)) {
		return nil, domain.NewValidationError("key", "does not belong to this document")
	}
	exists, size, err := s.store.FileExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check uploaded file: %w", err)
	}
	if !exists {
		return nil, domain.NewValidationError("key", "file has not been uploaded")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, domain.NewValidationError("file", fmt.Sprintf("exceeds %d bytes", s.maxBytes))
	}

	var replacedKey string
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		docs, err := s.docRepo.ListByUser(ctx, caller.UserID)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		if err := domain.CanUpload(docType, docs); err != nil {
			return err
		}

		doc = &domain.Document{UserID: caller.UserID, Type: docType, Category: docType.Category(), CreatedAt: s.now()}
		for i := range docs {
			if docs[i].Type == docType && docs[i].IsActive() {
				doc = &docs[i]
				break
			}
		}
		if doc.FileURL != "" && doc.FileURL != key {
			replacedKey = doc.FileURL
		}
		doc.MarkUploaded(fileName, key, s.now())
		return s.docRepo.Upsert(ctx, doc)
	})
	if err != nil {
		logger.ExitMethodWithError("documentService.CompleteUpload", err, "userID", caller.UserID, "type", docType)
		return nil, err
	}

	if replacedKey != "" {
		if err := s.store.DeleteFile(ctx, replacedKey); err != nil {
			logger.Warn("Failed to delete replaced document file", "key", replacedKey, "error", err)
		}
	}
	logger.ExitMethod("documentService.CompleteUpload", "documentID", doc.ID)
	return doc, nil
}

func (s *documentService) ReviewDocument(ctx context.Context, caller domain.Caller, documentID int32, decision domain.DocumentStatus, feedback string) (doc *domain.Document, err error) {
	ctx, span := startSpan(ctx, "DocumentService.ReviewDocument",
		attribute.Int("document.id", int(documentID)), attribute.String("decision", string(decision)))
	defer func() { endSpan(span, err) }()

	logger.EnterMethod("documentService.ReviewDocument", "reviewerID", caller.UserID, "documentID", documentID, "decision", decision)
	if err := caller.RequireHR(); err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doc, err = s.docRepo.GetByID(ctx, documentID)
		if err != nil {
			return err
		}
		if err := doc.Review(decision, feedback, caller.UserID, s.now()); err != nil {
			return err
		}
		return s.docRepo.UpdateReview(ctx, doc)
	})
	if err != nil {
		logger.ExitMethodWithError("documentService.ReviewDocument", err, "documentID", documentID)
		return nil, err
	}

	s.sink.Emit(ctx, domain.DocumentDecisionNotification(doc))
	logger.ExitMethod("documentService.ReviewDocument", "documentID", doc.ID, "status", doc.Status)
	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context, caller domain.Caller, employeeID int32) ([]domain.Document, error) {
	if err := caller.RequireSelfOrHR(employeeID); err != nil {
		return nil, err
	}
	return s.docRepo.ListByUser(ctx, employeeID)
}

func (s *documentService) DownloadURL(ctx context.Context, caller domain.Caller, documentID int32) (string, time.Time, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := caller.RequireSelfOrHR(doc.UserID); err != nil {
		return "", time.Time{}, err
	}
	if doc.FileURL == "" {
		return "", time.Time{}, domain.NewValidationError("document", "no file has been uploaded")
	}

	u, err := s.store.GeneratePresignedDownloadURL(ctx, doc.FileURL, s.urlExpiry)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download url: %w", err)
	}
	return u, s.now().Add(s.urlExpiry), nil
}

func (s *documentService) DeleteDocument(ctx context.Context, caller domain.Caller, documentID int32) error {
	logger.EnterMethod("documentService.DeleteDocument", "userID", caller.UserID, "documentID", documentID)
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if err := caller.RequireSelfOrHR(doc.UserID); err != nil {
		return err
	}
	if doc.Status == domain.DocumentStatusApproved {
		return &domain.TransitionError{Subject: "document", From: string(doc.Status), To: "deleted"}
	}

	if err := s.docRepo.SoftDelete(ctx, doc.ID, s.now()); err != nil {
		logger.ExitMethodWithError("documentService.DeleteDocument", err, "documentID", documentID)
		return err
	}
	if doc.FileURL != "" {
		if err := s.store.DeleteFile(ctx, doc.FileURL); err != nil {
			logger.Warn("Failed to delete document file", "key", doc.FileURL, "error", err)
		}
	}
	logger.ExitMethod("documentService.DeleteDocument", "documentID", documentID)
	return nil
}

func (s *documentService) NotifyNextStep(ctx context.Context, caller domain.Caller, employeeID int32) (domain.DocumentType, error) {
	if err := caller.RequireHR(); err != nil {
		return "", err
	}

	in, err := loadOverviewInput(ctx, s.userRepo, s.appRepo, s.docRepo, employeeID)
	if err != nil {
		return "", err
	}
	row, ok := domain.ProjectVisaOverview(*in, s.now())
	if !ok {
		return "", domain.NewValidationError("employee", "work authorization is not visa-tracked")
	}
	if row.ActionType != domain.ActionNotify {
		return "", domain.NewValidationError("employee", "no visa document is awaiting upload")
	}

	s.sink.Emit(ctx, domain.VisaUploadRequiredNotification(employeeID, row.NextDocumentType))
	logger.Info("Sent visa upload reminder", "employeeID", employeeID, "type", row.NextDocumentType, "hrID", caller.UserID)
	return row.NextDocumentType, nil
}
