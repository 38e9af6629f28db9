package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/repository"
)

const documentColumns = `id, user_id, type, category, status, file_name, file_url, feedback,
	uploaded_at, reviewed_at, reviewed_by, deleted_at, created_at, updated_at`

type documentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) repository.DocumentRepository {
	return &documentRepository{db: db}
}

func scanDocument(row scanner) (*domain.Document, error) {
	d := &domain.Document{}
	var uploadedAt, reviewedAt, deletedAt sql.NullTime
	var reviewedBy sql.NullInt32
	err := row.Scan(
		&d.ID, &d.UserID, &d.Type, &d.Category, &d.Status, &d.FileName, &d.FileURL, &d.Feedback,
		&uploadedAt, &reviewedAt, &reviewedBy, &deletedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.UploadedAt = timePtr(uploadedAt)
	d.ReviewedAt = timePtr(reviewedAt)
	d.ReviewedBy = int32Ptr(reviewedBy)
	d.DeletedAt = timePtr(deletedAt)
	return d, nil
}

func (r *documentRepository) EnsureBaseline(ctx context.Context, userID int32, types []domain.DocumentType) error {
	query := `INSERT INTO documents (user_id, type, category, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          ON CONFLICT (user_id, type) WHERE deleted_at IS NULL DO NOTHING`
	now := time.Now().UTC()
	for _, t := range types {
		logger.DatabaseCall("INSERT", "documents", "userID", userID, "type", t)
		if _, err := conn(ctx, r.db).ExecContext(ctx, query, userID, t, t.Category(), domain.DocumentStatusNotStarted, now); err != nil {
			logger.DatabaseResult("INSERT", 0, err, "userID", userID, "type", t)
			return err
		}
	}
	return nil
}

func (r *documentRepository) Upsert(ctx context.Context, d *domain.Document) error {
	query := `INSERT INTO documents (user_id, type, category, status, file_name, file_url, feedback, uploaded_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	          ON CONFLICT (user_id, type) WHERE deleted_at IS NULL DO UPDATE SET
	              status = EXCLUDED.status,
	              file_name = EXCLUDED.file_name,
	              file_url = EXCLUDED.file_url,
	              feedback = EXCLUDED.feedback,
	              uploaded_at = EXCLUDED.uploaded_at,
	              reviewed_at = NULL,
	              reviewed_by = NULL,
	              updated_at = EXCLUDED.updated_at
	          RETURNING id, created_at`
	d.Category = d.Type.Category()
	logger.DatabaseCall("UPSERT", "documents", "userID", d.UserID, "type", d.Type)
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		d.UserID, d.Type, d.Category, d.Status, d.FileName, d.FileURL, d.Feedback, nullTime(d.UploadedAt), d.UpdatedAt,
	).Scan(&d.ID, &d.CreatedAt)
	logger.DatabaseResult("UPSERT", 1, err, "documentID", d.ID)
	return err
}

func (r *documentRepository) GetByID(ctx context.Context, id int32) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND deleted_at IS NULL`
	d, err := scanDocument(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}
	return d, err
}

func (r *documentRepository) list(ctx context.Context, query string, arg any) ([]domain.Document, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

func (r *documentRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Document, error) {
	return r.list(ctx, `SELECT `+documentColumns+` FROM documents WHERE user_id = $1 AND deleted_at IS NULL ORDER BY id`, userID)
}

func (r *documentRepository) ListByCategory(ctx context.Context, category domain.DocumentCategory) ([]domain.Document, error) {
	return r.list(ctx, `SELECT `+documentColumns+` FROM documents WHERE category = $1 AND deleted_at IS NULL ORDER BY user_id, id`, category)
}

func (r *documentRepository) UpdateReview(ctx context.Context, d *domain.Document) error {
	query := `UPDATE documents SET status=$1, feedback=$2, reviewed_at=$3, reviewed_by=$4, updated_at=$5
	          WHERE id=$6 AND status='pending' AND deleted_at IS NULL`
	logger.DatabaseCall("UPDATE", "documents", "documentID", d.ID, "status", d.Status)
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		d.Status, d.Feedback, nullTime(d.ReviewedAt), nullInt32(d.ReviewedBy), d.UpdatedAt, d.ID,
	)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "documentID", d.ID)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "documentID", d.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.TransitionError{Subject: "document", From: "reviewed", To: string(d.Status)}
	}
	return nil
}

func (r *documentRepository) SoftDelete(ctx context.Context, id int32, at time.Time) error {
	query := `UPDATE documents SET deleted_at=$1, updated_at=$1 WHERE id=$2 AND deleted_at IS NULL`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
