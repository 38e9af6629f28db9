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

type registrationTokenRepository struct {
	db *sql.DB
}

func NewRegistrationTokenRepository(db *sql.DB) repository.RegistrationTokenRepository {
	return &registrationTokenRepository{db: db}
}

func (r *registrationTokenRepository) ExpireActiveForEmail(ctx context.Context, email string, now time.Time) error {
	q := conn(ctx, r.db)
	// Held until the surrounding transaction ends
	if _, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext(LOWER($1)))`, email); err != nil {
		return fmt.Errorf("failed to lock invitations for email: %w", err)
	}

	query := `UPDATE registration_tokens SET expires_at = $1
	          WHERE LOWER(email) = LOWER($2) AND used = FALSE AND expires_at > $1`
	logger.DatabaseCall("UPDATE", "registration_tokens", "email", email)
	res, err := q.ExecContext(ctx, query, now, email)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "email", email)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, nil, "email", email)
	return nil
}

func (r *registrationTokenRepository) Create(ctx context.Context, t *domain.RegistrationToken) error {
	query := `INSERT INTO registration_tokens (email, name, token_hash, expires_at, used, created_by, created_at)
	          VALUES ($1, $2, $3, $4, FALSE, $5, $6) RETURNING id`
	logger.DatabaseCall("INSERT", "registration_tokens", "email", t.Email)
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		t.Email, t.Name, t.TokenHash, t.ExpiresAt, t.CreatedBy, t.CreatedAt,
	).Scan(&t.ID)
	logger.DatabaseResult("INSERT", 1, err, "tokenID", t.ID)
	return err
}

func (r *registrationTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RegistrationToken, error) {
	query := `SELECT id, email, name, token_hash, expires_at, used, used_at, used_by, created_by, created_at
	          FROM registration_tokens WHERE token_hash = $1`
	t := &domain.RegistrationToken{}
	var usedAt sql.NullTime
	var usedBy sql.NullInt32
	err := conn(ctx, r.db).QueryRowContext(ctx, query, tokenHash).Scan(
		&t.ID, &t.Email, &t.Name, &t.TokenHash, &t.ExpiresAt, &t.Used, &usedAt, &usedBy, &t.CreatedBy, &t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("registration token: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	t.UsedAt = timePtr(usedAt)
	t.UsedBy = int32Ptr(usedBy)
	return t, nil
}

func (r *registrationTokenRepository) MarkUsed(ctx context.Context, id, userID int32, now time.Time) error {
	query := `UPDATE registration_tokens SET used = TRUE, used_at = $1, used_by = $2
	          WHERE id = $3 AND used = FALSE AND expires_at > $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, now, userID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTokenInvalid
	}
	return nil
}

func (r *registrationTokenRepository) List(ctx context.Context) ([]domain.InvitationRecord, error) {
	query := `SELECT t.id, t.email, t.name, t.expires_at, t.used, t.used_at, t.used_by, t.created_by, t.created_at,
	                 COALESCE(a.status, '')
	          FROM registration_tokens t
	          LEFT JOIN users u ON LOWER(u.email) = LOWER(t.email)
	          LEFT JOIN onboarding_applications a ON a.user_id = u.id
	          ORDER BY t.created_at DESC, t.id DESC`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.InvitationRecord
	for rows.Next() {
		var rec domain.InvitationRecord
		var usedAt sql.NullTime
		var usedBy sql.NullInt32
		if err := rows.Scan(
			&rec.ID, &rec.Email, &rec.Name, &rec.ExpiresAt, &rec.Used, &usedAt, &usedBy,
			&rec.CreatedBy, &rec.CreatedAt, &rec.OnboardingStatus,
		); err != nil {
			return nil, err
		}
		rec.UsedAt = timePtr(usedAt)
		rec.UsedBy = int32Ptr(usedBy)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *registrationTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM registration_tokens WHERE used = FALSE AND expires_at < $1`
	logger.DatabaseCall("DELETE", "registration_tokens", "cutoff", cutoff)
	res, err := conn(ctx, r.db).ExecContext(ctx, query, cutoff)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err)
		return 0, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("DELETE", n, err)
	return n, err
}
