package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hr-onboarding-backend/internal/domain"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/repository"
)

const applicationColumns = `id, user_id, status, form_data, version, submitted_at, reviewed_at, reviewed_by, hr_feedback, created_at, updated_at`

type onboardingRepository struct {
	db *sql.DB
}

func NewOnboardingRepository(db *sql.DB) repository.OnboardingRepository {
	return &onboardingRepository{db: db}
}

func scanApplication(row scanner) (*domain.OnboardingApplication, error) {
	app := &domain.OnboardingApplication{}
	var formData []byte
	var submittedAt, reviewedAt sql.NullTime
	var reviewedBy sql.NullInt32
	err := row.Scan(
		&app.ID, &app.UserID, &app.Status, &formData, &app.Version,
		&submittedAt, &reviewedAt, &reviewedBy, &app.HRFeedback, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.FormData = domain.NewFormData()
	if len(formData) > 0 {
		if err := json.Unmarshal(formData, &app.FormData); err != nil {
			return nil, fmt.Errorf("failed to decode form data of application %d: %w", app.ID, err)
		}
	}
	app.SubmittedAt = timePtr(submittedAt)
	app.ReviewedAt = timePtr(reviewedAt)
	app.ReviewedBy = int32Ptr(reviewedBy)
	return app, nil
}

func (r *onboardingRepository) CreateIfAbsent(ctx context.Context, app *domain.OnboardingApplication) (bool, error) {
	formData, err := json.Marshal(app.FormData)
	if err != nil {
		return false, err
	}

	query := `INSERT INTO onboarding_applications (user_id, status, form_data, version, hr_feedback, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (user_id) DO NOTHING
	          RETURNING id`
	logger.DatabaseCall("INSERT", "onboarding_applications", "userID", app.UserID)
	err = conn(ctx, r.db).QueryRowContext(ctx, query,
		app.UserID, app.Status, formData, app.Version, app.HRFeedback, app.CreatedAt, app.UpdatedAt,
	).Scan(&app.ID)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("INSERT", 0, nil, "userID", app.UserID, "reason", "already exists")
		return false, nil
	}
	logger.DatabaseResult("INSERT", 1, err, "applicationID", app.ID)
	if err != nil {
		return false, err
	}

	for _, h := range app.History {
		if err := r.AppendHistory(ctx, app.ID, h); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (r *onboardingRepository) get(ctx context.Context, where string, arg any) (*domain.OnboardingApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM onboarding_applications WHERE ` + where
	app, err := scanApplication(conn(ctx, r.db).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("onboarding application %v: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if app.History, err = r.history(ctx, app.ID); err != nil {
		return nil, err
	}
	return app, nil
}

func (r *onboardingRepository) GetByID(ctx context.Context, id int32) (*domain.OnboardingApplication, error) {
	return r.get(ctx, `id = $1`, id)
}

func (r *onboardingRepository) GetByUserID(ctx context.Context, userID int32) (*domain.OnboardingApplication, error) {
	return r.get(ctx, `user_id = $1`, userID)
}

func (r *onboardingRepository) history(ctx context.Context, applicationID int32) ([]domain.HistoryEntry, error) {
	query := `SELECT status, action, created_at FROM onboarding_history WHERE application_id = $1 ORDER BY id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var h domain.HistoryEntry
		if err := rows.Scan(&h.Status, &h.Action, &h.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

func (r *onboardingRepository) Update(ctx context.Context, app *domain.OnboardingApplication, expectedVersion int32) error {
	formData, err := json.Marshal(app.FormData)
	if err != nil {
		return err
	}

	query := `UPDATE onboarding_applications
	          SET status=$1, form_data=$2, version=$3, submitted_at=$4, reviewed_at=$5, reviewed_by=$6, hr_feedback=$7, updated_at=$8
	          WHERE id=$9 AND version=$10`
	logger.DatabaseCall("UPDATE", "onboarding_applications", "applicationID", app.ID, "expectedVersion", expectedVersion)
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		app.Status, formData, app.Version, nullTime(app.SubmittedAt), nullTime(app.ReviewedAt),
		nullInt32(app.ReviewedBy), app.HRFeedback, app.UpdatedAt, app.ID, expectedVersion,
	)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "applicationID", app.ID)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "applicationID", app.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("application %d at version %d: %w", app.ID, expectedVersion, domain.ErrOptimisticLockConflict)
	}
	return nil
}

func (r *onboardingRepository) AppendHistory(ctx context.Context, applicationID int32, entry domain.HistoryEntry) error {
	query := `INSERT INTO onboarding_history (application_id, status, action, created_at) VALUES ($1, $2, $3, $4)`
	_, err := conn(ctx, r.db).ExecContext(ctx, query, applicationID, entry.Status, entry.Action, entry.Timestamp)
	return err
}

func (r *onboardingRepository) List(ctx context.Context, status *domain.ApplicationStatus) ([]domain.OnboardingApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM onboarding_applications`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY submitted_at DESC NULLS LAST, id`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.OnboardingApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}
