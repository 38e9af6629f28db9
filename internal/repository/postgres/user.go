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

const userColumns = `id, username, email, password_hash, role,
	first_name, last_name, middle_name, preferred_name, phone, work_phone,
	work_auth_type, work_auth_title, work_auth_start, work_auth_end, created_at, updated_at`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func scanUser(row scanner) (*domain.User, error) {
	u := &domain.User{}
	var start, end sql.NullTime
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.Profile.FirstName, &u.Profile.LastName, &u.Profile.MiddleName, &u.Profile.PreferredName,
		&u.Profile.Phone, &u.Profile.WorkPhone,
		&u.WorkAuthorization.AuthType, &u.WorkAuthorization.Title, &start, &end,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.WorkAuthorization.StartDate = timePtr(start)
	u.WorkAuthorization.EndDate = timePtr(end)
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (username, email, password_hash, role, first_name, last_name, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	logger.DatabaseCall("INSERT", "users", "username", u.Username)
	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.Role, u.Profile.FirstName, u.Profile.LastName, now,
	).Scan(&u.ID)
	logger.DatabaseResult("INSERT", 1, err, "userID", u.ID)
	return err
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %v: %w", arg, domain.ErrNotFound)
	}
	return u, err
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `LOWER(email) = LOWER($1)`, email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `username = $1`, username)
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET first_name=$1, last_name=$2, middle_name=$3, preferred_name=$4, phone=$5, work_phone=$6,
	          work_auth_type=$7, work_auth_title=$8, work_auth_start=$9, work_auth_end=$10, updated_at=$11
	          WHERE id=$12`
	u.UpdatedAt = time.Now().UTC()
	logger.DatabaseCall("UPDATE", "users", "userID", u.ID)
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		u.Profile.FirstName, u.Profile.LastName, u.Profile.MiddleName, u.Profile.PreferredName,
		u.Profile.Phone, u.Profile.WorkPhone,
		u.WorkAuthorization.AuthType, u.WorkAuthorization.Title,
		nullTime(u.WorkAuthorization.StartDate), nullTime(u.WorkAuthorization.EndDate),
		u.UpdatedAt, u.ID,
	)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "userID", u.ID)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "userID", u.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", u.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *userRepository) list(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY last_name, first_name, id`, role)
}

func (r *userRepository) Search(ctx context.Context, query string) ([]domain.User, error) {
	pattern := "%" + query + "%"
	return r.list(ctx, `SELECT `+userColumns+` FROM users
		WHERE role = 'employee' AND (
			first_name ILIKE $1 OR last_name ILIKE $1 OR preferred_name ILIKE $1 OR email ILIKE $1 OR username ILIKE $1
		) ORDER BY last_name, first_name, id`, pattern)
}
