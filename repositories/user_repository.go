package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/mokki-app/mokki/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAuthCode(ctx context.Context, code string) (*models.User, error)
	GetByConfirmTokenHash(ctx context.Context, tokenHash string) (*models.User, error)
	ClearAuthCode(ctx context.Context, userID int) error
	MarkEmailVerified(ctx context.Context, userID int) error
	Update(ctx context.Context, user *models.User) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, password_hash, email_verified,
	avatar_url, auth_code, auth_code_expires_at, confirm_token_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.EmailVerified,
		&user.AvatarURL,
		&user.AuthCode,
		&user.AuthCodeExpiresAt,
		&user.ConfirmTokenHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (first_name, last_name, email, password_hash, email_verified,
			auth_code, auth_code_expires_at, confirm_token_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.EmailVerified,
		user.AuthCode,
		user.AuthCodeExpiresAt,
		user.ConfirmTokenHash,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "users_email_key" {
				return ErrUserEmailConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresUserRepository) GetByAuthCode(ctx context.Context, code string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_code = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, code))
}

func (r *postgresUserRepository) GetByConfirmTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE confirm_token_hash = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, tokenHash))
}

func (r *postgresUserRepository) ClearAuthCode(ctx context.Context, userID int) error {
	query := `UPDATE users SET auth_code = NULL, auth_code_expires_at = NULL WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) MarkEmailVerified(ctx context.Context, userID int) error {
	query := `UPDATE users SET email_verified = TRUE, confirm_token_hash = NULL WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, password_hash = $5,
			email_verified = $6, avatar_url = $7, auth_code = $8,
			auth_code_expires_at = $9
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.EmailVerified,
		user.AvatarURL,
		user.AuthCode,
		user.AuthCodeExpiresAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "users_email_key" {
				return ErrUserEmailConflict
			}
		}
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
