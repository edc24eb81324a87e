package repo

import (
	"context"
	"database/sql"
	"time"

	"sommy-store/internal/domain"

	"github.com/google/uuid"
)

type UserRepo interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	FindAdminByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type PasswordResetRepo interface {
	// Replace drops any previous token for the email before storing the new
	// one, so only the latest reset link works.
	Replace(ctx context.Context, reset *domain.PasswordReset) error
	FindByToken(ctx context.Context, token string) (*domain.PasswordReset, error)
	DeleteByToken(ctx context.Context, token string) error
}

type userRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepo {
	return &userRepo{db: db}
}

const userColumns = "id, name, email, phone, password_hash, is_admin, created_at, updated_at"

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, phone, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Name, user.Email, user.Phone, user.PasswordHash,
		user.IsAdmin, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (r *userRepo) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE phone = $1 AND phone <> ''", phone)
}

func (r *userRepo) FindAdminByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1 AND is_admin", email)
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1",
		id, passwordHash, time.Now(),
	)
	return err
}

func (r *userRepo) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type passwordResetRepo struct {
	db *sql.DB
}

func NewPasswordResetRepo(db *sql.DB) PasswordResetRepo {
	return &passwordResetRepo{db: db}
}

func (r *passwordResetRepo) Replace(ctx context.Context, reset *domain.PasswordReset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM password_resets WHERE email = $1", reset.Email); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO password_resets (token, email, expires) VALUES ($1, $2, $3)",
		reset.Token, reset.Email, reset.Expires); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *passwordResetRepo) FindByToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	var reset domain.PasswordReset
	err := r.db.QueryRowContext(ctx,
		"SELECT token, email, expires FROM password_resets WHERE token = $1", token,
	).Scan(&reset.Token, &reset.Email, &reset.Expires)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM password_resets WHERE token = $1", token)
	return err
}
