package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigil-backend/internal/model"
)

// UserRepository handles account data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new account and fills in the generated ID.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role, face_image)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.FaceImage,
	).Scan(&u.ID, &u.CreatedAt)
}

// GetByEmail retrieves an account by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, face_image, logged_in,
		        exam_credits, reset_token, reset_expires, created_at
		 FROM users
		 WHERE email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.FaceImage,
		&u.LoggedIn, &u.ExamCredits, &u.ResetToken, &u.ResetExpires, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves an account by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, face_image, logged_in,
		        exam_credits, reset_token, reset_expires, created_at
		 FROM users
		 WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.FaceImage,
		&u.LoggedIn, &u.ExamCredits, &u.ResetToken, &u.ResetExpires, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ExistsByEmail reports whether an account with this email exists.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	return exists, err
}

// AcquireLogin atomically flips the login flag to true. When force is
// false the update only succeeds if the flag was clear, which is how a
// second concurrent login is rejected.
func (r *UserRepository) AcquireLogin(ctx context.Context, userID int, force bool) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET logged_in = TRUE
		 WHERE id = $1 AND (logged_in = FALSE OR $2)`,
		userID, force)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseLogin clears the login flag on logout.
func (r *UserRepository) ReleaseLogin(ctx context.Context, userID int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET logged_in = FALSE WHERE id = $1`, userID)
	return err
}

// SetResetToken stores a password reset token with its expiry.
func (r *UserRepository) SetResetToken(ctx context.Context, userID int, token string, expires time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET reset_token = $1, reset_expires = $2 WHERE id = $3`,
		token, expires, userID)
	return err
}

// ResetPassword swaps the password hash if the reset token is still
// valid, clearing the token and any stale login flag in the same
// statement. Returns false when the token is unknown or expired.
func (r *UserRepository) ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET password_hash = $1, reset_token = NULL, reset_expires = NULL, logged_in = FALSE
		 WHERE reset_token = $2 AND reset_expires > $3`,
		passwordHash, token, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdatePassword swaps the password hash for an account.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`,
		passwordHash, userID)
	return err
}

// AddCredits increments a professor's exam credit balance.
func (r *UserRepository) AddCredits(ctx context.Context, userID, amount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET exam_credits = exam_credits + $1 WHERE id = $2`,
		amount, userID)
	return err
}

// ConsumeCredit decrements one exam credit. Returns false when the
// balance is already zero.
func (r *UserRepository) ConsumeCredit(ctx context.Context, userID int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET exam_credits = exam_credits - 1
		 WHERE id = $1 AND exam_credits > 0`,
		userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
