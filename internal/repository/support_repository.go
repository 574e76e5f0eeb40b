package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigil-backend/internal/model"
)

// SupportRepository handles stored support messages.
type SupportRepository struct {
	pool *pgxpool.Pool
}

// NewSupportRepository creates a new SupportRepository.
func NewSupportRepository(pool *pgxpool.Pool) *SupportRepository {
	return &SupportRepository{pool: pool}
}

// Create stores a support message and fills in the generated ID.
func (r *SupportRepository) Create(ctx context.Context, m *model.SupportMessage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO support_messages (user_id, category, name, email, message)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		m.UserID, m.Category, m.Name, m.Email, m.Message,
	).Scan(&m.ID, &m.CreatedAt)
}
