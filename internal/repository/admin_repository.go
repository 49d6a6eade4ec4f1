package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/peer-review-api/internal/models"
)

// AdminRepository reads administrator accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository instantiates an admin repository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByUsername loads an admin account or returns sql.ErrNoRows.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var admin models.AdminUser
	const query = `SELECT id, username, password_hash, created_at FROM admin_users WHERE username = $1`
	if err := r.db.GetContext(ctx, &admin, query, username); err != nil {
		return nil, err
	}
	return &admin, nil
}
