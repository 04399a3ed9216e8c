package repository

import (
	"context"

	"arequita-backend/internal/domain/admin"
	"arequita-backend/internal/infra"
	"arequita-backend/internal/pkg/pgconv"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type AdminUserRepository struct{}

func NewAdminUserRepository() *AdminUserRepository {
	return &AdminUserRepository{}
}

func (r *AdminUserRepository) FindByUsername(ctx context.Context, db shared.DBTX, username string) (*admin.User, error) {
	var (
		id           uuid.UUID
		passwordHash string
		isActive     bool
		createdAt    pgtype.Timestamptz
	)
	err := db.QueryRow(ctx,
		`SELECT id, password_hash, is_active, created_at FROM admin_users WHERE username = $1`,
		username).Scan(&id, &passwordHash, &isActive, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find admin user", err)
	}
	return admin.ReconstructUser(id, username, passwordHash, isActive, createdAt.Time), nil
}
