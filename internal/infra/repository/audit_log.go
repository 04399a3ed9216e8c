package repository

import (
	"context"
	"log/slog"

	"arequita-backend/internal/infra"
	"arequita-backend/internal/pkg/clock"
	"arequita-backend/internal/pkg/pgconv"
	"arequita-backend/internal/usecase/queries"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// AuditLogRepository persists admin actions. Record is best-effort: a
// failed insert is logged and swallowed so it never aborts the action
// being audited.
type AuditLogRepository struct {
	db     shared.DBTX
	clk    clock.Clock
	logger *slog.Logger
}

func NewAuditLogRepository(db shared.DBTX, clk clock.Clock, logger *slog.Logger) *AuditLogRepository {
	return &AuditLogRepository{db: db, clk: clk, logger: logger}
}

func (r *AuditLogRepository) Record(ctx context.Context, action, details, actor string) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_log (id, action, details, actor, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), action, details, actor, pgconv.TimeToPgtype(r.clk.Now()))
	if err != nil {
		r.logger.Warn("audit record failed",
			slog.String("action", action),
			slog.String("error", err.Error()))
	}
}

func (r *AuditLogRepository) ListRecent(ctx context.Context, limit int) ([]queries.AuditEntry, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, action, details, actor, created_at
		FROM audit_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list audit entries", err)
	}
	defer rows.Close()

	var out []queries.AuditEntry
	for rows.Next() {
		var (
			e         queries.AuditEntry
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.Details, &e.Actor, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan audit entry", err)
		}
		e.CreatedAt = createdAt.Time
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate audit entries", err)
	}
	return out, nil
}
