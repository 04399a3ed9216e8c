package repository

import (
	"context"
	"fmt"
	"strings"

	"arequita-backend/internal/infra"
	"arequita-backend/internal/pkg/pgconv"
	"arequita-backend/internal/usecase/queries"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CampingReadRepository serves the catalog and back-office listings.
type CampingReadRepository struct{}

func NewCampingReadRepository() *CampingReadRepository {
	return &CampingReadRepository{}
}

func (r *CampingReadRepository) ListCatalog(ctx context.Context, db shared.DBTX, lang, serviceType, search string) ([]queries.ServiceCatalogItem, error) {
	if lang != "es" && lang != "en" && lang != "pt" {
		lang = "es"
	}
	// Fall back to Spanish when the requested translation is empty.
	query := fmt.Sprintf(`
		SELECT id, slug, service_type,
			COALESCE(NULLIF(name_%[1]s, ''), name_es),
			COALESCE(NULLIF(description_%[1]s, ''), description_es),
			price, currency, capacity, total_units, available_units,
			is_featured, is_promo
		FROM camping_services
		WHERE is_active`, lang)

	var args []any
	if serviceType != "" {
		args = append(args, serviceType)
		query += fmt.Sprintf(" AND service_type = $%d", len(args))
	}
	if s := strings.TrimSpace(search); s != "" {
		args = append(args, "%"+s+"%")
		query += fmt.Sprintf(" AND (name_es ILIKE $%[1]d OR name_en ILIKE $%[1]d OR name_pt ILIKE $%[1]d)", len(args))
	}
	query += " ORDER BY is_featured DESC, slug"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list catalog", err)
	}
	defer rows.Close()

	var out []queries.ServiceCatalogItem
	for rows.Next() {
		var item queries.ServiceCatalogItem
		if err := rows.Scan(
			&item.ID, &item.Slug, &item.ServiceType,
			&item.Name, &item.Description,
			&item.Price, &item.Currency, &item.Capacity, &item.TotalUnits, &item.AvailableUnits,
			&item.IsFeatured, &item.IsPromo,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan catalog item", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate catalog", err)
	}
	return out, nil
}

const preReservationListSelect = `
	SELECT p.id, p.code, p.service_id, s.name_es,
		p.full_name, p.email, p.phone, p.guests,
		p.check_in, p.check_out, p.notes, p.lang, p.status, p.source,
		p.archive_reason, p.expires_at, p.confirmed_at, p.created_at
	FROM pre_reservations p
	JOIN camping_services s ON s.id = p.service_id`

func (r *CampingReadRepository) ListPreReservations(ctx context.Context, db shared.DBTX, f queries.PreReservationFilter) ([]queries.PreReservationListItem, int64, error) {
	where, args := preReservationWhere(f)

	var total int64
	countQuery := `SELECT count(*) FROM pre_reservations p JOIN camping_services s ON s.id = p.service_id` + where
	if err := db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to count pre-reservations", err)
	}

	args = append(args, f.PerPage, f.Offset())
	query := preReservationListSelect + where +
		fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to list pre-reservations", err)
	}
	defer rows.Close()

	var out []queries.PreReservationListItem
	for rows.Next() {
		item, err := scanPreReservationItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to iterate pre-reservations", err)
	}
	return out, total, nil
}

func (r *CampingReadRepository) GetPreReservation(ctx context.Context, db shared.DBTX, id uuid.UUID) (*queries.PreReservationListItem, error) {
	row := db.QueryRow(ctx, preReservationListSelect+` WHERE p.id = $1`, id)
	return scanPreReservationItem(row)
}

func preReservationWhere(f queries.PreReservationFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if f.ServiceID != nil {
		args = append(args, *f.ServiceID)
		conds = append(conds, fmt.Sprintf("p.service_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, pgconv.DateToPgtype(*f.From))
		conds = append(conds, fmt.Sprintf("p.check_in >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, pgconv.DateToPgtype(*f.To))
		conds = append(conds, fmt.Sprintf("p.check_in <= $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("(p.code ILIKE $%[1]d OR p.full_name ILIKE $%[1]d OR p.email ILIKE $%[1]d)", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanPreReservationItem(row pgx.Row) (*queries.PreReservationListItem, error) {
	var (
		item               queries.PreReservationListItem
		checkIn, checkOut  pgtype.Date
		archiveReason      pgtype.Text
		expiresAt          pgtype.Timestamptz
		confirmedAt        pgtype.Timestamptz
		createdAt          pgtype.Timestamptz
	)
	err := row.Scan(
		&item.ID, &item.Code, &item.ServiceID, &item.ServiceName,
		&item.FullName, &item.Email, &item.Phone, &item.Guests,
		&checkIn, &checkOut, &item.Notes, &item.Lang, &item.Status, &item.Source,
		&archiveReason, &expiresAt, &confirmedAt, &createdAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("pre-reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan pre-reservation item", err)
	}
	item.CheckIn = pgconv.DateFromPgtype(checkIn)
	item.CheckOut = pgconv.DateFromPgtype(checkOut)
	item.ArchiveReason = pgconv.StringPtrFromPgtype(archiveReason)
	item.ExpiresAt = expiresAt.Time
	item.ConfirmedAt = pgconv.TimePtrFromPgtype(confirmedAt)
	item.CreatedAt = createdAt.Time
	return &item, nil
}
