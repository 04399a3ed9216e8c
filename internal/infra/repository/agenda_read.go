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

type AgendaReadRepository struct{}

func NewAgendaReadRepository() *AgendaReadRepository {
	return &AgendaReadRepository{}
}

const reservationListSelect = `
	SELECT r.id, r.code, r.ci, r.first_name, r.last_name, r.email,
		pr.name, lo.name, r.date, r.time_of_day, r.status, r.source, r.created_at
	FROM reservations r
	JOIN procedures pr ON pr.id = r.procedure_id
	JOIN localities lo ON lo.id = r.locality_id`

func (r *AgendaReadRepository) ListReservations(ctx context.Context, db shared.DBTX, f queries.ReservationFilter) ([]queries.ReservationListItem, int64, error) {
	where, args := reservationWhere(f)

	var total int64
	countQuery := `SELECT count(*) FROM reservations r` + where
	if err := db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to count reservations", err)
	}

	args = append(args, f.PerPage, f.Offset())
	query := reservationListSelect + where +
		fmt.Sprintf(" ORDER BY r.date DESC, r.time_of_day LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to list reservations", err)
	}
	defer rows.Close()

	var out []queries.ReservationListItem
	for rows.Next() {
		item, err := scanReservationItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to iterate reservations", err)
	}
	return out, total, nil
}

func (r *AgendaReadRepository) GetReservation(ctx context.Context, db shared.DBTX, id uuid.UUID) (*queries.ReservationListItem, error) {
	row := db.QueryRow(ctx, reservationListSelect+` WHERE r.id = $1`, id)
	return scanReservationItem(row)
}

func (r *AgendaReadRepository) ListSlots(ctx context.Context, db shared.DBTX, f queries.SlotFilter) ([]queries.SlotListItem, int64, error) {
	var (
		conds []string
		args  []any
	)
	if f.ProcedureID != nil {
		args = append(args, *f.ProcedureID)
		conds = append(conds, fmt.Sprintf("s.procedure_id = $%d", len(args)))
	}
	if f.LocalityID != nil {
		args = append(args, *f.LocalityID)
		conds = append(conds, fmt.Sprintf("s.locality_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, pgconv.DateToPgtype(*f.From))
		conds = append(conds, fmt.Sprintf("s.date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, pgconv.DateToPgtype(*f.To))
		conds = append(conds, fmt.Sprintf("s.date <= $%d", len(args)))
	}
	if f.OnlyAvailable {
		conds = append(conds, "s.is_active", "s.current_bookings < s.max_capacity")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := db.QueryRow(ctx, `SELECT count(*) FROM slots s`+where, args...).Scan(&total); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to count slots", err)
	}

	args = append(args, f.PerPage, f.Offset())
	query := `
		SELECT s.id, s.procedure_id, pr.name, s.locality_id, lo.name,
			s.date, s.time_of_day, s.max_capacity, s.current_bookings, s.is_active
		FROM slots s
		JOIN procedures pr ON pr.id = s.procedure_id
		JOIN localities lo ON lo.id = s.locality_id` + where +
		fmt.Sprintf(" ORDER BY s.date, s.time_of_day LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, infra.WrapRepoErr("failed to list slots", err)
	}
	defer rows.Close()

	var out []queries.SlotListItem
	for rows.Next() {
		var (
			item queries.SlotListItem
			date pgtype.Date
		)
		if err := rows.Scan(
			&item.ID, &item.ProcedureID, &item.Procedure, &item.LocalityID, &item.Locality,
			&date, &item.TimeOfDay, &item.MaxCapacity, &item.CurrentBookings, &item.IsActive,
		); err != nil {
			return nil, 0, infra.WrapRepoErr("failed to scan slot item", err)
		}
		item.Date = pgconv.DateFromPgtype(date)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, infra.WrapRepoErr("failed to iterate slots", err)
	}
	return out, total, nil
}

func reservationWhere(f queries.ReservationFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	// Status accepts either a stored value or a back-office group name.
	switch f.Status {
	case "":
	case "active":
		conds = append(conds, "r.status IN ('pending', 'confirmed')")
	case "no_show":
		conds = append(conds, "r.status = 'expired'")
	default:
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("r.status = $%d", len(args)))
	}
	if f.ProcedureID != nil {
		args = append(args, *f.ProcedureID)
		conds = append(conds, fmt.Sprintf("r.procedure_id = $%d", len(args)))
	}
	if f.LocalityID != nil {
		args = append(args, *f.LocalityID)
		conds = append(conds, fmt.Sprintf("r.locality_id = $%d", len(args)))
	}
	if f.Date != nil {
		args = append(args, pgconv.DateToPgtype(*f.Date))
		conds = append(conds, fmt.Sprintf("r.date = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("(r.code ILIKE $%[1]d OR r.ci ILIKE $%[1]d OR r.last_name ILIKE $%[1]d)", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanReservationItem(row pgx.Row) (*queries.ReservationListItem, error) {
	var (
		item      queries.ReservationListItem
		date      pgtype.Date
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(
		&item.ID, &item.Code, &item.CI, &item.FirstName, &item.LastName, &item.Email,
		&item.Procedure, &item.Locality, &date, &item.TimeOfDay, &item.Status, &item.Source, &createdAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan reservation item", err)
	}
	item.Date = pgconv.DateFromPgtype(date)
	item.CreatedAt = createdAt.Time
	return &item, nil
}
