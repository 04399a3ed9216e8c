package repository

import (
	"context"
	"time"

	"arequita-backend/internal/domain/agenda"
	"arequita-backend/internal/infra"
	"arequita-backend/internal/pkg/pgconv"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const slotColumns = `
	id, procedure_id, locality_id, date, time_of_day,
	max_capacity, current_bookings, is_active, created_at`

type SlotRepository struct{}

func NewSlotRepository() *SlotRepository {
	return &SlotRepository{}
}

func (r *SlotRepository) Create(ctx context.Context, db shared.DBTX, s *agenda.Slot) error {
	_, err := db.Exec(ctx, `
		INSERT INTO slots (
			id, procedure_id, locality_id, date, time_of_day,
			max_capacity, current_bookings, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID(), s.ProcedureID(), s.LocalityID(),
		pgconv.DateToPgtype(s.Date()), s.TimeOfDay(),
		s.MaxCapacity(), s.CurrentBookings(), s.IsActive(),
		pgconv.TimeToPgtype(s.CreatedAt()),
	)
	if err != nil {
		return wrapWriteErr("failed to create slot", err)
	}
	return nil
}

func (r *SlotRepository) FindByID(ctx context.Context, db shared.DBTX, id uuid.UUID) (*agenda.Slot, error) {
	row := db.QueryRow(ctx, `SELECT`+slotColumns+` FROM slots WHERE id = $1`, id)
	return scanSlot(row)
}

func (r *SlotRepository) FindByIDForUpdate(ctx context.Context, tx shared.DBTX, id uuid.UUID) (*agenda.Slot, error) {
	row := tx.QueryRow(ctx, `SELECT`+slotColumns+` FROM slots WHERE id = $1 FOR UPDATE`, id)
	return scanSlot(row)
}

func (r *SlotRepository) UpdateCurrentBookings(ctx context.Context, tx shared.DBTX, id uuid.UUID, currentBookings int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE slots SET current_bookings = $2 WHERE id = $1`,
		id, currentBookings)
	if err != nil {
		return infra.WrapRepoErr("failed to update slot bookings", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("slot not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *SlotRepository) ExistsAt(ctx context.Context, db shared.DBTX, procedureID, localityID uuid.UUID, date time.Time, timeOfDay string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM slots
			WHERE procedure_id = $1 AND locality_id = $2 AND date = $3 AND time_of_day = $4
		)`,
		procedureID, localityID, pgconv.DateToPgtype(date), timeOfDay).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check slot existence", err)
	}
	return exists, nil
}

func scanSlot(row pgx.Row) (*agenda.Slot, error) {
	var (
		id, procedureID, localityID  uuid.UUID
		date                         pgtype.Date
		timeOfDay                    string
		maxCapacity, currentBookings int
		isActive                     bool
		createdAt                    pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &procedureID, &localityID, &date, &timeOfDay,
		&maxCapacity, &currentBookings, &isActive, &createdAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to scan slot", err)
	}
	return agenda.ReconstructSlot(
		id, procedureID, localityID,
		pgconv.DateFromPgtype(date), timeOfDay,
		maxCapacity, currentBookings, isActive,
		createdAt.Time,
	), nil
}
