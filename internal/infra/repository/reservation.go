package repository

import (
	"context"

	"arequita-backend/internal/domain/agenda"
	"arequita-backend/internal/infra"
	"arequita-backend/internal/pkg/pgconv"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const reservationColumns = `
	id, code, ci, first_name, last_name, email,
	procedure_id, locality_id, slot_id, date, time_of_day,
	status, source, confirmation_token, cancellation_token,
	created_at, updated_at`

type ReservationRepository struct{}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{}
}

func (r *ReservationRepository) Create(ctx context.Context, db shared.DBTX, res *agenda.Reservation) error {
	_, err := db.Exec(ctx, `
		INSERT INTO reservations (
			id, code, ci, first_name, last_name, email,
			procedure_id, locality_id, slot_id, date, time_of_day,
			status, source, confirmation_token, cancellation_token,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15,
			$16, $17
		)`,
		res.ID(), res.Code(), res.CI(), res.FirstName(), res.LastName(), res.Email(),
		res.ProcedureID(), res.LocalityID(), res.SlotID(),
		pgconv.DateToPgtype(res.Date()), res.TimeOfDay(),
		string(res.Status()), string(res.Source()),
		res.ConfirmationToken(), res.CancellationToken(),
		pgconv.TimeToPgtype(res.CreatedAt()), pgconv.TimeToPgtype(res.UpdatedAt()),
	)
	if err != nil {
		return wrapWriteErr("failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, db shared.DBTX, id uuid.UUID) (*agenda.Reservation, error) {
	row := db.QueryRow(ctx, `SELECT`+reservationColumns+` FROM reservations WHERE id = $1`, id)
	return scanReservation(row)
}

func (r *ReservationRepository) FindByIDForUpdate(ctx context.Context, tx shared.DBTX, id uuid.UUID) (*agenda.Reservation, error) {
	row := tx.QueryRow(ctx, `SELECT`+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
	return scanReservation(row)
}

func (r *ReservationRepository) FindByCancellationToken(ctx context.Context, db shared.DBTX, token uuid.UUID) (*agenda.Reservation, error) {
	row := db.QueryRow(ctx, `SELECT`+reservationColumns+` FROM reservations WHERE cancellation_token = $1`, token)
	return scanReservation(row)
}

func (r *ReservationRepository) Update(ctx context.Context, db shared.DBTX, res *agenda.Reservation) error {
	tag, err := db.Exec(ctx, `
		UPDATE reservations SET status = $2, updated_at = $3 WHERE id = $1`,
		res.ID(), string(res.Status()), pgconv.TimeToPgtype(res.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *ReservationRepository) CodeExists(ctx context.Context, db shared.DBTX, code string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check code", err)
	}
	return exists, nil
}

func scanReservation(row pgx.Row) (*agenda.Reservation, error) {
	var (
		id, procedureID, localityID, slotID  uuid.UUID
		code, ci, firstName, lastName, email string
		date                                 pgtype.Date
		timeOfDay, status, source            string
		confirmationToken, cancellationToken uuid.UUID
		createdAt, updatedAt                 pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &code, &ci, &firstName, &lastName, &email,
		&procedureID, &localityID, &slotID, &date, &timeOfDay,
		&status, &source, &confirmationToken, &cancellationToken,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to scan reservation", err)
	}
	return agenda.ReconstructReservation(
		id, code, ci, firstName, lastName, email,
		procedureID, localityID, slotID,
		pgconv.DateFromPgtype(date), timeOfDay,
		agenda.Status(status), agenda.Source(source),
		confirmationToken, cancellationToken,
		createdAt.Time, updatedAt.Time,
	), nil
}
