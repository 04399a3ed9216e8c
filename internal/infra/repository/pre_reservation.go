package repository

import (
	"context"
	"time"

	"arequita-backend/internal/domain/camping"
	"arequita-backend/internal/infra"
	"arequita-backend/internal/pkg/pgconv"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const preReservationColumns = `
	id, code, service_id, full_name, email, phone, guests,
	check_in, check_out, notes, lang, status, source, archive_reason,
	confirmation_token, expires_at,
	confirmed_at, checked_in_at, completed_at, archived_at,
	created_at, updated_at`

type PreReservationRepository struct{}

func NewPreReservationRepository() *PreReservationRepository {
	return &PreReservationRepository{}
}

func (r *PreReservationRepository) Create(ctx context.Context, db shared.DBTX, p *camping.PreReservation) error {
	_, err := db.Exec(ctx, `
		INSERT INTO pre_reservations (
			id, code, service_id, full_name, email, phone, guests,
			check_in, check_out, notes, lang, status, source, archive_reason,
			confirmation_token, expires_at,
			confirmed_at, checked_in_at, completed_at, archived_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14,
			$15, $16,
			$17, $18, $19, $20,
			$21, $22
		)`,
		p.ID(), p.Code(), p.ServiceID(), p.FullName(), p.Email(), p.Phone(), p.Guests(),
		pgconv.DateToPgtype(p.Stay().CheckIn()), pgconv.DateToPgtype(p.Stay().CheckOut()),
		p.Notes(), string(p.Lang()), string(p.Status()), string(p.Source()),
		pgconv.StringPtrToPgtype(p.ArchiveReason()),
		p.ConfirmationToken(), pgconv.TimeToPgtype(p.ExpiresAt()),
		pgconv.TimePtrToPgtype(p.ConfirmedAt()), pgconv.TimePtrToPgtype(p.CheckedInAt()),
		pgconv.TimePtrToPgtype(p.CompletedAt()), pgconv.TimePtrToPgtype(p.ArchivedAt()),
		pgconv.TimeToPgtype(p.CreatedAt()), pgconv.TimeToPgtype(p.UpdatedAt()),
	)
	if err != nil {
		return wrapWriteErr("failed to create pre-reservation", err)
	}
	return nil
}

func (r *PreReservationRepository) FindByID(ctx context.Context, db shared.DBTX, id uuid.UUID) (*camping.PreReservation, error) {
	row := db.QueryRow(ctx, `SELECT`+preReservationColumns+` FROM pre_reservations WHERE id = $1`, id)
	return scanPreReservation(row)
}

func (r *PreReservationRepository) FindByIDForUpdate(ctx context.Context, tx shared.DBTX, id uuid.UUID) (*camping.PreReservation, error) {
	row := tx.QueryRow(ctx, `SELECT`+preReservationColumns+` FROM pre_reservations WHERE id = $1 FOR UPDATE`, id)
	return scanPreReservation(row)
}

func (r *PreReservationRepository) FindByConfirmationToken(ctx context.Context, db shared.DBTX, token uuid.UUID) (*camping.PreReservation, error) {
	row := db.QueryRow(ctx, `SELECT`+preReservationColumns+` FROM pre_reservations WHERE confirmation_token = $1`, token)
	return scanPreReservation(row)
}

func (r *PreReservationRepository) Update(ctx context.Context, db shared.DBTX, p *camping.PreReservation) error {
	tag, err := db.Exec(ctx, `
		UPDATE pre_reservations SET
			status = $2, archive_reason = $3,
			confirmed_at = $4, checked_in_at = $5, completed_at = $6, archived_at = $7,
			updated_at = $8
		WHERE id = $1`,
		p.ID(), string(p.Status()), pgconv.StringPtrToPgtype(p.ArchiveReason()),
		pgconv.TimePtrToPgtype(p.ConfirmedAt()), pgconv.TimePtrToPgtype(p.CheckedInAt()),
		pgconv.TimePtrToPgtype(p.CompletedAt()), pgconv.TimePtrToPgtype(p.ArchivedAt()),
		pgconv.TimeToPgtype(p.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update pre-reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("pre-reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *PreReservationRepository) CodeExists(ctx context.Context, db shared.DBTX, code string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM pre_reservations WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check code", err)
	}
	return exists, nil
}

func (r *PreReservationRepository) ExpirePendingBefore(ctx context.Context, tx shared.DBTX, now time.Time, reason string) (int64, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE pre_reservations SET
			status = $1, archive_reason = $2, archived_at = $3, updated_at = $3
		WHERE status = $4 AND expires_at <= $3`,
		string(camping.StatusExpired), reason, pgconv.TimeToPgtype(now), string(camping.StatusPending),
	)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to expire pending pre-reservations", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PreReservationRepository) FindActiveFinishedForUpdate(ctx context.Context, tx shared.DBTX, today time.Time) ([]*camping.PreReservation, error) {
	rows, err := tx.Query(ctx,
		`SELECT`+preReservationColumns+` FROM pre_reservations WHERE status = $1 AND check_out < $2 FOR UPDATE`,
		string(camping.StatusActive), pgconv.DateToPgtype(today),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list finished stays", err)
	}
	defer rows.Close()

	var out []*camping.PreReservation
	for rows.Next() {
		rec, err := scanPreReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate finished stays", err)
	}
	return out, nil
}

func scanPreReservation(row pgx.Row) (*camping.PreReservation, error) {
	var (
		id, serviceID                 uuid.UUID
		code, fullName, email, phone  string
		guests                        int
		checkIn, checkOut             pgtype.Date
		notes, lang, status, source   string
		archiveReason                 pgtype.Text
		confirmationToken             uuid.UUID
		expiresAt                     pgtype.Timestamptz
		confirmedAt, checkedInAt      pgtype.Timestamptz
		completedAt, archivedAt       pgtype.Timestamptz
		createdAt, updatedAt          pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &code, &serviceID, &fullName, &email, &phone, &guests,
		&checkIn, &checkOut, &notes, &lang, &status, &source, &archiveReason,
		&confirmationToken, &expiresAt,
		&confirmedAt, &checkedInAt, &completedAt, &archivedAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to scan pre-reservation", err)
	}
	return camping.ReconstructPreReservation(
		id, code, serviceID,
		fullName, email, phone,
		guests,
		camping.ReconstructStayWindow(pgconv.DateFromPgtype(checkIn), pgconv.DateFromPgtype(checkOut)),
		notes,
		camping.Lang(lang),
		camping.Status(status),
		camping.Source(source),
		pgconv.StringPtrFromPgtype(archiveReason),
		confirmationToken,
		expiresAt.Time,
		pgconv.TimePtrFromPgtype(confirmedAt), pgconv.TimePtrFromPgtype(checkedInAt),
		pgconv.TimePtrFromPgtype(completedAt), pgconv.TimePtrFromPgtype(archivedAt),
		createdAt.Time, updatedAt.Time,
	), nil
}
