package queries

import (
	"bytes"
	"context"
	"encoding/csv"
	"time"

	"arequita-backend/internal/pkg/errs"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReservationFilter struct {
	Status      string
	ProcedureID *uuid.UUID
	LocalityID  *uuid.UUID
	Date        *time.Time
	Search      string
	Pagination
}

type SlotFilter struct {
	ProcedureID *uuid.UUID
	LocalityID  *uuid.UUID
	From        *time.Time
	To          *time.Time
	// OnlyAvailable keeps active slots with free cupos on a future date.
	OnlyAvailable bool
	Pagination
}

type AgendaReader interface {
	ListReservations(ctx context.Context, db shared.DBTX, f ReservationFilter) ([]ReservationListItem, int64, error)
	GetReservation(ctx context.Context, db shared.DBTX, id uuid.UUID) (*ReservationListItem, error)
	ListSlots(ctx context.Context, db shared.DBTX, f SlotFilter) ([]SlotListItem, int64, error)
}

type AgendaQueries struct {
	db     shared.DBTX
	reader AgendaReader
}

func NewAgendaQueries(db shared.DBTX, reader AgendaReader) *AgendaQueries {
	return &AgendaQueries{db: db, reader: reader}
}

func (q *AgendaQueries) ListReservations(ctx context.Context, f ReservationFilter) ([]ReservationListItem, int64, error) {
	f.Pagination = f.Pagination.Normalize()
	items, total, err := q.reader.ListReservations(ctx, q.db, f)
	if err != nil {
		return nil, 0, errs.Wrap(err, "list reservations")
	}
	return items, total, nil
}

func (q *AgendaQueries) GetReservation(ctx context.Context, id uuid.UUID) (*ReservationListItem, error) {
	item, err := q.reader.GetReservation(ctx, q.db, id)
	if err != nil {
		return nil, errs.Wrap(err, "get reservation")
	}
	return item, nil
}

func (q *AgendaQueries) ListSlots(ctx context.Context, f SlotFilter) ([]SlotListItem, int64, error) {
	f.Pagination = f.Pagination.Normalize()
	items, total, err := q.reader.ListSlots(ctx, q.db, f)
	if err != nil {
		return nil, 0, errs.Wrap(err, "list slots")
	}
	return items, total, nil
}

// AvailableSlots is the public view: active future slots with free cupos.
func (q *AgendaQueries) AvailableSlots(ctx context.Context, procedureID, localityID uuid.UUID, from time.Time) ([]SlotListItem, error) {
	f := SlotFilter{
		ProcedureID:   &procedureID,
		LocalityID:    &localityID,
		From:          &from,
		OnlyAvailable: true,
		Pagination:    Pagination{Page: 1, PerPage: maxPerPage},
	}
	items, _, err := q.reader.ListSlots(ctx, q.db, f)
	if err != nil {
		return nil, errs.Wrap(err, "list available slots")
	}
	return items, nil
}

func (q *AgendaQueries) ExportReservationsCSV(ctx context.Context, f ReservationFilter) ([]byte, error) {
	f.Pagination = Pagination{Page: 1, PerPage: maxPerPage}
	var rows []ReservationListItem
	for {
		page, _, err := q.reader.ListReservations(ctx, q.db, f)
		if err != nil {
			return nil, errs.Wrap(err, "export reservations")
		}
		rows = append(rows, page...)
		if len(page) < f.PerPage {
			break
		}
		f.Page++
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"Código", "CI", "Nombre", "Apellido", "Email", "Trámite", "Localidad", "Fecha", "Hora", "Estado", "Origen"}
	if err := w.Write(header); err != nil {
		return nil, errs.Wrap(err, "write csv header")
	}
	for _, r := range rows {
		record := []string{
			r.Code, r.CI, r.FirstName, r.LastName, r.Email,
			r.Procedure, r.Locality,
			r.Date.Format("2006-01-02"), r.TimeOfDay,
			r.Status, r.Source,
		}
		if err := w.Write(record); err != nil {
			return nil, errs.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errs.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}
