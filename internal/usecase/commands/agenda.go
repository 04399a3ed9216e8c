package commands

import (
	"context"
	"fmt"
	"time"

	"arequita-backend/internal/domain/agenda"
	"arequita-backend/internal/pkg/clock"
	"arequita-backend/internal/pkg/errs"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrSlotNotFound        = errs.New("turno no encontrado")
	ErrReservationNotFound = errs.New("reserva no encontrada")
	ErrSlotAlreadyExists   = errs.New("ya existe un turno para ese trámite, localidad, fecha y hora")
	ErrInvalidSlotDate     = errs.New("fecha inválida, se espera AAAA-MM-DD")
)

type AgendaCommands struct {
	runner       shared.TxRunner
	slots        SlotRepository
	reservations ReservationRepository
	notifier     Notifier
	audit        AuditSink
	clk          clock.Clock
}

func NewAgendaCommands(
	runner shared.TxRunner,
	slots SlotRepository,
	reservations ReservationRepository,
	notifier Notifier,
	audit AuditSink,
	clk clock.Clock,
) *AgendaCommands {
	return &AgendaCommands{
		runner:       runner,
		slots:        slots,
		reservations: reservations,
		notifier:     notifier,
		audit:        audit,
		clk:          clk,
	}
}

type CreateReservationInput struct {
	SlotID    uuid.UUID
	CI        string
	FirstName string
	LastName  string
	Email     string
	Source    agenda.Source
	// Confirmed skips the pending step; only operator-sourced creates may
	// set it.
	Confirmed bool
	Actor     string
}

// CreateReservation books a seat on a slot. The slot row stays locked for
// the whole transaction, so current_bookings can never pass max_capacity.
func (a *AgendaCommands) CreateReservation(ctx context.Context, in CreateReservationInput) (*agenda.Reservation, error) {
	var created *agenda.Reservation
	err := a.runner.InTx(ctx, func(ctx context.Context, tx shared.DBTX) error {
		slot, err := a.slots.FindByIDForUpdate(ctx, tx, in.SlotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return ErrSlotNotFound
		}
		if !slot.IsActive() {
			return agenda.ErrSlotInactive
		}
		if slot.IsPast(clock.Today(a.clk)) {
			return agenda.ErrSlotInPast
		}

		code, err := a.uniqueCode(ctx, tx)
		if err != nil {
			return err
		}

		now := a.clk.Now()
		confirmed := in.Confirmed && in.Source == agenda.SourceAdmin
		rec, err := agenda.NewReservation(code, slot, agenda.NewReservationInput{
			CI:        in.CI,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Email:     in.Email,
		}, in.Source, confirmed, now)
		if err != nil {
			return err
		}

		if err := slot.Book(); err != nil {
			return err
		}
		if err := a.slots.UpdateCurrentBookings(ctx, tx, slot.ID(), slot.CurrentBookings()); err != nil {
			return err
		}
		if err := a.reservations.Create(ctx, tx, rec); err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created.Source() == agenda.SourceWeb {
		a.notifier.Send(ctx, created.Email(), "agenda_reservation_created", map[string]any{
			"code":               created.Code(),
			"first_name":         created.FirstName(),
			"date":               created.Date(),
			"time":               created.TimeOfDay(),
			"cancellation_token": created.CancellationToken().String(),
		})
	}
	if created.Source() == agenda.SourceAdmin {
		a.audit.Record(ctx, "agenda.reservation.create",
			fmt.Sprintf("código %s, turno %s", created.Code(), in.SlotID), in.Actor)
	}
	return created, nil
}

func (a *AgendaCommands) Cancel(ctx context.Context, id uuid.UUID, actor string) (*agenda.Reservation, error) {
	rec, err := a.cancelLocked(ctx, func(ctx context.Context, tx shared.DBTX) (*agenda.Reservation, error) {
		return a.reservations.FindByIDForUpdate(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	if actor != "" {
		a.audit.Record(ctx, "agenda.reservation.cancel", "código "+rec.Code(), actor)
	}
	return rec, nil
}

// CancelByToken resolves the emailed self-service cancellation link.
func (a *AgendaCommands) CancelByToken(ctx context.Context, token uuid.UUID) (*agenda.Reservation, error) {
	return a.cancelLocked(ctx, func(ctx context.Context, tx shared.DBTX) (*agenda.Reservation, error) {
		rec, err := a.reservations.FindByCancellationToken(ctx, tx, token)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, nil
		}
		return a.reservations.FindByIDForUpdate(ctx, tx, rec.ID())
	})
}

func (a *AgendaCommands) cancelLocked(ctx context.Context, find func(context.Context, shared.DBTX) (*agenda.Reservation, error)) (*agenda.Reservation, error) {
	var out *agenda.Reservation
	err := a.runner.InTx(ctx, func(ctx context.Context, tx shared.DBTX) error {
		rec, err := find(ctx, tx)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrReservationNotFound
		}
		if err := rec.MarkCancelled(a.clk.Now()); err != nil {
			return err
		}

		slot, err := a.slots.FindByIDForUpdate(ctx, tx, rec.SlotID())
		if err != nil {
			return err
		}
		if slot == nil {
			return ErrSlotNotFound
		}
		slot.Release()
		if err := a.slots.UpdateCurrentBookings(ctx, tx, slot.ID(), slot.CurrentBookings()); err != nil {
			return err
		}
		if err := a.reservations.Update(ctx, tx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAttended closes a reservation as honored. No seat moves; the slot
// date already passed.
func (a *AgendaCommands) MarkAttended(ctx context.Context, id uuid.UUID, actor string) (*agenda.Reservation, error) {
	return a.close(ctx, id, actor, "agenda.reservation.attend", (*agenda.Reservation).MarkAttended)
}

func (a *AgendaCommands) MarkNoShow(ctx context.Context, id uuid.UUID, actor string) (*agenda.Reservation, error) {
	return a.close(ctx, id, actor, "agenda.reservation.no_show", (*agenda.Reservation).MarkNoShow)
}

func (a *AgendaCommands) close(ctx context.Context, id uuid.UUID, actor, action string, apply func(*agenda.Reservation, time.Time) error) (*agenda.Reservation, error) {
	var out *agenda.Reservation
	err := a.runner.InTx(ctx, func(ctx context.Context, tx shared.DBTX) error {
		rec, err := a.reservations.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrReservationNotFound
		}
		if err := apply(rec, a.clk.Now()); err != nil {
			return err
		}
		if err := a.reservations.Update(ctx, tx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.audit.Record(ctx, action, "código "+out.Code(), actor)
	return out, nil
}

type CreateSlotInput struct {
	ProcedureID uuid.UUID
	LocalityID  uuid.UUID
	Date        string
	TimeOfDay   string
	MaxCapacity int
	Actor       string
}

func (a *AgendaCommands) CreateSlot(ctx context.Context, in CreateSlotInput) (*agenda.Slot, error) {
	var created *agenda.Slot
	err := a.runner.InTx(ctx, func(ctx context.Context, tx shared.DBTX) error {
		date, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return errs.Mark(errs.Wrap(err, "parse slot date"), ErrInvalidSlotDate)
		}
		exists, err := a.slots.ExistsAt(ctx, tx, in.ProcedureID, in.LocalityID, date, in.TimeOfDay)
		if err != nil {
			return err
		}
		if exists {
			return ErrSlotAlreadyExists
		}
		slot, err := agenda.NewSlot(in.ProcedureID, in.LocalityID, date, in.TimeOfDay, in.MaxCapacity)
		if err != nil {
			return err
		}
		if err := a.slots.Create(ctx, tx, slot); err != nil {
			return err
		}
		created = slot
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.audit.Record(ctx, "agenda.slot.create",
		fmt.Sprintf("trámite %s, localidad %s, %s %s", in.ProcedureID, in.LocalityID, in.Date, in.TimeOfDay), in.Actor)
	return created, nil
}

func (a *AgendaCommands) uniqueCode(ctx context.Context, tx shared.DBTX) (string, error) {
	for range codeGenAttempts {
		code := agenda.GenerateCode()
		exists, err := a.reservations.CodeExists(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeGeneration
}
