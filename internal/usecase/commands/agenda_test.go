//go:build unit

package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"arequita-backend/internal/domain/agenda"
	"arequita-backend/internal/pkg/clock"
	"arequita-backend/internal/pkg/errs"
	"arequita-backend/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type agendaFixture struct {
	cmd          *commands.AgendaCommands
	slots        *fakeSlotRepo
	reservations *fakeReservationRepo
	notifier     *fakeNotifier
	audit        *fakeAudit
	clk          *clock.MockClock
}

func newAgendaFixture(t *testing.T, slots ...*agenda.Slot) *agendaFixture {
	t.Helper()
	f := &agendaFixture{
		slots:        newFakeSlotRepo(slots...),
		reservations: newFakeReservationRepo(),
		notifier:     &fakeNotifier{},
		audit:        &fakeAudit{},
		clk:          clock.NewMockClock(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)),
	}
	f.cmd = commands.NewAgendaCommands(&fakeTxRunner{}, f.slots, f.reservations, f.notifier, f.audit, f.clk)
	return f
}

func newTestSlot(t *testing.T, maxCapacity int) *agenda.Slot {
	t.Helper()
	slot, err := agenda.NewSlot(
		uuid.New(), uuid.New(),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		"09:00", maxCapacity,
	)
	require.NoError(t, err)
	return slot
}

func reservationInput(slot *agenda.Slot) commands.CreateReservationInput {
	return commands.CreateReservationInput{
		SlotID:    slot.ID(),
		CI:        "4.123.456-7",
		FirstName: "Juan",
		LastName:  "Rodríguez",
		Email:     "juan@example.com",
		Source:    agenda.SourceWeb,
	}
}

func TestAgendaCreateReservation(t *testing.T) {
	t.Run("reserva web ocupa un cupo y envía el mail con token de cancelación", func(t *testing.T) {
		slot := newTestSlot(t, 5)
		f := newAgendaFixture(t, slot)

		rec, err := f.cmd.CreateReservation(context.Background(), reservationInput(slot))
		require.NoError(t, err)

		assert.Equal(t, agenda.StatusPending, rec.Status())
		assert.True(t, agenda.IsCode(rec.Code()))
		assert.Equal(t, 1, slot.CurrentBookings())

		sent := f.notifier.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "juan@example.com", sent[0].Recipient)
		assert.Equal(t, "agenda_reservation_created", sent[0].Template)
		assert.Equal(t, rec.CancellationToken().String(), sent[0].Data["cancellation_token"])
		assert.Empty(t, f.audit.Entries())
	})

	t.Run("creación por operador confirmada no envía mail y queda auditada", func(t *testing.T) {
		slot := newTestSlot(t, 5)
		f := newAgendaFixture(t, slot)

		in := reservationInput(slot)
		in.Source = agenda.SourceAdmin
		in.Confirmed = true
		in.Actor = "mesa1"

		rec, err := f.cmd.CreateReservation(context.Background(), in)
		require.NoError(t, err)

		assert.Equal(t, agenda.StatusConfirmed, rec.Status())
		assert.Empty(t, f.notifier.Sent())

		entries := f.audit.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "agenda.reservation.create", entries[0].Action)
		assert.Equal(t, "mesa1", entries[0].Actor)
	})

	t.Run("confirmada desde la web se guarda igual como pendiente", func(t *testing.T) {
		slot := newTestSlot(t, 5)
		f := newAgendaFixture(t, slot)

		in := reservationInput(slot)
		in.Confirmed = true

		rec, err := f.cmd.CreateReservation(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, agenda.StatusPending, rec.Status())
	})

	t.Run("turno inexistente", func(t *testing.T) {
		f := newAgendaFixture(t)

		in := reservationInput(newTestSlot(t, 1))
		_, err := f.cmd.CreateReservation(context.Background(), in)
		assert.ErrorIs(t, err, commands.ErrSlotNotFound)
	})

	t.Run("turno inactivo", func(t *testing.T) {
		slot := agenda.ReconstructSlot(
			uuid.New(), uuid.New(), uuid.New(),
			time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			"09:00", 5, 0, false, time.Now(),
		)
		f := newAgendaFixture(t, slot)

		_, err := f.cmd.CreateReservation(context.Background(), reservationInput(slot))
		assert.ErrorIs(t, err, agenda.ErrSlotInactive)
	})

	t.Run("turno en el pasado", func(t *testing.T) {
		slot := newTestSlot(t, 5)
		f := newAgendaFixture(t, slot)
		f.clk.Set(time.Date(2026, 1, 16, 8, 0, 0, 0, time.UTC))

		_, err := f.cmd.CreateReservation(context.Background(), reservationInput(slot))
		assert.ErrorIs(t, err, agenda.ErrSlotInPast)
		assert.Equal(t, 0, slot.CurrentBookings())
	})

	t.Run("datos inválidos devuelven todas las violaciones", func(t *testing.T) {
		slot := newTestSlot(t, 5)
		f := newAgendaFixture(t, slot)

		in := reservationInput(slot)
		in.CI = ""
		in.FirstName = "  "
		in.Email = "sin-arroba"

		_, err := f.cmd.CreateReservation(context.Background(), in)
		v, ok := errs.AsValidation(err)
		require.True(t, ok)
		assert.Len(t, v.Violations, 3)
		assert.Equal(t, 0, slot.CurrentBookings())
	})

	t.Run("no sobrevende cupos bajo concurrencia", func(t *testing.T) {
		slot := newTestSlot(t, 3)
		f := newAgendaFixture(t, slot)

		const attempts = 10
		var wg sync.WaitGroup
		errc := make(chan error, attempts)
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.cmd.CreateReservation(context.Background(), reservationInput(slot))
				errc <- err
			}()
		}
		wg.Wait()
		close(errc)

		var ok, full int
		for err := range errc {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, agenda.ErrSlotFull):
				full++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 3, ok)
		assert.Equal(t, attempts-3, full)
		assert.Equal(t, 3, slot.CurrentBookings())
		assert.False(t, slot.HasCapacity())
	})
}

func TestAgendaCancel(t *testing.T) {
	t.Run("cancelar devuelve el cupo", func(t *testing.T) {
		slot := newTestSlot(t, 2)
		f := newAgendaFixture(t, slot)
		rec, err := f.cmd.CreateReservation(context.Background(), reservationInput(slot))
		require.NoError(t, err)
		require.Equal(t, 1, slot.CurrentBookings())

		out, err := f.cmd.Cancel(context.Background(), rec.ID(), "mesa1")
		require.NoError(t, err)

		assert.Equal(t, agenda.StatusCancelled, out.Status())
		assert.Equal(t, 0, slot.CurrentBookings())

		entries := f.audit.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "agenda.reservation.cancel", entries[0].Action)
	})

	t.Run("cancelar con token del mail", func(t *testing.T) {
		slot := newTestSlot(t, 2)
		f := newAgendaFixture(t, slot)
		rec, err := f.cmd.CreateReservation(context.Background(), reservationInput(slot))
		require.NoError(t, err)

		out, err := f.cmd.CancelByToken(context.Background(), rec.CancellationToken())
		require.NoError(t, err)

		assert.Equal(t, agenda.StatusCancelled, out.Status())
		assert.Equal(t, 0, slot.CurrentBookings())
		assert.Empty(t, f.audit.Entries())
	})

	t.Run("token desconocido", func(t *testing.T) {
		slot := newTestSlot(t, 2)
		f := newAgendaFixture(t, slot)

		_, err := f.cmd.CancelByToken(context.Background(), uuid.New())
		assert.ErrorIs(t, err, commands.ErrReservationNotFound)
	})

	t.Run("cancelar dos veces", func(t *testing.T) {
		slot := newTestSlot(t, 2)
		f := newAgendaFixture(t, slot)
		rec, err := f.cmd.CreateReservation(context.Background(), reservationInput(slot))
		require.NoError(t, err)

		_, err = f.cmd.Cancel(context.Background(), rec.ID(), "mesa1")
		require.NoError(t, err)
		_, err = f.cmd.Cancel(context.Background(), rec.ID(), "mesa1")
		assert.ErrorIs(t, err, agenda.ErrAlreadyTerminal)
		assert.Equal(t, 0, slot.CurrentBookings())
	})
}

func TestAgendaClose(t *testing.T) {
	t.Run("marcar asistencia no toca el cupo", func(t *testing.T) {
		slot := newTestSlot(t, 2)
		f := newAgendaFixture(t, slot)
		rec, err := f.cmd.CreateReservation(context.Background(), reservationInput(slot))
		require.NoError(t, err)

		out, err := f.cmd.MarkAttended(context.Background(), rec.ID(), "mesa1")
		require.NoError(t, err)

		assert.Equal(t, agenda.StatusAttended, out.Status())
		assert.Equal(t, 1, slot.CurrentBookings())

		entries := f.audit.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "agenda.reservation.attend", entries[0].Action)
	})

	t.Run("marcar ausencia deja la reserva expirada sin devolver el cupo", func(t *testing.T) {
		slot := newTestSlot(t, 2)
		f := newAgendaFixture(t, slot)
		rec, err := f.cmd.CreateReservation(context.Background(), reservationInput(slot))
		require.NoError(t, err)

		out, err := f.cmd.MarkNoShow(context.Background(), rec.ID(), "mesa1")
		require.NoError(t, err)

		assert.Equal(t, agenda.StatusExpired, out.Status())
		assert.Equal(t, 1, slot.CurrentBookings())
	})

	t.Run("no se puede cerrar una reserva ya cerrada", func(t *testing.T) {
		slot := newTestSlot(t, 2)
		f := newAgendaFixture(t, slot)
		rec, err := f.cmd.CreateReservation(context.Background(), reservationInput(slot))
		require.NoError(t, err)

		_, err = f.cmd.MarkAttended(context.Background(), rec.ID(), "mesa1")
		require.NoError(t, err)
		_, err = f.cmd.MarkNoShow(context.Background(), rec.ID(), "mesa1")
		assert.ErrorIs(t, err, agenda.ErrNotActionable)
	})

	t.Run("reserva inexistente", func(t *testing.T) {
		f := newAgendaFixture(t)

		_, err := f.cmd.MarkAttended(context.Background(), uuid.New(), "mesa1")
		assert.ErrorIs(t, err, commands.ErrReservationNotFound)
	})
}

func TestAgendaCreateSlot(t *testing.T) {
	slotInput := func() commands.CreateSlotInput {
		return commands.CreateSlotInput{
			ProcedureID: uuid.New(),
			LocalityID:  uuid.New(),
			Date:        "2026-02-03",
			TimeOfDay:   "10:30",
			MaxCapacity: 8,
			Actor:       "mesa1",
		}
	}

	t.Run("crea el turno y lo audita", func(t *testing.T) {
		f := newAgendaFixture(t)

		slot, err := f.cmd.CreateSlot(context.Background(), slotInput())
		require.NoError(t, err)

		assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), slot.Date())
		assert.Equal(t, "10:30", slot.TimeOfDay())
		assert.Equal(t, 8, slot.MaxCapacity())
		assert.True(t, slot.IsActive())

		entries := f.audit.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "agenda.slot.create", entries[0].Action)
	})

	t.Run("rechaza el duplicado exacto", func(t *testing.T) {
		f := newAgendaFixture(t)
		in := slotInput()

		_, err := f.cmd.CreateSlot(context.Background(), in)
		require.NoError(t, err)
		_, err = f.cmd.CreateSlot(context.Background(), in)
		assert.ErrorIs(t, err, commands.ErrSlotAlreadyExists)
	})

	t.Run("misma franja en otra localidad no es duplicado", func(t *testing.T) {
		f := newAgendaFixture(t)
		in := slotInput()

		_, err := f.cmd.CreateSlot(context.Background(), in)
		require.NoError(t, err)

		in.LocalityID = uuid.New()
		_, err = f.cmd.CreateSlot(context.Background(), in)
		assert.NoError(t, err)
	})

	t.Run("fecha mal formada", func(t *testing.T) {
		f := newAgendaFixture(t)
		in := slotInput()
		in.Date = "03/02/2026"

		_, err := f.cmd.CreateSlot(context.Background(), in)
		assert.ErrorIs(t, err, commands.ErrInvalidSlotDate)
	})

	t.Run("hora y capacidad inválidas", func(t *testing.T) {
		f := newAgendaFixture(t)

		in := slotInput()
		in.TimeOfDay = "25:00"
		_, err := f.cmd.CreateSlot(context.Background(), in)
		assert.ErrorIs(t, err, agenda.ErrInvalidTimeOfDay)

		in = slotInput()
		in.MaxCapacity = 0
		_, err = f.cmd.CreateSlot(context.Background(), in)
		assert.ErrorIs(t, err, agenda.ErrInvalidCapacity)
	})
}
