//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"arequita-backend/internal/domain/camping"
	"arequita-backend/internal/pkg/clock"
	"arequita-backend/internal/pkg/errs"
	"arequita-backend/internal/usecase/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type campingFixture struct {
	cmd      *commands.CampingCommands
	services *fakeServiceRepo
	records  *fakeRecordRepo
	notifier *fakeNotifier
	audit    *fakeAudit
	catalog  *fakeInvalidator
	clk      *clock.MockClock
}

func newCampingFixture(t *testing.T, svc *camping.Service) *campingFixture {
	t.Helper()
	f := &campingFixture{
		services: newFakeServiceRepo(svc),
		records:  newFakeRecordRepo(),
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
		catalog:  &fakeInvalidator{},
		clk:      clock.NewMockClock(time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)),
	}
	f.cmd = commands.NewCampingCommands(&fakeTxRunner{}, f.services, f.records, f.notifier, f.audit, f.catalog, f.clk)
	return f
}

func validInput(svc *camping.Service) commands.CreatePreReservationInput {
	return commands.CreatePreReservationInput{
		ServiceID: svc.ID(),
		FullName:  "Ana Pereira",
		Email:     "ana@example.com",
		Phone:     "099123456",
		Guests:    2,
		CheckIn:   "2026-01-20",
		CheckOut:  "2026-01-23",
		Lang:      "es",
		Source:    camping.SourceWeb,
	}
}

func TestCampingCreate(t *testing.T) {
	t.Run("crea una pre-reserva pendiente sin consumir unidades", func(t *testing.T) {
		svc := newTestService(3, 3)
		f := newCampingFixture(t, svc)

		rec, err := f.cmd.Create(context.Background(), validInput(svc))
		require.NoError(t, err)

		assert.Equal(t, camping.StatusPending, rec.Status())
		assert.True(t, camping.IsCode(rec.Code()))
		assert.Equal(t, 3, svc.AvailableUnits())
		assert.Equal(t, f.clk.Now().Add(camping.ExpiryWindow), rec.ExpiresAt())
		assert.Equal(t, 0, f.catalog.Calls())

		sent := f.notifier.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "ana@example.com", sent[0].Recipient)
		assert.Equal(t, "camping_pre_reservation_received", sent[0].Template)
	})

	t.Run("rechaza el servicio sin disponibilidad", func(t *testing.T) {
		svc := newTestService(2, 0)
		f := newCampingFixture(t, svc)

		_, err := f.cmd.Create(context.Background(), validInput(svc))
		require.ErrorIs(t, err, camping.ErrNoAvailability)
	})

	t.Run("junta todas las violaciones de validación", func(t *testing.T) {
		svc := newTestService(3, 3)
		f := newCampingFixture(t, svc)

		in := validInput(svc)
		in.FullName = "A"
		in.Email = "sin-arroba"
		in.Guests = 99
		_, err := f.cmd.Create(context.Background(), in)

		v, ok := errs.AsValidation(err)
		require.True(t, ok)
		assert.Len(t, v.Violations, 3)
	})

	t.Run("rechaza salida anterior al ingreso", func(t *testing.T) {
		svc := newTestService(3, 3)
		f := newCampingFixture(t, svc)

		in := validInput(svc)
		in.CheckIn = "2026-01-23"
		in.CheckOut = "2026-01-20"
		_, err := f.cmd.Create(context.Background(), in)

		_, ok := errs.AsValidation(err)
		require.True(t, ok)
	})

	t.Run("alta de operador nace confirmada y consume una unidad", func(t *testing.T) {
		svc := newTestService(3, 3)
		f := newCampingFixture(t, svc)

		in := validInput(svc)
		in.Source = camping.SourceAdmin
		in.Confirmed = true
		in.Actor = "mesa1"

		rec, err := f.cmd.Create(context.Background(), in)
		require.NoError(t, err)

		assert.Equal(t, camping.StatusConfirmed, rec.Status())
		assert.Equal(t, 2, svc.AvailableUnits())
		assert.Equal(t, 1, f.catalog.Calls())
		assert.Empty(t, f.notifier.Sent())

		entries := f.audit.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "camping.pre_reservation.create", entries[0].Action)
		assert.Equal(t, "mesa1", entries[0].Actor)
	})
}

func TestCampingConfirm(t *testing.T) {
	t.Run("confirma y descuenta exactamente una unidad", func(t *testing.T) {
		svc := newTestService(3, 3)
		f := newCampingFixture(t, svc)
		rec, err := f.cmd.Create(context.Background(), validInput(svc))
		require.NoError(t, err)

		res, err := f.cmd.Confirm(context.Background(), rec.ID(), "mesa1")
		require.NoError(t, err)

		assert.True(t, res.OK)
		assert.Equal(t, camping.StatusConfirmed, res.Record.Status())
		assert.Equal(t, 2, svc.AvailableUnits())
		assert.Equal(t, 1, f.catalog.Calls(), "el cache del catálogo se invalida al mover una unidad")
		require.NotNil(t, res.Record.ConfirmedAt())
	})

	t.Run("reconfirmar es idempotente y no vuelve a descontar", func(t *testing.T) {
		svc := newTestService(3, 3)
		f := newCampingFixture(t, svc)
		rec, _ := f.cmd.Create(context.Background(), validInput(svc))

		_, err := f.cmd.Confirm(context.Background(), rec.ID(), "")
		require.NoError(t, err)
		res, err := f.cmd.Confirm(context.Background(), rec.ID(), "")
		require.NoError(t, err)

		assert.True(t, res.OK)
		assert.False(t, res.Transitioned)
		assert.Equal(t, 2, svc.AvailableUnits())
		assert.Equal(t, 1, f.catalog.Calls())

		var confirmations int
		for _, m := range f.notifier.Sent() {
			if m.Template == "camping_pre_reservation_confirmed" {
				confirmations++
			}
		}
		assert.Equal(t, 1, confirmations)
	})

	t.Run("pasadas las 48 horas la confirma expira en su lugar", func(t *testing.T) {
		svc := newTestService(3, 3)
		f := newCampingFixture(t, svc)
		rec, _ := f.cmd.Create(context.Background(), validInput(svc))

		f.clk.Add(camping.ExpiryWindow + time.Minute)

		res, err := f.cmd.Confirm(context.Background(), rec.ID(), "")
		require.NoError(t, err)

		assert.False(t, res.OK)
		assert.Equal(t, camping.StatusExpired, res.Record.Status())
		require.NotNil(t, res.Record.ArchiveReason())
		assert.Equal(t, camping.AutoExpireReason, *res.Record.ArchiveReason())
		assert.Equal(t, 3, svc.AvailableUnits())
	})

	t.Run("confirmar por token resuelve el enlace del correo", func(t *testing.T) {
		svc := newTestService(3, 3)
		f := newCampingFixture(t, svc)
		rec, _ := f.cmd.Create(context.Background(), validInput(svc))

		res, err := f.cmd.ConfirmByToken(context.Background(), rec.ConfirmationToken())
		require.NoError(t, err)
		assert.True(t, res.OK)
		assert.Equal(t, 2, svc.AvailableUnits())
	})

	t.Run("nunca sobrevende bajo confirmaciones concurrentes", func(t *testing.T) {
		const total = 2
		const contenders = 8

		svc := newTestService(total, total)
		f := newCampingFixture(t, svc)

		records := make([]*camping.PreReservation, contenders)
		for i := range records {
			rec, err := f.cmd.Create(context.Background(), validInput(svc))
			require.NoError(t, err)
			records[i] = rec
		}

		var wg sync.WaitGroup
		results := make([]commands.ConfirmResult, contenders)
		for i := range records {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := f.cmd.Confirm(context.Background(), records[i].ID(), "")
				assert.NoError(t, err)
				results[i] = res
			}(i)
		}
		wg.Wait()

		confirmed := 0
		for _, res := range results {
			if res.OK {
				confirmed++
			} else {
				assert.Equal(t, "No hay disponibilidad para confirmar esta pre-reserva", res.Message)
			}
		}
		assert.Equal(t, total, confirmed)
		assert.Equal(t, 0, svc.AvailableUnits())
	})
}

func TestCampingLifecycle(t *testing.T) {
	t.Run("ingreso, estadía y salida devuelven la unidad", func(t *testing.T) {
		svc := newTestService(2, 2)
		f := newCampingFixture(t, svc)
		rec, _ := f.cmd.Create(context.Background(), validInput(svc))
		_, err := f.cmd.Confirm(context.Background(), rec.ID(), "")
		require.NoError(t, err)
		require.Equal(t, 1, svc.AvailableUnits())

		_, err = f.cmd.CheckIn(context.Background(), rec.ID(), "mesa1")
		require.NoError(t, err)
		assert.Equal(t, camping.StatusActive, rec.Status())
		assert.Equal(t, 1, svc.AvailableUnits())

		_, err = f.cmd.Complete(context.Background(), rec.ID(), "mesa1")
		require.NoError(t, err)
		assert.Equal(t, camping.StatusCompleted, rec.Status())
		assert.Equal(t, 2, svc.AvailableUnits())
	})

	t.Run("no se puede dar ingreso a una pendiente", func(t *testing.T) {
		svc := newTestService(2, 2)
		f := newCampingFixture(t, svc)
		rec, _ := f.cmd.Create(context.Background(), validInput(svc))

		_, err := f.cmd.CheckIn(context.Background(), rec.ID(), "mesa1")
		require.ErrorIs(t, err, camping.ErrNotConfirmed)
	})

	t.Run("archivar una confirmada devuelve la unidad", func(t *testing.T) {
		svc := newTestService(2, 2)
		f := newCampingFixture(t, svc)
		rec, _ := f.cmd.Create(context.Background(), validInput(svc))
		_, err := f.cmd.Confirm(context.Background(), rec.ID(), "")
		require.NoError(t, err)
		require.Equal(t, 1, svc.AvailableUnits())

		out, err := f.cmd.Archive(context.Background(), rec.ID(), "duplicada", "mesa1")
		require.NoError(t, err)
		assert.Equal(t, camping.StatusArchivedAdmin, out.Status())
		assert.Equal(t, 2, svc.AvailableUnits())
		assert.Equal(t, 2, f.catalog.Calls())
	})

	t.Run("archivar una pendiente no toca el inventario", func(t *testing.T) {
		svc := newTestService(2, 2)
		f := newCampingFixture(t, svc)
		rec, _ := f.cmd.Create(context.Background(), validInput(svc))

		_, err := f.cmd.Archive(context.Background(), rec.ID(), "spam", "mesa1")
		require.NoError(t, err)
		assert.Equal(t, 2, svc.AvailableUnits())
		assert.Equal(t, 0, f.catalog.Calls())
	})

	t.Run("archivar exige motivo", func(t *testing.T) {
		svc := newTestService(2, 2)
		f := newCampingFixture(t, svc)
		rec, _ := f.cmd.Create(context.Background(), validInput(svc))

		_, err := f.cmd.Archive(context.Background(), rec.ID(), "  ", "mesa1")
		require.ErrorIs(t, err, camping.ErrEmptyReason)
	})

	t.Run("archivar un estado final falla", func(t *testing.T) {
		svc := newTestService(2, 2)
		f := newCampingFixture(t, svc)
		rec, _ := f.cmd.Create(context.Background(), validInput(svc))
		_, err := f.cmd.Archive(context.Background(), rec.ID(), "spam", "mesa1")
		require.NoError(t, err)

		_, err = f.cmd.Archive(context.Background(), rec.ID(), "otra vez", "mesa1")
		require.ErrorIs(t, err, camping.ErrAlreadyTerminal)
	})
}

func TestCampingSweep(t *testing.T) {
	t.Run("expira pendientes vencidas y completa estadías terminadas", func(t *testing.T) {
		svc := newTestService(4, 4)
		f := newCampingFixture(t, svc)

		stale, _ := f.cmd.Create(context.Background(), validInput(svc))

		in := validInput(svc)
		in.CheckIn = "2026-01-11"
		in.CheckOut = "2026-01-12"
		active, err := f.cmd.Create(context.Background(), in)
		require.NoError(t, err)
		_, err = f.cmd.Confirm(context.Background(), active.ID(), "")
		require.NoError(t, err)
		_, err = f.cmd.CheckIn(context.Background(), active.ID(), "mesa1")
		require.NoError(t, err)
		require.Equal(t, 3, svc.AvailableUnits())

		// Beyond the 48h window and past the active stay's check-out.
		f.clk.Set(time.Date(2026, 1, 13, 9, 0, 0, 0, time.UTC))

		swept, err := f.cmd.SweepExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, swept)

		assert.Equal(t, camping.StatusExpired, stale.Status())
		assert.Equal(t, camping.StatusCompleted, active.Status())
		assert.Equal(t, 4, svc.AvailableUnits())
	})

	t.Run("expira la pendiente justo al cierre de la ventana", func(t *testing.T) {
		svc := newTestService(4, 4)
		f := newCampingFixture(t, svc)
		rec, err := f.cmd.Create(context.Background(), validInput(svc))
		require.NoError(t, err)

		// El mismo instante límite en que Confirm la rechazaría.
		f.clk.Set(rec.ExpiresAt())

		swept, err := f.cmd.SweepExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, swept)
		assert.Equal(t, camping.StatusExpired, rec.Status())
	})

	t.Run("repetir la barrida no cambia nada", func(t *testing.T) {
		svc := newTestService(4, 4)
		f := newCampingFixture(t, svc)
		_, err := f.cmd.Create(context.Background(), validInput(svc))
		require.NoError(t, err)

		f.clk.Add(camping.ExpiryWindow + time.Hour)

		first, err := f.cmd.SweepExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, first)

		second, err := f.cmd.SweepExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, second)
		assert.Equal(t, 4, svc.AvailableUnits())
	})
}
