package commands

import (
	"context"
	"fmt"
	"time"

	"arequita-backend/internal/domain/camping"
	"arequita-backend/internal/pkg/clock"
	"arequita-backend/internal/pkg/errs"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrServiceNotFound        = errs.New("servicio no encontrado")
	ErrPreReservationNotFound = errs.New("pre-reserva no encontrada")
	ErrCodeGeneration         = errs.New("no se pudo generar un código único")
)

const codeGenAttempts = 5

type CampingCommands struct {
	runner   shared.TxRunner
	services CampingServiceRepository
	records  PreReservationRepository
	notifier Notifier
	audit    AuditSink
	catalog  CatalogInvalidator
	clk      clock.Clock
}

func NewCampingCommands(
	runner shared.TxRunner,
	services CampingServiceRepository,
	records PreReservationRepository,
	notifier Notifier,
	audit AuditSink,
	catalog CatalogInvalidator,
	clk clock.Clock,
) *CampingCommands {
	return &CampingCommands{
		runner:   runner,
		services: services,
		records:  records,
		notifier: notifier,
		audit:    audit,
		catalog:  catalog,
		clk:      clk,
	}
}

type CreatePreReservationInput struct {
	ServiceID uuid.UUID
	FullName  string
	Email     string
	Phone     string
	Guests    int
	CheckIn   string
	CheckOut  string
	Notes     string
	Lang      string
	Source    camping.Source
	// Confirmed creates the record directly in confirmado and consumes a
	// unit; only operator-sourced creates may set it.
	Confirmed bool
	Actor     string
}

func (c *CampingCommands) Create(ctx context.Context, in CreatePreReservationInput) (*camping.PreReservation, error) {
	var created *camping.PreReservation
	err := c.runner.InTx(ctx, func(ctx context.Context, tx shared.DBTX) error {
		svc, err := c.services.FindByIDForUpdate(ctx, tx, in.ServiceID)
		if err != nil {
			return err
		}
		if svc == nil || !svc.IsActive() {
			return ErrServiceNotFound
		}
		if !svc.HasAvailability() {
			return camping.ErrNoAvailability
		}

		checkIn, checkOut, err := parseStayDates(in.CheckIn, in.CheckOut)
		if err != nil {
			return err
		}

		code, err := c.uniqueCode(ctx, tx)
		if err != nil {
			return err
		}

		now := c.clk.Now()
		rec, err := camping.NewPreReservation(code, svc, camping.NewPreReservationInput{
			FullName: in.FullName,
			Email:    in.Email,
			Phone:    in.Phone,
			Guests:   in.Guests,
			CheckIn:  checkIn,
			CheckOut: checkOut,
			Notes:    in.Notes,
			Lang:     in.Lang,
		}, in.Source, now)
		if err != nil {
			return err
		}

		if in.Confirmed && in.Source == camping.SourceAdmin {
			if err := rec.MarkConfirmed(now); err != nil {
				return err
			}
			if err := svc.ConsumeUnit(); err != nil {
				return err
			}
			if err := c.services.UpdateAvailableUnits(ctx, tx, svc.ID(), svc.AvailableUnits()); err != nil {
				return err
			}
		}

		if err := c.records.Create(ctx, tx, rec); err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created.Status() == camping.StatusConfirmed {
		c.catalog.Invalidate(ctx)
	}
	if created.Source() == camping.SourceWeb {
		c.notifier.Send(ctx, created.Email(), "camping_pre_reservation_received", map[string]any{
			"code":       created.Code(),
			"full_name":  created.FullName(),
			"lang":       created.Lang(),
			"expires_at": created.ExpiresAt(),
			"token":      created.ConfirmationToken().String(),
		})
	}
	if created.Source() == camping.SourceAdmin {
		c.audit.Record(ctx, "camping.pre_reservation.create",
			fmt.Sprintf("código %s, servicio %s", created.Code(), in.ServiceID), in.Actor)
	}
	return created, nil
}

// ConfirmResult reports the outcome of a confirmation attempt. Business
// rejections travel here rather than as errors so callers can surface the
// message; only infrastructure failures come back as error.
type ConfirmResult struct {
	OK      bool
	Message string
	Record  *camping.PreReservation
	// Transitioned is false for the idempotent already-confirmed case.
	Transitioned bool
}

func (c *CampingCommands) Confirm(ctx context.Context, id uuid.UUID, actor string) (ConfirmResult, error) {
	var res ConfirmResult
	err := c.runner.InTx(ctx, func(ctx context.Context, tx shared.DBTX) error {
		rec, err := c.records.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrPreReservationNotFound
		}

		now := c.clk.Now()
		switch {
		case rec.Status() == camping.StatusConfirmed:
			res = ConfirmResult{OK: true, Message: "La pre-reserva ya estaba confirmada", Record: rec}
			return nil
		case rec.Status() != camping.StatusPending:
			res = ConfirmResult{OK: false, Message: fmt.Sprintf("La pre-reserva ya está en estado %s", rec.Status()), Record: rec}
			return nil
		case rec.HasExpired(now):
			if err := rec.MarkExpired(now); err != nil {
				return err
			}
			if err := c.records.Update(ctx, tx, rec); err != nil {
				return err
			}
			res = ConfirmResult{OK: false, Message: "La pre-reserva expiró y fue movida a expiradas automáticamente", Record: rec}
			return nil
		}

		svc, err := c.services.FindByIDForUpdate(ctx, tx, rec.ServiceID())
		if err != nil {
			return err
		}
		if svc == nil {
			return ErrServiceNotFound
		}
		if err := svc.ConsumeUnit(); err != nil {
			res = ConfirmResult{OK: false, Message: "No hay disponibilidad para confirmar esta pre-reserva", Record: rec}
			return nil
		}
		if err := rec.MarkConfirmed(now); err != nil {
			return err
		}
		if err := c.services.UpdateAvailableUnits(ctx, tx, svc.ID(), svc.AvailableUnits()); err != nil {
			return err
		}
		if err := c.records.Update(ctx, tx, rec); err != nil {
			return err
		}
		res = ConfirmResult{OK: true, Message: "Pre-reserva confirmada", Record: rec, Transitioned: true}
		return nil
	})
	if err != nil {
		return ConfirmResult{}, err
	}

	if res.Transitioned {
		c.catalog.Invalidate(ctx)
		c.notifier.Send(ctx, res.Record.Email(), "camping_pre_reservation_confirmed", map[string]any{
			"code":      res.Record.Code(),
			"full_name": res.Record.FullName(),
			"lang":      res.Record.Lang(),
		})
		if actor != "" {
			c.audit.Record(ctx, "camping.pre_reservation.confirm", "código "+res.Record.Code(), actor)
		}
	}
	return res, nil
}

// ConfirmByToken resolves the emailed confirmation link.
func (c *CampingCommands) ConfirmByToken(ctx context.Context, token uuid.UUID) (ConfirmResult, error) {
	var id uuid.UUID
	err := c.runner.InTx(ctx, func(ctx context.Context, tx shared.DBTX) error {
		rec, err := c.records.FindByConfirmationToken(ctx, tx, token)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrPreReservationNotFound
		}
		id = rec.ID()
		return nil
	})
	if err != nil {
		return ConfirmResult{}, err
	}
	return c.Confirm(ctx, id, "")
}

func (c *CampingCommands) CheckIn(ctx context.Context, id uuid.UUID, actor string) (*camping.PreReservation, error) {
	rec, err := c.transition(ctx, id, func(rec *camping.PreReservation) error {
		return rec.MarkCheckedIn(c.clk.Now())
	})
	if err != nil {
		return nil, err
	}
	c.audit.Record(ctx, "camping.pre_reservation.check_in", "código "+rec.Code(), actor)
	return rec, nil
}

// Complete finishes a stay and returns its unit to the pool.
func (c *CampingCommands) Complete(ctx context.Context, id uuid.UUID, actor string) (*camping.PreReservation, error) {
	var out *camping.PreReservation
	err := c.runner.InTx(ctx, func(ctx context.Context, tx shared.DBTX) error {
		rec, err := c.records.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrPreReservationNotFound
		}
		if err := rec.MarkCompleted(c.clk.Now()); err != nil {
			return err
		}
		if err := c.releaseUnit(ctx, tx, rec.ServiceID()); err != nil {
			return err
		}
		if err := c.records.Update(ctx, tx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.catalog.Invalidate(ctx)
	c.audit.Record(ctx, "camping.pre_reservation.complete", "código "+out.Code(), actor)
	return out, nil
}

func (c *CampingCommands) Archive(ctx context.Context, id uuid.UUID, reason, actor string) (*camping.PreReservation, error) {
	var out *camping.PreReservation
	var released bool
	err := c.runner.InTx(ctx, func(ctx context.Context, tx shared.DBTX) error {
		released = false
		rec, err := c.records.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrPreReservationNotFound
		}
		wasConsuming := rec.Status().ConsumesUnit()
		if err := rec.MarkArchived(reason, c.clk.Now()); err != nil {
			return err
		}
		if wasConsuming {
			if err := c.releaseUnit(ctx, tx, rec.ServiceID()); err != nil {
				return err
			}
			released = true
		}
		if err := c.records.Update(ctx, tx, rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	if released {
		c.catalog.Invalidate(ctx)
	}
	c.audit.Record(ctx, "camping.pre_reservation.archive",
		fmt.Sprintf("código %s, motivo: %s", out.Code(), reason), actor)
	return out, nil
}

// SweepExpired expires pendiente records past their 48 hour window and
// completes activo stays whose check-out date already passed, returning
// their units. Running it twice in a row is a no-op the second time.
func (c *CampingCommands) SweepExpired(ctx context.Context) (int, error) {
	var swept int
	var freed bool
	err := c.runner.InTx(ctx, func(ctx context.Context, tx shared.DBTX) error {
		swept = 0
		freed = false
		now := c.clk.Now()
		expired, err := c.records.ExpirePendingBefore(ctx, tx, now, camping.AutoExpireReason)
		if err != nil {
			return err
		}
		swept += int(expired)

		finished, err := c.records.FindActiveFinishedForUpdate(ctx, tx, clock.Today(c.clk))
		if err != nil {
			return err
		}
		for _, rec := range finished {
			if err := rec.MarkCompleted(now); err != nil {
				return err
			}
			if err := c.releaseUnit(ctx, tx, rec.ServiceID()); err != nil {
				return err
			}
			if err := c.records.Update(ctx, tx, rec); err != nil {
				return err
			}
			swept++
			freed = true
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if freed {
		c.catalog.Invalidate(ctx)
	}
	return swept, nil
}

func (c *CampingCommands) transition(ctx context.Context, id uuid.UUID, apply func(*camping.PreReservation) error) (*camping.PreReservation, error) {
	var out *camping.PreReservation
	err := c.runner.InTx(ctx, func(ctx context.Context, tx shared.DBTX) error {
		rec, err := c.records.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrPreReservationNotFound
		}
		if err := apply(rec); err != nil {
			return err
		}
		if err := c.records.Update(ctx, tx, rec); err != nil {
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

// releaseUnit returns one unit under the service row lock; the cap at
// total_units lives in the entity.
func (c *CampingCommands) releaseUnit(ctx context.Context, tx shared.DBTX, serviceID uuid.UUID) error {
	svc, err := c.services.FindByIDForUpdate(ctx, tx, serviceID)
	if err != nil {
		return err
	}
	if svc == nil {
		return ErrServiceNotFound
	}
	svc.ReleaseUnit()
	return c.services.UpdateAvailableUnits(ctx, tx, svc.ID(), svc.AvailableUnits())
}

func parseStayDates(checkIn, checkOut string) (time.Time, time.Time, error) {
	v := errs.NewValidation()
	in, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		v.Add("la fecha de ingreso debe tener formato AAAA-MM-DD")
	}
	out, err := time.Parse("2006-01-02", checkOut)
	if err != nil {
		v.Add("la fecha de salida debe tener formato AAAA-MM-DD")
	}
	if v.HasViolations() {
		return time.Time{}, time.Time{}, v
	}
	return in, out, nil
}

func (c *CampingCommands) uniqueCode(ctx context.Context, tx shared.DBTX) (string, error) {
	for range codeGenAttempts {
		code := camping.GenerateCode()
		exists, err := c.records.CodeExists(ctx, tx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeGeneration
}
