package commands

import (
	"context"
	"time"

	"arequita-backend/internal/domain/agenda"
	"arequita-backend/internal/domain/camping"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

type CampingServiceRepository interface {
	FindByID(ctx context.Context, db shared.DBTX, id uuid.UUID) (*camping.Service, error)
	// FindByIDForUpdate locks the service row until the surrounding
	// transaction ends, serializing every counter mutation.
	FindByIDForUpdate(ctx context.Context, tx shared.DBTX, id uuid.UUID) (*camping.Service, error)
	UpdateAvailableUnits(ctx context.Context, tx shared.DBTX, id uuid.UUID, availableUnits int) error
}

type PreReservationRepository interface {
	Create(ctx context.Context, db shared.DBTX, p *camping.PreReservation) error
	FindByID(ctx context.Context, db shared.DBTX, id uuid.UUID) (*camping.PreReservation, error)
	FindByIDForUpdate(ctx context.Context, tx shared.DBTX, id uuid.UUID) (*camping.PreReservation, error)
	FindByConfirmationToken(ctx context.Context, db shared.DBTX, token uuid.UUID) (*camping.PreReservation, error)
	Update(ctx context.Context, db shared.DBTX, p *camping.PreReservation) error
	CodeExists(ctx context.Context, db shared.DBTX, code string) (bool, error)
	// ExpirePendingBefore bulk-transitions pendiente records whose deadline
	// passed; no units move because none were consumed.
	ExpirePendingBefore(ctx context.Context, tx shared.DBTX, now time.Time, reason string) (int64, error)
	// FindActiveFinishedForUpdate locks every activo record whose stay ended
	// before today, so the sweep can complete them and return their units.
	FindActiveFinishedForUpdate(ctx context.Context, tx shared.DBTX, today time.Time) ([]*camping.PreReservation, error)
}

type SlotRepository interface {
	Create(ctx context.Context, db shared.DBTX, s *agenda.Slot) error
	FindByID(ctx context.Context, db shared.DBTX, id uuid.UUID) (*agenda.Slot, error)
	FindByIDForUpdate(ctx context.Context, tx shared.DBTX, id uuid.UUID) (*agenda.Slot, error)
	UpdateCurrentBookings(ctx context.Context, tx shared.DBTX, id uuid.UUID, currentBookings int) error
	ExistsAt(ctx context.Context, db shared.DBTX, procedureID, localityID uuid.UUID, date time.Time, timeOfDay string) (bool, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, db shared.DBTX, r *agenda.Reservation) error
	FindByID(ctx context.Context, db shared.DBTX, id uuid.UUID) (*agenda.Reservation, error)
	FindByIDForUpdate(ctx context.Context, tx shared.DBTX, id uuid.UUID) (*agenda.Reservation, error)
	FindByCancellationToken(ctx context.Context, db shared.DBTX, token uuid.UUID) (*agenda.Reservation, error)
	Update(ctx context.Context, db shared.DBTX, r *agenda.Reservation) error
	CodeExists(ctx context.Context, db shared.DBTX, code string) (bool, error)
}

// Notifier dispatches emails without blocking the caller. Implementations
// swallow and log failures; a lost email never rolls back a transition.
type Notifier interface {
	Send(ctx context.Context, recipient, template string, data map[string]any)
}

// AuditSink records admin actions best-effort.
type AuditSink interface {
	Record(ctx context.Context, action, details, actor string)
}

// CatalogInvalidator drops cached catalog pages after a committed write
// moved a unit, so the public listing reflects the new availability.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}
