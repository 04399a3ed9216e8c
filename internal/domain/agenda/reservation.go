package agenda

import (
	"strings"
	"time"

	"arequita-backend/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrNotActionable   = errs.New("la reserva no está pendiente ni confirmada")
	ErrAlreadyTerminal = errs.New("la reserva ya está en un estado final")
)

const (
	maxCILen        = 20
	maxNameLen      = 100
	maxResEmailLen  = 120
)

// Reservation is one appointment booking against a Slot. Its cupo was taken
// when the record was created, so attended/no-show transitions never touch
// the counter; only cancellation returns it.
type Reservation struct {
	id                uuid.UUID
	code              string
	ci                string
	firstName         string
	lastName          string
	email             string
	procedureID       uuid.UUID
	localityID        uuid.UUID
	slotID            uuid.UUID
	date              time.Time
	timeOfDay         string
	status            Status
	source            Source
	confirmationToken uuid.UUID
	cancellationToken uuid.UUID
	createdAt         time.Time
	updatedAt         time.Time
}

// NewReservationInput carries the requester identity fields.
type NewReservationInput struct {
	CI        string
	FirstName string
	LastName  string
	Email     string
}

func NewReservation(code string, slot *Slot, in NewReservationInput, source Source, confirmed bool, now time.Time) (*Reservation, error) {
	v := errs.NewValidation()

	ci := strings.TrimSpace(in.CI)
	if ci == "" || len(ci) > maxCILen {
		v.Add("la cédula es obligatoria")
	}
	firstName := strings.TrimSpace(in.FirstName)
	if firstName == "" || len(firstName) > maxNameLen {
		v.Add("el nombre es obligatorio")
	}
	lastName := strings.TrimSpace(in.LastName)
	if lastName == "" || len(lastName) > maxNameLen {
		v.Add("el apellido es obligatorio")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || len(email) > maxResEmailLen || !strings.Contains(email, "@") {
		v.Add("el email no es válido")
	}
	if v.HasViolations() {
		return nil, v
	}

	status := StatusPending
	if confirmed {
		status = StatusConfirmed
	}

	return &Reservation{
		id:                uuid.New(),
		code:              code,
		ci:                ci,
		firstName:         firstName,
		lastName:          lastName,
		email:             email,
		procedureID:       slot.ProcedureID(),
		localityID:        slot.LocalityID(),
		slotID:            slot.ID(),
		date:              slot.Date(),
		timeOfDay:         slot.TimeOfDay(),
		status:            status,
		source:            source,
		confirmationToken: uuid.New(),
		cancellationToken: uuid.New(),
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

func ReconstructReservation(
	id uuid.UUID,
	code, ci, firstName, lastName, email string,
	procedureID, localityID, slotID uuid.UUID,
	date time.Time,
	timeOfDay string,
	status Status,
	source Source,
	confirmationToken, cancellationToken uuid.UUID,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:                id,
		code:              code,
		ci:                ci,
		firstName:         firstName,
		lastName:          lastName,
		email:             email,
		procedureID:       procedureID,
		localityID:        localityID,
		slotID:            slotID,
		date:              date,
		timeOfDay:         timeOfDay,
		status:            status,
		source:            source,
		confirmationToken: confirmationToken,
		cancellationToken: cancellationToken,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// MarkAttended moves pending|confirmed → attended. No cupo movement.
func (r *Reservation) MarkAttended(now time.Time) error {
	if r.status != StatusPending && r.status != StatusConfirmed {
		return ErrNotActionable
	}
	r.status = StatusAttended
	r.updatedAt = now
	return nil
}

// MarkNoShow moves pending|confirmed → expired. The cupo is not returned.
func (r *Reservation) MarkNoShow(now time.Time) error {
	if r.status != StatusPending && r.status != StatusConfirmed {
		return ErrNotActionable
	}
	r.status = StatusExpired
	r.updatedAt = now
	return nil
}

// MarkCancelled is allowed from any non-terminal state; the caller releases
// the slot cupo.
func (r *Reservation) MarkCancelled(now time.Time) error {
	if r.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	r.status = StatusCancelled
	r.updatedAt = now
	return nil
}

func (r *Reservation) ID() uuid.UUID                 { return r.id }
func (r *Reservation) Code() string                  { return r.code }
func (r *Reservation) CI() string                    { return r.ci }
func (r *Reservation) FirstName() string             { return r.firstName }
func (r *Reservation) LastName() string              { return r.lastName }
func (r *Reservation) Email() string                 { return r.email }
func (r *Reservation) ProcedureID() uuid.UUID        { return r.procedureID }
func (r *Reservation) LocalityID() uuid.UUID         { return r.localityID }
func (r *Reservation) SlotID() uuid.UUID             { return r.slotID }
func (r *Reservation) Date() time.Time               { return r.date }
func (r *Reservation) TimeOfDay() string             { return r.timeOfDay }
func (r *Reservation) Status() Status                { return r.status }
func (r *Reservation) Source() Source                { return r.source }
func (r *Reservation) ConfirmationToken() uuid.UUID  { return r.confirmationToken }
func (r *Reservation) CancellationToken() uuid.UUID  { return r.cancellationToken }
func (r *Reservation) CreatedAt() time.Time          { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time          { return r.updatedAt }
