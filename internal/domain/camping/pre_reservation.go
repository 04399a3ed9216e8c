package camping

import (
	"fmt"
	"strings"
	"time"

	"arequita-backend/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrNotPending      = errs.New("la pre-reserva no está pendiente")
	ErrNotConfirmed    = errs.New("solo se puede dar ingreso a reservas confirmadas")
	ErrNotActive       = errs.New("solo se pueden finalizar estadías activas")
	ErrAlreadyTerminal = errs.New("la pre-reserva ya está en un estado final")
	ErrAlreadyExpired  = errs.New("la pre-reserva expiró")
	ErrEmptyReason     = errs.New("debes indicar un motivo para archivar la reserva")
)

// ExpiryWindow is how long an unconfirmed pre-reservation holds its place.
const ExpiryWindow = 48 * time.Hour

// AutoExpireReason is stamped by the sweep on records that ran out the window.
const AutoExpireReason = "Expiración automática de 48 horas sin confirmación"

const (
	maxFullNameLen = 140
	maxEmailLen    = 140
	maxPhoneLen    = 40
	maxNotesLen    = 2000
)

// PreReservation is the camping booking contract. It is born pendiente and
// only ever moves through the transition methods below; a unit of the parent
// service is consumed at confirmation, not at creation.
type PreReservation struct {
	id                uuid.UUID
	code              string
	serviceID         uuid.UUID
	fullName          string
	email             string
	phone             string
	guests            int
	stay              StayWindow
	notes             string
	lang              Lang
	status            Status
	source            Source
	archiveReason     *string
	confirmationToken uuid.UUID
	expiresAt         time.Time
	confirmedAt       *time.Time
	checkedInAt       *time.Time
	completedAt       *time.Time
	archivedAt        *time.Time
	createdAt         time.Time
	updatedAt         time.Time
}

// NewPreReservationInput is the raw request payload. Validation reports every
// violated constraint at once.
type NewPreReservationInput struct {
	FullName string
	Email    string
	Phone    string
	Guests   int
	CheckIn  time.Time
	CheckOut time.Time
	Notes    string
	Lang     string
}

func NewPreReservation(
	code string,
	svc *Service,
	in NewPreReservationInput,
	source Source,
	now time.Time,
) (*PreReservation, error) {
	v := errs.NewValidation()

	fullName := strings.TrimSpace(in.FullName)
	if len(fullName) < 2 || len(fullName) > maxFullNameLen {
		v.Add("el nombre completo debe tener entre 2 y 140 caracteres")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !looksLikeEmail(email) || len(email) > maxEmailLen {
		v.Add("el email no es válido")
	}
	phone := strings.TrimSpace(in.Phone)
	if len(phone) < 6 || len(phone) > maxPhoneLen {
		v.Add("el teléfono debe tener entre 6 y 40 caracteres")
	}
	if in.Guests < 1 || in.Guests > svc.Capacity() {
		v.Add(fmt.Sprintf("la cantidad de huéspedes debe estar entre 1 y %d", svc.Capacity()))
	}
	notes := strings.TrimSpace(in.Notes)
	if len(notes) > maxNotesLen {
		v.Add("las notas superan el largo máximo")
	}

	stay, err := NewStayWindow(in.CheckIn, in.CheckOut)
	if err != nil {
		v.Add(err.Error())
	}

	if v.HasViolations() {
		return nil, v
	}

	return &PreReservation{
		id:                uuid.New(),
		code:              code,
		serviceID:         svc.ID(),
		fullName:          fullName,
		email:             email,
		phone:             phone,
		guests:            in.Guests,
		stay:              stay,
		notes:             notes,
		lang:              SafeLang(in.Lang),
		status:            StatusPending,
		source:            source,
		confirmationToken: uuid.New(),
		expiresAt:         now.Add(ExpiryWindow),
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

func ReconstructPreReservation(
	id uuid.UUID,
	code string,
	serviceID uuid.UUID,
	fullName, email, phone string,
	guests int,
	stay StayWindow,
	notes string,
	lang Lang,
	status Status,
	source Source,
	archiveReason *string,
	confirmationToken uuid.UUID,
	expiresAt time.Time,
	confirmedAt, checkedInAt, completedAt, archivedAt *time.Time,
	createdAt, updatedAt time.Time,
) *PreReservation {
	return &PreReservation{
		id:                id,
		code:              code,
		serviceID:         serviceID,
		fullName:          fullName,
		email:             email,
		phone:             phone,
		guests:            guests,
		stay:              stay,
		notes:             notes,
		lang:              lang,
		status:            status,
		source:            source,
		archiveReason:     archiveReason,
		confirmationToken: confirmationToken,
		expiresAt:         expiresAt,
		confirmedAt:       confirmedAt,
		checkedInAt:       checkedInAt,
		completedAt:       completedAt,
		archivedAt:        archivedAt,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (p *PreReservation) HasExpired(now time.Time) bool {
	return !p.expiresAt.After(now)
}

// MarkConfirmed moves pendiente → confirmado. Availability accounting is the
// caller's job; the expiry window must already have been checked.
func (p *PreReservation) MarkConfirmed(now time.Time) error {
	if p.status != StatusPending {
		return errs.Mark(errs.New(fmt.Sprintf("la pre-reserva ya está en estado %s", p.status)), ErrNotPending)
	}
	if p.HasExpired(now) {
		return ErrAlreadyExpired
	}
	p.status = StatusConfirmed
	p.confirmedAt = &now
	p.updatedAt = now
	return nil
}

// MarkCheckedIn moves confirmado → activo. The consumed unit stays consumed.
func (p *PreReservation) MarkCheckedIn(now time.Time) error {
	if p.status != StatusConfirmed {
		return ErrNotConfirmed
	}
	p.status = StatusActive
	p.checkedInAt = &now
	p.updatedAt = now
	return nil
}

// MarkCompleted moves activo → completado. The caller returns the unit.
func (p *PreReservation) MarkCompleted(now time.Time) error {
	if p.status != StatusActive {
		return ErrNotActive
	}
	p.status = StatusCompleted
	p.completedAt = &now
	p.updatedAt = now
	return nil
}

// MarkExpired is the automatic 48h transition from pendiente.
func (p *PreReservation) MarkExpired(now time.Time) error {
	if p.status != StatusPending {
		return ErrNotPending
	}
	reason := AutoExpireReason
	p.status = StatusExpired
	p.archiveReason = &reason
	p.archivedAt = &now
	p.updatedAt = now
	return nil
}

// MarkArchived is the manual admin transition. A reason is mandatory and
// terminal records cannot be archived again.
func (p *PreReservation) MarkArchived(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrEmptyReason
	}
	if p.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	p.status = StatusArchivedAdmin
	p.archiveReason = &reason
	p.archivedAt = &now
	p.updatedAt = now
	return nil
}

func (p *PreReservation) ID() uuid.UUID               { return p.id }
func (p *PreReservation) Code() string                { return p.code }
func (p *PreReservation) ServiceID() uuid.UUID        { return p.serviceID }
func (p *PreReservation) FullName() string            { return p.fullName }
func (p *PreReservation) Email() string               { return p.email }
func (p *PreReservation) Phone() string               { return p.phone }
func (p *PreReservation) Guests() int                 { return p.guests }
func (p *PreReservation) Stay() StayWindow            { return p.stay }
func (p *PreReservation) Notes() string               { return p.notes }
func (p *PreReservation) Lang() Lang                  { return p.lang }
func (p *PreReservation) Status() Status              { return p.status }
func (p *PreReservation) Source() Source              { return p.source }
func (p *PreReservation) ArchiveReason() *string      { return p.archiveReason }
func (p *PreReservation) ConfirmationToken() uuid.UUID { return p.confirmationToken }
func (p *PreReservation) ExpiresAt() time.Time        { return p.expiresAt }
func (p *PreReservation) ConfirmedAt() *time.Time     { return p.confirmedAt }
func (p *PreReservation) CheckedInAt() *time.Time     { return p.checkedInAt }
func (p *PreReservation) CompletedAt() *time.Time     { return p.completedAt }
func (p *PreReservation) ArchivedAt() *time.Time      { return p.archivedAt }
func (p *PreReservation) CreatedAt() time.Time        { return p.createdAt }
func (p *PreReservation) UpdatedAt() time.Time        { return p.updatedAt }

func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	if at < 1 || at == len(s)-1 {
		return false
	}
	return strings.Contains(s[at+1:], ".")
}
