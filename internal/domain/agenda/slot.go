package agenda

import (
	"regexp"
	"time"

	"arequita-backend/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrSlotFull           = errs.New("el turno seleccionado ya no tiene cupos disponibles")
	ErrSlotInactive       = errs.New("turno no válido o inactivo")
	ErrSlotInPast         = errs.New("no se pueden crear reservas en turnos pasados")
	ErrInvalidTimeOfDay   = errs.New("invalid slot time, want HH:MM")
	ErrInvalidCapacity    = errs.New("slot capacity must be at least 1")
	ErrBookingsOutOfRange = errs.New("current bookings out of range")
)

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Slot is a bookable appointment window for one procedure at one locality.
// CurrentBookings is the contended counter; it moves at creation time, not at
// confirmation (the asymmetry with the camping flow is intentional).
type Slot struct {
	id              uuid.UUID
	procedureID     uuid.UUID
	localityID      uuid.UUID
	date            time.Time
	timeOfDay       string
	maxCapacity     int
	currentBookings int
	isActive        bool
	createdAt       time.Time
}

func NewSlot(procedureID, localityID uuid.UUID, date time.Time, timeOfDay string, maxCapacity int) (*Slot, error) {
	if !timeOfDayPattern.MatchString(timeOfDay) {
		return nil, ErrInvalidTimeOfDay
	}
	if maxCapacity < 1 {
		return nil, ErrInvalidCapacity
	}
	y, m, d := date.Date()
	return &Slot{
		id:          uuid.New(),
		procedureID: procedureID,
		localityID:  localityID,
		date:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		timeOfDay:   timeOfDay,
		maxCapacity: maxCapacity,
		isActive:    true,
	}, nil
}

func ReconstructSlot(
	id, procedureID, localityID uuid.UUID,
	date time.Time,
	timeOfDay string,
	maxCapacity, currentBookings int,
	isActive bool,
	createdAt time.Time,
) *Slot {
	return &Slot{
		id:              id,
		procedureID:     procedureID,
		localityID:      localityID,
		date:            date,
		timeOfDay:       timeOfDay,
		maxCapacity:     maxCapacity,
		currentBookings: currentBookings,
		isActive:        isActive,
		createdAt:       createdAt,
	}
}

// Book takes one cupo. Callers must hold the row lock on the slot.
func (s *Slot) Book() error {
	if s.currentBookings >= s.maxCapacity {
		return ErrSlotFull
	}
	s.currentBookings++
	return nil
}

// Release returns one cupo, floored at zero.
func (s *Slot) Release() {
	if s.currentBookings > 0 {
		s.currentBookings--
	}
}

func (s *Slot) HasCapacity() bool {
	return s.currentBookings < s.maxCapacity
}

func (s *Slot) IsPast(today time.Time) bool {
	y, m, d := today.Date()
	return s.date.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func (s *Slot) ID() uuid.UUID          { return s.id }
func (s *Slot) ProcedureID() uuid.UUID { return s.procedureID }
func (s *Slot) LocalityID() uuid.UUID  { return s.localityID }
func (s *Slot) Date() time.Time        { return s.date }
func (s *Slot) TimeOfDay() string      { return s.timeOfDay }
func (s *Slot) MaxCapacity() int       { return s.maxCapacity }
func (s *Slot) CurrentBookings() int   { return s.currentBookings }
func (s *Slot) IsActive() bool         { return s.isActive }
func (s *Slot) CreatedAt() time.Time   { return s.createdAt }
