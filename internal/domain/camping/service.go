package camping

import (
	"time"

	"arequita-backend/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrNoAvailability   = errs.New("no hay disponibilidad para este servicio")
	ErrUnitsOutOfRange  = errs.New("available units out of range")
	ErrServiceInactive  = errs.New("servicio no válido o inactivo")
	ErrInvalidCapacity  = errs.New("capacity must be at least 1")
	ErrInvalidUnitCount = errs.New("total units cannot be negative")
)

// Service is a bookable camping resource. AvailableUnits is the contended
// counter: reads that feed a mutation must come from a locked row.
type Service struct {
	id             uuid.UUID
	slug           string
	serviceType    string
	name           LocalizedText
	description    LocalizedText
	price          int
	currency       string
	capacity       int
	totalUnits     int
	availableUnits int
	isFeatured     bool
	isPromo        bool
	isActive       bool
	createdAt      time.Time
	updatedAt      time.Time
}

// LocalizedText carries the es/en/pt variants of a user-facing string.
type LocalizedText struct {
	ES string
	EN string
	PT string
}

func (t LocalizedText) In(lang Lang) string {
	switch lang {
	case LangEN:
		if t.EN != "" {
			return t.EN
		}
	case LangPT:
		if t.PT != "" {
			return t.PT
		}
	}
	return t.ES
}

func NewService(
	id uuid.UUID,
	slug, serviceType string,
	name, description LocalizedText,
	price int,
	currency string,
	capacity, totalUnits, availableUnits int,
	isFeatured, isPromo, isActive bool,
) (*Service, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if totalUnits < 0 {
		return nil, ErrInvalidUnitCount
	}
	if availableUnits < 0 || availableUnits > totalUnits {
		return nil, ErrUnitsOutOfRange
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &Service{
		id:             id,
		slug:           slug,
		serviceType:    serviceType,
		name:           name,
		description:    description,
		price:          price,
		currency:       currency,
		capacity:       capacity,
		totalUnits:     totalUnits,
		availableUnits: availableUnits,
		isFeatured:     isFeatured,
		isPromo:        isPromo,
		isActive:       isActive,
	}, nil
}

func ReconstructService(
	id uuid.UUID,
	slug, serviceType string,
	name, description LocalizedText,
	price int,
	currency string,
	capacity, totalUnits, availableUnits int,
	isFeatured, isPromo, isActive bool,
	createdAt, updatedAt time.Time,
) *Service {
	return &Service{
		id:             id,
		slug:           slug,
		serviceType:    serviceType,
		name:           name,
		description:    description,
		price:          price,
		currency:       currency,
		capacity:       capacity,
		totalUnits:     totalUnits,
		availableUnits: availableUnits,
		isFeatured:     isFeatured,
		isPromo:        isPromo,
		isActive:       isActive,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// ConsumeUnit takes one unit out of inventory. Callers must hold the row
// lock for this service while the read-modify-write is in flight.
func (s *Service) ConsumeUnit() error {
	if s.availableUnits <= 0 {
		return ErrNoAvailability
	}
	s.availableUnits--
	return nil
}

// ReleaseUnit returns one unit to inventory, capped at the total.
func (s *Service) ReleaseUnit() {
	if s.availableUnits < s.totalUnits {
		s.availableUnits++
	}
}

func (s *Service) HasAvailability() bool {
	return s.availableUnits > 0
}

func (s *Service) ID() uuid.UUID             { return s.id }
func (s *Service) Slug() string              { return s.slug }
func (s *Service) ServiceType() string       { return s.serviceType }
func (s *Service) Name() LocalizedText       { return s.name }
func (s *Service) Description() LocalizedText { return s.description }
func (s *Service) Price() int                { return s.price }
func (s *Service) Currency() string          { return s.currency }
func (s *Service) Capacity() int             { return s.capacity }
func (s *Service) TotalUnits() int           { return s.totalUnits }
func (s *Service) AvailableUnits() int       { return s.availableUnits }
func (s *Service) IsFeatured() bool          { return s.isFeatured }
func (s *Service) IsPromo() bool             { return s.isPromo }
func (s *Service) IsActive() bool            { return s.isActive }
func (s *Service) CreatedAt() time.Time      { return s.createdAt }
func (s *Service) UpdatedAt() time.Time      { return s.updatedAt }
