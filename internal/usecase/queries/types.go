package queries

import (
	"time"

	"github.com/google/uuid"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Pagination is a 1-based page window. Zero values fall back to defaults.
type Pagination struct {
	Page    int
	PerPage int
}

func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

func (p Pagination) Offset() int { return (p.Page - 1) * p.PerPage }

type ServiceCatalogItem struct {
	ID             uuid.UUID
	Slug           string
	ServiceType    string
	Name           string
	Description    string
	Price          int
	Currency       string
	Capacity       int
	TotalUnits     int
	AvailableUnits int
	IsFeatured     bool
	IsPromo        bool
}

type PreReservationListItem struct {
	ID            uuid.UUID
	Code          string
	ServiceID     uuid.UUID
	ServiceName   string
	FullName      string
	Email         string
	Phone         string
	Guests        int
	CheckIn       time.Time
	CheckOut      time.Time
	Notes         string
	Lang          string
	Status        string
	Source        string
	ArchiveReason *string
	ExpiresAt     time.Time
	ConfirmedAt   *time.Time
	CreatedAt     time.Time
}

type ReservationListItem struct {
	ID        uuid.UUID
	Code      string
	CI        string
	FirstName string
	LastName  string
	Email     string
	Procedure string
	Locality  string
	Date      time.Time
	TimeOfDay string
	Status    string
	Source    string
	CreatedAt time.Time
}

type SlotListItem struct {
	ID              uuid.UUID
	ProcedureID     uuid.UUID
	Procedure       string
	LocalityID      uuid.UUID
	Locality        string
	Date            time.Time
	TimeOfDay       string
	MaxCapacity     int
	CurrentBookings int
	IsActive        bool
}

type AuditEntry struct {
	ID        uuid.UUID
	Action    string
	Details   string
	Actor     string
	CreatedAt time.Time
}
