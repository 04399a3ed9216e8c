package response

import (
	"time"

	"arequita-backend/internal/domain/camping"
	"arequita-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ServiceCatalogResponse struct {
	ID             uuid.UUID `json:"id"`
	Slug           string    `json:"slug"`
	ServiceType    string    `json:"service_type"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          int       `json:"price"`
	Currency       string    `json:"currency"`
	Capacity       int       `json:"capacity"`
	TotalUnits     int       `json:"total_units"`
	AvailableUnits int       `json:"available_units"`
	IsFeatured     bool      `json:"is_featured"`
	IsPromo        bool      `json:"is_promo"`
}

func FromCatalogItems(items []queries.ServiceCatalogItem) []ServiceCatalogResponse {
	out := make([]ServiceCatalogResponse, 0, len(items))
	_ = copier.Copy(&out, &items)
	return out
}

type PreReservationResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	ServiceID uuid.UUID `json:"service_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Guests    int       `json:"guests"`
	CheckIn   string    `json:"check_in"`
	CheckOut  string    `json:"check_out"`
	Notes     string    `json:"notes,omitempty"`
	Lang      string    `json:"lang"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func FromPreReservation(p *camping.PreReservation) *PreReservationResponse {
	return &PreReservationResponse{
		ID:        p.ID(),
		Code:      p.Code(),
		ServiceID: p.ServiceID(),
		FullName:  p.FullName(),
		Email:     p.Email(),
		Phone:     p.Phone(),
		Guests:    p.Guests(),
		CheckIn:   p.Stay().CheckIn().Format("2006-01-02"),
		CheckOut:  p.Stay().CheckOut().Format("2006-01-02"),
		Notes:     p.Notes(),
		Lang:      string(p.Lang()),
		Status:    string(p.Status()),
		Source:    string(p.Source()),
		ExpiresAt: p.ExpiresAt(),
		CreatedAt: p.CreatedAt(),
	}
}

type PreReservationListResponse struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	ServiceID     uuid.UUID  `json:"service_id"`
	ServiceName   string     `json:"service_name"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Guests        int        `json:"guests"`
	CheckIn       time.Time  `json:"check_in"`
	CheckOut      time.Time  `json:"check_out"`
	Notes         string     `json:"notes,omitempty"`
	Lang          string     `json:"lang"`
	Status        string     `json:"status"`
	Source        string     `json:"source"`
	ArchiveReason *string    `json:"archive_reason,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func FromPreReservationItems(items []queries.PreReservationListItem) []PreReservationListResponse {
	out := make([]PreReservationListResponse, 0, len(items))
	_ = copier.Copy(&out, &items)
	return out
}

func FromPreReservationItem(item *queries.PreReservationListItem) *PreReservationListResponse {
	var out PreReservationListResponse
	_ = copier.Copy(&out, item)
	return &out
}

type ConfirmResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type SweepResponse struct {
	Swept int `json:"swept"`
}
