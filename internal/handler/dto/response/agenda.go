package response

import (
	"time"

	"arequita-backend/internal/domain/agenda"
	"arequita-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ReservationResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	CI        string    `json:"ci"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	SlotID    uuid.UUID `json:"slot_id"`
	Date      string    `json:"date"`
	TimeOfDay string    `json:"time_of_day"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

func FromReservation(r *agenda.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:        r.ID(),
		Code:      r.Code(),
		CI:        r.CI(),
		FirstName: r.FirstName(),
		LastName:  r.LastName(),
		Email:     r.Email(),
		SlotID:    r.SlotID(),
		Date:      r.Date().Format("2006-01-02"),
		TimeOfDay: r.TimeOfDay(),
		Status:    string(r.Status()),
		Source:    string(r.Source()),
		CreatedAt: r.CreatedAt(),
	}
}

type ReservationListResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	CI        string    `json:"ci"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Procedure string    `json:"procedure"`
	Locality  string    `json:"locality"`
	Date      time.Time `json:"date"`
	TimeOfDay string    `json:"time_of_day"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

func FromReservationItems(items []queries.ReservationListItem) []ReservationListResponse {
	out := make([]ReservationListResponse, 0, len(items))
	_ = copier.Copy(&out, &items)
	return out
}

func FromReservationItem(item *queries.ReservationListItem) *ReservationListResponse {
	var out ReservationListResponse
	_ = copier.Copy(&out, item)
	return &out
}

type SlotResponse struct {
	ID              uuid.UUID `json:"id"`
	ProcedureID     uuid.UUID `json:"procedure_id"`
	Procedure       string    `json:"procedure"`
	LocalityID      uuid.UUID `json:"locality_id"`
	Locality        string    `json:"locality"`
	Date            time.Time `json:"date"`
	TimeOfDay       string    `json:"time_of_day"`
	MaxCapacity     int       `json:"max_capacity"`
	CurrentBookings int       `json:"current_bookings"`
	IsActive        bool      `json:"is_active"`
}

func FromSlotItems(items []queries.SlotListItem) []SlotResponse {
	out := make([]SlotResponse, 0, len(items))
	_ = copier.Copy(&out, &items)
	return out
}

func FromSlot(s *agenda.Slot) *SlotResponse {
	return &SlotResponse{
		ID:              s.ID(),
		ProcedureID:     s.ProcedureID(),
		LocalityID:      s.LocalityID(),
		Date:            s.Date(),
		TimeOfDay:       s.TimeOfDay(),
		MaxCapacity:     s.MaxCapacity(),
		CurrentBookings: s.CurrentBookings(),
		IsActive:        s.IsActive(),
	}
}
