package request

import (
	"strings"

	"github.com/google/uuid"
)

type CreatePreReservationRequest struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	FullName  string    `json:"full_name" binding:"required"`
	Email     string    `json:"email" binding:"required"`
	Phone     string    `json:"phone" binding:"required"`
	Guests    int       `json:"guests" binding:"required"`
	CheckIn   string    `json:"check_in" binding:"required"`
	CheckOut  string    `json:"check_out" binding:"required"`
	Notes     string    `json:"notes"`
	Lang      string    `json:"lang"`
}

type AdminCreatePreReservationRequest struct {
	CreatePreReservationRequest
	Confirmed bool `json:"confirmed"`
}

type ArchivePreReservationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (r ArchivePreReservationRequest) TrimmedReason() string {
	return strings.TrimSpace(r.Reason)
}
