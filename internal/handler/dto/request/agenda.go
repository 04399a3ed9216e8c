package request

import (
	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	SlotID    uuid.UUID `json:"slot_id" binding:"required"`
	CI        string    `json:"ci" binding:"required"`
	FirstName string    `json:"first_name" binding:"required"`
	LastName  string    `json:"last_name" binding:"required"`
	Email     string    `json:"email" binding:"required"`
}

type AdminCreateReservationRequest struct {
	CreateReservationRequest
	Confirmed bool `json:"confirmed"`
}

type CreateSlotRequest struct {
	ProcedureID uuid.UUID `json:"procedure_id" binding:"required"`
	LocalityID  uuid.UUID `json:"locality_id" binding:"required"`
	Date        string    `json:"date" binding:"required"`
	TimeOfDay   string    `json:"time_of_day" binding:"required"`
	MaxCapacity int       `json:"max_capacity" binding:"required"`
}
