//go:build e2e

package agenda_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"arequita-backend/internal/handler/dto/request"
	"arequita-backend/internal/handler/dto/response"
	"arequita-backend/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	publicSlotsURL        = "/api/agenda/slots"
	publicReservationsURL = "/api/agenda/reservations"
	adminReservationsURL  = "/api/admin/agenda/reservations"
	adminSlotsURL         = "/api/admin/agenda/slots"
)

type agendaSuite struct {
	e2e.SharedSuite
}

func TestAgendaSuite(t *testing.T) {
	suite.Run(t, new(agendaSuite))
}

// seedSlot creates a slot through the admin API and returns its ID.
func (s *agendaSuite) seedSlot(t *testing.T, token string, procedureID, localityID uuid.UUID, maxCapacity int) uuid.UUID {
	t.Helper()

	w := s.PerformRequest(t, http.MethodPost, adminSlotsURL, request.CreateSlotRequest{
		ProcedureID: procedureID,
		LocalityID:  localityID,
		Date:        time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		TimeOfDay:   "09:30",
		MaxCapacity: maxCapacity,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var slot response.SlotResponse
	s.Decode(t, w, &slot)
	return slot.ID
}

func reservationRequest(slotID uuid.UUID) request.CreateReservationRequest {
	return request.CreateReservationRequest{
		SlotID:    slotID,
		CI:        "4.123.456-7",
		FirstName: "Juan",
		LastName:  "Rodríguez",
		Email:     "juan@example.com",
	}
}

func (s *agendaSuite) TestReservationFlow() {
	s.Run("reservar un turno ocupa un cupo", func() {
		t := s.T()
		token := s.SeedAdmin(t, "mesa1")
		procedureID, localityID := s.SeedAgendaReference(t)
		slotID := s.seedSlot(t, token, procedureID, localityID, 3)

		w := s.PerformRequest(t, http.MethodPost, publicReservationsURL, reservationRequest(slotID), "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var rec response.ReservationResponse
		s.Decode(t, w, &rec)
		require.Equal(t, "pending", rec.Status)
		require.Equal(t, 1, s.CurrentBookings(t, slotID))

		// The free-slot listing now reports one cupo less.
		url := fmt.Sprintf("%s?procedure_id=%s&locality_id=%s", publicSlotsURL, procedureID, localityID)
		w = s.PerformRequest(t, http.MethodGet, url, nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var slots []response.SlotResponse
		s.Decode(t, w, &slots)
		require.Len(t, slots, 1)
		require.Equal(t, 1, slots[0].CurrentBookings)
	})

	s.Run("un turno lleno rechaza nuevas reservas", func() {
		t := s.T()
		token := s.SeedAdmin(t, "mesa1")
		procedureID, localityID := s.SeedAgendaReference(t)
		slotID := s.seedSlot(t, token, procedureID, localityID, 1)

		w := s.PerformRequest(t, http.MethodPost, publicReservationsURL, reservationRequest(slotID), "")
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.PerformRequest(t, http.MethodPost, publicReservationsURL, reservationRequest(slotID), "")
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		require.Equal(t, 1, s.CurrentBookings(t, slotID))

		// Full slots drop out of the public listing.
		url := fmt.Sprintf("%s?procedure_id=%s&locality_id=%s", publicSlotsURL, procedureID, localityID)
		w = s.PerformRequest(t, http.MethodGet, url, nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var slots []response.SlotResponse
		s.Decode(t, w, &slots)
		require.Empty(t, slots)
	})

	s.Run("cancelar por token devuelve el cupo", func() {
		t := s.T()
		token := s.SeedAdmin(t, "mesa1")
		procedureID, localityID := s.SeedAgendaReference(t)
		slotID := s.seedSlot(t, token, procedureID, localityID, 3)

		w := s.PerformRequest(t, http.MethodPost, publicReservationsURL, reservationRequest(slotID), "")
		require.Equal(t, http.StatusCreated, w.Code)
		var rec response.ReservationResponse
		s.Decode(t, w, &rec)

		var cancellationToken uuid.UUID
		err := s.DB.QueryRow(t.Context(),
			"SELECT cancellation_token FROM reservations WHERE id = $1", rec.ID).Scan(&cancellationToken)
		require.NoError(t, err)

		w = s.PerformRequest(t, http.MethodPost, "/api/agenda/cancel/"+cancellationToken.String(), nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var cancelled response.ReservationResponse
		s.Decode(t, w, &cancelled)
		require.Equal(t, "cancelled", cancelled.Status)
		require.Equal(t, 0, s.CurrentBookings(t, slotID))
	})

	s.Run("marcar asistencia cierra la reserva sin mover el cupo", func() {
		t := s.T()
		token := s.SeedAdmin(t, "mesa1")
		procedureID, localityID := s.SeedAgendaReference(t)
		slotID := s.seedSlot(t, token, procedureID, localityID, 3)

		w := s.PerformRequest(t, http.MethodPost, publicReservationsURL, reservationRequest(slotID), "")
		require.Equal(t, http.StatusCreated, w.Code)
		var rec response.ReservationResponse
		s.Decode(t, w, &rec)

		w = s.PerformRequest(t, http.MethodPost, fmt.Sprintf("%s/%s/attend", adminReservationsURL, rec.ID), nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Equal(t, 1, s.CurrentBookings(t, slotID))

		w = s.PerformRequest(t, http.MethodPost, fmt.Sprintf("%s/%s/no-show", adminReservationsURL, rec.ID), nil, token)
		require.Equal(t, http.StatusConflict, w.Code, "a closed reservation cannot be closed again")
	})
}

func (s *agendaSuite) TestSlotAdministration() {
	s.Run("un turno duplicado devuelve 409", func() {
		t := s.T()
		token := s.SeedAdmin(t, "mesa1")
		procedureID, localityID := s.SeedAgendaReference(t)

		req := request.CreateSlotRequest{
			ProcedureID: procedureID,
			LocalityID:  localityID,
			Date:        time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
			TimeOfDay:   "09:30",
			MaxCapacity: 5,
		}

		w := s.PerformRequest(t, http.MethodPost, adminSlotsURL, req, token)
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.PerformRequest(t, http.MethodPost, adminSlotsURL, req, token)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	s.Run("la fecha mal formada devuelve 400", func() {
		t := s.T()
		token := s.SeedAdmin(t, "mesa1")
		procedureID, localityID := s.SeedAgendaReference(t)

		w := s.PerformRequest(t, http.MethodPost, adminSlotsURL, request.CreateSlotRequest{
			ProcedureID: procedureID,
			LocalityID:  localityID,
			Date:        "07/09/2026",
			TimeOfDay:   "09:30",
			MaxCapacity: 5,
		}, token)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})
}
