//go:build e2e

package camping_test

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
	servicesURL        = "/api/camping/services"
	preReservationsURL = "/api/camping/pre-reservations"
	adminBaseURL       = "/api/admin/camping/pre-reservations"
	sweepURL           = "/api/admin/camping/sweep"
)

type campingSuite struct {
	e2e.SharedSuite
}

func TestCampingSuite(t *testing.T) {
	suite.Run(t, new(campingSuite))
}

func (s *campingSuite) createRequest(serviceID uuid.UUID) request.CreatePreReservationRequest {
	checkIn := time.Now().AddDate(0, 0, 10)
	return request.CreatePreReservationRequest{
		ServiceID: serviceID,
		FullName:  "Ana Pereira",
		Email:     "ana@example.com",
		Phone:     "099123456",
		Guests:    2,
		CheckIn:   checkIn.Format("2006-01-02"),
		CheckOut:  checkIn.AddDate(0, 0, 3).Format("2006-01-02"),
		Lang:      "es",
	}
}

func (s *campingSuite) confirmationToken(t *testing.T, id uuid.UUID) uuid.UUID {
	t.Helper()
	var token uuid.UUID
	err := s.DB.QueryRow(t.Context(),
		"SELECT confirmation_token FROM pre_reservations WHERE id = $1", id).Scan(&token)
	require.NoError(t, err)
	return token
}

func (s *campingSuite) TestPublicFlow() {
	s.Run("el catálogo lista los servicios activos", func() {
		t := s.T()
		s.SeedCampingService(t, "parcela-estandar", 4, 4)

		w := s.PerformRequest(t, http.MethodGet, servicesURL+"?lang=es", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var items []response.ServiceCatalogResponse
		s.Decode(t, w, &items)
		require.Len(t, items, 1)
		require.Equal(t, "parcela-estandar", items[0].Slug)
		require.Equal(t, 4, items[0].AvailableUnits)
	})

	s.Run("crear y confirmar por token descuenta una unidad", func() {
		t := s.T()
		serviceID := s.SeedCampingService(t, "parcela-estandar", 4, 4)

		w := s.PerformRequest(t, http.MethodPost, preReservationsURL, s.createRequest(serviceID), "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var rec response.PreReservationResponse
		s.Decode(t, w, &rec)
		require.Equal(t, "pendiente", rec.Status)
		require.Equal(t, 4, s.AvailableUnits(t, serviceID), "creation must not consume a unit")

		token := s.confirmationToken(t, rec.ID)
		w = s.PerformRequest(t, http.MethodGet, "/api/camping/confirm/"+token.String(), nil, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var confirm response.ConfirmResponse
		s.Decode(t, w, &confirm)
		require.True(t, confirm.OK)
		require.Equal(t, "confirmado", confirm.Status)
		require.Equal(t, 3, s.AvailableUnits(t, serviceID))
	})

	s.Run("datos inválidos devuelven 422 con el detalle", func() {
		t := s.T()
		serviceID := s.SeedCampingService(t, "parcela-estandar", 4, 4)

		req := s.createRequest(serviceID)
		req.CheckIn, req.CheckOut = req.CheckOut, req.CheckIn
		w := s.PerformRequest(t, http.MethodPost, preReservationsURL, req, "")
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	})

	s.Run("sin disponibilidad devuelve 409", func() {
		t := s.T()
		serviceID := s.SeedCampingService(t, "parcela-llena", 2, 0)

		w := s.PerformRequest(t, http.MethodPost, preReservationsURL, s.createRequest(serviceID), "")
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})
}

func (s *campingSuite) TestAdminLifecycle() {
	s.Run("confirmar, dar ingreso y completar devuelve la unidad", func() {
		t := s.T()
		token := s.SeedAdmin(t, "mesa1")
		serviceID := s.SeedCampingService(t, "parcela-estandar", 4, 4)

		w := s.PerformRequest(t, http.MethodPost, preReservationsURL, s.createRequest(serviceID), "")
		require.Equal(t, http.StatusCreated, w.Code)
		var rec response.PreReservationResponse
		s.Decode(t, w, &rec)

		w = s.PerformRequest(t, http.MethodPost, fmt.Sprintf("%s/%s/confirm", adminBaseURL, rec.ID), nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Equal(t, 3, s.AvailableUnits(t, serviceID))

		w = s.PerformRequest(t, http.MethodPost, fmt.Sprintf("%s/%s/check-in", adminBaseURL, rec.ID), nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Equal(t, 3, s.AvailableUnits(t, serviceID), "an active stay still holds its unit")

		w = s.PerformRequest(t, http.MethodPost, fmt.Sprintf("%s/%s/complete", adminBaseURL, rec.ID), nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Equal(t, 4, s.AvailableUnits(t, serviceID))
	})

	s.Run("dar ingreso a una pendiente devuelve 409", func() {
		t := s.T()
		token := s.SeedAdmin(t, "mesa1")
		serviceID := s.SeedCampingService(t, "parcela-estandar", 4, 4)

		w := s.PerformRequest(t, http.MethodPost, preReservationsURL, s.createRequest(serviceID), "")
		require.Equal(t, http.StatusCreated, w.Code)
		var rec response.PreReservationResponse
		s.Decode(t, w, &rec)

		w = s.PerformRequest(t, http.MethodPost, fmt.Sprintf("%s/%s/check-in", adminBaseURL, rec.ID), nil, token)
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	s.Run("el barrido expira las pendientes vencidas", func() {
		t := s.T()
		token := s.SeedAdmin(t, "mesa1")
		serviceID := s.SeedCampingService(t, "parcela-estandar", 4, 4)

		w := s.PerformRequest(t, http.MethodPost, preReservationsURL, s.createRequest(serviceID), "")
		require.Equal(t, http.StatusCreated, w.Code)
		var rec response.PreReservationResponse
		s.Decode(t, w, &rec)

		_, err := s.DB.Exec(t.Context(),
			"UPDATE pre_reservations SET expires_at = now() - interval '1 hour' WHERE id = $1", rec.ID)
		require.NoError(t, err)

		w = s.PerformRequest(t, http.MethodPost, sweepURL, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res response.SweepResponse
		s.Decode(t, w, &res)
		require.Equal(t, 1, res.Swept)

		var status string
		err = s.DB.QueryRow(t.Context(),
			"SELECT status FROM pre_reservations WHERE id = $1", rec.ID).Scan(&status)
		require.NoError(t, err)
		require.Equal(t, "expirado", status)
	})

	s.Run("el listado administrativo barre vencidas antes de leer", func() {
		t := s.T()
		token := s.SeedAdmin(t, "mesa1")
		serviceID := s.SeedCampingService(t, "parcela-estandar", 4, 4)

		w := s.PerformRequest(t, http.MethodPost, preReservationsURL, s.createRequest(serviceID), "")
		require.Equal(t, http.StatusCreated, w.Code)
		var rec response.PreReservationResponse
		s.Decode(t, w, &rec)

		_, err := s.DB.Exec(t.Context(),
			"UPDATE pre_reservations SET expires_at = now() - interval '1 hour' WHERE id = $1", rec.ID)
		require.NoError(t, err)

		w = s.PerformRequest(t, http.MethodGet, adminBaseURL, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var list response.ListEnvelope[response.PreReservationListResponse]
		s.Decode(t, w, &list)
		require.Len(t, list.Items, 1)
		require.Equal(t, "expirado", list.Items[0].Status)
	})

	s.Run("los endpoints de administración exigen token", func() {
		t := s.T()

		w := s.PerformRequest(t, http.MethodGet, adminBaseURL, nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)

		w = s.PerformRequest(t, http.MethodPost, sweepURL, nil, "token-invalido")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
