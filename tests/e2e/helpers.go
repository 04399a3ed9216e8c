//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"arequita-backend/internal/handler/dto/request"
	"arequita-backend/internal/handler/dto/response"
	"arequita-backend/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// PerformRequest runs one request against the router. A non-empty token goes
// out as a Bearer Authorization header.
func (s *SharedSuite) PerformRequest(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *SharedSuite) Decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

// SeedAdmin inserts an operator account and returns a fresh session token.
func (s *SharedSuite) SeedAdmin(t *testing.T, username string) string {
	t.Helper()

	hash, err := password.Hash("password123")
	require.NoError(t, err)

	_, err = s.DB.Exec(t.Context(),
		"INSERT INTO admin_users (username, password_hash, is_active) VALUES ($1, $2, TRUE)",
		username, hash)
	require.NoError(t, err)

	w := s.PerformRequest(t, http.MethodPost, "/api/auth/login", request.LoginRequest{
		Username: username,
		Password: "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var res response.LoginResponse
	s.Decode(t, w, &res)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func (s *SharedSuite) SeedCampingService(t *testing.T, slug string, totalUnits, availableUnits int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := s.DB.Exec(t.Context(), `
		INSERT INTO camping_services
			(id, slug, service_type, name_es, name_en, description_es,
			 price, currency, capacity, total_units, available_units, is_active)
		VALUES ($1, $2, 'parcela', 'Parcela estándar', 'Standard pitch', 'Con parrillero',
			 950, 'UYU', 6, $3, $4, TRUE)`,
		id, slug, totalUnits, availableUnits)
	require.NoError(t, err)
	return id
}

func (s *SharedSuite) AvailableUnits(t *testing.T, serviceID uuid.UUID) int {
	t.Helper()

	var units int
	err := s.DB.QueryRow(t.Context(),
		"SELECT available_units FROM camping_services WHERE id = $1", serviceID).Scan(&units)
	require.NoError(t, err)
	return units
}

// SeedAgendaReference inserts one procedure and one locality.
func (s *SharedSuite) SeedAgendaReference(t *testing.T) (procedureID, localityID uuid.UUID) {
	t.Helper()

	procedureID, localityID = uuid.New(), uuid.New()
	_, err := s.DB.Exec(t.Context(),
		"INSERT INTO procedures (id, name) VALUES ($1, 'Cédula de identidad')", procedureID)
	require.NoError(t, err)
	_, err = s.DB.Exec(t.Context(),
		"INSERT INTO localities (id, name) VALUES ($1, 'Minas')", localityID)
	require.NoError(t, err)
	return procedureID, localityID
}

func (s *SharedSuite) CurrentBookings(t *testing.T, slotID uuid.UUID) int {
	t.Helper()

	var bookings int
	err := s.DB.QueryRow(t.Context(),
		"SELECT current_bookings FROM slots WHERE id = $1", slotID).Scan(&bookings)
	require.NoError(t, err)
	return bookings
}
