package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"arequita-backend/internal/domain/camping"
	reqdto "arequita-backend/internal/handler/dto/request"
	resdto "arequita-backend/internal/handler/dto/response"
	"arequita-backend/internal/handler/middleware"
	"arequita-backend/internal/infra"
	"arequita-backend/internal/pkg/errs"
	"arequita-backend/internal/usecase/commands"
	"arequita-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminCampingHandler struct {
	cmd *commands.CampingCommands
	qry *queries.CampingQueries
}

func NewAdminCampingHandler(cmd *commands.CampingCommands, qry *queries.CampingQueries) *AdminCampingHandler {
	return &AdminCampingHandler{cmd: cmd, qry: qry}
}

// @Summary List pre-reservations
// @Tags admin-camping
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param service_id query string false "Service filter"
// @Param from query string false "Check-in from (AAAA-MM-DD)"
// @Param to query string false "Check-in until (AAAA-MM-DD)"
// @Param q query string false "Search by code, name or email"
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} resdto.ListEnvelope[resdto.PreReservationListResponse]
// @Router /api/admin/camping/pre-reservations [get]
func (h *AdminCampingHandler) List(c *gin.Context) {
	f := h.filterFromQuery(c)
	items, total, err := h.qry.ListPreReservations(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.NewListEnvelope(resdto.FromPreReservationItems(items), total, f.Page, f.PerPage))
}

// @Summary Get pre-reservation
// @Tags admin-camping
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pre-reservation ID"
// @Success 200 {object} resdto.PreReservationListResponse
// @Failure 404 {object} map[string]string
// @Router /api/admin/camping/pre-reservations/{id} [get]
func (h *AdminCampingHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	item, err := h.qry.GetPreReservation(c.Request.Context(), id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Pre-reserva no encontrada",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.FromPreReservationItem(item))
}

// @Summary Create pre-reservation from back office
// @Description Operators can create directly in confirmado, consuming a unit
// @Tags admin-camping
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AdminCreatePreReservationRequest true "Pre-reservation data"
// @Success 201 {object} resdto.PreReservationResponse
// @Router /api/admin/camping/pre-reservations [post]
func (h *AdminCampingHandler) Create(c *gin.Context) {
	var req reqdto.AdminCreatePreReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Formato de solicitud inválido",
		})
		return
	}

	rec, err := h.cmd.Create(c.Request.Context(), commands.CreatePreReservationInput{
		ServiceID: req.ServiceID,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Guests:    req.Guests,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Notes:     req.Notes,
		Lang:      req.Lang,
		Source:    camping.SourceAdmin,
		Confirmed: req.Confirmed,
		Actor:     middleware.GetUsername(c),
	})
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromPreReservation(rec))
}

// @Summary Confirm pre-reservation
// @Tags admin-camping
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pre-reservation ID"
// @Success 200 {object} resdto.ConfirmResponse
// @Router /api/admin/camping/pre-reservations/{id}/confirm [post]
func (h *AdminCampingHandler) Confirm(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	res, err := h.cmd.Confirm(c.Request.Context(), id, middleware.GetUsername(c))
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.ConfirmResponse{
		OK:      res.OK,
		Message: res.Message,
		Status:  string(res.Record.Status()),
	})
}

// @Summary Register check-in
// @Tags admin-camping
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pre-reservation ID"
// @Success 200 {object} resdto.PreReservationResponse
// @Router /api/admin/camping/pre-reservations/{id}/check-in [post]
func (h *AdminCampingHandler) CheckIn(c *gin.Context) {
	h.transition(c, h.cmd.CheckIn)
}

// @Summary Complete stay
// @Tags admin-camping
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pre-reservation ID"
// @Success 200 {object} resdto.PreReservationResponse
// @Router /api/admin/camping/pre-reservations/{id}/complete [post]
func (h *AdminCampingHandler) Complete(c *gin.Context) {
	h.transition(c, h.cmd.Complete)
}

// @Summary Archive pre-reservation
// @Tags admin-camping
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pre-reservation ID"
// @Param request body reqdto.ArchivePreReservationRequest true "Archive reason"
// @Success 200 {object} resdto.PreReservationResponse
// @Router /api/admin/camping/pre-reservations/{id}/archive [post]
func (h *AdminCampingHandler) Archive(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req reqdto.ArchivePreReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Debes indicar un motivo",
		})
		return
	}
	rec, err := h.cmd.Archive(c.Request.Context(), id, req.TrimmedReason(), middleware.GetUsername(c))
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPreReservation(rec))
}

// @Summary Run expiry sweep
// @Description Expire stale pendientes and complete finished stays
// @Tags admin-camping
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SweepResponse
// @Router /api/admin/camping/sweep [post]
func (h *AdminCampingHandler) Sweep(c *gin.Context) {
	swept, err := h.cmd.SweepExpired(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.SweepResponse{Swept: swept})
}

// @Summary Export pre-reservations as CSV
// @Tags admin-camping
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV document"
// @Router /api/admin/camping/pre-reservations/export [get]
func (h *AdminCampingHandler) ExportCSV(c *gin.Context) {
	doc, err := h.qry.ExportPreReservationsCSV(c.Request.Context(), h.filterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="pre_reservas.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", doc)
}

func (h *AdminCampingHandler) filterFromQuery(c *gin.Context) queries.PreReservationFilter {
	f := queries.PreReservationFilter{
		Status: c.Query("status"),
		Search: c.Query("q"),
	}
	if raw := c.Query("service_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f.ServiceID = &id
		}
	}
	if raw := c.Query("from"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			f.From = &d
		}
	}
	if raw := c.Query("to"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			f.To = &d
		}
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.PerPage, _ = strconv.Atoi(c.Query("per_page"))
	return f
}

func (h *AdminCampingHandler) transition(c *gin.Context, apply func(ctx context.Context, id uuid.UUID, actor string) (*camping.PreReservation, error)) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	rec, err := apply(c.Request.Context(), id, middleware.GetUsername(c))
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPreReservation(rec))
}

func (h *AdminCampingHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Pre-reserva no encontrada",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *AdminCampingHandler) abortError(c *gin.Context, err error) {
	if v, ok := errs.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Datos inválidos",
			"detail": v.Violations,
		})
		return
	}
	switch {
	case errors.Is(err, commands.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Servicio no encontrado",
		})
	case errors.Is(err, commands.ErrPreReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Pre-reserva no encontrada",
		})
	case errors.Is(err, camping.ErrNoAvailability):
		c.JSON(http.StatusConflict, gin.H{
			"error": "No hay disponibilidad para este servicio",
		})
	case errors.Is(err, camping.ErrNotConfirmed),
		errors.Is(err, camping.ErrNotActive),
		errors.Is(err, camping.ErrNotPending),
		errors.Is(err, camping.ErrAlreadyTerminal):
		c.JSON(http.StatusConflict, gin.H{
			"error": "La pre-reserva no admite esa transición en su estado actual",
		})
	case errors.Is(err, camping.ErrEmptyReason):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Debes indicar un motivo para archivar la reserva",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
	}
}
