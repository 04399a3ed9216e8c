package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"arequita-backend/internal/domain/agenda"
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

type AdminAgendaHandler struct {
	cmd *commands.AgendaCommands
	qry *queries.AgendaQueries
}

func NewAdminAgendaHandler(cmd *commands.AgendaCommands, qry *queries.AgendaQueries) *AdminAgendaHandler {
	return &AdminAgendaHandler{cmd: cmd, qry: qry}
}

// @Summary List reservations
// @Tags admin-agenda
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param procedure_id query string false "Procedure filter"
// @Param locality_id query string false "Locality filter"
// @Param date query string false "Date filter (YYYY-MM-DD)"
// @Param q query string false "Search by code, CI or last name"
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Success 200 {object} resdto.ListEnvelope[resdto.ReservationListResponse]
// @Router /api/admin/agenda/reservations [get]
func (h *AdminAgendaHandler) List(c *gin.Context) {
	f := h.filterFromQuery(c)
	items, total, err := h.qry.ListReservations(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.NewListEnvelope(resdto.FromReservationItems(items), total, f.Page, f.PerPage))
}

// @Summary Get reservation
// @Tags admin-agenda
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationListResponse
// @Failure 404 {object} map[string]string
// @Router /api/admin/agenda/reservations/{id} [get]
func (h *AdminAgendaHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	item, err := h.qry.GetReservation(c.Request.Context(), id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reserva no encontrada",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationItem(item))
}

// @Summary Create reservation from back office
// @Tags admin-agenda
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AdminCreateReservationRequest true "Reservation data"
// @Success 201 {object} resdto.ReservationResponse
// @Router /api/admin/agenda/reservations [post]
func (h *AdminAgendaHandler) Create(c *gin.Context) {
	var req reqdto.AdminCreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Formato de solicitud inválido",
		})
		return
	}

	rec, err := h.cmd.CreateReservation(c.Request.Context(), commands.CreateReservationInput{
		SlotID:    req.SlotID,
		CI:        req.CI,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Source:    agenda.SourceAdmin,
		Confirmed: req.Confirmed,
		Actor:     middleware.GetUsername(c),
	})
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromReservation(rec))
}

// @Summary Cancel reservation
// @Tags admin-agenda
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Router /api/admin/agenda/reservations/{id}/cancel [post]
func (h *AdminAgendaHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cmd.Cancel)
}

// @Summary Mark reservation attended
// @Tags admin-agenda
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Router /api/admin/agenda/reservations/{id}/attend [post]
func (h *AdminAgendaHandler) Attend(c *gin.Context) {
	h.transition(c, h.cmd.MarkAttended)
}

// @Summary Mark reservation as no-show
// @Tags admin-agenda
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Router /api/admin/agenda/reservations/{id}/no-show [post]
func (h *AdminAgendaHandler) NoShow(c *gin.Context) {
	h.transition(c, h.cmd.MarkNoShow)
}

// @Summary Create slot
// @Tags admin-agenda
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateSlotRequest true "Slot data"
// @Success 201 {object} resdto.SlotResponse
// @Failure 409 {object} map[string]string
// @Router /api/admin/agenda/slots [post]
func (h *AdminAgendaHandler) CreateSlot(c *gin.Context) {
	var req reqdto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Formato de solicitud inválido",
		})
		return
	}

	slot, err := h.cmd.CreateSlot(c.Request.Context(), commands.CreateSlotInput{
		ProcedureID: req.ProcedureID,
		LocalityID:  req.LocalityID,
		Date:        req.Date,
		TimeOfDay:   req.TimeOfDay,
		MaxCapacity: req.MaxCapacity,
		Actor:       middleware.GetUsername(c),
	})
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromSlot(slot))
}

// @Summary List slots
// @Tags admin-agenda
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.ListEnvelope[resdto.SlotResponse]
// @Router /api/admin/agenda/slots [get]
func (h *AdminAgendaHandler) ListSlots(c *gin.Context) {
	var f queries.SlotFilter
	if raw := c.Query("procedure_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f.ProcedureID = &id
		}
	}
	if raw := c.Query("locality_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f.LocalityID = &id
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

	items, total, err := h.qry.ListSlots(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
		return
	}
	f.Pagination = f.Pagination.Normalize()
	c.JSON(http.StatusOK, resdto.NewListEnvelope(resdto.FromSlotItems(items), total, f.Page, f.PerPage))
}

// @Summary Export reservations as CSV
// @Tags admin-agenda
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV document"
// @Router /api/admin/agenda/reservations/export [get]
func (h *AdminAgendaHandler) ExportCSV(c *gin.Context) {
	doc, err := h.qry.ExportReservationsCSV(c.Request.Context(), h.filterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="reservas_agenda.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", doc)
}

func (h *AdminAgendaHandler) filterFromQuery(c *gin.Context) queries.ReservationFilter {
	f := queries.ReservationFilter{
		Status: c.Query("status"),
		Search: c.Query("q"),
	}
	if raw := c.Query("procedure_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f.ProcedureID = &id
		}
	}
	if raw := c.Query("locality_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f.LocalityID = &id
		}
	}
	if raw := c.Query("date"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			f.Date = &d
		}
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.PerPage, _ = strconv.Atoi(c.Query("per_page"))
	return f
}

func (h *AdminAgendaHandler) transition(c *gin.Context, apply func(ctx context.Context, id uuid.UUID, actor string) (*agenda.Reservation, error)) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	rec, err := apply(c.Request.Context(), id, middleware.GetUsername(c))
	if err != nil {
		h.abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservation(rec))
}

func (h *AdminAgendaHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Reserva no encontrada",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *AdminAgendaHandler) abortError(c *gin.Context, err error) {
	if v, ok := errs.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Datos inválidos",
			"detail": v.Violations,
		})
		return
	}
	switch {
	case errors.Is(err, commands.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Turno no encontrado",
		})
	case errors.Is(err, commands.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Reserva no encontrada",
		})
	case errors.Is(err, commands.ErrSlotAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Ya existe un turno para ese trámite, localidad, fecha y hora",
		})
	case errors.Is(err, commands.ErrInvalidSlotDate):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Fecha inválida, se espera AAAA-MM-DD",
		})
	case errors.Is(err, agenda.ErrSlotFull):
		c.JSON(http.StatusConflict, gin.H{
			"error": "El turno seleccionado ya no tiene cupos disponibles",
		})
	case errors.Is(err, agenda.ErrSlotInactive),
		errors.Is(err, agenda.ErrSlotInPast):
		c.JSON(http.StatusConflict, gin.H{
			"error": "El turno seleccionado no está disponible",
		})
	case errors.Is(err, agenda.ErrInvalidTimeOfDay),
		errors.Is(err, agenda.ErrInvalidCapacity):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Datos del turno inválidos",
		})
	case errors.Is(err, agenda.ErrNotActionable),
		errors.Is(err, agenda.ErrAlreadyTerminal):
		c.JSON(http.StatusConflict, gin.H{
			"error": "La reserva no admite esa transición en su estado actual",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
	}
}
