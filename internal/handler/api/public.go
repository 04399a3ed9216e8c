package api

import (
	"errors"
	"net/http"
	"time"

	"arequita-backend/internal/domain/agenda"
	"arequita-backend/internal/domain/camping"
	reqdto "arequita-backend/internal/handler/dto/request"
	resdto "arequita-backend/internal/handler/dto/response"
	"arequita-backend/internal/pkg/errs"
	"arequita-backend/internal/usecase/commands"
	"arequita-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PublicHandler serves the citizen-facing endpoints: the camping catalog,
// pre-reservation intake, token links and the agenda slot picker.
type PublicHandler struct {
	campingCmd   *commands.CampingCommands
	campingQry   *queries.CampingQueries
	agendaCmd    *commands.AgendaCommands
	agendaQry    *queries.AgendaQueries
}

func NewPublicHandler(
	campingCmd *commands.CampingCommands,
	campingQry *queries.CampingQueries,
	agendaCmd *commands.AgendaCommands,
	agendaQry *queries.AgendaQueries,
) *PublicHandler {
	return &PublicHandler{
		campingCmd: campingCmd,
		campingQry: campingQry,
		agendaCmd:  agendaCmd,
		agendaQry:  agendaQry,
	}
}

// @Summary Public camping catalog
// @Description List active camping services with live availability
// @Tags camping
// @Produce json
// @Param lang query string false "Language (es, en, pt)"
// @Param type query string false "Service type filter"
// @Param q query string false "Search term"
// @Success 200 {array} resdto.ServiceCatalogResponse
// @Router /api/camping/services [get]
func (h *PublicHandler) Catalog(c *gin.Context) {
	items, err := h.campingQry.PublicCatalog(c.Request.Context(), queries.CatalogFilter{
		Lang:        c.Query("lang"),
		ServiceType: c.Query("type"),
		Search:      c.Query("q"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.FromCatalogItems(items))
}

// @Summary Create camping pre-reservation
// @Description Register a pending pre-reservation with a 48 hour confirmation window
// @Tags camping
// @Accept json
// @Produce json
// @Param request body reqdto.CreatePreReservationRequest true "Pre-reservation data"
// @Success 201 {object} resdto.PreReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]any
// @Router /api/camping/pre-reservations [post]
func (h *PublicHandler) CreatePreReservation(c *gin.Context) {
	var req reqdto.CreatePreReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Formato de solicitud inválido",
		})
		return
	}

	rec, err := h.campingCmd.Create(c.Request.Context(), commands.CreatePreReservationInput{
		ServiceID: req.ServiceID,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Guests:    req.Guests,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Notes:     req.Notes,
		Lang:      req.Lang,
		Source:    camping.SourceWeb,
	})
	if err != nil {
		h.abortCampingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromPreReservation(rec))
}

// @Summary Confirm pre-reservation by token
// @Description Resolve the emailed confirmation link
// @Tags camping
// @Produce json
// @Param token path string true "Confirmation token"
// @Success 200 {object} resdto.ConfirmResponse
// @Failure 404 {object} map[string]string
// @Router /api/camping/confirm/{token} [get]
func (h *PublicHandler) ConfirmByToken(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Pre-reserva no encontrada",
		})
		return
	}

	res, err := h.campingCmd.ConfirmByToken(c.Request.Context(), token)
	if err != nil {
		h.abortCampingError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.ConfirmResponse{
		OK:      res.OK,
		Message: res.Message,
		Status:  string(res.Record.Status()),
	})
}

// @Summary Available agenda slots
// @Description List active future slots with free cupos for a procedure and locality
// @Tags agenda
// @Produce json
// @Param procedure_id query string true "Procedure ID"
// @Param locality_id query string true "Locality ID"
// @Success 200 {array} resdto.SlotResponse
// @Failure 400 {object} map[string]string
// @Router /api/agenda/slots [get]
func (h *PublicHandler) AvailableSlots(c *gin.Context) {
	procedureID, err1 := uuid.Parse(c.Query("procedure_id"))
	localityID, err2 := uuid.Parse(c.Query("locality_id"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Se requieren trámite y localidad",
		})
		return
	}

	items, err := h.agendaQry.AvailableSlots(c.Request.Context(), procedureID, localityID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.FromSlotItems(items))
}

// @Summary Create agenda reservation
// @Description Book a seat on a slot
// @Tags agenda
// @Accept json
// @Produce json
// @Param request body reqdto.CreateReservationRequest true "Reservation data"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]any
// @Router /api/agenda/reservations [post]
func (h *PublicHandler) CreateReservation(c *gin.Context) {
	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Formato de solicitud inválido",
		})
		return
	}

	rec, err := h.agendaCmd.CreateReservation(c.Request.Context(), commands.CreateReservationInput{
		SlotID:    req.SlotID,
		CI:        req.CI,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Source:    agenda.SourceWeb,
	})
	if err != nil {
		h.abortAgendaError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromReservation(rec))
}

// @Summary Cancel reservation by token
// @Description Resolve the emailed self-service cancellation link
// @Tags agenda
// @Produce json
// @Param token path string true "Cancellation token"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/agenda/cancel/{token} [post]
func (h *PublicHandler) CancelByToken(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Reserva no encontrada",
		})
		return
	}

	rec, err := h.agendaCmd.CancelByToken(c.Request.Context(), token)
	if err != nil {
		h.abortAgendaError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservation(rec))
}

func (h *PublicHandler) abortCampingError(c *gin.Context, err error) {
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
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
	}
}

func (h *PublicHandler) abortAgendaError(c *gin.Context, err error) {
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
	case errors.Is(err, agenda.ErrSlotFull):
		c.JSON(http.StatusConflict, gin.H{
			"error": "El turno seleccionado ya no tiene cupos disponibles",
		})
	case errors.Is(err, agenda.ErrSlotInactive), errors.Is(err, agenda.ErrSlotInPast):
		c.JSON(http.StatusConflict, gin.H{
			"error": "El turno seleccionado no está disponible",
		})
	case errors.Is(err, agenda.ErrAlreadyTerminal):
		c.JSON(http.StatusConflict, gin.H{
			"error": "La reserva ya está en un estado final",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
	}
}
