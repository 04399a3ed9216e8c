package api

import (
	"context"
	"net/http"
	"strconv"

	"arequita-backend/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]queries.AuditEntry, error)
}

type AdminAuditHandler struct {
	reader AuditReader
}

func NewAdminAuditHandler(reader AuditReader) *AdminAuditHandler {
	return &AdminAuditHandler{reader: reader}
}

// @Summary Recent admin activity
// @Tags admin-audit
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries (default 100)"
// @Success 200 {array} queries.AuditEntry
// @Router /api/admin/audit [get]
func (h *AdminAuditHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.reader.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error interno del servidor",
		})
		return
	}
	c.JSON(http.StatusOK, entries)
}
