package handler

import (
	"context"
	"net/http"
	"strconv"

	"crmventas/internal/apierror"
	"crmventas/internal/worker"

	"github.com/gin-gonic/gin"
)

// DeadLetterReader lists failed lead notifications (worker.DeadLetterStore).
type DeadLetterReader interface {
	List(ctx context.Context, limit int64) ([]worker.DeadLetter, error)
}

type NotificacionesHandler struct {
	dlq DeadLetterReader
}

func NewNotificacionesHandler(dlq DeadLetterReader) *NotificacionesHandler {
	return &NotificacionesHandler{dlq: dlq}
}

// Fallidas godoc
// @Summary  Notificaciones de leads que agotaron sus reintentos
// @Tags     Notificaciones
// @Produce  json
// @Security BearerAuth
// @Param    limit query int false "maximo de entradas (1-200, default 50)"
// @Success  200 {object} map[string]interface{}
// @Router   /api/notificaciones/fallidas [get]
func (h *NotificacionesHandler) Fallidas(c *gin.Context) {
	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > 200 {
			c.JSON(http.StatusBadRequest, apierror.New("limit debe estar entre 1 y 200"))
			return
		}
		limit = n
	}
	items, err := h.dlq.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, apierror.Unavailable("Cola de notificaciones no disponible", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "total": len(items)})
}
