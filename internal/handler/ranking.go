package handler

import (
	"net/http"

	"crmventas/internal/dto"
	"crmventas/internal/service"

	"github.com/gin-gonic/gin"
)

type RankingHandler struct{ svc service.RankingService }

func NewRankingHandler(svc service.RankingService) *RankingHandler {
	return &RankingHandler{svc: svc}
}

// Tabs godoc
// @Summary      Ranking del mes
// @Description  Tres vistas: activacion (agente o equipo), ventas y producto. Un fallo de lectura responde 200 con success=false.
// @Tags         ranking
// @Produce      json
// @Security     BearerAuth
// @Param        month           query string false "YYYY-MM"
// @Param        activationGroup query string false "agent | team"
// @Param        product         query string false "Producto (vacio: todos)"
// @Success      200  {object} dto.RankingTabsResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/ranking/tabs [get]
func (h *RankingHandler) Tabs(c *gin.Context) {
	var filter dto.RankingFilter
	if !bindQuery(c, &filter) {
		return
	}
	if p, ok := c.GetQuery("product"); ok {
		filter.Product = &p
	}
	resp, err := h.svc.Tabs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
