package handler

import (
	"net/http"

	"crmventas/internal/apierror"
	"crmventas/internal/dto"
	"crmventas/internal/service"

	"github.com/gin-gonic/gin"
)

type LeadsHandler struct{ svc service.LeadService }

func NewLeadsHandler(svc service.LeadService) *LeadsHandler { return &LeadsHandler{svc: svc} }

// Crear godoc
// @Summary      Registrar lead
// @Description  Acepta los nombres de campo historicos del formulario; se guardan en columnas canonicas.
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     object true "Lead"
// @Success      201  {object} dto.LeadEnvelope
// @Failure      400  {object} apierror.APIError
// @Router       /api/leads [post]
func (h *LeadsHandler) Crear(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil || raw == nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido"))
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), viewerFrom(c), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.LeadEnvelope{Success: true, Data: *resp})
}

// Listar godoc
// @Summary      Listar leads
// @Description  Paginado. Un agente ve sus leads, un supervisor los de su equipo.
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        agente query string false "Agente"
// @Param        team   query string false "Equipo"
// @Param        status query string false "Estado"
// @Param        fecha  query string false "Dia de venta"
// @Param        page   query int    false "Pagina"
// @Param        limit  query int    false "Tamano de pagina (max 200)"
// @Success      200  {object} dto.LeadListResponse
// @Router       /api/leads [get]
func (h *LeadsHandler) Listar(c *gin.Context) {
	var filter dto.LeadFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), viewerFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LeadsHandler) Customers(c *gin.Context) {
	var filter dto.LeadFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Customers(c.Request.Context(), viewerFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LeadsHandler) Obtener(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), viewerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LeadEnvelope{Success: true, Data: *resp})
}

func (h *LeadsHandler) Actualizar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarLeadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), viewerFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LeadEnvelope{Success: true, Data: *resp})
}

func (h *LeadsHandler) Comentar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ComentarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Comentar(c.Request.Context(), viewerFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": resp})
}
