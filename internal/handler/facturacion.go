package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"crmventas/internal/apierror"
	"crmventas/internal/dto"
	"crmventas/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type FacturacionHandler struct{ svc service.FacturacionService }

func NewFacturacionHandler(svc service.FacturacionService) *FacturacionHandler {
	return &FacturacionHandler{svc: svc}
}

// paramInt parses an integer path parameter, answering 400 on failure.
func paramInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" invalido"))
		return 0, false
	}
	return v, true
}

func monthParams(c *gin.Context) (anio, mes int, ok bool) {
	if anio, ok = paramInt(c, "anio"); !ok {
		return
	}
	mes, ok = paramInt(c, "mes")
	return
}

// Upsert godoc
// @Summary      Guardar linea de facturacion
// @Description  Inserta o reemplaza la linea del dia. upserted=true si la fila es nueva.
// @Tags         facturacion
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.UpsertFacturacionRequest true "Linea"
// @Success      200  {object} dto.UpsertFacturacionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /api/facturacion-lineas [post]
func (h *FacturacionHandler) Upsert(c *gin.Context) {
	var req dto.UpsertFacturacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Upsert(c.Request.Context(), viewerFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Mes godoc
// @Summary      Lineas de facturacion del mes
// @Tags         facturacion
// @Produce      json
// @Security     BearerAuth
// @Param        anio path int true "Anio"
// @Param        mes  path int true "Mes"
// @Success      200  {object} dto.FacturacionMesResponse
// @Router       /api/facturacion-lineas/{anio}/{mes} [get]
func (h *FacturacionHandler) Mes(c *gin.Context) {
	anio, mes, ok := monthParams(c)
	if !ok {
		return
	}
	resp, err := h.svc.Mes(c.Request.Context(), anio, mes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FacturacionHandler) Anual(c *gin.Context) {
	anio, ok := paramInt(c, "anio")
	if !ok {
		return
	}
	resp, err := h.svc.Anual(c.Request.Context(), anio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF godoc
// @Summary      Reporte PDF del mes
// @Tags         facturacion
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        anio path int true "Anio"
// @Param        mes  path int true "Mes"
// @Success      200
// @Router       /api/facturacion-lineas/{anio}/{mes}/pdf [get]
func (h *FacturacionHandler) DescargarPDF(c *gin.Context) {
	anio, mes, ok := monthParams(c)
	if !ok {
		return
	}
	data, err := h.svc.PDF(c.Request.Context(), anio, mes)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, fmt.Sprintf("facturacion-%04d-%02d.pdf", anio, mes), mimePDF, data)
}

func (h *FacturacionHandler) DescargarXLSX(c *gin.Context) {
	anio, mes, ok := monthParams(c)
	if !ok {
		return
	}
	data, err := h.svc.XLSX(c.Request.Context(), anio, mes)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, fmt.Sprintf("facturacion-%04d-%02d.xlsx", anio, mes), mimeXLSX, data)
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}

// ── Llamadas Handler ─────────────────────────────────────────────────────────

type LlamadasHandler struct{ svc service.LlamadasService }

func NewLlamadasHandler(svc service.LlamadasService) *LlamadasHandler {
	return &LlamadasHandler{svc: svc}
}

func (h *LlamadasHandler) Mes(c *gin.Context) {
	var filter dto.LlamadasFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Mes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LlamadasHandler) Upsert(c *gin.Context) {
	var req dto.UpsertLlamadasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Upsert(c.Request.Context(), viewerFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
