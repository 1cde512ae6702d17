package dto

import "crmventas/internal/repository"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LeadFilter is shared by GET /api/leads and GET /api/customers.
type LeadFilter struct {
	Agente string `form:"agente"`
	Team   string `form:"team"`
	Status string `form:"status"`
	Fecha  string `form:"fecha"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ActualizarLeadRequest is a partial update; nil fields are left untouched.
type ActualizarLeadRequest struct {
	NombreCliente     *string  `json:"nombre_cliente"     validate:"omitempty,min=1,max=200"`
	TelefonoPrincipal *string  `json:"telefono_principal" validate:"omitempty,max=40"`
	TelefonoAlterno   *string  `json:"telefono_alterno"   validate:"omitempty,max=40"`
	NumeroCuenta      *string  `json:"numero_cuenta"      validate:"omitempty,max=60"`
	Direccion         *string  `json:"direccion"`
	TipoServicio      *string  `json:"tipo_servicio"      validate:"omitempty,max=120"`
	Producto          *string  `json:"producto"           validate:"omitempty,max=120"`
	DiaVenta          *string  `json:"dia_venta"`
	DiaInstalacion    *string  `json:"dia_instalacion"`
	Status            *string  `json:"status"             validate:"omitempty,min=1,max=40"`
	Puntaje           *float64 `json:"puntaje"            validate:"omitempty,min=0"`
}

type ComentarioRequest struct {
	Texto string `json:"texto" validate:"required,min=1,max=2000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ComentarioResponse struct {
	ID    string `json:"id"`
	Autor string `json:"autor"`
	Fecha string `json:"fecha"`
	Texto string `json:"texto"`
}

type LeadResponse struct {
	ID                string               `json:"id"`
	NombreCliente     string               `json:"nombre_cliente"`
	TelefonoPrincipal string               `json:"telefono_principal"`
	TelefonoAlterno   string               `json:"telefono_alterno"`
	NumeroCuenta      string               `json:"numero_cuenta"`
	Direccion         string               `json:"direccion"`
	TipoServicio      string               `json:"tipo_servicio"`
	Producto          string               `json:"producto"`
	DiaVenta          string               `json:"dia_venta"`
	DiaInstalacion    string               `json:"dia_instalacion"`
	Status            string               `json:"status"`
	Agente            string               `json:"agente"`
	AgenteNombre      string               `json:"agente_nombre"`
	Supervisor        string               `json:"supervisor"`
	Team              string               `json:"team"`
	Puntaje           float64              `json:"puntaje"`
	CreatedAt         string               `json:"created_at"`
	Comentarios       []ComentarioResponse `json:"comentarios,omitempty"`
}

type LeadEnvelope struct {
	Success bool         `json:"success"`
	Data    LeadResponse `json:"data"`
}

type LeadListResponse struct {
	Success bool           `json:"success"`
	Data    []LeadResponse `json:"data"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

// CustomersResponse is the customers page: one page of leads plus the KPI block.
type CustomersResponse struct {
	LeadListResponse
	KPIs repository.LeadKPIs `json:"kpis"`
}
