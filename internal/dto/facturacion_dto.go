package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// UpsertFacturacionRequest writes one day of the billing ledger. campos is
// padded or truncated to nine columns.
type UpsertFacturacionRequest struct {
	Fecha  string   `json:"fecha"  validate:"required"`
	Campos []string `json:"campos" validate:"max=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FacturacionLineaResponse struct {
	ID        string   `json:"id"`
	Fecha     string   `json:"fecha"`
	Anio      int      `json:"anio"`
	Mes       int      `json:"mes"`
	Dia       int      `json:"dia"`
	Campos    []string `json:"campos"`
	UpdatedBy string   `json:"updated_by"`
	UpdatedAt string   `json:"updated_at"`
}

type UpsertFacturacionResponse struct {
	Success  bool                     `json:"success"`
	Upserted bool                     `json:"upserted"`
	Data     FacturacionLineaResponse `json:"data"`
}

type FacturacionMesResponse struct {
	Success bool                       `json:"success"`
	Anio    int                        `json:"anio"`
	Mes     int                        `json:"mes"`
	Data    []FacturacionLineaResponse `json:"data"`
	// Total is the sum of the "Total del Día" column
	Total string `json:"total"`
}

type FacturacionAnualResponse struct {
	Success bool       `json:"success"`
	Anio    int        `json:"anio"`
	Totales [12]string `json:"totales"`
	Total   string     `json:"total"`
}
