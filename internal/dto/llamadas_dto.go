package dto

type LlamadasFilter struct {
	Anio int `form:"anio" validate:"omitempty,min=2000,max=2100"`
	Mes  int `form:"mes"  validate:"omitempty,min=1,max=12"`
}

type UpsertLlamadasRequest struct {
	Fecha    string `json:"fecha"    validate:"required"`
	Llamadas int    `json:"llamadas" validate:"min=0"`
	Ventas   int    `json:"ventas"   validate:"min=0"`
}

type LlamadasLineaResponse struct {
	ID       string `json:"id"`
	Fecha    string `json:"fecha"`
	Dia      int    `json:"dia"`
	Llamadas int    `json:"llamadas"`
	Ventas   int    `json:"ventas"`
}

type LlamadasMesResponse struct {
	Success  bool                    `json:"success"`
	Anio     int                     `json:"anio"`
	Mes      int                     `json:"mes"`
	Data     []LlamadasLineaResponse `json:"data"`
	Llamadas int                     `json:"total_llamadas"`
	Ventas   int                     `json:"total_ventas"`
}

type UpsertLlamadasResponse struct {
	Success  bool                  `json:"success"`
	Upserted bool                  `json:"upserted"`
	Data     LlamadasLineaResponse `json:"data"`
}
