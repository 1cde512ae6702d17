package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CamposFacturacion is the fixed number of fields of a billing row.
const CamposFacturacion = 9

// CampoTotalDia is the index of "Total del Día" inside Campos.
const CampoTotalDia = 6

// FacturacionLinea is one day of the lines billing ledger.
// (Anio, Mes, Dia) is unique; Campos always holds CamposFacturacion entries.
type FacturacionLinea struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Anio      int            `gorm:"not null;uniqueIndex:idx_facturacion_lineas_fecha,priority:1"`
	Mes       int            `gorm:"not null;uniqueIndex:idx_facturacion_lineas_fecha,priority:2"`
	Dia       int            `gorm:"not null;uniqueIndex:idx_facturacion_lineas_fecha,priority:3"`
	Fecha     string         `gorm:"type:varchar(10);not null"`
	Campos    pq.StringArray `gorm:"type:text[];not null"`
	CreatedBy string         `gorm:"type:varchar(150)"`
	UpdatedBy string         `gorm:"type:varchar(150)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FacturacionLinea) TableName() string { return "facturacion_lineas" }

// LlamadaVentaLinea holds the per-day call and sales counters of the lines team.
type LlamadaVentaLinea struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha     string    `gorm:"type:varchar(10);uniqueIndex;not null"`
	Anio      int       `gorm:"not null;index:idx_llamadas_mes,priority:1"`
	Mes       int       `gorm:"not null;index:idx_llamadas_mes,priority:2"`
	Dia       int       `gorm:"not null"`
	Llamadas  int       `gorm:"not null;default:0"`
	Ventas    int       `gorm:"not null;default:0"`
	UpdatedBy string    `gorm:"type:varchar(150)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LlamadaVentaLinea) TableName() string { return "llamadas_ventas_lineas" }
