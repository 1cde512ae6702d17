package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Lead is one sale/customer record submitted by an agent.
// Status is free text ("pending", "Completed", "CANCELADO", ...); rankings read
// it through identity.Canon.
type Lead struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NombreCliente     string    `gorm:"not null"`
	TelefonoPrincipal string    `gorm:"type:varchar(40)"`
	TelefonoAlterno   string    `gorm:"type:varchar(40)"`
	NumeroCuenta      string    `gorm:"type:varchar(60)"`
	Direccion         string
	TipoServicio      string `gorm:"type:varchar(120)"`
	Producto          string `gorm:"type:varchar(120)"`
	// DiaVenta is the DD/MM/YYYY display form of FechaVenta
	DiaVenta       string    `gorm:"type:varchar(10);not null"`
	FechaVenta     time.Time `gorm:"type:date;not null;index"`
	DiaInstalacion string    `gorm:"type:varchar(10)"`
	Status         string    `gorm:"type:varchar(40);not null;default:'pending'"`
	Agente         string    `gorm:"type:varchar(150);index"`
	AgenteNombre   string    `gorm:"type:varchar(150)"`
	Supervisor     string    `gorm:"type:varchar(150)"`
	Team           string    `gorm:"type:varchar(80);index"`
	Puntaje        float64   `gorm:"not null;default:0"`
	CreatedBy      string    `gorm:"type:varchar(150)"`
	// Legacy keeps the payload exactly as submitted
	Legacy    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Comentarios []LeadComentario `gorm:"foreignKey:LeadID"`
}

// LeadComentario is an append-only note on a lead.
type LeadComentario struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeadID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Autor     string    `gorm:"type:varchar(150);not null"`
	Texto     string    `gorm:"not null"`
	CreatedAt time.Time
}
