package model

import (
	"time"

	"crmventas/internal/identity"

	"github.com/google/uuid"
)

// Usuario stores dashboard accounts.
// Rol: "admin" | "supervisor" | "agente" | "backoffice" (identity.Rol)
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string       `gorm:"not null"`
	Rol          identity.Rol `gorm:"type:varchar(20);not null"`
	// Team is the canonical team display name; empty for admins
	Team             string `gorm:"type:varchar(80);index"`
	Supervisor       string `gorm:"type:varchar(150)"`
	SupervisorNombre string `gorm:"type:varchar(150)"`
	// SupervisorID is nil when the supervisor could not be matched to an account
	SupervisorID *uuid.UUID `gorm:"type:uuid;index"`
	Activo       bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
