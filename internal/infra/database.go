package infra

import (
	"errors"
	"fmt"
	"strings"

	"crmventas/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, creates/updates the
// tables from the models and then applies the idempotent index patches that
// GORM tags cannot express.
//
// TranslateError is on so unique violations surface as gorm.ErrDuplicatedKey.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates the schema. Safe to run on every start and from
// several replicas at once.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Lead{},
		&model.LeadComentario{},
		&model.FacturacionLinea{},
		&model.LlamadaVentaLinea{},
	); err != nil {
		if !isAlreadyExists(err) {
			return fmt.Errorf("AutoMigrate: %w", err)
		}
		log.Warn().Err(err).Msg("database: concurrent migration detected, continuing")
	}
	return applySchemaPatches(db)
}

// applySchemaPatches creates the indexes the query paths rely on. Another
// instance creating the same index at the same moment is not an error.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"leads by agent and month",
			`CREATE INDEX IF NOT EXISTS idx_leads_agente_fecha ON leads (agente, fecha_venta)`},
		{"leads by team and month",
			`CREATE INDEX IF NOT EXISTS idx_leads_team_fecha ON leads (team, fecha_venta)`},
		{"leads case-insensitive status",
			`CREATE INDEX IF NOT EXISTS idx_leads_status_upper ON leads (UPPER(status))`},
		{"usuarios case-insensitive lookup",
			`CREATE INDEX IF NOT EXISTS idx_usuarios_username_lower ON usuarios (LOWER(username))`},
		{"usuarios case-insensitive display name",
			`CREATE INDEX IF NOT EXISTS idx_usuarios_nombre_lower ON usuarios (LOWER(nombre))`},
		{"comentarios per lead in order",
			`CREATE INDEX IF NOT EXISTS idx_lead_comentarios_lead_fecha ON lead_comentarios (lead_id, created_at)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			if isAlreadyExists(err) {
				log.Debug().Str("patch", p.descr).Msg("database: index created concurrently")
				continue
			}
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

// isAlreadyExists matches duplicate_table/duplicate_object (42P07/42710) and
// the unique violation on pg_class that concurrent CREATE INDEX can raise.
func isAlreadyExists(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range []string{"42P07", "42710", "already exists", "pg_class_relname_nsp_index"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
