package repository

import (
	"context"
	"time"

	"crmventas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FacturacionRepository interface {
	// Upsert writes the row for its (anio, mes, dia). inserted is false when
	// an existing row was updated.
	Upsert(ctx context.Context, f *model.FacturacionLinea) (inserted bool, err error)
	ListMonth(ctx context.Context, anio, mes int) ([]model.FacturacionLinea, error)
	ListYear(ctx context.Context, anio int) ([]model.FacturacionLinea, error)
}

type facturacionRepo struct{ db *gorm.DB }

func NewFacturacionRepository(db *gorm.DB) FacturacionRepository { return &facturacionRepo{db: db} }

type upsertResult struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Inserted  bool
}

func (r *facturacionRepo) Upsert(ctx context.Context, f *model.FacturacionLinea) (bool, error) {
	var res upsertResult
	// xmax = 0 only on freshly inserted tuples.
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO facturacion_lineas (id, anio, mes, dia, fecha, campos, created_by, updated_by, created_at, updated_at)
		VALUES (gen_random_uuid(), ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (anio, mes, dia) DO UPDATE
		SET fecha = EXCLUDED.fecha,
		    campos = EXCLUDED.campos,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`,
		f.Anio, f.Mes, f.Dia, f.Fecha, f.Campos, f.CreatedBy, f.UpdatedBy,
	).Scan(&res).Error
	if err != nil {
		return false, err
	}
	f.ID, f.CreatedAt, f.UpdatedAt = res.ID, res.CreatedAt, res.UpdatedAt
	return res.Inserted, nil
}

func (r *facturacionRepo) ListMonth(ctx context.Context, anio, mes int) ([]model.FacturacionLinea, error) {
	var rows []model.FacturacionLinea
	err := r.db.WithContext(ctx).
		Where("anio = ? AND mes = ?", anio, mes).
		Order("dia ASC").
		Find(&rows).Error
	return rows, err
}

func (r *facturacionRepo) ListYear(ctx context.Context, anio int) ([]model.FacturacionLinea, error) {
	var rows []model.FacturacionLinea
	err := r.db.WithContext(ctx).
		Where("anio = ?", anio).
		Order("mes ASC, dia ASC").
		Find(&rows).Error
	return rows, err
}
