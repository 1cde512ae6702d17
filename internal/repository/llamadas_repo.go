package repository

import (
	"context"

	"crmventas/internal/model"

	"gorm.io/gorm"
)

type LlamadasRepository interface {
	Upsert(ctx context.Context, l *model.LlamadaVentaLinea) (inserted bool, err error)
	ListMonth(ctx context.Context, anio, mes int) ([]model.LlamadaVentaLinea, error)
}

type llamadasRepo struct{ db *gorm.DB }

func NewLlamadasRepository(db *gorm.DB) LlamadasRepository { return &llamadasRepo{db: db} }

func (r *llamadasRepo) Upsert(ctx context.Context, l *model.LlamadaVentaLinea) (bool, error) {
	var res upsertResult
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO llamadas_ventas_lineas (id, fecha, anio, mes, dia, llamadas, ventas, updated_by, created_at, updated_at)
		VALUES (gen_random_uuid(), ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (fecha) DO UPDATE
		SET llamadas = EXCLUDED.llamadas,
		    ventas = EXCLUDED.ventas,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`,
		l.Fecha, l.Anio, l.Mes, l.Dia, l.Llamadas, l.Ventas, l.UpdatedBy,
	).Scan(&res).Error
	if err != nil {
		return false, err
	}
	l.ID, l.CreatedAt, l.UpdatedAt = res.ID, res.CreatedAt, res.UpdatedAt
	return res.Inserted, nil
}

func (r *llamadasRepo) ListMonth(ctx context.Context, anio, mes int) ([]model.LlamadaVentaLinea, error) {
	var rows []model.LlamadaVentaLinea
	err := r.db.WithContext(ctx).
		Where("anio = ? AND mes = ?", anio, mes).
		Order("dia ASC").
		Find(&rows).Error
	return rows, err
}
