package repository

import (
	"context"
	"time"

	"crmventas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadScope restricts lead queries to what a viewer may see. Empty fields do
// not restrict; None matches no lead at all.
type LeadScope struct {
	Agente string
	Team   string
	None   bool
}

// LeadQuery is the normalized filter of GET /api/leads and GET /api/customers.
type LeadQuery struct {
	Scope  LeadScope
	Agente string
	Team   string
	Status string
	Fecha  *time.Time
	Page   int
	Limit  int
}

// LeadKPIs are the counters shown on top of the customers page.
type LeadKPIs struct {
	VentasHoy  int64 `json:"ventas_hoy"`
	VentasMes  int64 `json:"ventas_mes"`
	Pendientes int64 `json:"pendientes"`
	Canceladas int64 `json:"canceladas"`
}

type LeadRepository interface {
	Create(ctx context.Context, l *model.Lead) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Lead, error)
	List(ctx context.Context, q LeadQuery) ([]model.Lead, int64, error)
	// ListMonth returns every lead sold in [desde, hasta), any status.
	ListMonth(ctx context.Context, desde, hasta time.Time) ([]model.Lead, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	AddComentario(ctx context.Context, c *model.LeadComentario) error
	KPIs(ctx context.Context, scope LeadScope, hoy, desde, hasta time.Time) (*LeadKPIs, error)
}

type leadRepo struct{ db *gorm.DB }

func NewLeadRepository(db *gorm.DB) LeadRepository { return &leadRepo{db: db} }

func (r *leadRepo) Create(ctx context.Context, l *model.Lead) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *leadRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	var l model.Lead
	err := r.db.WithContext(ctx).
		Preload("Comentarios", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&l, "id = ?", id).Error
	return &l, err
}

func applyScope(q *gorm.DB, s LeadScope) *gorm.DB {
	if s.None {
		return q.Where("1 = 0")
	}
	if s.Agente != "" {
		q = q.Where("agente = ?", s.Agente)
	}
	if s.Team != "" {
		q = q.Where("team = ?", s.Team)
	}
	return q
}

func (r *leadRepo) List(ctx context.Context, lq LeadQuery) ([]model.Lead, int64, error) {
	var leads []model.Lead
	var total int64

	q := applyScope(r.db.WithContext(ctx).Model(&model.Lead{}), lq.Scope)
	if lq.Agente != "" {
		q = q.Where("agente = ? OR agente_nombre = ?", lq.Agente, lq.Agente)
	}
	if lq.Team != "" {
		q = q.Where("team = ?", lq.Team)
	}
	if lq.Status != "" {
		q = q.Where("UPPER(status) = UPPER(?)", lq.Status)
	}
	if lq.Fecha != nil {
		q = q.Where("fecha_venta = ?", *lq.Fecha)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (lq.Page - 1) * lq.Limit
	err := q.Order("fecha_venta DESC, created_at DESC").
		Offset(offset).Limit(lq.Limit).
		Find(&leads).Error
	return leads, total, err
}

func (r *leadRepo) ListMonth(ctx context.Context, desde, hasta time.Time) ([]model.Lead, error) {
	var leads []model.Lead
	err := r.db.WithContext(ctx).
		Select("id", "agente", "agente_nombre", "team", "status", "producto", "tipo_servicio", "puntaje", "fecha_venta", "created_at").
		Where("fecha_venta >= ? AND fecha_venta < ?", desde, hasta).
		Order("fecha_venta ASC, created_at ASC").
		Find(&leads).Error
	return leads, err
}

func (r *leadRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Lead{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *leadRepo) AddComentario(ctx context.Context, c *model.LeadComentario) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *leadRepo) KPIs(ctx context.Context, scope LeadScope, hoy, desde, hasta time.Time) (*LeadKPIs, error) {
	var k LeadKPIs
	q := applyScope(r.db.WithContext(ctx).Model(&model.Lead{}), scope).
		Select(`
			COUNT(*) FILTER (WHERE fecha_venta = ? AND UPPER(status) NOT LIKE '%CANCEL%') AS ventas_hoy,
			COUNT(*) FILTER (WHERE UPPER(status) NOT LIKE '%CANCEL%') AS ventas_mes,
			COUNT(*) FILTER (WHERE UPPER(status) LIKE 'PEND%') AS pendientes,
			COUNT(*) FILTER (WHERE UPPER(status) LIKE '%CANCEL%') AS canceladas`, hoy).
		Where("fecha_venta >= ? AND fecha_venta < ?", desde, hasta)
	if err := q.Scan(&k).Error; err != nil {
		return nil, err
	}
	return &k, nil
}
