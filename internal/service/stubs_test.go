package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"crmventas/internal/identity"
	"crmventas/internal/model"
	"crmventas/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory Repository Stubs ───────────────────────────────────────────────

type stubUsuarioRepo struct {
	users   map[uuid.UUID]*model.Usuario
	findErr error
}

func newStubUsuarioRepo(seed ...*model.Usuario) *stubUsuarioRepo {
	r := &stubUsuarioRepo{users: make(map[uuid.UUID]*model.Usuario)}
	for _, u := range seed {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	u.ID = uuid.New()
	r.users[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByUsernameOrNombre(_ context.Context, name string) (*model.Usuario, error) {
	for _, u := range r.sorted(true) {
		if strings.EqualFold(u.Username, name) || strings.EqualFold(u.Nombre, name) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *stubUsuarioRepo) sorted(all bool) []*model.Usuario {
	out := make([]*model.Usuario, 0, len(r.users))
	for _, u := range r.users {
		if all || u.Activo {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.sorted(false) {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListAll(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.sorted(true) {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListAgentes(_ context.Context, supervisorID uuid.UUID, team string) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.sorted(false) {
		if u.Rol != identity.RolAgente {
			continue
		}
		if (u.SupervisorID != nil && *u.SupervisorID == supervisorID) || (u.SupervisorID == nil && u.Team == team) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	if _, ok := r.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = activo
	return nil
}

type stubLeadRepo struct {
	leads       map[uuid.UUID]*model.Lead
	comentarios []model.LeadComentario
	kpis        repository.LeadKPIs
	lastQuery   repository.LeadQuery
	lastScope   repository.LeadScope
	lastFields  map[string]any
	listErr     error
}

func newStubLeadRepo(seed ...*model.Lead) *stubLeadRepo {
	r := &stubLeadRepo{leads: make(map[uuid.UUID]*model.Lead)}
	for _, l := range seed {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		r.leads[l.ID] = l
	}
	return r
}

func (r *stubLeadRepo) Create(_ context.Context, l *model.Lead) error {
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	r.leads[l.ID] = l
	return nil
}

func (r *stubLeadRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Lead, error) {
	if l, ok := r.leads[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubLeadRepo) List(_ context.Context, q repository.LeadQuery) ([]model.Lead, int64, error) {
	r.lastQuery = q
	var out []model.Lead
	for _, l := range r.leads {
		if q.Scope.None {
			continue
		}
		if q.Scope.Agente != "" && l.Agente != q.Scope.Agente {
			continue
		}
		if q.Scope.Team != "" && l.Team != q.Scope.Team {
			continue
		}
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (r *stubLeadRepo) ListMonth(_ context.Context, desde, hasta time.Time) ([]model.Lead, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []model.Lead
	for _, l := range r.leads {
		if !l.FechaVenta.Before(desde) && l.FechaVenta.Before(hasta) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *stubLeadRepo) Update(_ context.Context, id uuid.UUID, fields map[string]any) error {
	if _, ok := r.leads[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.lastFields = fields
	return nil
}

func (r *stubLeadRepo) AddComentario(_ context.Context, c *model.LeadComentario) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	r.comentarios = append(r.comentarios, *c)
	return nil
}

func (r *stubLeadRepo) KPIs(_ context.Context, scope repository.LeadScope, _, _, _ time.Time) (*repository.LeadKPIs, error) {
	r.lastScope = scope
	k := r.kpis
	return &k, nil
}

type stubFacturacionRepo struct {
	rows map[[3]int]*model.FacturacionLinea
	err  error
}

func newStubFacturacionRepo() *stubFacturacionRepo {
	return &stubFacturacionRepo{rows: make(map[[3]int]*model.FacturacionLinea)}
}

func (r *stubFacturacionRepo) Upsert(_ context.Context, f *model.FacturacionLinea) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	key := [3]int{f.Anio, f.Mes, f.Dia}
	if existing, ok := r.rows[key]; ok {
		f.ID = existing.ID
		r.rows[key] = f
		return false, nil
	}
	f.ID = uuid.New()
	r.rows[key] = f
	return true, nil
}

func (r *stubFacturacionRepo) ListMonth(_ context.Context, anio, mes int) ([]model.FacturacionLinea, error) {
	var out []model.FacturacionLinea
	for _, f := range r.rows {
		if f.Anio == anio && f.Mes == mes {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dia < out[j].Dia })
	return out, r.err
}

func (r *stubFacturacionRepo) ListYear(_ context.Context, anio int) ([]model.FacturacionLinea, error) {
	var out []model.FacturacionLinea
	for _, f := range r.rows {
		if f.Anio == anio {
			out = append(out, *f)
		}
	}
	return out, r.err
}

type stubLlamadasRepo struct {
	rows map[string]*model.LlamadaVentaLinea
}

func (r *stubLlamadasRepo) Upsert(_ context.Context, l *model.LlamadaVentaLinea) (bool, error) {
	if r.rows == nil {
		r.rows = make(map[string]*model.LlamadaVentaLinea)
	}
	_, exists := r.rows[l.Fecha]
	l.ID = uuid.New()
	r.rows[l.Fecha] = l
	return !exists, nil
}

func (r *stubLlamadasRepo) ListMonth(_ context.Context, anio, mes int) ([]model.LlamadaVentaLinea, error) {
	var out []model.LlamadaVentaLinea
	for _, l := range r.rows {
		if l.Anio == anio && l.Mes == mes {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dia < out[j].Dia })
	return out, nil
}
