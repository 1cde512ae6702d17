package service

import (
	"context"
	"strings"
	"time"

	"crmventas/internal/apierror"
	"crmventas/internal/compat"
	"crmventas/internal/dto"
	"crmventas/internal/fechas"
	"crmventas/internal/identity"
	"crmventas/internal/model"
	"crmventas/internal/repository"
	"crmventas/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

type LeadService interface {
	// Crear ingests a raw lead payload. Historical field names are mapped once
	// here; the stored lead only carries canonical columns (plus the raw copy).
	Crear(ctx context.Context, viewer Viewer, raw map[string]any) (*dto.LeadResponse, error)
	Listar(ctx context.Context, viewer Viewer, filter dto.LeadFilter) (*dto.LeadListResponse, error)
	Customers(ctx context.Context, viewer Viewer, filter dto.LeadFilter) (*dto.CustomersResponse, error)
	Obtener(ctx context.Context, viewer Viewer, id uuid.UUID) (*dto.LeadResponse, error)
	Actualizar(ctx context.Context, viewer Viewer, id uuid.UUID, req dto.ActualizarLeadRequest) (*dto.LeadResponse, error)
	Comentar(ctx context.Context, viewer Viewer, id uuid.UUID, req dto.ComentarioRequest) (*dto.ComentarioResponse, error)
}

type leadService struct {
	repo       repository.LeadRepository
	usuarios   repository.UsuarioRepository
	dispatcher *worker.Dispatcher
	notify     bool
	now        func() time.Time
}

// NewLeadService wires the lead store. dispatcher may be nil; notify gates the
// supervisor email on new leads.
func NewLeadService(repo repository.LeadRepository, usuarios repository.UsuarioRepository, dispatcher *worker.Dispatcher, notify bool) LeadService {
	return &leadService{repo: repo, usuarios: usuarios, dispatcher: dispatcher, notify: notify, now: time.Now}
}

func (s *leadService) Crear(ctx context.Context, viewer Viewer, raw map[string]any) (*dto.LeadResponse, error) {
	if raw == nil {
		return nil, apierror.Validation("payload vacio")
	}
	f := compat.FromPayload(raw)
	if strings.TrimSpace(f.NombreCliente) == "" {
		return nil, apierror.Validation("nombre_cliente es requerido")
	}

	// Agents always submit as themselves.
	agente := strings.TrimSpace(f.Agente)
	if viewer.Rol == identity.RolAgente || agente == "" {
		agente = viewer.Username
	}
	owner, err := s.owner(ctx, viewer, agente)
	if err != nil {
		return nil, err
	}

	lead := &model.Lead{
		NombreCliente:     strings.TrimSpace(f.NombreCliente),
		TelefonoPrincipal: f.TelefonoPrincipal,
		TelefonoAlterno:   f.TelefonoAlterno,
		NumeroCuenta:      f.NumeroCuenta,
		Direccion:         f.Direccion,
		TipoServicio:      f.TipoServicio,
		Producto:          f.Producto,
		Status:            strings.TrimSpace(f.Status),
		Agente:            agente,
		AgenteNombre:      strings.TrimSpace(f.AgenteNombre),
		Puntaje:           f.Puntaje,
		CreatedBy:         viewer.Username,
		Legacy:            datatypes.JSONMap(raw),
	}
	if lead.Status == "" {
		lead.Status = "pending"
	}

	venta := fechas.FromTime(s.now())
	if strings.TrimSpace(f.DiaVenta) != "" {
		if venta, err = fechas.Parse(f.DiaVenta); err != nil {
			return nil, apierror.Validation("dia_venta invalido: use YYYY-MM-DD o DD/MM/YYYY")
		}
	}
	lead.DiaVenta, lead.FechaVenta = venta.Display(), venta.Time()
	if strings.TrimSpace(f.DiaInstalacion) != "" {
		inst, err := fechas.Parse(f.DiaInstalacion)
		if err != nil {
			return nil, apierror.Validation("dia_instalacion invalido: use YYYY-MM-DD o DD/MM/YYYY")
		}
		lead.DiaInstalacion = inst.Display()
	}

	switch {
	case owner != nil:
		if lead.AgenteNombre == "" || viewer.Rol == identity.RolAgente {
			lead.AgenteNombre = owner.Nombre
		}
		lead.Team = owner.Team
		lead.Supervisor = owner.SupervisorNombre
	default:
		lead.Team = identity.TeamFromCode(f.Team)
		lead.Supervisor = strings.TrimSpace(f.Supervisor)
		if t, ok := identity.TeamFromSupervisor(lead.Supervisor); ok {
			lead.Team = t
		}
	}
	if lead.AgenteNombre == "" {
		lead.AgenteNombre = compat.SinAsignar
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, translateDBError(err, "")
	}
	if c := strings.TrimSpace(f.Comentario); c != "" {
		com := &model.LeadComentario{LeadID: lead.ID, Autor: viewer.Username, Texto: c}
		if err := s.repo.AddComentario(ctx, com); err != nil {
			log.Warn().Err(err).Str("lead_id", lead.ID.String()).Msg("lead: initial comment not saved")
		} else {
			lead.Comentarios = append(lead.Comentarios, *com)
		}
	}

	s.notificar(ctx, lead, owner)

	resp := leadToResponse(lead)
	return &resp, nil
}

// owner returns the account of the agent a lead is attributed to. When the
// agent is the caller their own record is required; for anybody else a
// missing account just leaves the lead unlinked.
func (s *leadService) owner(ctx context.Context, viewer Viewer, agente string) (*model.Usuario, error) {
	if agente == viewer.Username {
		u, err := s.usuarios.FindByID(ctx, viewer.ID)
		if err != nil {
			return nil, translateDBError(err, "Usuario no encontrado")
		}
		return u, nil
	}
	u, err := s.usuarios.FindByUsernameOrNombre(ctx, agente)
	if err != nil {
		return nil, translateDBError(err, "")
	}
	if u != nil && viewer.Rol == identity.RolSupervisor && !identity.Equal(u.Team, viewer.Team) {
		return nil, apierror.Authz("El agente no pertenece a su equipo")
	}
	return u, nil
}

// notificar enqueues the supervisor email. Failures are logged, never returned.
func (s *leadService) notificar(ctx context.Context, lead *model.Lead, owner *model.Usuario) {
	if !s.notify || s.dispatcher == nil || owner == nil || owner.SupervisorID == nil {
		return
	}
	sup, err := s.usuarios.FindByID(ctx, *owner.SupervisorID)
	if err != nil || sup.Email == nil || *sup.Email == "" {
		return
	}
	payload := worker.LeadNotificacionPayload{
		ToEmail:      *sup.Email,
		ToNombre:     sup.Nombre,
		LeadID:       lead.ID.String(),
		Cliente:      lead.NombreCliente,
		AgenteNombre: lead.AgenteNombre,
		Team:         lead.Team,
		Producto:     lead.Producto,
		TipoServicio: lead.TipoServicio,
		DiaVenta:     lead.DiaVenta,
		Status:       lead.Status,
		Puntaje:      lead.Puntaje,
	}
	if err := s.dispatcher.EnqueueLeadNotificacion(ctx, payload); err != nil {
		log.Warn().Err(err).Str("lead_id", lead.ID.String()).Msg("lead: notification not enqueued")
	}
}

func (s *leadService) query(viewer Viewer, filter dto.LeadFilter) (repository.LeadQuery, error) {
	q := repository.LeadQuery{
		Scope:  viewer.leadScope(),
		Agente: strings.TrimSpace(filter.Agente),
		Team:   identity.TeamFromCode(filter.Team),
		Status: strings.TrimSpace(filter.Status),
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 200 {
		q.Limit = 50
	}
	if strings.TrimSpace(filter.Fecha) != "" {
		k, err := fechas.Parse(filter.Fecha)
		if err != nil {
			return q, apierror.Validation("fecha invalida: use YYYY-MM-DD o DD/MM/YYYY")
		}
		t := k.Time()
		q.Fecha = &t
	}
	return q, nil
}

func (s *leadService) Listar(ctx context.Context, viewer Viewer, filter dto.LeadFilter) (*dto.LeadListResponse, error) {
	q, err := s.query(viewer, filter)
	if err != nil {
		return nil, err
	}
	leads, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, translateDBError(err, "")
	}
	data := make([]dto.LeadResponse, len(leads))
	for i := range leads {
		data[i] = leadToResponse(&leads[i])
	}
	return &dto.LeadListResponse{Success: true, Data: data, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *leadService) Customers(ctx context.Context, viewer Viewer, filter dto.LeadFilter) (*dto.CustomersResponse, error) {
	page, err := s.Listar(ctx, viewer, filter)
	if err != nil {
		return nil, err
	}
	hoy := fechas.FromTime(s.now())
	desde, hasta := fechas.Month{Anio: hoy.Anio, Mes: hoy.Mes}.Range()
	kpis, err := s.repo.KPIs(ctx, viewer.leadScope(), hoy.Time(), desde, hasta)
	if err != nil {
		return nil, translateDBError(err, "")
	}
	return &dto.CustomersResponse{LeadListResponse: *page, KPIs: *kpis}, nil
}

// load fetches a lead and checks it is inside the viewer's scope. Out of
// scope leads are reported as not found.
func (s *leadService) load(ctx context.Context, viewer Viewer, id uuid.UUID) (*model.Lead, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "Lead no encontrado")
	}
	scope := viewer.leadScope()
	if scope.None ||
		(scope.Agente != "" && lead.Agente != scope.Agente) ||
		(scope.Team != "" && !identity.Equal(lead.Team, scope.Team)) {
		return nil, apierror.NotFound("Lead no encontrado")
	}
	return lead, nil
}

func (s *leadService) Obtener(ctx context.Context, viewer Viewer, id uuid.UUID) (*dto.LeadResponse, error) {
	lead, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	resp := leadToResponse(lead)
	return &resp, nil
}

func (s *leadService) Actualizar(ctx context.Context, viewer Viewer, id uuid.UUID, req dto.ActualizarLeadRequest) (*dto.LeadResponse, error) {
	lead, err := s.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	setStr := func(col string, v *string, dst *string) {
		if v != nil {
			fields[col] = strings.TrimSpace(*v)
			*dst = strings.TrimSpace(*v)
		}
	}
	setStr("nombre_cliente", req.NombreCliente, &lead.NombreCliente)
	setStr("telefono_principal", req.TelefonoPrincipal, &lead.TelefonoPrincipal)
	setStr("telefono_alterno", req.TelefonoAlterno, &lead.TelefonoAlterno)
	setStr("numero_cuenta", req.NumeroCuenta, &lead.NumeroCuenta)
	setStr("direccion", req.Direccion, &lead.Direccion)
	setStr("tipo_servicio", req.TipoServicio, &lead.TipoServicio)
	setStr("producto", req.Producto, &lead.Producto)
	setStr("status", req.Status, &lead.Status)
	if req.NombreCliente != nil && lead.NombreCliente == "" {
		return nil, apierror.Validation("nombre_cliente no puede quedar vacio")
	}
	if req.DiaVenta != nil {
		k, err := fechas.Parse(*req.DiaVenta)
		if err != nil {
			return nil, apierror.Validation("dia_venta invalido: use YYYY-MM-DD o DD/MM/YYYY")
		}
		lead.DiaVenta, lead.FechaVenta = k.Display(), k.Time()
		fields["dia_venta"], fields["fecha_venta"] = lead.DiaVenta, lead.FechaVenta
	}
	if req.DiaInstalacion != nil {
		lead.DiaInstalacion = ""
		if strings.TrimSpace(*req.DiaInstalacion) != "" {
			k, err := fechas.Parse(*req.DiaInstalacion)
			if err != nil {
				return nil, apierror.Validation("dia_instalacion invalido: use YYYY-MM-DD o DD/MM/YYYY")
			}
			lead.DiaInstalacion = k.Display()
		}
		fields["dia_instalacion"] = lead.DiaInstalacion
	}
	if req.Puntaje != nil {
		if viewer.Rol == identity.RolAgente {
			return nil, apierror.Authz("Un agente no puede modificar el puntaje")
		}
		lead.Puntaje = *req.Puntaje
		fields["puntaje"] = lead.Puntaje
	}
	if len(fields) == 0 {
		return nil, apierror.Validation("no hay campos para actualizar")
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, translateDBError(err, "Lead no encontrado")
	}
	resp := leadToResponse(lead)
	return &resp, nil
}

func (s *leadService) Comentar(ctx context.Context, viewer Viewer, id uuid.UUID, req dto.ComentarioRequest) (*dto.ComentarioResponse, error) {
	texto := strings.TrimSpace(req.Texto)
	if texto == "" {
		return nil, apierror.Validation("texto es requerido")
	}
	if _, err := s.load(ctx, viewer, id); err != nil {
		return nil, err
	}
	com := &model.LeadComentario{LeadID: id, Autor: viewer.Username, Texto: texto}
	if err := s.repo.AddComentario(ctx, com); err != nil {
		return nil, translateDBError(err, "Lead no encontrado")
	}
	resp := comentarioToResponse(com)
	return &resp, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func leadToResponse(l *model.Lead) dto.LeadResponse {
	resp := dto.LeadResponse{
		ID:                l.ID.String(),
		NombreCliente:     l.NombreCliente,
		TelefonoPrincipal: l.TelefonoPrincipal,
		TelefonoAlterno:   l.TelefonoAlterno,
		NumeroCuenta:      l.NumeroCuenta,
		Direccion:         l.Direccion,
		TipoServicio:      l.TipoServicio,
		Producto:          l.Producto,
		DiaVenta:          l.DiaVenta,
		DiaInstalacion:    l.DiaInstalacion,
		Status:            l.Status,
		Agente:            l.Agente,
		AgenteNombre:      l.AgenteNombre,
		Supervisor:        l.Supervisor,
		Team:              l.Team,
		Puntaje:           l.Puntaje,
		CreatedAt:         l.CreatedAt.Format(time.RFC3339),
	}
	for i := range l.Comentarios {
		resp.Comentarios = append(resp.Comentarios, comentarioToResponse(&l.Comentarios[i]))
	}
	return resp
}

func comentarioToResponse(c *model.LeadComentario) dto.ComentarioResponse {
	return dto.ComentarioResponse{
		ID:    c.ID.String(),
		Autor: c.Autor,
		Fecha: c.CreatedAt.Format(time.RFC3339),
		Texto: c.Texto,
	}
}
