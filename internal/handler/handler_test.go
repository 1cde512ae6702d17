package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"crmventas/internal/apierror"
	"crmventas/internal/dto"
	"crmventas/internal/identity"
	"crmventas/internal/infra"
	"crmventas/internal/middleware"
	"crmventas/internal/ranking"
	"crmventas/internal/service"
	"crmventas/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Service fakes ─────────────────────────────────────────────────────────────

type fakeAuth struct {
	service.AuthService
	loginErr      error
	lastActor     service.Viewer
	desactivarErr error
}

func (f *fakeAuth) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &dto.LoginResponse{Success: true, AccessToken: "tok", User: dto.UsuarioResponse{Username: req.Username}}, nil
}

func (f *fakeAuth) DesactivarUsuario(_ context.Context, actor service.Viewer, _ uuid.UUID) error {
	f.lastActor = actor
	return f.desactivarErr
}

type fakeLeads struct {
	service.LeadService
	lastViewer service.Viewer
	lastRaw    map[string]any
	lastFilter dto.LeadFilter
	err        error
}

func (f *fakeLeads) Crear(_ context.Context, v service.Viewer, raw map[string]any) (*dto.LeadResponse, error) {
	f.lastViewer, f.lastRaw = v, raw
	if f.err != nil {
		return nil, f.err
	}
	return &dto.LeadResponse{ID: uuid.NewString(), NombreCliente: "Cliente", Agente: v.Username}, nil
}

func (f *fakeLeads) Listar(_ context.Context, v service.Viewer, filter dto.LeadFilter) (*dto.LeadListResponse, error) {
	f.lastViewer, f.lastFilter = v, filter
	return &dto.LeadListResponse{Success: true, Data: []dto.LeadResponse{}, Page: filter.Page, Limit: filter.Limit}, nil
}

func (f *fakeLeads) Obtener(_ context.Context, _ service.Viewer, _ uuid.UUID) (*dto.LeadResponse, error) {
	return nil, f.err
}

type fakeRanking struct {
	resp *dto.RankingTabsResponse
	last dto.RankingFilter
}

func (f *fakeRanking) Tabs(_ context.Context, filter dto.RankingFilter) (*dto.RankingTabsResponse, error) {
	f.last = filter
	if filter.Month == "2025-13" {
		return nil, apierror.Validation("month invalido")
	}
	return f.resp, nil
}

type fakeFacturacion struct {
	service.FacturacionService
	upsertErr error
}

func (f *fakeFacturacion) Upsert(_ context.Context, _ service.Viewer, req dto.UpsertFacturacionRequest) (*dto.UpsertFacturacionResponse, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	return &dto.UpsertFacturacionResponse{Success: true, Upserted: true, Data: dto.FacturacionLineaResponse{Fecha: req.Fecha}}, nil
}

func (f *fakeFacturacion) PDF(_ context.Context, _, _ int) ([]byte, error) {
	return []byte("%PDF-1.3"), nil
}

type fakeMedia struct {
	validateErr error
	fetchErr    error
}

func (f *fakeMedia) Validate(raw string) (*url.URL, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return url.Parse(raw)
}

func (f *fakeMedia) Fetch(_ context.Context, _ *url.URL) (*infra.MediaObject, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &infra.MediaObject{ContentType: "image/png", CacheControl: "public, max-age=60", Body: []byte{0x89, 'P', 'N', 'G'}}, nil
}

type fakeDeadLetters struct {
	items     []worker.DeadLetter
	err       error
	lastLimit int64
}

func (f *fakeDeadLetters) List(_ context.Context, limit int64) ([]worker.DeadLetter, error) {
	f.lastLimit = limit
	return f.items, f.err
}

// ── Helpers ───────────────────────────────────────────────────────────────────

var testUserID = uuid.MustParse("3f1c0a43-6b8e-4c38-9a59-1c1f43a3e001")

// withClaims stands in for JWTAuth.
func withClaims(rol identity.Rol) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{
			UserID: testUserID.String(), Username: "ana", Nombre: "Ana", Rol: rol, Team: "TEAM IRANIA",
		})
		c.Next()
	}
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestLogin(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   any
		status int
	}{
		{"ok", nil, dto.LoginRequest{Username: "ana", Password: "x"}, http.StatusOK},
		{"bad credentials", service.ErrCredencialesInvalidas, dto.LoginRequest{Username: "ana", Password: "x"}, http.StatusUnauthorized},
		{"missing password", nil, map[string]string{"username": "ana"}, http.StatusBadRequest},
		{"store down", apierror.Unavailable("Base de datos no disponible", errors.New("dial tcp")), dto.LoginRequest{Username: "ana", Password: "x"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/login", NewAuthHandler(&fakeAuth{loginErr: tt.err}).Login)

			w := do(r, http.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}

func TestUsuarios_Desactivar(t *testing.T) {
	svc := &fakeAuth{}
	r := gin.New()
	r.DELETE("/usuarios/:id", withClaims(identity.RolAdmin), NewUsuariosHandler(svc).Desactivar)

	w := do(r, http.MethodDelete, "/usuarios/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testUserID, svc.lastActor.ID)
	assert.Equal(t, identity.RolAdmin, svc.lastActor.Rol)

	w = do(r, http.MethodDelete, "/usuarios/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.desactivarErr = apierror.NotFound("Usuario no encontrado")
	w = do(r, http.MethodDelete, "/usuarios/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Usuario no encontrado"}`, w.Body.String())
}

func TestLeads_Crear(t *testing.T) {
	svc := &fakeLeads{}
	r := gin.New()
	r.POST("/leads", withClaims(identity.RolAgente), NewLeadsHandler(svc).Crear)

	w := do(r, http.MethodPost, "/leads", map[string]any{"nombre_cliente": "Cliente", "Puntaje": 1.5})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ana", svc.lastViewer.Username)
	assert.Equal(t, "TEAM IRANIA", svc.lastViewer.Team)
	assert.Equal(t, 1.5, svc.lastRaw["Puntaje"])

	var env dto.LeadEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "ana", env.Data.Agente)

	w = do(r, http.MethodPost, "/leads", []int{1, 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = apierror.Validation("nombre_cliente es requerido")
	w = do(r, http.MethodPost, "/leads", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "nombre_cliente")
}

func TestLeads_ListarFilter(t *testing.T) {
	svc := &fakeLeads{}
	r := gin.New()
	r.GET("/leads", withClaims(identity.RolSupervisor), NewLeadsHandler(svc).Listar)

	w := do(r, http.MethodGet, "/leads?status=pending&fecha=2025-09-05", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.lastFilter.Page)
	assert.Equal(t, 50, svc.lastFilter.Limit)
	assert.Equal(t, "pending", svc.lastFilter.Status)

	w = do(r, http.MethodGet, "/leads?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"Limit":"max"`)
}

func TestLeads_ObtenerOutOfScope(t *testing.T) {
	svc := &fakeLeads{err: apierror.NotFound("Lead no encontrado")}
	r := gin.New()
	r.GET("/leads/:id", withClaims(identity.RolAgente), NewLeadsHandler(svc).Obtener)

	w := do(r, http.MethodGet, "/leads/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRanking_Tabs(t *testing.T) {
	degraded := &dto.RankingTabsResponse{Success: false, Error: "store down", Month: "2025-09", Tabs: ranking.EmptyTabs()}
	r := gin.New()
	r.GET("/ranking/tabs", NewRankingHandler(&fakeRanking{resp: degraded}).Tabs)

	w := do(r, http.MethodGet, "/ranking/tabs?month=2025-09", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), `"error":"store down"`)

	w = do(r, http.MethodGet, "/ranking/tabs?month=2025-13", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRanking_ProductParamPresence(t *testing.T) {
	svc := &fakeRanking{resp: &dto.RankingTabsResponse{Success: true, Tabs: ranking.EmptyTabs()}}
	r := gin.New()
	r.GET("/ranking/tabs", NewRankingHandler(svc).Tabs)

	do(r, http.MethodGet, "/ranking/tabs", nil)
	assert.Nil(t, svc.last.Product)

	do(r, http.MethodGet, "/ranking/tabs?product=", nil)
	require.NotNil(t, svc.last.Product)
	assert.Empty(t, *svc.last.Product)

	do(r, http.MethodGet, "/ranking/tabs?product=TV", nil)
	require.NotNil(t, svc.last.Product)
	assert.Equal(t, "TV", *svc.last.Product)
}

func TestFacturacion_Upsert(t *testing.T) {
	svc := &fakeFacturacion{}
	r := gin.New()
	r.POST("/facturacion-lineas", withClaims(identity.RolBackoffice), NewFacturacionHandler(svc).Upsert)

	w := do(r, http.MethodPost, "/facturacion-lineas", dto.UpsertFacturacionRequest{Fecha: "2025-09-05", Campos: []string{"1"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"upserted":true`)

	w = do(r, http.MethodPost, "/facturacion-lineas", map[string]any{"campos": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.upsertErr = apierror.Conflict("El registro ya existe", errors.New("23505"))
	w = do(r, http.MethodPost, "/facturacion-lineas", dto.UpsertFacturacionRequest{Fecha: "2025-09-05"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFacturacion_PDF(t *testing.T) {
	r := gin.New()
	h := NewFacturacionHandler(&fakeFacturacion{})
	r.GET("/facturacion-lineas/:anio/:mes/pdf", h.DescargarPDF)

	w := do(r, http.MethodGet, "/facturacion-lineas/2025/9/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mimePDF, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="facturacion-2025-09.pdf"`, w.Header().Get("Content-Disposition"))

	w = do(r, http.MethodGet, "/facturacion-lineas/abc/9/pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMediaProxy(t *testing.T) {
	tests := []struct {
		name   string
		media  *fakeMedia
		status int
	}{
		{"ok", &fakeMedia{}, http.StatusOK},
		{"invalid url", &fakeMedia{validateErr: infra.ErrMediaURLInvalid}, http.StatusBadRequest},
		{"forbidden host", &fakeMedia{validateErr: infra.ErrMediaForbidden}, http.StatusForbidden},
		{"upstream failure", &fakeMedia{fetchErr: infra.ErrMediaUpstream}, http.StatusBadGateway},
		{"redirect off allow-list", &fakeMedia{fetchErr: infra.ErrMediaForbidden}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/media/proxy", NewMediaHandler(tt.media).Proxy)

			w := do(r, http.MethodGet, "/media/proxy?url="+url.QueryEscape("https://res.cloudinary.com/x.png"), nil)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
				assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestNotificaciones_Fallidas(t *testing.T) {
	dlq := &fakeDeadLetters{items: []worker.DeadLetter{{
		Queue: worker.QueueNotificaciones, JobType: worker.JobLeadNotificacion,
		LeadID: "l-9", ToEmail: "irania@example.com", Reason: "smtp down", Attempts: worker.MaxAttempts,
	}}}
	r := gin.New()
	r.GET("/notificaciones/fallidas", NewNotificacionesHandler(dlq).Fallidas)

	w := do(r, http.MethodGet, "/notificaciones/fallidas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(50), dlq.lastLimit)
	assert.Contains(t, w.Body.String(), `"lead_id":"l-9"`)
	assert.Contains(t, w.Body.String(), `"to_email":"irania@example.com"`)

	w = do(r, http.MethodGet, "/notificaciones/fallidas?limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), dlq.lastLimit)

	w = do(r, http.MethodGet, "/notificaciones/fallidas?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	dlq.err = errors.New("redis: connection refused")
	w = do(r, http.MethodGet, "/notificaciones/fallidas", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
